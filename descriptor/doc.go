// Package descriptor reads and writes module declarations as YAML and
// converts them to and from Module attributes.
//
//	name: com.example.app
//	flags: [open]
//	version: "1.0"
//	requires:
//	  - module: java.base
//	    flags: [mandated]
//	exports:
//	  - package: com.example.api
//	    to: [com.example.client]
//	uses: [com.example.spi.Plugin]
//	provides:
//	  - service: com.example.spi.Plugin
//	    with: [com.example.impl.PluginImpl]
//
// Flag names are matched without regard to case, and each clause only
// accepts the flags legal at its location.
package descriptor
