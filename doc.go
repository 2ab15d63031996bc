// Package classfile reads and writes the JVM class file Module attribute.
//
// The attribute is the compiled form of a module-info declaration: the
// module's name, flags and version plus its requires, exports, opens, uses
// and provides directives, each stored as indices into the class file's
// constant pool.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	classfile/
//	├── attribute/       Module attribute model, decoder, encoder, builder and validation
//	├── constpool/       Constant pool with tagged entries and index resolution
//	├── accessflag/      Access flag tables for module, requires, exports and opens
//	├── bundle/          CBOR container holding an encoded attribute and its pool
//	├── descriptor/      YAML module descriptors built into attributes
//	├── errors/          Structured error types for debugging
//	├── internal/binary/ Big-endian reader and writer over class file bytes
//	├── internal/log/    Per-package zap logger slots
//	└── cmd/modattr/     Command line tool to build, inspect and validate bundles
//
// # Quick Start
//
// Build and encode an attribute:
//
//	pool := constpool.New()
//	m, err := attribute.BuildModule(pool, "com.example.app", func(b *attribute.ModuleBuilder) error {
//	    if err := b.Require("java.base", accessflag.AccMandated, ""); err != nil {
//	        return err
//	    }
//	    return b.Export("com.example.api", 0)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	payload, err := attribute.EncodeModule(m, pool)
//
// Decode it again:
//
//	bound, err := attribute.DecodeModule(payload, pool)
//	for _, r := range bound.Requires() {
//	    fmt.Println(r.Module().Value)
//	}
//
// # Bound and Unbound Attributes
//
// Decoding yields a BoundModuleAttribute that borrows the input bytes and
// reads its lists on first access. The caller must not modify the bytes
// while the attribute is in use. Materialize copies one into an
// UnboundModuleAttribute that owns its data.
//
// # Thread Safety
//
// constpool.Pool and BoundModuleAttribute are safe for concurrent use.
// ModuleBuilder is NOT thread-safe and should be used by a single goroutine.
package classfile
