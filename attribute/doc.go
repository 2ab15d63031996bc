// Package attribute reads and writes the Module attribute of a class file.
//
// A Module attribute has two representations behind one interface,
// ModuleAttribute:
//
//   - *BoundModuleAttribute is produced by DecodeModule. It borrows the
//     payload bytes and builds its lists on first access.
//   - *UnboundModuleAttribute is produced by ModuleBuilder, BuildModule or
//     NewModuleAttribute and holds its lists directly.
//
// Both encode to the same bytes and can be used wherever the other can.
//
// # Decoding
//
//	pool := constpool.New() // filled by the class file reader
//	m, err := attribute.DecodeModule(payload, pool)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range m.Requires() {
//	    fmt.Println(r.Module().Value, r.Has(accessflag.Mandated))
//	}
//
// Decoding checks every count against the attribute length, rejects
// trailing bytes, and resolves every constant index, checking its tag.
// Errors carry the absolute byte offset and the expected and actual values.
// The rule that every module except java.base requires java.base is left to
// Validate, or use DecodeModuleValidate for both.
//
// # Building
//
//	m, err := attribute.BuildModule(pool, "com.example.app", func(b *attribute.ModuleBuilder) error {
//	    if err := b.SetFlagSet(accessflag.Open); err != nil {
//	        return err
//	    }
//	    if err := b.RequireFlags("java.base", []accessflag.Flag{accessflag.Mandated}, ""); err != nil {
//	        return err
//	    }
//	    return b.Export("com.example.api", 0)
//	})
//
// Names passed to the builder are converted to internal form and resolved
// in the pool, so repeated names share one constant.
//
// # Encoding
//
//	payload, err := attribute.EncodeModule(m, pool)
//
// EncodeModule writes the payload only. AppendAttribute and ReadAttribute
// add and strip the attribute_name_index and attribute_length header,
// dispatching on the attribute name through the Mapper registry.
//
// Decoding a payload and encoding the result against the same pool gives
// back the original bytes.
package attribute
