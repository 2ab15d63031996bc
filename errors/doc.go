// Package errors provides structured error types for the class file codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the field path, the byte offset into the container,
// expected/actual values, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidConstantKind).
//		Path("Module", "requires", "0", "module").
//		Offset(14).
//		Expected("Module").
//		Actual("Utf8").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(path, 42, 6, 2)
//	err := errors.FieldMissing(errors.PhaseBuild, nil, "module_name")
//
// All errors implement the standard error interface and support errors.Is/As.
// The exported sentinels (ErrMalformedAttribute and friends) match any error
// of their kind regardless of phase.
package errors
