// Package errors provides structured error types for the packed-call library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the expected and actual type tags for
// conversion failures, the offending value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		Expected("float").
//		Actual("int").
//		Detail("argument 2").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseConvert, "float", "int")
//	err := errors.BadIndex(errors.PhaseConvert, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
