// Package errors provides the classified error primitives used across docorch.
//
// Every failure that can abort a documentation build is expressed as a
// ClassifiedError so the CLI can pick an exit code and the log line carries the
// category, severity and structured context.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryGenerator, "doxygen failed").
//		Fatal().
//		WithContext("exit_code", 2).
//		Build()
package errors
