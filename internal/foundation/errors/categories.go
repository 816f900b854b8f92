package errors

import (
	"maps"
	"slices"
)

// ErrorCategory says which part of a documentation build failed. The CLI maps
// it to an exit code.
type ErrorCategory string

const (
	// CategoryConfig covers the configuration file, environment flags and the
	// engine version requirement.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// CategoryGenerator covers doxygen and the R package build.
	CategoryGenerator ErrorCategory = "generator"
	CategoryNotify    ErrorCategory = "notify"

	// CategoryDocs covers page parsing, directives and rendering.
	CategoryDocs       ErrorCategory = "docs"
	CategoryFileSystem ErrorCategory = "filesystem"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// Exit codes returned by the docorch CLI.
const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitConfig     = 7
	ExitGenerator  = 9
	ExitInternal   = 10
	ExitBuild      = 11
	ExitRuntime    = 12
)

// ExitCode returns the process exit code for the category.
func (c ErrorCategory) ExitCode() int {
	switch c {
	case CategoryValidation:
		return ExitValidation
	case CategoryConfig:
		return ExitConfig
	case CategoryGenerator:
		return ExitGenerator
	case CategoryDocs, CategoryFileSystem:
		return ExitBuild
	case CategoryRuntime, CategoryNotify:
		return ExitRuntime
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitFailure
	}
}

// ErrorSeverity is fatal when the build stops and error when only the
// current step failed.
type ErrorSeverity string

const (
	SeverityFatal ErrorSeverity = "fatal"
	SeverityError ErrorSeverity = "error"
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// String returns the value under key when it is a string.
func (c ErrorContext) String(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// Keys returns the context keys in sorted order.
func (c ErrorContext) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Merge combines two contexts, with other taking precedence.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
