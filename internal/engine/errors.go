package engine

import "errors"

var (
	// ErrVersionRequirement indicates the configuration needs a newer engine.
	ErrVersionRequirement = errors.New("engine version requirement not met")
	// ErrUnknownDirective indicates a page used a directive nobody registered.
	ErrUnknownDirective = errors.New("unknown directive type")
	// ErrDirectiveFailed indicates a registered directive returned an error.
	ErrDirectiveFailed = errors.New("directive failed")
)
