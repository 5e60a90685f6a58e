// Package internalerr collects the sentinel errors shared across the
// training and inference engine.
package internalerr

import "errors"

// Sentinel errors for common cases. Wrap with fmt.Errorf("...: %w", Err)
// at the call site to attach context.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNaNEncountered  = errors.New("encountered NaN")
	ErrSizeLimit       = errors.New("size limit exceeded")
	ErrTimeout         = errors.New("timeout")
	ErrAbort           = errors.New("aborted")
	ErrOutOfMemory     = errors.New("out of memory")
	ErrIO              = errors.New("i/o error")
)
