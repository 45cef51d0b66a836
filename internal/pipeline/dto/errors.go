package dto

import "errors"

var (
	// ErrMissingConfiguration means a credential the cycle needs is not configured.
	ErrMissingConfiguration = errors.New("missing configuration")
	// ErrUnknownCycle means no strategy is registered for the requested cycle.
	ErrUnknownCycle = errors.New("unknown cycle")
)
