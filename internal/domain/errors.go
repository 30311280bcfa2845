package domain

import "errors"

var (
	// ErrModelNotFound signals that no search model is registered under a name.
	ErrModelNotFound = errors.New("model not found")
	// ErrInvalidRequest signals a malformed gateway request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotSupported signals that the configured client lacks an operation.
	ErrNotSupported = errors.New("operation not supported by client")
)
