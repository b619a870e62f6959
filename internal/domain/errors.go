package domain

import "errors"

var (
	// ErrStorage signals a persistence engine failure in the mapping store.
	ErrStorage = errors.New("storage failure")
	// ErrTransport signals a failed call to the remote indexing API
	// (network error, timeout, non-2xx status or undecodable body).
	ErrTransport = errors.New("transport failure")
	// ErrInvalidPayload signals a request payload that failed validation before serialization.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrInvalidEntity signals an entity that cannot be synchronized (e.g. non-positive ID).
	ErrInvalidEntity = errors.New("invalid entity")
)
