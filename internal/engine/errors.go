package engine

import "errors"

// Sentinel errors returned by the engine's command/query surface.
// Match with errors.Is.
var (
	// ErrNotFound is returned for commands against a cart with no live
	// instance (never created, retired, or failed) and for queries against a
	// cart that never existed or failed. Queries against a normally retired
	// cart still serve its final record.
	ErrNotFound = errors.New("no such cart")

	// ErrAlreadyExists is returned when initializing a cart whose instance is
	// still running.
	ErrAlreadyExists = errors.New("cart already exists")

	// ErrClosed is returned once the engine has been shut down.
	ErrClosed = errors.New("engine is closed")
)
