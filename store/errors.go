package store

import "errors"

// Sentinel error kinds per spec.md §7. Put* returns ErrConfiguration for
// an oversized key or value and ErrCapacity when even a GC cannot make
// room; it also returns ErrTransport when a device write fails, and
// ErrIntegrity when no active block can be restored by an in-place repair.
// Get*, IsKey and Remove never return an error: any failure yields the
// caller's default or false.
var (
	ErrConfiguration    = errors.New("store: configuration error")
	ErrTransport        = errors.New("store: transport error")
	ErrIntegrity        = errors.New("store: integrity error")
	ErrCapacity         = errors.New("store: capacity error")
	ErrConcurrentAccess = errors.New("store: concurrent access detected")
	ErrNotInitialized   = errors.New("store: not initialized, call Begin first")
)
