package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrBackpressure is returned to callers when Enqueue reports a full queue.
	ErrBackpressure = errors.New("screening queue is full")
	// ErrClosed is returned when the queue no longer accepts tasks.
	ErrClosed = errors.New("screening queue is closed")
)
