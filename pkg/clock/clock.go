// Package clock provides the millisecond time base used by protocol engines.
package clock

import (
	"sync/atomic"
	"time"
)

// Source returns an absolute millisecond reading that only moves forward,
// modulo 2^32.
type Source func() uint32

// Clock converts an absolute Source reading into an elapsed-time counter.
// Now returns the reading minus a base offset; Rebase moves the offset so
// that Now continues from a chosen value. Arithmetic wraps at 2^32, so
// callers compare timestamps with wrap-aware helpers such as Less.
type Clock struct {
	source Source
	base   atomic.Uint32
}

// New returns a Clock backed by the monotonic clock, anchored at the
// current wall time in milliseconds.
func New() *Clock {
	return NewWithSource(systemSource())
}

// NewWithSource returns a Clock reading from src.
func NewWithSource(src Source) *Clock {
	return &Clock{source: src}
}

func systemSource() Source {
	start := time.Now()
	anchor := uint32(start.UnixMilli())
	return func() uint32 {
		return anchor + uint32(time.Since(start).Milliseconds())
	}
}

// Now returns the elapsed-time counter in milliseconds.
func (c *Clock) Now() uint32 {
	return c.source() - c.base.Load()
}

// Rebase sets the counter so that Now returns value at this instant.
func (c *Clock) Rebase(value uint32) {
	c.base.Store(c.source() - value)
}

// Seed returns the raw source reading, usable as a random seed.
func (c *Clock) Seed() uint32 {
	return c.source()
}

// Since returns the milliseconds elapsed from a counter value to now.
func (c *Clock) Since(t uint32) uint32 {
	return c.Now() - t
}

// Less reports whether a is before b on the wrapping counter.
func Less(a, b uint32) bool {
	return a-b >= 1<<31
}

// Diff returns the absolute distance between two counter values.
func Diff(a, b uint32) uint32 {
	if Less(a, b) {
		return b - a
	}
	return a - b
}
