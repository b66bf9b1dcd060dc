package socket

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Condition is a set of readiness conditions used as both the interest and
// the result of Wait.
type Condition uint32

const (
	WaitNone    Condition = 0
	WaitSend    Condition = 1 << 0
	WaitReceive Condition = 1 << 1
)

// String lists the conditions in the set.
func (c Condition) String() string {
	if c == WaitNone {
		return "none"
	}
	var parts []string
	if c&WaitSend != 0 {
		parts = append(parts, "send")
	}
	if c&WaitReceive != 0 {
		parts = append(parts, "receive")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Wait blocks until one of the conditions in *cond holds on the socket or
// the timeout elapses, then replaces *cond with the conditions that hold.
// A zero timeout polls; negative timeouts are treated as zero. On timeout
// *cond becomes WaitNone and Wait returns nil. Readiness is level-triggered:
// a condition is reported on every call until the caller drains it.
func (h Handle) Wait(cond *Condition, timeout time.Duration) error {
	if cond == nil {
		return errors.New("nil condition")
	}
	if h == NullHandle {
		return ErrNullHandle
	}

	ready, err := pollSocket(h, *cond, timeoutMillis(timeout))
	if err != nil {
		if isInterrupted(err) {
			*cond = WaitNone
			return nil
		}
		return h.fail("wait", err)
	}
	*cond = ready
	return nil
}

// timeoutMillis converts d to whole milliseconds, rounding partial
// milliseconds up so a short positive timeout never becomes a poll.
func timeoutMillis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}

// Select waits until a handle in read is readable or a handle in write is
// writable, or the timeout elapses. The caller builds the sets and inspects
// them afterwards; handles that are not ready are removed. maxHandle is the
// largest handle in either set. It returns the number of ready handles,
// zero on timeout.
func Select(maxHandle Handle, read, write *SocketSet, timeout time.Duration) (int, error) {
	n, err := selectSockets(maxHandle, read, write, timeout)
	if err != nil {
		if isInterrupted(err) {
			if read != nil {
				read.Zero()
			}
			if write != nil {
				write.Zero()
			}
			return 0, nil
		}
		return 0, fmt.Errorf("failed to select: %w", err)
	}
	return n, nil
}
