// Package socket is a platform-neutral socket layer for protocol engines.
//
// It wraps the native socket API (BSD sockets on Unix, Winsock on Windows)
// behind one contract: dual-stack addresses, socket lifecycle, scatter/gather
// I/O, a fixed option set and level-triggered readiness waits. Transient
// conditions such as would-block are reported as zero results, never as errors.
// The layer does not retry, buffer or interpret the bytes it moves.
package socket

import (
	"fmt"

	"go.uber.org/zap"
)

// Kind is the transport kind of a socket.
type Kind int

const (
	Datagram Kind = iota + 1
	Stream
)

// String returns the transport name.
func (k Kind) String() string {
	switch k {
	case Datagram:
		return "datagram"
	case Stream:
		return "stream"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ShutdownMode selects which directions Shutdown disables.
type ShutdownMode int

const (
	ShutdownRead ShutdownMode = iota
	ShutdownWrite
	ShutdownBoth
)

// DefaultFamily is the address family of sockets made by Create and of the
// wildcard address used when Bind is given no address.
const DefaultFamily = FamilyIPv4

// Buffers is an ordered list of memory regions holding one logical message.
type Buffers [][]byte

// Len returns the total number of bytes across all buffers.
func (b Buffers) Len() int {
	n := 0
	for _, buf := range b {
		n += len(buf)
	}
	return n
}

// Create allocates a socket of the given kind in DefaultFamily.
func Create(kind Kind) (Handle, error) {
	return CreateFamily(kind, DefaultFamily)
}

// IsNull reports whether h is NullHandle.
func (h Handle) IsNull() bool {
	return h == NullHandle
}

// fail logs a hard OS failure and wraps it for the caller.
func (h Handle) fail(op string, err error) error {
	Logger().Debug("socket operation failed",
		zap.String("op", op),
		zap.Int64("handle", int64(h)),
		zap.Error(err))
	return fmt.Errorf("failed to %s: %w", op, err)
}

func bindTarget(addr *Address) Address {
	if addr == nil {
		return anyAddress(DefaultFamily)
	}
	return *addr
}
