//go:build unix

package socket

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isWouldBlock checks if a non-blocking call could not complete immediately.
func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// isInProgress checks if a non-blocking connect is still in progress.
func isInProgress(err error) bool {
	return errors.Is(err, unix.EINPROGRESS) || isWouldBlock(err)
}

// isConnReset checks for a reset from the peer. On a datagram socket
// ECONNREFUSED reports an ICMP port unreachable for an earlier send.
func isConnReset(err error) bool {
	return errors.Is(err, unix.ECONNRESET) || errors.Is(err, unix.ECONNREFUSED)
}

// isInterrupted checks if a blocking call was interrupted by a signal.
func isInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}
