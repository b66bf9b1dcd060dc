//go:build windows

package socket

import (
	"errors"
	"syscall"
)

// Winsock error codes.
const (
	wsaeIntr        = syscall.Errno(10004)
	wsaeWouldBlock  = syscall.Errno(10035)
	wsaeInProgress  = syscall.Errno(10036)
	wsaeMsgSize     = syscall.Errno(10040)
	wsaeConnReset   = syscall.Errno(10054)
	wsaeConnRefused = syscall.Errno(10061)
)

// isWouldBlock checks if a non-blocking call could not complete immediately.
func isWouldBlock(err error) bool {
	return errors.Is(err, wsaeWouldBlock)
}

// isInProgress checks if a non-blocking connect is still in progress.
// On Windows, both WSAEWOULDBLOCK and WSAEINPROGRESS can indicate this.
func isInProgress(err error) bool {
	return errors.Is(err, wsaeWouldBlock) || errors.Is(err, wsaeInProgress)
}

// isConnReset checks for a reset from the peer. Winsock reports an ICMP port
// unreachable on a datagram socket as WSAECONNRESET.
func isConnReset(err error) bool {
	return errors.Is(err, wsaeConnReset) || errors.Is(err, wsaeConnRefused)
}

// isInterrupted checks if a blocking call was cancelled.
func isInterrupted(err error) bool {
	return errors.Is(err, wsaeIntr)
}

// isMessageSize checks if a datagram was larger than the receive buffers.
func isMessageSize(err error) bool {
	return errors.Is(err, wsaeMsgSize)
}
