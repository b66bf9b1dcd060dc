package socket

import "errors"

var (
	// ErrNotFound is returned when a name resolves to no usable address.
	ErrNotFound = errors.New("host not found")

	// ErrBufferTooSmall is returned when text output does not fit the
	// destination buffer including its terminator.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrUnknownFamily is returned for addresses that are neither IPv4 nor IPv6.
	ErrUnknownFamily = errors.New("unknown address family")

	// ErrTruncated is returned by Receive when a datagram did not fit the
	// supplied buffers. The partial payload must not be used.
	ErrTruncated = errors.New("datagram truncated")

	// ErrUnsupportedOption is returned by GetOption for options that cannot
	// be read back.
	ErrUnsupportedOption = errors.New("unsupported socket option")

	// ErrWouldBlock is returned by Accept when no connection is pending on a
	// non-blocking listener.
	ErrWouldBlock = errors.New("operation would block")

	// ErrNullHandle is returned when an operation is given NullHandle.
	ErrNullHandle = errors.New("null socket handle")

	// ErrSetFull is returned when a handle cannot be stored in a SocketSet.
	ErrSetFull = errors.New("socket set capacity exceeded")
)
