//go:build unix

package socket

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Handle is a socket descriptor on Unix systems.
type Handle int

// NullHandle is the handle value that refers to no socket.
const NullHandle Handle = -1

const maxBacklog = unix.SOMAXCONN

type sockaddr = unix.Sockaddr

// socketDomain returns AF_INET or AF_INET6 for the family.
func socketDomain(f Family) (int, error) {
	switch f {
	case FamilyIPv4:
		return unix.AF_INET, nil
	case FamilyIPv6:
		return unix.AF_INET6, nil
	default:
		return 0, ErrUnknownFamily
	}
}

func socketType(k Kind) (int, error) {
	switch k {
	case Datagram:
		return unix.SOCK_DGRAM, nil
	case Stream:
		return unix.SOCK_STREAM, nil
	default:
		return 0, fmt.Errorf("unsupported socket kind: %s", k)
	}
}

// createSocket creates a close-on-exec socket.
func createSocket(domain, typ int) (Handle, error) {
	fd, err := unix.Socket(domain, typ, 0)
	if err != nil {
		return NullHandle, err
	}
	unix.CloseOnExec(fd)
	return Handle(fd), nil
}

func closeSocket(h Handle) error {
	return unix.Close(int(h))
}

func bindSocket(h Handle, sa sockaddr) error {
	return unix.Bind(int(h), sa)
}

func listenSocket(h Handle, backlog int) error {
	return unix.Listen(int(h), backlog)
}

func connectSocket(h Handle, sa sockaddr) error {
	return unix.Connect(int(h), sa)
}

func acceptSocket(h Handle) (Handle, sockaddr, error) {
	nfd, sa, err := unix.Accept(int(h))
	if err != nil {
		return NullHandle, nil, err
	}
	unix.CloseOnExec(nfd)
	return Handle(nfd), sa, nil
}

func localSockaddr(h Handle) (sockaddr, error) {
	return unix.Getsockname(int(h))
}

func shutdownHow(mode ShutdownMode) (int, error) {
	switch mode {
	case ShutdownRead:
		return unix.SHUT_RD, nil
	case ShutdownWrite:
		return unix.SHUT_WR, nil
	case ShutdownBoth:
		return unix.SHUT_RDWR, nil
	default:
		return 0, fmt.Errorf("invalid shutdown mode: %d", mode)
	}
}

func shutdownSocket(h Handle, how int) error {
	return unix.Shutdown(int(h), how)
}

// isStreamSocket reports whether the socket type is SOCK_STREAM.
func isStreamSocket(h Handle) (bool, error) {
	typ, err := unix.GetsockoptInt(int(h), unix.SOL_SOCKET, unix.SO_TYPE)
	if err != nil {
		return false, err
	}
	return typ == unix.SOCK_STREAM, nil
}

// sendBuffers writes bufs with a single sendmsg call.
func sendBuffers(h Handle, bufs Buffers, to sockaddr) (int, error) {
	return unix.SendmsgBuffers(int(h), bufs, nil, to, 0)
}

// recvBuffers reads one message with recvmsg and reports MSG_TRUNC.
func recvBuffers(h Handle, bufs Buffers) (int, sockaddr, bool, error) {
	n, _, flags, from, err := unix.RecvmsgBuffers(int(h), bufs, nil, 0)
	if err != nil {
		return 0, nil, false, err
	}
	return n, from, flags&unix.MSG_TRUNC != 0, nil
}

// socketError reads and clears SO_ERROR.
func (h Handle) socketError() (int, error) {
	return unix.GetsockoptInt(int(h), unix.SOL_SOCKET, unix.SO_ERROR)
}
