//go:build windows

package socket

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Handle is a socket handle on Windows systems.
type Handle windows.Handle

// NullHandle is the handle value that refers to no socket (INVALID_SOCKET).
const NullHandle = Handle(windows.InvalidHandle)

// Winsock constants
const (
	fionbio     = 0x8004667e // FIONBIO for ioctlsocket
	solSocket   = 0xffff     // SOL_SOCKET
	soReuseAddr = 0x0004
	soBroadcast = 0x0020
	soSndBuf    = 0x1001
	soRcvBuf    = 0x1002
	soSndTimeo  = 0x1005
	soRcvTimeo  = 0x1006
	soError     = 0x1007
	soType      = 0x1008
	ipprotoTCP  = 6
	tcpNoDelay  = 0x0001
	msgPartial  = 0x8000
	shutRD      = 0 // SD_RECEIVE
	shutWR      = 1 // SD_SEND
	shutRDWR    = 2 // SD_BOTH
	maxBacklog  = 0x7fffffff // SOMAXCONN

	invalidSocket = ^uintptr(0)
)

type sockaddr = windows.Sockaddr

// socketDomain returns AF_INET or AF_INET6 for the family.
func socketDomain(f Family) (int, error) {
	switch f {
	case FamilyIPv4:
		return windows.AF_INET, nil
	case FamilyIPv6:
		return windows.AF_INET6, nil
	default:
		return 0, ErrUnknownFamily
	}
}

func socketType(k Kind) (int, error) {
	switch k {
	case Datagram:
		return windows.SOCK_DGRAM, nil
	case Stream:
		return windows.SOCK_STREAM, nil
	default:
		return 0, fmt.Errorf("unsupported socket kind: %s", k)
	}
}

func createSocket(domain, typ int) (Handle, error) {
	fd, err := windows.Socket(domain, typ, 0)
	if err != nil {
		return NullHandle, err
	}
	return Handle(fd), nil
}

// closeSocket closes the socket.
func closeSocket(h Handle) error {
	return windows.Closesocket(windows.Handle(h))
}

func bindSocket(h Handle, sa sockaddr) error {
	return windows.Bind(windows.Handle(h), sa)
}

func listenSocket(h Handle, backlog int) error {
	return windows.Listen(windows.Handle(h), backlog)
}

func connectSocket(h Handle, sa sockaddr) error {
	return windows.Connect(windows.Handle(h), sa)
}

// acceptSocket calls accept directly; x/sys/windows only offers AcceptEx.
func acceptSocket(h Handle) (Handle, sockaddr, error) {
	var rsa windows.RawSockaddrAny
	l := int32(unsafe.Sizeof(rsa))
	r1, _, e1 := procAccept.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&rsa)),
		uintptr(unsafe.Pointer(&l)),
	)
	if r1 == invalidSocket {
		return NullHandle, nil, winsockError(e1)
	}
	sa, err := rsa.Sockaddr()
	if err != nil {
		return Handle(r1), nil, nil
	}
	return Handle(r1), sa, nil
}

func localSockaddr(h Handle) (sockaddr, error) {
	return windows.Getsockname(windows.Handle(h))
}

func shutdownHow(mode ShutdownMode) (int, error) {
	switch mode {
	case ShutdownRead:
		return shutRD, nil
	case ShutdownWrite:
		return shutWR, nil
	case ShutdownBoth:
		return shutRDWR, nil
	default:
		return 0, fmt.Errorf("invalid shutdown mode: %d", mode)
	}
}

func shutdownSocket(h Handle, how int) error {
	return windows.Shutdown(windows.Handle(h), how)
}

// isStreamSocket reports whether the socket type is SOCK_STREAM.
func isStreamSocket(h Handle) (bool, error) {
	typ, err := windows.GetsockoptInt(windows.Handle(h), solSocket, soType)
	if err != nil {
		return false, err
	}
	return typ == windows.SOCK_STREAM, nil
}

func toWSABufs(bufs Buffers) []windows.WSABuf {
	out := make([]windows.WSABuf, len(bufs))
	for i, b := range bufs {
		out[i].Len = uint32(len(b))
		if len(b) > 0 {
			out[i].Buf = &b[0]
		}
	}
	return out
}

func firstBuf(bufs []windows.WSABuf) *windows.WSABuf {
	if len(bufs) == 0 {
		return nil
	}
	return &bufs[0]
}

// sendBuffers writes bufs with a single WSASend or WSASendTo call.
func sendBuffers(h Handle, bufs Buffers, to sockaddr) (int, error) {
	wsabufs := toWSABufs(bufs)
	var sent uint32
	var err error
	if to == nil {
		err = windows.WSASend(windows.Handle(h), firstBuf(wsabufs), uint32(len(wsabufs)), &sent, 0, nil, nil)
	} else {
		err = windows.WSASendto(windows.Handle(h), firstBuf(wsabufs), uint32(len(wsabufs)), &sent, 0, to, nil, nil)
	}
	if err != nil {
		return 0, err
	}
	return int(sent), nil
}

// recvBuffers reads one message with WSARecvFrom. Winsock reports an
// oversized datagram as WSAEMSGSIZE and partial messages with MSG_PARTIAL.
func recvBuffers(h Handle, bufs Buffers) (int, sockaddr, bool, error) {
	wsabufs := toWSABufs(bufs)
	var rsa windows.RawSockaddrAny
	l := int32(unsafe.Sizeof(rsa))
	var recvd, flags uint32

	err := windows.WSARecvFrom(windows.Handle(h), firstBuf(wsabufs), uint32(len(wsabufs)),
		&recvd, &flags, &rsa, &l, nil, nil)
	if err != nil {
		if isMessageSize(err) {
			return 0, nil, true, nil
		}
		return 0, nil, false, err
	}

	sa, serr := rsa.Sockaddr()
	if serr != nil {
		sa = nil
	}
	return int(recvd), sa, flags&msgPartial != 0, nil
}

// socketError reads and clears SO_ERROR.
func (h Handle) socketError() (int, error) {
	return windows.GetsockoptInt(windows.Handle(h), solSocket, soError)
}

// winsockError turns the last error of a raw Winsock call into an error.
func winsockError(e error) error {
	if errno, ok := e.(syscall.Errno); ok && errno != 0 {
		return errno
	}
	return syscall.EINVAL
}

var (
	modws2_32       = windows.NewLazySystemDLL("ws2_32.dll")
	procAccept      = modws2_32.NewProc("accept")
	procIoctlSocket = modws2_32.NewProc("ioctlsocket")
	procSelect      = modws2_32.NewProc("select")
)
