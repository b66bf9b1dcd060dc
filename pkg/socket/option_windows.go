//go:build windows

package socket

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// setOption applies opt and reports whether it maps to a native option.
// Winsock takes SO_RCVTIMEO and SO_SNDTIMEO as a DWORD in milliseconds.
func (h Handle) setOption(opt Option, value int) (bool, error) {
	fd := windows.Handle(h)
	switch opt {
	case OptNonBlock:
		mode := uint32(0)
		if value != 0 {
			mode = 1
		}
		return true, ioctlSocket(fd, fionbio, &mode)
	case OptBroadcast:
		return true, windows.SetsockoptInt(fd, solSocket, soBroadcast, value)
	case OptReuseAddr:
		return true, windows.SetsockoptInt(fd, solSocket, soReuseAddr, value)
	case OptRcvBuf:
		return true, windows.SetsockoptInt(fd, solSocket, soRcvBuf, value)
	case OptSndBuf:
		return true, windows.SetsockoptInt(fd, solSocket, soSndBuf, value)
	case OptRcvTimeout:
		return true, windows.SetsockoptInt(fd, solSocket, soRcvTimeo, value)
	case OptSndTimeout:
		return true, windows.SetsockoptInt(fd, solSocket, soSndTimeo, value)
	case OptNoDelay:
		return true, windows.SetsockoptInt(fd, ipprotoTCP, tcpNoDelay, value)
	default:
		return false, nil
	}
}

// ioctlSocket calls ioctlsocket on Windows.
func ioctlSocket(fd windows.Handle, cmd uint32, argp *uint32) error {
	r1, _, e1 := procIoctlSocket.Call(
		uintptr(fd),
		uintptr(cmd),
		uintptr(unsafe.Pointer(argp)),
	)
	if int32(r1) == -1 {
		return winsockError(e1)
	}
	return nil
}
