//go:build unix

package socket

import (
	"time"

	"golang.org/x/sys/unix"
)

// setOption applies opt and reports whether it maps to a native option.
func (h Handle) setOption(opt Option, value int) (bool, error) {
	fd := int(h)
	switch opt {
	case OptNonBlock:
		return true, unix.SetNonblock(fd, value != 0)
	case OptBroadcast:
		return true, unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, value)
	case OptReuseAddr:
		return true, unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, value)
	case OptRcvBuf:
		return true, unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, value)
	case OptSndBuf:
		return true, unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, value)
	case OptRcvTimeout:
		tv := millisToTimeval(value)
		return true, unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
	case OptSndTimeout:
		tv := millisToTimeval(value)
		return true, unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv)
	case OptNoDelay:
		return true, unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, value)
	default:
		return false, nil
	}
}

func millisToTimeval(ms int) unix.Timeval {
	if ms < 0 {
		ms = 0
	}
	return unix.NsecToTimeval((time.Duration(ms) * time.Millisecond).Nanoseconds())
}
