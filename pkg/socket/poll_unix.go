//go:build unix

package socket

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// pollSocket waits for the conditions in want using poll(2), which unlike
// select has no FD_SETSIZE limit on the descriptor value.
func pollSocket(h Handle, want Condition, timeoutMS int) (Condition, error) {
	var events int16
	if want&WaitSend != 0 {
		events |= unix.POLLOUT
	}
	if want&WaitReceive != 0 {
		events |= unix.POLLIN
	}

	fds := []unix.PollFd{{Fd: int32(h), Events: events}}
	n, err := unix.Poll(fds, timeoutMS)
	if err != nil {
		return WaitNone, err
	}
	if n == 0 {
		return WaitNone, nil
	}

	revents := fds[0].Revents
	if revents&unix.POLLNVAL != 0 {
		return WaitNone, unix.EBADF
	}

	// Errors and hangups make the socket both readable and writable, as
	// select would report them.
	ready := WaitNone
	if revents&(unix.POLLOUT|unix.POLLERR|unix.POLLHUP) != 0 && want&WaitSend != 0 {
		ready |= WaitSend
	}
	if revents&(unix.POLLIN|unix.POLLERR|unix.POLLHUP) != 0 && want&WaitReceive != 0 {
		ready |= WaitReceive
	}
	return ready, nil
}

// SocketSet is a set of handles for Select, backed by the native fd_set.
type SocketSet struct {
	set unix.FdSet
}

// socketSetCapacity is FD_SETSIZE.
const socketSetCapacity = int(unsafe.Sizeof(unix.FdSet{})) * 8

// Zero removes all handles from the set.
func (s *SocketSet) Zero() {
	s.set.Zero()
}

// Add adds h to the set. Descriptors at or above FD_SETSIZE cannot be
// represented and return ErrSetFull.
func (s *SocketSet) Add(h Handle) error {
	if h < 0 || int(h) >= socketSetCapacity {
		return ErrSetFull
	}
	s.set.Set(int(h))
	return nil
}

// Remove removes h from the set.
func (s *SocketSet) Remove(h Handle) {
	if h < 0 || int(h) >= socketSetCapacity {
		return
	}
	s.set.Clear(int(h))
}

// IsSet reports whether h is in the set.
func (s *SocketSet) IsSet(h Handle) bool {
	if h < 0 || int(h) >= socketSetCapacity {
		return false
	}
	return s.set.IsSet(int(h))
}

func (s *SocketSet) native() *unix.FdSet {
	if s == nil {
		return nil
	}
	return &s.set
}

// selectSockets calls select(2) with maxHandle+1 descriptors.
func selectSockets(maxHandle Handle, read, write *SocketSet, timeout time.Duration) (int, error) {
	if timeout < 0 {
		timeout = 0
	}
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	return unix.Select(int(maxHandle)+1, read.native(), write.native(), nil, &tv)
}
