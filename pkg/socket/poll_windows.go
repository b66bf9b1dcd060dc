//go:build windows

package socket

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// fdSetSize is FD_SETSIZE in winsock2.h.
const fdSetSize = 64

// fdSet mirrors the Winsock fd_set: a counted array of handles.
type fdSet struct {
	count uint32
	array [fdSetSize]windows.Handle
}

// pollSocket waits with select. A failed non-blocking connect is reported
// in the except set on Windows, so send interest also watches it.
func pollSocket(h Handle, want Condition, timeoutMS int) (Condition, error) {
	// Winsock rejects select with three empty sets.
	if want&(WaitSend|WaitReceive) == 0 {
		time.Sleep(time.Duration(timeoutMS) * time.Millisecond)
		return WaitNone, nil
	}

	var readSet, writeSet, exceptSet fdSet
	if want&WaitReceive != 0 {
		readSet.array[0] = windows.Handle(h)
		readSet.count = 1
	}
	if want&WaitSend != 0 {
		writeSet.array[0] = windows.Handle(h)
		writeSet.count = 1
		exceptSet.array[0] = windows.Handle(h)
		exceptSet.count = 1
	}

	tv := windows.Timeval{
		Sec:  int32(timeoutMS / 1000),
		Usec: int32(timeoutMS%1000) * 1000,
	}
	n, err := winsockSelect(&readSet, &writeSet, &exceptSet, &tv)
	if err != nil {
		return WaitNone, err
	}
	if n == 0 {
		return WaitNone, nil
	}

	ready := WaitNone
	if writeSet.count > 0 || exceptSet.count > 0 {
		ready |= WaitSend
	}
	if readSet.count > 0 {
		ready |= WaitReceive
	}
	return ready, nil
}

// SocketSet is a set of handles for Select, backed by the Winsock fd_set.
type SocketSet struct {
	set fdSet
}

// Zero removes all handles from the set.
func (s *SocketSet) Zero() {
	s.set.count = 0
}

// Add adds h to the set. A Winsock fd_set holds at most 64 handles; adding
// more returns ErrSetFull.
func (s *SocketSet) Add(h Handle) error {
	if s.IsSet(h) {
		return nil
	}
	if s.set.count >= fdSetSize {
		return ErrSetFull
	}
	s.set.array[s.set.count] = windows.Handle(h)
	s.set.count++
	return nil
}

// Remove removes h from the set.
func (s *SocketSet) Remove(h Handle) {
	for i := uint32(0); i < s.set.count; i++ {
		if s.set.array[i] == windows.Handle(h) {
			copy(s.set.array[i:s.set.count], s.set.array[i+1:s.set.count])
			s.set.count--
			return
		}
	}
}

// IsSet reports whether h is in the set.
func (s *SocketSet) IsSet(h Handle) bool {
	for i := uint32(0); i < s.set.count; i++ {
		if s.set.array[i] == windows.Handle(h) {
			return true
		}
	}
	return false
}

func (s *SocketSet) native() *fdSet {
	if s == nil {
		return nil
	}
	return &s.set
}

// selectSockets calls Winsock select. maxHandle is ignored by Winsock.
func selectSockets(maxHandle Handle, read, write *SocketSet, timeout time.Duration) (int, error) {
	if timeout < 0 {
		timeout = 0
	}
	tv := windows.Timeval{
		Sec:  int32(timeout / time.Second),
		Usec: int32((timeout % time.Second) / time.Microsecond),
	}
	return winsockSelect(read.native(), write.native(), nil, &tv)
}

// winsockSelect wraps the Winsock select function.
func winsockSelect(read, write, except *fdSet, tv *windows.Timeval) (int, error) {
	r1, _, e1 := procSelect.Call(
		0,
		uintptr(unsafe.Pointer(read)),
		uintptr(unsafe.Pointer(write)),
		uintptr(unsafe.Pointer(except)),
		uintptr(unsafe.Pointer(tv)),
	)
	if int32(r1) == -1 {
		return -1, winsockError(e1)
	}
	return int(int32(r1)), nil
}
