package socket

import (
	"fmt"
)

// CreateFamily allocates a socket of the given kind and address family.
func CreateFamily(kind Kind, family Family) (Handle, error) {
	domain, err := socketDomain(family)
	if err != nil {
		return NullHandle, err
	}
	typ, err := socketType(kind)
	if err != nil {
		return NullHandle, err
	}

	h, err := createSocket(domain, typ)
	if err != nil {
		return NullHandle, fmt.Errorf("failed to create %s socket: %w", kind, err)
	}
	return h, nil
}

// Bind binds the socket to addr. A nil addr binds the wildcard address of
// DefaultFamily on an OS-assigned port.
func (h Handle) Bind(addr *Address) error {
	if h == NullHandle {
		return ErrNullHandle
	}
	sa, err := toSockaddr(bindTarget(addr))
	if err != nil {
		return err
	}
	if err := bindSocket(h, sa); err != nil {
		return h.fail("bind", err)
	}
	return nil
}

// Listen marks a stream socket as passive. A negative backlog selects the
// OS maximum.
func (h Handle) Listen(backlog int) error {
	if h == NullHandle {
		return ErrNullHandle
	}
	if backlog < 0 {
		backlog = maxBacklog
	}
	if err := listenSocket(h, backlog); err != nil {
		return h.fail("listen", err)
	}
	return nil
}

// Connect starts a connection to addr. On a non-blocking socket a connect
// that cannot finish immediately returns nil; the caller waits for WaitSend
// and reads OptError to learn the outcome.
func (h Handle) Connect(addr Address) error {
	if h == NullHandle {
		return ErrNullHandle
	}
	sa, err := toSockaddr(addr)
	if err != nil {
		return err
	}
	if err := connectSocket(h, sa); err != nil && !isInProgress(err) {
		return h.fail("connect", err)
	}
	return nil
}

// Accept accepts one pending connection. When out is non-nil the peer
// address is stored in it.
//
// Both failure modes return NullHandle. A listener with nothing pending
// returns ErrWouldBlock; any other error is an OS failure.
func (h Handle) Accept(out *Address) (Handle, error) {
	if h == NullHandle {
		return NullHandle, ErrNullHandle
	}
	nh, sa, err := acceptSocket(h)
	if err != nil {
		if isWouldBlock(err) {
			return NullHandle, ErrWouldBlock
		}
		return NullHandle, h.fail("accept", err)
	}
	if out != nil && sa != nil {
		if peer, err := fromSockaddr(sa); err == nil {
			*out = peer
		}
	}
	return nh, nil
}

// LocalAddress returns the address the socket is bound to.
func (h Handle) LocalAddress() (Address, error) {
	if h == NullHandle {
		return Address{}, ErrNullHandle
	}
	sa, err := localSockaddr(h)
	if err != nil {
		return Address{}, h.fail("get local address", err)
	}
	return fromSockaddr(sa)
}

// Shutdown disables receiving, sending or both without releasing the socket.
func (h Handle) Shutdown(mode ShutdownMode) error {
	if h == NullHandle {
		return ErrNullHandle
	}
	how, err := shutdownHow(mode)
	if err != nil {
		return err
	}
	if err := shutdownSocket(h, how); err != nil {
		return h.fail("shutdown", err)
	}
	return nil
}

// Destroy releases the socket and sets *h to NullHandle. Destroying a
// NullHandle does nothing.
func (h *Handle) Destroy() error {
	if h == nil || *h == NullHandle {
		return nil
	}
	fd := *h
	*h = NullHandle
	if err := closeSocket(fd); err != nil {
		return fd.fail("close", err)
	}
	return nil
}
