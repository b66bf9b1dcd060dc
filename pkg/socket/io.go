package socket

// Send transmits bufs as one message and returns the number of bytes sent.
//
// For datagram sockets to is the destination of this call only; for stream
// sockets it is ignored. A send that would block returns (0, nil).
func (h Handle) Send(to *Address, bufs Buffers) (int, error) {
	if h == NullHandle {
		return 0, ErrNullHandle
	}

	var sa sockaddr
	if to != nil {
		stream, err := isStreamSocket(h)
		if err != nil {
			return 0, h.fail("send", err)
		}
		if !stream {
			if sa, err = toSockaddr(*to); err != nil {
				return 0, err
			}
		}
	}

	n, err := sendBuffers(h, bufs, sa)
	if err != nil {
		if isWouldBlock(err) {
			return 0, nil
		}
		return 0, h.fail("send", err)
	}
	return n, nil
}

// Receive reads one message into bufs in order and returns its length.
//
// A datagram larger than bufs fails with ErrTruncated. Would-block and
// connection reset return (0, nil). When from is non-nil the sender address
// is written to it.
func (h Handle) Receive(from *Address, bufs Buffers) (int, error) {
	if h == NullHandle {
		return 0, ErrNullHandle
	}

	n, sa, truncated, err := recvBuffers(h, bufs)
	if err != nil {
		if isWouldBlock(err) || isConnReset(err) {
			return 0, nil
		}
		return 0, h.fail("receive", err)
	}
	if truncated {
		return 0, ErrTruncated
	}

	if from != nil && sa != nil {
		peer, err := fromSockaddr(sa)
		if err != nil {
			return 0, err
		}
		*from = peer
	}
	return n, nil
}
