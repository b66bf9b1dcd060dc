package socket

import "go.uber.org/zap"

// Option identifies a socket behaviour configurable through SetOption.
// The set is closed: each value maps to exactly one native option.
type Option int

const (
	OptNonBlock   Option = iota + 1 // non-blocking I/O (value != 0 enables)
	OptBroadcast                    // SO_BROADCAST
	OptReuseAddr                    // SO_REUSEADDR
	OptRcvBuf                       // SO_RCVBUF in bytes
	OptSndBuf                       // SO_SNDBUF in bytes
	OptRcvTimeout                   // SO_RCVTIMEO in milliseconds
	OptSndTimeout                   // SO_SNDTIMEO in milliseconds
	OptNoDelay                      // TCP_NODELAY
	OptError                        // SO_ERROR, get-only
)

var optionNames = map[Option]string{
	OptNonBlock:   "nonblock",
	OptBroadcast:  "broadcast",
	OptReuseAddr:  "reuseaddr",
	OptRcvBuf:     "rcvbuf",
	OptSndBuf:     "sndbuf",
	OptRcvTimeout: "rcvtimeo",
	OptSndTimeout: "sndtimeo",
	OptNoDelay:    "nodelay",
	OptError:      "error",
}

// String returns the option name.
func (o Option) String() string {
	if name, ok := optionNames[o]; ok {
		return name
	}
	return "unknown"
}

// SetOption applies one option to the socket.
//
// Options the platform does not apply, including OptError and values outside
// the enumeration, are ignored and SetOption returns nil. Callers built
// against a larger option set keep working against this one.
func (h Handle) SetOption(opt Option, value int) error {
	if h == NullHandle {
		return ErrNullHandle
	}
	applied, err := h.setOption(opt, value)
	if err != nil {
		return h.fail("set option "+opt.String(), err)
	}
	if !applied {
		Logger().Debug("socket option ignored", zap.Stringer("option", opt))
	}
	return nil
}

// GetOption reads an option back. Only OptError is supported; reading it
// returns and clears the pending error on the socket.
func (h Handle) GetOption(opt Option) (int, error) {
	if h == NullHandle {
		return 0, ErrNullHandle
	}
	if opt != OptError {
		return 0, ErrUnsupportedOption
	}
	v, err := h.socketError()
	if err != nil {
		return 0, h.fail("get option "+opt.String(), err)
	}
	return v, nil
}
