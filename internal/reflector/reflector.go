// Package reflector implements a datagram echo service on the socket layer.
package reflector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hervehildenbrand/sockcore/pkg/socket"
	"go.uber.org/zap"
)

// MaxDatagram is the largest datagram the reflector echoes.
const MaxDatagram = 65507

// batchLimit bounds the datagrams drained per readiness event so Serve
// observes cancellation under sustained load.
const batchLimit = 64

// Config holds reflector configuration.
type Config struct {
	Bind        socket.Address
	RecvBuffer  int           // SO_RCVBUF, 0 keeps the OS default
	SendBuffer  int           // SO_SNDBUF, 0 keeps the OS default
	WaitTimeout time.Duration // upper bound on one readiness wait
}

// DefaultConfig returns a reflector listening on all IPv4 interfaces.
func DefaultConfig() *Config {
	return &Config{
		Bind:        socket.AnyIPv4.WithPort(7777),
		WaitTimeout: 100 * time.Millisecond,
	}
}

// PeerStats counts the traffic received from one peer.
type PeerStats struct {
	Addr     string
	Packets  uint64
	Bytes    uint64
	LastSeen time.Time
}

// Stats is a snapshot of reflector counters.
type Stats struct {
	Packets   uint64
	Bytes     uint64
	Truncated uint64
	SendFails uint64
	Peers     []PeerStats // sorted by address
}

// PacketCallback is called for each datagram received, before it is echoed.
type PacketCallback func(peer socket.Address, size int)

// Reflector echoes every datagram back to its sender.
type Reflector struct {
	config   *Config
	logger   *zap.Logger
	callback PacketCallback

	sock  socket.Handle
	local socket.Address

	mu    sync.Mutex
	stats Stats
	peers map[string]*PeerStats
}

// New creates a reflector. A nil logger disables logging.
func New(cfg *Config, logger *zap.Logger) *Reflector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reflector{
		config: cfg,
		logger: logger,
		sock:   socket.NullHandle,
		peers:  make(map[string]*PeerStats),
	}
}

// SetCallback sets the callback for received packets. Call it before Serve.
func (r *Reflector) SetCallback(cb PacketCallback) {
	r.callback = cb
}

// Start creates and binds the reflector socket.
func (r *Reflector) Start() error {
	if !r.sock.IsNull() {
		return errors.New("reflector already started")
	}

	h, err := socket.CreateFamily(socket.Datagram, r.config.Bind.Family())
	if err != nil {
		return err
	}

	opts := []struct {
		opt   socket.Option
		value int
	}{
		{socket.OptReuseAddr, 1},
		{socket.OptNonBlock, 1},
		{socket.OptRcvBuf, r.config.RecvBuffer},
		{socket.OptSndBuf, r.config.SendBuffer},
	}
	for _, o := range opts {
		if o.value == 0 {
			continue
		}
		if err := h.SetOption(o.opt, o.value); err != nil {
			h.Destroy()
			return err
		}
	}

	bind := r.config.Bind
	if err := h.Bind(&bind); err != nil {
		h.Destroy()
		return err
	}
	local, err := h.LocalAddress()
	if err != nil {
		h.Destroy()
		return err
	}

	r.sock = h
	r.local = local
	r.logger.Info("reflector listening", zap.Stringer("addr", local))
	return nil
}

// Addr returns the bound address. It is valid after Start.
func (r *Reflector) Addr() socket.Address {
	return r.local
}

// Serve echoes datagrams until ctx is cancelled, then releases the socket.
func (r *Reflector) Serve(ctx context.Context) error {
	if r.sock.IsNull() {
		if err := r.Start(); err != nil {
			return err
		}
	}
	defer r.close()

	buf := make([]byte, MaxDatagram)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		cond := socket.WaitReceive
		if err := r.sock.Wait(&cond, r.config.WaitTimeout); err != nil {
			return fmt.Errorf("reflector wait failed: %w", err)
		}
		if cond&socket.WaitReceive == 0 {
			continue
		}

		if err := r.drain(buf); err != nil {
			return err
		}
	}
}

// drain echoes queued datagrams until the socket reports none or the batch
// limit is reached.
func (r *Reflector) drain(buf []byte) error {
	for i := 0; i < batchLimit; i++ {
		var from socket.Address
		n, err := r.sock.Receive(&from, socket.Buffers{buf})
		if errors.Is(err, socket.ErrTruncated) {
			r.mu.Lock()
			r.stats.Truncated++
			r.mu.Unlock()
			continue
		}
		if err != nil {
			return fmt.Errorf("reflector receive failed: %w", err)
		}
		if n == 0 {
			return nil
		}

		r.record(from, n)
		if r.callback != nil {
			r.callback(from, n)
		}

		sent, err := r.sock.Send(&from, socket.Buffers{buf[:n]})
		if err != nil || sent != n {
			r.logger.Debug("echo not sent",
				zap.Stringer("peer", from),
				zap.Int("size", n),
				zap.Error(err))
			r.mu.Lock()
			r.stats.SendFails++
			r.mu.Unlock()
		}
	}
	return nil
}

func (r *Reflector) record(peer socket.Address, size int) {
	key := peer.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Packets++
	r.stats.Bytes += uint64(size)

	p, ok := r.peers[key]
	if !ok {
		p = &PeerStats{Addr: key}
		r.peers[key] = p
		r.logger.Debug("new peer", zap.String("peer", key))
	}
	p.Packets++
	p.Bytes += uint64(size)
	p.LastSeen = time.Now()
}

// Stats returns a snapshot of the counters.
func (r *Reflector) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats
	s.Peers = make([]PeerStats, 0, len(r.peers))
	for _, p := range r.peers {
		s.Peers = append(s.Peers, *p)
	}
	sort.Slice(s.Peers, func(i, j int) bool {
		return s.Peers[i].Addr < s.Peers[j].Addr
	})
	return s
}

func (r *Reflector) close() {
	if r.sock.IsNull() {
		return
	}
	if err := r.sock.Destroy(); err != nil {
		r.logger.Warn("failed to close reflector socket", zap.Error(err))
	}
	r.logger.Info("reflector stopped", zap.Uint64("packets", r.Stats().Packets))
}
