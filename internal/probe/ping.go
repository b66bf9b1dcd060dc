// Package probe measures reachability over the socket layer: datagram round
// trips against a reflector and non-blocking stream connects.
package probe

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hervehildenbrand/sockcore/pkg/clock"
	"github.com/hervehildenbrand/sockcore/pkg/rtt"
	"github.com/hervehildenbrand/sockcore/pkg/socket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Ping payload layout: session id, sequence number, send time on the
// pinger's clock. Bytes past the header are padding.
const (
	headerSize   = 24
	seqOffset    = 16
	stampOffset  = 20
	maxReplySize = 65507
)

// PingConfig holds datagram ping configuration.
type PingConfig struct {
	Count       int
	Interval    time.Duration // Gap between pings
	Rate        float64       // Pings per second, 0 = unlimited
	PayloadSize int
	Timeout     time.Duration // Reply wait per ping
}

// DefaultPingConfig returns the default ping configuration.
func DefaultPingConfig() *PingConfig {
	return &PingConfig{
		Count:       5,
		Interval:    time.Second,
		Rate:        10,
		PayloadSize: 64,
		Timeout:     time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *PingConfig) Validate() error {
	if c.Count <= 0 {
		return errors.New("count must be positive")
	}
	if c.PayloadSize < headerSize || c.PayloadSize > maxReplySize {
		return fmt.Errorf("payload size must be between %d and %d", headerSize, maxReplySize)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.Rate < 0 {
		return errors.New("rate must not be negative")
	}
	return nil
}

// SampleCallback is called as each ping completes.
type SampleCallback func(rtt.Sample)

// Pinger sends sequenced datagrams to a reflector and times the echoes.
type Pinger struct {
	config  *PingConfig
	clock   *clock.Clock
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewPinger creates a pinger. A nil logger disables logging.
func NewPinger(cfg *PingConfig, logger *zap.Logger) *Pinger {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pinger{
		config: cfg,
		clock:  clock.New(),
		logger: logger,
	}
	if cfg.Rate > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	return p
}

// Ping runs one session against target. name labels the result; the
// callback may be nil. Cancelling ctx ends the session early and returns
// the samples gathered so far with ctx.Err().
func (p *Pinger) Ping(ctx context.Context, name string, target socket.Address, callback SampleCallback) (*rtt.Series, error) {
	if err := p.config.Validate(); err != nil {
		return nil, err
	}

	h, err := socket.CreateFamily(socket.Datagram, target.Family())
	if err != nil {
		return nil, err
	}
	defer h.Destroy()

	if err := h.SetOption(socket.OptNonBlock, 1); err != nil {
		return nil, err
	}

	session := uuid.New()
	series := rtt.NewSeries(name, target.String())
	series.SessionID = session.String()
	series.StartTime = time.Now()
	p.clock.Rebase(0)

	payload := make([]byte, p.config.PayloadSize)
	copy(payload, session[:])
	reply := make([]byte, maxReplySize)

	p.logger.Debug("ping session started",
		zap.String("session", series.SessionID),
		zap.Stringer("target", target))

	for seq := uint32(0); seq < uint32(p.config.Count); seq++ {
		if seq > 0 && p.config.Interval > 0 {
			if err := sleep(ctx, p.config.Interval); err != nil {
				series.EndTime = time.Now()
				return series, err
			}
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				series.EndTime = time.Now()
				return series, err
			}
		}

		sample, err := p.pingOnce(ctx, h, target, session, seq, payload, reply)
		if err != nil {
			series.EndTime = time.Now()
			return series, err
		}
		if sample.Timeout {
			series.AddTimeout(seq)
		} else {
			series.AddReply(seq, sample.Peer, sample.RTT)
		}
		if callback != nil {
			callback(sample)
		}
	}

	series.EndTime = time.Now()
	return series, nil
}

// pingOnce sends one sequenced datagram and waits for its echo.
func (p *Pinger) pingOnce(ctx context.Context, h socket.Handle, target socket.Address, session uuid.UUID, seq uint32, payload, reply []byte) (rtt.Sample, error) {
	sentAt := p.clock.Now()
	binary.BigEndian.PutUint32(payload[seqOffset:], seq)
	binary.BigEndian.PutUint32(payload[stampOffset:], sentAt)

	start := time.Now()
	n, err := h.Send(&target, socket.Buffers{payload})
	if err != nil {
		return rtt.Sample{}, err
	}
	if n == 0 {
		p.logger.Debug("ping send would block", zap.Uint32("seq", seq))
		return rtt.Sample{Seq: seq, Timeout: true}, nil
	}

	deadline := sentAt + uint32(p.config.Timeout.Milliseconds())
	for {
		if err := ctx.Err(); err != nil {
			return rtt.Sample{}, err
		}

		now := p.clock.Now()
		if !clock.Less(now, deadline) {
			return rtt.Sample{Seq: seq, Timeout: true}, nil
		}

		cond := socket.WaitReceive
		if err := h.Wait(&cond, time.Duration(deadline-now)*time.Millisecond); err != nil {
			return rtt.Sample{}, err
		}
		if cond&socket.WaitReceive == 0 {
			continue
		}

		var from socket.Address
		n, err := h.Receive(&from, socket.Buffers{reply})
		if err != nil {
			if errors.Is(err, socket.ErrTruncated) {
				continue
			}
			return rtt.Sample{}, err
		}
		if n < headerSize {
			continue
		}

		gotSession, gotSeq, stamp := decodeHeader(reply[:n])
		if gotSession != session {
			p.logger.Debug("foreign reply ignored", zap.Stringer("peer", from))
			continue
		}
		if gotSeq != seq {
			p.logger.Debug("late reply ignored",
				zap.Uint32("seq", gotSeq),
				zap.Uint32("age_ms", p.clock.Since(stamp)))
			continue
		}

		return rtt.Sample{
			Seq:  seq,
			Peer: from.String(),
			RTT:  time.Since(start),
		}, nil
	}
}

func decodeHeader(b []byte) (session uuid.UUID, seq, stamp uint32) {
	copy(session[:], b[:seqOffset])
	seq = binary.BigEndian.Uint32(b[seqOffset:])
	stamp = binary.BigEndian.Uint32(b[stampOffset:])
	return session, seq, stamp
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
