package probe

import (
	"context"
	"syscall"
	"time"

	"github.com/hervehildenbrand/sockcore/pkg/socket"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// State is the outcome of a connect probe.
type State string

const (
	StateOpen     State = "open"
	StateClosed   State = "closed"   // refused or failed
	StateFiltered State = "filtered" // no answer within the timeout
)

// ConnectResult is the outcome of probing one stream endpoint.
type ConnectResult struct {
	Target string        `json:"target"`
	State  State         `json:"state"`
	RTT    time.Duration `json:"rtt"`
	Error  string        `json:"error,omitempty"`
}

// ConnectProber checks stream endpoints with non-blocking connects.
type ConnectProber struct {
	timeout time.Duration
	workers int
	logger  *zap.Logger
}

// NewConnectProber creates a prober running at most workers probes at once.
func NewConnectProber(timeout time.Duration, workers int, logger *zap.Logger) *ConnectProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	return &ConnectProber{
		timeout: timeout,
		workers: workers,
		logger:  logger,
	}
}

// Probe connects to target and reports whether the handshake completed.
func (c *ConnectProber) Probe(ctx context.Context, target socket.Address) ConnectResult {
	result := ConnectResult{Target: target.String()}

	h, err := socket.CreateFamily(socket.Stream, target.Family())
	if err != nil {
		result.State = StateClosed
		result.Error = err.Error()
		return result
	}
	defer h.Destroy()

	if err := h.SetOption(socket.OptNonBlock, 1); err != nil {
		result.State = StateClosed
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	if err := h.Connect(target); err != nil {
		result.State = StateClosed
		result.RTT = time.Since(start)
		result.Error = err.Error()
		return result
	}

	deadline := start.Add(c.timeout)
	for {
		if err := ctx.Err(); err != nil {
			result.State = StateFiltered
			result.Error = err.Error()
			return result
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			result.State = StateFiltered
			return result
		}

		cond := socket.WaitSend
		if err := h.Wait(&cond, remaining); err != nil {
			result.State = StateClosed
			result.Error = err.Error()
			return result
		}
		if cond&socket.WaitSend != 0 {
			break
		}
	}
	result.RTT = time.Since(start)

	code, err := h.GetOption(socket.OptError)
	switch {
	case err != nil:
		result.State = StateClosed
		result.Error = err.Error()
	case code != 0:
		result.State = StateClosed
		result.Error = syscall.Errno(code).Error()
	default:
		result.State = StateOpen
	}

	c.logger.Debug("connect probe finished",
		zap.String("target", result.Target),
		zap.String("state", string(result.State)),
		zap.Duration("rtt", result.RTT))
	return result
}

// ProbeAll probes targets concurrently. Results keep the order of targets.
func (c *ConnectProber) ProbeAll(ctx context.Context, targets []socket.Address) []ConnectResult {
	results := make([]ConnectResult, len(targets))
	if len(targets) == 0 {
		return results
	}

	workerLimit := c.workers
	if workerLimit > len(targets) {
		workerLimit = len(targets)
	}

	p := pool.New().WithMaxGoroutines(workerLimit)
	for idx, target := range targets {
		i, t := idx, target
		p.Go(func() {
			results[i] = c.Probe(ctx, t)
		})
	}
	p.Wait()
	return results
}
