// Package monitor provides continuous ping monitoring with change detection.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/hervehildenbrand/sockcore/pkg/rtt"
	"go.uber.org/zap"
)

// ChangeType represents the type of change detected.
type ChangeType string

const (
	ChangeTypeReachability ChangeType = "reachability"
	ChangeTypePeer         ChangeType = "peer"
	ChangeTypeLatency      ChangeType = "latency"
	ChangeTypeLoss         ChangeType = "loss"
)

// Change represents a detected change between two ping rounds.
type Change struct {
	Type      ChangeType
	Target    string
	Message   string
	Timestamp time.Time
	OldValue  interface{}
	NewValue  interface{}
}

// String formats the change for display.
func (c Change) String() string {
	return fmt.Sprintf("[%s] %s: %s", c.Type, c.Target, c.Message)
}

// Config holds monitoring configuration.
type Config struct {
	Interval         time.Duration // Time between rounds
	LatencyThreshold time.Duration // Alert if average RTT exceeds this
	LossThreshold    float64       // Alert if loss % exceeds this
	AlertOnPeer      bool          // Alert when replies come from a new address
}

// DefaultConfig returns the default monitoring configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval:    10 * time.Second,
		AlertOnPeer: true,
	}
}

// ChangeCallback is called when changes are detected.
type ChangeCallback func([]Change)

// RoundCallback is called after every completed round.
type RoundCallback func(*rtt.Series)

// Monitor runs ping rounds on a fixed interval and compares each round
// with the previous one.
type Monitor struct {
	config   *Config
	logger   *zap.Logger
	callback ChangeCallback
	onRound  RoundCallback
	previous *rtt.Series
}

// NewMonitor creates a new monitor. A nil logger disables logging.
func NewMonitor(cfg *Config, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		config: cfg,
		logger: logger,
	}
}

// SetCallback sets the callback for change notifications.
func (m *Monitor) SetCallback(cb ChangeCallback) {
	m.callback = cb
}

// SetRoundCallback sets the callback invoked with every round's series.
func (m *Monitor) SetRoundCallback(cb RoundCallback) {
	m.onRound = cb
}

// DetectChanges compares two rounds and returns detected changes.
func (m *Monitor) DetectChanges(prev, curr *rtt.Series) []Change {
	if prev == nil || curr == nil {
		return nil
	}

	now := time.Now()
	target := curr.Target
	var changes []Change

	// Reachability flips suppress the other comparisons
	prevUp, currUp := prev.Received() > 0, curr.Received() > 0
	switch {
	case prevUp && !currUp:
		return append(changes, Change{
			Type:      ChangeTypeReachability,
			Target:    target,
			Message:   "Target stopped replying",
			Timestamp: now,
			OldValue:  prev.Received(),
			NewValue:  0,
		})
	case !prevUp && currUp:
		return append(changes, Change{
			Type:      ChangeTypeReachability,
			Target:    target,
			Message:   fmt.Sprintf("Target replying again from %s", curr.PrimaryPeer()),
			Timestamp: now,
			OldValue:  0,
			NewValue:  curr.Received(),
		})
	case !currUp:
		return nil
	}

	if m.config.AlertOnPeer {
		prevPeer, currPeer := prev.PrimaryPeer(), curr.PrimaryPeer()
		if prevPeer != currPeer {
			changes = append(changes, Change{
				Type:      ChangeTypePeer,
				Target:    target,
				Message:   fmt.Sprintf("Replies moved from %s to %s", prevPeer, currPeer),
				Timestamp: now,
				OldValue:  prevPeer,
				NewValue:  currPeer,
			})
		}
	}

	if m.config.LatencyThreshold > 0 {
		prevRTT := prev.AvgRTT()
		currRTT := curr.AvgRTT()
		if currRTT > m.config.LatencyThreshold && currRTT > prevRTT {
			changes = append(changes, Change{
				Type:      ChangeTypeLatency,
				Target:    target,
				Message:   fmt.Sprintf("Latency increased from %.1fms to %.1fms (threshold: %.1fms)", msec(prevRTT), msec(currRTT), msec(m.config.LatencyThreshold)),
				Timestamp: now,
				OldValue:  prevRTT,
				NewValue:  currRTT,
			})
		}
	}

	if m.config.LossThreshold > 0 {
		prevLoss := prev.LossPercent()
		currLoss := curr.LossPercent()
		if currLoss > m.config.LossThreshold && currLoss > prevLoss {
			changes = append(changes, Change{
				Type:      ChangeTypeLoss,
				Target:    target,
				Message:   fmt.Sprintf("Loss increased from %.1f%% to %.1f%% (threshold: %.1f%%)", prevLoss, currLoss, m.config.LossThreshold),
				Timestamp: now,
				OldValue:  prevLoss,
				NewValue:  currLoss,
			})
		}
	}

	return changes
}

// Run starts the monitoring loop. pingFn runs one round; a failed round is
// logged and skipped. Run returns ctx.Err() when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, pingFn func(context.Context) (*rtt.Series, error)) error {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	// Initial round
	result, err := pingFn(ctx)
	if err != nil {
		return fmt.Errorf("initial round failed: %w", err)
	}
	m.round(result)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			result, err := pingFn(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.logger.Warn("ping round failed", zap.Error(err))
				continue
			}
			m.round(result)
		}
	}
}

func (m *Monitor) round(result *rtt.Series) {
	if m.onRound != nil {
		m.onRound(result)
	}

	changes := m.DetectChanges(m.previous, result)
	if len(changes) > 0 {
		m.logger.Debug("changes detected", zap.Int("count", len(changes)))
		if m.callback != nil {
			m.callback(changes)
		}
	}
	m.previous = result
}

func msec(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
