package display

import (
	"time"

	"github.com/hervehildenbrand/sockcore/internal/reflector"
)

// RateHistorySize is the number of rate samples to keep for sparkline display.
const RateHistorySize = 20

// PeerHistory tracks the packet rate of one reflector peer across refreshes.
type PeerHistory struct {
	Addr        string
	Packets     uint64
	Bytes       uint64
	LastSeen    time.Time
	LastRate    uint64   // packets since the previous refresh
	RateHistory []uint64 // Ring buffer for sparkline
}

// NewPeerHistory creates an empty history for addr.
func NewPeerHistory(addr string) *PeerHistory {
	return &PeerHistory{
		Addr:        addr,
		RateHistory: make([]uint64, 0, RateHistorySize),
	}
}

// Observe records a new counter snapshot for the peer.
func (h *PeerHistory) Observe(p reflector.PeerStats) {
	var delta uint64
	if p.Packets >= h.Packets {
		delta = p.Packets - h.Packets
	}
	h.Packets = p.Packets
	h.Bytes = p.Bytes
	h.LastSeen = p.LastSeen
	h.push(delta)
}

// Idle records a refresh in which the peer was not in the snapshot.
func (h *PeerHistory) Idle() {
	h.push(0)
}

func (h *PeerHistory) push(delta uint64) {
	h.LastRate = delta

	// Add to history (ring buffer)
	if len(h.RateHistory) >= RateHistorySize {
		// Shift left, drop oldest
		copy(h.RateHistory, h.RateHistory[1:])
		h.RateHistory[RateHistorySize-1] = delta
	} else {
		h.RateHistory = append(h.RateHistory, delta)
	}
}

// PeakRate returns the highest rate in the history.
func (h *PeerHistory) PeakRate() uint64 {
	var peak uint64
	for _, r := range h.RateHistory {
		if r > peak {
			peak = r
		}
	}
	return peak
}
