// Package rtt defines the round-trip sample model for datagram pings.
package rtt

import (
	"math"
	"time"
)

// Sample is the outcome of one ping.
type Sample struct {
	Seq     uint32
	Peer    string // address the reply came from, empty on timeout
	RTT     time.Duration
	Timeout bool
}

// Series collects the samples of one ping session against a target.
type Series struct {
	Target     string    // Target as given by the user
	TargetAddr string    // Resolved target address with port
	SessionID  string    // Session tag carried in every payload
	Samples    []Sample  // Samples in send order
	StartTime  time.Time // When the session started
	EndTime    time.Time // When the session completed
}

// NewSeries creates an empty Series for the given target.
func NewSeries(target, targetAddr string) *Series {
	return &Series{
		Target:     target,
		TargetAddr: targetAddr,
		Samples:    make([]Sample, 0),
	}
}

// AddReply records a ping answered by peer after rtt.
func (s *Series) AddReply(seq uint32, peer string, rtt time.Duration) {
	s.Samples = append(s.Samples, Sample{
		Seq:  seq,
		Peer: peer,
		RTT:  rtt,
	})
}

// AddTimeout records a ping that got no reply.
func (s *Series) AddTimeout(seq uint32) {
	s.Samples = append(s.Samples, Sample{
		Seq:     seq,
		Timeout: true,
	})
}

// Sent returns the number of pings sent.
func (s *Series) Sent() int {
	return len(s.Samples)
}

// Received returns the number of pings answered.
func (s *Series) Received() int {
	n := 0
	for _, p := range s.Samples {
		if !p.Timeout {
			n++
		}
	}
	return n
}

// AvgRTT calculates the average RTT excluding timeouts.
func (s *Series) AvgRTT() time.Duration {
	var total time.Duration
	var count int

	for _, p := range s.Samples {
		if !p.Timeout {
			total += p.RTT
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return total / time.Duration(count)
}

// MinRTT returns the smallest RTT, or 0 if nothing was answered.
func (s *Series) MinRTT() time.Duration {
	var best time.Duration = -1
	for _, p := range s.Samples {
		if !p.Timeout && (best < 0 || p.RTT < best) {
			best = p.RTT
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// MaxRTT returns the largest RTT, or 0 if nothing was answered.
func (s *Series) MaxRTT() time.Duration {
	var worst time.Duration
	for _, p := range s.Samples {
		if !p.Timeout && p.RTT > worst {
			worst = p.RTT
		}
	}
	return worst
}

// StdDev returns the standard deviation of answered RTTs.
func (s *Series) StdDev() time.Duration {
	n := s.Received()
	if n < 2 {
		return 0
	}
	mean := float64(s.AvgRTT())
	var sum float64
	for _, p := range s.Samples {
		if !p.Timeout {
			d := float64(p.RTT) - mean
			sum += d * d
		}
	}
	return time.Duration(math.Sqrt(sum / float64(n)))
}

// LossPercent calculates the packet loss percentage.
func (s *Series) LossPercent() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	return float64(s.Sent()-s.Received()) / float64(len(s.Samples)) * 100
}

// PrimaryPeer returns the address of the first reply, or "" if nothing
// was answered.
func (s *Series) PrimaryPeer() string {
	for _, p := range s.Samples {
		if p.Peer != "" {
			return p.Peer
		}
	}
	return ""
}

// HasMultiplePeers returns true if replies came from more than one address.
func (s *Series) HasMultiplePeers() bool {
	peers := make(map[string]bool)
	for _, p := range s.Samples {
		if p.Peer != "" {
			peers[p.Peer] = true
		}
	}
	return len(peers) > 1
}

// Duration returns how long the session ran.
func (s *Series) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}
