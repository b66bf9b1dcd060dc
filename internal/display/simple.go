// Package display provides output rendering for sockcore commands.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hervehildenbrand/sockcore/internal/monitor"
	"github.com/hervehildenbrand/sockcore/internal/probe"
	"github.com/hervehildenbrand/sockcore/internal/reflector"
	"github.com/hervehildenbrand/sockcore/pkg/rtt"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SimpleRenderer renders command results as plain text lines.
type SimpleRenderer struct {
	ShowPeer bool
}

// NewSimpleRenderer creates a new SimpleRenderer with default settings.
func NewSimpleRenderer() *SimpleRenderer {
	return &SimpleRenderer{
		ShowPeer: true,
	}
}

// FormatRTT formats a duration as milliseconds.
func (r *SimpleRenderer) FormatRTT(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	return fmt.Sprintf("%.2fms", ms)
}

// RenderSample renders a single ping as a text line.
func (r *SimpleRenderer) RenderSample(s rtt.Sample) string {
	if s.Timeout {
		return fmt.Sprintf("seq=%d  *  timeout", s.Seq)
	}
	if r.ShowPeer && s.Peer != "" {
		return fmt.Sprintf("seq=%d  from %s  time=%s", s.Seq, s.Peer, r.FormatRTT(s.RTT))
	}
	return fmt.Sprintf("seq=%d  time=%s", s.Seq, r.FormatRTT(s.RTT))
}

// RenderSeriesHeader writes the line printed before the first ping.
func (r *SimpleRenderer) RenderSeriesHeader(w io.Writer, target, targetAddr string, payload int) {
	fmt.Fprintf(w, "PING %s (%s): %d data bytes\n", target, targetAddr, payload)
}

// RenderSummary writes the closing statistics of a ping series.
func (r *SimpleRenderer) RenderSummary(w io.Writer, s *rtt.Series) {
	fmt.Fprintf(w, "--- %s ping statistics ---\n", s.Target)
	fmt.Fprintf(w, "%d sent, %d received, %.1f%% loss\n", s.Sent(), s.Received(), s.LossPercent())
	if s.Received() > 0 {
		fmt.Fprintf(w, "rtt min/avg/max/stddev = %s/%s/%s/%s\n",
			r.FormatRTT(s.MinRTT()), r.FormatRTT(s.AvgRTT()),
			r.FormatRTT(s.MaxRTT()), r.FormatRTT(s.StdDev()))
	}
}

// RenderRound renders one monitoring round as a single line.
func (r *SimpleRenderer) RenderRound(s *rtt.Series) string {
	line := fmt.Sprintf("%s  %s  %d/%d  %.1f%% loss",
		s.EndTime.Format("15:04:05"), s.Target, s.Received(), s.Sent(), s.LossPercent())
	if s.Received() > 0 {
		line += "  avg " + r.FormatRTT(s.AvgRTT())
	}
	return line
}

// RenderChange renders a detected change as an alert line.
func (r *SimpleRenderer) RenderChange(c monitor.Change) string {
	return "! " + c.String()
}

// ResolveResult is one resolved name.
type ResolveResult struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Family  string `json:"family,omitempty"`
	Reverse string `json:"reverse,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RenderResolve renders a resolved name as a text line.
func (r *SimpleRenderer) RenderResolve(res ResolveResult) string {
	if res.Error != "" {
		return fmt.Sprintf("%s  error: %s", res.Name, res.Error)
	}
	line := fmt.Sprintf("%s  %s  [%s]", res.Name, res.Address, res.Family)
	if res.Reverse != "" && res.Reverse != res.Address {
		line += fmt.Sprintf("  (%s)", res.Reverse)
	}
	return line
}

// RenderProbe renders a connect probe result as a text line.
func (r *SimpleRenderer) RenderProbe(res probe.ConnectResult) string {
	parts := []string{fmt.Sprintf("%-24s", res.Target), fmt.Sprintf("%-8s", res.State)}
	if res.State == probe.StateOpen || res.RTT > 0 {
		parts = append(parts, r.FormatRTT(res.RTT))
	}
	if res.Error != "" {
		parts = append(parts, res.Error)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// RenderStats writes a reflector counter snapshot.
func (r *SimpleRenderer) RenderStats(w io.Writer, s reflector.Stats) {
	fmt.Fprintf(w, "%d packets, %d bytes, %d truncated, %d send failures, %d peers\n",
		s.Packets, s.Bytes, s.Truncated, s.SendFails, len(s.Peers))
	for _, p := range s.Peers {
		fmt.Fprintf(w, "  %-40s %8d pkts %10d bytes\n", p.Addr, p.Packets, p.Bytes)
	}
}
