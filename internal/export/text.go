package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hervehildenbrand/sockcore/pkg/rtt"
)

// TextExporter exports ping series to human-readable text format.
type TextExporter struct{}

// NewTextExporter creates a new text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export writes the series as text to the writer.
func (e *TextExporter) Export(w io.Writer, s *rtt.Series) error {
	fmt.Fprintf(w, "Ping %s (%s)\n", s.Target, s.TargetAddr)
	if s.SessionID != "" {
		fmt.Fprintf(w, "Session: %s\n", s.SessionID)
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))

	for _, p := range s.Samples {
		if p.Timeout {
			fmt.Fprintf(w, "seq=%-4d *  (timeout)\n", p.Seq)
			continue
		}
		fmt.Fprintf(w, "seq=%-4d %s  %.3fms\n", p.Seq, p.Peer, millis(p.RTT))
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "%d sent, %d received, %.1f%% loss\n", s.Sent(), s.Received(), s.LossPercent())
	if s.Received() > 0 {
		fmt.Fprintf(w, "rtt min/avg/max/stddev = %.3f/%.3f/%.3f/%.3f ms\n",
			millis(s.MinRTT()), millis(s.AvgRTT()), millis(s.MaxRTT()), millis(s.StdDev()))
	}
	if s.HasMultiplePeers() {
		fmt.Fprintln(w, "warning: replies came from more than one address")
	}
	if d := s.Duration(); d > 0 {
		fmt.Fprintf(w, "Duration: %v\n", d.Round(time.Millisecond))
	}

	return nil
}
