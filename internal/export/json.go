// Package export writes ping series as JSON, CSV or text.
package export

import (
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/hervehildenbrand/sockcore/pkg/rtt"
)

// ExportedSeries is the JSON representation of a ping series.
type ExportedSeries struct {
	Target      string           `json:"target"`
	TargetAddr  string           `json:"targetAddr"`
	SessionID   string           `json:"sessionId,omitempty"`
	StartTime   time.Time        `json:"startTime,omitempty"`
	EndTime     time.Time        `json:"endTime,omitempty"`
	Sent        int              `json:"sent"`
	Received    int              `json:"received"`
	LossPercent float64          `json:"lossPercent"`
	MinRTT      float64          `json:"minRtt"` // in ms
	AvgRTT      float64          `json:"avgRtt"` // in ms
	MaxRTT      float64          `json:"maxRtt"` // in ms
	StdDev      float64          `json:"stdDev"` // in ms
	Samples     []ExportedSample `json:"samples"`
}

// ExportedSample is the JSON representation of a single ping.
type ExportedSample struct {
	Seq     uint32  `json:"seq"`
	Peer    string  `json:"peer,omitempty"`
	RTT     float64 `json:"rtt,omitempty"` // in ms
	Timeout bool    `json:"timeout,omitempty"`
}

// JSONExporter exports ping series to JSON format.
type JSONExporter struct {
	Pretty bool // Whether to pretty-print the JSON
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{
		Pretty: false,
	}
}

// Export writes the series as JSON to the writer.
func (e *JSONExporter) Export(w io.Writer, s *rtt.Series) error {
	exported := Convert(s)

	encoder := json.NewEncoder(w)
	if e.Pretty {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(exported)
}

// Convert transforms a Series to an ExportedSeries.
func Convert(s *rtt.Series) *ExportedSeries {
	exported := &ExportedSeries{
		Target:      s.Target,
		TargetAddr:  s.TargetAddr,
		SessionID:   s.SessionID,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Sent:        s.Sent(),
		Received:    s.Received(),
		LossPercent: s.LossPercent(),
		MinRTT:      millis(s.MinRTT()),
		AvgRTT:      millis(s.AvgRTT()),
		MaxRTT:      millis(s.MaxRTT()),
		StdDev:      millis(s.StdDev()),
		Samples:     make([]ExportedSample, 0, len(s.Samples)),
	}

	for _, p := range s.Samples {
		exported.Samples = append(exported.Samples, ExportedSample{
			Seq:     p.Seq,
			Peer:    p.Peer,
			RTT:     millis(p.RTT),
			Timeout: p.Timeout,
		})
	}

	return exported
}
