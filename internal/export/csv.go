package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/hervehildenbrand/sockcore/pkg/rtt"
)

// CSVExporter exports ping series to CSV format, one row per ping.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes the series as CSV to the writer.
func (e *CSVExporter) Export(w io.Writer, s *rtt.Series) error {
	writer := csv.NewWriter(w)

	header := []string{"session", "target", "seq", "peer", "rtt_ms", "timeout"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, p := range s.Samples {
		if err := writer.Write(e.sampleToRow(s, p)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// sampleToRow converts a sample to a CSV row.
func (e *CSVExporter) sampleToRow(s *rtt.Series, p rtt.Sample) []string {
	rttMS := ""
	if !p.Timeout {
		rttMS = fmt.Sprintf("%.3f", millis(p.RTT))
	}

	return []string{
		s.SessionID,
		s.TargetAddr,
		fmt.Sprintf("%d", p.Seq),
		p.Peer,
		rttMS,
		fmt.Sprintf("%t", p.Timeout),
	}
}
