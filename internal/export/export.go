package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hervehildenbrand/sockcore/pkg/rtt"
)

// Exporter is the interface for ping series exporters.
type Exporter interface {
	Export(w io.Writer, s *rtt.Series) error
}

// Format represents an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// DetectFormat determines the export format from a filename.
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	case ".txt", ".text":
		return FormatText
	default:
		return FormatJSON // Default to JSON
	}
}

// NewExporter creates an exporter for the given format.
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatText, "txt":
		return NewTextExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ExportToFile exports a ping series to a file.
func ExportToFile(filename string, format Format, s *rtt.Series) error {
	if format == "" {
		format = DetectFormat(filename)
	}

	exporter, err := NewExporter(format)
	if err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := exporter.Export(f, s); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	return nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
