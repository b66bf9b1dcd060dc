package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

func TestCSVExporter_Export_OneRowPerSample(t *testing.T) {
	s := createTestSeries()
	exporter := NewCSVExporter()

	var buf bytes.Buffer
	if err := exporter.Export(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reader := csv.NewReader(strings.NewReader(buf.String()))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 1+len(s.Samples) {
		t.Fatalf("expected header plus %d rows, got %d", len(s.Samples), len(records))
	}

	header := strings.Join(records[0], ",")
	if header != "session,target,seq,peer,rtt_ms,timeout" {
		t.Errorf("unexpected header %q", header)
	}
}

func TestCSVExporter_Export_Rows(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter().Export(&buf, createTestSeries()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}

	reply := records[1]
	if reply[2] != "0" || reply[3] != "192.0.2.1:7777" || reply[4] != "10.000" || reply[5] != "false" {
		t.Errorf("unexpected reply row %v", reply)
	}

	timeout := records[2]
	if timeout[3] != "" || timeout[4] != "" || timeout[5] != "true" {
		t.Errorf("unexpected timeout row %v", timeout)
	}
}
