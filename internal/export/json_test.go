package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestJSONExporter_Export_ProducesValidJSON(t *testing.T) {
	exporter := NewJSONExporter()

	var buf bytes.Buffer
	if err := exporter.Export(&buf, createTestSeries()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
}

func TestJSONExporter_Export_IncludesSummary(t *testing.T) {
	var buf bytes.Buffer
	_ = NewJSONExporter().Export(&buf, createTestSeries())

	var result ExportedSeries
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Target != "reflector.example" || result.TargetAddr != "192.0.2.1:7777" {
		t.Errorf("unexpected target fields %q %q", result.Target, result.TargetAddr)
	}
	if result.Sent != 3 || result.Received != 2 {
		t.Errorf("expected 3 sent 2 received, got %d/%d", result.Sent, result.Received)
	}
	if result.AvgRTT != 20 || result.MinRTT != 10 || result.MaxRTT != 30 {
		t.Errorf("unexpected rtt summary min=%v avg=%v max=%v", result.MinRTT, result.AvgRTT, result.MaxRTT)
	}
	if len(result.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(result.Samples))
	}
	if !result.Samples[1].Timeout || result.Samples[1].Peer != "" {
		t.Errorf("expected second sample to be a timeout, got %+v", result.Samples[1])
	}
}

func TestJSONExporter_Export_Pretty(t *testing.T) {
	exporter := NewJSONExporter()
	exporter.Pretty = true

	var buf bytes.Buffer
	_ = exporter.Export(&buf, createTestSeries())

	if !strings.Contains(buf.String(), "\n  \"target\"") {
		t.Errorf("expected indented output, got %s", buf.String())
	}
}
