package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hervehildenbrand/sockcore/internal/monitor"
	"github.com/hervehildenbrand/sockcore/internal/probe"
	"github.com/hervehildenbrand/sockcore/internal/reflector"
	"github.com/hervehildenbrand/sockcore/pkg/rtt"
)

func TestSimpleRenderer_FormatRTT(t *testing.T) {
	r := NewSimpleRenderer()

	tests := []struct {
		input    time.Duration
		expected string
	}{
		{5 * time.Millisecond, "5.00ms"},
		{1500 * time.Microsecond, "1.50ms"},
		{0, "0.00ms"},
	}

	for _, tt := range tests {
		if got := r.FormatRTT(tt.input); got != tt.expected {
			t.Errorf("FormatRTT(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSimpleRenderer_RenderSample(t *testing.T) {
	r := NewSimpleRenderer()

	tests := []struct {
		name     string
		sample   rtt.Sample
		expected string
	}{
		{"reply", rtt.Sample{Seq: 3, Peer: "192.0.2.1:7777", RTT: 2 * time.Millisecond}, "seq=3  from 192.0.2.1:7777  time=2.00ms"},
		{"timeout", rtt.Sample{Seq: 4, Timeout: true}, "seq=4  *  timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RenderSample(tt.sample); got != tt.expected {
				t.Errorf("RenderSample() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSimpleRenderer_RenderSample_HidesPeer(t *testing.T) {
	r := NewSimpleRenderer()
	r.ShowPeer = false

	got := r.RenderSample(rtt.Sample{Seq: 1, Peer: "192.0.2.1:7777", RTT: time.Millisecond})
	if strings.Contains(got, "192.0.2.1") {
		t.Errorf("expected peer hidden, got %q", got)
	}
}

func TestSimpleRenderer_RenderSummary(t *testing.T) {
	s := rtt.NewSeries("reflector.example", "192.0.2.1:7777")
	s.AddReply(0, "192.0.2.1:7777", 10*time.Millisecond)
	s.AddTimeout(1)

	var buf bytes.Buffer
	NewSimpleRenderer().RenderSummary(&buf, s)
	out := buf.String()

	for _, want := range []string{"--- reflector.example ping statistics ---", "2 sent, 1 received, 50.0% loss", "10.00ms/10.00ms/10.00ms/0.00ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestSimpleRenderer_RenderResolve(t *testing.T) {
	r := NewSimpleRenderer()

	tests := []struct {
		name     string
		res      ResolveResult
		expected string
	}{
		{"with reverse", ResolveResult{Name: "host", Address: "192.0.2.1", Family: "ipv4", Reverse: "host.example"}, "host  192.0.2.1  [ipv4]  (host.example)"},
		{"reverse is literal", ResolveResult{Name: "::1", Address: "::1", Family: "ipv6", Reverse: "::1"}, "::1  ::1  [ipv6]"},
		{"error", ResolveResult{Name: "nope", Error: "not found"}, "nope  error: not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RenderResolve(tt.res); got != tt.expected {
				t.Errorf("RenderResolve() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSimpleRenderer_RenderProbe(t *testing.T) {
	r := NewSimpleRenderer()

	open := r.RenderProbe(probe.ConnectResult{Target: "127.0.0.1:22", State: probe.StateOpen, RTT: time.Millisecond})
	if !strings.Contains(open, "open") || !strings.Contains(open, "1.00ms") {
		t.Errorf("unexpected open line %q", open)
	}

	filtered := r.RenderProbe(probe.ConnectResult{Target: "192.0.2.1:22", State: probe.StateFiltered})
	if strings.Contains(filtered, "ms") {
		t.Errorf("expected no RTT for filtered probe, got %q", filtered)
	}
}

func TestSimpleRenderer_RenderStats(t *testing.T) {
	var buf bytes.Buffer
	NewSimpleRenderer().RenderStats(&buf, reflector.Stats{
		Packets: 3,
		Bytes:   30,
		Peers:   []reflector.PeerStats{{Addr: "127.0.0.1:5000", Packets: 3, Bytes: 30}},
	})

	out := buf.String()
	if !strings.Contains(out, "3 packets, 30 bytes") || !strings.Contains(out, "127.0.0.1:5000") {
		t.Errorf("unexpected stats output:\n%s", out)
	}
}

func TestSimpleRenderer_RenderRound(t *testing.T) {
	r := NewSimpleRenderer()

	s := rtt.NewSeries("reflector", "192.0.2.1:7777")
	s.EndTime = time.Date(2024, 1, 1, 12, 30, 5, 0, time.UTC)
	s.AddReply(0, "192.0.2.1:7777", 10*time.Millisecond)
	s.AddTimeout(1)

	line := r.RenderRound(s)
	for _, want := range []string{"12:30:05", "reflector", "1/2", "50.0% loss", "avg 10.00ms"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}

	silent := rtt.NewSeries("reflector", "192.0.2.1:7777")
	silent.AddTimeout(0)
	if strings.Contains(r.RenderRound(silent), "avg") {
		t.Error("expected no average for a silent round")
	}
}

func TestSimpleRenderer_RenderChange(t *testing.T) {
	r := NewSimpleRenderer()
	line := r.RenderChange(monitor.Change{
		Type:    monitor.ChangeTypeLoss,
		Target:  "reflector",
		Message: "Loss increased",
	})
	if line != "! [loss] reflector: Loss increased" {
		t.Errorf("unexpected line %q", line)
	}
}
