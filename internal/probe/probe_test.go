package probe

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hervehildenbrand/sockcore/internal/reflector"
	"github.com/hervehildenbrand/sockcore/pkg/rtt"
	"github.com/hervehildenbrand/sockcore/pkg/socket"
)

func startReflector(t *testing.T) socket.Address {
	t.Helper()

	cfg := reflector.DefaultConfig()
	cfg.Bind = socket.LoopbackIPv4
	cfg.WaitTimeout = 20 * time.Millisecond
	r := reflector.New(cfg, nil)
	if err := r.Start(); err != nil {
		t.Skipf("cannot start reflector: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r.Addr()
}

// silentEndpoint returns a bound datagram address that never replies.
func silentEndpoint(t *testing.T) socket.Address {
	t.Helper()

	h, err := socket.Create(socket.Datagram)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { h.Destroy() })

	loopback := socket.LoopbackIPv4
	if err := h.Bind(&loopback); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	addr, err := h.LocalAddress()
	if err != nil {
		t.Fatalf("LocalAddress() error = %v", err)
	}
	return addr
}

func fastPingConfig(count int) *PingConfig {
	return &PingConfig{
		Count:       count,
		Interval:    0,
		PayloadSize: 48,
		Timeout:     500 * time.Millisecond,
	}
}

func TestPingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PingConfig)
		wantErr bool
	}{
		{"defaults", func(c *PingConfig) {}, false},
		{"zero count", func(c *PingConfig) { c.Count = 0 }, true},
		{"payload below header", func(c *PingConfig) { c.PayloadSize = headerSize - 1 }, true},
		{"payload at header", func(c *PingConfig) { c.PayloadSize = headerSize }, false},
		{"zero timeout", func(c *PingConfig) { c.Timeout = 0 }, true},
		{"negative rate", func(c *PingConfig) { c.Rate = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPingConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPinger_AgainstReflector(t *testing.T) {
	target := startReflector(t)

	var samples []rtt.Sample
	p := NewPinger(fastPingConfig(3), nil)
	series, err := p.Ping(context.Background(), "local", target, func(s rtt.Sample) {
		samples = append(samples, s)
	})
	if err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	if series.Sent() != 3 || series.Received() != 3 {
		t.Errorf("expected 3/3, got %d/%d", series.Sent(), series.Received())
	}
	if len(samples) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(samples))
	}
	for i, s := range series.Samples {
		if s.Seq != uint32(i) {
			t.Errorf("sample %d has seq %d", i, s.Seq)
		}
		if s.Peer != target.String() {
			t.Errorf("sample %d peer = %s, want %s", i, s.Peer, target)
		}
	}
	if _, err := uuid.Parse(series.SessionID); err != nil {
		t.Errorf("expected uuid session id, got %q", series.SessionID)
	}
	if series.Target != "local" || series.TargetAddr != target.String() {
		t.Errorf("unexpected target fields %+v", series)
	}
	if series.EndTime.Before(series.StartTime) {
		t.Error("expected end time after start time")
	}
}

func TestPinger_TimesOutWithoutReflector(t *testing.T) {
	target := silentEndpoint(t)

	cfg := fastPingConfig(2)
	cfg.Timeout = 50 * time.Millisecond
	p := NewPinger(cfg, nil)

	start := time.Now()
	series, err := p.Ping(context.Background(), "silent", target, nil)
	if err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	if series.Received() != 0 || series.LossPercent() != 100 {
		t.Errorf("expected total loss, got %d received", series.Received())
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeouts took too long: %v", elapsed)
	}
}

func TestPinger_CancelReturnsPartialSeries(t *testing.T) {
	target := silentEndpoint(t)

	cfg := fastPingConfig(100)
	cfg.Timeout = 20 * time.Millisecond
	p := NewPinger(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	series, err := p.Ping(ctx, "silent", target, nil)
	if err == nil {
		t.Fatal("expected context error")
	}
	if series == nil || series.Sent() >= 100 {
		t.Error("expected a partial series")
	}
}

func TestPinger_RateLimitsPings(t *testing.T) {
	target := startReflector(t)

	cfg := fastPingConfig(3)
	cfg.Rate = 20 // one every 50ms after the first
	p := NewPinger(cfg, nil)

	start := time.Now()
	if _, err := p.Ping(context.Background(), "local", target, nil); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected rate limiting to spread pings, took %v", elapsed)
	}
}

func TestDecodeHeader(t *testing.T) {
	session := uuid.New()
	payload := make([]byte, headerSize)
	copy(payload, session[:])
	payload[seqOffset+3] = 7
	payload[stampOffset+2] = 1

	gotSession, seq, stamp := decodeHeader(payload)
	if gotSession != session || seq != 7 || stamp != 256 {
		t.Errorf("decodeHeader = %v, %d, %d", gotSession, seq, stamp)
	}
}

// listen returns a loopback stream listener address.
func listen(t *testing.T) socket.Address {
	t.Helper()

	h, err := socket.Create(socket.Stream)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { h.Destroy() })

	loopback := socket.LoopbackIPv4
	if err := h.Bind(&loopback); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if err := h.Listen(-1); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr, err := h.LocalAddress()
	if err != nil {
		t.Fatalf("LocalAddress() error = %v", err)
	}
	return addr
}

// closedPort returns a loopback address with no listener.
func closedPort(t *testing.T) socket.Address {
	t.Helper()

	h, err := socket.Create(socket.Stream)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer h.Destroy()

	loopback := socket.LoopbackIPv4
	if err := h.Bind(&loopback); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	addr, err := h.LocalAddress()
	if err != nil {
		t.Fatalf("LocalAddress() error = %v", err)
	}
	return addr
}

func TestConnectProber_Open(t *testing.T) {
	target := listen(t)
	c := NewConnectProber(time.Second, 1, nil)

	res := c.Probe(context.Background(), target)
	if res.State != StateOpen {
		t.Errorf("expected open, got %s (%s)", res.State, res.Error)
	}
	if res.Target != target.String() {
		t.Errorf("unexpected target %s", res.Target)
	}
}

func TestConnectProber_Closed(t *testing.T) {
	target := closedPort(t)
	c := NewConnectProber(time.Second, 1, nil)

	res := c.Probe(context.Background(), target)
	if res.State != StateClosed {
		t.Errorf("expected closed, got %s", res.State)
	}
	if res.Error == "" {
		t.Error("expected an error description")
	}
}

func TestConnectProber_ProbeAll_KeepsOrder(t *testing.T) {
	open := listen(t)
	closed := closedPort(t)
	targets := []socket.Address{open, closed, open, closed}

	c := NewConnectProber(time.Second, 2, nil)
	results := c.ProbeAll(context.Background(), targets)

	if len(results) != len(targets) {
		t.Fatalf("expected %d results, got %d", len(targets), len(results))
	}
	expected := []State{StateOpen, StateClosed, StateOpen, StateClosed}
	for i, res := range results {
		if res.Target != targets[i].String() {
			t.Errorf("result %d target = %s, want %s", i, res.Target, targets[i])
		}
		if res.State != expected[i] {
			t.Errorf("result %d state = %s, want %s", i, res.State, expected[i])
		}
	}
}

func TestConnectProber_ProbeAll_Empty(t *testing.T) {
	c := NewConnectProber(time.Second, 4, nil)
	if results := c.ProbeAll(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
