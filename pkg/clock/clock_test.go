package clock

import (
	"testing"
	"time"
)

// fakeSource is a manually advanced millisecond source.
type fakeSource struct {
	now uint32
}

func (f *fakeSource) read() uint32 {
	return f.now
}

func TestClock_Now_StartsAtSourceReading(t *testing.T) {
	src := &fakeSource{now: 5000}
	c := NewWithSource(src.read)

	if got := c.Now(); got != 5000 {
		t.Errorf("expected 5000, got %d", got)
	}
}

func TestClock_Rebase_SetsCurrentValue(t *testing.T) {
	src := &fakeSource{now: 5000}
	c := NewWithSource(src.read)

	c.Rebase(0)
	if got := c.Now(); got != 0 {
		t.Errorf("expected 0 after rebase, got %d", got)
	}

	src.now += 250
	if got := c.Now(); got != 250 {
		t.Errorf("expected 250, got %d", got)
	}
}

func TestClock_Rebase_AheadOfSource(t *testing.T) {
	src := &fakeSource{now: 10}
	c := NewWithSource(src.read)

	c.Rebase(1000)
	src.now += 5

	if got := c.Now(); got != 1005 {
		t.Errorf("expected 1005, got %d", got)
	}
}

func TestClock_Now_WrapsAround(t *testing.T) {
	src := &fakeSource{now: 0xFFFFFFF0}
	c := NewWithSource(src.read)
	c.Rebase(0)

	src.now += 0x20 // wraps past zero

	if got := c.Now(); got != 0x20 {
		t.Errorf("expected 0x20 after wrap, got %#x", got)
	}
}

func TestClock_Since(t *testing.T) {
	src := &fakeSource{now: 100}
	c := NewWithSource(src.read)
	start := c.Now()

	src.now += 42

	if got := c.Since(start); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestClock_Seed_ReturnsRawReading(t *testing.T) {
	src := &fakeSource{now: 777}
	c := NewWithSource(src.read)
	c.Rebase(0)

	if got := c.Seed(); got != 777 {
		t.Errorf("expected 777, got %d", got)
	}
}

func TestLess(t *testing.T) {
	tests := []struct {
		name     string
		a, b     uint32
		expected bool
	}{
		{"simple less", 1, 2, true},
		{"simple greater", 2, 1, false},
		{"equal", 5, 5, false},
		{"across wrap", 0xFFFFFFFF, 1, true},
		{"after wrap", 1, 0xFFFFFFFF, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Less(tt.a, tt.b); got != tt.expected {
				t.Errorf("Less(%#x, %#x) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	if got := Diff(10, 3); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := Diff(3, 10); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := Diff(0xFFFFFFFE, 2); got != 4 {
		t.Errorf("expected 4 across wrap, got %d", got)
	}
}

func TestNew_AdvancesWithRealTime(t *testing.T) {
	c := New()
	c.Rebase(0)

	time.Sleep(20 * time.Millisecond)

	got := c.Now()
	if got < 15 || got > 1000 {
		t.Errorf("expected roughly 20ms elapsed, got %d", got)
	}
}
