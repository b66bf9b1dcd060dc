package display

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hervehildenbrand/sockcore/internal/reflector"
)

func testStats() reflector.Stats {
	return reflector.Stats{
		Packets:   7,
		Bytes:     700,
		Truncated: 1,
		Peers: []reflector.PeerStats{
			{Addr: "127.0.0.1:5000", Packets: 5, Bytes: 500, LastSeen: time.Now()},
			{Addr: "127.0.0.1:6000", Packets: 2, Bytes: 200, LastSeen: time.Now()},
		},
	}
}

func TestNewTUIModel_CreatesModel(t *testing.T) {
	model := NewTUIModel("0.0.0.0:7777", nil, 0)

	if model.addr != "0.0.0.0:7777" {
		t.Errorf("expected addr '0.0.0.0:7777', got %q", model.addr)
	}
	if model.refresh != time.Second {
		t.Errorf("expected default refresh of 1s, got %v", model.refresh)
	}
}

func TestTUIModel_Observe_TracksPeers(t *testing.T) {
	model := NewTUIModel("addr", nil, time.Second)

	model.Observe(testStats())

	if len(model.peers) != 2 {
		t.Fatalf("expected 2 peers, got %d", len(model.peers))
	}
	if model.totals.Packets != 7 {
		t.Errorf("expected 7 packets, got %d", model.totals.Packets)
	}

	// A peer missing from the next snapshot goes idle.
	next := testStats()
	next.Peers = next.Peers[:1]
	model.Observe(next)
	if model.peers["127.0.0.1:6000"].LastRate != 0 {
		t.Error("expected missing peer to be idle")
	}
}

func TestTUIModel_SortedPeers_BusiestFirst(t *testing.T) {
	model := NewTUIModel("addr", nil, time.Second)
	model.Observe(testStats())

	peers := model.sortedPeers()
	if peers[0].Addr != "127.0.0.1:5000" {
		t.Errorf("expected busiest peer first, got %s", peers[0].Addr)
	}
}

func TestTUIModel_Update_TickPollsStats(t *testing.T) {
	calls := 0
	model := NewTUIModel("addr", func() reflector.Stats {
		calls++
		return testStats()
	}, time.Second)

	_, cmd := model.Update(TickMsg(time.Now()))

	if calls != 1 {
		t.Errorf("expected one stats poll, got %d", calls)
	}
	if cmd == nil {
		t.Error("expected next tick to be scheduled")
	}
}

func TestTUIModel_Update_QuitKey(t *testing.T) {
	model := NewTUIModel("addr", nil, time.Second)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestTUIModel_View(t *testing.T) {
	model := NewTUIModel("0.0.0.0:7777", nil, time.Second)

	empty := model.View()
	if !strings.Contains(empty, "waiting for datagrams") {
		t.Error("expected waiting message with no peers")
	}

	model.Observe(testStats())
	view := model.View()
	for _, want := range []string{"0.0.0.0:7777", "127.0.0.1:5000", "Peers: 2", "Truncated: 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if renderSparkline(nil) != "" {
		t.Error("expected empty sparkline for no samples")
	}
	if got := renderSparkline([]uint64{0, 4, 8}); !strings.ContainsRune(got, '█') {
		t.Errorf("expected peak bar in %q", got)
	}
}
