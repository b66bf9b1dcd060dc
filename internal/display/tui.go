package display

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hervehildenbrand/sockcore/internal/reflector"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("240"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	peerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	rateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Padding(0, 1)
)

// Sparkline characters (from low to high)
var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// StatsFunc returns the current reflector counters.
type StatsFunc func() reflector.Stats

// TickMsg triggers a stats refresh.
type TickMsg time.Time

// StatsMsg carries a stats snapshot into the model.
type StatsMsg struct {
	Stats reflector.Stats
}

// TUIModel is the Bubbletea model for the live reflector view.
type TUIModel struct {
	mu        sync.RWMutex
	addr      string
	stats     StatsFunc
	refresh   time.Duration
	totals    reflector.Stats
	peers     map[string]*PeerHistory
	spinner   spinner.Model
	width     int
	height    int
	startTime time.Time
}

// NewTUIModel creates a model that polls stats every refresh interval.
func NewTUIModel(addr string, stats StatsFunc, refresh time.Duration) *TUIModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	if refresh <= 0 {
		refresh = time.Second
	}

	return &TUIModel{
		addr:      addr,
		stats:     stats,
		refresh:   refresh,
		peers:     make(map[string]*PeerHistory),
		spinner:   s,
		startTime: time.Now(),
	}
}

// Observe folds a stats snapshot into the model.
func (m *TUIModel) Observe(s reflector.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totals = s
	seen := make(map[string]bool, len(s.Peers))
	for _, p := range s.Peers {
		seen[p.Addr] = true
		h, ok := m.peers[p.Addr]
		if !ok {
			h = NewPeerHistory(p.Addr)
			m.peers[p.Addr] = h
		}
		h.Observe(p)
	}
	for addr, h := range m.peers {
		if !seen[addr] {
			h.Idle()
		}
	}
}

func (m *TUIModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Init implements tea.Model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick())
}

// Update implements tea.Model
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		if m.stats != nil {
			m.Observe(m.stats())
		}
		return m, m.tick()

	case StatsMsg:
		m.Observe(msg.Stats)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m *TUIModel) View() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("sockcore reflector → %s", m.addr)))
	b.WriteString("\n\n")

	header := fmt.Sprintf("%-40s %10s %12s %-10s %s",
		"Peer", "Packets", "Bytes", "Last", "Rate")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 90))
	b.WriteString("\n")

	for _, h := range m.sortedPeers() {
		b.WriteString(m.formatPeerRow(h))
		b.WriteString("\n")
	}
	if len(m.peers) == 0 {
		b.WriteString(idleStyle.Render("waiting for datagrams..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 90))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" Serving... Press 'q' to stop")

	return b.String()
}

// sortedPeers returns the peers busiest first.
func (m *TUIModel) sortedPeers() []*PeerHistory {
	peers := make([]*PeerHistory, 0, len(m.peers))
	for _, h := range m.peers {
		peers = append(peers, h)
	}
	sort.Slice(peers, func(i, j int) bool {
		if peers[i].Packets != peers[j].Packets {
			return peers[i].Packets > peers[j].Packets
		}
		return peers[i].Addr < peers[j].Addr
	})
	return peers
}

// formatPeerRow formats a single peer row
func (m *TUIModel) formatPeerRow(h *PeerHistory) string {
	var b strings.Builder

	addr := h.Addr
	if len(addr) > 39 {
		addr = addr[:36] + "..."
	}
	b.WriteString(peerStyle.Render(fmt.Sprintf("%-40s", addr)))
	b.WriteString(" ")
	b.WriteString(rowStyle.Render(fmt.Sprintf("%10d %12d", h.Packets, h.Bytes)))
	b.WriteString(" ")

	last := "-"
	if !h.LastSeen.IsZero() {
		last = time.Since(h.LastSeen).Round(time.Second).String()
	}
	b.WriteString(idleStyle.Render(fmt.Sprintf("%-10s", last)))
	b.WriteString(" ")

	if h.LastRate > 0 {
		b.WriteString(rateStyle.Render(fmt.Sprintf("%4d/t ", h.LastRate)))
	} else {
		b.WriteString(idleStyle.Render(fmt.Sprintf("%4s/t ", "0")))
	}
	b.WriteString(renderSparkline(h.RateHistory))

	return b.String()
}

// renderSparkline renders a sparkline graph from rate samples
func renderSparkline(rates []uint64) string {
	if len(rates) == 0 {
		return ""
	}

	var peak uint64
	for _, r := range rates {
		if r > peak {
			peak = r
		}
	}
	if peak == 0 {
		return idleStyle.Render(strings.Repeat(string(sparkChars[0]), len(rates)))
	}

	var b strings.Builder
	for _, r := range rates {
		idx := int(float64(r) / float64(peak) * float64(len(sparkChars)-1))
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteRune(sparkChars[idx])
	}

	return rateStyle.Render(b.String())
}

// renderStatusBar renders the status bar
func (m *TUIModel) renderStatusBar() string {
	parts := []string{
		fmt.Sprintf("Peers: %d", len(m.peers)),
		fmt.Sprintf("Packets: %d", m.totals.Packets),
		fmt.Sprintf("Bytes: %d", m.totals.Bytes),
	}
	if m.totals.Truncated > 0 {
		parts = append(parts, warnStyle.Render(fmt.Sprintf("Truncated: %d", m.totals.Truncated)))
	}
	if m.totals.SendFails > 0 {
		parts = append(parts, warnStyle.Render(fmt.Sprintf("Send failures: %d", m.totals.SendFails)))
	}

	elapsed := time.Since(m.startTime).Round(time.Second)
	parts = append(parts, fmt.Sprintf("Uptime: %v", elapsed))

	return statusStyle.Render(strings.Join(parts, " │ "))
}

// RunTUI runs the live reflector view until the user quits.
func RunTUI(addr string, stats StatsFunc, refresh time.Duration) error {
	model := NewTUIModel(addr, stats, refresh)

	p := tea.NewProgram(model)
	_, err := p.Run()
	return err
}
