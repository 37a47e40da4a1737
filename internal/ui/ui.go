package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	units "github.com/docker/go-units"

	"github.com/Dicklesworthstone/proctree/internal/poller"
	"github.com/Dicklesworthstone/proctree/internal/wire"
)

// Model renders the latest process tree from a poller stream.
type Model struct {
	source    string
	latest    wire.Document
	updatedAt time.Time
	lastErr   error
	rows      []row
	offset    int
	stream    <-chan poller.Result
	ctxCancel context.CancelFunc
	width     int
	height    int
}

// New starts p and returns a model fed by it. source labels the header.
func New(p *poller.Poller, source string) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		source:    source,
		stream:    p.Stream(ctx),
		ctxCancel: cancel,
		width:     120,
		height:    40,
	}
}

// Messages
type tickMsg struct{}

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.clampOffset()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctxCancel()
			return m, tea.Quit
		case "up", "k":
			m.offset--
		case "down", "j":
			m.offset++
		case "pgup":
			m.offset -= m.pageSize()
		case "pgdown", " ":
			m.offset += m.pageSize()
		case "home", "g":
			m.offset = 0
		case "end", "G":
			m.offset = len(m.rows)
		}
		m.clampOffset()
	case tickMsg:
		select {
		case res, ok := <-m.stream:
			if ok {
				m.apply(res)
			}
		default:
		}
		return m, tickCmd()
	}
	return m, nil
}

// apply keeps the last good tree when a fetch fails.
func (m *Model) apply(res poller.Result) {
	if res.Err != nil {
		m.lastErr = res.Err
		return
	}
	m.lastErr = nil
	m.latest = res.Doc
	m.updatedAt = res.At
	m.rows = flatten(res.Doc)
	m.clampOffset()
}

func (m *Model) pageSize() int {
	// header, error line, column titles and border
	n := m.height - 6
	if n < 1 {
		n = 1
	}
	return n
}

func (m *Model) clampOffset() {
	if last := len(m.rows) - m.pageSize(); m.offset > last {
		m.offset = last
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
	stateStyles = map[string]lipgloss.Style{
		"running": lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"zombie":  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		"stopped": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

func (m *Model) View() string {
	stamp := "waiting for first snapshot"
	if !m.updatedAt.IsZero() {
		stamp = fmt.Sprintf("%s  %d processes", m.updatedAt.Format("Mon Jan 2 15:04:05 MST 2006"), len(m.rows))
	}
	header := titleStyle.Render("proctree") + "  " +
		subtleStyle.Render(m.source) + "  " +
		subtleStyle.Render(stamp)

	banner := ""
	if m.lastErr != nil {
		banner = errorStyle.Render(truncate("refresh failed: "+m.lastErr.Error(), m.width-2))
	}

	end := min(m.offset+m.pageSize(), len(m.rows))
	body := renderRows(m.rows[m.offset:end], m.width-4)
	table := cardStyle.Render(labelStyle.Render(columnHeader(m.width-4)) + "\n" + body)

	return lipgloss.JoinVertical(lipgloss.Left, header, banner, table)
}

// row is one process in display order with its tree prefix.
type row struct {
	prefix string
	node   wire.Node
}

// flatten walks the forest depth first, drawing box-drawing guides.
func flatten(doc wire.Document) []row {
	var out []row
	var walk func(nodes []wire.Node, indent string)
	walk = func(nodes []wire.Node, indent string) {
		for i, n := range nodes {
			last := i == len(nodes)-1
			branch, next := "├─ ", "│  "
			if last {
				branch, next = "└─ ", "   "
			}
			out = append(out, row{prefix: indent + branch, node: n})
			walk(n.Children, indent+next)
		}
	}
	for _, root := range doc.Children {
		out = append(out, row{node: root})
		walk(root.Children, "")
	}
	return out
}

const fixedCols = "%7s %-10s %-8s %4s %8s %9s %9s"

func columnHeader(width int) string {
	cols := fmt.Sprintf(fixedCols, "PID", "USER", "STATE", "NI", "CPU", "VIRT", "RES")
	return cols + " " + truncate("COMMAND", max(width-len(cols)-1, 8))
}

func renderRows(rows []row, width int) string {
	var b strings.Builder
	for i, r := range rows {
		n := r.node
		state := n.State
		if st, ok := stateStyles[n.State]; ok {
			state = st.Render(fmt.Sprintf("%-8s", n.State))
		}
		cols := fmt.Sprintf("%7d %-10s %-8s %4d %8s %9s %9s",
			n.PID, truncate(n.Username, 10), state, n.Nice,
			cpuTime(n.CPUTime), units.BytesSize(float64(n.VMSize)), units.BytesSize(float64(n.RSS)))
		b.WriteString(cols)
		b.WriteString(" ")
		b.WriteString(truncate(r.prefix+n.Name, max(width-lipgloss.Width(cols)-1, 8)))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// cpuTime formats whole seconds as [h:]mm:ss.
func cpuTime(secs uint64) string {
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return s
	}
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RunTUI starts the Bubble Tea program.
func RunTUI(p *poller.Poller, source string) error {
	m := New(p, source)
	defer m.ctxCancel()
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
