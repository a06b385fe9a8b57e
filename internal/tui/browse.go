// Package tui is an interactive terminal browser for a dense matrix: step
// through the dates and inspect the ranked locations and their series.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/choromap/internal/frames"
	"github.com/san-kum/choromap/internal/series"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const visibleRows = 12

type ranked struct {
	location string
	value    float64
}

type model struct {
	m     *series.Matrix
	dates []time.Time
	day   int

	ranking []ranked
	cursor  int
	offset  int

	playing bool
	width   int
	height  int
}

// NewBrowser returns a bubbletea model browsing m over dates. An empty
// dates slice browses every date of m.
func NewBrowser(m *series.Matrix, dates []time.Time) tea.Model {
	if len(dates) == 0 {
		dates = m.Dates()
	}
	b := model{m: m, dates: dates, width: 80, height: 24}
	b.rank()
	return b
}

func (b model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// rank orders locations by their value on the current date, largest first,
// keeping the cursor on the same location.
func (b *model) rank() {
	selected := b.selected()

	b.ranking = make([]ranked, 0, b.m.Len())
	col, ok := b.m.DateIndex(b.dates[b.day])
	var vals []float64
	if ok {
		vals = b.m.Column(col)
	}
	for i, loc := range b.m.Locations() {
		r := ranked{location: loc}
		if vals != nil {
			r.value = vals[i]
		}
		b.ranking = append(b.ranking, r)
	}
	sort.SliceStable(b.ranking, func(i, j int) bool { return b.ranking[i].value > b.ranking[j].value })

	for i, r := range b.ranking {
		if r.location == selected {
			b.cursor = i
			break
		}
	}
	b.scroll()
}

func (b model) selected() string {
	if b.cursor < len(b.ranking) {
		return b.ranking[b.cursor].location
	}
	return ""
}

func (b *model) scroll() {
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+visibleRows {
		b.offset = b.cursor - visibleRows + 1
	}
}

func (b model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		return b, nil
	case tickMsg:
		if !b.playing {
			return b, nil
		}
		if b.day >= len(b.dates)-1 {
			b.playing = false
			return b, nil
		}
		b.day++
		b.rank()
		return b, tick()
	}
	return b, nil
}

func (b model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return b, tea.Quit
	case "right", "l":
		if b.day < len(b.dates)-1 {
			b.day++
			b.rank()
		}
	case "left", "h":
		if b.day > 0 {
			b.day--
			b.rank()
		}
	case "home", "g":
		b.day = 0
		b.rank()
	case "end", "G":
		b.day = len(b.dates) - 1
		b.rank()
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
			b.scroll()
		}
	case "down", "j":
		if b.cursor < len(b.ranking)-1 {
			b.cursor++
			b.scroll()
		}
	case " ":
		b.playing = !b.playing
		if b.playing {
			return b, tick()
		}
	}
	return b, nil
}

func (b model) View() string {
	var s strings.Builder

	d := b.dates[b.day]
	s.WriteString("\n")
	s.WriteString("  " + cyan.Render(b.m.Category()) + dim.Render("  ·  ") + white.Render(frames.PrettyDate(d)))
	s.WriteString(dimmer.Render(fmt.Sprintf("   frame %d/%d", b.day+1, len(b.dates))))
	if b.playing {
		s.WriteString("  " + yellow.Render("▶"))
	}
	s.WriteString("\n\n")

	peak := b.m.Max()
	barWidth := 30
	end := min(b.offset+visibleRows, len(b.ranking))
	for i := b.offset; i < end; i++ {
		r := b.ranking[i]
		n := 0
		if peak > 0 {
			n = int(r.value / peak * float64(barWidth))
		}
		n = min(max(n, 0), barWidth)
		bar := strings.Repeat("█", n) + strings.Repeat("·", barWidth-n)
		line := fmt.Sprintf("%-18s %12.2f  ", truncate(r.location, 18), r.value)
		if i == b.cursor {
			s.WriteString("  " + cyan.Render("▸ ") + white.Render(line) + magenta.Render(bar) + "\n")
		} else {
			s.WriteString("    " + dim.Render(line) + dimmer.Render(bar) + "\n")
		}
	}

	if loc := b.selected(); loc != "" {
		if row, ok := b.m.Row(loc); ok && len(row) > 1 {
			s.WriteString("\n")
			s.WriteString(asciigraph.Plot(row,
				asciigraph.Height(8),
				asciigraph.Width(min(60, max(b.width-20, 10))),
				asciigraph.Caption(loc),
			))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(dim.Render("  ←→ date   ↑↓ location   space play   q quit") + "\n")
	return s.String()
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
