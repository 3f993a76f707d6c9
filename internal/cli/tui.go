package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// levelRow is one level of one component in the browser.
type levelRow struct {
	Component int
	Level     int
	levelInfo
}

// LevelBrowserModel is the bubbletea model behind inspect --interactive. It
// lists every level of every component and shows the nodes of the selected
// one in full.
type LevelBrowserModel struct {
	Rows   []levelRow
	Cursor int
	Offset int
	Height int
	Width  int
}

func newLevelBrowser(reports []componentReport) LevelBrowserModel {
	var rows []levelRow
	for _, r := range reports {
		for i, lv := range r.Levels {
			rows = append(rows, levelRow{Component: r.Index + 1, Level: i, levelInfo: lv})
		}
	}
	return LevelBrowserModel{Rows: rows, Height: 15, Width: 80}
}

func (m LevelBrowserModel) Init() tea.Cmd {
	return nil
}

func (m LevelBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Rows))
		case "end", "G":
			m.move(len(m.Rows))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
		m.Width = msg.Width
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped, and scrolls it into view.
func (m *LevelBrowserModel) move(delta int) {
	if len(m.Rows) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Rows)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m LevelBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Levels"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  pgup/pgdn page  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  empty graph"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprint(r.Component),
			fmt.Sprint(r.Level),
			fmt.Sprint(len(r.Nodes)),
			virtualCount(r.Virtual),
			truncate(strings.Join(r.Nodes, ", "), max(m.Width-40, 20)),
		})
	}
	t := newTable([]string{"", "Comp", "Level", "Nodes", "Virtual", "IDs"}, rows, func(row int) bool {
		return m.Offset+row == m.Cursor
	})
	b.WriteString(t.Render())
	b.WriteString("\n")

	sel := m.Rows[m.Cursor]
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] component %d, level %d", m.Cursor+1, len(m.Rows), sel.Component, sel.Level)))
	b.WriteString("\n")
	for _, id := range sel.Nodes {
		b.WriteString("  " + StyleValue.Render(id) + "\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
