package picker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	matchStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	rankStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m Model) View() string {
	if m.ctl.Done() {
		return ""
	}

	var b strings.Builder

	// Status line
	b.WriteString(m.viewStatus())
	b.WriteRune('\n')

	// Result rows
	if rows := m.viewList(); rows != "" {
		b.WriteString(rows)
		b.WriteRune('\n')
	}

	// Query line
	b.WriteString(m.textInput.View())

	return b.String()
}

// viewStatus renders the match count, loading indicator and, in search mode,
// how much of the result set has been loaded.
func (m Model) viewStatus() string {
	rs := m.ctl.Results()

	parts := []string{fmt.Sprintf("%d matches", rs.Count)}
	if m.ctl.Loading() {
		parts = append(parts, m.spinner.View()+" loading")
	}
	if m.ctl.SearchMode() {
		parts = append(parts, fmt.Sprintf("loaded %d of %d", len(rs.Found), rs.Count))
	}
	return dimStyle.Render(strings.Join(parts, "  · "))
}

// viewList renders the visible rows with their rank and the selection.
func (m Model) viewList() string {
	rs := m.ctl.Results()
	if len(rs.Found) == 0 {
		if m.ctl.Loading() {
			return ""
		}
		return dimStyle.Render("No matches")
	}

	view := m.ctl.Viewport()
	rankWidth := len(strconv.Itoa(max(rs.Count, len(rs.Found))))

	visible := m.ctl.Visible()
	lines := make([]string, 0, len(visible))
	for i, it := range visible {
		selected := view.Start+i == view.Line
		lines = append(lines, renderRow(it, rankWidth, m.width, selected))
	}
	return strings.Join(lines, "\n")
}

// renderRow formats one item as "<rank> <label>", highlighting matched
// runes. The rank is 1-based and right-padded to rankWidth.
func renderRow(it Item, rankWidth, termWidth int, selected bool) string {
	base := normalStyle
	if selected {
		base = selectedStyle
	}
	hl := matchStyle.Inherit(base)

	rank := fmt.Sprintf("%-*d ", rankWidth, it.Index+1)

	label := oneLine(it.Label)
	if avail := termWidth - len(rank); termWidth > 0 {
		if len(it.Highlight) == 0 {
			label = MiddleTruncate(label, avail)
		} else {
			label = TruncateRight(label, avail)
		}
	}

	var b strings.Builder
	if selected {
		b.WriteString(base.Render(rank))
	} else {
		b.WriteString(rankStyle.Render(rank))
	}

	marks := make(map[int]bool, len(it.Highlight))
	for _, h := range it.Highlight {
		marks[h] = true
	}

	// Render runs of equally styled runes together.
	var run []rune
	runHL := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runHL {
			b.WriteString(hl.Render(string(run)))
		} else {
			b.WriteString(base.Render(string(run)))
		}
		run = run[:0]
	}
	for i, r := range []rune(label) {
		if marks[i] != runHL {
			flush()
			runHL = marks[i]
		}
		run = append(run, r)
	}
	flush()

	return b.String()
}
