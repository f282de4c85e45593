package picker

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// debounceMsg fires after the debounce timer expires.
type debounceMsg struct {
	id    uint64 // Must match debouncer.id to be accepted
	terms []rune
}

// debouncer coalesces keystrokes. Every trigger replaces the pending timer:
// only the tick carrying the latest id is accepted.
type debouncer struct {
	delay time.Duration
	id    uint64
}

// trigger schedules terms to be applied after the delay.
func (d *debouncer) trigger(terms []rune) tea.Cmd {
	d.id++
	msg := debounceMsg{id: d.id, terms: slices.Clone(terms)}
	if d.delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return msg
	})
}

// accept reports whether msg belongs to the latest trigger.
func (d *debouncer) accept(msg debounceMsg) bool {
	return msg.id == d.id
}

// stop invalidates any pending timer.
func (d *debouncer) stop() {
	d.id++
}
