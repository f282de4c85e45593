package picker

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// chrome is the number of rows used by the status and input lines.
const chrome = 2

// Model is the Bubble Tea model for the picker TUI. It owns the input line
// and spinner and forwards everything else to its Controller.
type Model struct {
	ctl       *Controller
	textInput textinput.Model
	spinner   spinner.Model
	keys      keyMap

	size   int // Configured visible rows
	width  int // Terminal width
	height int // Terminal height
}

// NewModel validates opts and creates a picker Model.
func NewModel(ctx context.Context, opts Options) (Model, error) {
	ctl, err := NewController(ctx, opts)
	if err != nil {
		return Model{}, err
	}
	opts = opts.withDefaults()

	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.SetValue(opts.Query)
	ti.CursorEnd()
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = dimStyle

	return Model{
		ctl:       ctl,
		textInput: ti,
		spinner:   sp,
		keys:      defaultKeyMap(),
		size:      opts.Size,
	}, nil
}

// Controller exposes the underlying state machine.
func (m Model) Controller() *Controller {
	return m.ctl
}

// Result returns the selected item, or false if there is none.
func (m Model) Result() (Item, bool) {
	return m.ctl.Result()
}

// IsCancelled reports whether the user dismissed the picker.
func (m Model) IsCancelled() bool {
	return m.ctl.Cancelled()
}

// Err returns the error that ended the session, if any.
func (m Model) Err() error {
	return m.ctl.Err()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.ctl.Init())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.ctl.Resize(m.listHeight())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.ctl.Update(msg)
}

// handleKey processes keyboard input. Navigation and terminal keys go to the
// controller; everything else edits the input line.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, m.ctl.Cancel()
	case key.Matches(msg, m.keys.Select):
		return m, m.ctl.Select()
	case key.Matches(msg, m.keys.Up):
		return m, m.ctl.MoveLine(-1, 0)
	case key.Matches(msg, m.keys.Down):
		return m, m.ctl.MoveLine(1, 0)
	case key.Matches(msg, m.keys.PageUp):
		return m, m.ctl.MoveLine(0, -1)
	case key.Matches(msg, m.keys.PageDown):
		return m, m.ctl.MoveLine(0, 1)
	}

	before := m.textInput.Value()
	var inputCmd tea.Cmd
	m.textInput, inputCmd = m.textInput.Update(msg)
	after := m.textInput.Value()

	changeCmd := m.ctl.Change([]rune(after), m.textInput.Position(), after != before)
	return m, tea.Batch(inputCmd, changeCmd)
}

// listHeight returns the number of visible list rows: the configured size,
// reduced to fit the terminal once its height is known.
func (m Model) listHeight() int {
	if m.height <= 0 {
		return m.size
	}
	return max(min(m.size, m.height-chrome), 1)
}
