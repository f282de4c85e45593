package picker

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the picker and blocks until the user selects an item, cancels,
// or the session fails. It returns the selected item and true, or false when
// nothing was selected. Configuration errors are returned before the
// terminal is touched.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) (Item, bool, error) {
	m, err := NewModel(ctx, opts)
	if err != nil {
		return Item{}, false, err
	}
	defer m.ctl.Close()

	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)
	final, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, tea.ErrProgramKilled) {
			return Item{}, false, ctxErr
		}
		return Item{}, false, fmt.Errorf("%w: %w", ErrInputStream, err)
	}

	fm, ok := final.(Model)
	if !ok {
		return Item{}, false, fmt.Errorf("%w: unexpected model type %T", ErrInputStream, final)
	}
	if err := fm.Err(); err != nil {
		return Item{}, false, err
	}
	it, ok := fm.Result()
	return it, ok, nil
}
