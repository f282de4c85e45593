package source

import (
	"context"

	"github.com/runger/listpick/internal/history"
	"github.com/runger/listpick/internal/picker"
)

// History is a data source over shell history, most recent first with
// repeated commands collapsed. An empty shell is detected from $SHELL and an
// empty path means the shell's default history file. A missing history file
// yields an empty list.
func History(shell, path string, limit int) picker.DataSource {
	return picker.DataFunc(func(context.Context) ([]picker.Item, error) {
		entries, err := history.Read(shell, path)
		if err != nil {
			return nil, err
		}
		return HistoryItems(history.Recent(entries, limit)), nil
	})
}

// HistoryItems converts history entries to picker items. The label is the
// printable form of the command; the value is the command as recorded.
func HistoryItems(entries []history.Entry) []picker.Item {
	items := make([]picker.Item, 0, len(entries))
	for _, e := range entries {
		label := picker.CleanLabel(e.Command)
		if label == "" {
			continue
		}
		items = append(items, picker.Item{Label: label, Value: e.Command})
	}
	return items
}
