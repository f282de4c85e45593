package source

import (
	"context"
	"log/slog"

	"github.com/runger/listpick/internal/picker"
	"github.com/runger/listpick/internal/storage"
)

// Searcher is the part of storage.Index the provider needs.
type Searcher interface {
	Search(ctx context.Context, query string, limit, offset int) ([]storage.Entry, int, error)
}

// IndexProvider serves picker pages from the local SQLite index.
type IndexProvider struct {
	Index  Searcher
	Logger *slog.Logger
}

// Fetch implements picker.Provider. Page n covers rows
// [(n-1)*Limit, n*Limit) of the most-recent-first match list.
func (p *IndexProvider) Fetch(ctx context.Context, req picker.Request) (picker.Response, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = picker.DefaultPageSize
	}
	offset := (max(req.Page, 1) - 1) * limit

	entries, total, err := p.Index.Search(ctx, req.Query, limit, offset)
	if err != nil {
		return picker.Response{}, err
	}

	items := make([]picker.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, picker.Item{Label: picker.CleanLabel(e.Label), Value: entryValue(e)})
	}

	if p.Logger != nil {
		p.Logger.Debug("index page",
			"query_len", len(req.Query),
			"page", req.Page,
			"rows", len(items),
			"total", total,
		)
	}

	return picker.Response{
		Items: items,
		Total: total,
		More:  offset+len(entries) < total,
	}, nil
}

func entryValue(e storage.Entry) string {
	if e.Value != "" {
		return e.Value
	}
	return e.Label
}
