package picker

import "context"

// Provider is the interface for paged search backends used in search mode.
// Implementations might query a SQLite index, run a command, or call a
// remote service.
type Provider interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// Request describes the page the picker wants from a Provider.
type Request struct {
	Query string // Joined search terms
	Page  int    // 1-based page number
	Limit int    // Preferred page size; providers may return fewer or more
}

// Response carries one page back from a Provider.
type Response struct {
	Items []Item
	Total int  // Total number of matches, may be an estimate
	More  bool // More pages are available
}

// SearchFunc adapts a plain function to Provider.
type SearchFunc func(ctx context.Context, query string, page int) (Response, error)

// Fetch implements Provider.
func (f SearchFunc) Fetch(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req.Query, req.Page)
}
