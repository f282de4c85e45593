package picker

import (
	tea "github.com/charmbracelet/bubbletea"
)

// pageMsg is sent when an async Provider.Fetch completes.
type pageMsg struct {
	query *Query // Query current when the fetch started
	page  int
	resp  Response
	err   error
}

// LoadNextPage fetches the page after the last loaded one for the current
// query. The first page is served from the query cache when possible, and a
// query with a fetch already outstanding is not fetched twice.
func (c *Controller) LoadNextPage() tea.Cmd {
	if c.Done() || c.search == nil {
		return nil
	}
	q := c.query

	if c.rs.LoadedPages == 0 {
		if rs, ok := c.cache.Get(q.Key()); ok {
			c.rs = rs
			c.view.Sync(len(rs.Found))
			c.log.Debug("cache hit", "query", q.Key(), "pages", rs.LoadedPages, "found", len(rs.Found))
			return c.prefetch()
		}
	}

	if c.inflight[q] {
		return nil
	}
	c.inflight[q] = true

	req := Request{
		Query: q.Key(),
		Page:  c.rs.LoadedPages + 1,
		Limit: c.pageSize,
	}
	c.log.Debug("fetching page", "query", req.Query, "page", req.Page)

	p, ctx := c.search, c.ctx
	return func() tea.Msg {
		resp, err := p.Fetch(ctx, req)
		return pageMsg{query: q, page: req.Page, resp: resp, err: err}
	}
}

// handlePage applies a fetched page if its query is still the current one.
func (c *Controller) handlePage(msg pageMsg) tea.Cmd {
	delete(c.inflight, msg.query)

	if c.Done() {
		c.log.Debug("page dropped after session end", "query", msg.query.Key(), "page", msg.page)
		return nil
	}
	if msg.err != nil {
		return c.fail(&FetchError{Query: msg.query.Key(), Page: msg.page, Err: msg.err})
	}
	if msg.query != c.query {
		c.log.Debug("stale page discarded", "query", msg.query.Key(), "current", c.query.Key(), "page", msg.page)
		return nil
	}

	items := make([]Item, 0, len(msg.resp.Items))
	for _, it := range msg.resp.Items {
		if it.Label != "" {
			items = append(items, it)
		}
	}
	if c.fuzzyOnSearch {
		items = FuzzyFilter(items, msg.query.Terms())
	}
	indexFrom(items, len(c.rs.Found))

	c.rs.Found = append(c.rs.Found, items...)
	c.rs.Count = max(msg.resp.Total, len(c.rs.Found))
	c.rs.LoadedPages = msg.page
	// An empty page ends pagination even if the provider claims more.
	c.rs.MorePages = msg.resp.More && len(msg.resp.Items) > 0
	c.cache.Put(msg.query.Key(), c.rs)
	c.view.Sync(len(c.rs.Found))

	c.log.Debug("page loaded",
		"query", msg.query.Key(),
		"page", msg.page,
		"items", len(items),
		"total", c.rs.Count,
		"more", c.rs.MorePages,
	)
	return c.prefetch()
}

// prefetch requests the next page when the visible window has reached the
// end of the loaded results and the provider reported more.
func (c *Controller) prefetch() tea.Cmd {
	if c.search == nil || !c.rs.MorePages || !c.view.AtEnd(len(c.rs.Found)) {
		return nil
	}
	return c.LoadNextPage()
}
