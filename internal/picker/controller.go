package picker

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// sessionState is where the controller is in its lifecycle.
type sessionState int

const (
	stateActive    sessionState = iota // Accepting input
	stateSelected                      // User picked an item
	stateCancelled                     // User aborted (Esc / Ctrl+C)
	stateFailed                        // Terminal error
)

// dataMsg is sent when DataSource.Load completes.
type dataMsg struct {
	items []Item
	err   error
}

// Controller is the incremental search and selection state machine behind
// the picker. It is driven from a single goroutine (the Bubble Tea update
// loop); asynchronous work is returned as tea.Cmd values whose results come
// back through Update.
type Controller struct {
	state sessionState
	log   *slog.Logger

	source    DataSource
	data      []Item
	dataReady bool
	filter    FilterFunc

	search        Provider
	fuzzyOnSearch bool
	pageSize      int
	cache         *QueryCache
	inflight      map[*Query]bool

	query *Query
	rs    ResultSet
	view  Viewport
	deb   debouncer

	result Item
	err    error

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController validates opts and returns a controller ready for Init.
// ctx is handed to data sources and providers and is cancelled when the
// session ends.
func NewController(ctx context.Context, opts Options) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	c := &Controller{
		log:           opts.Logger,
		source:        opts.Data,
		search:        opts.Search,
		fuzzyOnSearch: opts.FuzzyOnSearch,
		pageSize:      opts.PageSize,
		cache:         NewQueryCache(opts.Cache),
		inflight:      make(map[*Query]bool),
		query:         NewQuery([]rune(opts.Query)),
		view:          NewViewport(opts.Size),
		deb:           debouncer{delay: opts.DebounceDelay},
		filter:        IdentityFilter,
	}
	if opts.fuzzy() {
		c.filter = FuzzyFilter
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	return c, nil
}

// Init starts the first load: the dataset in dataset mode, page 1 of the
// initial query in search mode.
func (c *Controller) Init() tea.Cmd {
	if c.search != nil {
		c.log.Debug("search mode started", "query", c.query.Key())
		return c.dispatch()
	}
	c.log.Debug("dataset mode started")
	src, ctx := c.source, c.ctx
	return func() tea.Msg {
		items, err := src.Load(ctx)
		return dataMsg{items: items, err: err}
	}
}

// Update handles the controller's own messages and ignores everything else.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dataMsg:
		return c.handleData(msg)
	case pageMsg:
		return c.handlePage(msg)
	case debounceMsg:
		return c.handleDebounce(msg)
	}
	return nil
}

// handleData validates a loaded dataset and runs the first filter pass.
func (c *Controller) handleData(msg dataMsg) tea.Cmd {
	if c.Done() {
		return nil
	}
	if msg.err != nil {
		return c.fail(fmt.Errorf("%w: %w", ErrDatasetLoad, msg.err))
	}
	items, err := ValidateDataset(msg.items)
	if err != nil {
		return c.fail(err)
	}
	c.data = items
	c.dataReady = true
	c.log.Debug("dataset loaded", "items", len(items), "dropped", len(msg.items)-len(items))
	return c.dispatch()
}

// Change receives every edit event of the input line. The input itself is
// already redrawn by the caller; filtering is debounced and skipped when the
// terms did not change (cursor movement).
func (c *Controller) Change(terms []rune, cursor int, modified bool) tea.Cmd {
	if c.Done() || !modified {
		return nil
	}
	c.log.Debug("input changed", "terms", string(terms), "cursor", cursor)
	return c.deb.trigger(terms)
}

func (c *Controller) handleDebounce(msg debounceMsg) tea.Cmd {
	if c.Done() || !c.deb.accept(msg) {
		return nil // Stale debounce timer; ignore.
	}
	return c.SetTerms(msg.terms)
}

// SetTerms replaces the current query and filters again immediately.
func (c *Controller) SetTerms(terms []rune) tea.Cmd {
	if c.Done() {
		return nil
	}
	c.query = NewQuery(terms)
	return c.dispatch()
}

// dispatch recomputes results for the current query: locally in dataset
// mode, through the pagination engine in search mode.
func (c *Controller) dispatch() tea.Cmd {
	c.view.Reset(0)

	if c.search != nil {
		c.rs = ResultSet{}
		return c.LoadNextPage()
	}

	if !c.dataReady {
		// handleData dispatches once the dataset arrives.
		return nil
	}
	found := c.filter(c.data, c.query.Terms())
	indexFrom(found, 0)
	c.rs = ResultSet{Found: found, Count: len(found)}
	c.view.Reset(len(found))
	c.log.Debug("filtered", "query", c.query.Key(), "matches", len(found))
	return nil
}

// MoveLine moves the selection by dLine rows and dPage pages and pre-fetches
// the next page when the window reaches the end of the loaded results.
func (c *Controller) MoveLine(dLine, dPage int) tea.Cmd {
	if c.Done() {
		return nil
	}
	c.view.Move(dLine, dPage, len(c.rs.Found))
	return c.prefetch()
}

// Resize changes the number of visible rows.
func (c *Controller) Resize(size int) tea.Cmd {
	if c.Done() {
		return nil
	}
	c.view.Resize(size)
	return c.prefetch()
}

// Select ends the session with the item under the cursor. With an empty
// list the session ends without a result.
func (c *Controller) Select() tea.Cmd {
	if c.Done() {
		return nil
	}
	if c.view.Line >= 0 && c.view.Line < len(c.rs.Found) {
		c.result = c.rs.Found[c.view.Line]
		c.finish(stateSelected)
		c.log.Debug("selected", "index", c.result.Index, "label", c.result.Label)
	} else {
		c.finish(stateCancelled)
		c.log.Debug("selected with empty list")
	}
	return tea.Quit
}

// Cancel ends the session without a result.
func (c *Controller) Cancel() tea.Cmd {
	if c.Done() {
		return nil
	}
	c.finish(stateCancelled)
	c.log.Debug("cancelled")
	return tea.Quit
}

// Close ends the session if it is still active. Safe to call repeatedly.
func (c *Controller) Close() {
	if !c.Done() {
		c.finish(stateCancelled)
	}
}

func (c *Controller) fail(err error) tea.Cmd {
	c.err = err
	c.finish(stateFailed)
	c.log.Error("picker failed", "error", err)
	return tea.Quit
}

// finish detaches the session: pending debounce ticks and in-flight results
// are dropped from now on.
func (c *Controller) finish(s sessionState) {
	c.state = s
	c.deb.stop()
	c.cancel()
}

// --- Read-only accessors for rendering and callers ---

// Done reports whether the session has ended.
func (c *Controller) Done() bool {
	return c.state != stateActive
}

// Cancelled reports whether the session ended without a selection.
func (c *Controller) Cancelled() bool {
	return c.state == stateCancelled
}

// Result returns the selected item, if any.
func (c *Controller) Result() (Item, bool) {
	if c.state != stateSelected {
		return Item{}, false
	}
	return c.result, true
}

// Err returns the terminal error, if any.
func (c *Controller) Err() error {
	return c.err
}

// SearchMode reports whether results come from a Provider.
func (c *Controller) SearchMode() bool {
	return c.search != nil
}

// Loading reports whether results for the current query are still arriving.
func (c *Controller) Loading() bool {
	if c.search == nil {
		return !c.dataReady && !c.Done()
	}
	return c.inflight[c.query]
}

// Query returns the current query.
func (c *Controller) Query() *Query {
	return c.query
}

// Results returns the current result set. Callers must not modify it.
func (c *Controller) Results() ResultSet {
	return c.rs
}

// Viewport returns the cursor and scroll position.
func (c *Controller) Viewport() Viewport {
	return c.view
}

// Visible returns the rows inside the viewport.
func (c *Controller) Visible() []Item {
	from, to := c.view.Window(len(c.rs.Found))
	return c.rs.Found[from:to]
}
