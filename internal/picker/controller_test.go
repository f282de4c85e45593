package picker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fake provider ---

// fakeProvider serves pages from a per-query table and records every call.
// A query without pages gets labels derived from the query and page number.
type fakeProvider struct {
	pages map[string][]Response
	calls []Request
	err   error
}

func (p *fakeProvider) Fetch(ctx context.Context, req Request) (Response, error) {
	p.calls = append(p.calls, req)
	if p.err != nil {
		return Response{}, p.err
	}
	if pages, ok := p.pages[req.Query]; ok {
		if req.Page-1 < len(pages) {
			return pages[req.Page-1], nil
		}
		return Response{}, nil
	}
	return Response{
		Items: labels(fmt.Sprintf("%s-p%d-a", req.Query, req.Page), fmt.Sprintf("%s-p%d-b", req.Query, req.Page)),
		Total: 2,
		More:  false,
	}, nil
}

func labels(ls ...string) []Item {
	items := make([]Item, len(ls))
	for i, l := range ls {
		items[i] = Item{Label: l}
	}
	return items
}

func numbered(prefix string, n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Label: fmt.Sprintf("%s%02d", prefix, i)}
	}
	return items
}

func foundLabels(c *Controller) []string {
	var out []string
	for _, it := range c.Results().Found {
		out = append(out, it.Label)
	}
	return out
}

func newSearchController(t *testing.T, p Provider, mod func(*Options)) *Controller {
	t.Helper()
	opts := Options{Search: p, DebounceDelay: -1}
	if mod != nil {
		mod(&opts)
	}
	c, err := NewController(context.Background(), opts)
	require.NoError(t, err)
	return c
}

func newDataController(t *testing.T, items []Item, mod func(*Options)) *Controller {
	t.Helper()
	opts := Options{Data: StaticData(items), DebounceDelay: -1}
	if mod != nil {
		mod(&opts)
	}
	c, err := NewController(context.Background(), opts)
	require.NoError(t, err)
	return c
}

// runCmd executes a tea.Cmd synchronously and returns the resulting message.
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// drive feeds cmd results back into the controller until no work is left.
func drive(t *testing.T, c *Controller, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 100, "controller did not settle")
		cmd = c.Update(runCmd(cmd))
	}
}

func isQuit(cmd tea.Cmd) bool {
	_, ok := runCmd(cmd).(tea.QuitMsg)
	return ok
}

// --- Options ---

func TestOptionsValidate(t *testing.T) {
	var nilSearch SearchFunc
	var nilData DataFunc
	p := &fakeProvider{}

	tests := []struct {
		name string
		opts Options
	}{
		{"neither data nor search", Options{}},
		{"both data and search", Options{Data: StaticData{}, Search: p}},
		{"search not callable", Options{Search: nilSearch}},
		{"data not callable", Options{Data: nilData}},
		{"negative size", Options{Search: p, Size: -1}},
		{"negative page size", Options{Search: p, PageSize: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)

			_, err = NewController(context.Background(), tt.opts)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestOptionsValidate_OK(t *testing.T) {
	assert.NoError(t, Options{Data: StaticData{}}.Validate())
	assert.NoError(t, Options{Search: &fakeProvider{}}.Validate())
}

// --- Dataset mode ---

func TestDatasetMode_IndicesDense(t *testing.T) {
	c := newDataController(t, numbered("item", 25), nil)
	drive(t, c, c.Init())

	for _, terms := range []string{"", "item", "1", "i2"} {
		drive(t, c, c.SetTerms([]rune(terms)))
		rs := c.Results()
		assert.Equal(t, len(rs.Found), rs.Count, terms)
		for i, it := range rs.Found {
			assert.Equal(t, i, it.Index, "query %q", terms)
		}
	}
}

func TestDatasetMode_FuzzyScenario(t *testing.T) {
	c := newDataController(t, labels("apple", "banana", "cherry"), nil)
	drive(t, c, c.Init())
	drive(t, c, c.SetTerms([]rune("an")))

	assert.Contains(t, foundLabels(c), "banana")
	assert.NotContains(t, foundLabels(c), "cherry")

	for _, it := range c.Results().Found {
		runes := []rune(it.Label)
		require.Len(t, it.Highlight, 2, it.Label)
		assert.Equal(t, 'a', runes[it.Highlight[0]])
		assert.Equal(t, 'n', runes[it.Highlight[1]])
	}
}

func TestDatasetMode_IdentityFilterWhenFuzzyOff(t *testing.T) {
	off := false
	c := newDataController(t, labels("apple", "banana"), func(o *Options) { o.Fuzzy = &off })
	drive(t, c, c.Init())
	drive(t, c, c.SetTerms([]rune("zzz")))

	assert.Equal(t, []string{"apple", "banana"}, foundLabels(c))
	assert.Equal(t, 2, c.Results().Count)
}

func TestDatasetMode_DropsInvalidItems(t *testing.T) {
	c := newDataController(t, []Item{{}, {Label: ""}, {Value: "v"}, {Label: "ok"}}, nil)
	drive(t, c, c.Init())

	assert.Equal(t, []string{"ok"}, foundLabels(c))
	assert.Equal(t, 0, c.Viewport().Line)
}

func TestDatasetMode_NilCollection(t *testing.T) {
	c := newDataController(t, nil, nil)
	msg := runCmd(c.Init())
	cmd := c.Update(msg)

	assert.True(t, isQuit(cmd))
	assert.True(t, c.Done())
	assert.ErrorIs(t, c.Err(), ErrInvalidDataset)
}

func TestDatasetMode_LoadError(t *testing.T) {
	boom := errors.New("boom")
	c, err := NewController(context.Background(), Options{
		Data: DataFunc(func(context.Context) ([]Item, error) { return nil, boom }),
	})
	require.NoError(t, err)

	cmd := c.Update(runCmd(c.Init()))
	assert.True(t, isQuit(cmd))
	assert.ErrorIs(t, c.Err(), ErrDatasetLoad)
	assert.ErrorIs(t, c.Err(), boom)
}

func TestDatasetMode_TypingBeforeLoad(t *testing.T) {
	c := newDataController(t, labels("apple", "banana", "cherry"), nil)
	initCmd := c.Init()
	assert.True(t, c.Loading())

	// Terms arrive before the dataset.
	assert.Nil(t, c.SetTerms([]rune("ch")))
	assert.Empty(t, c.Results().Found)

	drive(t, c, initCmd)
	assert.False(t, c.Loading())
	assert.Equal(t, []string{"cherry"}, foundLabels(c))
}

func TestDatasetMode_InitialQuery(t *testing.T) {
	c := newDataController(t, labels("apple", "banana", "cherry"), func(o *Options) { o.Query = "ch" })
	drive(t, c, c.Init())
	assert.Equal(t, []string{"cherry"}, foundLabels(c))
}

// --- Debounce ---

func TestDebounce_CoalescesKeystrokes(t *testing.T) {
	p := &fakeProvider{}
	c := newSearchController(t, p, func(o *Options) { o.DebounceDelay = time.Millisecond })
	drive(t, c, c.Init())
	require.Len(t, p.calls, 1)

	var ticks []tea.Cmd
	for _, typed := range []string{"g", "gi", "git"} {
		cmd := c.Change([]rune(typed), len(typed), true)
		require.NotNil(t, cmd)
		ticks = append(ticks, cmd)
	}

	// All three timers fire; only the last one is current.
	for _, tick := range ticks {
		drive(t, c, c.Update(runCmd(tick)))
	}

	require.Len(t, p.calls, 2)
	assert.Equal(t, "git", p.calls[1].Query)
	assert.Equal(t, "git", c.Query().Key())
	assert.Equal(t, []string{"git-p1-a", "git-p1-b"}, foundLabels(c))
}

func TestDebounce_UnmodifiedInputSkipped(t *testing.T) {
	c := newSearchController(t, &fakeProvider{}, nil)
	assert.Nil(t, c.Change([]rune("abc"), 1, false))
}

func TestDebounce_StoppedOnCancel(t *testing.T) {
	p := &fakeProvider{}
	c := newSearchController(t, p, nil)
	drive(t, c, c.Init())

	tick := c.Change([]rune("x"), 1, true)
	require.NotNil(t, tick)
	c.Cancel()

	assert.Nil(t, c.Update(runCmd(tick)))
	assert.Len(t, p.calls, 1)
	assert.Equal(t, "", c.Query().Key())
}

// --- Pagination ---

func TestLoadNextPage_Idempotent(t *testing.T) {
	p := &fakeProvider{}
	c := newSearchController(t, p, nil)

	first := c.Init()
	require.NotNil(t, first)
	assert.True(t, c.Loading())

	// A second request for the same query while the first is in flight.
	assert.Nil(t, c.LoadNextPage())
	assert.Nil(t, c.LoadNextPage())

	drive(t, c, first)
	assert.Len(t, p.calls, 1)
	assert.False(t, c.Loading())
}

func TestRace_StaleResultsDiscarded(t *testing.T) {
	p := &fakeProvider{}
	c := newSearchController(t, p, nil)

	q1 := c.SetTerms([]rune("q1"))
	q2 := c.SetTerms([]rune("q2"))
	require.NotNil(t, q1)
	require.NotNil(t, q2)

	// q1 resolves while q2 is current.
	assert.Nil(t, c.Update(runCmd(q1)))
	assert.Empty(t, c.Results().Found)
	assert.Equal(t, 0, c.Results().Count)

	drive(t, c, q2)
	assert.Equal(t, []string{"q2-p1-a", "q2-p1-b"}, foundLabels(c))
}

func TestRace_StaleResultsAfterNewerLoaded(t *testing.T) {
	p := &fakeProvider{}
	c := newSearchController(t, p, nil)

	q1 := c.SetTerms([]rune("q1"))
	q2 := c.SetTerms([]rune("q2"))

	drive(t, c, q2)
	drive(t, c, q1)

	assert.Equal(t, []string{"q2-p1-a", "q2-p1-b"}, foundLabels(c))
	assert.Equal(t, 2, c.Results().Count)
	assert.Equal(t, 1, c.Results().LoadedPages)
}

func TestRace_SameTermsNewQuery(t *testing.T) {
	// Retyping identical terms still creates a new query; the old fetch
	// must not append to the new result set.
	p := &fakeProvider{}
	c := newSearchController(t, p, nil)

	old := c.SetTerms([]rune("a"))
	fresh := c.SetTerms([]rune("a"))

	drive(t, c, fresh)
	drive(t, c, old)
	assert.Len(t, c.Results().Found, 2)
}

func TestPagination_AppendsWithContiguousIndices(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"": {
			{Items: numbered("a", 3), Total: 7, More: true},
			{Items: numbered("b", 3), Total: 7, More: true},
			{Items: numbered("c", 1), Total: 7, More: false},
		},
	}}
	c := newSearchController(t, p, func(o *Options) { o.Size = 20 })
	drive(t, c, c.Init())

	rs := c.Results()
	require.Len(t, rs.Found, 7)
	for i, it := range rs.Found {
		assert.Equal(t, i, it.Index)
	}
	assert.Equal(t, 7, rs.Count)
	assert.Equal(t, 3, rs.LoadedPages)
	assert.False(t, rs.MorePages)
	assert.Equal(t, []int{1, 2, 3}, []int{p.calls[0].Page, p.calls[1].Page, p.calls[2].Page})
}

func TestPagination_RequestCarriesLimit(t *testing.T) {
	p := &fakeProvider{}
	c := newSearchController(t, p, func(o *Options) { o.PageSize = 25 })
	drive(t, c, c.Init())
	require.Len(t, p.calls, 1)
	assert.Equal(t, 25, p.calls[0].Limit)
}

func TestAutoPagination_FillsViewport(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"": {
			{Items: numbered("a", 5), Total: 12, More: true},
			{Items: numbered("b", 5), Total: 12, More: true},
			{Items: numbered("c", 2), Total: 12, More: false},
		},
	}}
	c := newSearchController(t, p, func(o *Options) { o.Size = 10 })

	page1 := c.Init()
	next := c.Update(runCmd(page1))
	require.NotNil(t, next, "window reaches the end of 5 loaded rows")

	c.Update(runCmd(next))
	require.Len(t, p.calls, 2)
	assert.Equal(t, 2, p.calls[1].Page)
}

func TestAutoPagination_WindowAtStartThree(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"": {
			{Items: numbered("a", 5), Total: 12, More: true},
			{Items: numbered("b", 7), Total: 12, More: false},
		},
	}}
	c := newSearchController(t, p, func(o *Options) { o.Size = 10 })

	// Load page 1 but leave the automatic follow-up unrun.
	pending := c.Update(runCmd(c.Init()))
	require.NotNil(t, pending)
	delete(c.inflight, c.query)

	c.view = Viewport{Line: 3, Start: 3, Size: 10}
	cmd := c.MoveLine(1, 0)
	require.NotNil(t, cmd)
	assert.Equal(t, 4, c.Viewport().Line)

	drive(t, c, cmd)
	assert.Equal(t, 2, p.calls[len(p.calls)-1].Page)
	assert.Len(t, c.Results().Found, 12)
}

func TestAutoPagination_OnScroll(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"": {
			{Items: numbered("a", 5), Total: 10, More: true},
			{Items: numbered("b", 5), Total: 10, More: false},
		},
	}}
	c := newSearchController(t, p, func(o *Options) { o.Size = 2 })
	drive(t, c, c.Init())
	require.Len(t, p.calls, 1, "window [0,2) does not reach row 5")

	for i := 0; i < 3; i++ {
		assert.Nil(t, c.MoveLine(1, 0))
	}
	cmd := c.MoveLine(1, 0)
	require.NotNil(t, cmd, "window [3,5) reaches the end")
	drive(t, c, cmd)

	assert.Len(t, p.calls, 2)
	assert.Len(t, c.Results().Found, 10)
	assert.Equal(t, 4, c.Viewport().Line)
}

func TestPagination_EmptyPageStops(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"": {{Items: nil, Total: 100, More: true}},
	}}
	c := newSearchController(t, p, nil)
	drive(t, c, c.Init())

	assert.Len(t, p.calls, 1)
	assert.False(t, c.Results().MorePages)
}

func TestPagination_CountNeverBelowFound(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"": {{Items: numbered("a", 4), Total: 1}},
	}}
	c := newSearchController(t, p, nil)
	drive(t, c, c.Init())

	assert.Equal(t, 4, c.Results().Count)
}

func TestPagination_DropsUnlabeledItems(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"": {{Items: []Item{{Label: "a"}, {Value: "x"}, {Label: "b"}}, Total: 3}},
	}}
	c := newSearchController(t, p, nil)
	drive(t, c, c.Init())

	assert.Equal(t, []string{"a", "b"}, foundLabels(c))
	assert.Equal(t, 1, c.Results().Found[1].Index)
}

func TestFuzzyOnSearch(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"an": {{Items: labels("cherry", "banana", "mango"), Total: 3}},
	}}
	c := newSearchController(t, p, func(o *Options) { o.FuzzyOnSearch = true })
	drive(t, c, c.SetTerms([]rune("an")))

	got := foundLabels(c)
	assert.ElementsMatch(t, []string{"banana", "mango"}, got)
	for i, it := range c.Results().Found {
		assert.Equal(t, i, it.Index)
		assert.NotEmpty(t, it.Highlight)
	}
}

func TestFetchError_Terminal(t *testing.T) {
	boom := errors.New("connection refused")
	p := &fakeProvider{err: boom}
	c := newSearchController(t, p, nil)

	cmd := c.Update(runCmd(c.SetTerms([]rune("x"))))
	assert.True(t, isQuit(cmd))
	assert.True(t, c.Done())

	var fe *FetchError
	require.ErrorAs(t, c.Err(), &fe)
	assert.Equal(t, "x", fe.Query)
	assert.Equal(t, 1, fe.Page)
	assert.ErrorIs(t, c.Err(), boom)
}

func TestLateResultsAfterCancel_Dropped(t *testing.T) {
	p := &fakeProvider{}
	c := newSearchController(t, p, nil)

	pending := c.SetTerms([]rune("late"))
	require.True(t, isQuit(c.Cancel()))

	assert.Nil(t, c.Update(runCmd(pending)))
	assert.Empty(t, c.Results().Found)
	assert.True(t, c.Cancelled())
}

func TestLateErrorAfterSelect_Dropped(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"": {{Items: numbered("a", 3), Total: 6, More: true}},
	}}
	c := newSearchController(t, p, func(o *Options) { o.Size = 10 })

	next := c.Update(runCmd(c.Init()))
	require.NotNil(t, next)
	require.True(t, isQuit(c.Select()))

	p.err = errors.New("too late")
	assert.Nil(t, c.Update(runCmd(next)))
	assert.NoError(t, c.Err())

	it, ok := c.Result()
	assert.True(t, ok)
	assert.Equal(t, "a00", it.Label)
}

// --- Cache ---

func TestCache_RoundTrip(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"x": {
			{Items: numbered("x", 3), Total: 6, More: true},
			{Items: numbered("y", 3), Total: 6, More: false},
		},
	}}
	c := newSearchController(t, p, func(o *Options) {
		o.Cache = true
		o.Size = 10
	})

	drive(t, c, c.SetTerms([]rune("x")))
	want := c.Results()
	require.Equal(t, 2, want.LoadedPages)
	callsBefore := len(p.calls)

	drive(t, c, c.SetTerms([]rune("other")))
	callsBefore++

	assert.Nil(t, c.SetTerms([]rune("x")))
	got := c.Results()
	assert.Equal(t, want, got)
	assert.Len(t, p.calls, callsBefore, "cache hit must not call the provider")
	assert.Equal(t, 0, c.Viewport().Line)
}

func TestCache_RestoredSetContinuesPaging(t *testing.T) {
	p := &fakeProvider{pages: map[string][]Response{
		"x": {
			{Items: numbered("x", 4), Total: 8, More: true},
			{Items: numbered("y", 4), Total: 8, More: false},
		},
	}}
	c := newSearchController(t, p, func(o *Options) {
		o.Cache = true
		o.Size = 2
	})
	drive(t, c, c.SetTerms([]rune("x")))
	require.Equal(t, 1, c.Results().LoadedPages)

	drive(t, c, c.SetTerms([]rune("z")))
	assert.Nil(t, c.SetTerms([]rune("x")))
	require.Equal(t, 1, c.Results().LoadedPages)

	c.MoveLine(2, 0)
	drive(t, c, c.MoveLine(1, 0))
	assert.Equal(t, 2, c.Results().LoadedPages)
	assert.Len(t, c.Results().Found, 8)
	assert.Equal(t, 2, p.calls[len(p.calls)-1].Page)
}

func TestCache_Disabled(t *testing.T) {
	p := &fakeProvider{}
	c := newSearchController(t, p, nil)

	drive(t, c, c.SetTerms([]rune("x")))
	drive(t, c, c.SetTerms([]rune("y")))
	drive(t, c, c.SetTerms([]rune("x")))
	assert.Len(t, p.calls, 3)
}

// --- Selection ---

func TestSelect_ReturnsItemAtLine(t *testing.T) {
	c := newDataController(t, labels("a", "b", "c"), nil)
	drive(t, c, c.Init())
	c.MoveLine(2, 0)

	require.True(t, isQuit(c.Select()))
	it, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, "c", it.Label)
	assert.Equal(t, 2, it.Index)
	assert.False(t, c.Cancelled())
}

func TestSelect_EmptyList(t *testing.T) {
	c := newDataController(t, labels("a"), nil)
	drive(t, c, c.Init())
	drive(t, c, c.SetTerms([]rune("zzz")))

	require.True(t, isQuit(c.Select()))
	_, ok := c.Result()
	assert.False(t, ok)
	assert.True(t, c.Done())
}

func TestTerminal_Idempotent(t *testing.T) {
	c := newDataController(t, labels("a"), nil)
	drive(t, c, c.Init())

	require.True(t, isQuit(c.Cancel()))
	assert.Nil(t, c.Cancel())
	assert.Nil(t, c.Select())
	assert.Nil(t, c.MoveLine(1, 0))
	assert.Nil(t, c.SetTerms([]rune("a")))
	assert.True(t, c.Cancelled())
}

func TestSessionContextCancelledOnEnd(t *testing.T) {
	var seen context.Context
	p := SearchFunc(func(ctx context.Context, query string, page int) (Response, error) {
		seen = ctx
		return Response{}, nil
	})
	c := newSearchController(t, p, nil)
	drive(t, c, c.Init())
	require.NotNil(t, seen)
	assert.NoError(t, seen.Err())

	c.Close()
	assert.ErrorIs(t, seen.Err(), context.Canceled)
	assert.True(t, c.Cancelled())
}

func TestViewportInvariant_AfterMoves(t *testing.T) {
	c := newDataController(t, numbered("n", 37), func(o *Options) { o.Size = 6 })
	drive(t, c, c.Init())

	moves := [][2]int{{1, 0}, {0, 1}, {0, 1}, {5, 0}, {-2, 0}, {0, -1}, {100, 0}, {-100, 0}, {0, 3}, {-1, -1}}
	for _, mv := range moves {
		c.MoveLine(mv[0], mv[1])
		v := c.Viewport()
		assert.GreaterOrEqual(t, v.Start, 0)
		assert.LessOrEqual(t, v.Start, v.Line)
		assert.Less(t, v.Line, v.Start+v.Size)
		assert.Less(t, v.Line, 37)
		assert.LessOrEqual(t, len(c.Visible()), 6)
	}
}
