package picker

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultSize is the number of visible rows when Options.Size is zero.
	DefaultSize = 10

	// DefaultPageSize is the Request.Limit hint when Options.PageSize is zero.
	DefaultPageSize = 50

	// DefaultDebounceDelay is the delay after the last keystroke before the
	// list is filtered again.
	DefaultDebounceDelay = 100 * time.Millisecond

	defaultPrompt = "> "
)

// Options configures a picker session. Exactly one of Data and Search must
// be set: Data selects dataset mode, Search selects search mode.
type Options struct {
	Data   DataSource
	Search Provider

	Size          int           // Visible rows
	PageSize      int           // Request.Limit hint for Search
	Fuzzy         *bool         // Fuzzy filtering in dataset mode; nil means true
	FuzzyOnSearch bool          // Fuzzy scoring and highlighting of search pages
	DebounceDelay time.Duration // Keystroke coalescing; negative disables the delay
	Cache         bool          // Remember results per query for the session
	Query         string        // Initial input
	Prompt        string        // Input prompt

	Logger *slog.Logger
}

// Validate reports whether the options describe a usable session.
func (o Options) Validate() error {
	switch {
	case o.Data == nil && o.Search == nil:
		return fmt.Errorf("%w: one of data or search is required", ErrConfiguration)
	case o.Data != nil && o.Search != nil:
		return fmt.Errorf("%w: data and search are mutually exclusive", ErrConfiguration)
	}
	if f, ok := o.Search.(SearchFunc); ok && f == nil {
		return fmt.Errorf("%w: search is not callable", ErrConfiguration)
	}
	if f, ok := o.Data.(DataFunc); ok && f == nil {
		return fmt.Errorf("%w: data is not callable", ErrConfiguration)
	}
	if o.Size < 0 {
		return fmt.Errorf("%w: size must be >= 0 (got %d)", ErrConfiguration, o.Size)
	}
	if o.PageSize < 0 {
		return fmt.Errorf("%w: page size must be >= 0 (got %d)", ErrConfiguration, o.PageSize)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.PageSize == 0 {
		o.PageSize = DefaultPageSize
	}
	if o.DebounceDelay == 0 {
		o.DebounceDelay = DefaultDebounceDelay
	}
	if o.Prompt == "" {
		o.Prompt = defaultPrompt
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

func (o Options) fuzzy() bool {
	return o.Fuzzy == nil || *o.Fuzzy
}
