package picker

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when Options are unusable. It is raised
	// before any terminal input is read.
	ErrConfiguration = errors.New("picker: invalid configuration")

	// ErrInvalidDataset is returned when a DataSource yields no collection.
	ErrInvalidDataset = errors.New("picker: invalid dataset")

	// ErrDatasetLoad wraps failures reported by a DataSource.
	ErrDatasetLoad = errors.New("picker: dataset load failed")

	// ErrInputStream wraps failures of the terminal program itself.
	ErrInputStream = errors.New("picker: input stream failed")
)

// FetchError reports a failed Provider.Fetch call.
type FetchError struct {
	Query string
	Page  int
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("picker: fetch page %d for %q: %v", e.Page, e.Query, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
