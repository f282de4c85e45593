package picker

import (
	"context"
	"fmt"
)

// DataSource supplies the full item collection for dataset mode.
type DataSource interface {
	Load(ctx context.Context) ([]Item, error)
}

// StaticData is a DataSource backed by an in-memory slice.
type StaticData []Item

// Load implements DataSource.
func (d StaticData) Load(context.Context) ([]Item, error) {
	if d == nil {
		return nil, nil
	}
	return []Item(d), nil
}

// DataFunc adapts a function to DataSource.
type DataFunc func(ctx context.Context) ([]Item, error)

// Load implements DataSource.
func (f DataFunc) Load(ctx context.Context) ([]Item, error) {
	return f(ctx)
}

// ValidateDataset returns a copy of items without zero-value entries and
// entries lacking a label. A nil collection is rejected; an empty one is not.
func ValidateDataset(items []Item) ([]Item, error) {
	if items == nil {
		return nil, fmt.Errorf("%w: data source returned no collection", ErrInvalidDataset)
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.isZero() || it.Label == "" {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}
