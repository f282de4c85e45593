package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCache_Disabled(t *testing.T) {
	qc := NewQueryCache(false)
	require.Nil(t, qc)

	qc.Put("a", ResultSet{Count: 1})
	_, ok := qc.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, qc.Len())
}

func TestQueryCache_PutGet(t *testing.T) {
	qc := NewQueryCache(true)
	rs := ResultSet{
		Found:       []Item{{Label: "a", Highlight: []int{0}, Index: 0}},
		Count:       9,
		LoadedPages: 1,
		MorePages:   true,
	}
	qc.Put("a", rs)

	got, ok := qc.Get("a")
	require.True(t, ok)
	assert.Equal(t, rs, got)
	assert.Equal(t, 1, qc.Len())

	_, ok = qc.Get("b")
	assert.False(t, ok)
}

func TestQueryCache_EntriesAreIsolated(t *testing.T) {
	qc := NewQueryCache(true)
	rs := ResultSet{Found: []Item{{Label: "a", Highlight: []int{0}}}}
	qc.Put("a", rs)

	// Mutating the original or a returned copy must not leak into the cache.
	rs.Found[0].Label = "changed"
	got, _ := qc.Get("a")
	got.Found[0].Highlight[0] = 7
	got.Found = append(got.Found, Item{Label: "extra"})

	again, _ := qc.Get("a")
	require.Len(t, again.Found, 1)
	assert.Equal(t, "a", again.Found[0].Label)
	assert.Equal(t, []int{0}, again.Found[0].Highlight)
}

func TestQueryCache_Replace(t *testing.T) {
	qc := NewQueryCache(true)
	qc.Put("a", ResultSet{LoadedPages: 1})
	qc.Put("a", ResultSet{LoadedPages: 2})

	got, ok := qc.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, got.LoadedPages)
	assert.Equal(t, 1, qc.Len())
}
