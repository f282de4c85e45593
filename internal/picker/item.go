package picker

import "slices"

// Item is one candidate row in the picker.
type Item struct {
	Label     string // Text shown in the list; required
	Value     string // Returned on selection; Label is used when empty
	Highlight []int  // Rune offsets into Label matched by the fuzzy filter
	Index     int    // Rank in the full result ordering, assigned by the controller
}

// Output returns the string the picker hands back when the item is selected.
func (it Item) Output() string {
	if it.Value != "" {
		return it.Value
	}
	return it.Label
}

func (it Item) isZero() bool {
	return it.Label == "" && it.Value == "" && it.Highlight == nil && it.Index == 0
}

// Query is the typed search terms at one point in time. A new Query is
// created whenever the terms change; two queries are the same only if they
// are the same pointer, which is what the pagination race check relies on.
type Query struct {
	terms []rune
}

// NewQuery captures a copy of terms.
func NewQuery(terms []rune) *Query {
	return &Query{terms: slices.Clone(terms)}
}

// Terms returns the typed characters.
func (q *Query) Terms() []rune {
	if q == nil {
		return nil
	}
	return q.terms
}

// Key is the joined query string, used for provider requests and cache keys.
func (q *Query) Key() string {
	if q == nil {
		return ""
	}
	return string(q.terms)
}

// ResultSet is the accumulated result for one query.
type ResultSet struct {
	Found       []Item
	Count       int  // Total matches, possibly ahead of len(Found)
	LoadedPages int  // Pages fetched so far (search mode)
	MorePages   bool // Provider reported more pages
}

func (rs ResultSet) clone() ResultSet {
	out := rs
	out.Found = make([]Item, len(rs.Found))
	for i, it := range rs.Found {
		it.Highlight = slices.Clone(it.Highlight)
		out.Found[i] = it
	}
	return out
}

// indexFrom assigns contiguous indices starting at start.
func indexFrom(items []Item, start int) {
	for i := range items {
		items[i].Index = start + i
	}
}
