package picker

import (
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// FilterFunc narrows and orders items for the typed terms. It must not
// modify its input; returned items carry Highlight but not Index.
type FilterFunc func(items []Item, terms []rune) []Item

// IdentityFilter returns every item in its original order.
func IdentityFilter(items []Item, _ []rune) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		out[i].Highlight = nil
	}
	return out
}

// itemSource exposes item labels to the fuzzy matcher.
type itemSource []Item

func (s itemSource) String(i int) string { return s[i].Label }
func (s itemSource) Len() int            { return len(s) }

// FuzzyFilter keeps items whose label contains the terms as a subsequence,
// best matches first, and records the matched rune offsets in Highlight.
// Empty terms keep every item in order.
func FuzzyFilter(items []Item, terms []rune) []Item {
	if len(terms) == 0 {
		return IdentityFilter(items, terms)
	}

	matches := fuzzy.FindFrom(string(terms), itemSource(items))

	out := make([]Item, 0, len(matches))
	for _, m := range matches {
		it := items[m.Index]
		it.Highlight = byteToRuneOffsets(it.Label, m.MatchedIndexes)
		out = append(out, it)
	}
	return out
}

// byteToRuneOffsets converts the matcher's byte offsets into rune offsets.
func byteToRuneOffsets(s string, byteIdx []int) []int {
	if len(byteIdx) == 0 {
		return nil
	}
	if utf8.RuneCountInString(s) == len(s) {
		out := make([]int, len(byteIdx))
		copy(out, byteIdx)
		return out
	}
	want := make(map[int]bool, len(byteIdx))
	for _, b := range byteIdx {
		want[b] = true
	}
	out := make([]int, 0, len(byteIdx))
	r := 0
	for b := range s {
		if want[b] {
			out = append(out, r)
		}
		r++
	}
	return out
}
