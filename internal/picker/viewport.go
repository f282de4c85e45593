package picker

// Viewport tracks the selected line and the first visible row of a list.
// Line is -1 when the list is empty.
type Viewport struct {
	Line  int
	Start int
	Size  int
}

// NewViewport returns an empty viewport showing size rows.
func NewViewport(size int) Viewport {
	if size < 1 {
		size = 1
	}
	return Viewport{Line: -1, Size: size}
}

// Reset moves the selection back to the top of a list of n items.
func (v *Viewport) Reset(n int) {
	v.Start = 0
	v.Line = -1
	if n > 0 {
		v.Line = 0
	}
}

// Move shifts the selection by dLine rows plus dPage pages within a list of
// n items and scrolls just enough to keep it visible.
func (v *Viewport) Move(dLine, dPage, n int) {
	if n <= 0 {
		v.Reset(0)
		return
	}
	delta := dLine + dPage*v.Size
	v.Line = clamp(v.Line+delta, 0, n-1)

	switch {
	case delta < 0 && v.Line < v.Start:
		v.Start = v.Line
	case delta > 0 && v.Line >= v.Start+v.Size:
		v.Start = v.Line - v.Size + 1
	}
	v.ensureVisible()
}

// Resize changes the number of visible rows.
func (v *Viewport) Resize(size int) {
	if size < 1 {
		size = 1
	}
	v.Size = size
	v.ensureVisible()
}

// Sync re-establishes the invariants after the list changed length to n
// without a user move, e.g. when a page was appended.
func (v *Viewport) Sync(n int) {
	if n <= 0 {
		v.Reset(0)
		return
	}
	if v.Line < 0 {
		v.Line = 0
	}
	if v.Line >= n {
		v.Line = n - 1
	}
	v.ensureVisible()
}

// Window returns the half-open range of visible indices for n items.
func (v Viewport) Window(n int) (from, to int) {
	from = min(v.Start, n)
	to = min(v.Start+v.Size, n)
	return from, to
}

// AtEnd reports whether the visible window reaches the end of the n loaded
// items.
func (v Viewport) AtEnd(n int) bool {
	return v.Start+v.Size >= n
}

func (v *Viewport) ensureVisible() {
	if v.Line < 0 {
		v.Start = 0
		return
	}
	if v.Line < v.Start {
		v.Start = v.Line
	}
	if v.Line >= v.Start+v.Size {
		v.Start = v.Line - v.Size + 1
	}
	if v.Start < 0 {
		v.Start = 0
	}
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
