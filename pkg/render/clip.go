package render

// Span is an inclusive range of screen columns.
type Span struct {
	First, Last int32
}

// ClipSpans is the frame-scoped occlusion state that stands in for a
// depth buffer. Horizontally it keeps a sorted, disjoint list of column
// ranges already covered by solid wall; vertically it keeps per-column
// ceiling/floor clip rows that close in as portals are drawn.
//
// It is allocated per renderer and reset at the start of every frame;
// traversal order plus this structure is the whole visibility story.
type ClipSpans struct {
	width, height int32

	solid []Span

	// Rows <= ceil[x] and >= floor[x] are occluded in column x.
	ceil  []int32
	floor []int32
}

func newClipSpans(w, h int) *ClipSpans {
	c := &ClipSpans{
		width:  int32(w),
		height: int32(h),
		solid:  make([]Span, 0, 32),
		ceil:   make([]int32, w),
		floor:  make([]int32, w),
	}
	c.Reset()
	return c
}

// Reset opens every column. Two sentinel spans flank the screen so the
// insertion code never runs off either end of the list.
func (c *ClipSpans) Reset() {
	c.solid = c.solid[:0]
	c.solid = append(c.solid,
		Span{First: -c.width, Last: -1},
		Span{First: c.width, Last: 2 * c.width},
	)
	for i := range c.ceil {
		c.ceil[i] = -1
		c.floor[i] = c.height
	}
}

// MarkSolid records [x1, x2] as covered by solid wall, merging with any
// overlapping or adjacent spans so the list stays sorted and disjoint.
func (c *ClipSpans) MarkSolid(x1, x2 int32) {
	if x2 < x1 {
		return
	}

	i := 0
	for i < len(c.solid) && c.solid[i].Last < x1-1 {
		i++
	}

	// swallowed by an existing span
	if i < len(c.solid) && x1 >= c.solid[i].First && x2 <= c.solid[i].Last {
		return
	}

	first, last := x1, x2
	j := i
	for j < len(c.solid) && c.solid[j].First <= last+1 {
		if c.solid[j].First < first {
			first = c.solid[j].First
		}
		if c.solid[j].Last > last {
			last = c.solid[j].Last
		}
		j++
	}

	c.solid = append(c.solid[:i], append([]Span{{First: first, Last: last}}, c.solid[j:]...)...)
}

// Visible returns the sub-ranges of [x1, x2] not yet covered by solid
// wall, in ascending order. The result aliases nothing and may be empty.
func (c *ClipSpans) Visible(x1, x2 int32) []Span {
	if x2 < x1 {
		return nil
	}

	var open []Span
	cur := x1
	for _, s := range c.solid {
		if s.Last < cur {
			continue
		}
		if s.First > x2 {
			break
		}
		if s.First > cur {
			open = append(open, Span{First: cur, Last: s.First - 1})
		}
		if s.Last >= cur {
			cur = s.Last + 1
		}
		if cur > x2 {
			return open
		}
	}
	if cur <= x2 {
		open = append(open, Span{First: cur, Last: x2})
	}
	return open
}

// FullyOccluded reports whether [x1, x2] lies inside a single solid span.
// The tree walk uses it to discard whole subtrees from their projected
// bounding boxes.
func (c *ClipSpans) FullyOccluded(x1, x2 int32) bool {
	for _, s := range c.solid {
		if s.Last < x1 {
			continue
		}
		return x1 >= s.First && x2 <= s.Last
	}
	return false
}

// Solid returns the recorded solid ranges without the sentinels.
func (c *ClipSpans) Solid() []Span {
	out := make([]Span, 0, len(c.solid))
	for _, s := range c.solid {
		if s.Last < 0 || s.First >= c.width {
			continue
		}
		out = append(out, s)
	}
	return out
}

// visibleRows clips a column's projected [yTop, yBot] extent against its
// occluded bands, returning the still-open inclusive row range.
func (c *ClipSpans) visibleRows(col int32, yTop, yBot int32) (y0, y1 int32) {
	y0 = yTop
	if lo := c.ceil[col] + 1; y0 < lo {
		y0 = lo
	}
	y1 = yBot
	if hi := c.floor[col] - 1; y1 > hi {
		y1 = hi
	}
	return y0, y1
}

func (c *ClipSpans) columnOpen(col int32) bool {
	return c.ceil[col]+1 < c.floor[col]
}

func (c *ClipSpans) closeColumn(col int32) {
	c.ceil[col] = c.height
	c.floor[col] = -1
}

func (c *ClipSpans) raiseCeil(col, y int32) {
	if y > c.ceil[col] {
		c.ceil[col] = y
	}
}

func (c *ClipSpans) lowerFloor(col, y int32) {
	if y < c.floor[col] {
		c.floor[col] = y
	}
}
