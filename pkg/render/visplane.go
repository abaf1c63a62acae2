package render

import (
	"github.com/wadlight/wadlight/pkg/texture"
)

type planeKind uint8

const (
	floorPlane planeKind = iota
	ceilingPlane
)

// unsetRow marks a visplane column that carries no coverage yet.
const unsetRow = int32(1) << 30

// visplane batches one flat (floor or ceiling at a fixed height, texture
// and light level) visible somewhere on screen. Per column it stores the
// inclusive open row extent left after the walls in front were drawn.
type visplane struct {
	height int16
	tex    texture.ID
	light  int16
	kind   planeKind

	minX, maxX int32
	top        []int32
	bottom     []int32
}

func (vp *visplane) setColumn(col, top, bottom int32) {
	if vp.top[col] != unsetRow {
		// A borrowed plane keeps the extent it already committed;
		// overflow degradation must not erase recorded coverage.
		return
	}
	vp.top[col] = top
	vp.bottom[col] = bottom
	if col < vp.minX {
		vp.minX = col
	}
	if col > vp.maxX {
		vp.maxX = col
	}
}

type planeKey struct {
	height int16
	tex    texture.ID
	light  int16
	kind   planeKind
}

// planePool owns the frame's visplanes. Lookup is bucketed by the full
// key; the live-plane count is capped and overflow degrades to the
// nearest compatible plane rather than dropping coverage or aborting.
type planePool struct {
	buckets map[planeKey][]*visplane
	all     []*visplane
	width   int
	max     int

	overflows int
}

func newPlanePool(width, max int) *planePool {
	return &planePool{
		buckets: make(map[planeKey][]*visplane),
		width:   width,
		max:     max,
	}
}

func (pp *planePool) reset() {
	pp.buckets = make(map[planeKey][]*visplane)
	pp.all = pp.all[:0]
	pp.overflows = 0
}

// find returns the visplane for (height, tex, light, kind) able to accept
// columns [x1, x2]. An existing plane is reused only when none of those
// columns already carry coverage, so a merge never changes the set of
// pixels any plane covers. The returned plane is never nil.
func (pp *planePool) find(height int16, tex texture.ID, light int16, kind planeKind, x1, x2 int32) *visplane {
	if x1 < 0 {
		x1 = 0
	}
	if x2 >= int32(pp.width) {
		x2 = int32(pp.width) - 1
	}

	key := planeKey{height: height, tex: tex, light: light, kind: kind}
	for _, vp := range pp.buckets[key] {
		if vp.accept(x1, x2) {
			return vp
		}
	}

	if len(pp.all) >= pp.max {
		if vp := pp.nearest(height, kind, x1, x2); vp != nil {
			pp.overflows++
			return vp
		}
		// No plane of this orientation exists to borrow; grow past
		// the cap rather than mix floors and ceilings.
	}

	vp := &visplane{
		height: height,
		tex:    tex,
		light:  light,
		kind:   kind,
		minX:   x1,
		maxX:   x2,
		top:    make([]int32, pp.width),
		bottom: make([]int32, pp.width),
	}
	for i := range vp.top {
		vp.top[i] = unsetRow
		vp.bottom[i] = -1
	}

	pp.buckets[key] = append(pp.buckets[key], vp)
	pp.all = append(pp.all, vp)

	return vp
}

// accept widens the plane's column range to include [x1, x2] if none of
// those columns are taken yet.
func (vp *visplane) accept(x1, x2 int32) bool {
	lo, hi := x1, x2
	if vp.minX > lo {
		lo = vp.minX
	}
	if vp.maxX < hi {
		hi = vp.maxX
	}
	for x := lo; x <= hi; x++ {
		if vp.top[x] != unsetRow {
			return false
		}
	}

	if x1 < vp.minX {
		vp.minX = x1
	}
	if x2 > vp.maxX {
		vp.maxX = x2
	}
	return true
}

// nearest picks the overflow fallback: the live plane of the same
// orientation with the closest height. Coverage degrades to that plane's
// height/texture/light; columns the plane already covers keep their
// extent. Returns nil when no plane of that orientation is live.
func (pp *planePool) nearest(height int16, kind planeKind, x1, x2 int32) *visplane {
	var best *visplane
	bestDiff := int32(1) << 30
	for _, vp := range pp.all {
		if vp.kind != kind {
			continue
		}
		d := int32(vp.height) - int32(height)
		if d < 0 {
			d = -d
		}
		if d < bestDiff {
			best, bestDiff = vp, d
		}
	}
	if best == nil {
		return nil
	}

	if x1 < best.minX {
		best.minX = x1
	}
	if x2 > best.maxX {
		best.maxX = x2
	}
	return best
}
