package render

import (
	"math"

	"github.com/wadlight/wadlight/pkg/lumps"
	"github.com/wadlight/wadlight/pkg/texture"
)

type clipKind uint8

const (
	clipSolid clipKind = iota // floor-to-ceiling wall
	clipUpper                 // portal slice below the front ceiling
	clipLower                 // portal slice above the front floor
)

// edge is one wall segment projected to the screen: inclusive column
// range plus perspective-correct 1/z and u/z at both ends.
type edge struct {
	seg          uint16
	x1, x2       int32
	invzL, invzR float32
	uozL, uozR   float32
}

// wallSpan is the ready-to-rasterize form of one wall slice.
type wallSpan struct {
	tex   texture.ID
	light int16

	u0oz, u1oz   float32
	invz0, invz1 float32

	x1, x2                     int32
	yTop0, yTop1, yBot0, yBot1 float32

	wallH  float32 // ceiling minus floor in map units
	texMid float32 // texture-space v at the eye row
}

// step and cursor advance the per-column attributes linearly left to
// right across a span.
type step struct {
	duoz, dinvz, dyTop, dyBot float32
}

type cursor struct {
	uoz, invz, yTop, yBot float32
}

func (s *wallSpan) step() step {
	w := float32(s.x2 - s.x1)
	if w < 1 {
		w = 1
	}
	return step{
		duoz:  (s.u1oz - s.u0oz) / w,
		dinvz: (s.invz1 - s.invz0) / w,
		dyTop: (s.yTop1 - s.yTop0) / w,
		dyBot: (s.yBot1 - s.yBot0) / w,
	}
}

func (s *wallSpan) cursorAt(x int32) cursor {
	st := s.step()
	k := float32(x - s.x1)
	return cursor{
		uoz:  s.u0oz + st.duoz*k,
		invz: s.invz0 + st.dinvz*k,
		yTop: s.yTop0 + st.dyTop*k,
		yBot: s.yBot0 + st.dyBot*k,
	}
}

func (c *cursor) advance(s *step) {
	c.uoz += s.duoz
	c.invz += s.dinvz
	c.yTop += s.dyTop
	c.yBot += s.dyBot
}

// projectSeg transforms a seg into screen space: camera-space transform,
// near-plane clip (tracking the texture parameter), horizontal screen
// clip and the solid-span occlusion test. Returns false for segs that
// cannot produce pixels.
func (r *Renderer) projectSeg(segIdx uint16) (edge, bool) {
	seg := &r.lvl.Segs[segIdx]
	v1, v2 := r.lvl.SegVerts(seg)

	p1 := r.cam.ToView(v1)
	p2 := r.cam.ToView(v2)

	near := r.proj.nearClip
	if p1[1] <= near && p2[1] <= near {
		return edge{}, false
	}

	t1, t2 := float32(0), float32(1)
	if p1[1] < near {
		t := (near - p1[1]) / (p2[1] - p1[1])
		p1 = p1.Add(p2.Sub(p1).Mul(t))
		p1[1] = near
		t1 = t
	}
	if p2[1] < near {
		t := (near - p2[1]) / (p1[1] - p2[1])
		p2 = p2.Add(p1.Sub(p2).Mul(t))
		p2[1] = near
		t2 = 1 - t
	}

	sx1 := r.proj.ScreenX(p1)
	sx2 := r.proj.ScreenX(p2)

	rightLim := r.proj.widthF - 1
	if (sx1 < 0 && sx2 < 0) || (sx1 > rightLim && sx2 > rightLim) {
		return edge{}, false
	}

	if sx1 > sx2 {
		sx1, sx2 = sx2, sx1
		p1, p2 = p2, p1
		t1, t2 = t2, t1
	}

	x1 := int32(clampf(sx1, 0, rightLim))
	x2 := int32(minf(sx2, rightLim))
	if x1 > x2 {
		return edge{}, false
	}

	if r.clip.FullyOccluded(x1, x2) {
		return edge{}, false
	}

	// A seg may project to a single column; clamp the interpolation
	// width instead of rejecting it.
	span := sx2 - sx1
	if span < 1 {
		span = 1
	}

	invz1 := 1 / p1[1]
	invz2 := 1 / p2[1]

	wallLen := v2.Sub(v1).Len()
	uBase := float32(0)
	if sd := r.lvl.FrontSidedef(seg); sd != nil {
		uBase = float32(sd.XOff) + float32(seg.Offset)
	}
	uoz1 := (uBase + wallLen*t1) * invz1
	uoz2 := (uBase + wallLen*t2) * invz2

	fracL := (float32(x1) - sx1) / span
	fracR := (float32(x2) - sx1) / span

	return edge{
		seg:   segIdx,
		x1:    x1,
		x2:    x2,
		invzL: invz1 + (invz2-invz1)*fracL,
		invzR: invz1 + (invz2-invz1)*fracR,
		uozL:  uoz1 + (uoz2-uoz1)*fracL,
		uozR:  uoz1 + (uoz2-uoz1)*fracR,
	}, true
}

// backFacing culls segs whose front side points away from the camera.
func (r *Renderer) backFacing(segIdx uint16) bool {
	seg := &r.lvl.Segs[segIdx]
	a, b := r.lvl.SegVerts(seg)
	wall := b.Sub(a)

	n := [2]float32{wall[1], -wall[0]}
	if seg.Dir != 0 {
		n[0], n[1] = -n[0], -n[1]
	}
	d := r.cam.Pos.Sub(a)
	return n[0]*d[0]+n[1]*d[1] <= 0
}

// drawSeg classifies one visible seg as a solid wall or a portal pair and
// rasterizes the resulting slices, updating clip state and visplanes.
func (r *Renderer) drawSeg(e edge) {
	seg := &r.lvl.Segs[e.seg]
	sdFront := r.lvl.FrontSidedef(seg)
	if sdFront == nil {
		return
	}
	secFront := &r.lvl.Sectors[sdFront.Sector]
	secBack := r.lvl.BackSector(seg)
	ld := &r.lvl.Linedefs[seg.Linedef]
	light := secFront.Light
	yOff := float32(sdFront.YOff)

	var floorVis, ceilVis *visplane
	if float32(secFront.FloorH) < r.viewZ {
		floorVis = r.planes.find(secFront.FloorH, secFront.FloorTex, light, floorPlane, e.x1, e.x2)
	}
	if float32(secFront.CeilH) > r.viewZ {
		ceilVis = r.planes.find(secFront.CeilH, secFront.CeilTex, light, ceilingPlane, e.x1, e.x2)
	}

	if secBack == nil || !ld.TwoSided() {
		open := r.clip.Visible(e.x1, e.x2)
		pegged := ld.Flags&lumps.FlagLowerUnpegged != 0
		r.pushWall(&e, float32(secFront.CeilH), float32(secFront.FloorH), light,
			sdFront.Middle, clipSolid, pegged, yOff, ceilVis, floorVis, open)
		r.clip.MarkSolid(e.x1, e.x2)
		return
	}

	markFloor := secBack.FloorH != secFront.FloorH ||
		secBack.FloorTex != secFront.FloorTex ||
		secBack.Light != secFront.Light
	markCeil := secBack.CeilH != secFront.CeilH ||
		secBack.CeilTex != secFront.CeilTex ||
		secBack.Light != secFront.Light

	// closed door: the opening has no vertical extent
	closed := secBack.CeilH <= secFront.FloorH || secBack.FloorH >= secFront.CeilH
	if closed {
		markFloor, markCeil = true, true
	}

	upperFloorH := secBack.CeilH
	if secFront.CeilH < upperFloorH {
		upperFloorH = secFront.CeilH
	}
	upperTex := texture.Missing
	if secBack.CeilH < secFront.CeilH {
		upperTex = sdFront.Upper
	}

	lowerCeilH := secBack.FloorH
	if secFront.FloorH > lowerCeilH {
		lowerCeilH = secFront.FloorH
	}
	lowerTex := texture.Missing
	if secBack.FloorH > secFront.FloorH {
		lowerTex = sdFront.Lower
	}

	pegged := ld.Flags&lumps.FlagUpperUnpegged != 0
	full := []Span{{First: e.x1, Last: e.x2}}

	curCeilVis := ceilVis
	if !markCeil {
		curCeilVis = nil
	}
	curFloorVis := floorVis
	if !markFloor {
		curFloorVis = nil
	}

	r.pushWall(&e, float32(secFront.CeilH), float32(upperFloorH), light,
		upperTex, clipUpper, pegged, yOff, curCeilVis, nil, full)
	r.pushWall(&e, float32(lowerCeilH), float32(secFront.FloorH), light,
		lowerTex, clipLower, pegged, yOff, nil, curFloorVis, full)

	if closed {
		r.clip.MarkSolid(e.x1, e.x2)
	}
}

// pushWall projects one wall slice's vertical extents and hands it to the
// column loop.
func (r *Renderer) pushWall(e *edge, ceilH, floorH float32, light int16, tex texture.ID,
	kind clipKind, pegged bool, yOff float32, ceilVis, floorVis *visplane, windows []Span,
) {
	var texMid float32
	switch {
	case kind == clipLower && pegged:
		texMid = (ceilH - r.viewZ) + yOff
	case kind == clipLower:
		texMid = (floorH - r.viewZ) + yOff
	case pegged:
		texMid = (floorH - r.viewZ) + yOff
	default:
		texMid = (ceilH - r.viewZ) + yOff
	}

	span := wallSpan{
		tex:    tex,
		light:  light,
		u0oz:   e.uozL,
		u1oz:   e.uozR,
		invz0:  e.invzL,
		invz1:  e.invzR,
		x1:     e.x1,
		x2:     e.x2,
		yTop0:  r.proj.halfH - (ceilH-r.viewZ)*r.proj.focal*e.invzL,
		yTop1:  r.proj.halfH - (ceilH-r.viewZ)*r.proj.focal*e.invzR,
		yBot0:  r.proj.halfH - (floorH-r.viewZ)*r.proj.focal*e.invzL,
		yBot1:  r.proj.halfH - (floorH-r.viewZ)*r.proj.focal*e.invzR,
		wallH:  absf(ceilH - floorH),
		texMid: texMid,
	}

	for _, w := range windows {
		r.emitAndClip(&span, kind, ceilVis, floorVis, w)
	}
}

// emitAndClip walks the columns of one window, draws the visible part of
// the wall slice, registers exposed floor/ceiling coverage with the
// visplanes, and closes the clip bands behind what was drawn.
func (r *Renderer) emitAndClip(span *wallSpan, kind clipKind, ceilVis, floorVis *visplane, window Span) {
	st := span.step()
	cur := span.cursorAt(window.First)

	tex := r.bank.Lookup(span.tex)
	// portals may legitimately carry no texture and then only clip
	draw := kind == clipSolid || span.tex != texture.Missing

	for x := window.First; x <= window.Last; x++ {
		if !r.clip.columnOpen(x) {
			cur.advance(&st)
			continue
		}

		y0, y1 := r.clip.visibleRows(x,
			int32(ceilf(cur.yTop)),
			int32(floorf(cur.yBot)))

		if draw && y0 <= y1 {
			r.drawWallColumn(x, &cur, span, tex, y0, y1)
		}

		if ceilVis != nil {
			top := r.clip.ceil[x] + 1
			bottom := y0 - 1
			if f := r.clip.floor[x] - 1; bottom > f {
				bottom = f
			}
			if top <= bottom {
				ceilVis.setColumn(x, top, bottom)
			}
		}
		if floorVis != nil {
			top := y1 + 1
			if c := r.clip.ceil[x] + 1; top < c {
				top = c
			}
			bottom := r.clip.floor[x] - 1
			if top <= bottom {
				floorVis.setColumn(x, top, bottom)
			}
		}

		switch kind {
		case clipSolid:
			r.clip.closeColumn(x)
		case clipUpper:
			if draw || ceilVis != nil {
				r.clip.raiseCeil(x, y1)
			}
		case clipLower:
			if draw || floorVis != nil {
				r.clip.lowerFloor(x, y0)
			}
		}

		cur.advance(&st)
	}
}

// drawWallColumn samples one vertical texture strip into the frame
// buffer, shaded by sector light plus distance attenuation.
func (r *Renderer) drawWallColumn(col int32, cur *cursor, span *wallSpan, tex *texture.Texture, y0, y1 int32) {
	if cur.invz <= 0 {
		return // behind the camera, nothing to sample
	}

	colPxH := cur.yBot - cur.yTop
	if colPxH < 1 {
		colPxH = 1
	}
	dv := span.wallH / colPxH
	v := span.texMid + (float32(y0)-r.proj.halfH)*dv

	uTex := wrap(int(cur.uoz/cur.invz), tex.W)
	shade := texture.ShadeForLight(span.light) + int((1/cur.invz)/r.cfg.LightFadeDist)

	fb := r.fb
	w := int32(r.proj.width)
	for y := y0; y <= y1; y++ {
		vTex := wrap(int(v), tex.H)
		fb[y*w+col] = texture.Shade(shade, tex.Pixels[vTex*tex.W+uTex])
		v += dv
	}
	r.stats.WallColumns++
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func ceilf(v float32) float32  { return float32(math.Ceil(float64(v))) }
func floorf(v float32) float32 { return float32(math.Floor(float64(v))) }
