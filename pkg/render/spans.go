package render

import (
	"sync"
	"sync/atomic"

	"github.com/wadlight/wadlight/pkg/texture"
)

// flushPlanes rasterizes every visplane collected during traversal. Once
// merges are finalized each plane owns a disjoint set of pixels, so the
// planes can be drawn independently; with SpanWorkers > 1 they fan out
// over a small worker group.
func (r *Renderer) flushPlanes() {
	planes := r.planes.all
	if len(planes) == 0 {
		return
	}

	workers := r.cfg.SpanWorkers
	if workers < 2 || len(planes) < 2 {
		for _, vp := range planes {
			r.stats.PlaneSpans += r.rasterizePlane(vp)
		}
		return
	}

	if workers > len(planes) {
		workers = len(planes)
	}

	var (
		next  atomic.Int64
		spans atomic.Int64
		wg    sync.WaitGroup
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(planes) {
					return
				}
				spans.Add(int64(r.rasterizePlane(planes[i])))
			}
		}()
	}
	wg.Wait()
	r.stats.PlaneSpans += int(spans.Load())
}

// rasterizePlane walks the plane's scanlines and draws every contiguous
// horizontal run of open columns. Returns the number of spans drawn.
func (r *Renderer) rasterizePlane(vp *visplane) int {
	if vp.maxX < vp.minX {
		return 0
	}

	tex := r.bank.Lookup(vp.tex)
	shade := texture.ShadeForLight(vp.light)
	drawn := 0

	for y := int32(0); y < int32(r.proj.height); y++ {
		runStart := int32(-1)
		for x := vp.minX; x <= vp.maxX; x++ {
			inside := vp.top[x] <= y && y <= vp.bottom[x]
			if inside {
				if runStart < 0 {
					runStart = x
				}
				continue
			}
			if runStart >= 0 {
				r.drawPlaneSpan(vp, tex, shade, y, runStart, x-1)
				drawn++
				runStart = -1
			}
		}
		if runStart >= 0 {
			r.drawPlaneSpan(vp, tex, shade, y, runStart, vp.maxX)
			drawn++
		}
	}

	return drawn
}

// drawPlaneSpan inverse-projects one horizontal pixel run onto the plane
// and samples the flat texture at the resulting world coordinates. The
// depth is constant along a scanline, so the world point steps linearly.
func (r *Renderer) drawPlaneSpan(vp *visplane, tex *texture.Texture, shade int, y, x1, x2 int32) {
	dy := float32(y) + 0.5 - r.proj.halfH
	if dy > -1e-6 && dy < 1e-6 {
		return // horizon row, plane projects to infinity
	}

	ratio := (r.viewZ - float32(vp.height)) / dy
	z := r.proj.focal * absf(ratio)

	fwd := r.cam.Forward()
	right := r.cam.Right()

	world := r.cam.Pos.
		Add(fwd.Mul(z)).
		Add(right.Mul((float32(x1) + 0.5 - r.proj.halfW) * ratio))
	step := right.Mul(ratio)

	row := r.fb[y*int32(r.proj.width):]
	for x := x1; x <= x2; x++ {
		px := tex.At(int(floorf(world[0])), int(floorf(world[1])))
		row[x] = texture.Shade(shade, px)
		world = world.Add(step)
	}
}
