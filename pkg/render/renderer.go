// Package render implements the classic column/span software pipeline:
// front-to-back BSP traversal with solid-span occlusion instead of a
// depth buffer, vertical wall columns during traversal, and batched
// floor/ceiling visplanes rasterized as horizontal spans afterwards.
package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/wadlight/wadlight/pkg/level"
	"github.com/wadlight/wadlight/pkg/lumps"
	"github.com/wadlight/wadlight/pkg/texture"
)

// backgroundColor fills pixels nothing was drawn to (dark grey).
const backgroundColor = 0xFF202020

// FrameStats counts work done for the last rendered frame.
type FrameStats struct {
	Subsectors     int
	SegsDrawn      int
	WallColumns    int
	Planes         int
	PlaneSpans     int
	CulledSubtrees int
	PlaneOverflows int
}

// Renderer owns one frame buffer and the frame-scoped pipeline state.
// It is not safe for concurrent use; render frames sequentially and share
// only the immutable Level between renderers.
type Renderer struct {
	cfg    Config
	proj   Projection
	clip   *ClipSpans
	planes *planePool
	fb     []uint32
	stats  FrameStats
	visits []uint16

	// valid during one RenderFrame call
	lvl    *level.Level
	cam    *Camera
	bank   *texture.Bank
	viewZ  float32
	floorZ float32
}

// New creates a renderer for the given configuration.
func New(cfg Config) *Renderer {
	return &Renderer{
		cfg:    cfg,
		proj:   newProjection(cfg),
		clip:   newClipSpans(cfg.Width, cfg.Height),
		planes: newPlanePool(cfg.Width, cfg.MaxVisplanes),
		fb:     make([]uint32, cfg.Width*cfg.Height),
	}
}

// Projection exposes the renderer's projection constants.
func (r *Renderer) Projection() *Projection { return &r.proj }

// Stats returns the counters of the last rendered frame.
func (r *Renderer) Stats() FrameStats { return r.stats }

// VisitOrder returns the subsector visitation order of the last frame,
// front to back.
func (r *Renderer) VisitOrder() []uint16 { return r.visits }

// Size returns the frame dimensions in pixels.
func (r *Renderer) Size() (w, h int) { return r.cfg.Width, r.cfg.Height }

// RenderFrame renders one frame for the given camera pose and returns the
// completed 0xAARRGGBB buffer (owned by the renderer, valid until the
// next call). The level is never written to; abandoning a frame simply
// means not calling RenderFrame again with this state.
func (r *Renderer) RenderFrame(lvl *level.Level, cam *Camera, bank *texture.Bank) []uint32 {
	r.lvl = lvl
	r.cam = cam
	r.bank = bank
	r.stats = FrameStats{}
	r.visits = r.visits[:0]

	for i := range r.fb {
		r.fb[i] = backgroundColor
	}
	r.clip.Reset()
	r.planes.reset()

	r.floorZ = lvl.FloorHeightAt(cam.Pos)
	r.viewZ = r.floorZ + cam.EyeHeight

	r.walk(lvl.BSPRoot())

	r.flushPlanes()
	r.stats.Planes = len(r.planes.all)
	r.stats.PlaneOverflows = r.planes.overflows

	return r.fb
}

// walk traverses the BSP front-to-back. The near child is the one on the
// camera's side of the partition (a camera exactly on the line counts as
// front); the far child is skipped when its projected bounding box is
// already fully occluded.
func (r *Renderer) walk(child uint16) {
	if level.IsLeaf(child) {
		r.drawSubsector(level.LeafIndex(child))
		return
	}

	n := &r.lvl.Nodes[child]
	side := level.PointSide(n, r.cam.Pos)

	r.walk(n.Child[side])

	if r.bboxVisible(n, side^1) {
		r.walk(n.Child[side^1])
	} else {
		r.stats.CulledSubtrees++
	}
}

// bboxVisible conservatively tests whether a node child's bounding box
// can still contribute pixels: at least one corner in front of the near
// plane, screen overlap, and not fully inside a solid clip span.
func (r *Renderer) bboxVisible(n *lumps.Node, side int) bool {
	min, max := level.NodeBBox(n, side)

	minSx := math32Inf
	maxSx := -math32Inf
	anyInFront := false

	for _, corner := range [4]mgl32.Vec2{
		{min[0], min[1]},
		{min[0], max[1]},
		{max[0], min[1]},
		{max[0], max[1]},
	} {
		p := r.cam.ToView(corner)
		if p[1] <= r.proj.nearClip {
			continue
		}
		anyInFront = true
		sx := r.proj.ScreenX(p)
		if sx < minSx {
			minSx = sx
		}
		if sx > maxSx {
			maxSx = sx
		}
	}

	if !anyInFront {
		return false
	}
	if maxSx < 0 || minSx >= r.proj.widthF {
		return false
	}

	// A camera inside the box sees it regardless of corner projection.
	if r.cam.Pos[0] >= min[0] && r.cam.Pos[0] <= max[0] &&
		r.cam.Pos[1] >= min[1] && r.cam.Pos[1] <= max[1] {
		return true
	}

	x1 := int32(clampf(minSx, 0, r.proj.widthF-1))
	x2 := int32(clampf(maxSx, 0, r.proj.widthF-1))
	return !r.clip.FullyOccluded(x1, x2)
}

// drawSubsector rasterizes one convex leaf: every front-facing seg in the
// subsector's stored order.
func (r *Renderer) drawSubsector(ss uint16) {
	r.visits = append(r.visits, ss)
	r.stats.Subsectors++

	first, end := r.lvl.SegRange(ss)
	for segIdx := first; segIdx < end; segIdx++ {
		if r.backFacing(segIdx) {
			continue
		}
		e, ok := r.projectSeg(segIdx)
		if !ok {
			continue
		}
		r.drawSeg(e)
		r.stats.SegsDrawn++
	}
}

const math32Inf float32 = 3.4e38
