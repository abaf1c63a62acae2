package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Projection holds the fixed screen-space constants derived from the
// configured frame size and field of view.
type Projection struct {
	width, height int
	widthF        float32
	halfW, halfH  float32
	focal         float32 // pixels per map unit at depth 1
	nearClip      float32
	depthEps      float32
}

func newProjection(cfg Config) Projection {
	return Projection{
		width:    cfg.Width,
		height:   cfg.Height,
		widthF:   float32(cfg.Width),
		halfW:    float32(cfg.Width) * 0.5,
		halfH:    float32(cfg.Height) * 0.5,
		focal:    float32(cfg.Width) * 0.5 / float32(math.Tan(float64(cfg.FOV)*0.5)),
		nearClip: cfg.NearClip,
		depthEps: cfg.DepthEpsilon,
	}
}

// Focal returns the projection's focal length in pixels.
func (p *Projection) Focal() float32 { return p.focal }

// clampDepth keeps divisors away from zero; the degenerate-projection
// policy is clamp-and-continue, never abort.
func (p *Projection) clampDepth(depth float32) float32 {
	if depth < p.depthEps {
		return p.depthEps
	}
	return depth
}

// ProjectColumn maps a view-space angle offset from the view axis
// (positive right) to a fractional screen column.
func (p *Projection) ProjectColumn(angle float32) float32 {
	return p.halfW + float32(math.Tan(float64(angle)))*p.focal
}

// ColumnAngle is the inverse of ProjectColumn: the view angle of a screen
// column's center ray.
func (p *Projection) ColumnAngle(col int) float32 {
	return float32(math.Atan(float64((float32(col) + 0.5 - p.halfW) / p.focal)))
}

// ProjectDistance converts a view-space depth to the vertical screen
// scale (pixels per map unit of height) at that depth.
func (p *Projection) ProjectDistance(depth float32) float32 {
	return p.focal / p.clampDepth(depth)
}

// ScreenX projects a view-space point (lateral, depth) to a fractional
// screen column.
func (p *Projection) ScreenX(v mgl32.Vec2) float32 {
	return p.halfW + v[0]*p.focal/p.clampDepth(v[1])
}

// UnprojectFloorPoint inverts the span projection: for a screen pixel and
// a horizontal plane at world height planeZ (viewed from eye height
// viewZ), it returns the world map point the pixel samples. ok is false
// on the horizon row, where the plane projects to infinity.
func (p *Projection) UnprojectFloorPoint(cam *Camera, viewZ, planeZ float32, col, row int) (pt mgl32.Vec2, ok bool) {
	dy := float32(row) + 0.5 - p.halfH
	if dy > -1e-6 && dy < 1e-6 {
		return mgl32.Vec2{}, false
	}

	ratio := (viewZ - planeZ) / dy // signed: floors below eye project below center
	z := p.focal * float32(math.Abs(float64(ratio)))
	lateral := (float32(col) + 0.5 - p.halfW) * ratio

	pt = cam.Pos.
		Add(cam.Forward().Mul(z)).
		Add(cam.Right().Mul(lateral))

	return pt, true
}
