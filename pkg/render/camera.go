package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the per-frame viewer pose: map-space position, eye height
// above the sector floor, and yaw. Only yaw is simulated; the pipeline
// never tilts the view.
type Camera struct {
	Pos       mgl32.Vec2
	EyeHeight float32
	Yaw       float32 // radians, 0 = east, counter-clockwise
}

// NewCamera places a camera at (x, y) with the classic 41-unit eye height.
func NewCamera(x, y float32) *Camera {
	return &Camera{Pos: mgl32.Vec2{x, y}, EyeHeight: 41}
}

// Forward is the unit vector the camera looks along on the map plane.
func (c *Camera) Forward() mgl32.Vec2 {
	s, co := sincos(c.Yaw)
	return mgl32.Vec2{co, s}
}

// Right is the unit vector to the camera's right on the map plane.
func (c *Camera) Right() mgl32.Vec2 {
	f := c.Forward()
	return mgl32.Vec2{f[1], -f[0]}
}

// ToView transforms a map point into view space: X is the lateral offset
// (positive right), Y the depth along the view direction.
func (c *Camera) ToView(p mgl32.Vec2) mgl32.Vec2 {
	dx := p[0] - c.Pos[0]
	dy := p[1] - c.Pos[1]
	s, co := sincos(c.Yaw)
	return mgl32.Vec2{dx*s - dy*co, dx*co + dy*s}
}

// Step moves the camera by forward/side units, preserving eye height.
func (c *Camera) Step(forward, side float32) {
	f := c.Forward()
	r := c.Right()
	c.Pos[0] += f[0]*forward + r[0]*side
	c.Pos[1] += f[1]*forward + r[1]*side
}

// Turn rotates the camera; positive turns left.
func (c *Camera) Turn(delta float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+delta), 2*math.Pi))
	if c.Yaw < 0 {
		c.Yaw += 2 * math.Pi
	}
}

func sincos(a float32) (sin, cos float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}
