package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProjection() Projection {
	return newProjection(DefaultConfig(320, 200))
}

func TestProjection_Focal(t *testing.T) {
	t.Parallel()

	p := testProjection()

	// 90 degree FOV at width 320: focal length equals half the width.
	assert.InDelta(t, 160, p.Focal(), 1e-3)
}

func TestProjection_ColumnRoundTrip(t *testing.T) {
	t.Parallel()

	p := testProjection()

	assert.InDelta(t, 160, p.ProjectColumn(0), 1e-4)

	for _, col := range []int{0, 17, 159, 160, 319} {
		angle := p.ColumnAngle(col)
		back := p.ProjectColumn(angle)
		assert.InDelta(t, float32(col)+0.5, back, 1e-2, "column %d", col)
	}
}

func TestProjection_ProjectDistance(t *testing.T) {
	t.Parallel()

	p := testProjection()

	assert.InDelta(t, 160, p.ProjectDistance(1), 1e-4)
	assert.InDelta(t, 1.6, p.ProjectDistance(100), 1e-4)

	// Depths at and below zero clamp to the epsilon instead of blowing up.
	assert.InDelta(t, 160/p.depthEps, p.ProjectDistance(0), 1e-2)
	assert.InDelta(t, p.ProjectDistance(0), p.ProjectDistance(-5), 1e-2)
}

func TestProjection_ScreenX(t *testing.T) {
	t.Parallel()

	p := testProjection()

	assert.InDelta(t, 160, p.ScreenX(mgl32.Vec2{0, 50}), 1e-4)
	assert.InDelta(t, 320, p.ScreenX(mgl32.Vec2{50, 50}), 1e-3)
	assert.InDelta(t, 0, p.ScreenX(mgl32.Vec2{-50, 50}), 1e-3)
	assert.InDelta(t, 240, p.ScreenX(mgl32.Vec2{25, 50}), 1e-3)
}

func TestProjection_UnprojectFloorPoint(t *testing.T) {
	t.Parallel()

	p := testProjection()
	cam := NewCamera(100, 200)
	cam.Yaw = 0.6
	const viewZ, planeZ = 41, 0

	// With an odd frame height the center row is exactly the horizon and
	// has no finite plane intersection.
	odd := newProjection(DefaultConfig(320, 201))
	_, ok := odd.UnprojectFloorPoint(cam, viewZ, planeZ, 160, 100)
	assert.False(t, ok)

	// Everywhere else the unprojected point must project back onto the
	// same pixel, horizontally and vertically.
	for _, px := range []struct{ col, row int }{
		{160, 150}, {10, 199}, {300, 120}, {42, 101},
	} {
		pt, ok := p.UnprojectFloorPoint(cam, viewZ, planeZ, px.col, px.row)
		require.True(t, ok, "pixel %v", px)

		v := cam.ToView(pt)
		require.Greater(t, v[1], float32(0), "pixel %v", px)

		assert.InDelta(t, float32(px.col)+0.5, p.ScreenX(v), 0.05, "column of %v", px)

		// Vertical: row - halfH == (viewZ - planeZ) * focal / depth.
		sy := p.halfH + (viewZ-planeZ)*p.focal/v[1]
		assert.InDelta(t, float32(px.row)+0.5, sy, 0.05, "row of %v", px)
	}
}

func TestProjection_UnprojectCeilingPoint(t *testing.T) {
	t.Parallel()

	p := testProjection()
	cam := NewCamera(-30, 70)
	cam.Yaw = 4.0
	const viewZ, planeZ = 41, 128

	pt, ok := p.UnprojectFloorPoint(cam, viewZ, planeZ, 80, 20)
	require.True(t, ok)

	v := cam.ToView(pt)
	require.Greater(t, v[1], float32(0))
	assert.InDelta(t, 80.5, p.ScreenX(v), 0.05)

	sy := p.halfH + (viewZ-planeZ)*p.focal/v[1]
	assert.InDelta(t, 20.5, sy, 0.05)
}
