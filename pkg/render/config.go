package render

import "math"

// Config carries the per-renderer tunables. The clip and epsilon values
// are deliberately explicit configuration rather than hidden constants so
// golden-output tests can pin them.
type Config struct {
	// Width and Height of the output frame buffer in pixels.
	Width, Height int

	// FOV is the horizontal field of view in radians.
	FOV float32

	// NearClip is the view-space depth of the near plane; wall segments
	// are clipped against it before projection.
	NearClip float32

	// DepthEpsilon is the smallest depth ever used as a divisor. Depths
	// below it are clamped instead of failing the column or span.
	DepthEpsilon float32

	// MaxVisplanes caps the number of live floor/ceiling planes per
	// frame. On overflow the pool degrades to the nearest compatible
	// plane instead of dropping pixels.
	MaxVisplanes int

	// LightFadeDist is the projected distance, in map units, per extra
	// shade step of distance attenuation on walls.
	LightFadeDist float32

	// SpanWorkers is the number of goroutines used to rasterize
	// finalized visplanes. Values below 2 keep the phase sequential.
	SpanWorkers int
}

// DefaultConfig returns the renderer defaults for a given frame size:
// 90 degree FOV, near plane at 1 map unit, visplane cap of 128.
func DefaultConfig(w, h int) Config {
	return Config{
		Width:         w,
		Height:        h,
		FOV:           float32(math.Pi / 2),
		NearClip:      1.0,
		DepthEpsilon:  1.0 / 16.0,
		MaxVisplanes:  128,
		LightFadeDist: 256,
		SpanWorkers:   1,
	}
}
