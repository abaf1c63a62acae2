// Package texture is a format-agnostic repository of decoded textures.
// The renderer and level geometry refer to pixels through an ID only;
// decoding WAD patches and flats into the bank is the loader's job.
package texture

import (
	"github.com/pkg/errors"
)

// ID is a runtime handle for a texture in a Bank. Handles are stable for
// the lifetime of the bank.
type ID uint16

// Missing is the ID whose pixels are the checkerboard fallback.
// Always 0 because NewBank inserts it first.
const Missing ID = 0

// NumShades is the number of light attenuation steps; shade 0 is full
// brightness, NumShades-1 is near black.
const NumShades = 32

var errDuplicate = errors.New("duplicate texture name")

// Texture is CPU-side pixel storage: 0xAARRGGBB, row-major.
type Texture struct {
	W, H   int
	Pixels []uint32
}

// At returns the pixel at (x, y), wrapping both coordinates so callers can
// tile without bounds checks.
func (t *Texture) At(x, y int) uint32 {
	x %= t.W
	if x < 0 {
		x += t.W
	}
	y %= t.H
	if y < 0 {
		y += t.H
	}
	return t.Pixels[y*t.W+x]
}

// Bank stores exactly one texture per name. ID 0 is always the
// checkerboard placeholder, so lookups can never fail.
//
// Not safe for concurrent mutation; the renderer only reads.
type Bank struct {
	byName map[string]ID
	data   []*Texture
}

// NewBank creates a bank whose slot 0 holds an 8x8 grey checkerboard used
// as the substitute for any unknown texture.
func NewBank() *Bank {
	checker := &Texture{W: 8, H: 8, Pixels: make([]uint32, 8*8)}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x^y)&1 == 0 {
				checker.Pixels[y*8+x] = 0xFF909090
			} else {
				checker.Pixels[y*8+x] = 0xFF303030
			}
		}
	}

	return &Bank{
		byName: map[string]ID{"-": Missing},
		data:   []*Texture{checker},
	}
}

// Len returns the number of stored textures, placeholder included.
func (b *Bank) Len() int {
	return len(b.data)
}

// Insert registers tex under name and returns its new ID.
// A name can only be inserted once.
func (b *Bank) Insert(name string, tex *Texture) (ID, error) {
	if _, ok := b.byName[name]; ok {
		return Missing, errors.Wrapf(errDuplicate, "texture %q", name)
	}

	id := ID(len(b.data))
	b.data = append(b.data, tex)
	b.byName[name] = id

	return id, nil
}

// IDByName resolves a texture name to its handle.
func (b *Bank) IDByName(name string) (ID, bool) {
	id, ok := b.byName[name]
	return id, ok
}

// IDOrMissing resolves a name, substituting the placeholder for unknown
// names. The Doom convention "-" (no texture) also maps to the placeholder.
func (b *Bank) IDOrMissing(name string) ID {
	if id, ok := b.byName[name]; ok {
		return id
	}
	return Missing
}

// Lookup returns the texture for id. Unknown ids resolve to the
// placeholder; the result is never nil.
func (b *Bank) Lookup(id ID) *Texture {
	if int(id) >= len(b.data) {
		return b.data[Missing]
	}
	return b.data[id]
}

// ShadeForLight converts a sector light level (0..255) into a base shade
// step. 255 maps to shade 0 (full brightness).
func ShadeForLight(light int16) int {
	if light < 0 {
		light = 0
	} else if light > 255 {
		light = 255
	}
	return int(255-light) >> 3
}

// Shade darkens an 0xAARRGGBB pixel by the given shade step. Steps clamp
// to [0, NumShades-1]; alpha is preserved.
func Shade(shade int, c uint32) uint32 {
	if shade <= 0 {
		return c
	}
	if shade >= NumShades {
		shade = NumShades - 1
	}

	f := uint32(NumShades - shade)
	r := (c >> 16 & 0xFF) * f / NumShades
	g := (c >> 8 & 0xFF) * f / NumShades
	bl := (c & 0xFF) * f / NumShades

	return c&0xFF000000 | r<<16 | g<<8 | bl
}
