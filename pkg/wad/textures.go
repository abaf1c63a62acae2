package wad

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/wadlight/wadlight/pkg/texture"
)

const (
	flatSide = 64
	flatSize = flatSide * flatSide
)

var (
	ErrBadPalette = errors.New("malformed PLAYPAL lump")
	ErrBadPatch   = errors.New("malformed patch lump")
	ErrBadTexture = errors.New("malformed TEXTUREx lump")
)

// Palette is the first 256-color palette of the archive, expanded to
// opaque ARGB.
type Palette [256]uint32

// LoadPalette decodes palette 0 from PLAYPAL.
func LoadPalette(a *Archive) (Palette, error) {
	var pal Palette
	l, err := a.Lump("PLAYPAL")
	if err != nil {
		return pal, err
	}
	if len(l.Data) < 256*3 {
		return pal, errors.Wrapf(ErrBadPalette, "%d bytes", len(l.Data))
	}
	for i := 0; i < 256; i++ {
		r := uint32(l.Data[i*3])
		g := uint32(l.Data[i*3+1])
		b := uint32(l.Data[i*3+2])
		pal[i] = 0xFF000000 | r<<16 | g<<8 | b
	}
	return pal, nil
}

// LoadTextures populates bank with every flat and composite wall
// texture of the archive. Archives without texture lumps (level-only
// PWADs) load zero textures and are not an error; sidedef names then
// resolve to the placeholder.
func LoadTextures(a *Archive, bank *texture.Bank) error {
	pal, err := LoadPalette(a)
	if err != nil {
		if errors.Is(err, ErrLumpMissing) {
			return nil
		}
		return err
	}
	if err := loadFlats(a, bank, pal); err != nil {
		return err
	}
	return loadWallTextures(a, bank, pal)
}

// loadFlats registers every 64x64 flat between the F_START and F_END
// markers (FF_START/FF_END accepted for PWADs).
func loadFlats(a *Archive, bank *texture.Bank, pal Palette) error {
	inFlats := false
	for _, l := range a.Lumps {
		switch l.Name {
		case "F_START", "FF_START":
			inFlats = true
			continue
		case "F_END", "FF_END":
			inFlats = false
			continue
		}
		if !inFlats || len(l.Data) != flatSize {
			continue
		}
		t := &texture.Texture{
			W:      flatSide,
			H:      flatSide,
			Pixels: make([]uint32, flatSize),
		}
		for i, c := range l.Data {
			t.Pixels[i] = pal[c]
		}
		if _, err := bank.Insert(l.Name, t); err != nil {
			return errors.Wrapf(err, "flat %q", l.Name)
		}
	}
	return nil
}

// patch is a decoded picture-format lump, still column ordered.
type patch struct {
	w, h   int
	pixels []uint32 // 0 where no post covers the pixel
}

func decodePatch(data []byte, pal Palette) (*patch, error) {
	if len(data) < 8 {
		return nil, errors.Wrap(ErrBadPatch, "header")
	}
	w := int(u16(data, 0))
	h := int(u16(data, 2))
	if w <= 0 || h <= 0 || len(data) < 8+w*4 {
		return nil, errors.Wrapf(ErrBadPatch, "%dx%d with %d bytes", w, h, len(data))
	}

	p := &patch{w: w, h: h, pixels: make([]uint32, w*h)}
	for x := 0; x < w; x++ {
		off := int(binary.LittleEndian.Uint32(data[8+x*4:]))
		for {
			if off >= len(data) {
				return nil, errors.Wrapf(ErrBadPatch, "column %d runs past lump", x)
			}
			topdelta := int(data[off])
			if topdelta == 0xFF {
				break
			}
			if off+1 >= len(data) {
				return nil, errors.Wrapf(ErrBadPatch, "column %d post header", x)
			}
			count := int(data[off+1])
			// One pad byte before and after the pixel run.
			if off+4+count > len(data) {
				return nil, errors.Wrapf(ErrBadPatch, "column %d post of %d pixels", x, count)
			}
			for i := 0; i < count; i++ {
				y := topdelta + i
				if y < h {
					p.pixels[y*w+x] = pal[data[off+3+i]]
				}
			}
			off += 4 + count
		}
	}
	return p, nil
}

// loadPatchNames resolves PNAMES into decoded patches. Entries whose
// lump is absent stay nil and composite map steps referencing them are
// skipped.
func loadPatchNames(a *Archive, pal Palette) ([]*patch, error) {
	l, err := a.Lump("PNAMES")
	if err != nil {
		return nil, err
	}
	if len(l.Data) < 4 {
		return nil, errors.Wrap(ErrBadTexture, "PNAMES header")
	}
	count := int(int32(binary.LittleEndian.Uint32(l.Data)))
	if count < 0 || len(l.Data) < 4+count*8 {
		return nil, errors.Wrapf(ErrBadTexture, "PNAMES claims %d entries", count)
	}

	patches := make([]*patch, count)
	for i := 0; i < count; i++ {
		name := lumpName(l.Data[4+i*8 : 4+i*8+8])
		pl, err := a.Lump(name)
		if err != nil {
			continue
		}
		p, err := decodePatch(pl.Data, pal)
		if err != nil {
			return nil, errors.Wrapf(err, "patch %q", name)
		}
		patches[i] = p
	}
	return patches, nil
}

func loadWallTextures(a *Archive, bank *texture.Bank, pal Palette) error {
	patches, err := loadPatchNames(a, pal)
	if err != nil {
		if errors.Is(err, ErrLumpMissing) {
			return nil
		}
		return err
	}

	for _, name := range []string{"TEXTURE1", "TEXTURE2"} {
		l, err := a.Lump(name)
		if err != nil {
			continue
		}
		if err := decodeTextureList(l.Data, patches, bank); err != nil {
			return errors.Wrap(err, name)
		}
	}
	return nil
}

func decodeTextureList(data []byte, patches []*patch, bank *texture.Bank) error {
	if len(data) < 4 {
		return errors.Wrap(ErrBadTexture, "header")
	}
	count := int(int32(binary.LittleEndian.Uint32(data)))
	if count < 0 || len(data) < 4+count*4 {
		return errors.Wrapf(ErrBadTexture, "claims %d textures", count)
	}

	for i := 0; i < count; i++ {
		off := int(binary.LittleEndian.Uint32(data[4+i*4:]))
		if off < 0 || off+22 > len(data) {
			return errors.Wrapf(ErrBadTexture, "texture %d offset %d", i, off)
		}
		d := data[off:]
		name := lumpName(d[0:8])
		w := int(u16(d, 12))
		h := int(u16(d, 14))
		mapCount := int(u16(d, 20))
		if w <= 0 || h <= 0 || off+22+mapCount*10 > len(data) {
			return errors.Wrapf(ErrBadTexture, "texture %q geometry", name)
		}

		t := &texture.Texture{W: w, H: h, Pixels: make([]uint32, w*h)}
		for j := range t.Pixels {
			t.Pixels[j] = 0xFF000000
		}
		for m := 0; m < mapCount; m++ {
			e := d[22+m*10:]
			origX := int(i16(e, 0))
			origY := int(i16(e, 2))
			pi := int(u16(e, 4))
			if pi >= len(patches) || patches[pi] == nil {
				continue
			}
			blitPatch(t, patches[pi], origX, origY)
		}

		if _, err := bank.Insert(name, t); err != nil {
			return errors.Wrapf(err, "texture %q", name)
		}
	}
	return nil
}

func blitPatch(t *texture.Texture, p *patch, origX, origY int) {
	for py := 0; py < p.h; py++ {
		ty := origY + py
		if ty < 0 || ty >= t.H {
			continue
		}
		for px := 0; px < p.w; px++ {
			tx := origX + px
			if tx < 0 || tx >= t.W {
				continue
			}
			if c := p.pixels[py*p.w+px]; c != 0 {
				t.Pixels[ty*t.W+tx] = c
			}
		}
	}
}
