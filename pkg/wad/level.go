package wad

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/wadlight/wadlight/pkg/lumps"
	"github.com/wadlight/wadlight/pkg/texture"
)

const (
	thingSize     = 10
	linedefSize   = 14
	sidedefSize   = 30
	vertexSize    = 4
	segSize       = 12
	subsectorSize = 4
	nodeSize      = 28
	sectorSize    = 26
)

var ErrTruncatedLump = errors.New("truncated level lump")

// maxLevelLumps bounds the directory scan after a level marker. Vanilla
// levels carry at most THINGS through BLOCKMAP (10 lumps).
const maxLevelLumps = 10

// ReadLevel decodes the eight geometry lumps following the level marker
// at directory position marker. Wall texture names found in sidedefs are
// interned through bank; names with no loaded texture map to the
// placeholder.
func ReadLevel(a *Archive, marker int, bank *texture.Bank) (*lumps.Records, error) {
	if marker < 0 || marker >= len(a.Lumps) {
		return nil, errors.Errorf("level marker %d out of range", marker)
	}

	get := func(name string) ([]byte, error) {
		end := marker + 1 + maxLevelLumps
		if end > len(a.Lumps) {
			end = len(a.Lumps)
		}
		for i := marker + 1; i < end; i++ {
			if a.Lumps[i].Name == name {
				return a.Lumps[i].Data, nil
			}
		}
		return nil, errors.Wrapf(ErrLumpMissing, "%q after level marker %q", name, a.Lumps[marker].Name)
	}

	rec := &lumps.Records{Name: a.Lumps[marker].Name}

	for _, l := range []struct {
		name   string
		size   int
		decode func(e []byte)
	}{
		{"VERTEXES", vertexSize, func(e []byte) {
			rec.Vertices = append(rec.Vertices, lumps.Vertex{
				X: i16(e, 0), Y: i16(e, 2),
			})
		}},
		{"LINEDEFS", linedefSize, func(e []byte) {
			rec.Linedefs = append(rec.Linedefs, lumps.Linedef{
				V1: u16(e, 0), V2: u16(e, 2),
				Flags: u16(e, 4), Special: u16(e, 6), Tag: u16(e, 8),
				RightSidedef: u16(e, 10), LeftSidedef: u16(e, 12),
			})
		}},
		{"SIDEDEFS", sidedefSize, func(e []byte) {
			rec.Sidedefs = append(rec.Sidedefs, lumps.Sidedef{
				XOff:   i16(e, 0),
				YOff:   i16(e, 2),
				Upper:  bank.IDOrMissing(texName(e[4:12])),
				Lower:  bank.IDOrMissing(texName(e[12:20])),
				Middle: bank.IDOrMissing(texName(e[20:28])),
				Sector: u16(e, 28),
			})
		}},
		{"SECTORS", sectorSize, func(e []byte) {
			rec.Sectors = append(rec.Sectors, lumps.Sector{
				FloorH:   i16(e, 0),
				CeilH:    i16(e, 2),
				FloorTex: bank.IDOrMissing(texName(e[4:12])),
				CeilTex:  bank.IDOrMissing(texName(e[12:20])),
				Light:    i16(e, 20),
				Special:  i16(e, 22),
				Tag:      i16(e, 24),
			})
		}},
		{"SEGS", segSize, func(e []byte) {
			rec.Segs = append(rec.Segs, lumps.Seg{
				V1: u16(e, 0), V2: u16(e, 2),
				Angle:   i16(e, 4),
				Linedef: u16(e, 6),
				Dir:     u16(e, 8),
				Offset:  i16(e, 10),
			})
		}},
		{"SSECTORS", subsectorSize, func(e []byte) {
			rec.Subsectors = append(rec.Subsectors, lumps.Subsector{
				SegCount: u16(e, 0), FirstSeg: u16(e, 2),
			})
		}},
		{"NODES", nodeSize, func(e []byte) {
			n := lumps.Node{
				X: i16(e, 0), Y: i16(e, 2),
				DX: i16(e, 4), DY: i16(e, 6),
			}
			for c := 0; c < 2; c++ {
				for k := 0; k < 4; k++ {
					n.BBox[c][k] = i16(e, 8+c*8+k*2)
				}
			}
			n.Child[0] = u16(e, 24)
			n.Child[1] = u16(e, 26)
			rec.Nodes = append(rec.Nodes, n)
		}},
		{"THINGS", thingSize, func(e []byte) {
			rec.Things = append(rec.Things, lumps.Thing{
				X: i16(e, 0), Y: i16(e, 2),
				Angle: u16(e, 4), Type: u16(e, 6), Flags: u16(e, 8),
			})
		}},
	} {
		data, err := get(l.name)
		if err != nil {
			return nil, err
		}
		if len(data)%l.size != 0 {
			return nil, errors.Wrapf(ErrTruncatedLump, "%s is %d bytes, record size %d", l.name, len(data), l.size)
		}
		for off := 0; off < len(data); off += l.size {
			l.decode(data[off : off+l.size])
		}
	}

	return rec, nil
}

func u16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off:]) }
func i16(b []byte, off int) int16  { return int16(binary.LittleEndian.Uint16(b[off:])) }

func texName(raw []byte) string { return lumpName(raw) }
