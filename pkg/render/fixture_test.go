package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wadlight/wadlight/pkg/level"
	"github.com/wadlight/wadlight/pkg/lumps"
	"github.com/wadlight/wadlight/pkg/texture"
)

// Test wall and flat colors, all distinct so frame assertions can tell
// the surfaces apart.
const (
	wallColor  = 0xFF8090A0
	ceilColor  = 0xFF102040
	floorColor = 0xFF204010
	doorColor  = 0xFFAA5500
	stepColor  = 0xFF777700
)

type roomTextures struct {
	bank *texture.Bank

	wall, grad, ceil, floor, door, step texture.ID
}

// newRoomTextures registers the fixture textures: uniform colors for the
// band tests plus one horizontal gradient whose low byte encodes the
// texture column, for texture-mapping tests.
func newRoomTextures(t *testing.T) *roomTextures {
	t.Helper()

	b := texture.NewBank()
	rt := &roomTextures{bank: b}

	uniform := func(name string, c uint32) texture.ID {
		tex := &texture.Texture{W: 64, H: 64, Pixels: make([]uint32, 64*64)}
		for i := range tex.Pixels {
			tex.Pixels[i] = c
		}
		id, err := b.Insert(name, tex)
		require.NoError(t, err)
		return id
	}

	rt.wall = uniform("WALL", wallColor)
	rt.ceil = uniform("CEIL", ceilColor)
	rt.floor = uniform("FLOOR", floorColor)
	rt.door = uniform("DOOR", doorColor)
	rt.step = uniform("STEP", stepColor)

	grad := &texture.Texture{W: 256, H: 128, Pixels: make([]uint32, 256*128)}
	for y := 0; y < 128; y++ {
		for x := 0; x < 256; x++ {
			grad.Pixels[y*256+x] = 0xFF000000 | uint32(x)
		}
	}
	id, err := b.Insert("GRAD", grad)
	require.NoError(t, err)
	rt.grad = id

	return rt
}

// roomSpec describes the square two-subsector test room: a size x size
// box split down the middle by a north-south partition. The east half is
// subsector 0 (the BSP front child), the west half subsector 1. Without
// a partition linedef the split is an open sector boundary.
type roomSpec struct {
	size       int16
	east, west lumps.Sector
	wallTex    texture.ID

	// partition adds a two-sided linedef on the split with these
	// sidedef textures on both sides.
	partition                  bool
	upperTex, lowerTex, midTex texture.ID
}

// buildRoom assembles and loads the level for a roomSpec.
func buildRoom(t *testing.T, spec roomSpec) *level.Level {
	t.Helper()

	s := spec.size
	mkSide := func(sector uint16) lumps.Sidedef {
		return lumps.Sidedef{Middle: spec.wallTex, Sector: sector}
	}
	oneSided := func(v1, v2, side uint16) lumps.Linedef {
		return lumps.Linedef{
			V1: v1, V2: v2,
			Flags:        lumps.FlagImpassable,
			RightSidedef: side,
			LeftSidedef:  lumps.NoSidedef,
		}
	}

	rec := &lumps.Records{
		Name: "TESTROOM",
		Vertices: []lumps.Vertex{
			{X: 0, Y: 0}, {X: s, Y: 0}, {X: s, Y: s}, {X: 0, Y: s},
			{X: s / 2, Y: 0}, {X: s / 2, Y: s},
		},
		Linedefs: []lumps.Linedef{
			oneSided(2, 1, 0), // east
			oneSided(1, 4, 1), // south, east half
			oneSided(5, 2, 2), // north, east half
			oneSided(0, 3, 3), // west
			oneSided(4, 0, 4), // south, west half
			oneSided(3, 5, 5), // north, west half
		},
		Sidedefs: []lumps.Sidedef{
			mkSide(0), mkSide(0), mkSide(0),
			mkSide(1), mkSide(1), mkSide(1),
		},
		Sectors: []lumps.Sector{spec.east, spec.west},
		Segs: []lumps.Seg{
			{V1: 2, V2: 1, Linedef: 0},
			{V1: 1, V2: 4, Linedef: 1},
			{V1: 5, V2: 2, Linedef: 2},
			{V1: 0, V2: 3, Linedef: 3},
			{V1: 4, V2: 0, Linedef: 4},
			{V1: 3, V2: 5, Linedef: 5},
		},
		Subsectors: []lumps.Subsector{
			{SegCount: 3, FirstSeg: 0},
			{SegCount: 3, FirstSeg: 3},
		},
		Nodes: []lumps.Node{
			{
				X: s / 2, Y: 0, DX: 0, DY: s,
				BBox: [2][4]int16{
					{s, 0, s / 2, s},
					{s, 0, 0, s / 2},
				},
				Child: [2]uint16{level.LeafBit, level.LeafBit | 1},
			},
		},
		Things: []lumps.Thing{
			{X: 3 * s / 4, Y: s / 2, Type: 1},
		},
	}

	if spec.partition {
		rec.Linedefs = append(rec.Linedefs, lumps.Linedef{
			V1: 4, V2: 5,
			Flags:        lumps.FlagTwoSided,
			RightSidedef: 6,
			LeftSidedef:  7,
		})
		rec.Sidedefs = append(rec.Sidedefs,
			lumps.Sidedef{Upper: spec.upperTex, Lower: spec.lowerTex, Middle: spec.midTex, Sector: 0},
			lumps.Sidedef{Upper: spec.upperTex, Lower: spec.lowerTex, Middle: spec.midTex, Sector: 1},
		)
		rec.Segs = append(rec.Segs,
			lumps.Seg{V1: 4, V2: 5, Linedef: 6},
			lumps.Seg{V1: 5, V2: 4, Linedef: 6, Dir: 1},
		)
		rec.Subsectors[0].SegCount = 4
		rec.Subsectors[1].SegCount = 4

		// keep each subsector's segs contiguous
		rec.Segs = []lumps.Seg{
			rec.Segs[0], rec.Segs[1], rec.Segs[2], rec.Segs[6],
			rec.Segs[3], rec.Segs[4], rec.Segs[5], rec.Segs[7],
		}
		rec.Subsectors[1].FirstSeg = 4
	}

	lvl, err := level.Load(rec)
	require.NoError(t, err)
	return lvl
}

// plainSector is a convenience for fully bright sectors.
func plainSector(floorH, ceilH int16, floorTex, ceilTex texture.ID) lumps.Sector {
	return lumps.Sector{
		FloorH:   floorH,
		CeilH:    ceilH,
		FloorTex: floorTex,
		CeilTex:  ceilTex,
		Light:    255,
	}
}
