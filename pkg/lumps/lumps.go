// Package lumps defines the typed level records handed over by the archive
// reader. The structs mirror the on-disk lump layout with texture names
// already interned; cross-index validation happens in package level.
package lumps

import "github.com/wadlight/wadlight/pkg/texture"

// NoSidedef marks a missing sidedef reference on a linedef.
const NoSidedef = uint16(0xFFFF)

// Linedef flags.
const (
	FlagImpassable    = 0x0001
	FlagBlockMonsters = 0x0002
	FlagTwoSided      = 0x0004
	FlagUpperUnpegged = 0x0010
	FlagLowerUnpegged = 0x0020
	FlagSecret        = 0x0040
)

type Vertex struct {
	X, Y int16
}

type Linedef struct {
	V1, V2       uint16
	Flags        uint16
	Special, Tag uint16
	RightSidedef uint16 // NoSidedef if absent
	LeftSidedef  uint16 // NoSidedef if absent
}

func (ld *Linedef) TwoSided() bool { return ld.Flags&FlagTwoSided != 0 }

type Sidedef struct {
	XOff, YOff           int16
	Upper, Lower, Middle texture.ID
	Sector               uint16
}

type Sector struct {
	FloorH, CeilH     int16
	FloorTex, CeilTex texture.ID
	Light             int16
	Special, Tag      int16
}

// Seg is an oriented sub-segment of a linedef, owned by one subsector.
type Seg struct {
	V1, V2  uint16
	Angle   int16
	Linedef uint16
	Dir     uint16 // 0 = same direction as the linedef, 1 = opposite
	Offset  int16  // distance along the linedef to the seg start
}

type Subsector struct {
	SegCount, FirstSeg uint16
}

// Node is one internal BSP split. Child references are tagged indices:
// the high bit marks a subsector leaf, otherwise another node.
type Node struct {
	X, Y, DX, DY int16
	// BBox is per child side: [top, bottom, left, right] map units.
	BBox  [2][4]int16
	Child [2]uint16
}

type Thing struct {
	X, Y  int16
	Angle uint16
	Type  uint16
	Flags uint16
}

// Records bundles all decoded lumps of one level.
type Records struct {
	Name       string
	Things     []Thing
	Linedefs   []Linedef
	Sidedefs   []Sidedef
	Vertices   []Vertex
	Segs       []Seg
	Subsectors []Subsector
	Nodes      []Node
	Sectors    []Sector
}
