// Package level holds the immutable spatial model of one map: vertices,
// linedefs, sidedefs, sectors, segs, subsectors and the BSP node tree over
// them. A Level is built once by Load and is read-only afterwards, so it
// can be shared by any number of frames without synchronization.
package level

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/wadlight/wadlight/pkg/lumps"
)

// Tagged BSP child references: the high bit marks a subsector leaf.
const (
	LeafBit   = uint16(0x8000)
	childMask = uint16(0x7FFF)
)

// MalformedLevelError reports an out-of-range cross reference found while
// loading level records. Load aborts on the first one.
type MalformedLevelError struct {
	Entity string // e.g. "linedef", "seg"
	Index  int    // index of the referencing entity
	Field  string // referencing field, e.g. "vertex"
	Ref    int    // the offending value
	Bound  int    // number of valid targets
}

func (e MalformedLevelError) Error() string {
	return fmt.Sprintf("malformed level: %s %d references %s %d (have %d)",
		e.Entity, e.Index, e.Field, e.Ref, e.Bound)
}

// Level is the loaded geometry. The record slices are exported for the
// renderer's hot loops; treat them as read-only.
type Level struct {
	Name       string
	Vertices   []mgl32.Vec2
	Linedefs   []lumps.Linedef
	Sidedefs   []lumps.Sidedef
	Sectors    []lumps.Sector
	Segs       []lumps.Seg
	Subsectors []lumps.Subsector
	Nodes      []lumps.Node
	Things     []lumps.Thing

	sectorOf []uint16 // subsector -> sector, resolved at load
}

// Load validates every cross index in rec and builds the runtime level.
// It checks reference bounds only; deeper topological properties (true
// convexity of subsectors, tree balance) are trusted from the node
// builder, as documented in the data-model contract.
func Load(rec *lumps.Records) (*Level, error) {
	if len(rec.Nodes) == 0 {
		return nil, errors.New("malformed level: no BSP nodes")
	}
	if len(rec.Subsectors) == 0 {
		return nil, errors.New("malformed level: no subsectors")
	}

	l := &Level{
		Name:       rec.Name,
		Linedefs:   rec.Linedefs,
		Sidedefs:   rec.Sidedefs,
		Sectors:    rec.Sectors,
		Segs:       rec.Segs,
		Subsectors: rec.Subsectors,
		Nodes:      rec.Nodes,
		Things:     rec.Things,
	}

	l.Vertices = make([]mgl32.Vec2, len(rec.Vertices))
	for i, v := range rec.Vertices {
		l.Vertices[i] = mgl32.Vec2{float32(v.X), float32(v.Y)}
	}

	if err := l.validate(); err != nil {
		return nil, err
	}

	l.resolveSectors()

	return l, nil
}

func (l *Level) validate() error {
	nVerts := len(l.Vertices)
	nSides := len(l.Sidedefs)
	nSects := len(l.Sectors)
	nLines := len(l.Linedefs)
	nSegs := len(l.Segs)
	nSsect := len(l.Subsectors)
	nNodes := len(l.Nodes)

	oob := func(entity string, index int, field string, ref, bound int) error {
		return MalformedLevelError{Entity: entity, Index: index, Field: field, Ref: ref, Bound: bound}
	}

	for i, ld := range l.Linedefs {
		if int(ld.V1) >= nVerts {
			return oob("linedef", i, "vertex", int(ld.V1), nVerts)
		}
		if int(ld.V2) >= nVerts {
			return oob("linedef", i, "vertex", int(ld.V2), nVerts)
		}
		if ld.RightSidedef != lumps.NoSidedef && int(ld.RightSidedef) >= nSides {
			return oob("linedef", i, "sidedef", int(ld.RightSidedef), nSides)
		}
		if ld.LeftSidedef != lumps.NoSidedef && int(ld.LeftSidedef) >= nSides {
			return oob("linedef", i, "sidedef", int(ld.LeftSidedef), nSides)
		}
	}

	for i, sd := range l.Sidedefs {
		if int(sd.Sector) >= nSects {
			return oob("sidedef", i, "sector", int(sd.Sector), nSects)
		}
	}

	for i, seg := range l.Segs {
		if int(seg.V1) >= nVerts {
			return oob("seg", i, "vertex", int(seg.V1), nVerts)
		}
		if int(seg.V2) >= nVerts {
			return oob("seg", i, "vertex", int(seg.V2), nVerts)
		}
		if int(seg.Linedef) >= nLines {
			return oob("seg", i, "linedef", int(seg.Linedef), nLines)
		}
	}

	for i, ss := range l.Subsectors {
		if ss.SegCount == 0 {
			return oob("subsector", i, "seg count", 0, nSegs)
		}
		if int(ss.FirstSeg)+int(ss.SegCount) > nSegs {
			return oob("subsector", i, "seg", int(ss.FirstSeg)+int(ss.SegCount)-1, nSegs)
		}
	}

	for i, n := range l.Nodes {
		for side := 0; side < 2; side++ {
			child := n.Child[side]
			if child&LeafBit != 0 {
				if int(child&childMask) >= nSsect {
					return oob("node", i, "subsector", int(child&childMask), nSsect)
				}
			} else if int(child) >= nNodes {
				return oob("node", i, "node", int(child), nNodes)
			}
		}
	}

	return nil
}

// resolveSectors builds the subsector -> sector table from each
// subsector's first seg, the same shortcut the original engine takes.
func (l *Level) resolveSectors() {
	l.sectorOf = make([]uint16, len(l.Subsectors))
	for i, ss := range l.Subsectors {
		seg := &l.Segs[ss.FirstSeg]
		if sd := l.FrontSidedef(seg); sd != nil {
			l.sectorOf[i] = sd.Sector
		}
	}
}

// BSPRoot returns the tagged index of the root node.
func (l *Level) BSPRoot() uint16 {
	return uint16(len(l.Nodes) - 1)
}

// IsLeaf reports whether a tagged child reference names a subsector.
func IsLeaf(child uint16) bool { return child&LeafBit != 0 }

// LeafIndex strips the leaf tag from a child reference.
func LeafIndex(child uint16) uint16 { return child & childMask }

// PointSide classifies p against a node's partition line: 0 = front,
// 1 = back. A point exactly on the line counts as front, so traversal
// order is deterministic even for degenerate camera positions.
func PointSide(n *lumps.Node, p mgl32.Vec2) int {
	d := (p[0]-float32(n.X))*float32(n.DY) - (p[1]-float32(n.Y))*float32(n.DX)
	if d >= 0 {
		return 0
	}
	return 1
}

// NodeBBox returns the min/max corners of a node child's bounding box.
func NodeBBox(n *lumps.Node, side int) (min, max mgl32.Vec2) {
	// stored as [top, bottom, left, right]
	bb := n.BBox[side]
	min = mgl32.Vec2{float32(bb[2]), float32(bb[1])}
	max = mgl32.Vec2{float32(bb[3]), float32(bb[0])}
	return min, max
}

// LocateSubsector walks the BSP down to the leaf containing p.
func (l *Level) LocateSubsector(p mgl32.Vec2) uint16 {
	idx := l.BSPRoot()
	for !IsLeaf(idx) {
		n := &l.Nodes[idx]
		idx = n.Child[PointSide(n, p)]
	}
	return LeafIndex(idx)
}

// SegRange returns the half-open seg index range of a subsector.
func (l *Level) SegRange(ss uint16) (first, end uint16) {
	s := &l.Subsectors[ss]
	return s.FirstSeg, s.FirstSeg + s.SegCount
}

// SegVerts returns the world endpoints of a seg.
func (l *Level) SegVerts(seg *lumps.Seg) (a, b mgl32.Vec2) {
	return l.Vertices[seg.V1], l.Vertices[seg.V2]
}

// SectorOfSubsector returns the sector a subsector belongs to.
func (l *Level) SectorOfSubsector(ss uint16) *lumps.Sector {
	return &l.Sectors[l.sectorOf[ss]]
}

// FrontSidedef resolves the sidedef on the seg's facing side, or nil for
// a degenerate seg with no sidedef there.
func (l *Level) FrontSidedef(seg *lumps.Seg) *lumps.Sidedef {
	ld := &l.Linedefs[seg.Linedef]
	idx := ld.RightSidedef
	if seg.Dir != 0 {
		idx = ld.LeftSidedef
	}
	if idx == lumps.NoSidedef {
		return nil
	}
	return &l.Sidedefs[idx]
}

// BackSector resolves the sector on the far side of a seg's linedef, or
// nil for a one-sided wall.
func (l *Level) BackSector(seg *lumps.Seg) *lumps.Sector {
	ld := &l.Linedefs[seg.Linedef]
	idx := ld.LeftSidedef
	if seg.Dir != 0 {
		idx = ld.RightSidedef
	}
	if idx == lumps.NoSidedef {
		return nil
	}
	return &l.Sectors[l.Sidedefs[idx].Sector]
}

// FloorHeightAt returns the floor height of the sector under p.
func (l *Level) FloorHeightAt(p mgl32.Vec2) float32 {
	return float32(l.SectorOfSubsector(l.LocateSubsector(p)).FloorH)
}
