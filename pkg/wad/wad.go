// Package wad reads the classic WAD archive format and extracts the typed
// level records and texture assets the renderer consumes. Structural
// problems (bad magic, out-of-bounds directory, truncated lumps) are
// load-fatal and reported to the caller; nothing is rendered from a
// partially read archive.
package wad

import (
	"encoding/binary"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	headerSize   = 12
	dirEntrySize = 16
)

var (
	ErrBadMagic    = errors.New("not a WAD file (bad magic)")
	ErrDirectory   = errors.New("WAD directory out of bounds")
	ErrLumpMissing = errors.New("lump not found")
)

// Lump is one named entry of the archive. Data aliases the decoded file
// buffer and must be treated as read-only.
type Lump struct {
	Name string
	Data []byte
}

// Archive is a fully indexed WAD file.
type Archive struct {
	Kind  string // "IWAD" or "PWAD"
	Lumps []Lump

	index map[string]int // name -> first occurrence
}

// Open reads and indexes the WAD at path.
func Open(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open WAD %q", path)
	}
	return Decode(data)
}

// Decode parses an in-memory WAD image.
func Decode(data []byte) (*Archive, error) {
	if len(data) < headerSize {
		return nil, errors.Wrap(ErrBadMagic, "file shorter than header")
	}

	kind := string(data[0:4])
	if kind != "IWAD" && kind != "PWAD" {
		return nil, errors.Wrapf(ErrBadMagic, "magic %q", kind)
	}

	count := int(int32(binary.LittleEndian.Uint32(data[4:8])))
	dirOff := int(int32(binary.LittleEndian.Uint32(data[8:12])))
	if count < 0 || dirOff < 0 || dirOff+count*dirEntrySize > len(data) {
		return nil, errors.Wrapf(ErrDirectory, "%d entries at offset %d", count, dirOff)
	}

	a := &Archive{
		Kind:  kind,
		Lumps: make([]Lump, 0, count),
		index: make(map[string]int, count),
	}

	for i := 0; i < count; i++ {
		e := data[dirOff+i*dirEntrySize:]
		off := int(int32(binary.LittleEndian.Uint32(e[0:4])))
		size := int(int32(binary.LittleEndian.Uint32(e[4:8])))
		name := lumpName(e[8:16])

		if size < 0 || off < 0 || off+size > len(data) {
			return nil, errors.Wrapf(ErrDirectory, "lump %q (%d bytes at %d)", name, size, off)
		}

		a.Lumps = append(a.Lumps, Lump{Name: name, Data: data[off : off+size]})
		if _, ok := a.index[name]; !ok {
			a.index[name] = i
		}
	}

	return a, nil
}

// LumpIndex returns the position of the first lump with the given name.
func (a *Archive) LumpIndex(name string) (int, bool) {
	i, ok := a.index[name]
	return i, ok
}

// Lump returns the first lump with the given name.
func (a *Archive) Lump(name string) (Lump, error) {
	i, ok := a.index[name]
	if !ok {
		return Lump{}, errors.Wrapf(ErrLumpMissing, "%q", name)
	}
	return a.Lumps[i], nil
}

// LevelIndices returns the directory positions of every level marker
// lump (a marker is immediately followed by a THINGS lump).
func (a *Archive) LevelIndices() []int {
	var markers []int
	for i := 0; i+1 < len(a.Lumps); i++ {
		if a.Lumps[i+1].Name == "THINGS" {
			markers = append(markers, i)
		}
	}
	return markers
}

func lumpName(raw []byte) string {
	end := len(raw)
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}
	return strings.ToUpper(string(raw[:end]))
}
