package texture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBank_PlaceholderAlwaysPresent(t *testing.T) {
	t.Parallel()

	b := NewBank()

	assert.Equal(t, 1, b.Len())
	assert.Equal(t, Missing, b.IDOrMissing("-"))
	assert.Equal(t, Missing, b.IDOrMissing("NOSUCHTEX"))

	tex := b.Lookup(Missing)
	require.NotNil(t, tex)
	assert.Equal(t, 8, tex.W)
	assert.Equal(t, 8, tex.H)
}

func TestBank_InsertAndLookup(t *testing.T) {
	t.Parallel()

	b := NewBank()
	tex := &Texture{W: 2, H: 2, Pixels: []uint32{1, 2, 3, 4}}

	id, err := b.Insert("STARTAN3", tex)
	require.NoError(t, err)
	assert.NotEqual(t, Missing, id)
	assert.Same(t, tex, b.Lookup(id))

	got, ok := b.IDByName("STARTAN3")
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestBank_DuplicateInsert(t *testing.T) {
	t.Parallel()

	b := NewBank()
	_, err := b.Insert("FLOOR4_8", &Texture{W: 1, H: 1, Pixels: []uint32{0}})
	require.NoError(t, err)

	_, err = b.Insert("FLOOR4_8", &Texture{W: 1, H: 1, Pixels: []uint32{0}})
	assert.Error(t, err)
}

func TestBank_LookupOutOfRange(t *testing.T) {
	t.Parallel()

	b := NewBank()

	assert.Same(t, b.Lookup(Missing), b.Lookup(ID(999)))
}

func TestTexture_AtWraps(t *testing.T) {
	t.Parallel()

	tex := &Texture{W: 2, H: 2, Pixels: []uint32{10, 11, 12, 13}}

	assert.Equal(t, uint32(10), tex.At(0, 0))
	assert.Equal(t, uint32(10), tex.At(2, 2))
	assert.Equal(t, uint32(13), tex.At(-1, -1))
	assert.Equal(t, uint32(11), tex.At(3, -2))
}

func TestShadeForLight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		light int16
		want  int
	}{
		{255, 0},
		{248, 0},
		{247, 1},
		{128, 15},
		{0, 31},
		{-5, 31},
		{300, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShadeForLight(tt.light), "light %d", tt.light)
	}
}

func TestShade(t *testing.T) {
	t.Parallel()

	const c = 0xFF804020

	assert.Equal(t, uint32(c), Shade(0, c))
	assert.Equal(t, uint32(c), Shade(-3, c))

	// Darkening is monotonic in the shade step, channel by channel.
	prev := uint32(0xFFFFFFFF)
	for s := 0; s < NumShades; s++ {
		got := Shade(s, c)
		assert.Equal(t, uint32(0xFF000000), got&0xFF000000)
		assert.LessOrEqual(t, got&0xFF0000, prev&0xFF0000)
		prev = got
	}

	// The darkest step keeps a sliver of brightness.
	assert.NotEqual(t, uint32(0xFF000000), Shade(NumShades-1, 0xFFFFFFFF))
}
