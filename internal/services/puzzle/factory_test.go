package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models/puzzle"
)

func TestGenerate_DrawsShapeThenColor(t *testing.T) {
	shapes := puzzle.AllShapes()
	palette := puzzle.Palette()
	f := NewPieceFactory(&sequenceSource{values: []int{0, 0, 1, 2, 33, 11}})

	pieces := f.Generate(3)

	require.Len(t, pieces, 3)
	assert.True(t, pieces[0].Shape.Equal(shapes[0]))
	assert.Equal(t, palette[0], pieces[0].Color)
	assert.True(t, pieces[1].Shape.Equal(shapes[1]))
	assert.Equal(t, palette[2], pieces[1].Color)
	assert.True(t, pieces[2].Shape.Equal(shapes[33]))
	assert.Equal(t, palette[11], pieces[2].Color)
}

func TestGenerate_NonPositiveCount(t *testing.T) {
	f := NewSeededPieceFactory(7)
	assert.Empty(t, f.Generate(0))
	assert.Empty(t, f.Generate(-3))
}

func TestGenerate_PiecesComeFromCatalogAndPalette(t *testing.T) {
	f := NewSeededPieceFactory(42)
	shapes := puzzle.AllShapes()
	palette := puzzle.Palette()

	for _, p := range f.Generate(200) {
		assert.Contains(t, palette, p.Color)
		found := false
		for _, s := range shapes {
			if s.Equal(p.Shape) {
				found = true
				break
			}
		}
		assert.True(t, found, "shape not in catalog:\n%s", p.Shape)
	}
}

func TestGenerate_SameSeedSameSequence(t *testing.T) {
	a := NewSeededPieceFactory(99).Generate(10)
	b := NewSeededPieceFactory(99).Generate(10)
	require.Len(t, b, len(a))
	for i := range a {
		assert.True(t, a[i].Shape.Equal(b[i].Shape))
		assert.Equal(t, a[i].Color, b[i].Color)
	}
}
