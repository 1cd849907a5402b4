package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models/puzzle"
)

func TestFindHint_EmptyBoardReturnsOrigin(t *testing.T) {
	b := puzzle.NewBoard()
	tray := []*puzzle.Piece{{Shape: domino(t), Color: red}, nil, nil}

	hint, ok := FindHint(&b, tray)

	require.True(t, ok)
	assert.Equal(t, Hint{Slot: 0, X: 0, Y: 0}, hint)
}

func TestFindHint_RowMajorScan(t *testing.T) {
	b := puzzle.NewBoard()
	b[0][0] = red
	b[0][1] = red
	tray := []*puzzle.Piece{{Shape: domino(t), Color: red}}

	hint, ok := FindHint(&b, tray)

	require.True(t, ok)
	assert.Equal(t, Hint{Slot: 0, X: 2, Y: 0}, hint)
}

func TestFindHint_SkipsEmptyAndUnplaceableSlots(t *testing.T) {
	b := puzzle.NewBoard()
	fillBoardExcept(&b, [2]int{3, 7})
	tray := []*puzzle.Piece{
		nil,
		{Shape: domino(t), Color: red},
		{Shape: dot(t), Color: red},
	}

	hint, ok := FindHint(&b, tray)

	require.True(t, ok)
	assert.Equal(t, Hint{Slot: 2, X: 3, Y: 7}, hint)
	assert.True(t, b.CanPlace(hint.X, hint.Y, tray[hint.Slot].Shape))
}

func TestFindHint_NoneWhenNothingFits(t *testing.T) {
	b := puzzle.NewBoard()
	fillBoardExcept(&b, [2]int{3, 7})
	tray := []*puzzle.Piece{{Shape: domino(t), Color: red}, nil, nil}

	_, ok := FindHint(&b, tray)
	assert.False(t, ok)

	_, ok = FindHint(&b, []*puzzle.Piece{nil, nil, nil})
	assert.False(t, ok)
}
