package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models/puzzle"
)

func intPtr(v int) *int { return &v }

func TestApplyPlayerInput_SelectThenPlace(t *testing.T) {
	s := newTestSession(t, nil)
	s.Tray[0] = &puzzle.Piece{Shape: dot(t), Color: red}

	res := ApplyPlayerInput(s, PlayerInputEvent{Action: ActionSelect, Slot: intPtr(0)})
	assert.True(t, res.Changed)
	assert.Empty(t, res.Error)

	res = ApplyPlayerInput(s, PlayerInputEvent{Action: ActionPlace, X: 2, Y: 3})
	assert.True(t, res.Changed)
	require.NotNil(t, res.Placement)
	assert.True(t, res.Placement.Placed)
	assert.Equal(t, red, s.Board[3][2])
	assert.Equal(t, 10, s.Score)
}

func TestApplyPlayerInput_PlaceWithSlot(t *testing.T) {
	s := newTestSession(t, nil)
	s.Tray[1] = &puzzle.Piece{Shape: domino(t), Color: red}

	res := ApplyPlayerInput(s, PlayerInputEvent{Action: ActionPlace, Slot: intPtr(1), X: 8, Y: 9})

	assert.True(t, res.Changed)
	require.NotNil(t, res.Placement)
	assert.True(t, res.Placement.Placed)
	assert.Equal(t, red, s.Board[9][8])
	assert.Equal(t, red, s.Board[9][9])
	assert.Nil(t, s.Tray[1])
}

func TestApplyPlayerInput_PlaceWithEmptySlotIsNoop(t *testing.T) {
	s := newTestSession(t, nil)
	s.Tray[1] = nil

	res := ApplyPlayerInput(s, PlayerInputEvent{Action: ActionPlace, Slot: intPtr(1), X: 0, Y: 0})

	assert.False(t, res.Changed)
	require.NotNil(t, res.Placement)
	assert.False(t, res.Placement.Placed)
	assert.True(t, s.Board.IsEmpty())
}

func TestApplyPlayerInput_SelectRequiresSlot(t *testing.T) {
	s := newTestSession(t, nil)

	res := ApplyPlayerInput(s, PlayerInputEvent{Action: ActionSelect})

	assert.False(t, res.Changed)
	assert.NotEmpty(t, res.Error)
}

func TestApplyPlayerInput_Rotate(t *testing.T) {
	s := newTestSession(t, nil)
	s.Tray[0] = &puzzle.Piece{Shape: domino(t), Color: red}

	res := ApplyPlayerInput(s, PlayerInputEvent{Action: ActionRotate})
	assert.False(t, res.Changed, "rotate without a selection does nothing")

	ApplyPlayerInput(s, PlayerInputEvent{Action: ActionSelect, Slot: intPtr(0)})
	res = ApplyPlayerInput(s, PlayerInputEvent{Action: ActionRotate})
	assert.True(t, res.Changed)
	assert.Equal(t, 2, s.Tray[0].Shape.Rows())
	assert.Equal(t, 1, s.Tray[0].Shape.Cols())
}

func TestApplyPlayerInput_Hint(t *testing.T) {
	s := newTestSession(t, nil)

	res := ApplyPlayerInput(s, PlayerInputEvent{Action: ActionHint})

	assert.False(t, res.Changed)
	require.NotNil(t, res.Hint)
	assert.Equal(t, Hint{Slot: 0, X: 0, Y: 0}, *res.Hint)
}

func TestApplyPlayerInput_NewGameAfterGameOver(t *testing.T) {
	s := newTestSession(t, nil)
	s.Status = StatusGameOver
	s.Score = 250
	s.Board[0][0] = red

	res := ApplyPlayerInput(s, PlayerInputEvent{Action: ActionNewGame})

	assert.True(t, res.Changed)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, 0, s.Score)
	assert.True(t, s.Board.IsEmpty())
}

func TestApplyPlayerInput_UnknownAction(t *testing.T) {
	s := newTestSession(t, nil)
	before := s.Snapshot()

	res := ApplyPlayerInput(s, PlayerInputEvent{Action: "hard_drop"})

	assert.False(t, res.Changed)
	assert.Contains(t, res.Error, "hard_drop")
	assert.Equal(t, before.Board, s.Board)
	assert.Equal(t, before.Score, s.Score)
}
