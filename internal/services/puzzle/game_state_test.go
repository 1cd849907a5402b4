package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models/puzzle"
)

// sequenceSource は決められた値を順番に返す決定的な RandomSource です。
type sequenceSource struct {
	values []int
	next   int
}

func (s *sequenceSource) Intn(n int) int {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

// recordingHighScore は書き込みを記録する HighScoreStore です。
type recordingHighScore struct {
	score  int
	writes []int
}

func (r *recordingHighScore) ReadHighScore() int { return r.score }

func (r *recordingHighScore) WriteHighScore(score int) {
	r.score = score
	r.writes = append(r.writes, score)
}

const red puzzle.Color = "#FF6B6B"

func shapeOf(t *testing.T, rows ...[]bool) puzzle.Shape {
	t.Helper()
	s, err := puzzle.NewShape(rows)
	require.NoError(t, err)
	return s
}

func dot(t *testing.T) puzzle.Shape {
	return shapeOf(t, []bool{true})
}

func domino(t *testing.T) puzzle.Shape {
	return shapeOf(t, []bool{true, true})
}

func newTestSession(t *testing.T, store HighScoreStore) *GameSession {
	t.Helper()
	return NewGameSession("session-1", "test-user", NewSeededPieceFactory(1), store, nil)
}

func fillBoardExcept(b *puzzle.Board, holes ...[2]int) {
	for y := 0; y < puzzle.BoardSize; y++ {
		for x := 0; x < puzzle.BoardSize; x++ {
			b[y][x] = red
		}
	}
	for _, h := range holes {
		b[h[1]][h[0]] = puzzle.Empty
	}
}

func TestNewGameSession(t *testing.T) {
	store := &recordingHighScore{score: 500}
	s := newTestSession(t, store)

	assert.Equal(t, "session-1", s.ID)
	assert.Equal(t, "test-user", s.UserID)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 0, s.LinesCleared)
	assert.Equal(t, 500, s.HighScore)
	assert.True(t, s.Board.IsEmpty())
	for i, p := range s.Tray {
		assert.NotNil(t, p, "slot %d", i)
	}
	_, selected := s.SelectedSlot()
	assert.False(t, selected)
}

func TestAttemptPlacement_SingleCellOnEmptyBoard(t *testing.T) {
	s := newTestSession(t, nil)
	s.Tray[0] = &puzzle.Piece{Shape: dot(t), Color: red}

	require.True(t, s.Board.CanPlace(0, 0, dot(t)))
	require.True(t, s.SelectPiece(0))
	res := s.AttemptPlacement(0, 0)

	assert.True(t, res.Placed)
	assert.False(t, res.GameOver)
	assert.Equal(t, red, s.Board[0][0])
	assert.Equal(t, 10, s.Score)
	assert.Nil(t, s.Tray[0])
	_, selected := s.SelectedSlot()
	assert.False(t, selected, "selection is cleared after placing")
}

func TestAttemptPlacement_ClearsCompletedRow(t *testing.T) {
	s := newTestSession(t, nil)
	for x := 0; x < 9; x++ {
		s.Board[0][x] = red
	}
	s.Score = 40
	s.Tray[0] = &puzzle.Piece{Shape: dot(t), Color: red}

	require.True(t, s.SelectPiece(0))
	res := s.AttemptPlacement(9, 0)

	require.True(t, res.Placed)
	assert.Equal(t, []int{0}, res.ClearedRows)
	assert.Empty(t, res.ClearedCols)
	assert.Equal(t, 10, res.PlacementPoints)
	assert.Equal(t, 100, res.ClearPoints)
	assert.Equal(t, 40+110, s.Score)
	assert.Equal(t, 1, s.LinesCleared)
	for x := 0; x < puzzle.BoardSize; x++ {
		assert.Equal(t, puzzle.Empty, s.Board[0][x])
	}
}

func TestAttemptPlacement_ClearsRowAndColumnTogether(t *testing.T) {
	s := newTestSession(t, nil)
	// (9,9) を埋めると9行目と9列目が同時に揃う
	for i := 0; i < 9; i++ {
		s.Board[9][i] = red
		s.Board[i][9] = red
	}
	s.Tray[0] = &puzzle.Piece{Shape: dot(t), Color: red}

	require.True(t, s.SelectPiece(0))
	res := s.AttemptPlacement(9, 9)

	require.True(t, res.Placed)
	assert.Equal(t, []int{9}, res.ClearedRows)
	assert.Equal(t, []int{9}, res.ClearedCols)
	assert.Equal(t, 10+200, s.Score)
	assert.Equal(t, 2, s.LinesCleared)
	assert.True(t, s.Board.IsEmpty())
}

// newSequencedSession は Start で6個、補充で続く値を消費する決定的なセッションを返します。
func newSequencedSession(t *testing.T, store HighScoreStore, refill ...int) *GameSession {
	t.Helper()
	values := append([]int{0, 0, 0, 0, 0, 0}, refill...)
	return NewGameSession("session-1", "test-user", NewPieceFactory(&sequenceSource{values: values}), store, nil)
}

func TestAttemptPlacement_RefillsWhenTrayBecomesEmpty(t *testing.T) {
	s := newSequencedSession(t, nil, 3, 4, 11, 5, 33, 11)
	s.Tray = [TraySize]*puzzle.Piece{{Shape: dot(t), Color: red}, nil, nil}

	require.True(t, s.SelectPiece(0))
	res := s.AttemptPlacement(4, 4)

	require.True(t, res.Placed)
	assert.True(t, res.Refilled)

	shapes := puzzle.AllShapes()
	palette := puzzle.Palette()
	want := []puzzle.Piece{
		{Shape: shapes[3], Color: palette[4]},
		{Shape: shapes[11], Color: palette[5]},
		{Shape: shapes[33], Color: palette[11]},
	}
	for i, p := range s.Tray {
		require.NotNil(t, p, "slot %d should be refilled", i)
		assert.True(t, want[i].Shape.Equal(p.Shape), "slot %d shape:\n%s", i, p.Shape)
		assert.Equal(t, want[i].Color, p.Color, "slot %d color", i)
	}
}

func TestAttemptPlacement_GameOverAfterRefillWithMultiCellPieces(t *testing.T) {
	store := &recordingHighScore{}
	// 補充されるのは横2マス、縦2マス、2×2 の3個
	s := newSequencedSession(t, store, 1, 0, 2, 1, 11, 2)
	// 対角線と (2,0) だけが空いた盤面。(2,0) を埋めると各行各列に穴が1つずつ残る
	holes := [][2]int{{2, 0}}
	for i := 0; i < puzzle.BoardSize; i++ {
		holes = append(holes, [2]int{i, i})
	}
	fillBoardExcept(&s.Board, holes...)
	s.Tray = [TraySize]*puzzle.Piece{{Shape: dot(t), Color: red}, nil, nil}

	require.True(t, s.SelectPiece(0))
	res := s.AttemptPlacement(2, 0)

	require.True(t, res.Placed)
	assert.True(t, res.Refilled)
	assert.Empty(t, res.ClearedRows)
	assert.Empty(t, res.ClearedCols)
	assert.Equal(t, puzzle.BoardSize*puzzle.BoardSize-puzzle.BoardSize, s.Board.OccupiedCount())
	for i, p := range s.Tray {
		require.NotNil(t, p)
		assert.GreaterOrEqual(t, p.Shape.CellCount(), 2, "slot %d", i)
	}
	assert.True(t, res.GameOver)
	assert.Equal(t, StatusGameOver, s.Status)
	assert.Equal(t, []int{10}, store.writes)
}

func TestAttemptPlacement_NoRefillWhileOtherSlotsOccupied(t *testing.T) {
	s := newTestSession(t, nil)
	s.Tray[0] = &puzzle.Piece{Shape: dot(t), Color: red}
	other := s.Tray[1]

	require.True(t, s.SelectPiece(0))
	res := s.AttemptPlacement(0, 0)

	require.True(t, res.Placed)
	assert.False(t, res.Refilled)
	assert.Nil(t, s.Tray[0])
	assert.Same(t, other, s.Tray[1])
}

func TestAttemptPlacement_InvalidRequestsDoNotChangeState(t *testing.T) {
	s := newTestSession(t, nil)
	s.Board[0][0] = red
	s.Tray[0] = &puzzle.Piece{Shape: domino(t), Color: red}
	before := s.Snapshot()

	// 未選択
	assert.False(t, s.AttemptPlacement(3, 3).Placed)
	// 既存ブロックと重なる
	require.True(t, s.SelectPiece(0))
	assert.False(t, s.AttemptPlacement(0, 0).Placed)
	// 盤外
	assert.False(t, s.AttemptPlacement(9, 0).Placed)
	assert.False(t, s.AttemptPlacement(-1, 5).Placed)

	after := s.Snapshot()
	assert.Equal(t, before.Board, after.Board)
	assert.Equal(t, before.Score, after.Score)
	assert.Equal(t, before.Tray, after.Tray)
	slot, ok := s.SelectedSlot()
	assert.True(t, ok, "a failed placement keeps the selection so the caller can retry")
	assert.Equal(t, 0, slot)
}

func TestSelectPiece_Invalid(t *testing.T) {
	s := newTestSession(t, nil)
	s.Tray[1] = nil

	assert.False(t, s.SelectPiece(-1))
	assert.False(t, s.SelectPiece(TraySize))
	assert.False(t, s.SelectPiece(1))
	_, ok := s.SelectedSlot()
	assert.False(t, ok)

	assert.True(t, s.SelectPiece(2))
	slot, ok := s.SelectedSlot()
	assert.True(t, ok)
	assert.Equal(t, 2, slot)
}

func TestRotateSelected(t *testing.T) {
	s := newTestSession(t, nil)
	bar := shapeOf(t, []bool{true, true, true})
	s.Tray[0] = &puzzle.Piece{Shape: bar, Color: red}

	assert.False(t, s.RotateSelected(), "nothing selected")
	assert.True(t, s.Tray[0].Shape.Equal(bar))

	require.True(t, s.SelectPiece(0))
	assert.True(t, s.RotateSelected())
	assert.Equal(t, 3, s.Tray[0].Shape.Rows())
	assert.Equal(t, 1, s.Tray[0].Shape.Cols())
	assert.Equal(t, 0, s.Score)
	assert.True(t, s.Board.IsEmpty())
}

func TestGameOver_WhenNoPieceFits(t *testing.T) {
	store := &recordingHighScore{}
	s := newTestSession(t, store)
	// 対角線上と (2,0), (0,2) だけが空いた盤面。どの穴も隣り合わず、揃った列もない
	holes := [][2]int{{2, 0}, {0, 2}}
	for i := 0; i < puzzle.BoardSize; i++ {
		holes = append(holes, [2]int{i, i})
	}
	fillBoardExcept(&s.Board, holes...)
	rows, cols := s.Board.DetectFullLines()
	require.Empty(t, rows)
	require.Empty(t, cols)
	s.Tray = [TraySize]*puzzle.Piece{
		{Shape: dot(t), Color: red},
		{Shape: domino(t), Color: red},
		{Shape: shapeOf(t, []bool{true}, []bool{true}), Color: red},
	}

	require.True(t, s.SelectPiece(0))
	res := s.AttemptPlacement(0, 0)

	require.True(t, res.Placed)
	assert.Empty(t, res.ClearedRows)
	assert.Empty(t, res.ClearedCols)
	assert.True(t, res.GameOver)
	assert.True(t, s.IsGameOver())
	assert.Equal(t, []int{10}, store.writes)
	assert.Equal(t, 10, s.HighScore)
	assert.False(t, s.EndedAt.IsZero())

	_, hinted := s.FindHint()
	assert.False(t, hinted, "no hint exists once the game is over")

	// ゲームオーバー後の操作はすべて無視される
	assert.False(t, s.SelectPiece(1))
	assert.False(t, s.AttemptPlacement(5, 5).Placed)
}

func TestCheckGameOver_SingleHoleAndMultiCellPieces(t *testing.T) {
	s := newTestSession(t, nil)
	fillBoardExcept(&s.Board, [2]int{4, 4})
	s.Tray = [TraySize]*puzzle.Piece{
		{Shape: domino(t), Color: red},
		{Shape: shapeOf(t, []bool{true, true}, []bool{true, true}), Color: red},
		{Shape: shapeOf(t, []bool{true, true, true}), Color: red},
	}

	assert.True(t, s.checkGameOver())
	assert.Equal(t, StatusGameOver, s.Status)
}

func TestCheckGameOver_StillActiveWhenAnyPieceFits(t *testing.T) {
	s := newTestSession(t, nil)
	fillBoardExcept(&s.Board, [2]int{4, 4})
	s.Tray = [TraySize]*puzzle.Piece{
		{Shape: domino(t), Color: red},
		nil,
		{Shape: dot(t), Color: red},
	}

	assert.False(t, s.checkGameOver())
	assert.Equal(t, StatusActive, s.Status)
}

func TestGameOver_HighScoreOnlyWrittenWhenBeaten(t *testing.T) {
	store := &recordingHighScore{score: 1000}
	s := newTestSession(t, store)
	fillBoardExcept(&s.Board, [2]int{4, 4})
	s.Tray = [TraySize]*puzzle.Piece{{Shape: domino(t), Color: red}, nil, nil}
	s.Score = 300

	require.True(t, s.checkGameOver())
	assert.Empty(t, store.writes)
	assert.Equal(t, 1000, s.HighScore)
}

func TestStart_ResetsSession(t *testing.T) {
	s := newTestSession(t, nil)
	s.Board[3][3] = red
	s.Score = 120
	s.LinesCleared = 4
	s.Status = StatusGameOver
	s.Tray = [TraySize]*puzzle.Piece{}

	s.Start()

	assert.True(t, s.Board.IsEmpty())
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 0, s.LinesCleared)
	assert.Equal(t, StatusActive, s.Status)
	for _, p := range s.Tray {
		assert.NotNil(t, p)
	}
}

func TestSnapshot_IsDetachedFromSession(t *testing.T) {
	s := newTestSession(t, nil)
	s.Tray[2] = nil
	snap := s.Snapshot()

	assert.Equal(t, -1, snap.SelectedSlot)
	assert.Nil(t, snap.Tray[2])
	require.NotNil(t, snap.Tray[0])

	snap.Tray[0].Color = "#000000"
	snap.Board[0][0] = red
	assert.NotEqual(t, puzzle.Color("#000000"), s.Tray[0].Color)
	assert.Equal(t, puzzle.Empty, s.Board[0][0])
}

func TestScoreIsMonotonic(t *testing.T) {
	s := newTestSession(t, nil)
	prev := s.Score
	for turn := 0; turn < 200 && !s.IsGameOver(); turn++ {
		hint, ok := s.FindHint()
		require.True(t, ok, "an active session always has a hint")
		require.True(t, s.SelectPiece(hint.Slot))
		cells := s.Tray[hint.Slot].Shape.CellCount()
		res := s.AttemptPlacement(hint.X, hint.Y)
		require.True(t, res.Placed)
		assert.Equal(t, 10*cells, res.PlacementPoints)
		assert.Equal(t, 100*(len(res.ClearedRows)+len(res.ClearedCols)), res.ClearPoints)
		assert.Equal(t, prev+res.PlacementPoints+res.ClearPoints, s.Score)
		prev = s.Score
	}
}
