package puzzle

import (
	"math/rand"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models/puzzle"
)

// RandomSource はピース生成に使う一様乱数の供給元です。
// *rand.Rand はこのインターフェースを満たします。テストでは決定的な実装を渡せます。
type RandomSource interface {
	// Intn は [0, n) の整数を一様に返します。
	Intn(n int) int
}

// PieceFactory はカタログとパレットから一様ランダムにピースを生成します。
// 乱数源以外の状態は保持しません。
type PieceFactory struct {
	rng     RandomSource
	shapes  []puzzle.Shape
	palette []puzzle.Color
}

// NewPieceFactory は指定された乱数源を使う PieceFactory を返します。
func NewPieceFactory(rng RandomSource) *PieceFactory {
	return &PieceFactory{
		rng:     rng,
		shapes:  puzzle.AllShapes(),
		palette: puzzle.Palette(),
	}
}

// NewSeededPieceFactory はシード付きの math/rand を乱数源とする PieceFactory を返します。
func NewSeededPieceFactory(seed int64) *PieceFactory {
	return NewPieceFactory(rand.New(rand.NewSource(seed)))
}

// NewTimeSeededPieceFactory は現在時刻をシードにした PieceFactory を返します。
func NewTimeSeededPieceFactory() *PieceFactory {
	return NewSeededPieceFactory(time.Now().UnixNano())
}

// Generate は count 個の新しいピースを返します。
// 各ピースについて、形状、色の順に乱数を引きます。
func (f *PieceFactory) Generate(count int) []puzzle.Piece {
	if count <= 0 {
		return nil
	}
	pieces := make([]puzzle.Piece, 0, count)
	for i := 0; i < count; i++ {
		shape := f.shapes[f.rng.Intn(len(f.shapes))]
		color := f.palette[f.rng.Intn(len(f.palette))]
		pieces = append(pieces, puzzle.Piece{Shape: shape, Color: color})
	}
	return pieces
}
