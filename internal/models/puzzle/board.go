package puzzle

import "errors"

// BoardSize はボードの一辺のマス数です。ボードは常に 10×10 です。
const BoardSize = 10

var (
	// ErrIllegalPlacement は CanPlace が false になる位置に配置しようとした場合に返されます。
	ErrIllegalPlacement = errors.New("illegal placement")
	// ErrEmptyColor は空の色トークンで配置しようとした場合に返されます。
	ErrEmptyColor = errors.New("piece color must not be empty")
)

// Board はパズルのゲームボードを表す2次元配列です。
// 各要素は Color で、Empty なら空きマス、それ以外はそのマスを埋めたピースの色です。
// Board[y][x] でアクセスします。yは行、xは列です。
type Board [BoardSize][BoardSize]Color

// NewBoard は新しい空のボードを返します。
// Goの配列はゼロ値（Empty）で初期化されるため、特別な初期化は不要です。
func NewBoard() Board {
	var board Board
	return board
}

// CanPlace は形状の左上を (x, y) に合わせたとき、すべての埋まっているマスが
// ボードの範囲内かつ空きマスに収まるかを判定します。
// 1マスでも範囲外または既存ブロックと重なれば配置全体が不正です。
//
// Parameters:
//
//	x, y  : 配置の原点（ボード座標）
//	shape : 配置する形状
//
// Returns:
//
//	bool: 配置可能なら true
func (b *Board) CanPlace(x, y int, shape Shape) bool {
	if shape.IsZero() {
		return false
	}
	for _, block := range shape.Blocks() {
		bx := x + block[0]
		by := y + block[1]
		if bx < 0 || bx >= BoardSize || by < 0 || by >= BoardSize {
			return false // 壁の外
		}
		if b[by][bx] != Empty {
			return false // 既存のブロックと衝突
		}
	}
	return true
}

// Place は形状をボードに固定し、覆われる各マスに color を書き込みます。
// スコア計算は行いません。配置が不正な場合、ボードは一切変更されません。
//
// Parameters:
//
//	x, y  : 配置の原点（ボード座標）
//	shape : 配置する形状
//	color : 書き込む色（Empty は不可）
//
// Returns:
//
//	error: ErrIllegalPlacement または ErrEmptyColor
func (b *Board) Place(x, y int, shape Shape, color Color) error {
	if color == Empty {
		return ErrEmptyColor
	}
	if !b.CanPlace(x, y, shape) {
		return ErrIllegalPlacement
	}
	for _, block := range shape.Blocks() {
		b[y+block[1]][x+block[0]] = color
	}
	return nil
}

// DetectFullLines は現在のボードで埋まりきった行と列のインデックスを昇順で返します。
// 行と列は独立に判定されるため、同じパスで両方が揃うこともあります。
func (b *Board) DetectFullLines() (rows []int, cols []int) {
	for y := 0; y < BoardSize; y++ {
		full := true
		for x := 0; x < BoardSize; x++ {
			if b[y][x] == Empty {
				full = false
				break
			}
		}
		if full {
			rows = append(rows, y)
		}
	}
	for x := 0; x < BoardSize; x++ {
		full := true
		for y := 0; y < BoardSize; y++ {
			if b[y][x] == Empty {
				full = false
				break
			}
		}
		if full {
			cols = append(cols, x)
		}
	}
	return rows, cols
}

// Clear は指定された行と列のすべてのマスを空に戻します。
// 行と列の交点は一度だけクリアされます。範囲外のインデックスは無視します。
func (b *Board) Clear(rows, cols []int) {
	for _, y := range rows {
		if y < 0 || y >= BoardSize {
			continue
		}
		for x := 0; x < BoardSize; x++ {
			b[y][x] = Empty
		}
	}
	for _, x := range cols {
		if x < 0 || x >= BoardSize {
			continue
		}
		for y := 0; y < BoardSize; y++ {
			b[y][x] = Empty
		}
	}
}

// HasAnyLegalPlacement は形状をボード上のどこかに配置できるかを判定します。
// 形状がボード内に収まる原点 (x: 0..10-幅, y: 0..10-高さ) をすべて調べます。
func (b *Board) HasAnyLegalPlacement(shape Shape) bool {
	if shape.IsZero() || shape.Cols() > BoardSize || shape.Rows() > BoardSize {
		return false
	}
	for y := 0; y <= BoardSize-shape.Rows(); y++ {
		for x := 0; x <= BoardSize-shape.Cols(); x++ {
			if b.CanPlace(x, y, shape) {
				return true
			}
		}
	}
	return false
}

// OccupiedCount は埋まっているマスの数を返します。
func (b *Board) OccupiedCount() int {
	n := 0
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if b[y][x] != Empty {
				n++
			}
		}
	}
	return n
}

// IsEmpty はボードが完全に空かどうかを返します。
func (b *Board) IsEmpty() bool {
	return b.OccupiedCount() == 0
}
