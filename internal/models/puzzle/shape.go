package puzzle

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalidShape は形状データが矩形でない、空である、または1マスも埋まっていない場合に返されます。
var ErrInvalidShape = errors.New("invalid shape: must be a non-empty rectangle with at least one filled cell")

// Shape はピースの形状を表す2次元のブール配列です。
// 左上を原点とし、cells[row][col] が true のマスが埋まっています。
// 一度作成された Shape は変更されません。回転は新しい Shape を返します。
type Shape struct {
	cells [][]bool
}

// NewShape は与えられたグリッドから新しい Shape を作成します。
// 引数はコピーされるため、呼び出し側が後で変更しても Shape には影響しません。
//
// Parameters:
//
//	grid : 行ごとのブール配列（すべての行は同じ長さである必要がある）
//
// Returns:
//
//	Shape: 作成された形状
//	error: grid が不正な場合は ErrInvalidShape
func NewShape(grid [][]bool) (Shape, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return Shape{}, ErrInvalidShape
	}
	cols := len(grid[0])
	filled := false
	cells := make([][]bool, len(grid))
	for r, row := range grid {
		if len(row) != cols {
			return Shape{}, ErrInvalidShape
		}
		cells[r] = make([]bool, cols)
		for c, v := range row {
			cells[r][c] = v
			filled = filled || v
		}
	}
	if !filled {
		return Shape{}, ErrInvalidShape
	}
	return Shape{cells: cells}, nil
}

// mustShape はカタログ定義用のヘルパーです。0/1 の行列から Shape を作ります。
func mustShape(rows ...[]int) Shape {
	grid := make([][]bool, len(rows))
	for r, row := range rows {
		grid[r] = make([]bool, len(row))
		for c, v := range row {
			grid[r][c] = v != 0
		}
	}
	s, err := NewShape(grid)
	if err != nil {
		panic(err)
	}
	return s
}

// Rows は形状の行数（高さ）を返します。
func (s Shape) Rows() int { return len(s.cells) }

// Cols は形状の列数（幅）を返します。
func (s Shape) Cols() int {
	if len(s.cells) == 0 {
		return 0
	}
	return len(s.cells[0])
}

// IsZero は Shape がゼロ値（未初期化）かどうかを返します。
func (s Shape) IsZero() bool { return len(s.cells) == 0 }

// Filled は (row, col) のマスが埋まっているかを返します。範囲外は false です。
func (s Shape) Filled(row, col int) bool {
	if row < 0 || row >= s.Rows() || col < 0 || col >= s.Cols() {
		return false
	}
	return s.cells[row][col]
}

// CellCount は埋まっているマスの数を返します。
func (s Shape) CellCount() int {
	n := 0
	for _, row := range s.cells {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

// Blocks は埋まっているマスの相対座標を {x, y} の形で行優先順に返します。
func (s Shape) Blocks() [][2]int {
	blocks := make([][2]int, 0, s.CellCount())
	for y, row := range s.cells {
		for x, v := range row {
			if v {
				blocks = append(blocks, [2]int{x, y})
			}
		}
	}
	return blocks
}

// Grid は形状グリッドのコピーを返します。
func (s Shape) Grid() [][]bool {
	out := make([][]bool, len(s.cells))
	for r, row := range s.cells {
		out[r] = append([]bool(nil), row...)
	}
	return out
}

// Equal はマスのパターンが等しいかどうかを判定します（オブジェクトの同一性ではない）。
func (s Shape) Equal(other Shape) bool {
	if s.Rows() != other.Rows() || s.Cols() != other.Cols() {
		return false
	}
	for r, row := range s.cells {
		for c, v := range row {
			if other.cells[r][c] != v {
				return false
			}
		}
	}
	return true
}

// String は "#" と "." による複数行の表現を返します。
func (s Shape) String() string {
	var b strings.Builder
	for r, row := range s.cells {
		if r > 0 {
			b.WriteByte('\n')
		}
		for _, v := range row {
			if v {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}

// MarshalJSON は形状を 0/1 の2次元配列としてシリアライズします。
func (s Shape) MarshalJSON() ([]byte, error) {
	out := make([][]int, len(s.cells))
	for r, row := range s.cells {
		out[r] = make([]int, len(row))
		for c, v := range row {
			if v {
				out[r][c] = 1
			}
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON は 0/1 の2次元配列から形状を復元します。不正な形状はエラーになります。
func (s *Shape) UnmarshalJSON(data []byte) error {
	var raw [][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	grid := make([][]bool, len(raw))
	for r, row := range raw {
		grid[r] = make([]bool, len(row))
		for c, v := range row {
			grid[r][c] = v != 0
		}
	}
	parsed, err := NewShape(grid)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
