package puzzle

// Rotate は形状を時計回りに90度回転させた新しい Shape を返します。
// R×C の入力から C×R の出力を作り、out[col][R-1-row] = in[row][col] となります。
// 4回適用すると元の形状とパターンが一致します。
func Rotate(s Shape) Shape {
	rows, cols := s.Rows(), s.Cols()
	if rows == 0 {
		return s
	}
	rotated := make([][]bool, cols)
	for c := range rotated {
		rotated[c] = make([]bool, rows)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rotated[c][rows-1-r] = s.cells[r][c]
		}
	}
	return Shape{cells: rotated}
}

// Rotate は Rotate(s) のメソッド版です。
func (s Shape) Rotate() Shape {
	return Rotate(s)
}
