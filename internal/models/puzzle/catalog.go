package puzzle

// catalog はトレイに出現するピース形状の一覧です。
// テトリスとは異なり、全回転を網羅するのではなく厳選したバリエーションを並べています。
// 回転は実行時に Rotate で行います。
var catalog = []Shape{
	// 1ブロック
	mustShape([]int{1}),

	// 2ブロック
	mustShape([]int{1, 1}),
	mustShape([]int{1}, []int{1}),

	// 3ブロック
	mustShape([]int{1, 1, 1}),
	mustShape([]int{1}, []int{1}, []int{1}),
	mustShape([]int{1, 1}, []int{1, 0}),
	mustShape([]int{1, 1}, []int{0, 1}),
	mustShape([]int{1, 0}, []int{1, 1}),
	mustShape([]int{0, 1}, []int{1, 1}),

	// 4ブロック
	mustShape([]int{1, 1, 1, 1}),
	mustShape([]int{1}, []int{1}, []int{1}, []int{1}),
	mustShape([]int{1, 1}, []int{1, 1}),
	mustShape([]int{1, 1, 1}, []int{1, 0, 0}),
	mustShape([]int{1, 1, 1}, []int{0, 0, 1}),
	mustShape([]int{1, 1, 1}, []int{0, 1, 0}),
	mustShape([]int{1, 0, 0}, []int{1, 1, 1}),
	mustShape([]int{0, 0, 1}, []int{1, 1, 1}),
	mustShape([]int{0, 1, 0}, []int{1, 1, 1}),
	mustShape([]int{1, 1, 0}, []int{0, 1, 1}),
	mustShape([]int{0, 1, 1}, []int{1, 1, 0}),

	// 5ブロック
	mustShape([]int{1, 1, 1, 1, 1}),
	mustShape([]int{1}, []int{1}, []int{1}, []int{1}, []int{1}),
	mustShape([]int{1, 1, 1}, []int{1, 0, 0}, []int{1, 0, 0}),
	mustShape([]int{1, 1, 1}, []int{0, 0, 1}, []int{0, 0, 1}),
	mustShape([]int{1, 1, 1}, []int{0, 1, 0}, []int{0, 1, 0}),
	mustShape([]int{1, 0, 0}, []int{1, 0, 0}, []int{1, 1, 1}),
	mustShape([]int{0, 0, 1}, []int{0, 0, 1}, []int{1, 1, 1}),
	mustShape([]int{0, 1, 0}, []int{0, 1, 0}, []int{1, 1, 1}),
	mustShape([]int{1, 1, 0}, []int{0, 1, 0}, []int{0, 1, 1}),
	mustShape([]int{0, 1, 1}, []int{0, 1, 0}, []int{1, 1, 0}),
	mustShape([]int{1, 1, 1, 1}, []int{0, 0, 0, 1}),
	mustShape([]int{1, 1, 1, 1}, []int{1, 0, 0, 0}),
	mustShape([]int{1, 0, 0, 0}, []int{1, 1, 1, 1}),
	mustShape([]int{0, 0, 0, 1}, []int{1, 1, 1, 1}),
}

// MaxShapeCells はカタログ内の形状が持つ最大マス数です。
const MaxShapeCells = 5

// AllShapes はカタログの全形状を定義順で返します。
// スライスは呼び出しごとに新しく作られますが、Shape 自体は不変なので共有しても安全です。
func AllShapes() []Shape {
	return append([]Shape(nil), catalog...)
}
