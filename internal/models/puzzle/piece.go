package puzzle

// Piece はトレイのスロットに置かれるピースです。形状と表示色の組を持ちます。
type Piece struct {
	Shape Shape `json:"shape"` // ピースの形状
	Color Color `json:"color"` // 表示色
}

// Clone はピースのコピーを返します。Shape は不変なので浅いコピーで十分です。
func (p *Piece) Clone() *Piece {
	newP := *p
	return &newP
}
