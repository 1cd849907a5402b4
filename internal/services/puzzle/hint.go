package puzzle

import "github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models/puzzle"

// Hint は配置可能なトレイのスロットと原点を表します。
type Hint struct {
	Slot int `json:"slot"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

// FindHint はトレイのスロットを順に調べ、最初に配置できる位置を返します。
// 各スロットでは y を外側、x を内側にして昇順に原点を走査します。
// どのピースも置けない場合は false を返します（ゲームオーバーと同じ条件）。
func FindHint(board *puzzle.Board, tray []*puzzle.Piece) (Hint, bool) {
	for slot, piece := range tray {
		if piece == nil {
			continue
		}
		shape := piece.Shape
		for y := 0; y <= puzzle.BoardSize-shape.Rows(); y++ {
			for x := 0; x <= puzzle.BoardSize-shape.Cols(); x++ {
				if board.CanPlace(x, y, shape) {
					return Hint{Slot: slot, X: x, Y: y}, true
				}
			}
		}
	}
	return Hint{}, false
}
