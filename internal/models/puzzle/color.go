package puzzle

// Color はピースとボードのマスが持つ不透明な色トークンです。
// レンダラーはこの値をそのまま描画色として解釈します。
type Color string

// Empty は空のマスを表します。
const Empty Color = ""

// palette はピースの色として使われる12色です。
var palette = [...]Color{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4",
	"#FFEAA7", "#DDA0DD", "#F39C12", "#E74C3C",
	"#3498DB", "#2ECC71", "#9B59B6", "#F1C40F",
}

// Palette は固定パレットのコピーを返します。
func Palette() []Color {
	return append([]Color(nil), palette[:]...)
}
