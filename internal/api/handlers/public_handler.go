package handlers

import (
	"net/http"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models/puzzle"
	gamepuzzle "github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/services/puzzle"
)

// PublicHandlerFunc はヘルスチェックを兼ねたゲームの基本情報を返します。
// GET /api/public
func PublicHandlerFunc(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"board_size":      puzzle.BoardSize,
		"tray_size":       gamepuzzle.TraySize,
		"shapes":          len(puzzle.AllShapes()),
		"palette":         puzzle.Palette(),
		"points_per_cell": gamepuzzle.PointsPerCell,
		"points_per_line": gamepuzzle.PointsPerLine,
	})
}
