package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/scores"
)

// ResultHandler はゲーム結果関連のハンドラーを管理する構造体です。
type ResultHandler struct {
	store  scores.Store
	logger *zap.Logger
}

// NewResultHandler は新しいResultHandlerインスタンスを作成します。
func NewResultHandler(store scores.Store, logger *zap.Logger) *ResultHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultHandler{store: store, logger: logger.Named("ResultHandler")}
}

// GetTopResults は上位ランキングを取得するハンドラーです。
// GET /api/results?limit=50
func (h *ResultHandler) GetTopResults(w http.ResponseWriter, r *http.Request) {
	limit := scores.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			WriteErrorResponse(w, http.StatusBadRequest, "limitは正の整数である必要があります")
			return
		}
		limit = scores.ClampLimit(parsed)
	}

	results, err := h.store.GetTopResults(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to load leaderboard", zap.Error(err))
		WriteErrorResponse(w, http.StatusInternalServerError, "ゲーム結果取得に失敗しました")
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}

// GetMyResult はログインユーザーの最高スコアと順位を返すハンドラーです。
// GET /api/protected/results/me
func (h *ResultHandler) GetMyResult(w http.ResponseWriter, r *http.Request) {
	userID, err := ExtractUserIDFromContext(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	ranking, err := h.store.GetUserRanking(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load user ranking", zap.String("user_id", userID), zap.Error(err))
		WriteErrorResponse(w, http.StatusInternalServerError, "ランキングの取得に失敗しました")
		return
	}
	if ranking == nil {
		WriteErrorResponse(w, http.StatusNotFound, "まだスコアが記録されていません")
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  ranking,
	})
}
