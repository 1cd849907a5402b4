package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/services/puzzle"
)

const authTimeout = 10 * time.Second

// GameHandler はゲーム関連のHTTPリクエスト（セッション作成、操作、WebSocket接続）を処理します。
type GameHandler struct {
	sessionManager *puzzle.SessionManager
	auth           *middleware.Authenticator
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

// NewGameHandler は新しい GameHandler インスタンスを作成します。
//
// Parameters:
//
//	sm             : セッションマネージャーへのポインタ
//	auth           : WebSocket の認証メッセージを検証する Authenticator
//	allowedOrigins : WebSocket 接続を許可するオリジン（空なら全て許可）
//	logger         : ロガー
func NewGameHandler(sm *puzzle.SessionManager, auth *middleware.Authenticator, allowedOrigins []string, logger *zap.Logger) *GameHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameHandler{
		sessionManager: sm,
		auth:           auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.Named("GameHandler"),
	}
}

// originChecker は許可リストに含まれる Origin のみを通す CheckOrigin 関数を返します。
// Origin ヘッダーのないリクエスト（ブラウザ以外のクライアント）は許可します。
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// writeSessionError はセッション操作のエラーをHTTPステータスに変換します。
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, puzzle.ErrSessionNotFound):
		WriteErrorResponse(w, http.StatusNotFound, "指定されたゲームは見つかりませんでした")
	case errors.Is(err, puzzle.ErrSessionForbidden):
		WriteErrorResponse(w, http.StatusForbidden, "このゲームを操作する権限がありません")
	default:
		WriteErrorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

// CreateGame は新しいゲームセッションを作成するためのHTTPハンドラーです。
// POST /api/protected/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID, err := ExtractUserIDFromContext(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	sessionID := h.sessionManager.CreateSession(userID)
	snapshot, err := h.sessionManager.GetSnapshot(sessionID, userID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	WriteJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"session_id": sessionID,
		"state":      snapshot,
	})
}

// GetGame はゲームセッションの現在の状態を返すハンドラーです。
// GET /api/protected/games/{sessionID}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	userID, err := ExtractUserIDFromContext(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	snapshot, err := h.sessionManager.GetSnapshot(mux.Vars(r)["sessionID"], userID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, snapshot)
}

// PostAction はプレイヤーの操作を1件適用するハンドラーです。
// POST /api/protected/games/{sessionID}/actions
func (h *GameHandler) PostAction(w http.ResponseWriter, r *http.Request) {
	userID, err := ExtractUserIDFromContext(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	var event puzzle.PlayerInputEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "リクエストボディのパースに失敗しました")
		return
	}
	if event.Action == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "actionが必要です")
		return
	}

	result, snapshot, err := h.sessionManager.Apply(mux.Vars(r)["sessionID"], userID, event)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	status := http.StatusOK
	if result.Error != "" {
		status = http.StatusBadRequest
	}
	WriteJSONResponse(w, status, map[string]interface{}{
		"result": result,
		"state":  snapshot,
	})
}

// DeleteGame はゲームセッションを破棄するハンドラーです。
// DELETE /api/protected/games/{sessionID}
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	userID, err := ExtractUserIDFromContext(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err := h.sessionManager.EndSession(mux.Vars(r)["sessionID"], userID); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authMessage は WebSocket 接続後に最初に送られる認証メッセージです。
type authMessage struct {
	Type   string `json:"type"`
	Token  string `json:"token"`
	UserID string `json:"user_id,omitempty"` // BYPASS_AUTH 有効時のみ使用
}

// HandleWebSocketConnection はHTTP接続をWebSocketプロトコルにアップグレードし、
// 認証メッセージを検証した後、コネクションをセッションマネージャーに引き渡します。
// GET /ws/games/{sessionID}
func (h *GameHandler) HandleWebSocketConnection(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]
	logger := h.logger.With(zap.String("session_id", sessionID))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("failed to upgrade to websocket", zap.Error(err))
		return
	}

	reject := func(message string) {
		conn.WriteJSON(puzzle.ServerMessage{Type: puzzle.MessageTypeError, Error: message})
		conn.Close()
	}

	// 認証メッセージを待つ
	conn.SetReadDeadline(time.Now().Add(authTimeout))
	var msg authMessage
	if err := conn.ReadJSON(&msg); err != nil {
		logger.Info("failed to read auth message", zap.Error(err))
		reject("Expected auth message")
		return
	}
	if msg.Type != "auth" {
		reject("Expected auth message")
		return
	}

	var userID string
	if h.auth.BypassEnabled() {
		userID = h.auth.BypassUserID(msg.UserID)
	} else {
		userID, err = h.auth.ParseToken(msg.Token)
		if err != nil {
			logger.Info("websocket auth failed", zap.Error(err))
			reject("Invalid token")
			return
		}
	}
	conn.SetReadDeadline(time.Time{})

	if err := h.sessionManager.RegisterClient(sessionID, userID, conn); err != nil {
		logger.Info("failed to register client", zap.String("user_id", userID), zap.Error(err))
		switch {
		case errors.Is(err, puzzle.ErrSessionNotFound):
			reject("Session not found")
		case errors.Is(err, puzzle.ErrSessionForbidden):
			reject("Forbidden")
		default:
			reject(err.Error())
		}
		return
	}
	// 以降の読み書きは SessionManager の readPump / writePump が担当する
}
