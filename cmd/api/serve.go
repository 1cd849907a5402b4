package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/api/handlers"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/scores"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/services/puzzle"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP/WebSocket API server",
	RunE:  runServe,
}

// newRouter は全エンドポイントを登録したルーターを返します。
func newRouter(sm *puzzle.SessionManager, store scores.Store, auth *middleware.Authenticator, allowedOrigins []string, logger *zap.Logger) http.Handler {
	gameHandler := handlers.NewGameHandler(sm, auth, allowedOrigins, logger)
	resultHandler := handlers.NewResultHandler(store, logger)

	r := mux.NewRouter()
	// 認証不要な公開エンドポイント
	r.HandleFunc("/api/public", handlers.PublicHandlerFunc).Methods(http.MethodGet)
	r.HandleFunc("/api/results", resultHandler.GetTopResults).Methods(http.MethodGet)
	// WebSocket は接続後の最初のメッセージで認証する
	r.HandleFunc("/ws/games/{sessionID}", gameHandler.HandleWebSocketConnection).Methods(http.MethodGet)

	// /api/protected/ で始まる全てのパスにAuthMiddlewareを適用します。
	protectedRouter := r.PathPrefix("/api/protected").Subrouter()
	protectedRouter.Use(auth.Middleware)
	protectedRouter.HandleFunc("/games", gameHandler.CreateGame).Methods(http.MethodPost)
	protectedRouter.HandleFunc("/games/{sessionID}", gameHandler.GetGame).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/games/{sessionID}", gameHandler.DeleteGame).Methods(http.MethodDelete)
	protectedRouter.HandleFunc("/games/{sessionID}/actions", gameHandler.PostAction).Methods(http.MethodPost)
	protectedRouter.HandleFunc("/results/me", resultHandler.GetMyResult).Methods(http.MethodGet)

	return middleware.CORSHandler(allowedOrigins)(r)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openScoreStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sm := puzzle.NewSessionManager(puzzle.SessionManagerConfig{
		IdleTimeout: cfg.IdleTimeout,
		HighScores:  scores.Provider(store, logger.Named("HighScore")),
		Logger:      logger,
	})
	defer sm.Shutdown()

	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.BypassAuth, logger)
	if cfg.BypassAuth {
		logger.Warn("BYPASS_AUTH is enabled; requests are not authenticated")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(sm, store, auth, cfg.AllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("score_backend", cfg.ScoreBackend))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
