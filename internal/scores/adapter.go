package scores

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/services/puzzle"
)

const storeTimeout = 3 * time.Second

// userHighScore は Store を1ユーザー分の puzzle.HighScoreStore として見せるアダプターです。
// 永続化の失敗はログに残し、読み込み失敗は 0 として扱います。
type userHighScore struct {
	store  Store
	userID string
	logger *zap.Logger
}

// ForUser は userID のハイスコアを store に読み書きする puzzle.HighScoreStore を返します。
func ForUser(store Store, userID string, logger *zap.Logger) puzzle.HighScoreStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userHighScore{store: store, userID: userID, logger: logger}
}

// Provider は SessionManager に渡すユーザーごとの HighScoreProvider を返します。
func Provider(store Store, logger *zap.Logger) puzzle.HighScoreProvider {
	return func(userID string) puzzle.HighScoreStore {
		return ForUser(store, userID, logger)
	}
}

func (u *userHighScore) ReadHighScore() int {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	score, err := u.store.ReadHighScore(ctx, u.userID)
	if err != nil {
		u.logger.Warn("failed to read high score", zap.String("user_id", u.userID), zap.Error(err))
		return 0
	}
	return score
}

func (u *userHighScore) WriteHighScore(score int) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := u.store.WriteHighScore(ctx, u.userID, score); err != nil {
		u.logger.Error("failed to write high score", zap.String("user_id", u.userID), zap.Int("score", score), zap.Error(err))
	}
}
