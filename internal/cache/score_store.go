// Package cache provides a Redis-backed score store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/scores"
)

// RedisConfig は Redis への接続設定です。
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ScoreStore はユーザーごとの最高スコアを Redis の Sorted Set に保存します。
// 同点の順位は Redis の並び順（ZREVRANGE なのでメンバー名の辞書順の逆）に従います。
type ScoreStore struct {
	client *redis.Client
	now    func() time.Time
}

var _ scores.Store = (*ScoreStore)(nil)

// NewScoreStore は Redis クライアントを作成し、疎通を確認します。
func NewScoreStore(ctx context.Context, cfg RedisConfig) (*ScoreStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewScoreStoreWithClient(client), nil
}

// NewScoreStoreWithClient は既存のクライアントを使う ScoreStore を返します。
func NewScoreStoreWithClient(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client, now: time.Now}
}

// Close は Redis クライアントを閉じます。
func (s *ScoreStore) Close() error {
	return s.client.Close()
}

// ReadHighScore implements scores.Store.
func (s *ScoreStore) ReadHighScore(ctx context.Context, userID string) (int, error) {
	score, err := s.client.ZScore(ctx, BuildLeaderboardKey(), userID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read high score: %w", err)
	}
	return int(score), nil
}

// WriteHighScore implements scores.Store. 既存の最高スコアを超えた場合のみ更新します。
func (s *ScoreStore) WriteHighScore(ctx context.Context, userID string, score int) error {
	if err := scores.ValidateScore(userID, score); err != nil {
		return err
	}
	changed, err := s.client.ZAddArgs(ctx, BuildLeaderboardKey(), redis.ZAddArgs{
		GT:      true,
		Ch:      true,
		Members: []redis.Z{{Score: float64(score), Member: userID}},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to update leaderboard: %w", err)
	}
	if changed == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, BuildHighScoreKey(userID),
		"score", score,
		"achieved_at", s.now().UTC().UnixMilli(),
	).Err(); err != nil {
		return fmt.Errorf("failed to record high score details: %w", err)
	}
	return nil
}

// GetTopResults implements scores.Store.
func (s *ScoreStore) GetTopResults(ctx context.Context, limit int) ([]models.ResultResponse, error) {
	limit = scores.ClampLimit(limit)
	entries, err := s.client.ZRevRangeWithScores(ctx, BuildLeaderboardKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	// 達成日時はパイプラインでまとめて取得する
	pipe := s.client.Pipeline()
	achieved := make([]*redis.StringCmd, len(entries))
	for i, z := range entries {
		achieved[i] = pipe.HGet(ctx, BuildHighScoreKey(fmt.Sprint(z.Member)), "achieved_at")
	}
	if len(entries) > 0 {
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to read high score details: %w", err)
		}
	}

	results := make([]models.ResultResponse, 0, len(entries))
	for i, z := range entries {
		results = append(results, models.ResultResponse{
			UserID:     fmt.Sprint(z.Member),
			Score:      int(z.Score),
			AchievedAt: parseMillis(achieved[i].Val()),
			Rank:       i + 1,
		})
	}
	return results, nil
}

// GetUserRanking implements scores.Store.
func (s *ScoreStore) GetUserRanking(ctx context.Context, userID string) (*models.ResultResponse, error) {
	pipe := s.client.Pipeline()
	rank := pipe.ZRevRank(ctx, BuildLeaderboardKey(), userID)
	score := pipe.ZScore(ctx, BuildLeaderboardKey(), userID)
	achieved := pipe.HGet(ctx, BuildHighScoreKey(userID), "achieved_at")
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read user ranking: %w", err)
	}
	if errors.Is(rank.Err(), redis.Nil) {
		return nil, nil
	}
	if err := rank.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user ranking: %w", err)
	}
	return &models.ResultResponse{
		UserID:     userID,
		Score:      int(score.Val()),
		AchievedAt: parseMillis(achieved.Val()),
		Rank:       int(rank.Val()) + 1,
	}, nil
}

func parseMillis(raw string) time.Time {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
