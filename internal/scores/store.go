// Package scores defines where finished-game scores live: the per-user high
// score read by new sessions and the leaderboard served over HTTP.
package scores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models"
)

// ErrInvalidScore は保存しようとしたスコアまたはユーザーIDが不正な場合のエラーです。
var ErrInvalidScore = errors.New("invalid score")

// リーダーボードの取得件数です。
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Store はスコアの永続化先です。
// WriteHighScore は記録を追加し、ReadHighScore はそのユーザーの最高値を返します。
type Store interface {
	// ReadHighScore はユーザーの最高スコアを返します。記録がなければ 0 です。
	ReadHighScore(ctx context.Context, userID string) (int, error)

	// WriteHighScore はユーザーのスコアを記録します。
	WriteHighScore(ctx context.Context, userID string, score int) error

	// GetTopResults はユーザーごとの最高スコアを上位から limit 件返します。
	GetTopResults(ctx context.Context, limit int) ([]models.ResultResponse, error)

	// GetUserRanking はユーザーの最高スコアと順位を返します。記録がなければ nil です。
	GetUserRanking(ctx context.Context, userID string) (*models.ResultResponse, error)
}

// ValidateScore は記録前の入力を検証します。
func ValidateScore(userID string, score int) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidScore)
	}
	if score < 0 {
		return fmt.Errorf("%w: negative score %d", ErrInvalidScore, score)
	}
	return nil
}

// ClampLimit はリーダーボードの件数を [1, MaxLimit] に収めます。0 以下なら DefaultLimit です。
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
