package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/scores"
)

// rankedBestScores はユーザーごとの最高スコア（同点なら最初に達成した日時）に順位を付けるCTEです。
const rankedBestScores = `
	WITH best AS (
		SELECT user_id, MAX(score) AS score
		FROM results
		GROUP BY user_id
	), first_achieved AS (
		SELECT b.user_id, b.score, MIN(r.created_at) AS achieved_at
		FROM best b
		JOIN results r ON r.user_id = b.user_id AND r.score = b.score
		GROUP BY b.user_id, b.score
	), ranked AS (
		SELECT user_id, score, achieved_at,
			ROW_NUMBER() OVER (ORDER BY score DESC, achieved_at ASC, user_id ASC) AS rank
		FROM first_achieved
	)
`

// ResultRepository はゲーム結果関連のデータベース操作を定義するインターフェースです。
// scores.Store を満たし、ハイスコアとリーダーボードの保存先として使えます。
type ResultRepository interface {
	scores.Store

	// CreateResult は新しいゲーム結果レコードを作成します。tx が nil ならトランザクション外で実行します。
	CreateResult(ctx context.Context, tx *sql.Tx, userID string, score int) (*models.Result, error)
}

// resultRepositoryImpl はResultRepositoryインターフェースの実装です。
type resultRepositoryImpl struct {
	db  *sql.DB
	now func() time.Time
}

// NewResultRepository はResultRepositoryの新しいインスタンスを作成します。
func NewResultRepository(db *sql.DB) ResultRepository {
	return &resultRepositoryImpl{db: db, now: time.Now}
}

// CreateResult は新しいゲーム結果レコードを作成します。
func (r *resultRepositoryImpl) CreateResult(ctx context.Context, tx *sql.Tx, userID string, score int) (*models.Result, error) {
	if err := scores.ValidateScore(userID, score); err != nil {
		return nil, err
	}
	now := r.now().UTC()
	const query = "INSERT INTO results (user_id, score, created_at) VALUES ($1, $2, $3) RETURNING id"

	// トランザクションの有無を確認して適切にクエリを実行
	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, userID, score, now)
	} else {
		row = r.db.QueryRowContext(ctx, query, userID, score, now)
	}

	var id int64
	if err := row.Scan(&id); err != nil {
		return nil, fmt.Errorf("ゲーム結果レコードの作成に失敗しました: %w", err)
	}
	return &models.Result{ID: id, UserID: userID, Score: score, CreatedAt: now}, nil
}

// ReadHighScore implements scores.Store.
func (r *resultRepositoryImpl) ReadHighScore(ctx context.Context, userID string) (int, error) {
	var best int
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(score), 0) FROM results WHERE user_id = $1", userID).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("ユーザーの最高スコア取得に失敗しました: %w", err)
	}
	return best, nil
}

// WriteHighScore implements scores.Store.
func (r *resultRepositoryImpl) WriteHighScore(ctx context.Context, userID string, score int) error {
	_, err := r.CreateResult(ctx, nil, userID, score)
	return err
}

// GetTopResults は上位N件の結果を取得します（ランキング用）。
func (r *resultRepositoryImpl) GetTopResults(ctx context.Context, limit int) ([]models.ResultResponse, error) {
	query := rankedBestScores + `
	SELECT user_id, score, achieved_at, rank
	FROM ranked
	ORDER BY rank
	LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, scores.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("ゲーム結果取得に失敗しました: %w", err)
	}
	defer rows.Close()

	results := make([]models.ResultResponse, 0)
	for rows.Next() {
		var result models.ResultResponse
		if err := rows.Scan(&result.UserID, &result.Score, &result.AchievedAt, &result.Rank); err != nil {
			return nil, fmt.Errorf("ゲーム結果データのスキャンに失敗しました: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ゲーム結果取得中にエラーが発生しました: %w", err)
	}
	return results, nil
}

// GetUserRanking は指定したユーザーの現在のランキング順位を取得します。
func (r *resultRepositoryImpl) GetUserRanking(ctx context.Context, userID string) (*models.ResultResponse, error) {
	query := rankedBestScores + `
	SELECT user_id, score, achieved_at, rank
	FROM ranked
	WHERE user_id = $1`

	var result models.ResultResponse
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&result.UserID, &result.Score, &result.AchievedAt, &result.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // ユーザーのスコアが存在しない
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーランキング順位の計算に失敗しました: %w", err)
	}
	return &result, nil
}
