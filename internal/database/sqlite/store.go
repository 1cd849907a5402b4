// Package sqlite provides a SQLite-backed score store for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLiteドライバー

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/scores"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT    NOT NULL,
	score      INTEGER NOT NULL CHECK (score >= 0),
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS results_user_score_idx ON results (user_id, score DESC, created_at);
`

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

// Store persists finished-game scores in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ scores.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite score store and creates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ReadHighScore returns the user's best score, or 0 when none is recorded.
func (s *Store) ReadHighScore(ctx context.Context, userID string) (int, error) {
	var best int
	err := s.sqlDB.QueryRowContext(ctx, "SELECT COALESCE(MAX(score), 0) FROM results WHERE user_id = ?", userID).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("read high score: %w", err)
	}
	return best, nil
}

// WriteHighScore appends one result row.
func (s *Store) WriteHighScore(ctx context.Context, userID string, score int) error {
	if err := scores.ValidateScore(userID, score); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO results (user_id, score, created_at) VALUES (?, ?, ?)",
		userID, score, toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// GetTopResults returns each user's best score, ranked.
func (s *Store) GetTopResults(ctx context.Context, limit int) ([]models.ResultResponse, error) {
	rows, err := s.sqlDB.QueryContext(ctx, rankedBestScores+`
	SELECT user_id, score, achieved_at, rank FROM ranked ORDER BY rank LIMIT ?`, scores.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query top results: %w", err)
	}
	defer rows.Close()

	results := make([]models.ResultResponse, 0)
	for rows.Next() {
		result, err := scanRanked(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top results: %w", err)
	}
	return results, nil
}

// GetUserRanking returns the user's best score and rank, or nil when none is recorded.
func (s *Store) GetUserRanking(ctx context.Context, userID string) (*models.ResultResponse, error) {
	row := s.sqlDB.QueryRowContext(ctx, rankedBestScores+`
	SELECT user_id, score, achieved_at, rank FROM ranked WHERE user_id = ?`, userID)
	result, err := scanRanked(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRanked(row rowScanner) (models.ResultResponse, error) {
	var (
		result     models.ResultResponse
		achievedAt int64
	)
	if err := row.Scan(&result.UserID, &result.Score, &achievedAt, &result.Rank); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, err
		}
		return result, fmt.Errorf("scan ranked result: %w", err)
	}
	result.AchievedAt = fromMillis(achievedAt)
	return result, nil
}
