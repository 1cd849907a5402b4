package scores

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models"
)

// MemoryStore はプロセス内で完結する Store です。開発時とテストで使います。
type MemoryStore struct {
	mu   sync.RWMutex
	best map[string]models.ResultResponse
	now  func() time.Time
}

// NewMemoryStore は空の MemoryStore を返します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		best: make(map[string]models.ResultResponse),
		now:  time.Now,
	}
}

// ReadHighScore implements Store.
func (m *MemoryStore) ReadHighScore(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.best[userID].Score, nil
}

// WriteHighScore implements Store. 既存の最高スコア以下の値は記録済みとして扱います。
func (m *MemoryStore) WriteHighScore(ctx context.Context, userID string, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateScore(userID, score); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.best[userID]; ok && current.Score >= score {
		return nil
	}
	m.best[userID] = models.ResultResponse{UserID: userID, Score: score, AchievedAt: m.now()}
	return nil
}

// ranked はスコア降順、達成日時昇順に並べた全ユーザーの記録を返します。
func (m *MemoryStore) ranked() []models.ResultResponse {
	all := make([]models.ResultResponse, 0, len(m.best))
	for _, r := range m.best {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if !all[i].AchievedAt.Equal(all[j].AchievedAt) {
			return all[i].AchievedAt.Before(all[j].AchievedAt)
		}
		return all[i].UserID < all[j].UserID
	})
	for i := range all {
		all[i].Rank = i + 1
	}
	return all
}

// GetTopResults implements Store.
func (m *MemoryStore) GetTopResults(ctx context.Context, limit int) ([]models.ResultResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.ranked()
	if limit = ClampLimit(limit); len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// GetUserRanking implements Store.
func (m *MemoryStore) GetUserRanking(ctx context.Context, userID string) (*models.ResultResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.best[userID]; !ok {
		return nil, nil
	}
	for _, r := range m.ranked() {
		if r.UserID == userID {
			entry := r
			return &entry, nil
		}
	}
	return nil, nil
}
