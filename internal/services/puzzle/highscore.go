package puzzle

import "sync"

// HighScoreStore はハイスコアを永続化する外部コラボレーターです。
// 読み込みに失敗した場合や値が存在しない場合は 0 を返す責務を持ちます。
type HighScoreStore interface {
	ReadHighScore() int
	WriteHighScore(score int)
}

// HighScoreProvider はユーザーごとの HighScoreStore を返します。
type HighScoreProvider func(userID string) HighScoreStore

// MemoryHighScore はプロセス内だけで保持される HighScoreStore です。
type MemoryHighScore struct {
	mu    sync.Mutex
	score int
}

// ReadHighScore implements HighScoreStore.
func (m *MemoryHighScore) ReadHighScore() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score
}

// WriteHighScore implements HighScoreStore.
func (m *MemoryHighScore) WriteHighScore(score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.score = score
}
