package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/scores"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "woodblock:leaderboard", BuildLeaderboardKey())
	assert.Equal(t, "woodblock:highscore:user-1", BuildHighScoreKey("user-1"))
}

func TestParseMillis(t *testing.T) {
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), parseMillis("1700000000000"))
	assert.True(t, parseMillis("").IsZero())
	assert.True(t, parseMillis("garbage").IsZero())
}

func TestScoreStore_RejectsInvalidScoreWithoutRoundTrip(t *testing.T) {
	store := NewScoreStoreWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
	defer store.Close()

	assert.ErrorIs(t, store.WriteHighScore(context.Background(), "alice", -5), scores.ErrInvalidScore)
}

// Redis が必要なテストは TEST_REDIS_ADDR が設定されている場合のみ実行する
func TestScoreStore_Integration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}
	ctx := context.Background()
	store, err := NewScoreStore(ctx, RedisConfig{Addr: addr, DB: 15})
	require.NoError(t, err)
	defer store.Close()

	alice := "test-" + uuid.NewString()
	bob := "test-" + uuid.NewString()
	t.Cleanup(func() {
		store.client.ZRem(ctx, BuildLeaderboardKey(), alice, bob)
		store.client.Del(ctx, BuildHighScoreKey(alice), BuildHighScoreKey(bob))
	})

	score, err := store.ReadHighScore(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	require.NoError(t, store.WriteHighScore(ctx, alice, 700000))
	require.NoError(t, store.WriteHighScore(ctx, alice, 10))
	require.NoError(t, store.WriteHighScore(ctx, bob, 600000))

	score, err = store.ReadHighScore(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 700000, score)

	aliceRank, err := store.GetUserRanking(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, aliceRank)
	assert.False(t, aliceRank.AchievedAt.IsZero())
	bobRank, err := store.GetUserRanking(ctx, bob)
	require.NoError(t, err)
	require.NotNil(t, bobRank)
	assert.Equal(t, aliceRank.Rank+1, bobRank.Rank)

	missing, err := store.GetUserRanking(ctx, "test-"+uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	top, err := store.GetTopResults(ctx, scores.MaxLimit)
	require.NoError(t, err)
	require.NotEmpty(t, top)
	assert.Equal(t, 1, top[0].Rank)
}
