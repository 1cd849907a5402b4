package cache

import "fmt"

const keyPrefix = "woodblock"

// BuildLeaderboardKey はユーザーごとの最高スコアを保持する Sorted Set のキーを返します。
// Key: woodblock:leaderboard, Member: userID, Score: 最高スコア
func BuildLeaderboardKey() string {
	return keyPrefix + ":leaderboard"
}

// BuildHighScoreKey はユーザーの最高スコアの付帯情報を保持する Hash のキーを返します。
// Key: woodblock:highscore:{userID}, Fields: score, achieved_at
func BuildHighScoreKey(userID string) string {
	return fmt.Sprintf("%s:highscore:%s", keyPrefix, userID)
}
