package models

import (
	"time"
)

// Result はresultsテーブルの1レコード（1ゲーム分の確定スコア）に対応する構造体です。
type Result struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"` // UUID
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// ResultResponse はリーダーボード用の構造体です。
// ユーザーごとの最高スコアを1件にまとめ、順位を付けたものです。
type ResultResponse struct {
	UserID     string    `json:"user_id"`
	Score      int       `json:"score"`
	AchievedAt time.Time `json:"achieved_at"` // 最高スコアを最初に記録した日時
	Rank       int       `json:"rank"`        // 1始まりの順位
}
