package puzzle

import (
	"time"

	"go.uber.org/zap"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/models/puzzle"
)

// ゲーム全体のルールに関わる定数です。
const (
	TraySize      = 3   // トレイのスロット数
	PointsPerCell = 10  // 配置したピースの1マスあたりの得点
	PointsPerLine = 100 // クリアした行または列1本あたりの得点
	noSelection   = -1
)

// Status はゲームセッションの状態です。
type Status string

const (
	StatusActive   Status = "active"    // プレイ中
	StatusGameOver Status = "game_over" // どのピースも置けなくなった（終端状態）
)

// GameSession は単一プレイヤーのパズル状態を所有するステートマシンです。
// ボード、トレイ、スコアはこのセッションだけが保持し、他のセッションと共有されません。
// 内部でロックは取りません。並行アクセスの直列化は呼び出し側（SessionManager）の責務です。
type GameSession struct {
	ID           string                   `json:"id"`
	UserID       string                   `json:"user_id"`
	Board        puzzle.Board             `json:"board"`
	Tray         [TraySize]*puzzle.Piece  `json:"tray"`
	Score        int                      `json:"score"`
	HighScore    int                      `json:"high_score"`
	LinesCleared int                      `json:"lines_cleared"`
	Status       Status                   `json:"status"`
	StartedAt    time.Time                `json:"started_at"`
	EndedAt      time.Time                `json:"ended_at,omitempty"`
	selected     int                      // 選択中のスロット（noSelection なら未選択）
	factory      *PieceFactory            // トレイ補充用のピース生成器
	highScores   HighScoreStore           // ハイスコアの永続化先
	logger       *zap.Logger
}

// PlacementResult は AttemptPlacement の結果です。
type PlacementResult struct {
	Placed          bool  `json:"placed"`
	GameOver        bool  `json:"game_over"`
	PlacementPoints int   `json:"placement_points"`
	ClearPoints     int   `json:"clear_points"`
	ClearedRows     []int `json:"cleared_rows,omitempty"`
	ClearedCols     []int `json:"cleared_cols,omitempty"`
	Refilled        bool  `json:"refilled"`
}

// NewGameSession は新しいゲームセッションを作成し、すぐに新規ゲームを開始します。
//
// Parameters:
//
//	id         : セッションID
//	userID     : プレイヤーのユーザーID
//	factory    : トレイ補充に使うピース生成器
//	highScores : ハイスコアの読み書き先（nil ならメモリ上のみ）
//	logger     : ロガー（nil なら出力しない）
func NewGameSession(id, userID string, factory *PieceFactory, highScores HighScoreStore, logger *zap.Logger) *GameSession {
	if factory == nil {
		factory = NewTimeSeededPieceFactory()
	}
	if highScores == nil {
		highScores = &MemoryHighScore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &GameSession{
		ID:         id,
		UserID:     userID,
		factory:    factory,
		highScores: highScores,
		logger:     logger,
	}
	s.Start()
	return s
}

// Start はボード、スコア、トレイを初期状態に戻して新しいゲームを開始します。
// ハイスコアはこの時点で永続化先から読み込みます。
func (s *GameSession) Start() {
	s.Board = puzzle.NewBoard()
	s.Score = 0
	s.LinesCleared = 0
	s.Status = StatusActive
	s.selected = noSelection
	s.StartedAt = time.Now()
	s.EndedAt = time.Time{}
	s.HighScore = s.highScores.ReadHighScore()
	s.refillTray()
	s.logger.Debug("new game started", zap.String("session_id", s.ID), zap.Int("high_score", s.HighScore))
}

// refillTray はトレイの3スロットすべてに新しいピースを補充します。
func (s *GameSession) refillTray() {
	for i, p := range s.factory.Generate(TraySize) {
		piece := p
		s.Tray[i] = &piece
	}
}

// IsGameOver はセッションが終端状態かどうかを返します。
func (s *GameSession) IsGameOver() bool {
	return s.Status == StatusGameOver
}

// SelectPiece は次の配置対象となるトレイのスロットを選択します。
// スロットが範囲外、空、またはゲームオーバーの場合は何もせず false を返します。
func (s *GameSession) SelectPiece(slot int) bool {
	if s.IsGameOver() || slot < 0 || slot >= TraySize || s.Tray[slot] == nil {
		return false
	}
	s.selected = slot
	return true
}

// SelectedSlot は選択中のスロットを返します。未選択なら false です。
func (s *GameSession) SelectedSlot() (int, bool) {
	if s.selected == noSelection {
		return 0, false
	}
	return s.selected, true
}

// RotateSelected は選択中のピースの形状を時計回りに90度回転させます。
// ボードやスコアには影響しません。未選択の場合は false を返します。
func (s *GameSession) RotateSelected() bool {
	slot, ok := s.SelectedSlot()
	if !ok || s.IsGameOver() || s.Tray[slot] == nil {
		return false
	}
	s.Tray[slot].Shape = puzzle.Rotate(s.Tray[slot].Shape)
	return true
}

// AttemptPlacement は選択中のピースを原点 (x, y) に配置しようとします。
//
// 配置できた場合は次の順に処理します:
//  1. ボードに固定し、マス数×10点を加算してスロットを空にする
//  2. トレイがすべて空になったら3個補充する
//  3. 揃った行と列をクリアし、本数×100点を加算する
//  4. どのピースも置けなければゲームオーバーにしてハイスコアを更新する
//
// 配置できない場合は状態を一切変更せず Placed=false を返します。
func (s *GameSession) AttemptPlacement(x, y int) PlacementResult {
	var result PlacementResult
	slot, ok := s.SelectedSlot()
	if !ok || s.IsGameOver() {
		return result
	}
	piece := s.Tray[slot]
	if piece == nil || !s.Board.CanPlace(x, y, piece.Shape) {
		return result
	}
	if err := s.Board.Place(x, y, piece.Shape, piece.Color); err != nil {
		// CanPlace 済みなので通常は起こらない（空の色トークンのみ）
		s.logger.Warn("placement rejected by board", zap.String("session_id", s.ID), zap.Error(err))
		return result
	}
	result.Placed = true
	result.PlacementPoints = PointsPerCell * piece.Shape.CellCount()
	s.Score += result.PlacementPoints
	s.Tray[slot] = nil
	s.selected = noSelection

	if s.trayEmpty() {
		s.refillTray()
		result.Refilled = true
	}

	rows, cols := s.Board.DetectFullLines()
	if cleared := len(rows) + len(cols); cleared > 0 {
		s.Board.Clear(rows, cols)
		result.ClearedRows = rows
		result.ClearedCols = cols
		result.ClearPoints = PointsPerLine * cleared
		s.Score += result.ClearPoints
		s.LinesCleared += cleared
	}

	if s.checkGameOver() {
		result.GameOver = true
	}
	return result
}

// FindHint は現在のトレイとボードから最初に配置できる位置を返します。
func (s *GameSession) FindHint() (Hint, bool) {
	return FindHint(&s.Board, s.Tray[:])
}

// trayEmpty はトレイのスロットがすべて空かどうかを返します。
func (s *GameSession) trayEmpty() bool {
	for _, p := range s.Tray {
		if p != nil {
			return false
		}
	}
	return true
}

// checkGameOver はトレイに残っているどのピースも置けない場合にゲームオーバーへ遷移させます。
// 遷移時にスコアがハイスコアを超えていれば永続化先に書き込みます。
func (s *GameSession) checkGameOver() bool {
	for _, p := range s.Tray {
		if p != nil && s.Board.HasAnyLegalPlacement(p.Shape) {
			return false
		}
	}
	s.Status = StatusGameOver
	s.selected = noSelection
	s.EndedAt = time.Now()
	if s.Score > s.HighScore {
		s.HighScore = s.Score
		s.highScores.WriteHighScore(s.Score)
	}
	s.logger.Info("game over",
		zap.String("session_id", s.ID),
		zap.String("user_id", s.UserID),
		zap.Int("score", s.Score),
		zap.Int("lines_cleared", s.LinesCleared),
	)
	return true
}

// Snapshot はレンダラー向けの読み取り専用ビューを返します。
func (s *GameSession) Snapshot() *GameSnapshot {
	snap := &GameSnapshot{
		ID:           s.ID,
		UserID:       s.UserID,
		Board:        s.Board,
		SelectedSlot: s.selected,
		Score:        s.Score,
		HighScore:    s.HighScore,
		LinesCleared: s.LinesCleared,
		Status:       s.Status,
		StartedAt:    s.StartedAt,
		EndedAt:      s.EndedAt,
	}
	for i, p := range s.Tray {
		if p != nil {
			snap.Tray[i] = p.Clone()
		}
	}
	return snap
}

// GameSnapshot はクライアントに送信する軽量なゲーム状態です。
// 空のスロットは null としてシリアライズされます。
type GameSnapshot struct {
	ID           string                  `json:"id"`
	UserID       string                  `json:"user_id"`
	Board        puzzle.Board            `json:"board"`
	Tray         [TraySize]*puzzle.Piece `json:"tray"`
	SelectedSlot int                     `json:"selected_slot"` // -1 なら未選択
	Score        int                     `json:"score"`
	HighScore    int                     `json:"high_score"`
	LinesCleared int                     `json:"lines_cleared"`
	Status       Status                  `json:"status"`
	StartedAt    time.Time               `json:"started_at"`
	EndedAt      time.Time               `json:"ended_at,omitempty"`
}
