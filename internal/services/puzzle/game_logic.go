package puzzle

// プレイヤーが送信できるアクションです。
const (
	ActionSelect  = "select"   // スロットを選択する
	ActionPlace   = "place"    // 選択中（または slot 指定）のピースを (x, y) に配置する
	ActionRotate  = "rotate"   // 選択中のピースを回転する
	ActionHint    = "hint"     // 配置できる位置を問い合わせる
	ActionNewGame = "new_game" // 新しいゲームを開始する
)

// PlayerInputEvent はクライアントからの操作入力を表す構造体です。
// WebSocket または HTTP を通じてサーバーに送信されます。
// ドラッグ中の座標補正はクライアント側で行い、ここには確定した整数座標だけが届きます。
type PlayerInputEvent struct {
	SessionID string `json:"session_id,omitempty"` // 対象のセッションID（サーバー側で上書き）
	UserID    string `json:"user_id,omitempty"`    // 操作を行ったプレイヤーのID（サーバー側で上書き）
	Action    string `json:"action"`               // "select", "place", "rotate", "hint", "new_game"
	Slot      *int   `json:"slot,omitempty"`       // select / place で使うトレイのスロット
	X         int    `json:"x"`                    // place で使うボード上のX座標
	Y         int    `json:"y"`                    // place で使うボード上のY座標
}

// InputResult は ApplyPlayerInput の結果です。
type InputResult struct {
	Action    string           `json:"action"`
	Changed   bool             `json:"changed"`             // セッションの状態が変化したか
	Placement *PlacementResult `json:"placement,omitempty"` // place の結果
	Hint      *Hint            `json:"hint,omitempty"`      // hint の結果（見つからなければ nil）
	Error     string           `json:"error,omitempty"`     // 不明なアクションなどの説明
}

// ApplyPlayerInput はプレイヤーの入力（アクション）に基づいてゲーム状態を更新します。
// 不正な入力はすべて Changed=false として報告され、状態は変化しません。
//
// Parameters:
//
//	session : 更新するゲームセッション
//	event   : プレイヤーの入力
//
// Returns:
//
//	InputResult: 適用結果
func ApplyPlayerInput(session *GameSession, event PlayerInputEvent) InputResult {
	result := InputResult{Action: event.Action}

	switch event.Action {
	case ActionSelect:
		if event.Slot == nil {
			result.Error = "slot is required"
			return result
		}
		result.Changed = session.SelectPiece(*event.Slot)
	case ActionPlace:
		// slot 付きの place はドラッグ&ドロップとして扱い、先に選択する
		if event.Slot != nil {
			if !session.SelectPiece(*event.Slot) {
				result.Placement = &PlacementResult{}
				return result
			}
			result.Changed = true
		}
		placement := session.AttemptPlacement(event.X, event.Y)
		result.Placement = &placement
		result.Changed = result.Changed || placement.Placed
	case ActionRotate:
		result.Changed = session.RotateSelected()
	case ActionHint:
		if hint, ok := session.FindHint(); ok {
			result.Hint = &hint
		}
	case ActionNewGame:
		session.Start()
		result.Changed = true
	default:
		result.Error = "unknown action: " + event.Action
	}
	return result
}
