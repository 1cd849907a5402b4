package puzzle

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// ErrSessionNotFound は指定されたセッションが存在しない場合のエラーです。
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionForbidden は他のユーザーのセッションを操作しようとした場合のエラーです。
	ErrSessionForbidden = errors.New("session belongs to another user")
)

// サーバーからクライアントへ送るメッセージの種類です。
const (
	MessageTypeState    = "state"
	MessageTypeHint     = "hint"
	MessageTypeGameOver = "game_over"
	MessageTypeError    = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 300 * time.Second
	pingPeriod     = 60 * time.Second
	maxMessageSize = 1024
	sendBufferSize = 64
)

// ServerMessage は WebSocket でクライアントに送信するメッセージです。
type ServerMessage struct {
	Type   string        `json:"type"`
	State  *GameSnapshot `json:"state,omitempty"`
	Result *InputResult  `json:"result,omitempty"`
	Hint   *Hint         `json:"hint,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Client はWebSocket接続を持つ単一のクライアントを表します。
type Client struct {
	UserID    string          // このクライアントに紐づくユーザーのID
	SessionID string          // このクライアントが操作しているセッションのID
	Conn      *websocket.Conn // クライアントとの実際のWebSocketコネクション
	Send      chan []byte     // クライアントへメッセージを送信するためのバッファ付きチャネル
	closed    bool
	mu        sync.Mutex
}

// SafeSend は安全にチャネルにメッセージを送信します（closedチェック付き）
func (c *Client) SafeSend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Send <- message:
		return true
	default:
		return false // チャネルがフル
	}
}

// SafeClose は安全にチャネルを閉じます
func (c *Client) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// managedSession は GameSession とその排他制御、接続中のクライアントをまとめたものです。
type managedSession struct {
	mu         sync.Mutex
	game       *GameSession
	lastActive time.Time
	client     *Client
	ended      bool // EndSession または放置による破棄が済んでいる
}

// SessionManagerConfig は SessionManager の設定です。
type SessionManagerConfig struct {
	IdleTimeout time.Duration        // クライアント未接続のまま放置されたセッションを破棄するまでの時間（0 なら破棄しない）
	HighScores  HighScoreProvider    // ユーザーごとのハイスコア保存先（nil ならメモリ上）
	NewFactory  func() *PieceFactory // セッションごとのピース生成器（nil なら時刻シード）
	Logger      *zap.Logger
}

// SessionManager はゲームセッションとWebSocketクライアント接続の全体を管理します。
// これはアプリケーション内でシングルトンとして動作することが想定されます。
type SessionManager struct {
	sessions   map[string]*managedSession // sessionID -> セッション
	register   chan *Client               // 新しいクライアント接続の登録リクエスト用チャネル
	unregister chan *Client               // クライアント切断の登録解除リクエスト用チャネル
	quit       chan struct{}              // シャットダウン用チャネル
	done       chan struct{}              // Run の終了通知
	closeOnce  sync.Once
	mu         sync.RWMutex // sessions マップへのアクセスを保護するためのRWMutex

	idleTimeout time.Duration
	highScores  HighScoreProvider
	newFactory  func() *PieceFactory
	logger      *zap.Logger
}

// NewSessionManager は新しい SessionManager インスタンスを作成し、そのメインイベントループをバックグラウンドで開始します。
func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	if cfg.HighScores == nil {
		memory := &sync.Map{}
		cfg.HighScores = func(userID string) HighScoreStore {
			store, _ := memory.LoadOrStore(userID, &MemoryHighScore{})
			return store.(*MemoryHighScore)
		}
	}
	if cfg.NewFactory == nil {
		cfg.NewFactory = NewTimeSeededPieceFactory
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	sm := &SessionManager{
		sessions:    make(map[string]*managedSession),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		idleTimeout: cfg.IdleTimeout,
		highScores:  cfg.HighScores,
		newFactory:  cfg.NewFactory,
		logger:      cfg.Logger.Named("SessionManager"),
	}
	go sm.Run()
	return sm
}

// Run は SessionManager のメインイベントループです。
// クライアントの登録/解除と放置セッションの破棄を処理します。
// WebSocket からの入力は readPump がセッション単位のロックで直接適用するため、ここでは扱いません。
func (sm *SessionManager) Run() {
	defer close(sm.done)

	var reap <-chan time.Time
	if sm.idleTimeout > 0 {
		ticker := time.NewTicker(reapInterval(sm.idleTimeout))
		defer ticker.Stop()
		reap = ticker.C
	}

	for {
		select {
		case client := <-sm.register:
			sm.attachClient(client)

		case client := <-sm.unregister:
			sm.detachClient(client)

		case now := <-reap:
			sm.reapIdle(now)

		case <-sm.quit:
			sm.logger.Info("shutdown signal received, stopping main loop")
			return
		}
	}
}

func reapInterval(idle time.Duration) time.Duration {
	interval := idle / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	return interval
}

// CreateSession は新しいゲームセッションを作成し、そのIDを返します。
func (sm *SessionManager) CreateSession(userID string) string {
	sessionID := uuid.New().String()
	game := NewGameSession(sessionID, userID, sm.newFactory(), sm.highScores(userID), sm.logger)

	sm.mu.Lock()
	sm.sessions[sessionID] = &managedSession{game: game, lastActive: time.Now()}
	sm.mu.Unlock()

	sm.logger.Info("session created", zap.String("session_id", sessionID), zap.String("user_id", userID))
	return sessionID
}

// lookup はセッションを取得し、所有者を確認します。
func (sm *SessionManager) lookup(sessionID, userID string) (*managedSession, error) {
	sm.mu.RLock()
	ms, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if ms.game.UserID != userID {
		return nil, ErrSessionForbidden
	}
	return ms, nil
}

// GetSnapshot は指定されたセッションの現在の状態を返します。
func (sm *SessionManager) GetSnapshot(sessionID, userID string) (*GameSnapshot, error) {
	ms, err := sm.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.game.Snapshot(), nil
}

// Apply はプレイヤーの入力をセッションに適用し、結果と適用後の状態を返します。
// 接続中のクライアントがあれば結果をプッシュします。
//
// Parameters:
//
//	sessionID : 対象のセッションID
//	userID    : 操作を行うユーザーID（セッションの所有者である必要があります）
//	event     : プレイヤーの入力
//
// Returns:
//
//	InputResult  : 入力の適用結果
//	*GameSnapshot: 適用後のゲーム状態
//	error        : ErrSessionNotFound または ErrSessionForbidden
func (sm *SessionManager) Apply(sessionID, userID string, event PlayerInputEvent) (InputResult, *GameSnapshot, error) {
	ms, err := sm.lookup(sessionID, userID)
	if err != nil {
		return InputResult{}, nil, err
	}
	event.SessionID = sessionID
	event.UserID = userID

	ms.mu.Lock()
	result := ApplyPlayerInput(ms.game, event)
	snapshot := ms.game.Snapshot()
	ms.lastActive = time.Now()
	client := ms.client
	ms.mu.Unlock()

	if client != nil {
		sm.push(client, messageFor(result, snapshot))
	}
	return result, snapshot, nil
}

// messageFor は入力結果に応じてクライアントに送るメッセージを組み立てます。
func messageFor(result InputResult, snapshot *GameSnapshot) ServerMessage {
	msg := ServerMessage{Type: MessageTypeState, State: snapshot, Result: &result}
	switch {
	case result.Error != "":
		msg.Type = MessageTypeError
		msg.Error = result.Error
	case result.Action == ActionHint:
		msg.Type = MessageTypeHint
		msg.Hint = result.Hint
	case result.Placement != nil && result.Placement.GameOver:
		msg.Type = MessageTypeGameOver
	}
	return msg
}

// push はメッセージをシリアライズしてクライアントの送信キューに積みます。
func (sm *SessionManager) push(client *Client, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		sm.logger.Error("failed to marshal server message", zap.String("session_id", client.SessionID), zap.Error(err))
		return
	}
	if !client.SafeSend(data) {
		sm.logger.Warn("failed to send to client (channel closed or full)",
			zap.String("session_id", client.SessionID),
			zap.String("user_id", client.UserID),
		)
	}
}

// RegisterClient は新しいWebSocketクライアントをセッションに登録します。
// 既に接続中のクライアントがあれば置き換えます。
func (sm *SessionManager) RegisterClient(sessionID, userID string, conn *websocket.Conn) error {
	if _, err := sm.lookup(sessionID, userID); err != nil {
		return err
	}

	client := &Client{
		UserID:    userID,
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, sendBufferSize),
	}

	select {
	case sm.register <- client:
	case <-sm.quit:
		conn.Close()
		return errors.New("session manager is shut down")
	}

	go sm.readPump(client)
	go client.writePump(sm.logger)
	return nil
}

// attachClient はクライアントをセッションに紐づけ、現在の状態を送信します。
func (sm *SessionManager) attachClient(client *Client) {
	sm.mu.RLock()
	ms, ok := sm.sessions[client.SessionID]
	sm.mu.RUnlock()
	if !ok {
		// 登録待ちの間にセッションが破棄された
		client.SafeClose()
		return
	}
	sm.attachTo(ms, client)
}

// attachTo は取得済みのセッションにクライアントを紐づけます。
// セッションが既に破棄されていればクライアントを閉じます。
func (sm *SessionManager) attachTo(ms *managedSession, client *Client) {
	ms.mu.Lock()
	if ms.ended {
		ms.mu.Unlock()
		sm.logger.Info("session ended before client was attached", zap.String("session_id", client.SessionID))
		client.SafeClose()
		return
	}
	previous := ms.client
	ms.client = client
	ms.lastActive = time.Now()
	snapshot := ms.game.Snapshot()
	ms.mu.Unlock()

	if previous != nil {
		sm.logger.Info("replacing existing connection", zap.String("session_id", client.SessionID))
		previous.SafeClose()
	}
	sm.logger.Info("client registered", zap.String("session_id", client.SessionID), zap.String("user_id", client.UserID))
	sm.push(client, ServerMessage{Type: MessageTypeState, State: snapshot})
}

// detachClient は切断されたクライアントをセッションから外します。
func (sm *SessionManager) detachClient(client *Client) {
	client.SafeClose()

	sm.mu.RLock()
	ms, ok := sm.sessions[client.SessionID]
	sm.mu.RUnlock()
	if !ok {
		return
	}

	ms.mu.Lock()
	if ms.client == client {
		ms.client = nil
		ms.lastActive = time.Now()
	}
	ms.mu.Unlock()
	sm.logger.Info("client unregistered", zap.String("session_id", client.SessionID), zap.String("user_id", client.UserID))
}

// reapIdle はクライアントが接続されておらず、一定時間操作のないセッションを破棄します。
func (sm *SessionManager) reapIdle(now time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for id, ms := range sm.sessions {
		ms.mu.Lock()
		idle := ms.client == nil && now.Sub(ms.lastActive) >= sm.idleTimeout
		if idle {
			ms.ended = true
		}
		ms.mu.Unlock()
		if idle {
			delete(sm.sessions, id)
			sm.logger.Info("reaped idle session", zap.String("session_id", id))
		}
	}
}

// EndSession はセッションを破棄し、接続中のクライアントを切断します。
func (sm *SessionManager) EndSession(sessionID, userID string) error {
	ms, err := sm.lookup(sessionID, userID)
	if err != nil {
		return err
	}

	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	ms.mu.Lock()
	ms.ended = true
	client := ms.client
	ms.client = nil
	ms.mu.Unlock()
	if client != nil {
		client.SafeClose()
	}
	sm.logger.Info("session ended", zap.String("session_id", sessionID))
	return nil
}

// SessionCount は管理中のセッション数を返します。
func (sm *SessionManager) SessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// readPump はクライアントからのWebSocketメッセージを読み込み、セッションに適用します。
// 永続化などで1つのセッションの処理が遅れても、他のセッションやメインループは止まりません。
func (sm *SessionManager) readPump(client *Client) {
	logger := sm.logger.With(zap.String("session_id", client.SessionID), zap.String("user_id", client.UserID))
	defer func() {
		select {
		case sm.unregister <- client:
		case <-sm.quit:
			client.SafeClose()
		}
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket unexpected close", zap.Error(err))
			} else {
				logger.Debug("websocket closed", zap.Error(err))
			}
			return
		}
		if len(message) == 0 {
			continue
		}

		var event PlayerInputEvent
		if err := json.Unmarshal(message, &event); err != nil {
			logger.Warn("failed to unmarshal input message", zap.Error(err))
			sm.push(client, ServerMessage{Type: MessageTypeError, Error: "invalid message"})
			continue
		}
		// 接続に紐づく値で上書きする
		event.SessionID = client.SessionID
		event.UserID = client.UserID

		select {
		case <-sm.quit:
			return
		default:
		}
		if _, _, err := sm.Apply(client.SessionID, client.UserID, event); err != nil {
			logger.Warn("failed to apply websocket input", zap.Error(err))
			sm.push(client, ServerMessage{Type: MessageTypeError, Error: err.Error()})
			if errors.Is(err, ErrSessionNotFound) {
				// エラーを送り終えてから writePump が接続を閉じる
				client.SafeClose()
			}
		}
	}
}

// writePump は Client の Send チャネルからのメッセージをWebSocketコネクションに書き込みます。
// クライアントごとにこのゴルーチンが動作します。
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// マネージャーがチャネルを閉じた（切断、置き換え、セッション終了）
				c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("error writing message", zap.String("session_id", c.SessionID), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Shutdown はSessionManagerを安全にシャットダウンします。
// メインループの終了を待ち、全クライアントを切断してセッションを破棄します。
func (sm *SessionManager) Shutdown() {
	sm.closeOnce.Do(func() {
		sm.logger.Info("shutting down")
		close(sm.quit)
		<-sm.done

		sm.mu.Lock()
		for id, ms := range sm.sessions {
			ms.mu.Lock()
			if ms.client != nil {
				ms.client.SafeClose()
				ms.client.Conn.Close()
				ms.client = nil
			}
			ms.mu.Unlock()
			delete(sm.sessions, id)
		}
		sm.mu.Unlock()
		sm.logger.Info("shutdown complete")
	})
}
