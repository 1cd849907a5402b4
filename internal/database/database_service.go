package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQLドライバー
	"go.uber.org/zap"
)

// schema はスコア保存に必要なテーブルとインデックスです。何度実行しても安全です。
const schema = `
CREATE TABLE IF NOT EXISTS results (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT        NOT NULL,
	score      INTEGER     NOT NULL CHECK (score >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS results_user_score_idx ON results (user_id, score DESC, created_at);
`

// DatabaseService はデータベース接続を保持し、スキーマ作成などの操作を提供します。
type DatabaseService struct {
	DB     *sql.DB
	logger *zap.Logger
}

// NewDatabaseService はデータベースに接続し、疎通を確認した DatabaseService を返します。
//
// Parameters:
//
//	ctx         : Ping に使うコンテキスト
//	databaseURL : postgres:// 形式の URL または key=value 形式の接続文字列
//	logger      : ロガー（nil なら出力しない）
func NewDatabaseService(ctx context.Context, databaseURL string, logger *zap.Logger) (*DatabaseService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("DatabaseService")
	logger.Info("connecting to database", connectionFields(databaseURL)...)

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("データベースへの接続オブジェクト作成に失敗しました: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベースのPingに失敗しました。接続情報やネットワークを確認してください: %w", err)
	}

	logger.Info("database connection established")
	return &DatabaseService{DB: db, logger: logger}, nil
}

// EnsureSchema は results テーブルを作成します（存在する場合は何もしません）。
func (s *DatabaseService) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("スキーマの作成に失敗しました: %w", err)
	}
	s.logger.Info("schema is up to date")
	return nil
}

// ServerVersion はデータベースのバージョン文字列を返します。migrate コマンドの接続確認に使います。
func (s *DatabaseService) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := s.DB.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("SELECT version() の実行に失敗しました: %w", err)
	}
	return version, nil
}

// Close はデータベース接続を閉じます。
func (s *DatabaseService) Close() error {
	return s.DB.Close()
}

// connectionFields は接続先をログに出すためのフィールドを返します。
// ユーザー名やパスワードは含めず、ホストとデータベース名だけを出力します。
func connectionFields(databaseURL string) []zap.Field {
	u, err := url.Parse(databaseURL)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		// key=value 形式の接続文字列は中身を出さない
		return []zap.Field{zap.String("dsn_format", "keyvalue")}
	}
	return []zap.Field{
		zap.String("host", u.Host),
		zap.String("database", strings.TrimPrefix(u.Path, "/")),
	}
}
