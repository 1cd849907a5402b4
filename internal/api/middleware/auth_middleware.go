package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DebugUserHeader は BYPASS_AUTH 有効時にユーザーIDを固定するためのヘッダーです。
const DebugUserHeader = "X-Debug-User"

// ErrInvalidToken はJWTの検証に失敗した場合のエラーです。
var ErrInvalidToken = errors.New("invalid token")

type UserIDKey struct{}

// GetUserIDFromContext retrieves the user ID from the context.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey{}).(string)
	return userID, ok
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey{}, userID)
}

// writeJSONError writes a JSON error response
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Authenticator はHS256で署名されたJWTを検証し、'sub' クレームをユーザーIDとして扱います。
type Authenticator struct {
	secret []byte
	bypass bool
	logger *zap.Logger
}

// NewAuthenticator は新しい Authenticator を返します。
// bypass が true の場合はトークンを検証せず、開発用のユーザーIDを発行します。
func NewAuthenticator(secret string, bypass bool, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{secret: []byte(secret), bypass: bypass, logger: logger.Named("AuthMiddleware")}
}

// BypassEnabled は認証バイパスが有効かどうかを返します。
func (a *Authenticator) BypassEnabled() bool {
	return a.bypass
}

// BypassUserID はバイパス時に使うユーザーIDを返します。requested が空ならランダムなUUIDです。
func (a *Authenticator) BypassUserID(requested string) string {
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested
	}
	return uuid.New().String()
}

// ParseToken はトークン（"Bearer " 接頭辞は任意）を検証し、ユーザーIDを返します。
func (a *Authenticator) ParseToken(tokenString string) (string, error) {
	tokenString = strings.TrimPrefix(strings.TrimSpace(tokenString), "Bearer ")
	if tokenString == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	if len(a.secret) == 0 {
		return "", errors.New("server configuration error: JWT secret missing")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// アルゴリズムがHMACであることを確認
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	// ユーザーIDは 'sub' (Subject) クレームに格納されている
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: missing user ID", ErrInvalidToken)
	}
	return userID, nil
}

// Middleware is a middleware function that checks for a valid JWT token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.bypass {
			userID := a.BypassUserID(r.Header.Get(DebugUserHeader))
			a.logger.Debug("BYPASS_AUTH enabled", zap.String("user_id", userID))
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSONError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "Invalid Authorization header format. Must be 'Bearer <token>'")
			return
		}

		userID, err := a.ParseToken(authHeader)
		if err != nil {
			a.logger.Info("rejected request", zap.String("path", r.URL.Path), zap.Error(err))
			if errors.Is(err, ErrInvalidToken) {
				writeJSONError(w, http.StatusUnauthorized, "Invalid token")
			} else {
				writeJSONError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}
