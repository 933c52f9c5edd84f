package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"SELP-backend/internal/platform/roles"
)

// UserSummary はトークンペイロードとレスポンスの user オブジェクト共通の形
type UserSummary struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Role     roles.Role `json:"role"`
	Name     string     `json:"name"`
}

type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken はHS256署名・8時間期限のトークンを発行する。jti は ULID。
func IssueToken(secret []byte, ttl time.Duration, u UserSummary) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     string(u.Role),
		Name:     u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken は署名・期限を検証して Claims を返す。
func ParseToken(secret []byte, raw string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		// alg 固定（none攻撃とか回避）
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || token == nil || !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return &claims, nil
}
