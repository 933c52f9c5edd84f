package auth

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"SELP-backend/internal/platform/roles"
	"SELP-backend/internal/platform/session"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"
	CtxRoleKey     = "role"
	CtxNameKey     = "name"
	CtxJTIKey      = "jti"
	CtxExpKey      = "token_exp"
)

// Actor は認証済みリクエストの操作主体
type Actor struct {
	ID       int64
	Username string
	Name     string
	Role     roles.Role
}

// ActorFrom は RequireAuth が詰めた値を取り出す
func ActorFrom(c *gin.Context) Actor {
	a := Actor{}
	if v, ok := c.Get(CtxUserIDKey); ok {
		a.ID, _ = v.(int64)
	}
	if v, ok := c.Get(CtxUsernameKey); ok {
		a.Username, _ = v.(string)
	}
	if v, ok := c.Get(CtxNameKey); ok {
		a.Name, _ = v.(string)
	}
	if v, ok := c.Get(CtxRoleKey); ok {
		if s, ok := v.(string); ok {
			a.Role = roles.Role(s)
		}
	}
	return a
}

// RevocationList はログアウト済みトークンの照会。nil 許容。
type RevocationList interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireAuth: Authorization: Bearer <token> を検証して context に主体情報を詰める
func RequireAuth(secret []byte, revoked RevocationList) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, err := ParseToken(secret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if revoked != nil && claims.ID != "" {
			// Redis障害時はフェイルオープン（可用性優先、ログだけ残す）
			if hit, err := revoked.IsRevoked(c.Request.Context(), claims.ID); err != nil {
				log.Printf("[WARN] auth: revocation check failed: %v", err)
			} else if hit {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUsernameKey, claims.Username)
		c.Set(CtxRoleKey, claims.Role)
		c.Set(CtxNameKey, claims.Name)
		c.Set(CtxJTIKey, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxExpKey, claims.ExpiresAt.Time)
		}
	}
}

// Chain は複数のミドルウェアを1つにまとめる。途中で Abort されたら打ち切る。
func Chain(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}

// RequireRole: 例) admin のみ許可したい時に RequireAuth の後段へ追加
func RequireRole(allowed ...roles.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxRoleKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		s, _ := v.(string)
		role, ok := roles.Parse(s)
		if !ok || !role.In(allowed...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}
}

// TouchLastSeen は認証済みユーザーの last_seen_at を SetNX スロットリング付きで更新する。
// 更新失敗はリクエストを止めない。
func TouchLastSeen(sess *session.Store, store AccountStore, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			return
		}
		uid, _ := v.(int64)
		if uid == 0 {
			return
		}
		if sess.TouchAllowed(c.Request.Context(), uid, throttle) {
			if err := store.TouchSeen(c.Request.Context(), uid); err != nil {
				log.Printf("[WARN] auth: touch last_seen for %d failed: %v", uid, err)
			}
		}
	}
}
