package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store はログアウト済みトークンの失効リストを Redis に持つ。
// キーは JWT の jti、TTL はトークンの残り寿命に合わせる。
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func revokedKey(jti string) string { return fmt.Sprintf("portal:revoked:%s", jti) }
func lastSeenKey(uid int64) string { return fmt.Sprintf("portal:lastseen:%d", uid) }

func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// 期限切れ間際でも最低限は残す
		ttl = time.Minute
	}
	return s.rdb.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TouchAllowed は SetNX でスロットリングする。true のときだけ DB を叩いてよい。
func (s *Store) TouchAllowed(ctx context.Context, userID int64, throttle time.Duration) bool {
	ok, _ := s.rdb.SetNX(ctx, lastSeenKey(userID), "1", throttle).Result()
	return ok
}
