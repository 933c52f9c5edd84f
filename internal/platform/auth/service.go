package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"SELP-backend/internal/platform/apierr"
	"SELP-backend/internal/platform/mail"
	"SELP-backend/internal/platform/metrics"
	"SELP-backend/internal/platform/roles"
)

const bcryptCost = 10

type Service struct {
	store    AccountStore
	secret   []byte
	ttl      time.Duration
	sessions Revoker
	mailer   mail.Mailer
}

// Revoker はログアウト時の失効リスト登録。nil 許容（失効なし運用）。
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *UserSummary, error)
	Signup(ctx context.Context, in SignupInput) (*UserSummary, error)
	Logout(ctx context.Context, jti string, remaining time.Duration) error
}

type SignupInput struct {
	Name     string
	Username string
	Password string
	Role     string
	RollNo   string
}

func NewService(db *sql.DB, secret []byte, ttl time.Duration, sessions Revoker, mailer mail.Mailer) *Service {
	return &Service{
		store:    NewStore(db),
		secret:   secret,
		ttl:      ttl,
		sessions: sessions,
		mailer:   mailer,
	}
}

// normalizeUsername: NFKC正規化。全角英数などの見かけ違いで
// UNIQUE制約をすり抜けるのを防ぐ。
func normalizeUsername(u string) string {
	return norm.NFKC.String(strings.TrimSpace(u))
}

func (s *Service) Login(ctx context.Context, username, password string) (string, *UserSummary, error) {
	acct, err := s.store.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		return "", nil, err
	}
	// 未登録でもハッシュ不一致でも同じ応答（ユーザー列挙をさせない）
	if acct == nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		return "", nil, apierr.ErrUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		return "", nil, apierr.ErrUnauthorized("invalid credentials")
	}

	summary := &UserSummary{
		ID:       acct.ID,
		Username: acct.Username,
		Role:     roles.Role(acct.Role),
		Name:     acct.Name,
	}
	token, err := IssueToken(s.secret, s.ttl, *summary)
	if err != nil {
		return "", nil, err
	}
	metrics.Logins.WithLabelValues("success").Inc()
	return token, summary, nil
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*UserSummary, error) {
	username := normalizeUsername(in.Username)
	if username == "" || in.Password == "" {
		return nil, apierr.ErrInvalid("username, password and role required")
	}
	role, ok := roles.Parse(in.Role)
	if !ok {
		return nil, apierr.ErrInvalid("role must be admin, staff or student")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	id, err := s.store.Insert(ctx, &Account{
		Username:     username,
		PasswordHash: string(hashed),
		Name:         in.Name,
		Role:         string(role),
		RollNo:       in.RollNo,
	})
	if err != nil {
		// 一意制約が正: 事前チェックは競合に勝てない
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			metrics.Signups.WithLabelValues("conflict").Inc()
			return nil, apierr.ErrConflict("username already exists")
		}
		return nil, err
	}

	summary := &UserSummary{ID: id, Username: username, Role: role, Name: in.Name}

	// ウェルカムメールは fire-and-forget。失敗してもサインアップは成立。
	if s.mailer != nil {
		go func(u UserSummary) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.mailer.SendWelcomeEmail(ctx, u.Username, u.Name); err != nil {
				log.Printf("[WARN] mail: welcome email for %s failed: %v", u.Username, err)
			}
		}(*summary)
	}

	metrics.Signups.WithLabelValues("success").Inc()
	return summary, nil
}

func (s *Service) Logout(ctx context.Context, jti string, remaining time.Duration) error {
	if s.sessions == nil || jti == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, jti, remaining)
}
