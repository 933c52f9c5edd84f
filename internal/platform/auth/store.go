package auth

import (
	"context"
	"database/sql"
	"errors"
)

type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Name         string
	Role         string
	RollNo       string
	CreatedAt    string
	LastSeenAt   sql.NullTime
}

type AccountStore interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Insert(ctx context.Context, a *Account) (int64, error)
	TouchSeen(ctx context.Context, id int64) error
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore {
	return &Store{db: db}
}

// GetByUsername は該当なしのとき (nil, nil) を返す
func (s *Store) GetByUsername(ctx context.Context, username string) (*Account, error) {
	const q = `
SELECT id, username, password_hash, name, role, roll_no, created_at, last_seen_at
FROM users
WHERE username = ?
LIMIT 1
`
	var a Account
	err := s.db.QueryRowContext(ctx, q, username).Scan(
		&a.ID,
		&a.Username,
		&a.PasswordHash,
		&a.Name,
		&a.Role,
		&a.RollNo,
		&a.CreatedAt,
		&a.LastSeenAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Insert は重複ユーザー名のとき MySQL の 1062 をそのまま返す（呼び出し側で CONFLICT に変換）
func (s *Store) Insert(ctx context.Context, a *Account) (int64, error) {
	const q = `
INSERT INTO users (username, password_hash, name, role, roll_no, created_at)
VALUES (?, ?, ?, ?, ?, NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, a.Username, a.PasswordHash, a.Name, a.Role, a.RollNo)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) TouchSeen(ctx context.Context, id int64) error {
	const q = `UPDATE users SET last_seen_at = NOW(6) WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, id)
	return err
}
