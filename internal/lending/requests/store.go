package requests

import (
	"context"
	"database/sql"
	"errors"

	"SELP-backend/internal/platform/apierr"
	"SELP-backend/internal/platform/db"
)

type RequestStore interface {
	Insert(ctx context.Context, r *Request) (int64, error)
	GetByID(ctx context.Context, id int64) (*Request, error)
	GetByULID(ctx context.Context, ulid string) (*Request, error)
	ListAll(ctx context.Context) ([]Request, error)
	ListByUser(ctx context.Context, userID int64) ([]Request, error)
	EquipmentAvailable(ctx context.Context, equipmentID int64) (int, error)
	Transition(ctx context.Context, id int64, from, to Status, actorID int64) (*Request, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) RequestStore { return &Store{db: conn} }

func (s *Store) Insert(ctx context.Context, r *Request) (int64, error) {
	const q = `
	INSERT INTO requests
	(request_ulid, user_id, equipment_id, quantity, borrow_from, borrow_to, notes, status, created_at)
	VALUES
	(?, ?, ?, ?, ?, ?, ?, 'pending', NOW(6))`
	res, err := s.db.ExecContext(ctx, q,
		r.RequestULID, r.UserID, r.EquipmentID, r.Quantity,
		r.BorrowFrom.Format(dateLayout), r.BorrowTo.Format(dateLayout), r.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const requestColumns = `r.id, r.request_ulid, r.user_id, r.equipment_id, r.quantity,
	r.borrow_from, r.borrow_to, r.notes, r.status, r.acted_by, r.acted_at, r.created_at`

func scanRequest(row *sql.Row) (*Request, error) {
	var r Request
	err := row.Scan(
		&r.ID, &r.RequestULID, &r.UserID, &r.EquipmentID, &r.Quantity,
		&r.BorrowFrom, &r.BorrowTo, &r.Notes, &r.Status, &r.ActedBy, &r.ActedAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// getRequestTx は Tx の内外どちらからでも使えるように DBTX を取る
func getRequestTx(ctx context.Context, q db.DBTX, id int64, forUpdate bool) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests r WHERE r.id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	r, err := scanRequest(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("request not found")
	}
	return r, err
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Request, error) {
	return getRequestTx(ctx, s.db, id, false)
}

func (s *Store) GetByULID(ctx context.Context, ulid string) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests r WHERE r.request_ulid = ?`
	r, err := scanRequest(s.db.QueryRowContext(ctx, query, ulid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.ErrNotFound("request not found")
	}
	return r, err
}

func (s *Store) listQuery(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var r Request
		if err := rows.Scan(
			&r.ID, &r.RequestULID, &r.UserID, &r.EquipmentID, &r.Quantity,
			&r.BorrowFrom, &r.BorrowTo, &r.Notes, &r.Status, &r.ActedBy, &r.ActedAt, &r.CreatedAt,
			&r.Username, &r.UserName, &r.EquipmentName,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListAll はスタッフ/管理者向け。表示用にユーザー名・機材名をJOINする。
func (s *Store) ListAll(ctx context.Context) ([]Request, error) {
	query := `SELECT ` + requestColumns + `,
	u.username, u.name, e.name
	FROM requests r
	JOIN users u ON r.user_id = u.id
	JOIN equipment e ON r.equipment_id = e.id
	ORDER BY r.created_at DESC`
	return s.listQuery(ctx, query)
}

func (s *Store) ListByUser(ctx context.Context, userID int64) ([]Request, error) {
	query := `SELECT ` + requestColumns + `,
	u.username, u.name, e.name
	FROM requests r
	JOIN users u ON r.user_id = u.id
	JOIN equipment e ON r.equipment_id = e.id
	WHERE r.user_id = ?
	ORDER BY r.created_at DESC`
	return s.listQuery(ctx, query, userID)
}

func (s *Store) EquipmentAvailable(ctx context.Context, equipmentID int64) (int, error) {
	const q = `SELECT available FROM equipment WHERE id = ?`
	var n int
	if err := s.db.QueryRowContext(ctx, q, equipmentID).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apierr.ErrNotFound("equipment not found")
		}
		return 0, err
	}
	return n, nil
}

// Transition は状態遷移と在庫調整を1トランザクションで行う。
//   - 行ロック → 現在状態の確認 → 在庫調整 → 状態更新
//   - approved への遷移は available >= quantity を条件付きUPDATEで保証する。
//     満たせなければ CONFLICT、申請は pending のまま。
func (s *Store) Transition(ctx context.Context, id int64, from, to Status, actorID int64) (*Request, error) {
	var out *Request
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		r, err := getRequestTx(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if r.Status != from {
			return apierr.ErrConflict("invalid status transition")
		}

		switch to {
		case StatusApproved:
			res, err := tx.ExecContext(ctx,
				`UPDATE equipment SET available = available - ? WHERE id = ? AND available >= ?`,
				r.Quantity, r.EquipmentID, r.Quantity)
			if err != nil {
				return err
			}
			if aff, _ := res.RowsAffected(); aff != 1 {
				return apierr.ErrConflict("insufficient availability")
			}
		case StatusReturned:
			// 申請時の数量で戻す。貸出中に総数を減らされた場合でも
			// 0 <= available <= quantity を壊さないよう上限は quantity。
			if _, err := tx.ExecContext(ctx,
				`UPDATE equipment SET available = LEAST(quantity, available + ?) WHERE id = ?`,
				r.Quantity, r.EquipmentID); err != nil {
				return err
			}
		case StatusRejected:
			// 在庫への副作用なし
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE requests SET status = ?, acted_by = ?, acted_at = NOW(6) WHERE id = ?`,
			string(to), actorID, id); err != nil {
			return err
		}

		out, err = getRequestTx(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
