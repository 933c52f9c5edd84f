// Package contributors は貢献者クレジットの一覧と一括置換を提供する。
// 個別編集はなく、常にリスト全体を delete-then-insert で置き換える。
package contributors

import (
	"context"
	"database/sql"

	"SELP-backend/internal/platform/db"
)

type Contributor struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Roll         string `json:"roll"`
	Contribution string `json:"contribution"`
}

type ContributorStore interface {
	List(ctx context.Context) ([]Contributor, error)
	Replace(ctx context.Context, list []Contributor) ([]Contributor, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) ContributorStore { return &Store{db: conn} }

func (s *Store) List(ctx context.Context) ([]Contributor, error) {
	const q = `SELECT id, name, roll, contribution FROM contributors ORDER BY id`
	var out []Contributor
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c Contributor
			if err := rows.Scan(&c.ID, &c.Name, &c.Roll, &c.Contribution); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Replace は全削除→全挿入を1トランザクションで行う（差分マージはしない）
func (s *Store) Replace(ctx context.Context, list []Contributor) ([]Contributor, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM contributors`); err != nil {
			return err
		}
		for _, c := range list {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO contributors (name, roll, contribution) VALUES (?, ?, ?)`,
				c.Name, c.Roll, c.Contribution); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx)
}

type Service struct {
	store ContributorStore
}

func NewService(conn *sql.DB) *Service { return &Service{store: NewStore(conn)} }

func (s *Service) List(ctx context.Context) ([]Contributor, error) {
	return s.store.List(ctx)
}

func (s *Service) Replace(ctx context.Context, list []Contributor) ([]Contributor, error) {
	if list == nil {
		list = []Contributor{}
	}
	return s.store.Replace(ctx, list)
}
