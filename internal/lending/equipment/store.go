package equipment

import (
	"context"
	"database/sql"
)

type ItemStore interface {
	Insert(ctx context.Context, it *Item) (int64, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	Update(ctx context.Context, it *Item) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) ItemStore { return &Store{db: db} }

// condition は MySQL の予約語なのでバッククォート必須

const itemColumns = "id, name, category, `condition`, quantity, available, description, image_url, created_at"

func scanItem(row *sql.Row) (*Item, error) {
	var it Item
	err := row.Scan(
		&it.ID, &it.Name, &it.Category, &it.Condition,
		&it.Quantity, &it.Available, &it.Description, &it.ImageURL, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Store) Insert(ctx context.Context, it *Item) (int64, error) {
	const q = "INSERT INTO equipment (name, category, `condition`, quantity, available, description, image_url, created_at)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?, NOW(6))"
	res, err := s.db.ExecContext(ctx, q,
		it.Name, it.Category, it.Condition, it.Quantity, it.Available, it.Description, it.ImageURL)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	q := "SELECT " + itemColumns + " FROM equipment WHERE id = ?"
	return scanItem(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) List(ctx context.Context) ([]Item, error) {
	q := "SELECT " + itemColumns + " FROM equipment ORDER BY id"
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.Name, &it.Category, &it.Condition,
			&it.Quantity, &it.Available, &it.Description, &it.ImageURL, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) Update(ctx context.Context, it *Item) (int64, error) {
	const q = "UPDATE equipment SET name=?, category=?, `condition`=?, quantity=?, available=?, description=?, image_url=? WHERE id=?"
	res, err := s.db.ExecContext(ctx, q,
		it.Name, it.Category, it.Condition, it.Quantity, it.Available, it.Description, it.ImageURL, it.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete は過去の貸出履歴から参照されている場合、FK制約で MySQL 1451 を返す
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	const q = `DELETE FROM equipment WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
