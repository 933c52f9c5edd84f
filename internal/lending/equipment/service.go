package equipment

import (
	"context"
	"database/sql"
	"errors"

	mysql "github.com/go-sql-driver/mysql"

	"SELP-backend/internal/platform/apierr"
)

type Service struct {
	store ItemStore
}

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

func (s *Service) Create(ctx context.Context, in CreateEquipmentRequest) (*EquipmentResponse, error) {
	if in.Name == "" {
		return nil, apierr.ErrInvalid("name is required")
	}
	// 旧実装のデフォルトを踏襲: condition=Good, quantity=1
	cond := in.Condition
	if cond == "" {
		cond = "Good"
	}
	if !conditionValid(cond) {
		return nil, apierr.ErrInvalid("condition must be Excellent, Good, Fair or Poor")
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, apierr.ErrInvalid("quantity must be >= 1")
	}

	it := &Item{
		Name:        in.Name,
		Category:    in.Category,
		Condition:   cond,
		Quantity:    qty,
		Available:   qty, // 新規登録時は全数貸出可能
		Description: in.Description,
	}
	if in.ImageURL != nil && *in.ImageURL != "" {
		it.ImageURL = sql.NullString{String: *in.ImageURL, Valid: true}
	}

	id, err := s.store.Insert(ctx, it)
	if err != nil {
		return nil, err
	}
	it.ID = id

	created, err := s.store.GetByID(ctx, id)
	if err != nil {
		// INSERT直後なので通常来ない
		resp := buildResponse(it)
		return &resp, nil
	}
	resp := buildResponse(created)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*EquipmentResponse, error) {
	it, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("equipment not found")
		}
		return nil, err
	}
	resp := buildResponse(it)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]EquipmentResponse, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EquipmentResponse, 0, len(items))
	for i := range items {
		out = append(out, buildResponse(&items[i]))
	}
	return out, nil
}

// Update は部分更新。指定されなかったフィールドは既存値を維持する。
func (s *Service) Update(ctx context.Context, id int64, in UpdateEquipmentRequest) (*EquipmentResponse, error) {
	it, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("equipment not found")
		}
		return nil, err
	}

	if in.Name != nil {
		it.Name = *in.Name
	}
	if in.Category != nil {
		it.Category = *in.Category
	}
	if in.Condition != nil {
		it.Condition = *in.Condition
	}
	if in.Quantity != nil {
		it.Quantity = *in.Quantity
	}
	if in.Available != nil {
		it.Available = *in.Available
	}
	if in.Description != nil {
		it.Description = *in.Description
	}
	if in.ImageURL != nil {
		it.ImageURL = sql.NullString{String: *in.ImageURL, Valid: *in.ImageURL != ""}
	}

	if it.Name == "" {
		return nil, apierr.ErrInvalid("name is required")
	}
	if !conditionValid(it.Condition) {
		return nil, apierr.ErrInvalid("condition must be Excellent, Good, Fair or Poor")
	}
	if it.Quantity < 1 {
		return nil, apierr.ErrInvalid("quantity must be >= 1")
	}
	// マージ後に 0 <= available <= quantity を満たさない更新は拒否
	if it.Available < 0 || it.Available > it.Quantity {
		return nil, apierr.ErrInvalid("available must be between 0 and quantity")
	}

	n, err := s.store.Update(ctx, it)
	if err != nil {
		return nil, err
	}
	_ = n // available 等が同値でも成功扱い

	resp := buildResponse(it)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		var me *mysql.MySQLError
		// 1451: 貸出履歴から参照されている（履歴を孤児にしない）
		if errors.As(err, &me) && me.Number == 1451 {
			return apierr.ErrConflict("equipment is referenced by borrow requests")
		}
		return err
	}
	if n == 0 {
		return apierr.ErrNotFound("equipment not found")
	}
	return nil
}
