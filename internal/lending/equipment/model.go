package equipment

import (
	"database/sql"
	"time"
)

// Item は equipment テーブルの1行を表す
type Item struct {
	ID          int64
	Name        string
	Category    string
	Condition   string
	Quantity    int
	Available   int
	Description string
	ImageURL    sql.NullString
	CreatedAt   time.Time
}

// 状態の列挙（UIと合わせる）
var validConditions = map[string]struct{}{
	"Excellent": {},
	"Good":      {},
	"Fair":      {},
	"Poor":      {},
}

func conditionValid(c string) bool {
	_, ok := validConditions[c]
	return ok
}

func buildResponse(it *Item) EquipmentResponse {
	resp := EquipmentResponse{
		ID:          it.ID,
		Name:        it.Name,
		Category:    it.Category,
		Condition:   it.Condition,
		Quantity:    it.Quantity,
		Available:   it.Available,
		Description: it.Description,
		CreatedAt:   it.CreatedAt,
	}
	if it.ImageURL.Valid {
		v := it.ImageURL.String
		resp.ImageURL = &v
	}
	return resp
}
