package equipment

import "time"

// 登録リクエスト。available は常に quantity で初期化するので受け取らない。
type CreateEquipmentRequest struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// 部分更新。nil のフィールドは既存値を維持する。
type UpdateEquipmentRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Condition   *string `json:"condition,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	Available   *int    `json:"available,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type EquipmentResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Quantity    int       `json:"quantity"`
	Available   int       `json:"available"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
