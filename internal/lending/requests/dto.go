package requests

import "time"

// 借用申請（日付は "2006-01-02" 形式の文字列）
type CreateRequestInput struct {
	EquipmentID int64   `json:"equipment_id" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required"`
	BorrowFrom  string  `json:"borrow_from" binding:"required"`
	BorrowTo    string  `json:"borrow_to" binding:"required"`
	Notes       *string `json:"notes,omitempty"`
}

type CreateResponse struct {
	ID          int64  `json:"id"`
	RequestULID string `json:"request_ulid"`
}

type RequestResponse struct {
	ID            int64      `json:"id"`
	RequestULID   string     `json:"request_ulid"`
	UserID        int64      `json:"user_id"`
	EquipmentID   int64      `json:"equipment_id"`
	Quantity      int        `json:"quantity"`
	BorrowFrom    string     `json:"borrow_from"`
	BorrowTo      string     `json:"borrow_to"`
	Notes         *string    `json:"notes,omitempty"`
	Status        Status     `json:"status"`
	Overdue       bool       `json:"overdue"`
	ActedBy       *int64     `json:"acted_by"`
	ActedAt       *time.Time `json:"acted_at"`
	CreatedAt     time.Time  `json:"created_at"`
	Username      string     `json:"username,omitempty"`
	UserName      string     `json:"user_name,omitempty"`
	EquipmentName string     `json:"equipment_name,omitempty"`
}

const dateLayout = "2006-01-02"

func buildResponse(r *Request, now time.Time) RequestResponse {
	resp := RequestResponse{
		ID:            r.ID,
		RequestULID:   r.RequestULID,
		UserID:        r.UserID,
		EquipmentID:   r.EquipmentID,
		Quantity:      r.Quantity,
		BorrowFrom:    r.BorrowFrom.Format(dateLayout),
		BorrowTo:      r.BorrowTo.Format(dateLayout),
		Status:        r.Status,
		Overdue:       r.overdueAt(now),
		CreatedAt:     r.CreatedAt,
		Username:      r.Username,
		UserName:      r.UserName,
		EquipmentName: r.EquipmentName,
	}
	if r.Notes.Valid {
		v := r.Notes.String
		resp.Notes = &v
	}
	if r.ActedBy.Valid {
		v := r.ActedBy.Int64
		resp.ActedBy = &v
	}
	if r.ActedAt.Valid {
		v := r.ActedAt.Time
		resp.ActedAt = &v
	}
	return resp
}
