package requests

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusReturned Status = "returned"
)

// Request は requests テーブルの1行を表す。
// Username / UserName / EquipmentName は一覧表示用の JOIN 結果。
type Request struct {
	ID          int64
	RequestULID string
	UserID      int64
	EquipmentID int64
	Quantity    int
	BorrowFrom  time.Time
	BorrowTo    time.Time
	Notes       sql.NullString
	Status      Status
	ActedBy     sql.NullInt64
	ActedAt     sql.NullTime
	CreatedAt   time.Time

	Username      string
	UserName      string
	EquipmentName string
}

// overdue は保存しない。approved かつ返却期限超過なら表示用に導出する。
func (r *Request) overdueAt(now time.Time) bool {
	if r.Status != StatusApproved {
		return false
	}
	today := now.UTC().Truncate(24 * time.Hour)
	return r.BorrowTo.Before(today)
}
