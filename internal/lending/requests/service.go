package requests

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"SELP-backend/internal/platform/apierr"
	"SELP-backend/internal/platform/auth"
	"SELP-backend/internal/platform/metrics"
	"SELP-backend/internal/platform/roles"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ===== Service本体 =====

type Service struct {
	store         RequestStore
	clock         Clock
	id            IDGen
	maxBorrowDays int
}

func NewService(conn *sql.DB, maxBorrowDays int) *Service {
	return &Service{
		store:         NewStore(conn),
		clock:         realClock{},
		id:            ulidGen{},
		maxBorrowDays: maxBorrowDays,
	}
}

// Create は借用申請を登録する。申請できるのは student のみ。
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateRequestInput) (*CreateResponse, error) {
	if actor.Role != roles.Student {
		return nil, apierr.ErrForbidden("only students can submit borrow requests")
	}
	if in.Quantity < 1 {
		return nil, apierr.ErrInvalid("quantity must be >= 1")
	}

	from, err := time.Parse(dateLayout, in.BorrowFrom)
	if err != nil {
		return nil, apierr.ErrInvalid("borrow_from must be YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, in.BorrowTo)
	if err != nil {
		return nil, apierr.ErrInvalid("borrow_to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, apierr.ErrInvalid("borrow_to must not be before borrow_from")
	}
	today := s.clock.Now().UTC().Truncate(24 * time.Hour)
	if from.Before(today) {
		return nil, apierr.ErrInvalid("borrow_from must not be in the past")
	}
	if int(to.Sub(from).Hours()/24) > s.maxBorrowDays {
		return nil, apierr.ErrInvalid("borrow period exceeds maximum of " + strconv.Itoa(s.maxBorrowDays) + " days")
	}

	// 申請時点の在庫チェック。確定的な保証は承認時の条件付きUPDATEが行う。
	avail, err := s.store.EquipmentAvailable(ctx, in.EquipmentID)
	if err != nil {
		return nil, err
	}
	if in.Quantity > avail {
		return nil, apierr.ErrInvalid("quantity exceeds current availability")
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	r := &Request{
		RequestULID: idStr,
		UserID:      actor.ID,
		EquipmentID: in.EquipmentID,
		Quantity:    in.Quantity,
		BorrowFrom:  from,
		BorrowTo:    to,
		Status:      StatusPending,
	}
	if in.Notes != nil && *in.Notes != "" {
		r.Notes = sql.NullString{String: *in.Notes, Valid: true}
	}

	id, err := s.store.Insert(ctx, r)
	if err != nil {
		return nil, err
	}

	metrics.BorrowRequests.Inc()
	return &CreateResponse{ID: id, RequestULID: idStr}, nil
}

// List は admin/staff なら全件、それ以外は自分の申請のみ
func (s *Service) List(ctx context.Context, actor auth.Actor) ([]RequestResponse, error) {
	var (
		rows []Request
		err  error
	)
	if actor.Role.Privileged() {
		rows, err = s.store.ListAll(ctx)
	} else {
		rows, err = s.store.ListByUser(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := make([]RequestResponse, 0, len(rows))
	for i := range rows {
		out = append(out, buildResponse(&rows[i], now))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, key string) (*RequestResponse, error) {
	r, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Privileged() && r.UserID != actor.ID {
		return nil, apierr.ErrForbidden("forbidden")
	}
	resp := buildResponse(r, s.clock.Now())
	return &resp, nil
}

// Approve: admin/staff のみ、pending からのみ。
// 在庫不足は Transition 内の条件付きUPDATEが検出して CONFLICT を返す。
func (s *Service) Approve(ctx context.Context, actor auth.Actor, key string) (*RequestResponse, error) {
	return s.transition(ctx, actor, key, StatusPending, StatusApproved)
}

// Reject: admin/staff のみ、pending からのみ。在庫への副作用なし。
func (s *Service) Reject(ctx context.Context, actor auth.Actor, key string) (*RequestResponse, error) {
	return s.transition(ctx, actor, key, StatusPending, StatusRejected)
}

// Return: admin/staff または申請者本人、approved からのみ。
func (s *Service) Return(ctx context.Context, actor auth.Actor, key string) (*RequestResponse, error) {
	r, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Privileged() && r.UserID != actor.ID {
		return nil, apierr.ErrForbidden("only staff or the requester can return")
	}
	return s.doTransition(ctx, actor, r.ID, StatusApproved, StatusReturned)
}

func (s *Service) transition(ctx context.Context, actor auth.Actor, key string, from, to Status) (*RequestResponse, error) {
	if !actor.Role.Privileged() {
		return nil, apierr.ErrForbidden("forbidden")
	}
	r, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.doTransition(ctx, actor, r.ID, from, to)
}

func (s *Service) doTransition(ctx context.Context, actor auth.Actor, id int64, from, to Status) (*RequestResponse, error) {
	updated, err := s.store.Transition(ctx, id, from, to, actor.ID)
	if err != nil {
		metrics.Transitions.WithLabelValues(string(to), "failure").Inc()
		return nil, err
	}
	metrics.Transitions.WithLabelValues(string(to), "success").Inc()
	resp := buildResponse(updated, s.clock.Now())
	return &resp, nil
}

// resolve は数値なら id、それ以外は request_ulid として検索する
func (s *Service) resolve(ctx context.Context, key string) (*Request, error) {
	if key == "" {
		return nil, apierr.ErrInvalid("id is required")
	}
	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		return s.store.GetByID(ctx, id)
	}
	return s.store.GetByULID(ctx, key)
}
