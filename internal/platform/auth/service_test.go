package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"

	"SELP-backend/internal/platform/apierr"
)

type fakeAccountStore struct {
	accounts  map[string]*Account
	insertErr error
	inserted  []*Account
	nextID    int64
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]*Account{}, nextID: 1}
}

func (f *fakeAccountStore) GetByUsername(_ context.Context, username string) (*Account, error) {
	return f.accounts[username], nil
}

func (f *fakeAccountStore) Insert(_ context.Context, a *Account) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	id := f.nextID
	f.nextID++
	a.ID = id
	f.inserted = append(f.inserted, a)
	f.accounts[a.Username] = a
	return id, nil
}

func (f *fakeAccountStore) TouchSeen(context.Context, int64) error { return nil }

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	done chan struct{}
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, username, _ string) error {
	m.mu.Lock()
	m.sent = append(m.sent, username)
	m.mu.Unlock()
	close(m.done)
	return nil
}

func newTestService(store AccountStore, mailer *fakeMailer) *Service {
	s := &Service{store: store, secret: testSecret, ttl: time.Hour}
	if mailer != nil {
		s.mailer = mailer
	}
	return s
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}

func TestLogin(t *testing.T) {
	store := newFakeAccountStore()
	store.accounts["admin"] = &Account{
		ID:           1,
		Username:     "admin",
		PasswordHash: mustHash(t, "admin123"),
		Name:         "Admin User",
		Role:         "admin",
	}
	svc := newTestService(store, nil)

	token, user, err := svc.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != 1 || user.Username != "admin" || string(user.Role) != "admin" {
		t.Errorf("user = %+v", user)
	}
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("returned token does not verify: %v", err)
	}
	if claims.UserID != 1 || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

// 未登録ユーザーとパスワード不一致で応答を変えない（ユーザー列挙防止）
func TestLoginFailureIsUniform(t *testing.T) {
	store := newFakeAccountStore()
	store.accounts["admin"] = &Account{
		ID: 1, Username: "admin", PasswordHash: mustHash(t, "admin123"), Role: "admin",
	}
	svc := newTestService(store, nil)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "whatever"},
		{"wrong password", "admin", "wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.username, tt.password)
			if err == nil {
				t.Fatal("expected error")
			}
			if apierr.ToHTTPStatus(err) != 401 {
				t.Errorf("status = %d, want 401", apierr.ToHTTPStatus(err))
			}
			if apierr.Message(err) != "invalid credentials" {
				t.Errorf("message = %q", apierr.Message(err))
			}
		})
	}
}

func TestLoginNormalizesUsername(t *testing.T) {
	store := newFakeAccountStore()
	store.accounts["student1"] = &Account{
		ID: 3, Username: "student1", PasswordHash: mustHash(t, "student123"), Role: "student",
	}
	svc := newTestService(store, nil)

	// 全角英数でも同じアカウントに解決される
	if _, _, err := svc.Login(context.Background(), "ｓｔｕｄｅｎｔ１", "student123"); err != nil {
		t.Errorf("NFKC-equivalent username must resolve: %v", err)
	}
}

func TestSignup(t *testing.T) {
	store := newFakeAccountStore()
	mailer := &fakeMailer{done: make(chan struct{})}
	svc := newTestService(store, mailer)

	user, err := svc.Signup(context.Background(), SignupInput{
		Name:     "New Student",
		Username: "newbie",
		Password: "secretpw",
		Role:     "student",
		RollNo:   "R-100",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.ID == 0 || user.Username != "newbie" || string(user.Role) != "student" {
		t.Errorf("user = %+v", user)
	}

	stored := store.inserted[0]
	if stored.PasswordHash == "secretpw" {
		t.Fatal("password must not be stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secretpw")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	select {
	case <-mailer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was not sent")
	}
	if mailer.sent[0] != "newbie" {
		t.Errorf("mail sent to %q", mailer.sent[0])
	}
}

func TestSignupValidation(t *testing.T) {
	svc := newTestService(newFakeAccountStore(), nil)

	tests := []struct {
		name string
		in   SignupInput
	}{
		{"empty username", SignupInput{Password: "x", Role: "student"}},
		{"empty password", SignupInput{Username: "x", Role: "student"}},
		{"bad role", SignupInput{Username: "x", Password: "x", Role: "superuser"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tt.in)
			if apierr.ToHTTPStatus(err) != 400 {
				t.Errorf("status = %d, want 400", apierr.ToHTTPStatus(err))
			}
		})
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	store := newFakeAccountStore()
	store.insertErr = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	svc := newTestService(store, nil)

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "admin", Password: "pw", Role: "student",
	})
	if apierr.ToHTTPStatus(err) != 409 {
		t.Fatalf("status = %d, want 409", apierr.ToHTTPStatus(err))
	}
	if apierr.Message(err) != "username already exists" {
		t.Errorf("message = %q", apierr.Message(err))
	}
}

type fakeRevoker struct {
	jti string
	ttl time.Duration
	err error
}

func (f *fakeRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	f.jti, f.ttl = jti, ttl
	return f.err
}

func TestLogout(t *testing.T) {
	rev := &fakeRevoker{}
	svc := newTestService(newFakeAccountStore(), nil)
	svc.sessions = rev

	if err := svc.Logout(context.Background(), "01JTESTJTI", 30*time.Minute); err != nil {
		t.Fatal(err)
	}
	if rev.jti != "01JTESTJTI" || rev.ttl != 30*time.Minute {
		t.Errorf("revoked = %q / %v", rev.jti, rev.ttl)
	}
}

func TestLogoutWithoutRevoker(t *testing.T) {
	svc := newTestService(newFakeAccountStore(), nil)
	if err := svc.Logout(context.Background(), "jti", time.Minute); err != nil {
		t.Errorf("nil revoker must be a no-op, got %v", err)
	}
	svc.sessions = &fakeRevoker{err: errors.New("redis down")}
	if err := svc.Logout(context.Background(), "", time.Minute); err != nil {
		t.Errorf("empty jti must be a no-op, got %v", err)
	}
}
