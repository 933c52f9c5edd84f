package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"SELP-backend/internal/platform/apierr"
	"SELP-backend/internal/platform/roles"
)

type fakeAuthService struct {
	loginErr  error
	signupErr error
	loggedOut string
}

func (f *fakeAuthService) Login(_ context.Context, username, _ string) (string, *UserSummary, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "tok-123", &UserSummary{ID: 1, Username: username, Role: roles.Admin, Name: "Admin User"}, nil
}

func (f *fakeAuthService) Signup(_ context.Context, in SignupInput) (*UserSummary, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &UserSummary{ID: 9, Username: in.Username, Role: roles.Role(in.Role), Name: in.Name}, nil
}

func (f *fakeAuthService) Logout(_ context.Context, jti string, _ time.Duration) error {
	f.loggedOut = jti
	return nil
}

func newHandlerRouter(svc AuthService) *gin.Engine {
	r := gin.New()
	grp := r.Group("/api/auth")
	RegisterRoutes(grp, svc, RequireAuth(testSecret, nil))
	return r
}

func postJSON(r *gin.Engine, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginHandler(t *testing.T) {
	r := newHandlerRouter(&fakeAuthService{})

	w := postJSON(r, "/api/auth/login", `{"username":"admin","password":"admin123"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
			Name     string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token != "tok-123" || resp.User.Username != "admin" || resp.User.Role != "admin" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestLoginHandlerErrors(t *testing.T) {
	tests := []struct {
		name string
		svc  AuthService
		body string
		want int
	}{
		{"missing fields", &fakeAuthService{}, `{"username":"admin"}`, http.StatusBadRequest},
		{"bad json", &fakeAuthService{}, `{`, http.StatusBadRequest},
		{"bad credentials", &fakeAuthService{loginErr: apierr.ErrUnauthorized("invalid credentials")}, `{"username":"a","password":"b"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(newHandlerRouter(tt.svc), "/api/auth/login", tt.body, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			var resp map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if _, ok := resp["error"]; !ok {
				t.Errorf("error field missing: %s", w.Body.String())
			}
		})
	}
}

func TestSignupHandler(t *testing.T) {
	r := newHandlerRouter(&fakeAuthService{})

	w := postJSON(r, "/api/auth/signup", `{"name":"New","username":"newbie","password":"pw","role":"student"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		User    UserSummary `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.User.Username != "newbie" || resp.Message == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSignupHandlerConflict(t *testing.T) {
	svc := &fakeAuthService{signupErr: apierr.ErrConflict("username already exists")}
	w := postJSON(newHandlerRouter(svc), "/api/auth/signup", `{"username":"admin","password":"pw","role":"student"}`, "")
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestLogoutHandler(t *testing.T) {
	svc := &fakeAuthService{}
	r := newHandlerRouter(svc)

	// 未認証は 401
	if w := postJSON(r, "/api/auth/logout", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated logout: status = %d, want 401", w.Code)
	}

	token := issue(t, roles.Student)
	w := postJSON(r, "/api/auth/logout", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.loggedOut == "" {
		t.Error("jti was not passed to the service")
	}
}
