package contributors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeContributorStore struct {
	list    []Contributor
	listErr error
}

func (f *fakeContributorStore) List(context.Context) ([]Contributor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

// 本物と同じく全削除→全挿入で ID を振り直す
func (f *fakeContributorStore) Replace(_ context.Context, list []Contributor) ([]Contributor, error) {
	out := make([]Contributor, 0, len(list))
	for i, c := range list {
		c.ID = int64(i + 1)
		out = append(out, c)
	}
	f.list = out
	return out, nil
}

func TestReplace(t *testing.T) {
	store := &fakeContributorStore{list: []Contributor{{ID: 1, Name: "Old Name", Roll: "R-1"}}}
	svc := &Service{store: store}

	got, err := svc.Replace(context.Background(), []Contributor{
		{Name: "Alice", Roll: "R-10", Contribution: "Backend"},
		{Name: "Bob", Roll: "R-11", Contribution: "Frontend"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// 古いリストは残らず、IDは振り直される
	if got[0].Name != "Alice" || got[0].ID != 1 || got[1].Name != "Bob" || got[1].ID != 2 {
		t.Errorf("got = %+v", got)
	}
}

func TestReplaceWithNil(t *testing.T) {
	store := &fakeContributorStore{list: []Contributor{{ID: 1, Name: "Old"}}}
	svc := &Service{store: store}

	got, err := svc.Replace(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("nil input must clear the list, got %+v", got)
	}
}

func TestListHandlerEmptyIsArray(t *testing.T) {
	r := gin.New()
	svc := &Service{store: &fakeContributorStore{}}
	RegisterRoutes(r, svc, func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodGet, "/contributors", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	// フロントは配列前提なので null を返してはいけない
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", w.Body.String())
	}
}

func TestReplaceHandler(t *testing.T) {
	r := gin.New()
	svc := &Service{store: &fakeContributorStore{}}
	// テストでは認証・ロールを通す代わりに role を直接詰める
	authed := func(c *gin.Context) { c.Set("role", "admin") }
	RegisterRoutes(r, svc, authed)

	body := `[{"name":"Alice","roll":"R-10","contribution":"Backend"}]`
	req := httptest.NewRequest(http.MethodPut, "/contributors", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var got []Contributor
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Alice" {
		t.Errorf("got = %+v", got)
	}
}

func TestReplaceHandlerBadJSON(t *testing.T) {
	r := gin.New()
	svc := &Service{store: &fakeContributorStore{}}
	authed := func(c *gin.Context) { c.Set("role", "admin") }
	RegisterRoutes(r, svc, authed)

	req := httptest.NewRequest(http.MethodPut, "/contributors", strings.NewReader(`{"not":"a list"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
