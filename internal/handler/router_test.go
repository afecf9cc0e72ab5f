package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/blogcore/internal/auth"
	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/post"
)

// stubTokenParser は "token-<userID>" 形式のトークンを受け付ける。
type stubTokenParser struct{}

func (stubTokenParser) ParseToken(token string) (*auth.Claims, error) {
	const prefix = "token-"
	if len(token) > len(prefix) && token[:len(prefix)] == prefix {
		return &auth.Claims{UserID: token[len(prefix):]}, nil
	}
	return nil, auth.ErrInvalidToken
}

func newMockRouter(postSvc *mockPostService) http.Handler {
	return NewRouter(&RouterDeps{
		TokenParser:       stubTokenParser{},
		CORSAllowedOrigin: "http://localhost:3000",
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# metrics"))
		}),
		AuthService: &mockAuthService{},
		PostService: postSvc,
	})
}

func TestNewRouter_OptionalAuthOnReadRoutes(t *testing.T) {
	var callers []string
	svc := &mockPostService{
		listFn: func(ctx context.Context, params post.ListParams) (*model.PostPage, error) {
			callers = append(callers, params.CallerID)
			return &model.PostPage{Data: []*model.Post{}}, nil
		},
	}
	router := newMockRouter(svc)

	for _, token := range []string{"", "token-u1", "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("token %q: status = %d, want 200", token, w.Code)
		}
	}

	want := []string{"", "u1", ""}
	for i := range want {
		if callers[i] != want[i] {
			t.Errorf("caller[%d] = %q, want %q", i, callers[i], want[i])
		}
	}
}

func TestNewRouter_WriteRoutesRequireAuth(t *testing.T) {
	router := newMockRouter(&mockPostService{})

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/p-1"},
		{http.MethodDelete, "/api/posts/p-1"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", rt.method, rt.path, w.Code)
		}
	}
}

func TestNewRouter_GetPostPassesURLParamAndCaller(t *testing.T) {
	svc := &mockPostService{
		getByIDFn: func(ctx context.Context, id, callerID string) (*model.Post, error) {
			if id != "p-42" || callerID != "u9" {
				t.Errorf("id/caller = %q/%q, want p-42/u9", id, callerID)
			}
			return samplePost(id, "u9"), nil
		},
	}
	router := newMockRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/p-42", nil)
	req.Header.Set("Authorization", "Bearer token-u9")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	router := newMockRouter(&mockPostService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestNewRouter_HealthOmittedWithoutChecker(t *testing.T) {
	router := newMockRouter(&mockPostService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestNewRouter_UnknownRoute_Returns404Or405(t *testing.T) {
	router := newMockRouter(&mockPostService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/posts/p-1", nil))

	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 404 or 405", w.Code)
	}
}

func TestNewRouter_SecurityHeadersApplied(t *testing.T) {
	router := newMockRouter(&mockPostService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
