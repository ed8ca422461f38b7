package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/session"
)

// =============================================================================
// Mock Refresher Implementation
// =============================================================================

type mockRefresher struct {
	RefreshFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	calls       int
}

func (m *mockRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	m.calls++
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, errors.New("not implemented")
}

// =============================================================================
// Test Helpers
// =============================================================================

// newTestLogger creates a logger that discards output for testing.
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}))
}

func newTestStore(t *testing.T) *session.MemoryStore {
	t.Helper()
	store, err := session.NewMemoryStore()
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

// createSession stores a session whose access token expires after tokenTTL.
func createSession(t *testing.T, store session.Store, tokenTTL time.Duration, roles ...string) string {
	t.Helper()
	raw, err := store.Create(context.Background(), &session.Session{
		User: domain.User{
			Username:         "SMITHJ",
			Name:             "John Smith",
			ActiveCaseloadID: "MDI",
			Roles:            roles,
		},
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenExpiry:  time.Now().Add(tokenTTL),
		Expires:      time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return raw
}

func requestWithSession(raw string) *http.Request {
	req := httptest.NewRequest("GET", "/incentive-summary/MDI-1", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: raw})
	return req
}

// =============================================================================
// WithUser Middleware Tests
// =============================================================================

func TestWithUser_NoCookie_ContinuesWithoutUser(t *testing.T) {
	mw := NewAuthMiddleware(newTestStore(t), &mockRefresher{}, newTestLogger(), false)

	var called bool
	handler := mw.WithUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if auth.GetUser(r.Context()) != nil {
			t.Error("expected no user in context")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if !called {
		t.Error("handler should be called")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookies should be set")
	}
}

func TestWithUser_ValidCookie_SetsUserAndToken(t *testing.T) {
	store := newTestStore(t)
	raw := createSession(t, store, 20*time.Minute)
	refresher := &mockRefresher{}
	mw := NewAuthMiddleware(store, refresher, newTestLogger(), false)

	var user *domain.User
	var token string
	handler := mw.WithUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = auth.GetUser(r.Context())
		token = auth.GetToken(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), requestWithSession(raw))

	if user == nil || user.Username != "SMITHJ" {
		t.Fatalf("expected SMITHJ in context, got %+v", user)
	}
	if token != "access-1" {
		t.Errorf("expected access token in context, got %q", token)
	}
	if refresher.calls != 0 {
		t.Errorf("fresh token should not be refreshed, got %d calls", refresher.calls)
	}
}

func TestWithUser_UnknownCookie_ClearsAndContinues(t *testing.T) {
	mw := NewAuthMiddleware(newTestStore(t), &mockRefresher{}, newTestLogger(), false)

	var called bool
	handler := mw.WithUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if auth.GetUser(r.Context()) != nil {
			t.Error("expected no user in context")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSession("stale-token"))

	if !called {
		t.Error("handler should be called")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName || cookies[0].MaxAge != -1 {
		t.Errorf("expected session cookie to be cleared, got %+v", cookies)
	}
}

func TestWithUser_ExpiringToken_IsRefreshed(t *testing.T) {
	store := newTestStore(t)
	raw := createSession(t, store, 30*time.Second)
	refresher := &mockRefresher{
		RefreshFunc: func(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
			if refreshToken != "refresh-1" {
				t.Errorf("unexpected refresh token %q", refreshToken)
			}
			return &oauth2.Token{AccessToken: "access-2", RefreshToken: "refresh-2", Expiry: time.Now().Add(20 * time.Minute)}, nil
		},
	}
	mw := NewAuthMiddleware(store, refresher, newTestLogger(), false)

	var token string
	handler := mw.WithUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = auth.GetToken(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), requestWithSession(raw))

	if token != "access-2" {
		t.Errorf("expected refreshed token in context, got %q", token)
	}

	stored, err := store.Get(context.Background(), raw)
	if err != nil || stored == nil {
		t.Fatalf("session should still exist: %v", err)
	}
	if stored.AccessToken != "access-2" || stored.RefreshToken != "refresh-2" {
		t.Errorf("refreshed tokens should be saved, got %q / %q", stored.AccessToken, stored.RefreshToken)
	}
}

func TestWithUser_FailedRefresh_EndsSession(t *testing.T) {
	store := newTestStore(t)
	raw := createSession(t, store, -time.Minute)
	refresher := &mockRefresher{
		RefreshFunc: func(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
			return nil, domain.Unauthorized("test", "refresh token expired")
		},
	}
	mw := NewAuthMiddleware(store, refresher, newTestLogger(), false)

	var user *domain.User
	handler := mw.WithUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = auth.GetUser(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSession(raw))

	if user != nil {
		t.Error("user should not be set after failed refresh")
	}
	if stored, _ := store.Get(context.Background(), raw); stored != nil {
		t.Error("session should be deleted after failed refresh")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("expected session cookie to be cleared, got %+v", cookies)
	}
}

// =============================================================================
// RequireUser Middleware Tests
// =============================================================================

func TestRequireUser_WithUser_ContinuesToHandler(t *testing.T) {
	mw := NewAuthMiddleware(newTestStore(t), &mockRefresher{}, newTestLogger(), false)

	var called bool
	handler := mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(auth.SetUser(req.Context(), &domain.User{Username: "SMITHJ"}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("handler should be called when user is present")
	}
}

func TestRequireUser_NoUser_HTMLRequest_RedirectsToSignIn(t *testing.T) {
	mw := NewAuthMiddleware(newTestStore(t), &mockRefresher{}, newTestLogger(), false)

	handler := mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/incentive-summary/MDI-1?level=STD&page=2", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	want := "/sign-in?returnTo=%2Fincentive-summary%2FMDI-1%3Flevel%3DSTD%26page%3D2"
	if location != want {
		t.Errorf("expected redirect to %q, got %q", want, location)
	}
}

func TestRequireUser_NoUser_APIRequest_Returns401(t *testing.T) {
	mw := NewAuthMiddleware(newTestStore(t), &mockRefresher{}, newTestLogger(), false)

	handler := mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/analytics/behaviour-entries", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		t.Errorf("expected JSON response, got %q", rec.Header().Get("Content-Type"))
	}
}

// =============================================================================
// RequireRole Middleware Tests
// =============================================================================

func TestRequireRole(t *testing.T) {
	mw := NewAuthMiddleware(newTestStore(t), &mockRefresher{}, newTestLogger(), false)

	tests := []struct {
		name       string
		roles      []string
		wantStatus int
	}{
		{"has role", []string{"ROLE_PRISON", domain.RoleMaintainIncentiveLevels}, http.StatusOK},
		{"missing role", []string{"ROLE_PRISON"}, http.StatusForbidden},
		{"no roles", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := mw.RequireRole(domain.RoleMaintainIncentiveLevels)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/incentive-levels", nil)
			req = req.WithContext(auth.SetUser(req.Context(), &domain.User{Username: "SMITHJ", Roles: tt.roles}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestStack_AppliesInOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Stack(mark("outer"), mark("inner"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "outer,inner,handler" {
		t.Errorf("unexpected order: %v", order)
	}
}
