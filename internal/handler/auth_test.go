package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/session"
)

type fakeSignInFlow struct {
	returnTo    string
	token       *oauth2.Token
	completeErr error
}

func (f *fakeSignInFlow) BeginSignIn(w http.ResponseWriter, returnTo string) (string, error) {
	f.returnTo = returnTo
	return "https://auth.example/oauth/authorize?state=abc", nil
}

func (f *fakeSignInFlow) CompleteSignIn(w http.ResponseWriter, r *http.Request) (*oauth2.Token, string, error) {
	if f.completeErr != nil {
		return nil, "", f.completeErr
	}
	return f.token, "/incentive-summary/MDI-1", nil
}

func (f *fakeSignInFlow) SignOutURL() string {
	return "https://auth.example/sign-out?client_id=incentives-ui"
}

func newAuthTestHandler(t *testing.T, flow SignInFlow, users *mockUserService) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewAuthHandler(newTestPages(t), flow, users, true).RegisterRoutes(mux)
	return mux
}

func TestAuthHandler_SignInRedirectsToProvider(t *testing.T) {
	flow := &fakeSignInFlow{}
	mux := newAuthTestHandler(t, flow, &mockUserService{})

	req := httptest.NewRequest(http.MethodGet, "/sign-in?returnTo=%2Fincentive-levels", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://auth.example/oauth/authorize?state=abc", rec.Header().Get("Location"))
	assert.Equal(t, "/incentive-levels", flow.returnTo)
}

func TestAuthHandler_CallbackStartsSession(t *testing.T) {
	flow := &fakeSignInFlow{token: &oauth2.Token{AccessToken: "access-1"}}
	var gotToken string
	users := &mockUserService{
		SignInFunc: func(ctx context.Context, token *oauth2.Token) (string, *session.Session, error) {
			gotToken = token.AccessToken
			return "raw-session", &session.Session{Expires: time.Now().Add(time.Hour).Unix()}, nil
		},
	}
	mux := newAuthTestHandler(t, flow, users)

	req := httptest.NewRequest(http.MethodGet, "/sign-in/callback?code=c&state=s", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/incentive-summary/MDI-1", rec.Header().Get("Location"))
	assert.Equal(t, "access-1", gotToken)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Equal(t, "raw-session", cookies[0].Value)
	assert.True(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandler_CallbackFailures(t *testing.T) {
	tests := []struct {
		name  string
		flow  *fakeSignInFlow
		users *mockUserService
	}{
		{
			name:  "provider refused",
			flow:  &fakeSignInFlow{completeErr: domain.Unauthorized("test", "refused")},
			users: &mockUserService{},
		},
		{
			name: "session not started",
			flow: &fakeSignInFlow{token: &oauth2.Token{AccessToken: "access-1"}},
			users: &mockUserService{
				SignInFunc: func(ctx context.Context, token *oauth2.Token) (string, *session.Session, error) {
					return "", nil, domain.Unavailable(nil, "test", "manage users API down")
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newAuthTestHandler(t, tt.flow, tt.users)

			req := httptest.NewRequest(http.MethodGet, "/sign-in/callback", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/autherror", rec.Header().Get("Location"))
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestAuthHandler_SignOut(t *testing.T) {
	var deleted string
	users := &mockUserService{
		SignOutFunc: func(ctx context.Context, rawToken string) error {
			deleted = rawToken
			return nil
		},
	}
	mux := newAuthTestHandler(t, &fakeSignInFlow{}, users)

	req := httptest.NewRequest(http.MethodGet, "/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "raw-session"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://auth.example/sign-out?client_id=incentives-ui", rec.Header().Get("Location"))
	assert.Equal(t, "raw-session", deleted)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthHandler_AuthError(t *testing.T) {
	mux := newAuthTestHandler(t, &fakeSignInFlow{}, &mockUserService{})

	req := httptest.NewRequest(http.MethodGet, "/autherror", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorisation error")
	assert.Contains(t, rec.Body.String(), `href="/sign-in"`)
}
