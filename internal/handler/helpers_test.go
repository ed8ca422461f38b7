package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/service"
	"github.com/hmpps/incentives-ui/internal/session"
	"github.com/hmpps/incentives-ui/web"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPages(t *testing.T) *Pages {
	t.Helper()
	logger := newTestLogger()
	renderer, err := NewRendererFromFS(web.Templates(), logger)
	require.NoError(t, err)
	return &Pages{Renderer: renderer, Logger: logger}
}

func passThrough(next http.Handler) http.Handler {
	return next
}

func testUser() *domain.User {
	return &domain.User{
		Username:         "SMITHJ",
		Name:             "John Smith",
		AuthSource:       "nomis",
		ActiveCaseloadID: "MDI",
		Caseloads:        []domain.Caseload{{ID: "MDI", Name: "Moorland (HMP & YOI)"}},
		Roles:            []string{"ROLE_PRISON"},
	}
}

// signedIn returns r as if the auth middleware had loaded user.
func signedIn(r *http.Request, user *domain.User) *http.Request {
	ctx := auth.SetUser(r.Context(), user)
	ctx = auth.SetToken(ctx, "user-token")
	return r.WithContext(ctx)
}

// =============================================================================
// Mocks
// =============================================================================

type fakeTokens struct {
	err       error
	usernames []string
}

func (f *fakeTokens) Token(ctx context.Context, username string) (string, error) {
	f.usernames = append(f.usernames, username)
	if f.err != nil {
		return "", f.err
	}
	return "system-token", nil
}

type mockReviewsService struct {
	LocationsFunc func(ctx context.Context, token, agencyID string) ([]domain.Location, error)
	PageFunc      func(ctx context.Context, token string, req service.ReviewsRequest) (*service.ReviewsPage, error)
	AllFunc       func(ctx context.Context, token string, req service.ReviewsRequest) (*service.ReviewsPage, error)
}

func (m *mockReviewsService) Locations(ctx context.Context, token, agencyID string) ([]domain.Location, error) {
	return m.LocationsFunc(ctx, token, agencyID)
}

func (m *mockReviewsService) Page(ctx context.Context, token string, req service.ReviewsRequest) (*service.ReviewsPage, error) {
	return m.PageFunc(ctx, token, req)
}

func (m *mockReviewsService) All(ctx context.Context, token string, req service.ReviewsRequest) (*service.ReviewsPage, error) {
	return m.AllFunc(ctx, token, req)
}

type mockHistoryService struct {
	GetFunc func(ctx context.Context, user *domain.User, token, prisonerNumber string, page int) (*service.PrisonerHistory, error)
}

func (m *mockHistoryService) Get(ctx context.Context, user *domain.User, token, prisonerNumber string, page int) (*service.PrisonerHistory, error) {
	return m.GetFunc(ctx, user, token, prisonerNumber, page)
}

type mockPhotoService struct {
	PhotoFunc func(ctx context.Context, token, prisonerNumber string) ([]byte, error)
}

func (m *mockPhotoService) Photo(ctx context.Context, token, prisonerNumber string) ([]byte, error) {
	return m.PhotoFunc(ctx, token, prisonerNumber)
}

type mockLevelService struct {
	ListFunc   func(ctx context.Context, token string) ([]domain.IncentiveLevel, error)
	GetFunc    func(ctx context.Context, token, code string) (*domain.IncentiveLevel, error)
	CreateFunc func(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error)
	UpdateFunc func(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error)
}

func (m *mockLevelService) List(ctx context.Context, token string) ([]domain.IncentiveLevel, error) {
	return m.ListFunc(ctx, token)
}

func (m *mockLevelService) Get(ctx context.Context, token, code string) (*domain.IncentiveLevel, error) {
	return m.GetFunc(ctx, token, code)
}

func (m *mockLevelService) Create(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error) {
	return m.CreateFunc(ctx, token, level)
}

func (m *mockLevelService) Update(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error) {
	return m.UpdateFunc(ctx, token, level)
}

type mockFeedbackService struct {
	SubmitFunc func(ctx context.Context, f domain.Feedback) (int64, error)
}

func (m *mockFeedbackService) Submit(ctx context.Context, f domain.Feedback) (int64, error) {
	return m.SubmitFunc(ctx, f)
}

type mockAnalyticsService struct {
	BehaviourEntriesFunc func(ctx context.Context, prison string) (*domain.BehaviourReport, error)
}

func (m *mockAnalyticsService) BehaviourEntries(ctx context.Context, prison string) (*domain.BehaviourReport, error) {
	return m.BehaviourEntriesFunc(ctx, prison)
}

type mockUserService struct {
	SignInFunc  func(ctx context.Context, token *oauth2.Token) (string, *session.Session, error)
	SignOutFunc func(ctx context.Context, rawToken string) error
}

func (m *mockUserService) SignIn(ctx context.Context, token *oauth2.Token) (string, *session.Session, error) {
	return m.SignInFunc(ctx, token)
}

func (m *mockUserService) SignOut(ctx context.Context, rawToken string) error {
	return m.SignOutFunc(ctx, rawToken)
}
