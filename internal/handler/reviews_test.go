package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/service"
)

var reviewsNow = time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

func testReviewsPage(page, totalPages int) *service.ReviewsPage {
	return &service.ReviewsPage{
		Location:  domain.Location{Prefix: "MDI-1", Description: "Houseblock 1"},
		Locations: []domain.Location{{Prefix: "MDI-1", Description: "Houseblock 1"}, {Prefix: "MDI-2", Description: "Houseblock 2"}},
		Table: &domain.ReviewsTable{
			LocationDescription: "Houseblock 1",
			OverdueCount:        1,
			Levels: []domain.ReviewLevel{
				{LevelCode: "STD", LevelName: "Standard", ReviewCount: 45, OverdueCount: 1},
				{LevelCode: "ENH", LevelName: "Enhanced", ReviewCount: 10},
			},
			Reviews: []domain.Review{
				{
					PrisonerNumber:      "A1234BC",
					FirstName:           "JOHN",
					LastName:            "SAUNDERS",
					LevelCode:           "STD",
					PositiveBehaviours:  3,
					NextReviewDate:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
					DaysSinceLastReview: intPtr(90),
				},
				{
					PrisonerNumber: "A1234BD",
					FirstName:      "FRED",
					LastName:       "BLOGGS",
					LevelCode:      "STD",
					NextReviewDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				},
			},
		},
		LevelCode:  "STD",
		Sort:       domain.DefaultReviewSort,
		Page:       page,
		TotalPages: totalPages,
	}
}

func newReviewsTestMux(t *testing.T, svc *mockReviewsService, tokens *fakeTokens) *http.ServeMux {
	t.Helper()
	h := NewReviewsHandler(newTestPages(t), svc, tokens)
	h.now = func() time.Time { return reviewsNow }
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, passThrough)
	return mux
}

func TestReviewsHandler_Table(t *testing.T) {
	var got service.ReviewsRequest
	var gotToken string
	svc := &mockReviewsService{
		PageFunc: func(ctx context.Context, token string, req service.ReviewsRequest) (*service.ReviewsPage, error) {
			got, gotToken = req, token
			return testReviewsPage(2, 3), nil
		},
	}
	tokens := &fakeTokens{}
	mux := newReviewsTestMux(t, svc, tokens)

	req := httptest.NewRequest(http.MethodGet, "/incentive-summary/MDI-1?level=std&page=2", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, signedIn(req, testUser()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ReviewsRequest{
		AgencyID:       "MDI",
		LocationPrefix: "MDI-1",
		LevelCode:      "STD",
		Sort:           domain.DefaultReviewSort,
		Page:           2,
	}, got)
	assert.Equal(t, "system-token", gotToken)
	assert.Equal(t, []string{"SMITHJ"}, tokens.usernames)

	body := rec.Body.String()
	assert.Contains(t, body, "Houseblock 1")
	assert.Contains(t, body, "Standard (45)")
	assert.Contains(t, body, "Enhanced (10)")
	assert.Contains(t, body, "Saunders, John")
	assert.Contains(t, body, "4 days overdue")
	assert.Contains(t, body, "Not reviewed")

	// Modern pagination, keeping the level and sort
	assert.Contains(t, body, `href="/incentive-summary/MDI-1?level=STD&amp;order=ASC&amp;sort=NEXT_REVIEW_DATE&amp;page=1" rel="prev"`)
	assert.Contains(t, body, `aria-label="Page 2" aria-current="page">2</a>`)
	assert.Contains(t, body, `href="/incentive-summary/MDI-1?level=STD&amp;order=ASC&amp;sort=NEXT_REVIEW_DATE&amp;page=3" rel="next"`)

	// The active sort column links to the opposite order
	assert.Contains(t, body, `aria-sort="ascending"`)
	assert.Contains(t, body, `/incentive-summary/MDI-1?level=STD&amp;order=DESC&amp;sort=NEXT_REVIEW_DATE`)

	assert.Contains(t, body, `/incentive-summary/MDI-1/export.csv?level=STD`)
}

func TestReviewsHandler_TableSinglePageHasNoPagination(t *testing.T) {
	svc := &mockReviewsService{
		PageFunc: func(ctx context.Context, token string, req service.ReviewsRequest) (*service.ReviewsPage, error) {
			return testReviewsPage(1, 1), nil
		},
	}
	mux := newReviewsTestMux(t, svc, &fakeTokens{})

	req := httptest.NewRequest(http.MethodGet, "/incentive-summary/MDI-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, signedIn(req, testUser()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `aria-label="Reviews pages"`)
}

func TestReviewsHandler_TableErrors(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		pageErr    error
		tokenErr   error
		wantStatus int
	}{
		{
			name:       "no active caseload",
			user:       &domain.User{Username: "AUTHUSER", AuthSource: "auth"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown location",
			user:       testUser(),
			pageErr:    domain.NotFound("test", "location", "MDI-9"),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "incentives API down",
			user:       testUser(),
			pageErr:    domain.Unavailable(nil, "test", "down"),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "system token refused",
			user:       testUser(),
			tokenErr:   domain.Unavailable(nil, "test", "auth down"),
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReviewsService{
				PageFunc: func(ctx context.Context, token string, req service.ReviewsRequest) (*service.ReviewsPage, error) {
					if tt.pageErr != nil {
						return nil, tt.pageErr
					}
					return testReviewsPage(1, 1), nil
				},
			}
			mux := newReviewsTestMux(t, svc, &fakeTokens{err: tt.tokenErr})

			req := httptest.NewRequest(http.MethodGet, "/incentive-summary/MDI-9", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, signedIn(req, tt.user))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestReviewsHandler_ExportCSV(t *testing.T) {
	var got service.ReviewsRequest
	svc := &mockReviewsService{
		AllFunc: func(ctx context.Context, token string, req service.ReviewsRequest) (*service.ReviewsPage, error) {
			got = req
			return testReviewsPage(1, 1), nil
		},
	}
	mux := newReviewsTestMux(t, svc, &fakeTokens{})

	req := httptest.NewRequest(http.MethodGet, "/incentive-summary/MDI-1/export.csv?level=STD&sort=LAST_NAME", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, signedIn(req, testUser()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SortLastName, got.Sort.Column)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="incentive-reviews-MDI-1-STD-2024-03-14.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Prison number")
	assert.Contains(t, lines[1], "A1234BC")
}

func TestReviewsHandler_ExportFormats(t *testing.T) {
	svc := &mockReviewsService{
		AllFunc: func(ctx context.Context, token string, req service.ReviewsRequest) (*service.ReviewsPage, error) {
			return testReviewsPage(1, 1), nil
		},
	}
	mux := newReviewsTestMux(t, svc, &fakeTokens{})

	tests := []struct {
		file        string
		wantStatus  int
		contentType string
	}{
		{"export.xlsx", http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"export.pdf", http.StatusOK, "application/pdf"},
		{"export.docx", http.StatusNotFound, ""},
		{"report.csv", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/incentive-summary/MDI-1/"+tt.file, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, signedIn(req, testUser()))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
				assert.NotZero(t, rec.Body.Len())
			}
		})
	}
}

func TestReviewsHandler_SelectLocation(t *testing.T) {
	svc := &mockReviewsService{
		LocationsFunc: func(ctx context.Context, token, agencyID string) ([]domain.Location, error) {
			assert.Equal(t, "MDI", agencyID)
			return testReviewsPage(1, 1).Locations, nil
		},
	}
	mux := newReviewsTestMux(t, svc, &fakeTokens{})

	req := httptest.NewRequest(http.MethodGet, "/select-location", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, signedIn(req, testUser()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="MDI-2">Houseblock 2</option>`)
}

func TestReviewsHandler_ChooseLocation(t *testing.T) {
	svc := &mockReviewsService{
		LocationsFunc: func(ctx context.Context, token, agencyID string) ([]domain.Location, error) {
			return testReviewsPage(1, 1).Locations, nil
		},
	}
	mux := newReviewsTestMux(t, svc, &fakeTokens{})

	t.Run("redirects to the chosen wing", func(t *testing.T) {
		form := url.Values{"location": {"MDI-2"}}
		req := httptest.NewRequest(http.MethodPost, "/select-location", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedIn(req, testUser()))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/incentive-summary/MDI-2", rec.Header().Get("Location"))
	})

	t.Run("nothing chosen", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/select-location", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedIn(req, testUser()))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "There is a problem")
		assert.Contains(t, rec.Body.String(), "Select a location")
	})
}
