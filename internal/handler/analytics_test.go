package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpps/incentives-ui/internal/domain"
)

func testBehaviourReport() *domain.BehaviourReport {
	return &domain.BehaviourReport{
		Prison: "MDI",
		Date:   time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
		Rows: []domain.BehaviourSummary{
			{Label: "Houseblock 1", Positives: 30, Negatives: 10},
			{Label: "Houseblock 2", Positives: 10, Negatives: 50},
		},
		Totals: domain.BehaviourSummary{Label: "All", Positives: 40, Negatives: 60},
	}
}

func newAnalyticsTestMux(t *testing.T, analytics *mockAnalyticsService) *http.ServeMux {
	t.Helper()
	h := NewAnalyticsHandler(newTestPages(t), analytics)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, passThrough)
	return mux
}

func TestAnalyticsHandler_BehaviourEntries(t *testing.T) {
	var gotPrison string
	analytics := &mockAnalyticsService{
		BehaviourEntriesFunc: func(ctx context.Context, prison string) (*domain.BehaviourReport, error) {
			gotPrison = prison
			return testBehaviourReport(), nil
		},
	}
	mux := newAnalyticsTestMux(t, analytics)

	t.Run("html", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/analytics/behaviour-entries", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedIn(req, testUser()))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "MDI", gotPrison)
		body := rec.Body.String()
		assert.Contains(t, body, "Data from 13 March 2024.")
		assert.Contains(t, body, "Houseblock 2")
		assert.Contains(t, body, "40% positive")
		assert.Contains(t, body, `href="/analytics/behaviour-entries?format=csv"`)
	})

	t.Run("csv", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/analytics/behaviour-entries?format=csv", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedIn(req, testUser()))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="behaviour-entries-MDI-2024-03-13.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t,
			"Wing,Positive,Negative,Total\nHouseblock 1,30,10,40\nHouseblock 2,10,50,60\nAll,40,60,100\n",
			rec.Body.String())
	})
}

func TestAnalyticsHandler_Errors(t *testing.T) {
	t.Run("no active caseload", func(t *testing.T) {
		mux := newAnalyticsTestMux(t, &mockAnalyticsService{})

		user := testUser()
		user.ActiveCaseloadID = ""
		req := httptest.NewRequest(http.MethodGet, "/analytics/behaviour-entries", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedIn(req, user))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("report missing", func(t *testing.T) {
		mux := newAnalyticsTestMux(t, &mockAnalyticsService{
			BehaviourEntriesFunc: func(ctx context.Context, prison string) (*domain.BehaviourReport, error) {
				return nil, domain.NotFound("AnalyticsService.BehaviourEntries", "analytics table", "behaviour_entries_28d")
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/analytics/behaviour-entries", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedIn(req, testUser()))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
