package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpps/incentives-ui/internal/domain"
)

func TestHomeHandler_Home(t *testing.T) {
	h := NewHomeHandler(newTestPages(t))

	t.Run("prison user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Home(rec, signedIn(httptest.NewRequest(http.MethodGet, "/", nil), testUser()))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Moorland (HMP &amp; YOI)")
		assert.Contains(t, body, `href="/select-location"`)
		assert.Contains(t, body, `href="/analytics/behaviour-entries"`)
		assert.NotContains(t, body, `href="/incentive-levels"`)
	})

	t.Run("other paths are not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Home(rec, signedIn(httptest.NewRequest(http.MethodGet, "/not-a-page", nil), testUser()))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTilesFor(t *testing.T) {
	admin := &domain.User{Username: "ADMIN", Roles: []string{domain.RoleMaintainIncentiveLevels}}
	both := testUser()
	both.Roles = append(both.Roles, domain.RoleMaintainIncentiveLevels)

	tests := []struct {
		name      string
		user      *domain.User
		wantHrefs []string
	}{
		{"no user", nil, nil},
		{"prison user", testUser(), []string{"/select-location", "/analytics/behaviour-entries"}},
		{"level admin without caseload", admin, []string{"/incentive-levels"}},
		{"prison user and level admin", both, []string{"/select-location", "/analytics/behaviour-entries", "/incentive-levels"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hrefs []string
			for _, tile := range tilesFor(tt.user) {
				hrefs = append(hrefs, tile.Href)
			}
			assert.Equal(t, tt.wantHrefs, hrefs)
		})
	}
}
