package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpps/incentives-ui/internal/domain"
)

func newReviewsFixture(stdCount int) (*fakeIncentivesAPI, ReviewsService) {
	api := &fakeIncentivesAPI{
		levels: []domain.ReviewLevel{
			{LevelCode: "BAS", LevelName: "Basic", ReviewCount: 3},
			{LevelCode: "STD", LevelName: "Standard", ReviewCount: stdCount},
		},
		reviews: map[string][]domain.Review{
			"BAS": makeReviews(3),
			"STD": makeReviews(stdCount),
		},
	}
	wings := &fakeWingsAPI{wings: []domain.Location{
		{Prefix: "MDI-1", Description: "Houseblock 1"},
		{Prefix: "MDI-2", Description: "Houseblock 2"},
	}}
	return api, NewReviewsService(api, wings, testLogger())
}

func TestReviewsPage_DefaultsToStandardFirstPage(t *testing.T) {
	api, svc := newReviewsFixture(45)

	page, err := svc.Page(context.Background(), "token", ReviewsRequest{
		AgencyID:       "MDI",
		LocationPrefix: "MDI-1",
		Sort:           domain.DefaultReviewSort,
	})
	require.NoError(t, err)

	assert.Equal(t, "STD", page.LevelCode)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Table.Reviews, ReviewsPageSize)
	assert.Equal(t, "Houseblock 1", page.Location.Description)
	assert.Len(t, page.Locations, 2)

	require.Len(t, api.queries, 1)
	assert.Equal(t, ReviewsPageSize, api.queries[0].PageSize)
}

func TestReviewsPage_PastLastPageShowsLastPage(t *testing.T) {
	api, svc := newReviewsFixture(45)

	page, err := svc.Page(context.Background(), "token", ReviewsRequest{
		AgencyID:       "MDI",
		LocationPrefix: "MDI-1",
		LevelCode:      "STD",
		Page:           9,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, page.Page)
	assert.Len(t, page.Table.Reviews, 5)
	require.Len(t, api.queries, 2)
	assert.Equal(t, 3, api.queries[1].Page)
}

func TestReviewsPage_UnknownLevelShowsFirstLevel(t *testing.T) {
	_, svc := newReviewsFixture(45)

	page, err := svc.Page(context.Background(), "token", ReviewsRequest{
		AgencyID:       "MDI",
		LocationPrefix: "MDI-1",
		LevelCode:      "XYZ",
		Page:           2,
	})
	require.NoError(t, err)

	assert.Equal(t, "BAS", page.LevelCode)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Table.Reviews, 3)
}

func TestReviewsPage_LocationMustBelongToPrison(t *testing.T) {
	_, svc := newReviewsFixture(10)

	tests := []struct {
		name     string
		agencyID string
		prefix   string
	}{
		{"other prison", "MDI", "LEI-1"},
		{"unknown wing", "MDI", "MDI-9"},
		{"no caseload", "", "MDI-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Page(context.Background(), "token", ReviewsRequest{
				AgencyID:       tt.agencyID,
				LocationPrefix: tt.prefix,
			})
			assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
		})
	}
}

func TestReviewsPage_UpstreamErrorPassesThrough(t *testing.T) {
	api, svc := newReviewsFixture(10)
	api.err = domain.Unavailable(nil, "test", "down")

	_, err := svc.Page(context.Background(), "token", ReviewsRequest{AgencyID: "MDI", LocationPrefix: "MDI-1"})
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

func TestReviewsAll_FetchesEveryPage(t *testing.T) {
	api, svc := newReviewsFixture(250)

	page, err := svc.All(context.Background(), "token", ReviewsRequest{
		AgencyID:       "MDI",
		LocationPrefix: "MDI-1",
		LevelCode:      "STD",
	})
	require.NoError(t, err)

	assert.Len(t, page.Table.Reviews, 250)
	assert.Len(t, api.queries, 3)
	assert.Equal(t, "A0249BC", page.Table.Reviews[249].PrisonerNumber)
}

func TestReviewsAll_UnknownLevelExportsFirstLevel(t *testing.T) {
	api := &fakeIncentivesAPI{
		levels: []domain.ReviewLevel{
			{LevelCode: "STD", LevelName: "Standard", ReviewCount: 250},
			{LevelCode: "ENH", LevelName: "Enhanced", ReviewCount: 3},
		},
		reviews: map[string][]domain.Review{
			"STD": makeReviews(250),
			"ENH": makeReviews(3),
		},
	}
	wings := &fakeWingsAPI{wings: []domain.Location{{Prefix: "MDI-1", Description: "Houseblock 1"}}}
	svc := NewReviewsService(api, wings, testLogger())

	page, err := svc.All(context.Background(), "token", ReviewsRequest{
		AgencyID:       "MDI",
		LocationPrefix: "MDI-1",
		LevelCode:      "XYZ",
	})
	require.NoError(t, err)

	assert.Equal(t, "STD", page.LevelCode)
	assert.Len(t, page.Table.Reviews, 250)
	require.Len(t, api.queries, 4)
	assert.Equal(t, "XYZ", api.queries[0].LevelCode)
	for _, q := range api.queries[1:] {
		assert.Equal(t, "STD", q.LevelCode)
	}
	assert.Equal(t, 1, api.queries[1].Page)
}
