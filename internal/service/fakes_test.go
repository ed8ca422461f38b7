package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hmpps/incentives-ui/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeIncentivesAPI serves reviews from a fixed set of levels, paging them the
// way the incentives API does.
type fakeIncentivesAPI struct {
	levels  []domain.ReviewLevel
	reviews map[string][]domain.Review // by level code
	queries []domain.ReviewsQuery
	err     error
}

func (f *fakeIncentivesAPI) GetReviews(ctx context.Context, token string, q domain.ReviewsQuery) (*domain.ReviewsTable, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	all := f.reviews[q.LevelCode]
	from := min((q.Page-1)*q.PageSize, len(all))
	to := min(from+q.PageSize, len(all))
	return &domain.ReviewsTable{
		LocationDescription: "Houseblock 1",
		Levels:              f.levels,
		Reviews:             append([]domain.Review(nil), all[from:to]...),
	}, nil
}

type fakeWingsAPI struct {
	wings []domain.Location
}

func (f *fakeWingsAPI) GetWings(ctx context.Context, token, agencyID string) ([]domain.Location, error) {
	return f.wings, nil
}

func makeReviews(n int) []domain.Review {
	reviews := make([]domain.Review, n)
	for i := range reviews {
		reviews[i] = domain.Review{PrisonerNumber: fmt.Sprintf("A%04dBC", i), LevelCode: "STD"}
	}
	return reviews
}
