package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/pagination"
)

const (
	// ReviewsPageSize is the number of prisoners shown on one page of a reviews table.
	ReviewsPageSize = 20

	// exportPageSize is the page size used when fetching every page for an export.
	exportPageSize = 100

	// DefaultLevelCode is the tab shown when no level is selected.
	DefaultLevelCode = "STD"
)

// ReviewsAPI fetches reviews tables.
type ReviewsAPI interface {
	GetReviews(ctx context.Context, token string, q domain.ReviewsQuery) (*domain.ReviewsTable, error)
}

// WingsAPI lists the residential wings of a prison.
type WingsAPI interface {
	GetWings(ctx context.Context, token, agencyID string) ([]domain.Location, error)
}

// ReviewsRequest selects a page of a reviews table.
type ReviewsRequest struct {
	AgencyID       string
	LocationPrefix string
	LevelCode      string
	Sort           domain.ReviewSort
	Page           int
}

// ReviewsPage is a page of a reviews table with everything needed to render it.
type ReviewsPage struct {
	Location   domain.Location
	Locations  []domain.Location
	Table      *domain.ReviewsTable
	LevelCode  string
	Sort       domain.ReviewSort
	Page       int
	TotalPages int
}

// ReviewsService loads reviews tables for a wing.
type ReviewsService interface {
	// Locations lists the wings of a prison that reviews can be shown for.
	Locations(ctx context.Context, token, agencyID string) ([]domain.Location, error)

	// Page loads one page of the reviews table for a wing and level.
	Page(ctx context.Context, token string, req ReviewsRequest) (*ReviewsPage, error)

	// All loads every review for a wing and level, for exports.
	All(ctx context.Context, token string, req ReviewsRequest) (*ReviewsPage, error)
}

type reviewsService struct {
	reviews ReviewsAPI
	wings   WingsAPI
	logger  *slog.Logger
}

// NewReviewsService creates a new ReviewsService.
func NewReviewsService(reviews ReviewsAPI, wings WingsAPI, logger *slog.Logger) ReviewsService {
	return &reviewsService{
		reviews: reviews,
		wings:   wings,
		logger:  logger,
	}
}

func (s *reviewsService) Locations(ctx context.Context, token, agencyID string) ([]domain.Location, error) {
	return s.wings.GetWings(ctx, token, agencyID)
}

// location checks that prefix is a wing of agencyID.
func (s *reviewsService) location(ctx context.Context, token, agencyID, prefix string) (domain.Location, []domain.Location, error) {
	const op = "ReviewsService.location"

	if agencyID == "" || !strings.HasPrefix(prefix, agencyID+"-") {
		return domain.Location{}, nil, domain.NotFound(op, "location", prefix)
	}

	locations, err := s.wings.GetWings(ctx, token, agencyID)
	if err != nil {
		return domain.Location{}, nil, err
	}
	for _, loc := range locations {
		if loc.Prefix == prefix {
			return loc, locations, nil
		}
	}
	return domain.Location{}, locations, domain.NotFound(op, "location", prefix)
}

func (s *reviewsService) Page(ctx context.Context, token string, req ReviewsRequest) (*ReviewsPage, error) {
	location, locations, err := s.location(ctx, token, req.AgencyID, req.LocationPrefix)
	if err != nil {
		return nil, err
	}

	levelCode := req.LevelCode
	if levelCode == "" {
		levelCode = DefaultLevelCode
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	query := domain.ReviewsQuery{
		AgencyID:       req.AgencyID,
		LocationPrefix: req.LocationPrefix,
		LevelCode:      levelCode,
		Sort:           req.Sort,
		Page:           page,
		PageSize:       ReviewsPageSize,
	}
	table, err := s.reviews.GetReviews(ctx, token, query)
	if err != nil {
		return nil, err
	}

	// An unknown level shows the first tab instead.
	if len(table.Levels) > 0 && !hasLevel(table, levelCode) {
		query.LevelCode = table.Levels[0].LevelCode
		query.Page = 1
		if table, err = s.reviews.GetReviews(ctx, token, query); err != nil {
			return nil, err
		}
	}

	// Past the last page: show the last page.
	totalPages := pagination.TotalPages(table.ReviewCount(query.LevelCode), ReviewsPageSize)
	if totalPages > 0 && query.Page > totalPages {
		query.Page = totalPages
		if table, err = s.reviews.GetReviews(ctx, token, query); err != nil {
			return nil, err
		}
	}

	return &ReviewsPage{
		Location:   location,
		Locations:  locations,
		Table:      table,
		LevelCode:  query.LevelCode,
		Sort:       query.Sort,
		Page:       query.Page,
		TotalPages: totalPages,
	}, nil
}

func (s *reviewsService) All(ctx context.Context, token string, req ReviewsRequest) (*ReviewsPage, error) {
	location, locations, err := s.location(ctx, token, req.AgencyID, req.LocationPrefix)
	if err != nil {
		return nil, err
	}

	levelCode := req.LevelCode
	if levelCode == "" {
		levelCode = DefaultLevelCode
	}

	var all *domain.ReviewsTable
	for page := 1; ; page++ {
		table, err := s.reviews.GetReviews(ctx, token, domain.ReviewsQuery{
			AgencyID:       req.AgencyID,
			LocationPrefix: req.LocationPrefix,
			LevelCode:      levelCode,
			Sort:           req.Sort,
			Page:           page,
			PageSize:       exportPageSize,
		})
		if err != nil {
			return nil, err
		}
		if all == nil {
			// Export the tab the table page would show for an unknown level.
			if len(table.Levels) > 0 && !hasLevel(table, levelCode) {
				levelCode = table.Levels[0].LevelCode
				page = 0
				continue
			}
			all = table
		} else {
			all.Reviews = append(all.Reviews, table.Reviews...)
		}
		if len(table.Reviews) < exportPageSize || len(all.Reviews) >= all.ReviewCount(levelCode) {
			break
		}
	}

	s.logger.Debug("loaded reviews for export",
		"location", req.LocationPrefix,
		"level", levelCode,
		"count", len(all.Reviews),
	)

	return &ReviewsPage{
		Location:   location,
		Locations:  locations,
		Table:      all,
		LevelCode:  levelCode,
		Sort:       req.Sort,
		Page:       1,
		TotalPages: 1,
	}, nil
}

func hasLevel(table *domain.ReviewsTable, code string) bool {
	for _, level := range table.Levels {
		if level.LevelCode == code {
			return true
		}
	}
	return false
}
