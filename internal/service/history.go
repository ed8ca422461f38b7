package service

import (
	"context"
	"log/slog"

	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/pagination"
)

// HistoryPageSize is the number of reviews shown on one page of a prisoner's history.
const HistoryPageSize = 10

// PrisonerAPI fetches prisoner details.
type PrisonerAPI interface {
	GetPrisoner(ctx context.Context, token, prisonerNumber string) (*domain.Prisoner, error)
}

// HistoryAPI fetches a prisoner's incentive reviews.
type HistoryAPI interface {
	GetIncentiveHistory(ctx context.Context, token, prisonerNumber string) (*domain.IncentiveHistory, error)
}

// PrisonerHistory is one page of a prisoner's incentive history.
type PrisonerHistory struct {
	Prisoner    *domain.Prisoner
	History     *domain.IncentiveHistory
	Reviews     []domain.IncentiveReview // Reviews on this page
	Page        int
	TotalPages  int
	ResultCount int
}

// HistoryService loads prisoners' incentive histories.
type HistoryService interface {
	// Get loads the prisoner and the given page of their reviews. user must have
	// the prisoner's prison in their caseloads or hold the global search role.
	Get(ctx context.Context, user *domain.User, token, prisonerNumber string, page int) (*PrisonerHistory, error)
}

type historyService struct {
	prisoners PrisonerAPI
	history   HistoryAPI
	logger    *slog.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(prisoners PrisonerAPI, history HistoryAPI, logger *slog.Logger) HistoryService {
	return &historyService{
		prisoners: prisoners,
		history:   history,
		logger:    logger,
	}
}

func (s *historyService) Get(ctx context.Context, user *domain.User, token, prisonerNumber string, page int) (*PrisonerHistory, error) {
	const op = "HistoryService.Get"

	if user == nil {
		return nil, domain.Unauthorized(op, "You need to sign in to see this page")
	}
	if !domain.ValidPrisonerNumber(prisonerNumber) {
		return nil, domain.NotFound(op, "prisoner", prisonerNumber)
	}

	prisoner, err := s.prisoners.GetPrisoner(ctx, token, prisonerNumber)
	if err != nil {
		return nil, err
	}
	if !canView(user, prisoner.AgencyID) {
		s.logger.Info("prisoner not in user's caseloads",
			"username", user.Username,
			"prisoner_number", prisonerNumber,
			"agency_id", prisoner.AgencyID,
		)
		return nil, domain.Forbidden(op, "You do not have access to this prisoner")
	}

	history, err := s.history.GetIncentiveHistory(ctx, token, prisonerNumber)
	if err != nil {
		return nil, err
	}

	count := len(history.Reviews)
	totalPages := pagination.TotalPages(count, HistoryPageSize)
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	from := (page - 1) * HistoryPageSize
	to := min(from+HistoryPageSize, count)

	return &PrisonerHistory{
		Prisoner:    prisoner,
		History:     history,
		Reviews:     history.Reviews[from:to],
		Page:        page,
		TotalPages:  totalPages,
		ResultCount: count,
	}, nil
}

func canView(user *domain.User, agencyID string) bool {
	if user == nil {
		return false
	}
	if user.HasRole(domain.RoleGlobalSearch) {
		return true
	}
	for _, caseload := range user.Caseloads {
		if caseload.ID == agencyID {
			return true
		}
	}
	return false
}
