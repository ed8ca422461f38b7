package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hmpps/incentives-ui/internal/domain"
)

// LevelsAPI manages incentive levels.
type LevelsAPI interface {
	ListLevels(ctx context.Context, token string) ([]domain.IncentiveLevel, error)
	GetLevel(ctx context.Context, token, code string) (*domain.IncentiveLevel, error)
	CreateLevel(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error)
	UpdateLevel(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error)
}

// LevelService defines the operations on incentive levels.
type LevelService interface {
	List(ctx context.Context, token string) ([]domain.IncentiveLevel, error)
	Get(ctx context.Context, token, code string) (*domain.IncentiveLevel, error)

	// Create validates and adds a new level.
	Create(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error)

	// Update validates and changes an existing level. The code cannot change.
	Update(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error)
}

type levelService struct {
	api    LevelsAPI
	logger *slog.Logger
}

// NewLevelService creates a new LevelService.
func NewLevelService(api LevelsAPI, logger *slog.Logger) LevelService {
	return &levelService{
		api:    api,
		logger: logger,
	}
}

func (s *levelService) List(ctx context.Context, token string) ([]domain.IncentiveLevel, error) {
	return s.api.ListLevels(ctx, token)
}

func (s *levelService) Get(ctx context.Context, token, code string) (*domain.IncentiveLevel, error) {
	return s.api.GetLevel(ctx, token, strings.ToUpper(code))
}

func (s *levelService) Create(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error) {
	const op = "LevelService.Create"

	level = normaliseLevel(level)
	if err := level.Validate(op, true); err != nil {
		return nil, err
	}

	created, err := s.api.CreateLevel(ctx, token, level)
	if err != nil {
		if domain.ErrorCode(err) == domain.ECONFLICT {
			return nil, domain.NewValidationError(op, "code", "A level with this code already exists")
		}
		return nil, err
	}

	s.logger.Info("incentive level created", "code", created.Code, "name", created.Name)
	return created, nil
}

func (s *levelService) Update(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error) {
	const op = "LevelService.Update"

	level = normaliseLevel(level)
	if err := level.Validate(op, false); err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateLevel(ctx, token, level)
	if err != nil {
		return nil, err
	}

	s.logger.Info("incentive level updated",
		"code", updated.Code,
		"active", updated.Active,
		"required", updated.Required,
	)
	return updated, nil
}

func normaliseLevel(level domain.IncentiveLevel) domain.IncentiveLevel {
	level.Code = strings.ToUpper(strings.TrimSpace(level.Code))
	level.Name = strings.TrimSpace(level.Name)
	return level
}
