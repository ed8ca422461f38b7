package upstream

import (
	"context"
	"strconv"

	"github.com/hmpps/incentives-ui/internal/domain"
)

// IncentivesAPI reads reviews and history and maintains incentive levels.
type IncentivesAPI struct {
	client *Client
}

// NewIncentivesAPI wraps a client pointed at the incentives API.
func NewIncentivesAPI(client *Client) *IncentivesAPI {
	return &IncentivesAPI{client: client}
}

type reviewsResponse struct {
	LocationDescription string `json:"locationDescription"`
	OverdueCount        int    `json:"overdueCount"`
	Levels              []struct {
		LevelCode    string `json:"levelCode"`
		LevelName    string `json:"levelName"`
		ReviewCount  int    `json:"reviewCount"`
		OverdueCount int    `json:"overdueCount"`
	} `json:"levels"`
	Reviews []struct {
		PrisonerNumber      string  `json:"prisonerNumber"`
		BookingID           int64   `json:"bookingId"`
		FirstName           string  `json:"firstName"`
		LastName            string  `json:"lastName"`
		LevelCode           string  `json:"levelCode"`
		PositiveBehaviours  int     `json:"positiveBehaviours"`
		NegativeBehaviours  int     `json:"negativeBehaviours"`
		HasACCTOpen         bool    `json:"hasAcctOpen"`
		IsNewToPrison       bool    `json:"isNewToPrison"`
		NextReviewDate      apiDate `json:"nextReviewDate"`
		DaysSinceLastReview *int    `json:"daysSinceLastReview"`
	} `json:"reviews"`
}

// GetReviews returns one page of the reviews table for a location and level.
// The API counts pages from 0; q.Page counts from 1.
func (a *IncentivesAPI) GetReviews(ctx context.Context, token string, q domain.ReviewsQuery) (*domain.ReviewsTable, error) {
	const op = "incentives.GetReviews"

	sort := q.Sort
	if sort.Column == "" {
		sort = domain.DefaultReviewSort
	}

	var body reviewsResponse
	resp, err := a.client.request(ctx, token).
		SetPathParams(map[string]string{
			"agencyId":       q.AgencyID,
			"locationPrefix": q.LocationPrefix,
			"levelCode":      q.LevelCode,
		}).
		SetQueryParams(map[string]string{
			"sort":     string(sort.Column),
			"order":    string(sort.Order),
			"page":     strconv.Itoa(max(q.Page-1, 0)),
			"pageSize": strconv.Itoa(q.PageSize),
		}).
		SetResult(&body).
		Get("/incentive-reviews/prison/{agencyId}/location/{locationPrefix}/level/{levelCode}")
	if err := a.client.check(op, resp, err); err != nil {
		return nil, err
	}

	table := &domain.ReviewsTable{
		LocationDescription: body.LocationDescription,
		OverdueCount:        body.OverdueCount,
		Levels:              make([]domain.ReviewLevel, 0, len(body.Levels)),
		Reviews:             make([]domain.Review, 0, len(body.Reviews)),
	}
	for _, l := range body.Levels {
		table.Levels = append(table.Levels, domain.ReviewLevel{
			LevelCode:    l.LevelCode,
			LevelName:    l.LevelName,
			ReviewCount:  l.ReviewCount,
			OverdueCount: l.OverdueCount,
		})
	}
	for _, r := range body.Reviews {
		table.Reviews = append(table.Reviews, domain.Review{
			PrisonerNumber:      r.PrisonerNumber,
			BookingID:           r.BookingID,
			FirstName:           r.FirstName,
			LastName:            r.LastName,
			LevelCode:           r.LevelCode,
			PositiveBehaviours:  r.PositiveBehaviours,
			NegativeBehaviours:  r.NegativeBehaviours,
			HasACCTOpen:         r.HasACCTOpen,
			IsNewToPrison:       r.IsNewToPrison,
			NextReviewDate:      r.NextReviewDate.Time,
			DaysSinceLastReview: r.DaysSinceLastReview,
		})
	}
	return table, nil
}

type historyResponse struct {
	BookingID       int64   `json:"bookingId"`
	PrisonerNumber  string  `json:"prisonerNumber"`
	IEPLevel        string  `json:"iepLevel"`
	NextReviewDate  apiDate `json:"nextReviewDate"`
	DaysSinceReview int     `json:"daysSinceReview"`
	IEPDetails      []struct {
		IEPDate         apiDate     `json:"iepDate"`
		IEPTime         apiDateTime `json:"iepTime"`
		AgencyID        string      `json:"agencyId"`
		IEPLevel        string      `json:"iepLevel"`
		Comments        string      `json:"comments"`
		UserID          string      `json:"userId"`
		AuditModuleName string      `json:"auditModuleName"`
	} `json:"iepDetails"`
}

// GetIncentiveHistory returns a prisoner's current level and review history.
func (a *IncentivesAPI) GetIncentiveHistory(ctx context.Context, token, prisonerNumber string) (*domain.IncentiveHistory, error) {
	const op = "incentives.GetIncentiveHistory"

	var body historyResponse
	resp, err := a.client.request(ctx, token).
		SetPathParam("prisonerNumber", prisonerNumber).
		SetQueryParam("with-details", "true").
		SetResult(&body).
		Get("/incentive-reviews/prisoner/{prisonerNumber}")
	if err := a.client.check(op, resp, err); err != nil {
		return nil, err
	}

	history := &domain.IncentiveHistory{
		PrisonerNumber:  body.PrisonerNumber,
		BookingID:       body.BookingID,
		CurrentLevel:    body.IEPLevel,
		NextReviewDate:  body.NextReviewDate.Time,
		DaysSinceReview: body.DaysSinceReview,
		Reviews:         make([]domain.IncentiveReview, 0, len(body.IEPDetails)),
	}
	for _, d := range body.IEPDetails {
		date := d.IEPTime.Time
		if date.IsZero() {
			date = d.IEPDate.Time
		}
		history.Reviews = append(history.Reviews, domain.IncentiveReview{
			Date:      date,
			Level:     d.IEPLevel,
			AgencyID:  d.AgencyID,
			Comments:  d.Comments,
			UserID:    d.UserID,
			Automatic: d.AuditModuleName != "" && d.AuditModuleName != "INCENTIVES_API",
		})
	}
	return history, nil
}

type incentiveLevel struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	Required bool   `json:"required"`
}

func (l incentiveLevel) toDomain() domain.IncentiveLevel {
	return domain.IncentiveLevel{Code: l.Code, Name: l.Name, Active: l.Active, Required: l.Required}
}

// ListLevels returns every incentive level, including inactive ones, in display order.
func (a *IncentivesAPI) ListLevels(ctx context.Context, token string) ([]domain.IncentiveLevel, error) {
	const op = "incentives.ListLevels"

	var body []incentiveLevel
	resp, err := a.client.request(ctx, token).
		SetQueryParam("with-inactive", "true").
		SetResult(&body).
		Get("/incentive/levels")
	if err := a.client.check(op, resp, err); err != nil {
		return nil, err
	}

	levels := make([]domain.IncentiveLevel, 0, len(body))
	for _, l := range body {
		levels = append(levels, l.toDomain())
	}
	return levels, nil
}

// GetLevel returns one incentive level.
func (a *IncentivesAPI) GetLevel(ctx context.Context, token, code string) (*domain.IncentiveLevel, error) {
	const op = "incentives.GetLevel"

	var body incentiveLevel
	resp, err := a.client.request(ctx, token).
		SetPathParam("code", code).
		SetQueryParam("with-inactive", "true").
		SetResult(&body).
		Get("/incentive/levels/{code}")
	if err := a.client.check(op, resp, err); err != nil {
		return nil, err
	}
	level := body.toDomain()
	return &level, nil
}

// CreateLevel adds a new incentive level.
func (a *IncentivesAPI) CreateLevel(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error) {
	const op = "incentives.CreateLevel"

	var body incentiveLevel
	resp, err := a.client.request(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(incentiveLevel{Code: level.Code, Name: level.Name, Active: level.Active, Required: level.Required}).
		SetResult(&body).
		Post("/incentive/levels")
	if err := a.client.check(op, resp, err); err != nil {
		return nil, err
	}
	created := body.toDomain()
	return &created, nil
}

// UpdateLevel changes the name and flags of an existing level.
func (a *IncentivesAPI) UpdateLevel(ctx context.Context, token string, level domain.IncentiveLevel) (*domain.IncentiveLevel, error) {
	const op = "incentives.UpdateLevel"

	var body incentiveLevel
	resp, err := a.client.request(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetPathParam("code", level.Code).
		SetBody(map[string]any{"name": level.Name, "active": level.Active, "required": level.Required}).
		SetResult(&body).
		Patch("/incentive/levels/{code}")
	if err := a.client.check(op, resp, err); err != nil {
		return nil, err
	}
	updated := body.toDomain()
	return &updated, nil
}
