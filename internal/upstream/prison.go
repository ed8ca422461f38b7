package upstream

import (
	"context"
	"strings"

	"github.com/hmpps/incentives-ui/internal/domain"
)

// PrisonAPI reads locations, prisoners and caseloads from the prison API.
type PrisonAPI struct {
	client *Client
}

// NewPrisonAPI wraps a client pointed at the prison API.
func NewPrisonAPI(client *Client) *PrisonAPI {
	return &PrisonAPI{client: client}
}

type prisonLocation struct {
	LocationPrefix  string `json:"locationPrefix"`
	Description     string `json:"description"`
	UserDescription string `json:"userDescription"`
}

// GetWings lists the residential wings of agencyID.
func (p *PrisonAPI) GetWings(ctx context.Context, token, agencyID string) ([]domain.Location, error) {
	const op = "prison.GetWings"

	var body []prisonLocation
	resp, err := p.client.request(ctx, token).
		SetPathParam("agencyId", agencyID).
		SetResult(&body).
		Get("/api/agencies/{agencyId}/locations/type/WING")
	if err := p.client.check(op, resp, err); err != nil {
		return nil, err
	}

	locations := make([]domain.Location, 0, len(body))
	for _, l := range body {
		description := l.UserDescription
		if description == "" {
			description = l.Description
		}
		locations = append(locations, domain.Location{Prefix: l.LocationPrefix, Description: description})
	}
	return locations, nil
}

type prisonerDetails struct {
	OffenderNo         string `json:"offenderNo"`
	BookingID          int64  `json:"bookingId"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	AgencyID           string `json:"agencyId"`
	AssignedLivingUnit struct {
		Description string `json:"description"`
	} `json:"assignedLivingUnit"`
}

// GetPrisoner returns a prisoner's basic details.
func (p *PrisonAPI) GetPrisoner(ctx context.Context, token, prisonerNumber string) (*domain.Prisoner, error) {
	const op = "prison.GetPrisoner"

	var body prisonerDetails
	resp, err := p.client.request(ctx, token).
		SetPathParam("prisonerNumber", prisonerNumber).
		SetQueryParam("basicInfo", "true").
		SetResult(&body).
		Get("/api/bookings/offenderNo/{prisonerNumber}")
	if err := p.client.check(op, resp, err); err != nil {
		return nil, err
	}

	return &domain.Prisoner{
		PrisonerNumber: body.OffenderNo,
		BookingID:      body.BookingID,
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		AgencyID:       body.AgencyID,
		Location:       body.AssignedLivingUnit.Description,
	}, nil
}

// GetPhoto returns the JPEG image of a prisoner.
func (p *PrisonAPI) GetPhoto(ctx context.Context, token, prisonerNumber string) ([]byte, error) {
	const op = "prison.GetPhoto"

	resp, err := p.client.request(ctx, token).
		SetHeader("Accept", "image/jpeg").
		SetPathParam("prisonerNumber", prisonerNumber).
		SetQueryParam("fullSizeImage", "false").
		Get("/api/bookings/offenderNo/{prisonerNumber}/image/data")
	if err := p.client.check(op, resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

type prisonCaseload struct {
	CaseloadID      string `json:"caseLoadId"`
	Description     string `json:"description"`
	CurrentlyActive bool   `json:"currentlyActive"`
}

// GetUserCaseloads returns the caseloads of the user the token belongs to and the
// ID of the active one.
func (p *PrisonAPI) GetUserCaseloads(ctx context.Context, token string) ([]domain.Caseload, string, error) {
	const op = "prison.GetUserCaseloads"

	var body []prisonCaseload
	resp, err := p.client.request(ctx, token).
		SetResult(&body).
		Get("/api/users/me/caseLoads")
	if err := p.client.check(op, resp, err); err != nil {
		return nil, "", err
	}

	var active string
	caseloads := make([]domain.Caseload, 0, len(body))
	for _, c := range body {
		caseloads = append(caseloads, domain.Caseload{ID: c.CaseloadID, Name: strings.TrimSpace(c.Description)})
		if c.CurrentlyActive {
			active = c.CaseloadID
		}
	}
	return caseloads, active, nil
}
