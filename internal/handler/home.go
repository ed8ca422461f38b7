package handler

import (
	"net/http"

	"github.com/hmpps/incentives-ui/internal/domain"
)

// Tile is a link card on the home page.
type Tile struct {
	Title       string
	Description string
	Href        string
}

// HomePageData contains data for the home page.
type HomePageData struct {
	Layout
	CaseloadName string
	Tiles        []Tile
}

// HomeHandler renders the home page.
type HomeHandler struct {
	*Pages
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(pages *Pages) *HomeHandler {
	return &HomeHandler{Pages: pages}
}

// Home lists the parts of the service the user can use.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	// "GET /" matches every path without a more specific route.
	if r.URL.Path != "/" {
		NotFoundResponse(w, r, h.Logger)
		return
	}

	layout := h.layout(r, "Manage incentives")
	data := HomePageData{Layout: layout}
	if caseload := layout.User.ActiveCaseload(); caseload != nil {
		data.CaseloadName = caseload.Name
	}
	data.Tiles = tilesFor(layout.User)

	h.render(w, "home", data)
}

func tilesFor(user *domain.User) []Tile {
	var tiles []Tile
	if user != nil && user.ActiveCaseloadID != "" {
		tiles = append(tiles,
			Tile{
				Title:       "Manage incentive reviews",
				Description: "See incentive review information by residential location and level.",
				Href:        "/select-location",
			},
			Tile{
				Title:       "Incentives data",
				Description: "See behaviour entries recorded across your establishment in the last 28 days.",
				Href:        "/analytics/behaviour-entries",
			},
		)
	}
	if user.HasRole(domain.RoleMaintainIncentiveLevels) {
		tiles = append(tiles, Tile{
			Title:       "Manage incentive levels",
			Description: "Add incentive levels and change which are available.",
			Href:        "/incentive-levels",
		})
	}
	return tiles
}
