package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/pagination"
	"github.com/hmpps/incentives-ui/internal/service"
)

// PrisonerHistoryPageData contains data for a prisoner's incentive history.
type PrisonerHistoryPageData struct {
	Layout
	Prisoner   *domain.Prisoner
	History    *domain.IncentiveHistory
	Reviews    []domain.IncentiveReview
	PhotoURL   string
	Pagination pagination.LegacyNavigation
}

// PrisonerHandler handles pages about a single prisoner.
type PrisonerHandler struct {
	*Pages
	history     service.HistoryService
	photos      service.PhotoService
	tokens      SystemTokenSource
	placeholder []byte
}

// NewPrisonerHandler creates a new PrisonerHandler. placeholder is served when a
// prisoner has no photo.
func NewPrisonerHandler(pages *Pages, history service.HistoryService, photos service.PhotoService, tokens SystemTokenSource, placeholder []byte) *PrisonerHandler {
	return &PrisonerHandler{
		Pages:       pages,
		history:     history,
		photos:      photos,
		tokens:      tokens,
		placeholder: placeholder,
	}
}

// RegisterRoutes registers the prisoner routes behind the given middleware.
//
// Routes registered:
// - GET /incentive-reviews/prisoner/{prisonerNumber} -> History
// - GET /prisoner-images/{file}                      -> Photo (file is {prisonerNumber}.jpeg)
func (h *PrisonerHandler) RegisterRoutes(mux *http.ServeMux, mw func(http.Handler) http.Handler) {
	mux.Handle("GET /incentive-reviews/prisoner/{prisonerNumber}", mw(http.HandlerFunc(h.History)))
	mux.Handle("GET /prisoner-images/{file}", mw(http.HandlerFunc(h.Photo)))
}

// =============================================================================
// GET /incentive-reviews/prisoner/{prisonerNumber}
// =============================================================================

// History shows a page of a prisoner's incentive reviews.
func (h *PrisonerHandler) History(w http.ResponseWriter, r *http.Request) {
	const op = "PrisonerHandler.History"

	prisonerNumber := strings.ToUpper(r.PathValue("prisonerNumber"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	token, err := systemToken(r, h.tokens)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	result, err := h.history.Get(r.Context(), auth.GetUserFromRequest(r), token, prisonerNumber, page)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	base := "/incentive-reviews/prisoner/" + url.PathEscape(prisonerNumber) + "?"
	nav, err := pagination.ComputeLegacy(result.Page, result.TotalPages, base, result.ResultCount, service.HistoryPageSize)
	if err != nil {
		ErrorResponse(w, r, h.Logger, domain.Internal(err, op, "Failed to build pagination"))
		return
	}

	h.render(w, "prisoner/history", PrisonerHistoryPageData{
		Layout:     h.layout(r, "Incentive reviews"),
		Prisoner:   result.Prisoner,
		History:    result.History,
		Reviews:    result.Reviews,
		PhotoURL:   "/prisoner-images/" + url.PathEscape(prisonerNumber) + ".jpeg",
		Pagination: nav,
	})
}

// =============================================================================
// GET /prisoner-images/{prisonerNumber}.jpeg
// =============================================================================

// Photo serves a resized prisoner photo, or the placeholder when there is none.
func (h *PrisonerHandler) Photo(w http.ResponseWriter, r *http.Request) {
	prisonerNumber, ok := strings.CutSuffix(r.PathValue("file"), ".jpeg")
	if !ok {
		NotFoundResponse(w, r, h.Logger)
		return
	}

	token, err := systemToken(r, h.tokens)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	photo, err := h.photos.Photo(r.Context(), token, strings.ToUpper(prisonerNumber))
	switch {
	case domain.ErrorCode(err) == domain.ENOTFOUND:
		photo = h.placeholder
	case err != nil:
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(photo)))
	_, _ = w.Write(photo)
}
