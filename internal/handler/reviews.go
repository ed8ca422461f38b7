package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/pagination"
	"github.com/hmpps/incentives-ui/internal/report"
	"github.com/hmpps/incentives-ui/internal/service"
)

// =============================================================================
// Template Data Types
// =============================================================================

// LevelTab is one incentive level tab above a reviews table.
type LevelTab struct {
	Code     string
	Name     string
	Count    int
	Overdue  int
	Href     string
	Selected bool
}

// SortHeader is a sortable column heading.
type SortHeader struct {
	Label    string
	Href     string
	AriaSort string
}

// ExportLink downloads the current table in one format.
type ExportLink struct {
	Label string
	Href  string
}

// ReviewsTablePageData contains data for the reviews table page.
type ReviewsTablePageData struct {
	Layout
	Location     domain.Location
	Locations    []domain.Location
	Levels       []LevelTab
	LevelName    string
	Headers      []SortHeader
	Reviews      []domain.Review
	OverdueCount int
	Pagination   pagination.Navigation
	Exports      []ExportLink
	Now          time.Time
}

// SelectLocationPageData contains data for the choose-a-wing page.
type SelectLocationPageData struct {
	Layout
	Locations []domain.Location
	Selected  string
	Error     string
}

// sortLabels are the column headings of the sortable columns.
var sortLabels = map[domain.SortColumn]string{
	domain.SortLastName:            "Name",
	domain.SortPrisonerNumber:      "Prison number",
	domain.SortDaysSinceLastReview: "Days since last review",
	domain.SortNextReviewDate:      "Next review due by",
	domain.SortPositiveBehaviours:  "Positive behaviours",
	domain.SortNegativeBehaviours:  "Negative behaviours",
	domain.SortHasACCTOpen:         "ACCT open",
	domain.SortIsNewToPrison:       "New to prison",
}

// =============================================================================
// Handler Configuration
// =============================================================================

// ReviewsHandler handles the reviews table and its exports.
type ReviewsHandler struct {
	*Pages
	reviews service.ReviewsService
	tokens  SystemTokenSource
	now     func() time.Time
}

// NewReviewsHandler creates a new ReviewsHandler.
func NewReviewsHandler(pages *Pages, reviews service.ReviewsService, tokens SystemTokenSource) *ReviewsHandler {
	return &ReviewsHandler{
		Pages:   pages,
		reviews: reviews,
		tokens:  tokens,
		now:     time.Now,
	}
}

// RegisterRoutes registers the reviews routes behind the given middleware.
//
// Routes registered:
// - GET  /select-location                           -> SelectLocation
// - POST /select-location                           -> ChooseLocation
// - GET  /incentive-summary/{locationPrefix}        -> Table
// - GET  /incentive-summary/{locationPrefix}/{file} -> Export (file is export.csv, export.xlsx or export.pdf)
func (h *ReviewsHandler) RegisterRoutes(mux *http.ServeMux, mw func(http.Handler) http.Handler) {
	mux.Handle("GET /select-location", mw(http.HandlerFunc(h.SelectLocation)))
	mux.Handle("POST /select-location", mw(http.HandlerFunc(h.ChooseLocation)))
	mux.Handle("GET /incentive-summary/{locationPrefix}", mw(http.HandlerFunc(h.Table)))
	mux.Handle("GET /incentive-summary/{locationPrefix}/{file}", mw(http.HandlerFunc(h.Export)))
}

// =============================================================================
// GET /incentive-summary/{locationPrefix}
// =============================================================================

// Table shows one page of the reviews table for a wing and level.
func (h *ReviewsHandler) Table(w http.ResponseWriter, r *http.Request) {
	req, token, err := h.request(r, "ReviewsHandler.Table")
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}
	req.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))

	page, err := h.reviews.Page(r.Context(), token, req)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	base := "/incentive-summary/" + url.PathEscape(page.Location.Prefix)
	data := ReviewsTablePageData{
		Layout:       h.layout(r, page.Location.Description),
		Location:     page.Location,
		Locations:    page.Locations,
		Reviews:      page.Table.Reviews,
		OverdueCount: page.Table.OverdueCount,
		Now:          h.now(),
	}

	for _, level := range page.Table.Levels {
		q := url.Values{}
		q.Set("level", level.LevelCode)
		setSort(q, page.Sort)
		tab := LevelTab{
			Code:     level.LevelCode,
			Name:     level.LevelName,
			Count:    level.ReviewCount,
			Overdue:  level.OverdueCount,
			Href:     base + "?" + q.Encode(),
			Selected: level.LevelCode == page.LevelCode,
		}
		if tab.Selected {
			data.LevelName = level.LevelName
		}
		data.Levels = append(data.Levels, tab)
	}

	for _, column := range domain.SortColumns {
		q := url.Values{}
		q.Set("level", page.LevelCode)
		setSort(q, page.Sort.Toggle(column))
		data.Headers = append(data.Headers, SortHeader{
			Label:    sortLabels[column],
			Href:     base + "?" + q.Encode(),
			AriaSort: page.Sort.AriaSort(column),
		})
	}

	q := url.Values{}
	q.Set("level", page.LevelCode)
	setSort(q, page.Sort)
	data.Pagination = pagination.Compute(page.Page, page.TotalPages, base+"?"+q.Encode()+"&")

	for _, f := range []report.Format{report.FormatCSV, report.FormatXLSX, report.FormatPDF} {
		data.Exports = append(data.Exports, ExportLink{
			Label: strings.ToUpper(string(f)),
			Href:  base + "/export." + string(f) + "?" + q.Encode(),
		})
	}

	h.render(w, "reviews/table", data)
}

// =============================================================================
// GET /incentive-summary/{locationPrefix}/export.{format}
// =============================================================================

// Export downloads every review on the selected level.
func (h *ReviewsHandler) Export(w http.ResponseWriter, r *http.Request) {
	const op = "ReviewsHandler.Export"

	ext, ok := strings.CutPrefix(r.PathValue("file"), "export.")
	if !ok {
		NotFoundResponse(w, r, h.Logger)
		return
	}
	f, ok := report.ParseFormat(ext)
	if !ok {
		NotFoundResponse(w, r, h.Logger)
		return
	}

	req, token, err := h.request(r, op)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	page, err := h.reviews.All(r.Context(), token, req)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	now := h.now()
	data := &report.Data{
		Location:    page.Location.Description,
		Level:       page.LevelCode,
		GeneratedAt: now,
		Reviews:     page.Table.Reviews,
	}
	for _, level := range page.Table.Levels {
		if level.LevelCode == page.LevelCode {
			data.Level = level.LevelName
		}
	}
	if caseload := auth.GetUserFromRequest(r).ActiveCaseload(); caseload != nil {
		data.Prison = caseload.Name
	}

	// Generated in full first so a failure can still be shown as an error page.
	var buf bytes.Buffer
	if _, err := report.Write(r.Context(), f, data, &buf); err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	filename := report.Filename(page.Location.Prefix, page.LevelCode, now, f)
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)

	h.Logger.Info("reviews exported",
		"location", page.Location.Prefix,
		"level", page.LevelCode,
		"format", f,
		"rows", len(data.Reviews),
	)
}

// =============================================================================
// GET /select-location
// =============================================================================

// SelectLocation lists the wings of the active caseload.
func (h *ReviewsHandler) SelectLocation(w http.ResponseWriter, r *http.Request) {
	h.renderSelectLocation(w, r, http.StatusOK, "")
}

// =============================================================================
// POST /select-location
// =============================================================================

// ChooseLocation redirects to the reviews table of the chosen wing.
func (h *ReviewsHandler) ChooseLocation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderSelectLocation(w, r, http.StatusBadRequest, "Select a location")
		return
	}
	prefix := strings.TrimSpace(r.PostFormValue("location"))
	if prefix == "" {
		h.renderSelectLocation(w, r, http.StatusBadRequest, "Select a location")
		return
	}
	http.Redirect(w, r, "/incentive-summary/"+url.PathEscape(prefix), http.StatusSeeOther)
}

func (h *ReviewsHandler) renderSelectLocation(w http.ResponseWriter, r *http.Request, status int, message string) {
	const op = "ReviewsHandler.SelectLocation"

	agencyID, err := activeCaseload(r, op)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}
	token, err := systemToken(r, h.tokens)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}
	locations, err := h.reviews.Locations(r.Context(), token, agencyID)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	h.renderStatus(w, status, "reviews/select-location", SelectLocationPageData{
		Layout:    h.layout(r, "Select a location"),
		Locations: locations,
		Selected:  r.PostFormValue("location"),
		Error:     message,
	})
}

// request reads the table selection shared by Table and Export.
func (h *ReviewsHandler) request(r *http.Request, op string) (service.ReviewsRequest, string, error) {
	agencyID, err := activeCaseload(r, op)
	if err != nil {
		return service.ReviewsRequest{}, "", err
	}
	token, err := systemToken(r, h.tokens)
	if err != nil {
		return service.ReviewsRequest{}, "", err
	}

	query := r.URL.Query()
	return service.ReviewsRequest{
		AgencyID:       agencyID,
		LocationPrefix: r.PathValue("locationPrefix"),
		LevelCode:      strings.ToUpper(strings.TrimSpace(query.Get("level"))),
		Sort:           domain.ParseReviewSort(query.Get("sort"), query.Get("order")),
	}, token, nil
}

func setSort(q url.Values, s domain.ReviewSort) {
	q.Set("sort", string(s.Column))
	q.Set("order", string(s.Order))
}
