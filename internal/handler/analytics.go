package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/service"
)

// BehaviourEntriesPageData contains data for the behaviour entries chart page.
type BehaviourEntriesPageData struct {
	Layout
	Report *domain.BehaviourReport
	CSVURL string
}

// AnalyticsHandler handles the analytics pages.
type AnalyticsHandler struct {
	*Pages
	analytics service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(pages *Pages, analytics service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		Pages:     pages,
		analytics: analytics,
	}
}

// RegisterRoutes registers the analytics routes behind the given middleware.
//
// Routes registered:
// - GET /analytics/behaviour-entries -> BehaviourEntries (?format=csv downloads the table)
func (h *AnalyticsHandler) RegisterRoutes(mux *http.ServeMux, mw func(http.Handler) http.Handler) {
	mux.Handle("GET /analytics/behaviour-entries", mw(http.HandlerFunc(h.BehaviourEntries)))
}

// BehaviourEntries shows positive and negative behaviour entries per wing of the
// active caseload over the last 28 days.
func (h *AnalyticsHandler) BehaviourEntries(w http.ResponseWriter, r *http.Request) {
	const op = "AnalyticsHandler.BehaviourEntries"

	prison, err := activeCaseload(r, op)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	result, err := h.analytics.BehaviourEntries(r.Context(), prison)
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		h.writeCSV(w, r, result)
		return
	}

	h.render(w, "analytics/behaviour-entries", BehaviourEntriesPageData{
		Layout: h.layout(r, "Behaviour entries"),
		Report: result,
		CSVURL: "/analytics/behaviour-entries?format=csv",
	})
}

func (h *AnalyticsHandler) writeCSV(w http.ResponseWriter, r *http.Request, result *domain.BehaviourReport) {
	filename := fmt.Sprintf("behaviour-entries-%s-%s.csv", result.Prison, result.Date.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	records := [][]string{{"Wing", "Positive", "Negative", "Total"}}
	for _, row := range slices.Concat(result.Rows, []domain.BehaviourSummary{result.Totals}) {
		records = append(records, []string{
			row.Label,
			strconv.Itoa(row.Positives),
			strconv.Itoa(row.Negatives),
			strconv.Itoa(row.Total()),
		})
	}
	if err := cw.WriteAll(records); err != nil {
		h.Logger.Error("failed to write behaviour entries csv", "error", err, "path", r.URL.Path)
	}
}
