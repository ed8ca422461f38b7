package handler

import (
	"net/http"

	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/service"
)

// FeedbackPageData contains data for the feedback form and confirmation.
type FeedbackPageData struct {
	Layout
	Form     map[string]string // Form field values
	Errors   map[string]string // Field-level validation errors
	TicketID int64             // Set once the feedback has been sent
}

// FeedbackHandler handles the feedback form.
type FeedbackHandler struct {
	*Pages
	feedback service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(pages *Pages, feedback service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		Pages:    pages,
		feedback: feedback,
	}
}

// RegisterRoutes registers the feedback routes. Submissions also pass through
// limit, which is meant to rate limit them.
//
// Routes registered:
// - GET  /feedback -> Show
// - POST /feedback -> Submit
func (h *FeedbackHandler) RegisterRoutes(mux *http.ServeMux, mw, limit func(http.Handler) http.Handler) {
	mux.Handle("GET /feedback", mw(http.HandlerFunc(h.Show)))
	mux.Handle("POST /feedback", mw(limit(http.HandlerFunc(h.Submit))))
}

// Show renders the feedback form.
func (h *FeedbackHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.renderStatus(w, http.StatusOK, "feedback/form", FeedbackPageData{
		Layout: h.layout(r, "Give feedback"),
		Form:   map[string]string{"referer": r.Referer()},
	})
}

// Submit sends the feedback to the support desk.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Logger.Error("failed to parse form", "error", err)
		ErrorResponse(w, r, h.Logger, domain.Invalid("FeedbackHandler.Submit", "Invalid form submission"))
		return
	}

	user := auth.GetUserFromRequest(r)
	f := domain.Feedback{
		Message:   r.PostFormValue("message"),
		Email:     r.PostFormValue("email"),
		Referer:   r.PostFormValue("referer"),
		UserAgent: r.UserAgent(),
	}
	if user != nil {
		f.Username = user.Username
		f.Prison = user.ActiveCaseloadID
	}

	id, err := h.feedback.Submit(r.Context(), f)
	if errs := fieldErrors(err); errs != nil {
		h.renderStatus(w, http.StatusBadRequest, "feedback/form", FeedbackPageData{
			Layout: h.layout(r, "Give feedback"),
			Form: map[string]string{
				"message": f.Message,
				"email":   f.Email,
				"referer": f.Referer,
			},
			Errors: errs,
		})
		return
	}
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	h.render(w, "feedback/sent", FeedbackPageData{
		Layout:   h.layout(r, "Thank you for your feedback"),
		TicketID: id,
	})
}
