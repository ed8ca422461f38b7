package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/service"
)

// =============================================================================
// Template Data Types
// =============================================================================

// LevelListPageData contains data for the incentive levels list.
type LevelListPageData struct {
	Layout
	Levels []domain.IncentiveLevel
}

// LevelFormPageData contains data for the add and edit level forms.
type LevelFormPageData struct {
	Layout
	Level  domain.IncentiveLevel
	Errors map[string]string // Field-level validation errors
	IsEdit bool              // true for edit, false for add
	Action string            // Form action URL
}

// =============================================================================
// Handler Configuration
// =============================================================================

// LevelHandler handles incentive level management. Every route needs the
// maintain incentive levels role, which the caller's middleware enforces.
type LevelHandler struct {
	*Pages
	levels service.LevelService
}

// NewLevelHandler creates a new LevelHandler.
func NewLevelHandler(pages *Pages, levels service.LevelService) *LevelHandler {
	return &LevelHandler{
		Pages:  pages,
		levels: levels,
	}
}

// RegisterRoutes registers the level routes behind the given middleware.
//
// Routes registered:
// - GET  /incentive-levels             -> List
// - GET  /incentive-levels/add         -> New
// - POST /incentive-levels/add         -> Create
// - GET  /incentive-levels/edit/{code} -> Edit
// - POST /incentive-levels/edit/{code} -> Update
func (h *LevelHandler) RegisterRoutes(mux *http.ServeMux, mw func(http.Handler) http.Handler) {
	mux.Handle("GET /incentive-levels", mw(http.HandlerFunc(h.List)))
	mux.Handle("GET /incentive-levels/add", mw(http.HandlerFunc(h.New)))
	mux.Handle("POST /incentive-levels/add", mw(http.HandlerFunc(h.Create)))
	mux.Handle("GET /incentive-levels/edit/{code}", mw(http.HandlerFunc(h.Edit)))
	mux.Handle("POST /incentive-levels/edit/{code}", mw(http.HandlerFunc(h.Update)))
}

// =============================================================================
// GET /incentive-levels
// =============================================================================

// List shows every incentive level.
func (h *LevelHandler) List(w http.ResponseWriter, r *http.Request) {
	levels, err := h.levels.List(r.Context(), auth.GetToken(r.Context()))
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}

	data := LevelListPageData{
		Layout: h.layout(r, "Incentive levels"),
		Levels: levels,
	}
	if saved := r.URL.Query().Get("saved"); saved != "" {
		for _, level := range levels {
			if level.Code == saved {
				data.Flash = &Flash{Type: "success", Message: level.Name + " has been saved"}
			}
		}
	}
	h.render(w, "levels/index", data)
}

// =============================================================================
// GET /incentive-levels/add
// =============================================================================

// New shows the add level form.
func (h *LevelHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, domain.IncentiveLevel{Active: true}, nil, false)
}

// =============================================================================
// POST /incentive-levels/add
// =============================================================================

// Create adds a level.
func (h *LevelHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Logger.Error("failed to parse form", "error", err)
		ErrorResponse(w, r, h.Logger, domain.Invalid("LevelHandler.Create", "Invalid form submission"))
		return
	}

	level := levelFromForm(r)
	level.Code = r.PostFormValue("code")

	created, err := h.levels.Create(r.Context(), auth.GetToken(r.Context()), level)
	if err != nil {
		h.handleFormError(w, r, level, err, false)
		return
	}
	http.Redirect(w, r, "/incentive-levels?saved="+url.QueryEscape(created.Code), http.StatusSeeOther)
}

// =============================================================================
// GET /incentive-levels/edit/{code}
// =============================================================================

// Edit shows the edit level form.
func (h *LevelHandler) Edit(w http.ResponseWriter, r *http.Request) {
	level, err := h.levels.Get(r.Context(), auth.GetToken(r.Context()), r.PathValue("code"))
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, *level, nil, true)
}

// =============================================================================
// POST /incentive-levels/edit/{code}
// =============================================================================

// Update changes a level. The code comes from the URL and cannot change.
func (h *LevelHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Logger.Error("failed to parse form", "error", err)
		ErrorResponse(w, r, h.Logger, domain.Invalid("LevelHandler.Update", "Invalid form submission"))
		return
	}

	level := levelFromForm(r)
	level.Code = strings.ToUpper(r.PathValue("code"))

	updated, err := h.levels.Update(r.Context(), auth.GetToken(r.Context()), level)
	if err != nil {
		h.handleFormError(w, r, level, err, true)
		return
	}
	http.Redirect(w, r, "/incentive-levels?saved="+url.QueryEscape(updated.Code), http.StatusSeeOther)
}

// =============================================================================
// Helper Functions
// =============================================================================

func levelFromForm(r *http.Request) domain.IncentiveLevel {
	return domain.IncentiveLevel{
		Name:     r.PostFormValue("name"),
		Active:   r.PostFormValue("active") == "yes",
		Required: r.PostFormValue("required") == "yes",
	}
}

// handleFormError re-renders the form for validation failures and falls back to
// the error page for anything else.
func (h *LevelHandler) handleFormError(w http.ResponseWriter, r *http.Request, level domain.IncentiveLevel, err error, isEdit bool) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		ErrorResponse(w, r, h.Logger, err)
		return
	}
	h.Logger.Info("validation error",
		"op", ve.Op,
		"field_count", len(ve.Fields),
		"path", r.URL.Path,
	)
	h.renderForm(w, r, http.StatusBadRequest, level, ve.Fields, isEdit)
}

func (h *LevelHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, level domain.IncentiveLevel, errs map[string]string, isEdit bool) {
	title := "Add a new incentive level"
	action := "/incentive-levels/add"
	if isEdit {
		title = "Change " + level.Name
		action = "/incentive-levels/edit/" + url.PathEscape(level.Code)
	}
	h.renderStatus(w, status, "levels/form", LevelFormPageData{
		Layout: h.layout(r, title),
		Level:  level,
		Errors: errs,
		IsEdit: isEdit,
		Action: action,
	})
}
