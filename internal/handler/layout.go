package handler

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"slices"

	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/csrf"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/upstream"
)

// Flash is a one-off message shown at the top of a page.
type Flash struct {
	Type    string // "success", "error", or "info"
	Message string
}

// Layout is the data every app page template needs. Page data structs embed it.
type Layout struct {
	Title       string
	CurrentPath string
	User        *domain.User
	CSRFToken   string
	Environment string // Banner text outside production, "" in production
	Flash       *Flash

	// Shared header and footer. Empty when the frontend components API is not
	// configured or fails, in which case the layout falls back to its own.
	Header      template.HTML
	Footer      template.HTML
	Stylesheets []string
	Scripts     []string
}

// ComponentsFetcher fetches the shared header and footer for a user.
type ComponentsFetcher interface {
	Get(ctx context.Context, userToken string) (*upstream.Components, error)
}

// Pages holds what every page handler needs to render templates.
type Pages struct {
	Renderer    *Renderer
	Components  ComponentsFetcher // Optional
	Environment string
	Logger      *slog.Logger
}

// layout builds the common page data for r.
func (p *Pages) layout(r *http.Request, title string) Layout {
	l := Layout{
		Title:       title,
		CurrentPath: r.URL.Path,
		User:        auth.GetUserFromRequest(r),
		CSRFToken:   csrf.Token(r.Context()),
		Environment: p.Environment,
	}

	token := auth.GetToken(r.Context())
	if p.Components == nil || token == "" {
		return l
	}
	components, err := p.Components.Get(r.Context(), token)
	if err != nil {
		p.Logger.Warn("failed to load frontend components", "error", err)
		return l
	}
	if components == nil {
		return l
	}

	// The components API is a trusted internal service; its markup is rendered as is.
	l.Header = template.HTML(components.Header.HTML)
	l.Footer = template.HTML(components.Footer.HTML)
	l.Stylesheets = slices.Concat(components.Header.CSS, components.Footer.CSS)
	l.Scripts = slices.Concat(components.Header.JavaScript, components.Footer.JavaScript)
	return l
}

// render writes a page, turning template failures into the error page.
func (p *Pages) render(w http.ResponseWriter, name string, data interface{}) {
	p.Renderer.RenderHTTP(w, name, data)
}

// renderStatus writes a page with a non-200 status, e.g. a form with errors.
func (p *Pages) renderStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	p.Renderer.RenderHTTPStatus(w, status, name, data)
}

// fieldErrors returns the field messages of a validation error, or nil.
func fieldErrors(err error) map[string]string {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	return ve.Fields
}

// SystemTokenSource issues client credentials tokens on behalf of a user.
type SystemTokenSource interface {
	Token(ctx context.Context, username string) (string, error)
}

// systemToken returns a system token for the signed-in user.
func systemToken(r *http.Request, tokens SystemTokenSource) (string, error) {
	var username string
	if user := auth.GetUserFromRequest(r); user != nil {
		username = user.Username
	}
	return tokens.Token(r.Context(), username)
}

// activeCaseload returns the prison the signed-in user is working in.
func activeCaseload(r *http.Request, op string) (string, error) {
	user := auth.GetUserFromRequest(r)
	if user == nil || user.ActiveCaseloadID == "" {
		return "", domain.Forbidden(op, "You need an active caseload to see this page")
	}
	return user.ActiveCaseloadID, nil
}
