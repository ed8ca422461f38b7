package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync/atomic"
)

// Renderer executes the page templates. Each page under pages/ is parsed into
// its own set together with its layout and every components/*.html file, so
// pages can all define "content" without clashing. Pages under pages/auth/ use
// layouts/auth.html; the rest use layouts/app.html.
//
// Pages are named by their path without the pages/ prefix or .html suffix,
// e.g. "reviews/table".
type Renderer struct {
	fsys   fs.FS
	pages  atomic.Pointer[map[string]*template.Template]
	logger *slog.Logger
	isDev  bool
}

type RendererConfig struct {
	// TemplatesDir replaces the embedded templates when IsDev is set. They
	// are then parsed again on every render.
	TemplatesDir string
	Logger       *slog.Logger
	IsDev        bool
}

func NewRenderer(cfg RendererConfig, fsys fs.FS) (*Renderer, error) {
	if cfg.IsDev && cfg.TemplatesDir != "" {
		fsys = os.DirFS(cfg.TemplatesDir)
	}
	r := &Renderer{fsys: fsys, logger: cfg.Logger, isDev: cfg.IsDev}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRendererFromFS returns a production renderer for fsys.
func NewRendererFromFS(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	return NewRenderer(RendererConfig{Logger: logger}, fsys)
}

func layoutFor(page string) string {
	if strings.HasPrefix(page, "auth/") {
		return "auth"
	}
	return "app"
}

func (r *Renderer) load() error {
	components, err := fs.Glob(r.fsys, "components/*.html")
	if err != nil {
		return fmt.Errorf("glob components: %w", err)
	}

	layouts := map[string]*template.Template{}
	for _, name := range []string{"app", "auth"} {
		files := append([]string{"layouts/" + name + ".html"}, components...)
		layouts[name], err = template.New(name).
			Option("missingkey=zero").
			Funcs(TemplateFuncs()).
			ParseFS(r.fsys, files...)
		if err != nil {
			return fmt.Errorf("parse %s layout: %w", name, err)
		}
	}

	pages := map[string]*template.Template{}
	err = fs.WalkDir(r.fsys, "pages", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return err
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, "pages/"), ".html")

		t, err := layouts[layoutFor(name)].Clone()
		if err == nil {
			t, err = t.ParseFS(r.fsys, p)
		}
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		pages[name] = t
		return nil
	})
	if err != nil {
		return fmt.Errorf("load pages: %w", err)
	}

	r.pages.Store(&pages)
	r.logger.Debug("templates loaded", "count", len(pages))
	return nil
}

// Render executes page name with data.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	if r.isDev {
		if err := r.load(); err != nil {
			return err
		}
	}

	t, ok := (*r.pages.Load())[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, layoutFor(name), data)
}

func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data any) {
	r.RenderHTTPStatus(w, http.StatusOK, name, data)
}

// RenderHTTPStatus renders into a buffer first, so a failing template becomes
// a clean 500 page rather than half a page.
func (r *Renderer) RenderHTTPStatus(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		writeErrorPage(w, http.StatusInternalServerError, "Try again later.")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ListTemplates returns the loaded page names, sorted.
func (r *Renderer) ListTemplates() []string {
	return slices.Sorted(maps.Keys(*r.pages.Load()))
}
