package handler

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hmpps/incentives-ui/internal/domain"
)

var statusByCode = map[string]int{
	domain.EINVALID:      http.StatusBadRequest,
	domain.EUNAUTHORIZED: http.StatusUnauthorized,
	domain.EFORBIDDEN:    http.StatusForbidden,
	domain.ENOTFOUND:     http.StatusNotFound,
	domain.ECONFLICT:     http.StatusConflict,
	domain.ERATELIMIT:    http.StatusTooManyRequests,
	domain.EUNAVAILABLE:  http.StatusServiceUnavailable,
}

func httpStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// ErrorResponse logs err and writes it as JSON or as the error page, depending
// on what the client accepts. Only the user-facing message is written; the
// operation and cause stay in the log.
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var body errorBody
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Error.Code = domain.EINVALID
		body.Error.Message = "Check your answers and try again."
		body.Error.Fields = ve.Fields
	} else {
		body.Error.Code = domain.ErrorCode(err)
		body.Error.Message = domain.ErrorMessage(err)
	}
	status := httpStatus(body.Error.Code)

	attrs := []any{
		"error", err.Error(),
		"code", body.Error.Code,
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
	}
	if op := domain.ErrorOp(err); op != "" {
		attrs = append(attrs, "op", op)
	}
	if status >= 500 {
		logger.Error("server error", attrs...)
	} else {
		logger.Info("client error", attrs...)
	}

	if !acceptsJSON(r) {
		writeErrorPage(w, status, body.Error.Message)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func NotFoundResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	ErrorResponse(w, r, logger, domain.Errorf(domain.ENOTFOUND, "", "If you typed the web address, check it is correct."))
}

func UnauthorizedResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	ErrorResponse(w, r, logger, domain.Unauthorized("", "You need to sign in to see this page"))
}

func ForbiddenResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	ErrorResponse(w, r, logger, domain.Forbidden("", "You do not have permission to see this page"))
}

// acceptsJSON reports whether the client asked for, or sent, JSON.
func acceptsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - Manage incentives - DPS</title>
<link rel="stylesheet" href="/assets/app.css">
</head>
<body class="min-h-screen flex flex-col bg-white text-black">
<header class="bg-black text-white border-b-8 border-link" role="banner">
<div class="w-full max-w-page mx-auto px-4 py-3"><a href="/" class="text-white font-bold text-lg no-underline hover:underline">Digital Prison Services <span class="font-normal">Manage incentives</span></a></div>
</header>
<div class="w-full max-w-page mx-auto px-4 flex-1">
<main id="main-content" class="py-8" role="main">
<h1 class="text-3xl font-bold mb-6">{{.Title}}</h1>
<p>{{.Message}}</p>
<p><a href="/" class="text-link underline hover:text-link-hover">Return to the homepage</a></p>
</main>
</div>
</body>
</html>`))

var pageTitles = map[int]string{
	http.StatusNotFound:            "Page not found",
	http.StatusForbidden:           "You do not have access",
	http.StatusTooManyRequests:     "Too many requests",
	http.StatusServiceUnavailable:  "Sorry, the service is unavailable",
	http.StatusInternalServerError: "Sorry, there is a problem with the service",
}

// writeErrorPage renders the standalone error page. It does not use the
// Renderer, so it works from middleware and when templates fail.
func writeErrorPage(w http.ResponseWriter, status int, message string) {
	title, ok := pageTitles[status]
	if !ok {
		title = http.StatusText(status)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = errorPage.Execute(w, struct{ Title, Message string }{title, message})
}
