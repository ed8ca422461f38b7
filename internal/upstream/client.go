// Package upstream contains clients for the HTTP APIs the UI is built on: the
// prison and incentives APIs, manage users, frontend components and Zendesk.
//
// Every client shares the same resty configuration: a base URL, a request timeout,
// retries for idempotent requests and a mapping from upstream status codes to
// domain errors so handlers never see raw HTTP failures.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/metrics"
)

// Options configures a Client.
type Options struct {
	Name    string // Short API name used in metrics and log lines, e.g. "prison"
	BaseURL string
	Timeout time.Duration
	Retries int
	Logger  *slog.Logger
}

// Client is a resty client bound to one upstream API.
type Client struct {
	name   string
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a client for one upstream API.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	c := &Client{
		name:   opts.Name,
		logger: logger.With("api", opts.Name),
	}

	c.http = resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(max(opts.Retries, 0)).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	c.http.AddRetryCondition(retryCondition)
	c.http.AddRetryHook(func(r *resty.Response, err error) {
		metrics.UpstreamRetried(c.name)
	})
	c.http.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		metrics.UpstreamCompleted(c.name, r.StatusCode(), r.Time())
		return nil
	})
	c.http.OnError(func(req *resty.Request, err error) {
		metrics.UpstreamCompleted(c.name, 0, time.Since(req.Time))
	})

	return c
}

// Name returns the API name.
func (c *Client) Name() string {
	return c.name
}

// retryCondition retries transport failures and transient statuses, but only for
// requests that are safe to repeat.
func retryCondition(r *resty.Response, err error) bool {
	if r != nil && r.Request != nil {
		switch r.Request.Method {
		case http.MethodGet, http.MethodHead:
		default:
			return false
		}
	}
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// request starts a request carrying ctx and, when token is not empty, a bearer token.
func (c *Client) request(ctx context.Context, token string) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&apiError{})
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// apiError is the error body returned by HMPPS APIs.
type apiError struct {
	Status           int    `json:"status"`
	UserMessage      string `json:"userMessage"`
	DeveloperMessage string `json:"developerMessage"`
}

// check converts a resty result into a domain error.
func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		c.logger.Warn("upstream request failed", "op", op, "error", err)
		return domain.Unavailable(err, op, fmt.Sprintf("The %s API could not be reached", c.name))
	}
	if !resp.IsError() {
		return nil
	}

	status := resp.StatusCode()
	var message, detail string
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr != nil {
		message = apiErr.UserMessage
		detail = apiErr.DeveloperMessage
	}

	c.logger.Info("upstream request rejected",
		"op", op,
		"status", status,
		"detail", detail,
	)

	code := statusCode(status)
	if message == "" {
		message = defaultMessage(code)
	}
	if code == domain.EUNAVAILABLE {
		return domain.Unavailable(fmt.Errorf("%s API returned %d", c.name, status), op, message)
	}
	return &domain.Error{Code: code, Op: op, Message: message}
}

// statusCode maps an upstream HTTP status to a domain error code.
func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.EINVALID
	case http.StatusUnauthorized:
		return domain.EUNAUTHORIZED
	case http.StatusForbidden:
		return domain.EFORBIDDEN
	case http.StatusNotFound:
		return domain.ENOTFOUND
	case http.StatusConflict:
		return domain.ECONFLICT
	case http.StatusTooManyRequests:
		return domain.ERATELIMIT
	}
	if status >= 500 {
		return domain.EUNAVAILABLE
	}
	return domain.EINTERNAL
}

func defaultMessage(code string) string {
	switch code {
	case domain.EINVALID:
		return "The request was not valid"
	case domain.EUNAUTHORIZED:
		return "You need to sign in again"
	case domain.EFORBIDDEN:
		return "You do not have permission to do this"
	case domain.ENOTFOUND:
		return "Not found"
	case domain.ECONFLICT:
		return "This conflicts with an existing record"
	case domain.ERATELIMIT:
		return "Too many requests. Please try again later."
	case domain.EUNAVAILABLE:
		return "A service this page depends on is unavailable"
	default:
		return "Unexpected response"
	}
}
