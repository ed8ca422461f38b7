package upstream

import (
	"context"
)

// Component is a shared page fragment (header or footer) with its assets.
type Component struct {
	HTML       string   `json:"html"`
	CSS        []string `json:"css"`
	JavaScript []string `json:"javascript"`
}

// Components holds the fragments rendered around every page.
type Components struct {
	Header Component `json:"header"`
	Footer Component `json:"footer"`
}

// ComponentsAPI fetches the shared header and footer. A nil *ComponentsAPI is valid
// and always returns no components, for environments without the service.
type ComponentsAPI struct {
	client *Client
}

// NewComponentsAPI wraps a client pointed at the frontend components API.
func NewComponentsAPI(client *Client) *ComponentsAPI {
	return &ComponentsAPI{client: client}
}

// Get returns the header and footer personalised for the user token.
func (c *ComponentsAPI) Get(ctx context.Context, userToken string) (*Components, error) {
	const op = "components.Get"
	if c == nil {
		return nil, nil
	}

	var body Components
	resp, err := c.client.request(ctx, "").
		SetHeader("x-user-token", userToken).
		SetQueryParamsFromValues(map[string][]string{"component": {"header", "footer"}}).
		SetResult(&body).
		Get("/components")
	if err := c.client.check(op, resp, err); err != nil {
		return nil, err
	}
	return &body, nil
}
