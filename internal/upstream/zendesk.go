package upstream

import (
	"context"
	"fmt"
	"strings"

	"github.com/hmpps/incentives-ui/internal/domain"
)

// ZendeskAPI raises support tickets from the feedback form.
type ZendeskAPI struct {
	client   *Client
	username string
	token    string
}

// NewZendeskAPI wraps a client pointed at a Zendesk instance. Requests authenticate
// with an API token for username.
func NewZendeskAPI(client *Client, username, token string) *ZendeskAPI {
	return &ZendeskAPI{client: client, username: username, token: token}
}

type zendeskRequester struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type zendeskTicket struct {
	Ticket struct {
		ID        int64             `json:"id,omitempty"`
		Subject   string            `json:"subject"`
		Tags      []string          `json:"tags"`
		Requester *zendeskRequester `json:"requester,omitempty"`
		Comment   struct {
			Body   string `json:"body"`
			Public bool   `json:"public"`
		} `json:"comment"`
	} `json:"ticket"`
}

// CreateTicket raises a ticket for feedback and returns its ID.
func (z *ZendeskAPI) CreateTicket(ctx context.Context, f domain.Feedback) (int64, error) {
	const op = "zendesk.CreateTicket"

	var ticket zendeskTicket
	ticket.Ticket.Subject = "Feedback for Manage incentives"
	ticket.Ticket.Tags = []string{"hmpps-incentives", "feedback"}
	ticket.Ticket.Comment.Body = feedbackBody(f)
	if f.Email != "" {
		ticket.Ticket.Requester = &zendeskRequester{Name: f.Username, Email: f.Email}
	}

	var created zendeskTicket
	resp, err := z.client.request(ctx, "").
		SetBasicAuth(z.username+"/token", z.token).
		SetHeader("Content-Type", "application/json").
		SetBody(ticket).
		SetResult(&created).
		Post("/api/v2/tickets.json")
	if err := z.client.check(op, resp, err); err != nil {
		return 0, err
	}
	return created.Ticket.ID, nil
}

func feedbackBody(f domain.Feedback) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(f.Message))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Username: %s\n", f.Username)
	fmt.Fprintf(&b, "Prison: %s\n", f.Prison)
	fmt.Fprintf(&b, "Page: %s\n", f.Referer)
	fmt.Fprintf(&b, "Browser: %s\n", f.UserAgent)
	return b.String()
}
