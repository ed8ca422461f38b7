package domain

import (
	"net/mail"
	"strings"
)

// Feedback is a message sent from the feedback form to the support desk.
type Feedback struct {
	Message   string
	Email     string // Optional reply-to address
	Username  string
	Prison    string
	Referer   string
	UserAgent string
}

// Validate checks user-entered fields.
func (f *Feedback) Validate() error {
	var ve *ValidationError
	message := strings.TrimSpace(f.Message)
	if message == "" {
		ve = ve.Add("message", "Enter your feedback")
	} else if len(message) > 5000 {
		ve = ve.Add("message", "Feedback must be 5,000 characters or fewer")
	}
	if f.Email != "" {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			ve = ve.Add("email", "Enter an email address in the correct format, like name@example.com")
		}
	}
	if ve != nil {
		ve.Op = "Feedback.Validate"
		return ve
	}
	return nil
}
