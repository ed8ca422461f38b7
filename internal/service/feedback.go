package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/metrics"
)

// TicketAPI raises support tickets.
type TicketAPI interface {
	CreateTicket(ctx context.Context, f domain.Feedback) (int64, error)
}

// FeedbackService sends feedback from the feedback form to the support desk.
type FeedbackService interface {
	// Submit validates feedback and raises a ticket, returning its ID.
	Submit(ctx context.Context, f domain.Feedback) (int64, error)
}

type feedbackService struct {
	tickets TicketAPI
	logger  *slog.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(tickets TicketAPI, logger *slog.Logger) FeedbackService {
	return &feedbackService{
		tickets: tickets,
		logger:  logger,
	}
}

func (s *feedbackService) Submit(ctx context.Context, f domain.Feedback) (int64, error) {
	f.Message = strings.TrimSpace(f.Message)
	f.Email = strings.TrimSpace(f.Email)
	if err := f.Validate(); err != nil {
		return 0, err
	}

	id, err := s.tickets.CreateTicket(ctx, f)
	if err != nil {
		metrics.FeedbackTickets.WithLabelValues("failed").Inc()
		s.logger.Error("failed to create feedback ticket", "error", err, "username", f.Username)
		return 0, err
	}

	metrics.FeedbackTickets.WithLabelValues("created").Inc()
	s.logger.Info("feedback ticket created", "ticket_id", id, "username", f.Username)
	return id, nil
}
