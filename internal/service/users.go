package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/metrics"
	"github.com/hmpps/incentives-ui/internal/session"
	"github.com/hmpps/incentives-ui/internal/upstream"
)

// UsersAPI looks up the signed-in member of staff.
type UsersAPI interface {
	GetMe(ctx context.Context, token string) (*upstream.StaffUser, error)
}

// CaseloadsAPI lists the prisons a member of staff works in.
type CaseloadsAPI interface {
	GetUserCaseloads(ctx context.Context, token string) ([]domain.Caseload, string, error)
}

// UserService signs staff in and out.
type UserService interface {
	// SignIn loads the user an access token was issued to and starts a session.
	// It returns the raw session token for the session cookie.
	SignIn(ctx context.Context, token *oauth2.Token) (string, *session.Session, error)

	// SignOut ends the session. Unknown sessions are ignored.
	SignOut(ctx context.Context, rawToken string) error
}

type userService struct {
	users     UsersAPI
	caseloads CaseloadsAPI
	sessions  session.Store
	ttl       time.Duration
	logger    *slog.Logger
}

// NewUserService creates a new UserService. Sessions last ttl.
func NewUserService(users UsersAPI, caseloads CaseloadsAPI, sessions session.Store, ttl time.Duration, logger *slog.Logger) UserService {
	return &userService{
		users:     users,
		caseloads: caseloads,
		sessions:  sessions,
		ttl:       ttl,
		logger:    logger,
	}
}

func (s *userService) SignIn(ctx context.Context, token *oauth2.Token) (string, *session.Session, error) {
	const op = "UserService.SignIn"

	claims, err := auth.ParseClaims(token.AccessToken)
	if err != nil {
		return "", nil, err
	}

	user := domain.User{
		Username:   claims.UserName,
		AuthSource: claims.AuthSource,
		Roles:      claims.Authorities,
	}

	me, err := s.users.GetMe(ctx, token.AccessToken)
	if err != nil {
		return "", nil, err
	}
	user.Name = me.Name
	user.ActiveCaseloadID = me.ActiveCaseloadID

	if user.IsNomisUser() {
		caseloads, active, err := s.caseloads.GetUserCaseloads(ctx, token.AccessToken)
		if err != nil {
			return "", nil, err
		}
		user.Caseloads = caseloads
		if active != "" {
			user.ActiveCaseloadID = active
		}
	}

	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = claims.Expiry()
	}
	sess := &session.Session{
		User:         user,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  expiry,
		Expires:      time.Now().Add(s.ttl).Unix(),
	}
	raw, err := s.sessions.Create(ctx, sess)
	if err != nil {
		return "", nil, domain.Wrap(err, domain.ErrorCode(err), op, "Could not start session")
	}

	metrics.SessionsCreated.Inc()
	s.logger.Info("user signed in",
		"username", user.Username,
		"auth_source", user.AuthSource,
		"active_caseload", user.ActiveCaseloadID,
	)
	return raw, sess, nil
}

func (s *userService) SignOut(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.sessions.Delete(ctx, rawToken)
}
