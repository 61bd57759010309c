package service

import (
	"context"
	"fmt"

	"github.com/planwise-ai/calendar-assistant/internal/calendar"
	"github.com/planwise-ai/calendar-assistant/internal/google"
)

// AuthService bridges stored Google credentials to authorized calendar
// clients. Credentials never outlive the request they authorize.
type AuthService struct {
	authorizer *google.Authorizer
	timezone   string
}

// NewAuthService creates an auth service.
func NewAuthService(authorizer *google.Authorizer, timezone string) *AuthService {
	return &AuthService{
		authorizer: authorizer,
		timezone:   timezone,
	}
}

// AuthURL returns the Google consent URL for a user.
func (s *AuthService) AuthURL(state string) string {
	return s.authorizer.AuthCodeURL(state)
}

// HandleCallback exchanges an authorization code and persists the token
// under the user's email.
func (s *AuthService) HandleCallback(ctx context.Context, code, email string) error {
	if code == "" {
		return fmt.Errorf("authorization code is empty")
	}
	return s.authorizer.Exchange(ctx, code, email)
}

// Authorize resolves a user's stored credential into a calendar client.
// Returns google.ErrNotAuthenticated when no credential exists.
func (s *AuthService) Authorize(ctx context.Context, email string) (*calendar.Client, error) {
	ts, err := s.authorizer.TokenSource(ctx, email)
	if err != nil {
		return nil, err
	}
	return calendar.NewClient(ctx, ts, s.timezone)
}
