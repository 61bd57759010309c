// Package google bridges stored OAuth credentials to authorized token
// sources for the calendar service.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

// ErrNotAuthenticated is returned when a user has no stored credential.
// It surfaces at the HTTP boundary; no silent re-authorization happens
// mid-conversation.
var ErrNotAuthenticated = errors.New("user is not authenticated with Google")

// CredentialStore persists opaque serialized OAuth tokens per user email.
// The production store lives outside this service; an in-memory
// implementation backs tests and single-process runs.
type CredentialStore interface {
	Load(ctx context.Context, email string) (creds string, err error)
	Save(ctx context.Context, creds, email string) error
}

// Config holds the OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Authorizer exchanges and refreshes Google OAuth tokens.
type Authorizer struct {
	conf  *oauth2.Config
	store CredentialStore
}

// NewAuthorizer creates an authorizer with the calendar scope.
func NewAuthorizer(cfg Config, store CredentialStore) *Authorizer {
	return &Authorizer{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     goauth.Endpoint,
			Scopes:       []string{gcal.CalendarScope},
		},
		store: store,
	}
}

// AuthCodeURL returns the URL a user visits to grant calendar access.
func (a *Authorizer) AuthCodeURL(state string) string {
	return a.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and persists it under
// the user's email.
func (a *Authorizer) Exchange(ctx context.Context, code, email string) error {
	token, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	creds, err := encodeToken(token)
	if err != nil {
		return err
	}
	if err := a.store.Save(ctx, creds, email); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	return nil
}

// TokenSource resolves a user's stored credential into a refreshing token
// source. Refreshed tokens are written back to the store so the next
// request starts from a valid credential.
func (a *Authorizer) TokenSource(ctx context.Context, email string) (oauth2.TokenSource, error) {
	creds, err := a.store.Load(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if creds == "" {
		return nil, ErrNotAuthenticated
	}

	token, err := decodeToken(creds)
	if err != nil {
		return nil, fmt.Errorf("stored credential is malformed: %w", err)
	}

	base := a.conf.TokenSource(ctx, token)
	return &persistingTokenSource{
		ctx:   ctx,
		base:  base,
		store: a.store,
		email: email,
		last:  token,
	}, nil
}

// persistingTokenSource saves tokens back to the credential store whenever
// the underlying source refreshes them.
type persistingTokenSource struct {
	ctx   context.Context
	base  oauth2.TokenSource
	store CredentialStore
	email string
	last  *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	if token.AccessToken != s.last.AccessToken {
		creds, err := encodeToken(token)
		if err == nil {
			// A failed save is not fatal: the refreshed token is still
			// valid for this request.
			_ = s.store.Save(s.ctx, creds, s.email)
		}
		s.last = token
	}
	return token, nil
}

func encodeToken(token *oauth2.Token) (string, error) {
	data, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("failed to serialize token: %w", err)
	}
	return string(data), nil
}

func decodeToken(creds string) (*oauth2.Token, error) {
	var token oauth2.Token
	if err := json.Unmarshal([]byte(creds), &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, errors.New("credential holds no token")
	}
	return &token, nil
}
