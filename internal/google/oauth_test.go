package google

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testAuthorizer(store CredentialStore) *Authorizer {
	return NewAuthorizer(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
	}, store)
}

func TestAuthCodeURL(t *testing.T) {
	a := testAuthorizer(NewMemoryCredentialStore())

	url := a.AuthCodeURL("state-token")

	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=state-token")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "calendar")
}

func TestTokenSourceNotAuthenticated(t *testing.T) {
	a := testAuthorizer(NewMemoryCredentialStore())

	_, err := a.TokenSource(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestTokenSourceMalformedCredential(t *testing.T) {
	store := NewMemoryCredentialStore()
	require.NoError(t, store.Save(context.Background(), "not json", "user@example.com"))
	a := testAuthorizer(store)

	_, err := a.TokenSource(context.Background(), "user@example.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAuthenticated)
}

func TestTokenSourceValidCredential(t *testing.T) {
	store := NewMemoryCredentialStore()
	creds, err := encodeToken(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), creds, "user@example.com"))
	a := testAuthorizer(store)

	ts, err := a.TokenSource(context.Background(), "user@example.com")
	require.NoError(t, err)

	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access", token.AccessToken)
}

func TestTokenRoundTrip(t *testing.T) {
	original := &oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}

	creds, err := encodeToken(original)
	require.NoError(t, err)

	decoded, err := decodeToken(creds)
	require.NoError(t, err)
	assert.Equal(t, original.AccessToken, decoded.AccessToken)
	assert.Equal(t, original.RefreshToken, decoded.RefreshToken)
	assert.True(t, original.Expiry.Equal(decoded.Expiry))
}

func TestDecodeTokenRejectsEmpty(t *testing.T) {
	_, err := decodeToken(`{}`)
	assert.Error(t, err)
}

// staticTokenSource stands in for the oauth2 refresh flow.
type staticTokenSource struct {
	token *oauth2.Token
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) {
	return s.token, nil
}

func TestPersistingTokenSourceSavesRefreshedToken(t *testing.T) {
	store := NewMemoryCredentialStore()
	ctx := context.Background()

	stale := &oauth2.Token{AccessToken: "stale", RefreshToken: "refresh"}
	fresh := &oauth2.Token{AccessToken: "fresh", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour)}

	ts := &persistingTokenSource{
		ctx:   ctx,
		base:  &staticTokenSource{token: fresh},
		store: store,
		email: "user@example.com",
		last:  stale,
	}

	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", token.AccessToken)

	saved, err := store.Load(ctx, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, saved)
	assert.True(t, strings.Contains(saved, "fresh"))
}

func TestPersistingTokenSourceSkipsSaveWhenUnchanged(t *testing.T) {
	store := NewMemoryCredentialStore()
	ctx := context.Background()

	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour)}
	ts := &persistingTokenSource{
		ctx:   ctx,
		base:  &staticTokenSource{token: token},
		store: store,
		email: "user@example.com",
		last:  token,
	}

	_, err := ts.Token()
	require.NoError(t, err)

	saved, err := store.Load(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Empty(t, saved, "an unchanged token must not be re-persisted")
}
