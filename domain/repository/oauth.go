package repository

import (
	"context"
	"errors"

	"propgen/domain/model"
)

var (
	ErrStateNotFound = errors.New("oauth state not found")
	ErrStateExpired  = errors.New("oauth state expired")
	ErrTokenNotFound = errors.New("oauth token not found")
)

// IOAuthStateStore holds single-use CSRF state tokens.
// Consume removes the state in the same step it reads it: a second Consume of
// the same value returns ErrStateNotFound. An expired state is removed and
// reported with ErrStateExpired.
type IOAuthStateStore interface {
	Create(ctx context.Context, state *model.OAuthState) error
	Consume(ctx context.Context, state, provider string) (*model.OAuthState, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// ITokenVault is the server-side secret store for provider tokens, keyed by (user, platform)
type ITokenVault interface {
	UpsertToken(ctx context.Context, t *model.OAuthToken) error
	GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error)
}

// IOAuthProvider runs the provider side of the authorization code flow.
// Connect may yield more than one token: a Facebook grant also connects the
// Instagram business account linked to the selected page.
type IOAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Connect(ctx context.Context, code string) ([]*model.OAuthToken, error)
}
