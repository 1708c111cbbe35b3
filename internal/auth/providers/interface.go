package providers

import (
	"context"
	"errors"

	"github.com/brizzai/moodlist/internal/models"
	"golang.org/x/oauth2"
)

// ErrAuthFailed marks any failure of the code exchange or profile fetch.
var ErrAuthFailed = errors.New("authentication failed")

// Provider defines the authorization-code flow against an identity provider.
type Provider interface {
	// AuthURL returns the authorize URL the user is redirected to.
	AuthURL(redirectURI string) string

	// Exchange trades an authorization code for tokens. redirectURI must be
	// the value used to build the authorize URL.
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)

	// Profile fetches the token owner's profile.
	Profile(ctx context.Context, token *oauth2.Token) (*models.UserInfo, error)
}
