package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/brizzai/moodlist/internal/auth/constants"
	"github.com/brizzai/moodlist/internal/config"
	"github.com/brizzai/moodlist/internal/models"
	"github.com/brizzai/moodlist/internal/spotify"
	"golang.org/x/oauth2"
)

// SpotifyProvider runs the authorization-code flow against Spotify
// accounts and reads the profile through the Web API client.
type SpotifyProvider struct {
	oauth2Config *oauth2.Config
	api          *spotify.Client
}

func NewSpotifyProvider(cfg *config.OAuthConfig, api *spotify.Client) *SpotifyProvider {
	return &SpotifyProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
				// client_id and client_secret travel in the form body.
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: cfg.ScopeList(),
		},
		api: api,
	}
}

func (p *SpotifyProvider) AuthURL(redirectURI string) string {
	cfg := *p.oauth2Config // copy
	cfg.RedirectURL = redirectURI
	// No state: nothing is persisted between the two phases.
	return cfg.AuthCodeURL("")
}

func (p *SpotifyProvider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	cfg := *p.oauth2Config // copy
	cfg.RedirectURL = redirectURI

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
			return nil, fmt.Errorf("%w: token endpoint: %s", ErrAuthFailed, retrieveErr.ErrorCode)
		}
		return nil, fmt.Errorf("%w: token exchange: %v", ErrAuthFailed, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token endpoint returned no access_token", ErrAuthFailed)
	}
	return token, nil
}

func (p *SpotifyProvider) Profile(ctx context.Context, token *oauth2.Token) (*models.UserInfo, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token", ErrAuthFailed)
	}
	if token.Type() != constants.TokenType {
		return nil, fmt.Errorf("%w: unsupported token type %q", ErrAuthFailed, token.TokenType)
	}

	profile, err := p.api.Me(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: profile: %v", ErrAuthFailed, err)
	}

	info := &models.UserInfo{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		ProfileURL:  profile.ExternalURLs.Spotify,
		APIURL:      profile.Href,
	}
	if len(profile.Images) > 0 {
		info.AvatarURL = profile.Images[0].URL
	}
	return info, nil
}
