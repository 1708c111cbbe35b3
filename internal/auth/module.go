package auth

import (
	"github.com/brizzai/moodlist/internal/auth/providers"
	"github.com/brizzai/moodlist/internal/config"
	"github.com/brizzai/moodlist/internal/cookie"
	"go.uber.org/fx"
)

func newCodec(cfg *config.SessionConfig) (*cookie.Codec, error) {
	return cookie.New([]byte(cfg.Secret),
		cookie.WithMaxAge(cfg.MaxAge),
		cookie.WithDomain(cfg.Domain),
		cookie.WithSecure(cfg.Secure),
	)
}

// Module provides the cookie codec, the Spotify provider and the auth service
var Module = fx.Module("auth",
	fx.Provide(
		newCodec,
		fx.Annotate(
			providers.NewSpotifyProvider,
			fx.As(new(providers.Provider)),
		),
		NewService,
	),
)
