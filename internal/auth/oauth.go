package auth

import (
	"net/http"

	"github.com/brizzai/moodlist/internal/auth/constants"
	"github.com/brizzai/moodlist/internal/auth/handlers"
	"github.com/brizzai/moodlist/internal/auth/middleware"
	"github.com/brizzai/moodlist/internal/auth/providers"
	"github.com/brizzai/moodlist/internal/config"
	"github.com/brizzai/moodlist/internal/cookie"
	"github.com/brizzai/moodlist/internal/users"
)

// Service bundles the login endpoints with session resolution.
type Service struct {
	handler  *handlers.Handler
	resolver *middleware.Resolver
}

// NewService creates a new auth service
func NewService(cfg *config.OAuthConfig, provider providers.Provider, store users.Store, codec *cookie.Codec) *Service {
	return &Service{
		handler:  handlers.NewHandler(provider, store, codec, cfg.RedirectURL),
		resolver: middleware.NewResolver(codec, store),
	}
}

// RegisterRoutes registers the login and logout routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(constants.LoginPath, s.handler.HandleLogin)
	mux.HandleFunc(constants.LogoutPath, s.handler.HandleLogout)
}

// LoadSession returns the session-resolving middleware
func (s *Service) LoadSession() func(http.Handler) http.Handler {
	return middleware.LoadSession(s.resolver)
}

// RequireUser returns the middleware guarding logged-in routes
func (s *Service) RequireUser() func(http.Handler) http.Handler {
	return middleware.RequireUser
}
