package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brizzai/moodlist/internal/auth/constants"
	"github.com/brizzai/moodlist/internal/auth/providers"
	"github.com/brizzai/moodlist/internal/cookie"
	"github.com/brizzai/moodlist/internal/logger"
	"github.com/brizzai/moodlist/internal/models"
	"github.com/brizzai/moodlist/internal/users"
	"go.uber.org/zap"
)

// Handler drives the two-phase login endpoint and logout.
type Handler struct {
	provider    providers.Provider
	store       users.Store
	codec       *cookie.Codec
	redirectURL string
	now         func() time.Time
}

// NewHandler creates a new Handler. redirectURL pins the redirect_uri;
// when empty it is derived from each login request.
func NewHandler(provider providers.Provider, store users.Store, codec *cookie.Codec, redirectURL string) *Handler {
	return &Handler{
		provider:    provider,
		store:       store,
		codec:       codec,
		redirectURL: redirectURL,
		now:         time.Now,
	}
}

// HandleLogin redirects to the provider when no code is present, and
// otherwise completes the exchange, stores the user and sets the session
// cookie. Any failure ends at the login-failed page with no cookie set.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	log := logger.FromContext(r.Context())

	query := r.URL.Query()
	redirectURI := h.redirectURI(r)

	if providerErr := query.Get("error"); providerErr != "" {
		log.Warn("Provider denied authorization", zap.String("error", providerErr))
		h.fail(w, r)
		return
	}

	code := query.Get("code")
	if code == "" {
		authURL := h.provider.AuthURL(redirectURI)
		log.Debug("Redirecting to provider", zap.String("redirect_uri", redirectURI))
		http.Redirect(w, r, authURL, http.StatusFound)
		return
	}

	user, err := h.complete(r.Context(), code, redirectURI)
	if err != nil {
		log.Error("Login failed", zap.Error(err))
		h.fail(w, r)
		return
	}

	h.codec.Set(w, constants.SessionCookie, user.UID)
	log.Info("User logged in", zap.String("uid", user.UID))
	http.Redirect(w, r, constants.HomePath, http.StatusFound)
}

// HandleLogout expires the session cookie. The stored record is kept.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.codec.Expire(w, constants.SessionCookie)
	http.Redirect(w, r, constants.HomePath, http.StatusFound)
}

func (h *Handler) complete(ctx context.Context, code, redirectURI string) (*models.User, error) {
	token, err := h.provider.Exchange(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}

	info, err := h.provider.Profile(ctx, token)
	if err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, fmt.Errorf("%w: profile has no id", providers.ErrAuthFailed)
	}

	user := &models.User{
		UID:          info.ID,
		DisplayName:  info.DisplayName,
		AvatarURL:    info.AvatarURL,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ProfileURL:   info.ProfileURL,
		APIURL:       info.APIURL,
		UpdatedAt:    h.now().UTC(),
	}
	if err := h.store.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user %s: %w", user.UID, err)
	}
	return user, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, constants.FailedPath, http.StatusFound)
}

// redirectURI is the exact URL of the login endpoint, without query.
func (h *Handler) redirectURI(r *http.Request) string {
	if h.redirectURL != "" {
		return h.redirectURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path}
	return u.String()
}
