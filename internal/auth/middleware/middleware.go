package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/brizzai/moodlist/internal/auth/constants"
	"github.com/brizzai/moodlist/internal/cookie"
	"github.com/brizzai/moodlist/internal/logger"
	"github.com/brizzai/moodlist/internal/models"
	"github.com/brizzai/moodlist/internal/users"
	"go.uber.org/zap"
)

type userContextKey struct{}

// Resolver maps a request's session cookie to a stored user.
type Resolver struct {
	codec *cookie.Codec
	store users.Store
}

func NewResolver(codec *cookie.Codec, store users.Store) *Resolver {
	return &Resolver{codec: codec, store: store}
}

// Resolve returns the logged-in user or nil. A missing, forged or expired
// cookie, an unknown uid and a store failure all yield nil.
func (s *Resolver) Resolve(r *http.Request) *models.User {
	uid, ok := s.codec.Read(r, constants.SessionCookie)
	if !ok || uid == "" {
		return nil
	}

	user, err := s.store.Get(r.Context(), uid)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			logger.FromContext(r.Context()).Error("Failed to load session user",
				zap.String("uid", uid),
				zap.Error(err),
			)
		}
		return nil
	}
	return user
}

// LoadSession resolves the session once per request and stores the result
// on the request context.
func LoadSession(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := resolver.Resolve(r); user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser redirects anonymous requests to the login endpoint. It must
// run after LoadSession.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			http.Redirect(w, r, constants.LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFrom returns the session user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey{}).(*models.User)
	return user
}
