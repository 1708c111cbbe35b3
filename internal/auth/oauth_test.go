package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brizzai/moodlist/internal/auth/constants"
	"github.com/brizzai/moodlist/internal/auth/middleware"
	"github.com/brizzai/moodlist/internal/auth/providers"
	"github.com/brizzai/moodlist/internal/config"
	"github.com/brizzai/moodlist/internal/cookie"
	"github.com/brizzai/moodlist/internal/spotify"
	"github.com/brizzai/moodlist/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	service *Service
	store   *users.MemoryStore
	codec   *cookie.Codec
}

// newTestEnv wires the service against a fake accounts + Web API server
// whose token endpoint answers with tokenBody.
func newTestEnv(t *testing.T, tokenBody map[string]any) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenBody)
	})
	mux.HandleFunc("/v1/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "u1", "display_name": "A"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &config.OAuthConfig{
		ClientID:     "cid",
		ClientSecret: "csecret",
		AuthURL:      srv.URL + "/authorize",
		TokenURL:     srv.URL + "/api/token",
		Scopes:       config.DefaultScopes,
	}
	api, err := spotify.NewClient(srv.URL+"/v1", srv.Client())
	require.NoError(t, err)

	codec, err := newCodec(&config.SessionConfig{Secret: "session-secret", MaxAge: cookie.DefaultMaxAge})
	require.NoError(t, err)

	store := users.NewMemoryStore()
	return &testEnv{
		service: NewService(cfg, providers.NewSpotifyProvider(cfg, api), store, codec),
		store:   store,
		codec:   codec,
	}
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	e.service.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	mux := http.NewServeMux()
	env.service.RegisterRoutes(mux)

	for _, route := range []string{constants.LoginPath, constants.LogoutPath} {
		r := httptest.NewRequest(http.MethodGet, route, nil)
		_, pattern := mux.Handler(r)
		assert.NotEmpty(t, pattern, "route %s not registered", route)
	}
}

func TestLogin_EndToEnd(t *testing.T) {
	env := newTestEnv(t, map[string]any{"access_token": "T", "refresh_token": "R"})

	rec := env.serve(httptest.NewRequest(http.MethodGet, "http://app.example/auth/login?code=abc", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	user, err := env.store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "T", user.AccessToken)
	assert.Equal(t, "R", user.RefreshToken)
	assert.Equal(t, "A", user.DisplayName)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constants.SessionCookie, cookies[0].Name)
	uid, err := env.codec.Decode(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	// the cookie resolves to the stored user on the next request
	var resolved string
	next := env.service.LoadSession()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := userFromRequest(r); u != "" {
			resolved = u
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	next.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "u1", resolved)
}

func TestLogin_MissingAccessToken(t *testing.T) {
	env := newTestEnv(t, map[string]any{"refresh_token": "R"})

	rec := env.serve(httptest.NewRequest(http.MethodGet, "http://app.example/auth/login?code=abc", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, constants.FailedPath, rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())

	_, err := env.store.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestLogout_EndToEnd(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.serve(httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	assert.Equal(t, http.StatusFound, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookies[0].Name, Value: cookies[0].Value})
	_, ok := env.codec.Read(req, constants.SessionCookie)
	assert.False(t, ok)
}

func userFromRequest(r *http.Request) string {
	if u := middleware.UserFrom(r.Context()); u != nil {
		return u.UID
	}
	return ""
}
