package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/brizzai/moodlist/internal/config"
	"github.com/brizzai/moodlist/internal/spotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testRedirect = "http://localhost:8080/auth/login"

type fakeAccounts struct {
	tokenStatus int
	tokenBody   map[string]any
	lastForm    url.Values
	meStatus    int
	meBody      map[string]any
}

func (f *fakeAccounts) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.lastForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		_ = json.NewEncoder(w).Encode(f.tokenBody)
	})
	mux.HandleFunc("/v1/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.meStatus)
		_ = json.NewEncoder(w).Encode(f.meBody)
	})
	return mux
}

func newTestProvider(t *testing.T, f *fakeAccounts) *SpotifyProvider {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	api, err := spotify.NewClient(srv.URL+"/v1", srv.Client())
	require.NoError(t, err)

	return NewSpotifyProvider(&config.OAuthConfig{
		ClientID:     "cid",
		ClientSecret: "csecret",
		AuthURL:      srv.URL + "/authorize",
		TokenURL:     srv.URL + "/api/token",
		Scopes:       config.DefaultScopes,
	}, api)
}

func TestAuthURL(t *testing.T) {
	p := newTestProvider(t, &fakeAccounts{})

	u, err := url.Parse(p.AuthURL(testRedirect))
	require.NoError(t, err)
	assert.Equal(t, "/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, testRedirect, q.Get("redirect_uri"))
	assert.Equal(t, config.DefaultScopes, q.Get("scope"))
}

func TestExchange(t *testing.T) {
	f := &fakeAccounts{
		tokenStatus: http.StatusOK,
		tokenBody:   map[string]any{"access_token": "T", "token_type": "Bearer", "refresh_token": "R", "expires_in": 3600},
	}
	p := newTestProvider(t, f)

	token, err := p.Exchange(context.Background(), "abc", testRedirect)
	require.NoError(t, err)
	assert.Equal(t, "T", token.AccessToken)
	assert.Equal(t, "R", token.RefreshToken)

	assert.Equal(t, "authorization_code", f.lastForm.Get("grant_type"))
	assert.Equal(t, "abc", f.lastForm.Get("code"))
	assert.Equal(t, testRedirect, f.lastForm.Get("redirect_uri"))
	assert.Equal(t, "cid", f.lastForm.Get("client_id"))
	assert.Equal(t, "csecret", f.lastForm.Get("client_secret"))
}

func TestExchange_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
	}{
		{name: "invalid grant", status: http.StatusBadRequest, body: map[string]any{"error": "invalid_grant"}},
		{name: "server error", status: http.StatusInternalServerError, body: map[string]any{}},
		{name: "no access token", status: http.StatusOK, body: map[string]any{"token_type": "Bearer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, &fakeAccounts{tokenStatus: tt.status, tokenBody: tt.body})
			token, err := p.Exchange(context.Background(), "abc", testRedirect)
			assert.ErrorIs(t, err, ErrAuthFailed)
			assert.Nil(t, token)
		})
	}
}

func TestProfile(t *testing.T) {
	f := &fakeAccounts{
		meStatus: http.StatusOK,
		meBody: map[string]any{
			"id":            "u1",
			"display_name":  "A",
			"href":          "https://api.spotify.com/v1/users/u1",
			"external_urls": map[string]string{"spotify": "https://open.spotify.com/user/u1"},
			"images":        []map[string]any{{"url": "https://img/1"}, {"url": "https://img/2"}},
		},
	}
	p := newTestProvider(t, f)

	info, err := p.Profile(context.Background(), &oauth2.Token{AccessToken: "T", TokenType: "bearer"})
	require.NoError(t, err)
	assert.Equal(t, "u1", info.ID)
	assert.Equal(t, "A", info.DisplayName)
	assert.Equal(t, "https://img/1", info.AvatarURL)
	assert.Equal(t, "https://open.spotify.com/user/u1", info.ProfileURL)
	assert.Equal(t, "https://api.spotify.com/v1/users/u1", info.APIURL)
}

func TestProfile_NoImages(t *testing.T) {
	p := newTestProvider(t, &fakeAccounts{meStatus: http.StatusOK, meBody: map[string]any{"id": "u1"}})

	info, err := p.Profile(context.Background(), &oauth2.Token{AccessToken: "T"})
	require.NoError(t, err)
	assert.Empty(t, info.AvatarURL)
}

func TestProfile_Failures(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		p := newTestProvider(t, &fakeAccounts{
			meStatus: http.StatusUnauthorized,
			meBody:   map[string]any{"error": map[string]any{"status": 401, "message": "bad token"}},
		})
		_, err := p.Profile(context.Background(), &oauth2.Token{AccessToken: "T"})
		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("missing id", func(t *testing.T) {
		p := newTestProvider(t, &fakeAccounts{meStatus: http.StatusOK, meBody: map[string]any{"display_name": "A"}})
		_, err := p.Profile(context.Background(), &oauth2.Token{AccessToken: "T"})
		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("non bearer token", func(t *testing.T) {
		p := newTestProvider(t, &fakeAccounts{})
		_, err := p.Profile(context.Background(), &oauth2.Token{AccessToken: "T", TokenType: "MAC"})
		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("no token", func(t *testing.T) {
		p := newTestProvider(t, &fakeAccounts{})
		_, err := p.Profile(context.Background(), nil)
		assert.ErrorIs(t, err, ErrAuthFailed)
	})
}
