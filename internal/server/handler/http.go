// Package handler serves the application pages.
package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/brizzai/moodlist/internal/auth/constants"
	"github.com/brizzai/moodlist/internal/auth/middleware"
	"github.com/brizzai/moodlist/internal/cookie"
	"github.com/brizzai/moodlist/internal/logger"
	"github.com/brizzai/moodlist/internal/models"
	"github.com/brizzai/moodlist/internal/mood"
	"github.com/brizzai/moodlist/internal/server/views"
	"github.com/brizzai/moodlist/internal/spotify"
	"go.uber.org/zap"
)

// SpotifyAPI is the subset of the Web API client the pages read from.
type SpotifyAPI interface {
	RecentlyPlayed(ctx context.Context, token string) ([]spotify.PlayHistory, error)
	AudioFeatures(ctx context.Context, token, trackID string) (*spotify.AudioFeatures, error)
	UserPlaylists(ctx context.Context, token, userID string) ([]spotify.Playlist, error)
	Playlist(ctx context.Context, token, playlistID string) (*spotify.Playlist, error)
	PlaylistTracks(ctx context.Context, token, playlistID string) ([]spotify.PlaylistItem, error)
}

// PlaylistBuilder creates a happy playlist for a user.
type PlaylistBuilder interface {
	Build(ctx context.Context, user *models.User) (string, error)
}

// Renderer writes a named page.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data any)
}

// Handler holds the page handlers and their collaborators.
type Handler struct {
	api      SpotifyAPI
	builder  PlaylistBuilder
	codec    *cookie.Codec
	renderer Renderer
}

// NewHandler creates a new page handler.
func NewHandler(api SpotifyAPI, builder PlaylistBuilder, codec *cookie.Codec, renderer Renderer) *Handler {
	return &Handler{
		api:      api,
		builder:  builder,
		codec:    codec,
		renderer: renderer,
	}
}

type trackRow struct {
	Name    string
	Artists string
	Valence float64
}

type homePage struct {
	User   *models.User
	NoData bool
	Mood   mood.Label
	Mean   float64
	Tracks []trackRow
}

type playlistsPage struct {
	User      *models.User
	Mood      string
	Playlists []spotify.Playlist
}

type newPlaylistPage struct {
	User  *models.User
	Name  string
	Songs []trackRow
}

type errorPage struct {
	User    *models.User
	Message string
}

// Home shows the recent tracks with their valence and the overall mood,
// and remembers the mood label in the valence cookie.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != constants.HomePath {
		h.renderError(w, r, http.StatusNotFound, "Page not found.")
		return
	}

	ctx := r.Context()
	user := middleware.UserFrom(ctx)
	page := homePage{User: user}
	if user == nil {
		h.renderer.Render(w, http.StatusOK, views.Home, page)
		return
	}

	recent, err := h.api.RecentlyPlayed(ctx, user.AccessToken)
	if err != nil {
		h.providerError(w, r, err)
		return
	}

	valences := make(map[string]float64)
	var values []float64
	for _, play := range recent {
		track := play.Track
		if track.ID == "" {
			continue
		}
		valence, ok := valences[track.ID]
		if !ok {
			features, err := h.api.AudioFeatures(ctx, user.AccessToken, track.ID)
			if err != nil {
				h.providerError(w, r, err)
				return
			}
			valence = features.Valence
			valences[track.ID] = valence
			values = append(values, valence)
		}
		page.Tracks = append(page.Tracks, trackRow{
			Name:    track.Name,
			Artists: strings.Join(track.ArtistNames(), ", "),
			Valence: valence,
		})
	}

	result, err := mood.Classify(values)
	if errors.Is(err, mood.ErrInsufficientData) {
		page.NoData = true
		h.renderer.Render(w, http.StatusOK, views.Home, page)
		return
	}
	if err != nil {
		h.providerError(w, r, err)
		return
	}

	page.Mood = result.Label
	page.Mean = math.Round(result.Mean*1000) / 1000
	h.codec.Set(w, constants.ValenceCookie, result.Label.String())
	h.renderer.Render(w, http.StatusOK, views.Home, page)
}

// Playlists lists the user's playlists with the last computed mood.
func (h *Handler) Playlists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFrom(ctx)
	page := playlistsPage{User: user}
	if user == nil {
		h.renderer.Render(w, http.StatusOK, views.Playlists, page)
		return
	}

	page.Mood, _ = h.codec.Read(r, constants.ValenceCookie)

	playlists, err := h.api.UserPlaylists(ctx, user.AccessToken, user.UID)
	if err != nil {
		h.providerError(w, r, err)
		return
	}
	page.Playlists = playlists
	h.renderer.Render(w, http.StatusOK, views.Playlists, page)
}

// CreatePlaylist builds the happy playlist and sends the user to it.
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user := middleware.UserFrom(r.Context())

	playlistID, err := h.builder.Build(r.Context(), user)
	if err != nil {
		h.providerError(w, r, err)
		return
	}

	h.codec.Set(w, constants.NewPlaylistCookie, playlistID)
	http.Redirect(w, r, "/playlist/new", http.StatusFound)
}

// NewPlaylist shows the playlist remembered in the new_playlist cookie.
func (h *Handler) NewPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFrom(ctx)

	playlistID, ok := h.codec.Read(r, constants.NewPlaylistCookie)
	if !ok || playlistID == "" {
		http.Redirect(w, r, "/playlist", http.StatusFound)
		return
	}

	playlist, err := h.api.Playlist(ctx, user.AccessToken, playlistID)
	if err != nil {
		h.providerError(w, r, err)
		return
	}
	items, err := h.api.PlaylistTracks(ctx, user.AccessToken, playlistID)
	if err != nil {
		h.providerError(w, r, err)
		return
	}

	page := newPlaylistPage{User: user, Name: playlist.Name}
	for _, item := range items {
		page.Songs = append(page.Songs, trackRow{
			Name:    item.Track.Name,
			Artists: strings.Join(item.Track.ArtistNames(), ", "),
		})
	}
	h.renderer.Render(w, http.StatusOK, views.NewPlaylist, page)
}

// LoginFailed is where the login flow ends on any error.
func (h *Handler) LoginFailed(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, views.Failed, errorPage{User: middleware.UserFrom(r.Context())})
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// providerError turns a failed provider call into a page. A rejected
// access token sends the user back through login since tokens are not
// refreshed.
func (h *Handler) providerError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	if spotify.IsUnauthorized(err) {
		log.Warn("Access token rejected, sending user to login", zap.Error(err))
		http.Redirect(w, r, constants.LoginPath, http.StatusFound)
		return
	}
	log.Error("Provider request failed", zap.Error(err))
	h.renderError(w, r, http.StatusBadGateway, "Spotify did not return the data we needed. Please try again.")
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.renderer.Render(w, status, views.Error, errorPage{
		User:    middleware.UserFrom(r.Context()),
		Message: message,
	})
}
