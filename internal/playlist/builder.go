// Package playlist assembles a playlist of happy tracks from the artists a
// user has recently listened to.
package playlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/brizzai/moodlist/internal/logger"
	"github.com/brizzai/moodlist/internal/models"
	"github.com/brizzai/moodlist/internal/mood"
	"github.com/brizzai/moodlist/internal/spotify"
	"go.uber.org/zap"
)

// API is the subset of the Web API client the builder calls.
type API interface {
	RecentlyPlayed(ctx context.Context, token string) ([]spotify.PlayHistory, error)
	AudioFeatures(ctx context.Context, token, trackID string) (*spotify.AudioFeatures, error)
	ArtistTopTracks(ctx context.Context, token, artistID, market string) ([]spotify.Track, error)
	CreatePlaylist(ctx context.Context, token, userID, name string) (*spotify.Playlist, error)
	AddTracks(ctx context.Context, token, playlistID string, uris []string) error
}

// Builder creates happy playlists.
type Builder struct {
	api    API
	name   string
	market string
}

func NewBuilder(api API, name, market string) *Builder {
	return &Builder{api: api, name: name, market: market}
}

// Build creates a playlist owned by user and fills it with the top tracks
// of recently played album artists whose valence is above the happy
// threshold. It returns the new playlist id. The playlist is created
// before tracks are gathered, so a later failure leaves it empty.
func (b *Builder) Build(ctx context.Context, user *models.User) (string, error) {
	if user == nil {
		return "", errors.New("build playlist: no user")
	}
	log := logger.FromContext(ctx).With(zap.String("uid", user.UID))

	created, err := b.api.CreatePlaylist(ctx, user.AccessToken, user.UID, b.name)
	if err != nil {
		return "", fmt.Errorf("create playlist: %w", err)
	}

	recent, err := b.api.RecentlyPlayed(ctx, user.AccessToken)
	if err != nil {
		return created.ID, fmt.Errorf("recently played: %w", err)
	}

	uris, err := b.happyTracks(ctx, user.AccessToken, albumArtists(recent))
	if err != nil {
		return created.ID, err
	}

	if err := b.api.AddTracks(ctx, user.AccessToken, created.ID, uris); err != nil {
		return created.ID, fmt.Errorf("add tracks to %s: %w", created.ID, err)
	}

	log.Info("Built happy playlist",
		zap.String("playlist_id", created.ID),
		zap.Int("tracks", len(uris)),
	)
	return created.ID, nil
}

func (b *Builder) happyTracks(ctx context.Context, token string, artistIDs []string) ([]string, error) {
	seen := make(map[string]bool)
	var uris []string

	for _, artistID := range artistIDs {
		tracks, err := b.api.ArtistTopTracks(ctx, token, artistID, b.market)
		if err != nil {
			return nil, fmt.Errorf("top tracks of %s: %w", artistID, err)
		}

		for _, track := range tracks {
			if track.ID == "" || seen[track.ID] {
				continue
			}
			seen[track.ID] = true

			features, err := b.api.AudioFeatures(ctx, token, track.ID)
			if err != nil {
				return nil, fmt.Errorf("audio features of %s: %w", track.ID, err)
			}
			if mood.IsHappy(features.Valence) {
				uris = append(uris, track.URI())
			}
		}
	}
	return uris, nil
}

// albumArtists returns the distinct first album artist of each play, in
// first-seen order.
func albumArtists(plays []spotify.PlayHistory) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, play := range plays {
		artists := play.Track.Album.Artists
		if len(artists) == 0 || artists[0].ID == "" {
			continue
		}
		id := artists[0].ID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
