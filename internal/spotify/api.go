package spotify

import (
	"context"
	"net/http"
	"net/url"
)

// maxTracksPerAdd is the Web API limit for one add-items request.
const maxTracksPerAdd = 100

// playlistTrackFields narrows the playlist items response.
const playlistTrackFields = "items(track(artists,name,href,album(name,href)))"

// Me returns the profile of the token's owner. A profile without an id is
// rejected as malformed.
func (c *Client) Me(ctx context.Context, token string) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, token, http.MethodGet, c.endpoint(nil, "me"), nil, &profile); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, malformed("profile has no id", nil)
	}
	return &profile, nil
}

// RecentlyPlayed returns the user's recently played tracks, newest first.
func (c *Client) RecentlyPlayed(ctx context.Context, token string) ([]PlayHistory, error) {
	var page struct {
		Items *[]PlayHistory `json:"items"`
	}
	if err := c.do(ctx, token, http.MethodGet, c.endpoint(nil, "me", "player", "recently-played"), nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		return nil, malformed("recently played has no items", nil)
	}
	return *page.Items, nil
}

// AudioFeatures returns the attributes of one track. A response without
// a valence is rejected as malformed.
func (c *Client) AudioFeatures(ctx context.Context, token, trackID string) (*AudioFeatures, error) {
	var raw struct {
		ID      string   `json:"id"`
		Valence *float64 `json:"valence"`
	}
	if err := c.do(ctx, token, http.MethodGet, c.endpoint(nil, "audio-features", trackID), nil, &raw); err != nil {
		return nil, err
	}
	if raw.Valence == nil {
		return nil, malformed("audio features for "+trackID+" have no valence", nil)
	}
	return &AudioFeatures{ID: raw.ID, Valence: *raw.Valence}, nil
}

// ArtistTopTracks returns an artist's top tracks in market.
func (c *Client) ArtistTopTracks(ctx context.Context, token, artistID, market string) ([]Track, error) {
	query := url.Values{}
	if market != "" {
		query.Set("country", market)
	}
	var resp struct {
		Tracks *[]Track `json:"tracks"`
	}
	if err := c.do(ctx, token, http.MethodGet, c.endpoint(query, "artists", artistID, "top-tracks"), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Tracks == nil {
		return nil, malformed("top tracks for "+artistID+" missing", nil)
	}
	return *resp.Tracks, nil
}

// CreatePlaylist creates an empty playlist owned by userID.
func (c *Client) CreatePlaylist(ctx context.Context, token, userID, name string) (*Playlist, error) {
	body := map[string]any{"name": name}
	var playlist Playlist
	if err := c.do(ctx, token, http.MethodPost, c.endpoint(nil, "users", userID, "playlists"), body, &playlist); err != nil {
		return nil, err
	}
	if playlist.ID == "" {
		return nil, malformed("created playlist has no id", nil)
	}
	return &playlist, nil
}

// Playlist returns a playlist summary.
func (c *Client) Playlist(ctx context.Context, token, playlistID string) (*Playlist, error) {
	var playlist Playlist
	if err := c.do(ctx, token, http.MethodGet, c.endpoint(nil, "playlists", playlistID), nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// PlaylistTracks returns the tracks of a playlist with artist and album names.
func (c *Client) PlaylistTracks(ctx context.Context, token, playlistID string) ([]PlaylistItem, error) {
	query := url.Values{"fields": {playlistTrackFields}}
	var page struct {
		Items *[]PlaylistItem `json:"items"`
	}
	if err := c.do(ctx, token, http.MethodGet, c.endpoint(query, "playlists", playlistID, "tracks"), nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		return nil, malformed("playlist tracks have no items", nil)
	}
	return *page.Items, nil
}

// AddTracks appends uris to a playlist, splitting into requests of at
// most 100 items.
func (c *Client) AddTracks(ctx context.Context, token, playlistID string, uris []string) error {
	endpoint := c.endpoint(nil, "playlists", playlistID, "tracks")
	for start := 0; start < len(uris); start += maxTracksPerAdd {
		end := min(start+maxTracksPerAdd, len(uris))
		body := map[string]any{"uris": uris[start:end]}
		if err := c.do(ctx, token, http.MethodPost, endpoint, body, nil); err != nil {
			return err
		}
	}
	return nil
}

// UserPlaylists lists the playlists of userID.
func (c *Client) UserPlaylists(ctx context.Context, token, userID string) ([]Playlist, error) {
	var page struct {
		Items *[]Playlist `json:"items"`
	}
	if err := c.do(ctx, token, http.MethodGet, c.endpoint(nil, "users", userID, "playlists"), nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		return nil, malformed("user playlists have no items", nil)
	}
	return *page.Items, nil
}
