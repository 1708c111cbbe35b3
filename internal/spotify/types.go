package spotify

// Image is a provider image reference.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// ExternalURLs holds public web links.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Profile is the current user's profile from GET /me.
type Profile struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"display_name"`
	Images       []Image      `json:"images"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Href         string       `json:"href"`
}

type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Href string `json:"href,omitempty"`
}

type Album struct {
	Name    string   `json:"name"`
	Href    string   `json:"href,omitempty"`
	Artists []Artist `json:"artists"`
}

type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Href    string   `json:"href,omitempty"`
	Artists []Artist `json:"artists"`
	Album   Album    `json:"album"`
}

// URI returns the spotify:track URI used by playlist endpoints.
func (t Track) URI() string {
	return TrackURI(t.ID)
}

// TrackURI builds a spotify:track URI from a track id.
func TrackURI(id string) string {
	return "spotify:track:" + id
}

// ArtistNames returns the names of the track's artists in order.
func (t Track) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}

// PlayHistory is one recently-played item.
type PlayHistory struct {
	Track    Track  `json:"track"`
	PlayedAt string `json:"played_at"`
}

// AudioFeatures carries per-track attributes. Only valence is used.
type AudioFeatures struct {
	ID      string  `json:"id"`
	Valence float64 `json:"valence"`
}

// Playlist is a playlist summary.
type Playlist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Href         string       `json:"href,omitempty"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Tracks       struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// PlaylistItem is one entry of a playlist's track listing.
type PlaylistItem struct {
	Track Track `json:"track"`
}
