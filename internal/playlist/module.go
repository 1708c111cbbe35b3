package playlist

import (
	"github.com/brizzai/moodlist/internal/config"
	"github.com/brizzai/moodlist/internal/spotify"
	"go.uber.org/fx"
)

func newBuilder(cfg *config.SpotifyConfig, api *spotify.Client) *Builder {
	return NewBuilder(api, cfg.PlaylistName, cfg.Market)
}

// Module provides the playlist builder.
var Module = fx.Module("playlist",
	fx.Provide(newBuilder),
)
