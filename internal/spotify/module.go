package spotify

import (
	"net/http"

	"github.com/brizzai/moodlist/internal/config"
	"go.uber.org/fx"
)

func newClient(cfg *config.SpotifyConfig) (*Client, error) {
	return NewClient(cfg.APIURL, &http.Client{Timeout: cfg.Timeout})
}

// Module provides the Web API client.
var Module = fx.Module("spotify",
	fx.Provide(newClient),
)
