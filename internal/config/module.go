package config

import "go.uber.org/fx"

// Module exposes the per-concern sections of a loaded *Config.
var Module = fx.Module("config",
	fx.Provide(
		func(c *Config) *ServerConfig { return &c.Server },
		func(c *Config) *OAuthConfig { return &c.OAuth },
		func(c *Config) *SessionConfig { return &c.Session },
		func(c *Config) *SpotifyConfig { return &c.Spotify },
		func(c *Config) *StorageConfig { return &c.Storage },
	),
)
