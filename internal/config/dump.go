package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const redacted = "********"

// Redacted returns a copy of the config with credentials masked.
func (c Config) Redacted() Config {
	mask := func(s *string) {
		if *s != "" {
			*s = redacted
		}
	}
	mask(&c.OAuth.ClientSecret)
	mask(&c.Session.Secret)
	mask(&c.Storage.Redis.Password)
	mask(&c.Storage.S3.SecretKey)
	mask(&c.Storage.PostgresDSN)
	return c
}

// YAML renders the redacted effective configuration.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
