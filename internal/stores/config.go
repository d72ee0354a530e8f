package stores

import (
	"context"

	"drpanel/internal/api"
	"drpanel/internal/models"
)

// ConfigStore caches the server-side generation defaults.
type ConfigStore struct {
	guard
	client *api.Client

	config models.Config
}

// NewConfigStore creates a config store with zero-value defaults until the
// first Load.
func NewConfigStore(client *api.Client) *ConfigStore {
	return &ConfigStore{client: client}
}

// Config returns the cached configuration.
func (s *ConfigStore) Config() models.Config {
	var out models.Config
	s.read(func() { out = s.config })
	return out
}

// Load fetches the server configuration and replaces the cache.
func (s *ConfigStore) Load(ctx context.Context) error {
	token := s.next()

	config, err := s.client.GetConfig(ctx)
	if err != nil {
		return err
	}

	s.apply(token, func() { s.config = *config })
	return nil
}

// Save persists the full configuration and caches the merged result the
// server echoes back.
func (s *ConfigStore) Save(ctx context.Context, config models.Config) error {
	token := s.next()

	merged, err := s.client.SaveConfig(ctx, config)
	if err != nil {
		return err
	}

	s.apply(token, func() { s.config = *merged })
	return nil
}
