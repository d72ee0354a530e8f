package stores

import (
	"context"
	"strings"

	"drpanel/internal/api"
	"drpanel/internal/models"
)

// ModelStore caches the list of installed model checkpoints.
type ModelStore struct {
	guard
	client *api.Client

	models []models.ModelInfo
}

// NewModelStore creates an empty model store.
func NewModelStore(client *api.Client) *ModelStore {
	return &ModelStore{client: client}
}

// Models returns a copy of the cached model list.
func (s *ModelStore) Models() []models.ModelInfo {
	var out []models.ModelInfo
	s.read(func() { out = append(out, s.models...) })
	return out
}

// Load fetches the model list. Discovery soft-fails: on any error the cache
// is left with a single entry derived from the configured repo so the model
// picker always has something to offer.
func (s *ModelStore) Load(ctx context.Context, configuredRepo string) error {
	token := s.next()

	list, err := s.client.ListModels(ctx)
	if err != nil || len(list) == 0 {
		list = []models.ModelInfo{FallbackModel(configuredRepo)}
	}

	s.apply(token, func() { s.models = list })
	return nil
}

// FallbackModel builds a model entry for a repo id when discovery is
// unavailable. The label is the repo basename with underscores read as
// version dots, e.g. "DiffRhythm-1_2" shows as "DiffRhythm-1.2".
func FallbackModel(repoID string) models.ModelInfo {
	label := repoID
	if idx := strings.LastIndex(label, "/"); idx >= 0 {
		label = label[idx+1:]
	}
	label = strings.ReplaceAll(label, "_", ".")
	return models.ModelInfo{RepoID: repoID, Label: label}
}
