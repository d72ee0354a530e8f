package stores

import (
	"context"
	"fmt"
	"strings"

	"drpanel/internal/api"
	"drpanel/internal/models"
	"drpanel/internal/shared"
)

// FavoriteStore caches the favorites collection.
//
// The server has no patch API: every mutation except the id-addressed delete
// round-trips the entire collection. Entries are addressed by id when they
// have one; otherwise by their position captured at render time, which a
// Load invalidates (positions are only meaningful against the revision they
// were read from).
type FavoriteStore struct {
	guard
	client *api.Client

	favorites []models.Favorite
	revision  uint64
}

// NewFavoriteStore creates an empty favorite store.
func NewFavoriteStore(client *api.Client) *FavoriteStore {
	return &FavoriteStore{client: client}
}

// All returns a copy of the cached collection in server order, plus the
// revision the copy belongs to.
func (s *FavoriteStore) All() ([]models.Favorite, uint64) {
	var out []models.Favorite
	var rev uint64
	s.read(func() {
		out = append(out, s.favorites...)
		rev = s.revision
	})
	return out, rev
}

// Load fetches the collection. Listing soft-fails: any error leaves an empty
// collection and reports success so the panel still renders.
func (s *FavoriteStore) Load(ctx context.Context) error {
	token := s.next()

	favorites, err := s.client.ListFavorites(ctx)
	if err != nil {
		favorites = nil
	}

	s.apply(token, func() {
		s.favorites = favorites
		s.revision++
	})
	return nil
}

// Add appends a new favorite with a client-generated id and persists the
// whole collection. Title and prompt are required after trimming.
func (s *FavoriteStore) Add(ctx context.Context, title, prompt string) (models.Favorite, error) {
	title = strings.TrimSpace(title)
	prompt = strings.TrimSpace(prompt)
	if title == "" {
		return models.Favorite{}, fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	}
	if prompt == "" {
		return models.Favorite{}, fmt.Errorf("%w: prompt is required", shared.ErrInvalidInput)
	}

	fav := models.Favorite{ID: shared.GenerateID(), Title: title, Prompt: prompt}

	current, _ := s.All()
	next := append(current, fav)
	if err := s.client.SaveFavorites(ctx, next); err != nil {
		return models.Favorite{}, err
	}
	return fav, s.Load(ctx)
}

// Edit replaces the title and prompt of one entry, leaving the id, icon and
// every other attribute untouched, then persists the whole collection. The
// entry is matched by id when present, falling back to the captured
// position; a stale revision fails instead of touching the wrong entry.
func (s *FavoriteStore) Edit(ctx context.Context, index int, revision uint64, title, prompt string) error {
	title = strings.TrimSpace(title)
	prompt = strings.TrimSpace(prompt)
	if title == "" {
		return fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	}
	if prompt == "" {
		return fmt.Errorf("%w: prompt is required", shared.ErrInvalidInput)
	}

	current, rev := s.All()
	idx, err := s.resolve(current, rev, index, revision)
	if err != nil {
		return err
	}

	next := append([]models.Favorite(nil), current...)
	next[idx].Title = title
	next[idx].Prompt = prompt

	if err := s.client.SaveFavorites(ctx, next); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Delete removes one entry. When it carries an id the id-addressed endpoint
// is used and the collection refetched; otherwise the entry is filtered out
// locally and the remainder persisted wholesale.
func (s *FavoriteStore) Delete(ctx context.Context, index int, revision uint64) error {
	current, rev := s.All()
	idx, err := s.resolve(current, rev, index, revision)
	if err != nil {
		return err
	}

	if id := current[idx].ID; id != "" {
		if err := s.client.DeleteFavorite(ctx, id); err != nil {
			return err
		}
		return s.Load(ctx)
	}

	next := append([]models.Favorite(nil), current[:idx]...)
	next = append(next, current[idx+1:]...)
	if err := s.client.SaveFavorites(ctx, next); err != nil {
		return err
	}
	return s.Load(ctx)
}

// resolve validates a position captured at render time against the current
// revision.
func (s *FavoriteStore) resolve(current []models.Favorite, rev uint64, index int, revision uint64) (int, error) {
	if revision != rev {
		return 0, fmt.Errorf("%w: the collection changed, reload and retry", shared.ErrFavoriteNotFound)
	}
	if index < 0 || index >= len(current) {
		return 0, fmt.Errorf("%w: index %d out of range", shared.ErrFavoriteNotFound, index)
	}
	return index, nil
}
