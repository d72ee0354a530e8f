package stores

import (
	"context"
	"errors"
	"testing"

	"drpanel/internal/models"
	"drpanel/internal/shared"
)

func TestFavoriteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Load Soft Fails", func(t *testing.T) {
		client, srv := newFakeStores(t)
		srv.FailPaths["/api/favorites"] = "storage offline"

		s := NewFavoriteStore(client)
		if err := s.Load(ctx); err != nil {
			t.Fatalf("listing failure must not surface, got %v", err)
		}
		if favs, _ := s.All(); len(favs) != 0 {
			t.Errorf("expected empty collection, got %v", favs)
		}
	})

	t.Run("Add Edit Delete Roundtrip", func(t *testing.T) {
		client, _ := newFakeStores(t)

		s := NewFavoriteStore(client)
		fav, err := s.Add(ctx, "Trailer", "Epic orchestral trailer")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if fav.ID == "" {
			t.Error("expected a generated id")
		}

		favs, rev := s.All()
		if len(favs) != 1 || favs[0].Title != "Trailer" {
			t.Fatalf("expected one favorite, got %v", favs)
		}

		if err := s.Edit(ctx, 0, rev, "Trailer v2", "Bigger drums"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		favs, rev = s.All()
		if favs[0].Title != "Trailer v2" || favs[0].Prompt != "Bigger drums" {
			t.Errorf("edit not applied: %+v", favs[0])
		}
		if favs[0].ID != fav.ID {
			t.Error("edit must preserve the id")
		}

		if err := s.Delete(ctx, 0, rev); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if favs, _ := s.All(); len(favs) != 0 {
			t.Errorf("expected empty collection, got %v", favs)
		}
	})

	t.Run("Edit Preserves Icon", func(t *testing.T) {
		client, srv := newFakeStores(t)
		srv.Favorites = []models.Favorite{{ID: "f1", Title: "Old", Prompt: "old", Icon: "star"}}

		s := NewFavoriteStore(client)
		if err := s.Load(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, rev := s.All()

		if err := s.Edit(ctx, 0, rev, "New", "new"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		favs, _ := s.All()
		if favs[0].Icon != "star" || favs[0].ID != "f1" {
			t.Errorf("edit must only touch title and prompt, got %+v", favs[0])
		}
	})

	t.Run("Delete Without Id Saves Remainder", func(t *testing.T) {
		client, srv := newFakeStores(t)
		srv.Favorites = []models.Favorite{
			{Title: "first", Prompt: "p1"},
			{Title: "second", Prompt: "p2"},
		}

		s := NewFavoriteStore(client)
		if err := s.Load(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, rev := s.All()

		if err := s.Delete(ctx, 0, rev); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		favs, _ := s.All()
		if len(favs) != 1 || favs[0].Title != "second" {
			t.Errorf("expected only the second favorite, got %v", favs)
		}
	})

	t.Run("Stale Revision Rejected", func(t *testing.T) {
		client, srv := newFakeStores(t)
		srv.Favorites = []models.Favorite{{Title: "first", Prompt: "p1"}}

		s := NewFavoriteStore(client)
		if err := s.Load(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, rev := s.All()
		if err := s.Load(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		err := s.Delete(ctx, 0, rev)
		if !errors.Is(err, shared.ErrFavoriteNotFound) {
			t.Errorf("expected ErrFavoriteNotFound for stale revision, got %v", err)
		}
	})

	t.Run("Add Requires Title And Prompt", func(t *testing.T) {
		client, srv := newFakeStores(t)

		s := NewFavoriteStore(client)
		if _, err := s.Add(ctx, " ", "prompt"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty title, got %v", err)
		}
		if _, err := s.Add(ctx, "title", "  "); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty prompt, got %v", err)
		}
		if len(srv.Requests()) != 0 {
			t.Error("invalid input must not reach the server")
		}
	})
}
