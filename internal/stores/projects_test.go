package stores

import (
	"context"
	"errors"
	"testing"

	"drpanel/internal/models"
	"drpanel/internal/shared"
)

func TestProjectStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		client, srv := newFakeStores(t)
		srv.Files["Album"] = nil

		s := NewProjectStore(client)
		if err := s.Load(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		projects := s.Projects()
		if len(projects) != 2 {
			t.Fatalf("expected 2 projects, got %d", len(projects))
		}
		if s.Active() != models.DefaultProject {
			t.Errorf("expected Default active, got %q", s.Active())
		}
	})

	t.Run("Create Then Reload", func(t *testing.T) {
		client, srv := newFakeStores(t)

		s := NewProjectStore(client)
		if err := s.Create(ctx, "Album"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		found := false
		for _, p := range s.Projects() {
			if p.Name == "Album" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected Album in cache after create, got %v", s.Projects())
		}
		if srv.RequestCount("/api/projects/list") != 1 {
			t.Error("create must refetch the project list")
		}
	})

	t.Run("Create Requires A Name", func(t *testing.T) {
		client, srv := newFakeStores(t)

		s := NewProjectStore(client)
		err := s.Create(ctx, "   ")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if len(srv.Requests()) != 0 {
			t.Error("invalid input must not reach the server")
		}
	})

	t.Run("Failed Create Leaves Cache Untouched", func(t *testing.T) {
		client, srv := newFakeStores(t)

		s := NewProjectStore(client)
		if err := s.Load(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		before := s.Projects()

		srv.FailPaths["/api/projects/create"] = "disk full"
		err := s.Create(ctx, "Album")
		if err == nil {
			t.Fatal("expected error")
		}
		if got := s.Projects(); len(got) != len(before) {
			t.Errorf("cache changed after failed create: %v", got)
		}
	})

	t.Run("Select", func(t *testing.T) {
		client, srv := newFakeStores(t)
		srv.Files["Album"] = nil

		s := NewProjectStore(client)
		changed, err := s.Select(ctx, "Album")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !changed {
			t.Error("expected select to report a change")
		}
		if s.Active() != "Album" {
			t.Errorf("expected Album active, got %q", s.Active())
		}

		changed, err = s.Select(ctx, "Album")
		if err != nil || changed {
			t.Errorf("reselect must be a no-op, got changed=%v err=%v", changed, err)
		}
		if srv.RequestCount("/api/config") != 1 {
			t.Error("reselect must not hit the server")
		}
	})

	t.Run("Rename Protects Default", func(t *testing.T) {
		client, srv := newFakeStores(t)

		s := NewProjectStore(client)
		err := s.Rename(ctx, "default", "Other")
		if !errors.Is(err, shared.ErrProtectedProject) {
			t.Errorf("expected ErrProtectedProject, got %v", err)
		}
		if len(srv.Requests()) != 0 {
			t.Error("protected rename must not send any request")
		}
	})

	t.Run("Rename No Op On Empty Or Unchanged", func(t *testing.T) {
		client, srv := newFakeStores(t)

		s := NewProjectStore(client)
		if err := s.Rename(ctx, "Album", ""); err != nil {
			t.Errorf("empty new name must be a silent no-op, got %v", err)
		}
		if err := s.Rename(ctx, "Album", "Album"); err != nil {
			t.Errorf("unchanged name must be a silent no-op, got %v", err)
		}
		if len(srv.Requests()) != 0 {
			t.Error("no-op renames must not reach the server")
		}
	})

	t.Run("Delete Protects Default", func(t *testing.T) {
		client, srv := newFakeStores(t)

		s := NewProjectStore(client)
		err := s.Delete(ctx, " Default ")
		if !errors.Is(err, shared.ErrProtectedProject) {
			t.Errorf("expected ErrProtectedProject, got %v", err)
		}
		if len(srv.Requests()) != 0 {
			t.Error("protected delete must not send any request")
		}
	})

	t.Run("Delete Then Reload", func(t *testing.T) {
		client, srv := newFakeStores(t)
		srv.Files["Album"] = nil

		s := NewProjectStore(client)
		if err := s.Delete(ctx, "Album"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, p := range s.Projects() {
			if p.Name == "Album" {
				t.Error("deleted project still cached")
			}
		}
	})
}
