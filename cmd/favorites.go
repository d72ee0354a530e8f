package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"drpanel/internal/formatter"
	"drpanel/internal/shared"
)

// FavoritesList lists saved favorites in display order.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")

	if err := r.favorites.Load(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	favorites, _ := r.favorites.All()
	data, err := formatter.RenderFavorites(format, favorites)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// FavoritesAdd saves a new favorite prompt.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	title := cmd.String("title")
	prompt := cmd.String("prompt")

	r.logger.Info("adding favorite", "title", title)

	favorite, err := r.favorites.Add(ctx, title, prompt)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Saved favorite %q (%s)\n", favorite.Title, favorite.ID)
}

// FavoritesDelete deletes a favorite by its 1-based list position.
func (r *Runner) FavoritesDelete(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("index")
	if arg == "" {
		return fmt.Errorf("%w: favorite position", shared.ErrMissingArgument)
	}

	position, err := strconv.Atoi(arg)
	if err != nil || position < 1 {
		return fmt.Errorf("%w: position must be a positive number", shared.ErrInvalidInput)
	}

	if err := r.favorites.Load(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	favorites, revision := r.favorites.All()
	if position > len(favorites) {
		return fmt.Errorf("%w: only %d favorites exist", shared.ErrFavoriteNotFound, len(favorites))
	}
	target := favorites[position-1]

	r.logger.Info("deleting favorite", "position", position, "title", target.Title)

	if err := r.favorites.Delete(ctx, position-1, revision); err != nil {
		return err
	}

	return r.writePlain("✓ Deleted favorite %q\n", target.Title)
}
