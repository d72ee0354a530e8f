package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"drpanel/internal/shared"
)

// Open launches the panel server's own web UI in the default browser.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	if r.client == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}
	url := r.client.BaseURL()
	if err := shared.OpenBrowser(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return r.writePlain("✓ Opened %s\n", url)
}
