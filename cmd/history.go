package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"drpanel/internal/runlog"
	"drpanel/internal/shared"
)

// History prints locally recorded generation runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.runLog == nil {
		return fmt.Errorf("%w: run log not initialized, run 'drpanel setup database'", shared.ErrServiceUnavailable)
	}

	project := cmd.String("project")
	limit := cmd.Int("limit")
	pretty := cmd.Bool("pretty")

	var runs []runlog.Run
	var err error
	if project != "" {
		runs, err = r.runLog.ByProject(project, limit)
	} else {
		runs, err = r.runLog.Recent(limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read run log: %w", err)
	}

	if len(runs) == 0 {
		return r.writePlain("No recorded runs\n")
	}

	return r.writeJSON(runs, pretty)
}
