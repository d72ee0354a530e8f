package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"drpanel/internal/shared"
)

// ConfigShow prints the server-side generation defaults.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")

	if err := r.panelCfg.Load(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writeJSON(r.panelCfg.Config(), pretty)
}

// ConfigSet updates the server-side defaults. The config is a singleton the
// server replaces wholesale, so the current values are fetched first and only
// the flagged fields change.
func (r *Runner) ConfigSet(ctx context.Context, cmd *cli.Command) error {
	if err := r.panelCfg.Load(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	cfg := r.panelCfg.Config()

	changed := false
	if repo := cmd.String("repo"); repo != "" {
		cfg.RepoID = repo
		changed = true
	}
	if cmd.IsSet("length") {
		cfg.AudioLength = cmd.Int("length")
		changed = true
	}
	if cmd.IsSet("steps") {
		cfg.Steps = cmd.Int("steps")
		changed = true
	}
	if cmd.IsSet("cfg") {
		cfg.CfgStrength = cmd.Float("cfg")
		changed = true
	}
	if cmd.IsSet("batch") {
		cfg.BatchInferNum = cmd.Int("batch")
		changed = true
	}
	if cmd.IsSet("chunked") {
		cfg.UseChunked = cmd.Bool("chunked")
		changed = true
	}
	if cmd.IsSet("cuda") {
		cfg.CudaVisibleDevices = cmd.String("cuda")
		changed = true
	}

	if !changed {
		return fmt.Errorf("%w: no fields to update", shared.ErrMissingArgument)
	}

	r.logger.Info("saving generation defaults")

	if err := r.panelCfg.Save(ctx, cfg); err != nil {
		return err
	}

	return r.writeJSON(r.panelCfg.Config(), true)
}

// ModelsList lists the model checkpoints the server can discover. When
// discovery fails the configured repo is still shown as a fallback entry.
func (r *Runner) ModelsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.panelCfg.Load(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if err := r.modelList.Load(ctx, r.panelCfg.Config().RepoID); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	for _, model := range r.modelList.Models() {
		r.writePlain("%s\t%s\n", model.Label, model.RepoID)
	}
	return nil
}
