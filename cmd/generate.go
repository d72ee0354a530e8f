package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"drpanel/internal/api"
	"drpanel/internal/models"
	"drpanel/internal/runlog"
	"drpanel/internal/shared"
	"drpanel/internal/stores"
)

// Generate submits one generation job and blocks until the server reports a
// result. Unset parameter flags inherit the server-side defaults.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	if err := r.panelCfg.Load(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	cfg := r.panelCfg.Config()

	project := cmd.String("project")
	if project == "" {
		project = cfg.ActiveProject
	}
	if project == "" {
		project = models.DefaultProject
	}

	req := api.GenerateRequest{
		Project:          project,
		Mode:             models.ModeAdvanced,
		RefMode:          models.RefPrompt,
		RefPrompt:        cmd.String("prompt"),
		RefAudioExisting: cmd.String("audio-existing"),
		RefAudioPath:     cmd.String("audio"),
		LrcPath:          cmd.String("lyrics"),

		RepoID:             cfg.RepoID,
		AudioLength:        cfg.AudioLength,
		Steps:              cfg.Steps,
		CfgStrength:        cfg.CfgStrength,
		BatchInferNum:      cfg.BatchInferNum,
		UseChunked:         cfg.UseChunked,
		CudaVisibleDevices: cfg.CudaVisibleDevices,
	}

	if req.RefAudioPath != "" || req.RefAudioExisting != "" {
		req.RefMode = models.RefAudio
	}

	if repo := cmd.String("repo"); repo != "" {
		req.RepoID = repo
	}
	if cmd.IsSet("length") {
		req.AudioLength = cmd.Int("length")
	}
	if cmd.IsSet("steps") {
		req.Steps = cmd.Int("steps")
	}
	if cmd.IsSet("cfg") {
		req.CfgStrength = cmd.Float("cfg")
	}
	if cmd.IsSet("batch") {
		req.BatchInferNum = cmd.Int("batch")
	}
	if cmd.IsSet("chunked") {
		req.UseChunked = cmd.Bool("chunked")
	}
	if cuda := cmd.String("cuda"); cuda != "" {
		req.CudaVisibleDevices = cuda
	}

	// The preset wins over individual sampler flags, matching the simple form.
	if preset := cmd.String("preset"); preset != "" {
		p := models.PresetByName(preset)
		req.Steps = p.Steps
		req.CfgStrength = p.CfgStrength
	}

	r.logger.Info("starting generation",
		"project", req.Project, "ref_mode", req.RefMode,
		"steps", req.Steps, "length", req.AudioLength)
	r.writePlain("Generating in project %q, this may take a while...\n", req.Project)

	var result models.GenerateResult
	var err error
	if cmd.Bool("json") {
		result, err = r.generateJSON(ctx, req)
	} else {
		result, err = r.generator.Generate(ctx, req)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("logs") && strings.TrimSpace(result.Logs) != "" {
		r.writePlainln("%s", strings.TrimSpace(result.Logs))
	}

	if !result.OK {
		msg := result.Error
		if msg == "" {
			msg = fmt.Sprintf("generation exited with code %d", result.ReturnCode)
		}
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, msg)
	}

	name := result.OutfileName
	if name == "" {
		name = result.Outfile
	}
	return r.writePlain("✓ Generated %s\n", name)
}

// generateJSON submits the job over the scripted JSON endpoint. Attachments
// travel base64-encoded instead of as multipart uploads.
func (r *Runner) generateJSON(ctx context.Context, req api.GenerateRequest) (models.GenerateResult, error) {
	if err := stores.ValidateGenerateRequest(req); err != nil {
		return models.GenerateResult{}, err
	}

	jreq := api.JSONGenerateRequest{
		Project:          req.Project,
		Mode:             req.Mode,
		RefMode:          req.RefMode,
		RefPrompt:        req.RefPrompt,
		RefAudioExisting: req.RefAudioExisting,

		RepoID:             req.RepoID,
		AudioLength:        req.AudioLength,
		Steps:              req.Steps,
		CfgStrength:        req.CfgStrength,
		BatchInferNum:      req.BatchInferNum,
		UseChunked:         req.UseChunked,
		CudaVisibleDevices: req.CudaVisibleDevices,
	}

	if req.RefAudioPath != "" {
		data, err := os.ReadFile(req.RefAudioPath)
		if err != nil {
			return models.GenerateResult{}, fmt.Errorf("failed to read reference audio: %w", err)
		}
		jreq.RefAudioB64 = base64.StdEncoding.EncodeToString(data)
		jreq.RefAudioFilename = filepath.Base(req.RefAudioPath)
	}
	if req.LrcPath != "" {
		data, err := os.ReadFile(req.LrcPath)
		if err != nil {
			return models.GenerateResult{}, fmt.Errorf("failed to read lyrics file: %w", err)
		}
		jreq.LrcB64 = base64.StdEncoding.EncodeToString(data)
		jreq.LrcFilename = filepath.Base(req.LrcPath)
	}

	result, err := r.client.GenerateJSON(ctx, jreq)
	if err != nil {
		r.recordRun(req, nil)
		return models.GenerateResult{}, err
	}
	r.recordRun(req, result)
	return *result, nil
}

func (r *Runner) recordRun(req api.GenerateRequest, result *models.GenerateResult) {
	if r.runLog == nil {
		return
	}
	if err := r.runLog.Record(runlog.FromRequest(req, result)); err != nil {
		r.logger.Warn("failed to record run", "error", err)
	}
}
