package stores

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"drpanel/internal/api"
	"drpanel/internal/models"
	"drpanel/internal/runlog"
	"drpanel/internal/shared"
)

// RunRecorder receives one record per generation attempt.
type RunRecorder interface {
	Record(run runlog.Run) error
}

// Generator orchestrates generation requests: it validates input, submits
// the job, records the attempt locally and refreshes the file cache when new
// output landed.
type Generator struct {
	client   *api.Client
	files    *FileStore
	recorder RunRecorder
	logger   *log.Logger

	busy chan struct{}
}

// NewGenerator creates a generator. The recorder may be nil when no local
// run log is configured.
func NewGenerator(client *api.Client, files *FileStore, recorder RunRecorder, logger *log.Logger) *Generator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Generator{
		client:   client,
		files:    files,
		recorder: recorder,
		logger:   logger,
		busy:     make(chan struct{}, 1),
	}
}

// SetLogger swaps the generator's logger. The panel redirects logs to a file
// before taking over the terminal.
func (g *Generator) SetLogger(logger *log.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Busy reports whether a generation is currently in flight.
func (g *Generator) Busy() bool {
	select {
	case g.busy <- struct{}{}:
		<-g.busy
		return false
	default:
		return true
	}
}

// Generate validates and submits one generation job. At most one job runs at
// a time; a second call while busy fails immediately, mirroring the server's
// own single-job policy. A result with OK false is returned without error so
// the caller can show the logs.
func (g *Generator) Generate(ctx context.Context, req api.GenerateRequest) (models.GenerateResult, error) {
	if err := ValidateGenerateRequest(req); err != nil {
		return models.GenerateResult{}, err
	}

	select {
	case g.busy <- struct{}{}:
	default:
		return models.GenerateResult{}, fmt.Errorf("%w: a generation is already running", shared.ErrServerBusy)
	}
	defer func() { <-g.busy }()

	req = NormalizeGenerateRequest(req)

	result, err := g.client.Generate(ctx, req)
	if err != nil {
		g.record(req, nil)
		return models.GenerateResult{}, err
	}

	g.record(req, result)

	if result.OK {
		if err := g.files.Load(ctx, req.Project); err != nil {
			g.logger.Warn("generated but file refresh failed", "error", err)
		}
	}
	return *result, nil
}

// ValidateGenerateRequest checks the reference input the selected mode
// requires.
func ValidateGenerateRequest(req api.GenerateRequest) error {
	switch req.RefMode {
	case models.RefPrompt:
		if strings.TrimSpace(req.RefPrompt) == "" {
			return fmt.Errorf("%w: a style prompt is required in prompt mode", shared.ErrInvalidInput)
		}
	case models.RefAudio:
		if strings.TrimSpace(req.RefAudioPath) == "" && strings.TrimSpace(req.RefAudioExisting) == "" {
			return fmt.Errorf("%w: a reference audio file is required in audio mode", shared.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown reference mode %q", shared.ErrInvalidInput, req.RefMode)
	}
	return nil
}

// NormalizeGenerateRequest pins the parameters simple mode does not expose
// to their fixed values. Advanced requests pass through untouched.
func NormalizeGenerateRequest(req api.GenerateRequest) api.GenerateRequest {
	if req.Mode == models.ModeSimple {
		req.BatchInferNum = 1
		req.UseChunked = false
		req.LrcPath = ""
	}
	return req
}

func (g *Generator) record(req api.GenerateRequest, result *models.GenerateResult) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.Record(runlog.FromRequest(req, result)); err != nil {
		g.logger.Warn("failed to record run", "error", err)
	}
}
