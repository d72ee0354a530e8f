// Package runlog implements SQLite persistence for generation runs.
//
// Every generation attempt, successful or not, is recorded locally so
// parameter sets survive server restarts and the server-side history file.
// Recording is best effort: callers treat a write failure as a log line, not
// a reason to fail the generation.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	"drpanel/internal/api"
	"drpanel/internal/models"
	"drpanel/internal/shared"
)

// Run is one recorded generation attempt.
type Run struct {
	ID            string
	CreatedAt     time.Time
	Project       string
	Mode          models.UIMode
	RefMode       models.RefMode
	Prompt        string
	RefAudio      string
	RepoID        string
	AudioLength   int
	Steps         int
	CfgStrength   float64
	BatchInferNum int
	Chunked       bool
	OK            bool
	Outfile       string
}

// Log records generation runs in the local database.
type Log struct {
	db *sql.DB
}

// New creates a run log backed by the given database connection.
func New(db *sql.DB) *Log {
	return &Log{db: db}
}

// FromRequest builds a run record from a generation request and its result.
func FromRequest(req api.GenerateRequest, result *models.GenerateResult) Run {
	run := Run{
		Project:       req.Project,
		Mode:          req.Mode,
		RefMode:       req.RefMode,
		Prompt:        req.RefPrompt,
		RefAudio:      req.RefAudioPath,
		RepoID:        req.RepoID,
		AudioLength:   req.AudioLength,
		Steps:         req.Steps,
		CfgStrength:   req.CfgStrength,
		BatchInferNum: req.BatchInferNum,
		Chunked:       req.UseChunked,
	}
	if result != nil {
		run.OK = result.OK
		run.Outfile = result.OutfileName
	}
	return run
}

// Record inserts a run, generating the id and timestamp when absent.
func (l *Log) Record(run Run) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO runs (
			id, created_at, project, mode, ref_mode, prompt, ref_audio,
			repo_id, audio_length, steps, cfg_strength, batch_infer_num,
			chunked, ok, outfile
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := l.db.Exec(query,
		run.ID,
		run.CreatedAt,
		run.Project,
		string(run.Mode),
		string(run.RefMode),
		run.Prompt,
		run.RefAudio,
		run.RepoID,
		run.AudioLength,
		run.Steps,
		run.CfgStrength,
		run.BatchInferNum,
		run.Chunked,
		run.OK,
		run.Outfile,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Recent returns the newest runs across all projects, newest first.
func (l *Log) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := selectColumns + `
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := l.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// ByProject returns the newest runs for one project, newest first.
func (l *Log) ByProject(project string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := selectColumns + `
		FROM runs
		WHERE project = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := l.db.Query(query, project, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

const selectColumns = `
	SELECT
		id, created_at, project, mode, ref_mode, prompt, ref_audio,
		repo_id, audio_length, steps, cfg_strength, batch_infer_num,
		chunked, ok, outfile
`

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var run Run
		var mode, refMode string
		err := rows.Scan(
			&run.ID,
			&run.CreatedAt,
			&run.Project,
			&mode,
			&refMode,
			&run.Prompt,
			&run.RefAudio,
			&run.RepoID,
			&run.AudioLength,
			&run.Steps,
			&run.CfgStrength,
			&run.BatchInferNum,
			&run.Chunked,
			&run.OK,
			&run.Outfile,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Mode = models.UIMode(mode)
		run.RefMode = models.RefMode(refMode)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
