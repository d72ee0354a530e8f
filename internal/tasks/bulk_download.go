package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"drpanel/internal/formatter"
	"drpanel/internal/shared"
)

// BulkDownloadOpts contains configuration for bulk file downloads.
type BulkDownloadOpts struct {
	OutputDir  string  // Base output directory (default: <project>_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5, capped at 10)
	RateLimit  float64 // Requests per second (default: 5)
}

// FileDownloadResult records the outcome for a single file.
type FileDownloadResult struct {
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Bytes   int64  `json:"bytes"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkDownloadResult summarizes a bulk download run.
type BulkDownloadResult struct {
	Project         string               `json:"project"`
	TotalFiles      int                  `json:"total_files"`
	Downloaded      int                  `json:"downloaded"`
	Failed          int                  `json:"failed"`
	OutputDirectory string               `json:"output_directory"`
	ManifestPath    string               `json:"manifest_path,omitempty"`
	Results         []FileDownloadResult `json:"results"`
}

type downloadJob struct {
	step int
	name string
}

// BulkDownload downloads the named files of a project concurrently with rate
// limiting and progress tracking.
//
// A worker pool pulls jobs fed through a rate limiter, so the panel server
// never sees more than RateLimit requests per second regardless of worker
// count. Individual failures are recorded in the result rather than aborting
// the run, and a manifest file summarizing the outcome is written last.
func (e *DownloadEngine) BulkDownload(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	project string,
	names []string,
	opts BulkDownloadOpts,
) (*BulkDownloadResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("%s_export_%d", project, time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkDownloadResult{
		Project:         project,
		TotalFiles:      len(names),
		OutputDirectory: opts.OutputDir,
		Results:         make([]FileDownloadResult, 0, len(names)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan downloadJob, len(names))
	results := make(chan FileDownloadResult, len(names))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.downloadWorker(ctx, &wg, project, opts.OutputDir, jobs, results)
	}

	go func() {
		e.sendProgress(prog, preparingUpdate(len(names), opts.OutputDir))
		for i, name := range names {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				close(jobs)
				return
			}

			jobs <- downloadJob{step: i + 1, name: name}
			e.sendProgress(prog, downloadingUpdate(i+1, len(names), name))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Downloaded++
			e.sendProgress(prog, completedUpdate(completed, len(names), res.Name, res.Bytes))
		} else {
			result.Failed++
			e.sendProgress(prog, failedUpdate(completed, len(names), res.Name, fmt.Errorf("%s", res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "download_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("download completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// downloadWorker is a worker goroutine that downloads files from the jobs channel.
func (e *DownloadEngine) downloadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	project string,
	outputDir string,
	jobs <-chan downloadJob,
	results chan<- FileDownloadResult,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.downloadSingleFile(ctx, project, outputDir, job.name)
	}
}

// downloadSingleFile streams one file to disk, removing partial output on
// failure.
func (e *DownloadEngine) downloadSingleFile(ctx context.Context, project, outputDir, name string) FileDownloadResult {
	result := FileDownloadResult{Name: name}

	path := filepath.Join(outputDir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create output file: %v", err)
		return result
	}

	written, err := e.client.Download(ctx, project, name, f)
	closeErr := f.Close()
	if err != nil {
		os.Remove(path)
		result.Error = fmt.Sprintf("download failed: %v", err)
		return result
	}
	if closeErr != nil {
		os.Remove(path)
		result.Error = fmt.Sprintf("failed to close output file: %v", closeErr)
		return result
	}

	result.Path = path
	result.Bytes = written
	result.Success = true
	return result
}
