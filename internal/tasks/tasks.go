// package tasks implements long-running batch operations against the panel server.
//
// The core abstraction is DownloadEngine, which pulls generated audio out of
// a project concurrently. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"io"
)

// Downloader streams one generated file. Satisfied by api.Client.
type Downloader interface {
	Download(ctx context.Context, project, file string, w io.Writer) (int64, error)
}

// DownloadEngine runs bulk downloads against a panel server.
type DownloadEngine struct {
	client Downloader
}

// NewDownloadEngine creates a DownloadEngine backed by the given client.
func NewDownloadEngine(client Downloader) *DownloadEngine {
	return &DownloadEngine{client: client}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the download.
func (e *DownloadEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
