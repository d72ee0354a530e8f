package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Preparing Phase = iota
	Downloading
	FileCompleted
	FileFailed
)

func (p Phase) String() string {
	switch p {
	case Preparing:
		return "preparing"
	case Downloading:
		return "downloading"
	case FileCompleted:
		return "file_completed"
	case FileFailed:
		return "file_failed"
	default:
		return ""
	}
}

func preparingUpdate(total int, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Preparing,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Downloading %d files to %s...", total, dir),
	}
}

func downloadingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Downloading,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s...", step, total, name),
	}
}

func completedUpdate(step, total int, name string, bytes int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FileCompleted,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d bytes)", step, total, name, bytes),
	}
}

func failedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FileFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
