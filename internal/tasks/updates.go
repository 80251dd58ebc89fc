package tasks

import (
	"fmt"

	"github.com/desertthunder/marquee/internal/formatter"
)

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
	FetchMovies Phase = iota
	WriteFormat
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchMovies:
		return "fetch_movies"
	case WriteFormat:
		return "write_format"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchMoviesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMovies,
		Step:    step,
		Total:   total,
		Message: "Fetching movies...",
	}
}

func fetchedMoviesUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetched %d movies", count),
		Data:    count,
	}
}

func formatCompletedUpdate(step, total int, f formatter.Format, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteFormat,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s -> %s", step, total, f, path),
		Data:    path,
	}
}

func formatFailedUpdate(step, total int, f formatter.Format, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteFormat,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, f, err),
	}
}

func writeManifestUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    step,
		Total:   total,
		Message: "Writing manifest...",
	}
}
