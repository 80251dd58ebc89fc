// package tasks implements batch operations over the movie board.
package tasks

import (
	"context"
	"time"

	"github.com/desertthunder/marquee/internal/models"
)

// MovieSource provides the board. [services.Backend] satisfies it.
type MovieSource interface {
	GetMovies(ctx context.Context) ([]models.Movie, error)
}

// SnapshotEngine exports snapshots of the board.
type SnapshotEngine struct {
	source MovieSource
	now    func() time.Time
}

// NewSnapshotEngine creates a SnapshotEngine reading from source.
func NewSnapshotEngine(source MovieSource) *SnapshotEngine {
	return &SnapshotEngine{source: source, now: time.Now}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SnapshotEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
