package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/movies"
	"github.com/desertthunder/marquee/internal/shared"
)

const maxWorkers = 4

// ExportOpts configures a snapshot export.
type ExportOpts struct {
	Formats    []formatter.Format // default: every format
	OutputDir  string             // default: marquee_export_{epoch}
	NumWorkers int                // default: one per format, at most 4
	Sort       movies.SortKey     // default: createdAt
	Name       string             // heading, default "Movie board"
}

// FormatResult is the outcome of one format.
type FormatResult struct {
	Format  formatter.Format
	File    string
	Success bool
	Error   error
}

// ExportResult summarizes a snapshot export.
type ExportResult struct {
	MovieCount        int
	TotalFormats      int
	SuccessfulFormats int
	FailedFormats     int
	OutputDirectory   string
	ManifestPath      string
	Results           []FormatResult
}

type manifest struct {
	Name       string          `json:"name"`
	SortedBy   string          `json:"sorted_by"`
	ExportedAt time.Time       `json:"exported_at"`
	Movies     int             `json:"movies"`
	Files      []manifestEntry `json:"files"`
}

type manifestEntry struct {
	Format string `json:"format"`
	File   string `json:"file,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Export fetches the board and writes it in every requested format.
//
// A failed fetch aborts the run. Failed formats are reported in the result and the manifest.
func (e *SnapshotEngine) Export(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: movie source not initialized", shared.ErrServiceUnavailable)
	}

	now := e.now()
	if len(opts.Formats) == 0 {
		opts.Formats = formatter.Formats
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("marquee_export_%d", now.Unix())
	}
	if opts.NumWorkers <= 0 || opts.NumWorkers > len(opts.Formats) {
		opts.NumWorkers = len(opts.Formats)
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.Sort == "" {
		opts.Sort = movies.SortCreatedAt
	}
	if opts.Name == "" {
		opts.Name = "Movie board"
	}

	e.sendProgress(prog, fetchMoviesUpdate(1, 1))
	board, err := e.source.GetMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movies: %w", err)
	}

	export := &formatter.BoardExport{
		Name:       opts.Name,
		SortedBy:   opts.Sort.Label(),
		ExportedAt: now,
		Movies:     movies.Sort(board, opts.Sort),
	}
	e.sendProgress(prog, fetchedMoviesUpdate(1, 1, len(board)))

	result := &ExportResult{
		MovieCount:      len(board),
		TotalFormats:    len(opts.Formats),
		OutputDirectory: opts.OutputDir,
		Results:         make([]FormatResult, 0, len(opts.Formats)),
	}

	jobs := make(chan formatter.Format, len(opts.Formats))
	results := make(chan FormatResult, len(opts.Formats))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, export, opts.OutputDir, jobs, results)
	}

	for _, f := range opts.Formats {
		jobs <- f
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulFormats++
			e.sendProgress(prog, formatCompletedUpdate(completed, result.TotalFormats, res.Format, res.File))
		} else {
			result.FailedFormats++
			e.sendProgress(prog, formatFailedUpdate(completed, result.TotalFormats, res.Format, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	e.sendProgress(prog, writeManifestUpdate(1, 1))
	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := writeManifest(export, result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker renders formats from the jobs channel until it is drained or ctx ends.
func (e *SnapshotEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	export *formatter.BoardExport,
	dir string,
	jobs <-chan formatter.Format,
	results chan<- FormatResult,
) {
	defer wg.Done()

	for f := range jobs {
		if err := ctx.Err(); err != nil {
			results <- FormatResult{Format: f, Error: err}
			continue
		}

		path, err := formatter.WriteExport(export, f, dir, "movies")
		if err != nil {
			results <- FormatResult{Format: f, Error: err}
			continue
		}
		results <- FormatResult{Format: f, File: path, Success: true}
	}
}

func writeManifest(export *formatter.BoardExport, result *ExportResult, path string) error {
	m := manifest{
		Name:       export.Name,
		SortedBy:   export.SortedBy,
		ExportedAt: export.ExportedAt,
		Movies:     result.MovieCount,
		Files:      make([]manifestEntry, 0, len(result.Results)),
	}
	for _, r := range result.Results {
		entry := manifestEntry{Format: string(r.Format)}
		if r.Success {
			entry.File = filepath.Base(r.File)
		} else if r.Error != nil {
			entry.Error = r.Error.Error()
		}
		m.Files = append(m.Files, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
