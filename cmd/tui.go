package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/movies"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive movie board.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.backend == nil || r.session == nil {
		return fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.ModelOpts{
		Backend: r.backend,
		Session: r.session,
		Routes:  r.routes,
		Logger:  fileLogger,
		Sort:    movies.ParseSortKey(r.config.UI.DefaultSort),
		OnLogout: func() {
			if err := r.jar.Reset(); err != nil {
				fileLogger.Warn("failed to clear cookies", "error", err)
			}
		},
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
