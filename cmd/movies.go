package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/movies"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/tasks"
	"github.com/urfave/cli/v3"
)

// controller builds a movie list controller for one command. Declined prompts cancel the action.
func (r *Runner) controller(skipConfirm bool) *movies.Controller {
	confirmer := movies.Confirmer(movies.ConfirmerFunc(r.promptConfirm))
	if skipConfirm {
		confirmer = movies.AlwaysConfirm
	}

	return movies.New(movies.Opts{
		Backend:   r.backend,
		Session:   r.session,
		Confirmer: confirmer,
		Logger:    r.logger,
		Notifier: movies.NotifierFunc(func(n movies.Notice) {
			r.writePlain("✗ %s\n", n.Message)
		}),
	})
}

// promptConfirm asks on the runner's input; anything but y/yes declines.
func (r *Runner) promptConfirm(ctx context.Context, prompt string) (bool, error) {
	if err := r.writePlain("%s [y/N] ", prompt); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// loaded gates the session for path and returns a controller holding the current board.
//
// Write commands act on a specific record, so a failed load aborts them.
func (r *Runner) loaded(ctx context.Context, path string, skipConfirm bool) (*movies.Controller, error) {
	if _, err := r.gate(path); err != nil {
		return nil, err
	}

	ctrl := r.controller(skipConfirm)
	if err := ctrl.Load(ctx); err != nil {
		ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}

func (r *Runner) sortKey(cmd *cli.Command) movies.SortKey {
	if s := cmd.String("sort"); s != "" {
		return movies.ParseSortKey(s)
	}
	return movies.ParseSortKey(r.config.UI.DefaultSort)
}

// MoviesList prints the board for the signed-in role.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	sess := r.session.Current()
	if _, err := r.gate(auth.HomePath(sess.Role)); err != nil {
		return err
	}

	ctrl := r.controller(false)
	defer ctrl.Close()
	if err := ctrl.Load(ctx); err != nil {
		r.logger.Warn("board unavailable, listing no movies", "error", err)
	}

	key := r.sortKey(cmd)
	export := &formatter.BoardExport{
		Name:       fmt.Sprintf("Movies (%s view)", sess.Role),
		SortedBy:   key.Label(),
		ExportedAt: time.Now(),
		Movies:     ctrl.Sorted(key),
	}

	data, err := formatter.Render(export, f, cmd.Bool("pretty"))
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		return r.writePlain("\n")
	}
	return nil
}

// MoviesAdd adds a movie to the board.
func (r *Runner) MoviesAdd(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.gate(auth.PathMemberHome); err != nil {
		return err
	}

	ctrl := r.controller(false)
	defer ctrl.Close()

	m, err := ctrl.AddMovie(ctx, cmd.String("title"), cmd.String("description"))
	if err != nil {
		return err
	}
	if m == nil {
		return r.writePlain("⚠ Movie submitted, but the backend returned no id. Run 'marquee movies list' to check.\n")
	}

	r.logger.Info("movie added", "id", m.ID)
	return r.writePlain("✓ Added %q (%s)\n", m.Title, m.ID)
}

// MoviesVote votes a movie up or down.
func (r *Runner) MoviesVote(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	ctrl, err := r.loaded(ctx, auth.PathMemberHome, false)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.Vote(ctx, id, !cmd.Bool("down")); err != nil {
		return err
	}

	m, _ := ctrl.Movie(id)
	return r.writePlain("✓ Voted on %q: ▲ %d ▼ %d (score %d)\n", m.Title, m.UpVotes, m.DownVotes, m.TotalVotes)
}

// MoviesComment creates or replaces the member's comment.
func (r *Runner) MoviesComment(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	ctrl, err := r.loaded(ctx, auth.PathMemberHome, false)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	sess := r.session.Current()

	m, ok := ctrl.Movie(id)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrMovieNotFound, id)
	}

	_, editing := m.CommentBy(sess.Identifier)
	if editing {
		err = ctrl.StartEdit(id)
	} else {
		err = ctrl.StartNew(id)
	}
	if err != nil {
		return err
	}

	ctrl.SetDraft(id, cmd.String("body"))
	if err := ctrl.SaveComment(ctx, id); err != nil {
		return err
	}

	if editing {
		return r.writePlain("✓ Updated your comment on %q\n", m.Title)
	}
	return r.writePlain("✓ Commented on %q\n", m.Title)
}

// MoviesDelete deletes a movie after confirmation.
func (r *Runner) MoviesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	ctrl, err := r.loaded(ctx, auth.PathAdminHome, cmd.Bool("yes"))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	m, _ := ctrl.Movie(id)
	if err := ctrl.DeleteMovie(ctx, id); err != nil {
		return err
	}

	if _, still := ctrl.Movie(id); still {
		return r.writePlain("⚠ %q is still on the board after reloading\n", m.Title)
	}
	return r.writePlain("✓ Deleted %q\n", m.Title)
}

// MoviesDeleteComment deletes a comment without votes after confirmation.
func (r *Runner) MoviesDeleteComment(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	commentID, err := requireArg(cmd, "comment")
	if err != nil {
		return err
	}

	ctrl, err := r.loaded(ctx, auth.PathAdminHome, cmd.Bool("yes"))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.DeleteComment(ctx, id, commentID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted comment %s\n", commentID)
}

// MoviesExport writes a snapshot of the board in several formats.
func (r *Runner) MoviesExport(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.gate(auth.HomePath(r.session.Current().Role))
	if err != nil {
		return err
	}

	var formats []formatter.Format
	for _, s := range cmd.StringSlice("format") {
		f, err := formatter.ParseFormat(s)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	opts := tasks.ExportOpts{
		Formats:    formats,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		Sort:       r.sortKey(cmd),
		Name:       fmt.Sprintf("Movies (%s view)", sess.Role),
	}

	progressCh := make(chan tasks.ProgressUpdate, 20)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchMovies:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.WriteFormat:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()

	result, err := tasks.NewSnapshotEngine(r.backend).Export(ctx, progressCh, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Movies: %d\n", result.MovieCount)
	r.writePlain("Formats: %d/%d written\n", result.SuccessfulFormats, result.TotalFormats)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.FailedFormats > 0 {
		r.writePlain("\nFailed formats:\n")
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %v\n", res.Format, res.Error)
			}
		}
	}
	return nil
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}
