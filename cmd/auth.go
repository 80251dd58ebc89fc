package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and stores the returned session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := auth.Credentials{
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}.Normalize()
	return r.authenticate(ctx, creds)
}

// AuthSignup registers a member account and stores the returned session.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	creds := auth.Credentials{
		Name:     cmd.String("name"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
		Signup:   true,
	}.Normalize()
	return r.authenticate(ctx, creds)
}

func (r *Runner) authenticate(ctx context.Context, creds auth.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	r.logger.Info("authenticating", "email", creds.Email, "signup", creds.Signup)

	var sess models.Session
	var err error
	if creds.Signup {
		sess, err = r.backend.Signup(ctx, creds)
	} else {
		sess, err = r.backend.Login(ctx, creds)
	}
	if err != nil {
		return err
	}

	if err := r.session.Set(sess); err != nil {
		r.logger.Warn("failed to persist session", "error", err)
	}

	r.logger.Info("authentication successful", "role", sess.Role)
	return r.writePlain("✓ Signed in as %s (%s)\nHome: %s\n", sess.Name, sess.Role, auth.HomePath(sess.Role))
}

// AuthLogout ends the backend session and forgets the stored session and cookies.
//
// The local session is cleared even when the backend request fails.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.session.Current().IsAnonymous() {
		return r.writePlain("Not signed in\n")
	}

	if err := r.backend.Logout(ctx); err != nil {
		r.logger.Warn("logout request failed", "error", err)
	}
	if err := r.session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := r.jar.Reset(); err != nil {
		r.logger.Warn("failed to clear cookies", "error", err)
	}

	return r.writePlain("✓ Signed out\n")
}

// AuthStatus shows the stored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	sess := r.session.Current()
	if cmd.Bool("json") {
		return r.writeJSON(sess, true)
	}

	if sess.IsAnonymous() {
		return r.writePlain("✗ Not signed in\nBackend: %s\n", r.api.BaseURL())
	}

	r.writePlain("✓ Signed in\n")
	r.writePlain("Name: %s\n", sess.Name)
	r.writePlain("Role: %s\n", sess.Role)
	if sess.Identifier != "" {
		r.writePlain("ID: %s\n", sess.Identifier)
	}
	return r.writePlain("Backend: %s\n", r.api.BaseURL())
}

// AuthCheck prints the gate decision for a route under the stored session.
func (r *Runner) AuthCheck(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	d := r.routes.Resolve(path, r.session.Current())
	if d.Allow {
		return r.writePlain("allow %s\n", path)
	}
	return r.writePlain("redirect %s (from %s)\n", d.Redirect, d.From)
}

// gate authorizes the stored session for a protected page.
func (r *Runner) gate(path string) (models.Session, error) {
	sess := r.session.Current()
	if sess.IsAnonymous() {
		return sess, fmt.Errorf("%w: run 'marquee auth login' first", shared.ErrNotAuthenticated)
	}

	d := r.routes.Resolve(path, sess)
	switch {
	case d.Allow:
		return sess, nil
	case d.Redirect == auth.PathUnauthorized:
		return sess, fmt.Errorf("%w: %s cannot open %s", shared.ErrForbidden, sess.Role, d.From)
	default:
		return sess, fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, d.From)
	}
}
