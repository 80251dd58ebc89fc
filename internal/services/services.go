// package services defines the [Backend] interface for the movie board API and its HTTP implementation
package services

import (
	"context"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
)

// Backend is the movie board's HTTP surface.
type Backend interface {
	// Login authenticates and returns the session described by the response.
	Login(ctx context.Context, creds auth.Credentials) (models.Session, error)

	// Signup registers a new member and signs them in.
	Signup(ctx context.Context, creds auth.Credentials) (models.Session, error)

	// Logout ends the backend session.
	Logout(ctx context.Context) error

	// GetMovies fetches and normalizes the whole board.
	GetMovies(ctx context.Context) ([]models.Movie, error)

	// AddMovie creates a movie. A nil movie with a nil error means the backend assigned no usable id.
	AddMovie(ctx context.Context, title, description string) (*models.Movie, error)

	// Vote casts the caller's vote; the updated movie is returned when the response carries one.
	Vote(ctx context.Context, movieID string, up bool) (*models.Movie, error)

	// SaveComment creates or replaces the caller's comment on a movie.
	SaveComment(ctx context.Context, movieID, body string) (*models.Movie, error)

	// DeleteMovie removes a movie and reports the response status.
	DeleteMovie(ctx context.Context, movieID string) (int, error)

	// DeleteComment removes a comment and reports the status plus the parent movie when returned.
	DeleteComment(ctx context.Context, movieID, commentID string) (DeleteResult, error)
}

// DeleteResult is the outcome of a comment deletion.
type DeleteResult struct {
	StatusCode int
	Movie      *models.Movie
}

// OK reports a 2xx status.
func (r DeleteResult) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }
