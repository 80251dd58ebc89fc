package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

var _ Backend = (*MovieService)(nil)

// MovieService implements [Backend] over an [APIService].
type MovieService struct {
	api *APIService
	now func() time.Time
}

// NewMovieService creates a backend facade using api for transport.
func NewMovieService(api *APIService) *MovieService {
	return &MovieService{api: api, now: time.Now}
}

// Login posts credentials to /login.
func (s *MovieService) Login(ctx context.Context, creds auth.Credentials) (models.Session, error) {
	body := map[string]string{"email": creds.Email, "password": creds.Password}
	return s.authenticate(ctx, "/login", body)
}

// Signup posts the registration form to /signup.
func (s *MovieService) Signup(ctx context.Context, creds auth.Credentials) (models.Session, error) {
	body := map[string]string{"name": creds.Name, "email": creds.Email, "password": creds.Password}
	return s.authenticate(ctx, "/signup", body)
}

func (s *MovieService) authenticate(ctx context.Context, path string, body any) (models.Session, error) {
	resp, err := s.api.PostJSON(ctx, path, body)
	if err != nil {
		return models.Session{}, err
	}

	obj := resp.Object()
	if ok, _ := obj["success"].(bool); !ok {
		msg, _ := obj["message"].(string)
		if msg == "" {
			msg = "backend rejected credentials"
		}
		return models.Session{}, fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
	}

	sess := models.Session{
		Role:       models.ParseRole(stringValue(obj["role"])),
		Name:       stringValue(obj["name"]),
		Identifier: firstNonEmpty(obj, "_id", "identifier", "id"),
	}
	if sess.IsAnonymous() {
		return models.Session{}, fmt.Errorf("%w: unrecognized role %q", shared.ErrAuthFailed, stringValue(obj["role"]))
	}
	return sess, nil
}

// Logout posts to /logout.
func (s *MovieService) Logout(ctx context.Context) error {
	_, err := s.api.Post(ctx, "/logout", nil)
	return err
}

// GetMovies fetches /c/getMovies. Both {movies: [...]} and a bare array are accepted.
func (s *MovieService) GetMovies(ctx context.Context) ([]models.Movie, error) {
	resp, err := s.api.Get(ctx, "/c/getMovies")
	if err != nil {
		return nil, err
	}

	raw := resp.JSONData
	if obj := resp.Object(); obj != nil {
		raw = obj["movies"]
	}
	return models.NormalizeMovies(raw, s.now()), nil
}

// AddMovie posts to /u/addMovie.
func (s *MovieService) AddMovie(ctx context.Context, title, description string) (*models.Movie, error) {
	resp, err := s.api.PostJSON(ctx, "/u/addMovie", map[string]string{"title": title, "description": description})
	if err != nil {
		return nil, err
	}
	obj := resp.Object()
	if nested, ok := obj["movie"].(map[string]any); ok {
		obj = nested
	}
	return s.normalize(obj, ""), nil
}

// Vote posts {voteType} to /u/{id}/vote.
func (s *MovieService) Vote(ctx context.Context, movieID string, up bool) (*models.Movie, error) {
	resp, err := s.api.PostJSON(ctx, "/u/"+url.PathEscape(movieID)+"/vote", map[string]bool{"voteType": up})
	if err != nil {
		return nil, err
	}
	return s.movieFrom(resp, movieID), nil
}

// SaveComment posts {body} to /u/{id}/comment.
func (s *MovieService) SaveComment(ctx context.Context, movieID, body string) (*models.Movie, error) {
	resp, err := s.api.PostJSON(ctx, "/u/"+url.PathEscape(movieID)+"/comment", map[string]string{"body": body})
	if err != nil {
		return nil, err
	}
	return s.movieFrom(resp, movieID), nil
}

// DeleteMovie sends DELETE /a/{id}/delete.
func (s *MovieService) DeleteMovie(ctx context.Context, movieID string) (int, error) {
	resp, err := s.api.Delete(ctx, "/a/"+url.PathEscape(movieID)+"/delete")
	if err != nil {
		return shared.StatusCode(err), err
	}
	return resp.StatusCode, nil
}

// DeleteComment sends DELETE /a/{id}/{cid}/delete.
func (s *MovieService) DeleteComment(ctx context.Context, movieID, commentID string) (DeleteResult, error) {
	path := "/a/" + url.PathEscape(movieID) + "/" + url.PathEscape(commentID) + "/delete"
	resp, err := s.api.Delete(ctx, path)
	if err != nil {
		return DeleteResult{StatusCode: shared.StatusCode(err)}, err
	}
	return DeleteResult{StatusCode: resp.StatusCode, Movie: s.movieFrom(resp, movieID)}, nil
}

// movieFrom extracts the updated record from a {movie: {...}} body.
//
// It returns nil when the body has no nested movie or the movie is not movieID.
func (s *MovieService) movieFrom(resp *APIResponse, movieID string) *models.Movie {
	nested, ok := resp.Object()["movie"].(map[string]any)
	if !ok {
		return nil
	}
	return s.normalize(nested, movieID)
}

// normalize returns nil for records without an id, or with an id other than want when want is set.
func (s *MovieService) normalize(obj map[string]any, want string) *models.Movie {
	if obj == nil {
		return nil
	}
	m := models.NormalizeMovie(obj, s.now())
	if m.ID == "" || (want != "" && m.ID != want) {
		return nil
	}
	return &m
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func firstNonEmpty(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(obj[k]); s != "" {
			return s
		}
	}
	return ""
}
