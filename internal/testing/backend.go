package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/models"
)

const tokenCookie = "token"

// FakeUser is an account known to a [FakeBackend].
type FakeUser struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// FakeBackend is an in-memory movie board served over httptest.
//
// Sessions are tracked with a cookie holding the user id. Handlers answer with the same shapes as the
// real backend: {success, role, name, _id} for login, {movies} for the list and {movie} for writes.
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]FakeUser
	movies   []models.Movie
	nextID   int
	requests []string
	fail     map[string]failure
}

type failure struct {
	status  int
	message string
}

// NewFakeBackend starts a backend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	f := &FakeBackend{users: map[string]FakeUser{}, fail: map[string]failure{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", f.login)
	mux.HandleFunc("POST /signup", f.signup)
	mux.HandleFunc("POST /logout", f.logout)
	mux.HandleFunc("GET /c/getMovies", f.listMovies)
	mux.HandleFunc("POST /u/addMovie", f.member(f.addMovie))
	mux.HandleFunc("POST /u/{id}/vote", f.member(f.vote))
	mux.HandleFunc("POST /u/{id}/comment", f.member(f.comment))
	mux.HandleFunc("DELETE /a/{id}/delete", f.admin(f.deleteMovie))
	mux.HandleFunc("DELETE /a/{id}/{cid}/delete", f.admin(f.deleteComment))

	f.Server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.Close)
	return f
}

// AddUser registers an account.
func (f *FakeBackend) AddUser(u FakeUser) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.Email] = u
}

// Seed appends movies to the board.
func (f *FakeBackend) Seed(movies ...models.Movie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range movies {
		f.movies = append(f.movies, m.Clone())
	}
}

// Movies returns a copy of the board.
func (f *FakeBackend) Movies() []models.Movie {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Movie, len(f.movies))
	for i, m := range f.movies {
		out[i] = m.Clone()
	}
	return out
}

// Requests returns every request received as "METHOD /path".
func (f *FakeBackend) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// FailNext makes requests matching "METHOD /path" answer with status until cleared with status 0.
func (f *FakeBackend) FailNext(pattern string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.fail, pattern)
		return
	}
	f.fail[pattern] = failure{status: status, message: message}
}

func (f *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		f.mu.Lock()
		f.requests = append(f.requests, key)
		fail, ok := f.fail[key]
		f.mu.Unlock()

		if ok {
			writeJSON(w, fail.status, map[string]any{"success": false, "message": fail.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeBackend) currentUser(r *http.Request) (FakeUser, bool) {
	c, err := r.Cookie(tokenCookie)
	if err != nil {
		return FakeUser{}, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == c.Value {
			return u, true
		}
	}
	return FakeUser{}, false
}

func (f *FakeBackend) member(next func(http.ResponseWriter, *http.Request, FakeUser)) http.HandlerFunc {
	return f.requireRole(models.RoleMember, next)
}

func (f *FakeBackend) admin(next func(http.ResponseWriter, *http.Request, FakeUser)) http.HandlerFunc {
	return f.requireRole(models.RoleAdmin, next)
}

func (f *FakeBackend) requireRole(role models.Role, next func(http.ResponseWriter, *http.Request, FakeUser)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := f.currentUser(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Not signed in"})
			return
		}
		if u.Role != role {
			writeJSON(w, http.StatusForbidden, map[string]any{"message": "Forbidden"})
			return
		}
		next(w, r, u)
	}
}

func (f *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	u, ok := f.users[body.Email]
	f.mu.Unlock()

	if !ok || u.Password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
		return
	}

	http.SetCookie(w, &http.Cookie{Name: tokenCookie, Value: u.ID, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "role": string(u.Role), "name": u.Name, "_id": u.ID})
}

func (f *FakeBackend) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	if _, exists := f.users[body.Email]; exists {
		f.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "User already exists"})
		return
	}
	f.nextID++
	u := FakeUser{ID: fmt.Sprintf("u%d", f.nextID), Name: body.Name, Email: body.Email, Password: body.Password, Role: models.RoleMember}
	f.users[u.Email] = u
	f.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: tokenCookie, Value: u.ID, Path: "/"})
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "role": string(u.Role), "name": u.Name})
}

func (f *FakeBackend) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: tokenCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

func (f *FakeBackend) listMovies(w http.ResponseWriter, r *http.Request) {
	if _, ok := f.currentUser(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Not signed in"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"movies": f.Movies()})
}

func (f *FakeBackend) addMovie(w http.ResponseWriter, r *http.Request, u FakeUser) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.nextID++
	m := models.Movie{
		ID:          fmt.Sprintf("m%d", f.nextID),
		Title:       body.Title,
		Description: body.Description,
		AddedBy:     u.ID,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		Votes:       []models.Vote{},
		Comments:    []models.Comment{},
	}
	f.movies = append([]models.Movie{m}, f.movies...)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"movie": m})
}

func (f *FakeBackend) vote(w http.ResponseWriter, r *http.Request, u FakeUser) {
	var body struct {
		VoteType bool `json:"voteType"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.update(w, r.PathValue("id"), func(m *models.Movie) {
		votes := m.Votes[:0:0]
		for _, v := range m.Votes {
			if v.UserID != u.ID {
				votes = append(votes, v)
			}
		}
		m.Votes = append(votes, models.Vote{UserID: u.ID, Up: body.VoteType})

		m.UpVotes, m.DownVotes = 0, 0
		for _, v := range m.Votes {
			if v.Up {
				m.UpVotes++
			} else {
				m.DownVotes++
			}
		}
		m.TotalVotes = m.UpVotes - m.DownVotes
	})
}

func (f *FakeBackend) comment(w http.ResponseWriter, r *http.Request, u FakeUser) {
	var body struct {
		Body string `json:"body"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.update(w, r.PathValue("id"), func(m *models.Movie) {
		for i, c := range m.Comments {
			if c.UserID == u.ID {
				m.Comments[i].Body = body.Body
				return
			}
		}
		f.nextID++
		m.Comments = append(m.Comments, models.Comment{
			ID:       fmt.Sprintf("c%d", f.nextID),
			UserID:   u.ID,
			UserName: u.Name,
			Body:     body.Body,
			Votes:    models.CommentVotes{Form: models.VoteFormCounters},
		})
	})
}

func (f *FakeBackend) deleteMovie(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	id := r.PathValue("id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.movies {
		if m.ID == id {
			f.movies = append(f.movies[:i:i], f.movies[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"message": "Movie deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Movie not found"})
}

func (f *FakeBackend) deleteComment(w http.ResponseWriter, r *http.Request, _ FakeUser) {
	cid := r.PathValue("cid")
	f.update(w, r.PathValue("id"), func(m *models.Movie) {
		*m = m.WithoutComment(cid)
	})
}

// update applies fn to the movie with id and answers {movie}.
func (f *FakeBackend) update(w http.ResponseWriter, id string, fn func(*models.Movie)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.movies {
		if f.movies[i].ID == id {
			fn(&f.movies[i])
			writeJSON(w, http.StatusOK, map[string]any{"movie": f.movies[i]})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Movie not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
