package movies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/session"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/google/go-cmp/cmp"
)

var (
	member = models.Session{Role: models.RoleMember, Name: "Ada", Identifier: "u1"}
	admin  = models.Session{Role: models.RoleAdmin, Name: "Grace", Identifier: "a1"}
	epoch  = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
)

// fakeBackend delegates to per-test functions and records calls.
type fakeBackend struct {
	getMovies     func(context.Context) ([]models.Movie, error)
	addMovie      func(context.Context, string, string) (*models.Movie, error)
	vote          func(context.Context, string, bool) (*models.Movie, error)
	saveComment   func(context.Context, string, string) (*models.Movie, error)
	deleteMovie   func(context.Context, string) (int, error)
	deleteComment func(context.Context, string, string) (services.DeleteResult, error)

	mu    sync.Mutex
	calls []string
}

var _ services.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) Login(context.Context, auth.Credentials) (models.Session, error) {
	return models.Session{}, shared.ErrNotImplemented
}

func (f *fakeBackend) Signup(context.Context, auth.Credentials) (models.Session, error) {
	return models.Session{}, shared.ErrNotImplemented
}

func (f *fakeBackend) Logout(context.Context) error { return nil }

func (f *fakeBackend) GetMovies(ctx context.Context) ([]models.Movie, error) {
	f.record("get")
	if f.getMovies == nil {
		return []models.Movie{}, nil
	}
	return f.getMovies(ctx)
}

func (f *fakeBackend) AddMovie(ctx context.Context, title, description string) (*models.Movie, error) {
	f.record("add")
	return f.addMovie(ctx, title, description)
}

func (f *fakeBackend) Vote(ctx context.Context, id string, up bool) (*models.Movie, error) {
	f.record("vote:" + id)
	return f.vote(ctx, id, up)
}

func (f *fakeBackend) SaveComment(ctx context.Context, id, body string) (*models.Movie, error) {
	f.record("comment:" + id)
	return f.saveComment(ctx, id, body)
}

func (f *fakeBackend) DeleteMovie(ctx context.Context, id string) (int, error) {
	f.record("delete:" + id)
	return f.deleteMovie(ctx, id)
}

func (f *fakeBackend) DeleteComment(ctx context.Context, id, cid string) (services.DeleteResult, error) {
	f.record("delete:" + id + ":" + cid)
	return f.deleteComment(ctx, id, cid)
}

type harness struct {
	ctrl    *Controller
	backend *fakeBackend
	session *session.Context

	mu      sync.Mutex
	notices []Notice
	prompts []string
	accept  bool
}

func (h *harness) Notices() []Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Notice(nil), h.notices...)
}

func newHarness(t *testing.T, sess models.Session, fb *fakeBackend) *harness {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	sc := session.NewContext(session.NewStore(session.NewMemoryKV(), logger))
	if err := sc.Set(sess); err != nil {
		t.Fatalf("failed to set session: %v", err)
	}

	h := &harness{backend: fb, session: sc, accept: true}
	seq := 0
	h.ctrl = New(Opts{
		Backend: fb,
		Session: sc,
		Logger:  logger,
		Notifier: NotifierFunc(func(n Notice) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.notices = append(h.notices, n)
		}),
		Confirmer: ConfirmerFunc(func(_ context.Context, prompt string) (bool, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.prompts = append(h.prompts, prompt)
			return h.accept, nil
		}),
		Now:   func() time.Time { return epoch },
		NewID: func() string { seq++; return fmt.Sprintf("id-%d", seq) },
	})
	t.Cleanup(h.ctrl.Close)
	return h
}

// load seeds the controller through a successful fetch of movies.
func (h *harness) load(t *testing.T, movies ...models.Movie) {
	t.Helper()
	h.backend.getMovies = func(context.Context) ([]models.Movie, error) {
		out := make([]models.Movie, len(movies))
		for i, m := range movies {
			out[i] = m.Clone()
		}
		return out, nil
	}
	if err := h.ctrl.Load(context.Background()); err != nil {
		t.Fatalf("failed to load: %v", err)
	}
}

func movie(id string, total int, created time.Time) models.Movie {
	return models.Movie{ID: id, Title: "Title " + id, Description: "About " + id, CreatedAt: created, TotalVotes: total, Votes: []models.Vote{}, Comments: []models.Comment{}}
}

func ids(movies []models.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.ID
	}
	return out
}

func TestSort(t *testing.T) {
	movies := []models.Movie{
		{ID: "a", TotalVotes: 1, UpVotes: 3, DownVotes: 2, CreatedAt: epoch.Add(-3 * time.Hour)},
		{ID: "b", TotalVotes: 5, UpVotes: 5, DownVotes: 0, CreatedAt: epoch.Add(-1 * time.Hour)},
		{ID: "c", TotalVotes: -2, UpVotes: 1, DownVotes: 3, CreatedAt: epoch},
		{ID: "d", TotalVotes: 1, UpVotes: 1, DownVotes: 0, CreatedAt: epoch.Add(-2 * time.Hour)},
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortTotalVotes, []string{"b", "a", "d", "c"}},
		{SortUpVotes, []string{"b", "a", "c", "d"}},
		{SortDownVotes, []string{"c", "a", "b", "d"}},
		{SortCreatedAt, []string{"c", "b", "d", "a"}},
		{"bogus", []string{"c", "b", "d", "a"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			once := Sort(movies, tt.key)
			if diff := cmp.Diff(tt.want, ids(once)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}

			twice := Sort(once, tt.key)
			if diff := cmp.Diff(ids(once), ids(twice)); diff != "" {
				t.Errorf("sort is not idempotent (-once +twice):\n%s", diff)
			}
		})
	}

	t.Run("Input is not modified", func(t *testing.T) {
		_ = Sort(movies, SortTotalVotes)
		if diff := cmp.Diff([]string{"a", "b", "c", "d"}, ids(movies)); diff != "" {
			t.Errorf("input reordered (-want +got):\n%s", diff)
		}
	})

	t.Run("ParseSortKey", func(t *testing.T) {
		cases := map[string]SortKey{
			"totalVotes": SortTotalVotes, "score": SortTotalVotes,
			"up": SortUpVotes, "UpVotes": SortUpVotes,
			"down": SortDownVotes, "newest": SortCreatedAt,
			"createdAt": SortCreatedAt, "": SortCreatedAt,
		}
		for in, want := range cases {
			if got := ParseSortKey(in); got != want {
				t.Errorf("ParseSortKey(%q) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("Next cycles through keys", func(t *testing.T) {
		k := SortTotalVotes
		for range SortKeys {
			k = k.Next()
		}
		if k != SortTotalVotes {
			t.Errorf("expected cycle back to %q, got %q", SortTotalVotes, k)
		}
	})

	t.Run("Controller Sorted leaves stored order", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movies...)

		_ = h.ctrl.Sorted(SortTotalVotes)
		if diff := cmp.Diff([]string{"a", "b", "c", "d"}, ids(h.ctrl.Movies())); diff != "" {
			t.Errorf("stored order changed (-want +got):\n%s", diff)
		}
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Seeds drafts from own comments", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		m := movie("m1", 0, epoch)
		m.Comments = []models.Comment{{ID: "c1", UserID: "u1", Body: "Mine"}, {ID: "c2", UserID: "u2", Body: "Theirs"}}
		h.load(t, m, movie("m2", 0, epoch))

		if got := h.ctrl.Draft("m1"); got != "Mine" {
			t.Errorf("expected draft 'Mine', got %q", got)
		}
		if got := h.ctrl.Draft("m2"); got != "" {
			t.Errorf("expected empty draft, got %q", got)
		}
	})

	t.Run("Failure empties the collection silently", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))

		h.backend.getMovies = func(context.Context) ([]models.Movie, error) {
			return nil, &shared.NetworkError{Method: http.MethodGet, Path: "/c/getMovies", Err: errors.New("refused")}
		}
		err := h.ctrl.Load(ctx)
		if !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected network error, got %v", err)
		}
		if got := h.ctrl.Movies(); len(got) != 0 {
			t.Errorf("expected empty collection, got %v", ids(got))
		}
		if len(h.Notices()) != 0 {
			t.Errorf("expected no notices, got %v", h.Notices())
		}
	})

	t.Run("Result discarded after Close", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		started, release := make(chan struct{}), make(chan struct{})
		h.backend.getMovies = func(context.Context) ([]models.Movie, error) {
			close(started)
			<-release
			return []models.Movie{movie("m1", 0, epoch)}, nil
		}

		done := make(chan error)
		go func() { done <- h.ctrl.Load(ctx) }()
		<-started
		h.ctrl.Close()
		close(release)

		if err := <-done; err != nil {
			t.Errorf("expected discarded load to return nil, got %v", err)
		}
		if got := h.ctrl.Movies(); len(got) != 0 {
			t.Errorf("expected no state change after close, got %v", ids(got))
		}
		if err := h.ctrl.Load(ctx); err != nil || h.backend.count("get") != 1 {
			t.Errorf("expected closed controller to skip loading, got %v", err)
		}
	})

	t.Run("Newer load wins", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		started, release := make(chan struct{}), make(chan struct{})
		calls := 0
		var mu sync.Mutex
		h.backend.getMovies = func(context.Context) ([]models.Movie, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				close(started)
				<-release
				return []models.Movie{movie("old", 0, epoch)}, nil
			}
			return []models.Movie{movie("new", 0, epoch)}, nil
		}

		done := make(chan error)
		go func() { done <- h.ctrl.Load(ctx) }()
		<-started
		if err := h.ctrl.Load(ctx); err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		close(release)
		<-done

		if diff := cmp.Diff([]string{"new"}, ids(h.ctrl.Movies())); diff != "" {
			t.Errorf("stale load applied (-want +got):\n%s", diff)
		}
	})
}

func TestAddMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("Optimistic record visible before the backend answers", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t)

		started, release := make(chan struct{}), make(chan struct{})
		h.backend.addMovie = func(_ context.Context, title, description string) (*models.Movie, error) {
			close(started)
			<-release
			return &models.Movie{ID: "m1", Title: title, Description: description, Votes: []models.Vote{}, Comments: []models.Comment{}}, nil
		}

		done := make(chan error)
		go func() {
			_, err := h.ctrl.AddMovie(ctx, "Inception", "A heist in dreams")
			done <- err
		}()
		<-started

		pending := h.ctrl.Movies()
		if len(pending) != 1 {
			t.Fatalf("expected one optimistic record, got %d", len(pending))
		}
		temp := pending[0]
		if !temp.IsTemporary() || temp.Title != "Inception" || temp.Description != "A heist in dreams" {
			t.Errorf("unexpected optimistic record: %+v", temp)
		}
		if temp.UpVotes != 0 || temp.DownVotes != 0 || temp.TotalVotes != 0 || len(temp.Comments) != 0 {
			t.Errorf("expected zero counts, got %+v", temp)
		}
		if temp.AddedBy != "u1" || !temp.CreatedAt.Equal(epoch) {
			t.Errorf("unexpected author or time: %+v", temp)
		}
		if h.ctrl.PendingCount() != 1 || !h.ctrl.InFlight("add") {
			t.Error("expected add to be pending")
		}

		close(release)
		if err := <-done; err != nil {
			t.Fatalf("failed to add: %v", err)
		}

		committed := h.ctrl.Movies()
		if len(committed) != 1 || committed[0].ID != "m1" {
			t.Fatalf("expected committed m1, got %v", ids(committed))
		}
		if committed[0].Title != "Inception" || committed[0].Description != "A heist in dreams" {
			t.Errorf("unexpected committed record: %+v", committed[0])
		}
		if h.ctrl.PendingCount() != 0 || h.ctrl.InFlight("add") {
			t.Error("expected pending ledger to be empty")
		}
	})

	t.Run("Commit migrates drafts and keeps position", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m0", 0, epoch))
		h.backend.addMovie = func(_ context.Context, title, description string) (*models.Movie, error) {
			return &models.Movie{ID: "m1", Title: title, Description: description}, nil
		}

		p, err := h.ctrl.BeginAdd("  Inception ", "A heist in dreams")
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		if p.Title != "Inception" {
			t.Errorf("expected trimmed title, got %q", p.Title)
		}
		h.ctrl.SetDraft(p.TempID, "first!")
		h.ctrl.ToggleComments(p.TempID)

		m, err := h.ctrl.FinishAdd(ctx, p)
		if err != nil || m == nil {
			t.Fatalf("failed to finish: %v", err)
		}
		if diff := cmp.Diff([]string{"m1", "m0"}, ids(h.ctrl.Movies())); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
		if h.ctrl.Draft("m1") != "first!" || h.ctrl.Draft(p.TempID) != "" {
			t.Error("expected draft to move to the committed id")
		}
		if h.ctrl.Expanded() != "m1" {
			t.Errorf("expected expanded to follow the commit, got %q", h.ctrl.Expanded())
		}
	})

	t.Run("Failure restores length and resyncs", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m0", 0, epoch), movie("m9", 0, epoch))
		before := len(h.ctrl.Movies())

		h.backend.addMovie = func(context.Context, string, string) (*models.Movie, error) {
			return nil, &shared.HTTPError{Method: http.MethodPost, Path: "/u/addMovie", StatusCode: http.StatusBadRequest, Message: "Title taken"}
		}

		if _, err := h.ctrl.AddMovie(ctx, "Inception", "A heist in dreams"); !errors.Is(err, shared.ErrHTTPStatus) {
			t.Fatalf("expected HTTP error, got %v", err)
		}
		got := h.ctrl.Movies()
		if len(got) != before {
			t.Errorf("expected %d movies, got %d", before, len(got))
		}
		for _, m := range got {
			if m.IsTemporary() {
				t.Errorf("temporary record left behind: %+v", m)
			}
		}
		if h.backend.count("get") != 2 {
			t.Errorf("expected a resync, calls: %v", h.backend.Calls())
		}
		notices := h.Notices()
		if len(notices) != 1 || notices[0].Message != "Title taken" || notices[0].Action != "add" {
			t.Errorf("unexpected notices: %+v", notices)
		}
	})

	t.Run("Failed resync keeps rolled back state", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m0", 0, epoch))

		h.backend.getMovies = func(context.Context) ([]models.Movie, error) { return nil, errors.New("offline") }
		h.backend.addMovie = func(context.Context, string, string) (*models.Movie, error) {
			return nil, &shared.NetworkError{Method: http.MethodPost, Path: "/u/addMovie", Err: errors.New("offline")}
		}

		_, _ = h.ctrl.AddMovie(ctx, "Inception", "A heist in dreams")
		if diff := cmp.Diff([]string{"m0"}, ids(h.ctrl.Movies())); diff != "" {
			t.Errorf("state mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Response without id removes the placeholder", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t)
		h.backend.addMovie = func(context.Context, string, string) (*models.Movie, error) { return nil, nil }

		m, err := h.ctrl.AddMovie(ctx, "Inception", "A heist in dreams")
		if m != nil || err != nil {
			t.Errorf("expected nil movie and error, got %v, %v", m, err)
		}
		if len(h.ctrl.Movies()) != 0 || len(h.Notices()) != 0 {
			t.Errorf("expected silent rollback, got %v, %v", ids(h.ctrl.Movies()), h.Notices())
		}
	})

	t.Run("Validation never reaches the backend", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		for _, tc := range [][2]string{{"", "desc"}, {"title", "   "}} {
			if _, err := h.ctrl.AddMovie(ctx, tc[0], tc[1]); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected validation error for %q, got %v", tc, err)
			}
		}
		if len(h.backend.Calls()) != 0 || len(h.ctrl.Movies()) != 0 {
			t.Error("expected no request and no insert")
		}
	})

	t.Run("Admins cannot add", func(t *testing.T) {
		h := newHarness(t, admin, &fakeBackend{})
		if _, err := h.ctrl.BeginAdd("Inception", "A heist in dreams"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected forbidden, got %v", err)
		}
	})

	t.Run("Double submit is rejected", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		p, err := h.ctrl.BeginAdd("Inception", "A heist in dreams")
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		if _, err := h.ctrl.BeginAdd("Inception", "A heist in dreams"); !errors.Is(err, shared.ErrInFlight) {
			t.Errorf("expected in-flight error, got %v", err)
		}
		if len(h.ctrl.Movies()) != 1 {
			t.Errorf("expected a single optimistic record, got %d", len(h.ctrl.Movies()))
		}

		h.backend.addMovie = func(context.Context, string, string) (*models.Movie, error) {
			return &models.Movie{ID: "m1"}, nil
		}
		if _, err := h.ctrl.FinishAdd(ctx, p); err != nil {
			t.Fatalf("failed to finish: %v", err)
		}
		if _, err := h.ctrl.FinishAdd(ctx, p); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected unknown pending add, got %v", err)
		}
		if h.backend.count("add") != 1 {
			t.Errorf("expected one request, got %v", h.backend.Calls())
		}
	})
}

func TestVote(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces only the voted record", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		target := movie("m1", 3, epoch)
		other := movie("m2", 7, epoch)
		h.load(t, target, other)

		h.backend.vote = func(_ context.Context, id string, up bool) (*models.Movie, error) {
			if !up {
				t.Error("expected an up vote")
			}
			updated := target.Clone()
			updated.TotalVotes = 4
			updated.Votes = []models.Vote{{UserID: "u1", Up: true}}
			return &updated, nil
		}

		if err := h.ctrl.Vote(ctx, "m1", true); err != nil {
			t.Fatalf("failed to vote: %v", err)
		}
		got := h.ctrl.Movies()
		if got[0].TotalVotes != 4 {
			t.Errorf("expected totalVotes 4, got %d", got[0].TotalVotes)
		}
		if diff := cmp.Diff(other, got[1]); diff != "" {
			t.Errorf("other record changed (-want +got):\n%s", diff)
		}
	})

	t.Run("Response without movie leaves state", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m1", 3, epoch))
		h.backend.vote = func(context.Context, string, bool) (*models.Movie, error) { return nil, nil }

		if err := h.ctrl.Vote(ctx, "m1", false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if h.ctrl.Movies()[0].TotalVotes != 3 {
			t.Error("expected no mutation")
		}
	})

	t.Run("Failure notifies without mutation", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m1", 3, epoch))
		h.backend.vote = func(context.Context, string, bool) (*models.Movie, error) {
			return nil, &shared.NetworkError{Method: http.MethodPost, Path: "/u/m1/vote", Err: errors.New("reset")}
		}

		if err := h.ctrl.Vote(ctx, "m1", true); !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected network error, got %v", err)
		}
		if h.ctrl.Movies()[0].TotalVotes != 3 {
			t.Error("expected no mutation")
		}
		if n := h.Notices(); len(n) != 1 || n[0].Message != "Failed to vote. Please try again." {
			t.Errorf("unexpected notices: %+v", n)
		}
	})

	t.Run("Guards", func(t *testing.T) {
		h := newHarness(t, admin, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))
		if err := h.ctrl.Vote(ctx, "m1", true); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected forbidden, got %v", err)
		}

		h = newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))
		if err := h.ctrl.Vote(ctx, "nope", true); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected not found, got %v", err)
		}

		p, _ := h.ctrl.BeginAdd("Inception", "A heist in dreams")
		if err := h.ctrl.Vote(ctx, p.TempID, true); !errors.Is(err, shared.ErrInFlight) {
			t.Errorf("expected in-flight for placeholder, got %v", err)
		}
		if len(h.backend.Calls()) != 1 {
			t.Errorf("expected only the load request, got %v", h.backend.Calls())
		}
	})

	t.Run("Double submit is rejected", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))

		started, release := make(chan struct{}), make(chan struct{})
		h.backend.vote = func(context.Context, string, bool) (*models.Movie, error) {
			close(started)
			<-release
			return nil, nil
		}

		done := make(chan error)
		go func() { done <- h.ctrl.Vote(ctx, "m1", true) }()
		<-started

		if err := h.ctrl.Vote(ctx, "m1", false); !errors.Is(err, shared.ErrInFlight) {
			t.Errorf("expected in-flight error, got %v", err)
		}
		close(release)
		<-done
		if h.backend.count("vote:m1") != 1 {
			t.Errorf("expected one vote request, got %v", h.backend.Calls())
		}
	})
}

func TestSaveComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success closes the editor", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))
		h.backend.saveComment = func(_ context.Context, id, body string) (*models.Movie, error) {
			m := movie(id, 0, epoch)
			m.Comments = []models.Comment{{ID: "c1", UserID: "u1", Body: body}}
			return &m, nil
		}

		if err := h.ctrl.StartNew("m1"); err != nil {
			t.Fatalf("failed to start: %v", err)
		}
		h.ctrl.SetDraft("m1", "  Loved it  ")
		if err := h.ctrl.SaveComment(ctx, "m1"); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		if h.ctrl.Editor().Active() {
			t.Error("expected editor to close")
		}
		if h.ctrl.Draft("m1") != "Loved it" {
			t.Errorf("expected saved body as draft, got %q", h.ctrl.Draft("m1"))
		}
		if c, ok := h.ctrl.Movies()[0].CommentBy("u1"); !ok || c.Body != "Loved it" {
			t.Errorf("expected comment in record, got %+v", h.ctrl.Movies()[0].Comments)
		}
	})

	t.Run("Failure keeps the editor open", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))
		h.backend.saveComment = func(context.Context, string, string) (*models.Movie, error) {
			return nil, &shared.HTTPError{StatusCode: http.StatusInternalServerError}
		}

		_ = h.ctrl.StartNew("m1")
		h.ctrl.SetDraft("m1", "Loved it")
		if err := h.ctrl.SaveComment(ctx, "m1"); err == nil {
			t.Fatal("expected error")
		}
		if e := h.ctrl.Editor(); e.State != EditingNew || e.MovieID != "m1" {
			t.Errorf("expected editor to stay open, got %+v", e)
		}
		if h.ctrl.Draft("m1") != "Loved it" {
			t.Error("expected draft to survive")
		}
		if len(h.Notices()) != 1 {
			t.Errorf("expected one notice, got %+v", h.Notices())
		}
	})

	t.Run("Empty draft", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))
		h.ctrl.SetDraft("m1", "   ")
		if err := h.ctrl.SaveComment(ctx, "m1"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestDeleteMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("Declined confirmation issues no request", func(t *testing.T) {
		h := newHarness(t, admin, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))
		h.accept = false

		if err := h.ctrl.DeleteMovie(ctx, "m1"); !errors.Is(err, shared.ErrCancelled) {
			t.Errorf("expected cancelled, got %v", err)
		}
		if h.backend.count("delete:m1") != 0 || len(h.ctrl.Movies()) != 1 {
			t.Error("expected nothing to change")
		}
		if len(h.prompts) != 1 || h.prompts[0] != `Delete "Title m1"?` {
			t.Errorf("unexpected prompts: %v", h.prompts)
		}
	})

	t.Run("2xx removes locally", func(t *testing.T) {
		h := newHarness(t, admin, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch), movie("m2", 0, epoch))
		h.backend.deleteMovie = func(context.Context, string) (int, error) { return http.StatusOK, nil }

		if err := h.ctrl.DeleteMovie(ctx, "m1"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if diff := cmp.Diff([]string{"m2"}, ids(h.ctrl.Movies())); diff != "" {
			t.Errorf("state mismatch (-want +got):\n%s", diff)
		}
		if h.backend.count("get") != 1 {
			t.Error("expected no reload")
		}
	})

	t.Run("Non-2xx without error reloads", func(t *testing.T) {
		h := newHarness(t, admin, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))
		h.backend.deleteMovie = func(context.Context, string) (int, error) { return http.StatusFound, nil }

		if err := h.ctrl.DeleteMovie(ctx, "m1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if h.backend.count("get") != 2 {
			t.Errorf("expected a reload, got %v", h.backend.Calls())
		}
	})

	t.Run("Error notifies and keeps state", func(t *testing.T) {
		h := newHarness(t, admin, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))
		h.backend.deleteMovie = func(context.Context, string) (int, error) {
			return http.StatusForbidden, &shared.HTTPError{StatusCode: http.StatusForbidden, Message: "Forbidden"}
		}

		if err := h.ctrl.DeleteMovie(ctx, "m1"); err == nil {
			t.Fatal("expected error")
		}
		if len(h.ctrl.Movies()) != 1 {
			t.Error("expected state unchanged")
		}
		if n := h.Notices(); len(n) != 1 || n[0].Message != "Forbidden" {
			t.Errorf("unexpected notices: %+v", n)
		}
	})

	t.Run("Guards", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, movie("m1", 0, epoch))
		if err := h.ctrl.DeleteMovie(ctx, "m1"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected forbidden, got %v", err)
		}

		h = newHarness(t, admin, &fakeBackend{})
		if err := h.ctrl.DeleteMovie(ctx, "m1"); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()

	withComments := func() models.Movie {
		m := movie("m1", 0, epoch)
		m.Comments = []models.Comment{
			{ID: "c1", UserID: "u1", Body: "ok", Votes: models.CommentVotes{Form: models.VoteFormCounters}},
			{ID: "c2", UserID: "u2", Body: "liked", Votes: models.CommentVotes{Form: models.VoteFormCounters, Up: 1}},
			{ID: "c3", UserID: "u3", Body: "listed", Votes: models.CommentVotes{Form: models.VoteFormList, Votes: []models.Vote{{UserID: "u1"}}}},
		}
		return m
	}

	t.Run("Comments with votes are refused", func(t *testing.T) {
		for _, cid := range []string{"c2", "c3"} {
			h := newHarness(t, admin, &fakeBackend{})
			h.load(t, withComments())

			if err := h.ctrl.DeleteComment(ctx, "m1", cid); !errors.Is(err, shared.ErrCommentHasVotes) {
				t.Errorf("expected has-votes error for %s, got %v", cid, err)
			}
			if len(h.Notices()) != 1 || len(h.prompts) != 0 || len(h.backend.Calls()) != 1 {
				t.Errorf("expected a notice and no request for %s", cid)
			}
		}
	})

	t.Run("Returned movie replaces the record", func(t *testing.T) {
		h := newHarness(t, admin, &fakeBackend{})
		h.load(t, withComments())
		h.backend.deleteComment = func(context.Context, string, string) (services.DeleteResult, error) {
			m := movie("m1", 9, epoch)
			return services.DeleteResult{StatusCode: http.StatusOK, Movie: &m}, nil
		}

		h.ctrl.mu.Lock()
		h.ctrl.editor = Editor{State: EditingExisting, MovieID: "m1", CommentID: "c1"}
		h.ctrl.mu.Unlock()

		if err := h.ctrl.DeleteComment(ctx, "m1", "c1"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		got := h.ctrl.Movies()[0]
		if got.TotalVotes != 9 || len(got.Comments) != 0 {
			t.Errorf("expected the returned record, got %+v", got)
		}
		if h.ctrl.Editor().Active() {
			t.Errorf("expected editor on the deleted comment to close, got %+v", h.ctrl.Editor())
		}
	})

	t.Run("2xx without movie removes locally", func(t *testing.T) {
		h := newHarness(t, admin, &fakeBackend{})
		h.load(t, withComments())
		h.backend.deleteComment = func(context.Context, string, string) (services.DeleteResult, error) {
			return services.DeleteResult{StatusCode: http.StatusNoContent}, nil
		}

		if err := h.ctrl.DeleteComment(ctx, "m1", "c1"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, ok := h.ctrl.Movies()[0].Comment("c1"); ok {
			t.Error("expected comment to be removed")
		}
		if len(h.ctrl.Movies()[0].Comments) != 2 {
			t.Error("expected other comments to stay")
		}
	})

	t.Run("Otherwise reloads", func(t *testing.T) {
		h := newHarness(t, admin, &fakeBackend{})
		h.load(t, withComments())
		h.backend.deleteComment = func(context.Context, string, string) (services.DeleteResult, error) {
			return services.DeleteResult{StatusCode: http.StatusFound}, nil
		}

		if err := h.ctrl.DeleteComment(ctx, "m1", "c1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if h.backend.count("get") != 2 {
			t.Errorf("expected a reload, got %v", h.backend.Calls())
		}
	})

	t.Run("Unknown comment", func(t *testing.T) {
		h := newHarness(t, admin, &fakeBackend{})
		h.load(t, withComments())
		if err := h.ctrl.DeleteComment(ctx, "m1", "zz"); !errors.Is(err, shared.ErrCommentNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestEditor(t *testing.T) {
	own := movie("m1", 0, epoch)
	own.Comments = []models.Comment{{ID: "c1", UserID: "u1", Body: "Saved"}}
	fresh := movie("m2", 0, epoch)

	t.Run("At most one editor is active", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, own, fresh)

		if err := h.ctrl.StartEdit("m1"); err != nil {
			t.Fatalf("failed to start edit: %v", err)
		}
		h.ctrl.SetDraft("m1", "Unsaved")
		if err := h.ctrl.StartNew("m2"); err != nil {
			t.Fatalf("failed to start new: %v", err)
		}

		e := h.ctrl.Editor()
		if e.State != EditingNew || e.MovieID != "m2" {
			t.Errorf("expected a single editor on m2, got %+v", e)
		}
		if h.ctrl.Draft("m1") != "Saved" {
			t.Errorf("expected the replaced editor's draft to be restored, got %q", h.ctrl.Draft("m1"))
		}
	})

	t.Run("StartEdit pre-fills and Cancel restores", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, own)

		h.ctrl.SetDraft("m1", "stale")
		if err := h.ctrl.StartEdit("m1"); err != nil {
			t.Fatalf("failed to start edit: %v", err)
		}
		if e := h.ctrl.Editor(); e.State != EditingExisting || e.CommentID != "c1" {
			t.Errorf("unexpected editor: %+v", e)
		}
		if h.ctrl.Draft("m1") != "Saved" {
			t.Errorf("expected pre-filled draft, got %q", h.ctrl.Draft("m1"))
		}

		h.ctrl.SetDraft("m1", "Changed my mind")
		h.ctrl.Cancel()
		if h.ctrl.Editor().Active() || h.ctrl.Draft("m1") != "Saved" {
			t.Errorf("expected idle editor and restored draft, got %+v %q", h.ctrl.Editor(), h.ctrl.Draft("m1"))
		}
	})

	t.Run("Cancel on a new comment empties the draft", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, fresh)
		_ = h.ctrl.StartNew("m2")
		h.ctrl.SetDraft("m2", "half written")
		h.ctrl.Cancel()
		if h.ctrl.Draft("m2") != "" {
			t.Errorf("expected empty draft, got %q", h.ctrl.Draft("m2"))
		}
	})

	t.Run("Transitions are guarded", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, own, fresh)

		if err := h.ctrl.StartNew("m1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected StartNew to be refused with an own comment, got %v", err)
		}
		if err := h.ctrl.StartEdit("m2"); !errors.Is(err, shared.ErrCommentNotFound) {
			t.Errorf("expected StartEdit to be refused without an own comment, got %v", err)
		}
		if h.ctrl.Editor().Active() {
			t.Error("expected editor to stay idle")
		}
	})

	t.Run("Collapsing closes the editor", func(t *testing.T) {
		h := newHarness(t, member, &fakeBackend{})
		h.load(t, own, fresh)

		h.ctrl.ToggleComments("m1")
		_ = h.ctrl.StartEdit("m1")
		h.ctrl.ToggleComments("m2")

		if h.ctrl.Expanded() != "m2" || h.ctrl.Editor().Active() {
			t.Errorf("expected m2 expanded with no editor, got %q %+v", h.ctrl.Expanded(), h.ctrl.Editor())
		}

		h.ctrl.ToggleComments("m2")
		if h.ctrl.Expanded() != "" {
			t.Errorf("expected collapse, got %q", h.ctrl.Expanded())
		}
	})
}

func TestAttach(t *testing.T) {
	h := newHarness(t, member, &fakeBackend{})
	h.load(t, movie("m1", 0, epoch))
	h.ctrl.Attach(context.Background())

	t.Run("Same identity does not reload", func(t *testing.T) {
		_ = h.session.Set(member)
		h.ctrl.reloads.Wait()
		if h.backend.count("get") != 1 {
			t.Errorf("unexpected reload: %v", h.backend.Calls())
		}
	})

	t.Run("Identity change reloads", func(t *testing.T) {
		_ = h.session.Set(models.Session{Role: models.RoleMember, Name: "Lin", Identifier: "u2"})
		h.ctrl.reloads.Wait()
		if h.backend.count("get") != 2 {
			t.Errorf("expected reload, got %v", h.backend.Calls())
		}
	})

	t.Run("Sign out clears without a request", func(t *testing.T) {
		h.load(t, movie("m1", 0, epoch))
		calls := h.backend.count("get")

		_ = h.session.Clear()
		h.ctrl.reloads.Wait()
		if len(h.ctrl.Movies()) != 0 || h.backend.count("get") != calls {
			t.Errorf("expected cleared state and no request")
		}
	})

	t.Run("Close unsubscribes", func(t *testing.T) {
		h.ctrl.Close()
		calls := h.backend.count("get")
		_ = h.session.Set(member)
		h.ctrl.reloads.Wait()
		if h.backend.count("get") != calls {
			t.Error("expected no reload after close")
		}
	})
}
