package movies

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/session"
	"github.com/desertthunder/marquee/internal/shared"
)

// Opts configures a [Controller]. Backend is required.
type Opts struct {
	Backend   services.Backend
	Session   *session.Context
	Notifier  Notifier
	Confirmer Confirmer
	Logger    *log.Logger
	Now       func() time.Time
	NewID     func() string
}

// Controller is the movie list state for one mounted view.
type Controller struct {
	backend   services.Backend
	session   *session.Context
	notifier  Notifier
	confirmer Confirmer
	logger    *log.Logger
	now       func() time.Time
	newID     func() string

	mu         sync.Mutex
	movies     []models.Movie
	drafts     map[string]string
	expanded   string
	editor     Editor
	pending    map[string]string // correlation id -> temporary movie id
	inflight   map[string]struct{}
	generation uint64
	closed     bool

	unsubscribe func()
	reloads     sync.WaitGroup
}

// New creates a Controller. Missing collaborators fall back to logging notices and declining confirmations.
func New(opts Opts) *Controller {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{Logger: opts.Logger}
	}
	if opts.Confirmer == nil {
		opts.Confirmer = NeverConfirm
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = shared.GenerateID
	}

	return &Controller{
		backend:   opts.Backend,
		session:   opts.Session,
		notifier:  opts.Notifier,
		confirmer: opts.Confirmer,
		logger:    shared.WithLogger(opts.Logger, "component", "movies"),
		now:       opts.Now,
		newID:     opts.NewID,
		drafts:    map[string]string{},
		pending:   map[string]string{},
		inflight:  map[string]struct{}{},
	}
}

// Session returns the active session, or the anonymous one when no context was injected.
func (c *Controller) Session() models.Session {
	if c.session == nil {
		return models.Session{}
	}
	return c.session.Current()
}

// Load fetches the board and replaces the collection.
//
// On failure the collection becomes empty and the error is logged and returned; no notice is shown.
func (c *Controller) Load(ctx context.Context) error {
	gen, ok := c.beginLoad()
	if !ok {
		return nil
	}

	movies, err := c.backend.GetMovies(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		c.logger.Debug("discarding stale load", "generation", gen)
		return nil
	}
	if err != nil {
		c.logger.Error("failed to load movies", "error", err)
		c.replaceAll(nil)
		return fmt.Errorf("failed to load movies: %w", err)
	}

	c.replaceAll(movies)
	c.logger.Debug("loaded movies", "count", len(movies))
	return nil
}

// resync reloads after a failed write. A failed resync keeps the current local state.
func (c *Controller) resync(ctx context.Context) {
	gen, ok := c.beginLoad()
	if !ok {
		return
	}

	movies, err := c.backend.GetMovies(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		return
	}
	if err != nil {
		c.logger.Warn("resync failed, keeping local state", "error", err)
		return
	}
	c.replaceAll(movies)
}

func (c *Controller) beginLoad() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, false
	}
	c.generation++
	return c.generation, true
}

// replaceAll swaps the collection and reseeds drafts. Callers hold c.mu.
func (c *Controller) replaceAll(movies []models.Movie) {
	if movies == nil {
		movies = []models.Movie{}
	}
	c.movies = movies

	userID := c.Session().Identifier
	drafts := make(map[string]string, len(movies))
	for _, m := range movies {
		if cm, ok := m.CommentBy(userID); ok {
			drafts[m.ID] = cm.Body
		}
	}
	if c.editor.Active() {
		if c.index(c.editor.MovieID) >= 0 {
			drafts[c.editor.MovieID] = c.drafts[c.editor.MovieID]
		} else {
			c.editor = Editor{}
		}
	}
	c.drafts = drafts

	if c.expanded != "" && c.index(c.expanded) < 0 {
		c.expanded = ""
	}
}

// Attach reloads whenever the session identity changes until [Controller.Close].
func (c *Controller) Attach(ctx context.Context) {
	if c.session == nil {
		return
	}

	unsubscribe := c.session.Subscribe(func(prev, next models.Session) {
		if prev.Identifier == next.Identifier && prev.Role == next.Role {
			return
		}
		if next.IsAnonymous() {
			c.mu.Lock()
			c.generation++
			c.editor = Editor{}
			c.replaceAll(nil)
			c.mu.Unlock()
			return
		}

		c.reloads.Add(1)
		go func() {
			defer c.reloads.Done()
			_ = c.Load(ctx)
		}()
	})

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
}

// Close unmounts the Controller. Outstanding loads finish without touching state.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Movies returns a copy of the collection in stored order.
func (c *Controller) Movies() []models.Movie {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Movie, len(c.movies))
	for i, m := range c.movies {
		out[i] = m.Clone()
	}
	return out
}

// Sorted returns a copy of the collection ordered by key.
func (c *Controller) Sorted(key SortKey) []models.Movie {
	return Sort(c.Movies(), key)
}

// Movie returns the movie with id.
func (c *Controller) Movie(id string) (models.Movie, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.movies[i].Clone(), true
	}
	return models.Movie{}, false
}

// index returns the position of id or -1. Callers hold c.mu.
func (c *Controller) index(id string) int {
	for i, m := range c.movies {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// replace swaps the record with the same id. Callers hold c.mu.
func (c *Controller) replace(m models.Movie) bool {
	i := c.index(m.ID)
	if i < 0 {
		return false
	}
	c.movies[i] = m
	return true
}

// remove drops the record with id and its transient state. Callers hold c.mu.
func (c *Controller) remove(id string) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.movies = append(c.movies[:i:i], c.movies[i+1:]...)
	delete(c.drafts, id)
	if c.expanded == id {
		c.expanded = ""
	}
	if c.editor.MovieID == id {
		c.editor = Editor{}
	}
}

func (c *Controller) requireRole(role models.Role) error {
	if got := c.Session().Role; got != role {
		return fmt.Errorf("%w: requires %s, signed in as %s", shared.ErrForbidden, role, got)
	}
	return nil
}

// lookup returns a saved movie, rejecting unknown ids and optimistic placeholders.
func (c *Controller) lookup(id string) (models.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return models.Movie{}, fmt.Errorf("%w: %s", shared.ErrMovieNotFound, id)
	}
	if c.movies[i].IsTemporary() {
		return models.Movie{}, fmt.Errorf("%w: %s is still being added", shared.ErrInFlight, id)
	}
	return c.movies[i].Clone(), nil
}

// acquire marks key in flight, failing when it already is.
func (c *Controller) acquire(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[key]; busy {
		return fmt.Errorf("%w: %s", shared.ErrInFlight, key)
	}
	c.inflight[key] = struct{}{}
	return nil
}

func (c *Controller) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

// InFlight reports whether the action key is outstanding.
func (c *Controller) InFlight(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inflight[key]
	return busy
}

func (c *Controller) notify(action string, err error, fallback string) {
	c.logger.Error("action failed", "action", action, "error", err)
	c.notifier.Notify(Notice{Action: action, Message: shared.UserMessage(err, fallback), Err: err})
}

func (c *Controller) confirm(ctx context.Context, prompt string) error {
	ok, err := c.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return shared.ErrCancelled
	}
	return nil
}
