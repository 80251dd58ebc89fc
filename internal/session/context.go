package session

import (
	"sync"

	"github.com/desertthunder/marquee/internal/models"
)

// Listener observes session changes.
type Listener func(prev, next models.Session)

// Context holds the active session for one application root.
//
// It is created once at start-up and passed to whatever needs the identity.
type Context struct {
	store *Store

	mu        sync.RWMutex
	current   models.Session
	listeners map[int]Listener
	nextID    int
}

// NewContext loads the persisted session from store.
func NewContext(store *Store) *Context {
	return &Context{
		store:     store,
		current:   store.Read(),
		listeners: map[int]Listener{},
	}
}

// Current returns the active session.
func (c *Context) Current() models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Set replaces the active session, persists it and notifies listeners.
//
// The in-memory session changes even when persisting fails; the error is returned.
func (c *Context) Set(rec models.Session) error {
	rec = rec.Sanitize()

	c.mu.Lock()
	prev := c.current
	c.current = rec
	listeners := c.snapshot()
	c.mu.Unlock()

	var err error
	if rec.IsAnonymous() && rec == (models.Session{}) {
		err = c.store.Clear()
	} else {
		err = c.store.Write(rec)
	}

	for _, fn := range listeners {
		fn(prev, rec)
	}
	return err
}

// Clear signs out locally.
func (c *Context) Clear() error {
	return c.Set(models.Session{})
}

// Subscribe registers fn and returns a function removing it.
func (c *Context) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Context) snapshot() []Listener {
	fns := make([]Listener, 0, len(c.listeners))
	for i := 0; i < c.nextID; i++ {
		if fn, ok := c.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
