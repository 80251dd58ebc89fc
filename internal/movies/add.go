package movies

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

const addKey = "add"

// Pending is an optimistic insert awaiting the backend.
type Pending struct {
	CorrelationID string
	TempID        string
	Title         string
	Description   string
}

// AddMovie inserts a movie optimistically and reconciles it with the backend.
func (c *Controller) AddMovie(ctx context.Context, title, description string) (*models.Movie, error) {
	p, err := c.BeginAdd(title, description)
	if err != nil {
		return nil, err
	}
	return c.FinishAdd(ctx, p)
}

// BeginAdd validates the form and prepends a temporary record.
//
// The record is visible through [Controller.Movies] before any request is issued. The add key stays in
// flight until [Controller.FinishAdd] is called with the returned [Pending].
func (c *Controller) BeginAdd(title, description string) (Pending, error) {
	if err := c.requireRole(models.RoleMember); err != nil {
		return Pending{}, err
	}

	title, description = strings.TrimSpace(title), strings.TrimSpace(description)
	if title == "" {
		return Pending{}, shared.NewValidationError("title", "is required")
	}
	if description == "" {
		return Pending{}, shared.NewValidationError("description", "is required")
	}

	if err := c.acquire(addKey); err != nil {
		return Pending{}, err
	}

	p := Pending{
		CorrelationID: c.newID(),
		TempID:        models.TempIDPrefix + c.newID(),
		Title:         title,
		Description:   description,
	}
	temp := models.Movie{
		ID:          p.TempID,
		Title:       title,
		Description: description,
		AddedBy:     c.Session().Identifier,
		CreatedAt:   c.now(),
		Votes:       []models.Vote{},
		Comments:    []models.Comment{},
	}

	c.mu.Lock()
	c.movies = append([]models.Movie{temp}, c.movies...)
	c.pending[p.CorrelationID] = p.TempID
	c.mu.Unlock()

	c.logger.Debug("optimistic insert", "correlation", p.CorrelationID, "temp_id", p.TempID)
	return p, nil
}

// FinishAdd issues the create request for p and commits or aborts the optimistic record.
//
// A nil movie with a nil error means the backend answered without a usable id; the placeholder is removed
// and the board resynchronized.
func (c *Controller) FinishAdd(ctx context.Context, p Pending) (*models.Movie, error) {
	defer c.release(addKey)

	c.mu.Lock()
	_, ok := c.pending[p.CorrelationID]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no pending add %s", shared.ErrInvalidArgument, p.CorrelationID)
	}

	m, err := c.backend.AddMovie(ctx, p.Title, p.Description)
	if err != nil {
		c.abort(p)
		c.notify(addKey, err, "Failed to add movie. Please try again.")
		c.resync(ctx)
		return nil, err
	}
	if m == nil {
		c.abort(p)
		c.logger.Warn("add response carried no movie id", "correlation", p.CorrelationID, "error", shared.ErrReconciliationAmbiguity)
		c.resync(ctx)
		return nil, nil
	}

	c.commit(p, *m)
	return m, nil
}

// commit replaces the placeholder with the backend record and moves its transient state over.
func (c *Controller) commit(p Pending, m models.Movie) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, p.CorrelationID)

	if i := c.index(p.TempID); i >= 0 {
		if j := c.index(m.ID); j >= 0 {
			c.movies[j] = m
			c.movies = append(c.movies[:i:i], c.movies[i+1:]...)
		} else {
			c.movies[i] = m
		}
	} else if !c.replace(m) {
		c.movies = append([]models.Movie{m}, c.movies...)
	}

	if draft, ok := c.drafts[p.TempID]; ok {
		c.drafts[m.ID] = draft
		delete(c.drafts, p.TempID)
	}
	if c.expanded == p.TempID {
		c.expanded = m.ID
	}
	if c.editor.MovieID == p.TempID {
		c.editor.MovieID = m.ID
	}
	c.logger.Debug("committed insert", "correlation", p.CorrelationID, "id", m.ID)
}

func (c *Controller) abort(p Pending) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, p.CorrelationID)
	c.remove(p.TempID)
}

// PendingCount reports optimistic inserts still awaiting the backend.
func (c *Controller) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
