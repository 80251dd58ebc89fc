package movies

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Vote casts the member's vote and replaces the movie with the backend's copy.
func (c *Controller) Vote(ctx context.Context, movieID string, up bool) error {
	if err := c.requireRole(models.RoleMember); err != nil {
		return err
	}
	if _, err := c.lookup(movieID); err != nil {
		return err
	}

	key := "vote:" + movieID
	if err := c.acquire(key); err != nil {
		return err
	}
	defer c.release(key)

	m, err := c.backend.Vote(ctx, movieID, up)
	if err != nil {
		c.notify(key, err, "Failed to vote. Please try again.")
		return err
	}
	if m == nil {
		c.logger.Warn("vote response carried no movie", "movie", movieID, "error", shared.ErrReconciliationAmbiguity)
		return nil
	}

	c.mu.Lock()
	c.replace(*m)
	c.mu.Unlock()
	return nil
}

// SaveComment submits the member's draft for movieID.
//
// Success closes the editor; failure leaves it open so the draft can be resubmitted.
func (c *Controller) SaveComment(ctx context.Context, movieID string) error {
	if err := c.requireRole(models.RoleMember); err != nil {
		return err
	}
	if _, err := c.lookup(movieID); err != nil {
		return err
	}

	body := strings.TrimSpace(c.Draft(movieID))
	if body == "" {
		return shared.NewValidationError("comment", "is required")
	}

	key := "comment:" + movieID
	if err := c.acquire(key); err != nil {
		return err
	}
	defer c.release(key)

	m, err := c.backend.SaveComment(ctx, movieID, body)
	if err != nil {
		c.notify(key, err, "Failed to save comment. Please try again.")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if m != nil {
		c.replace(*m)
		c.drafts[movieID] = body
	} else {
		c.logger.Warn("comment response carried no movie", "movie", movieID, "error", shared.ErrReconciliationAmbiguity)
	}
	if c.editor.MovieID == movieID {
		c.editor = Editor{}
	}
	return nil
}

// DeleteMovie removes a movie after confirmation.
func (c *Controller) DeleteMovie(ctx context.Context, movieID string) error {
	if err := c.requireRole(models.RoleAdmin); err != nil {
		return err
	}
	m, err := c.lookup(movieID)
	if err != nil {
		return err
	}

	key := "delete:" + movieID
	if err := c.acquire(key); err != nil {
		return err
	}
	defer c.release(key)

	if err := c.confirm(ctx, fmt.Sprintf("Delete %q?", m.Title)); err != nil {
		return err
	}

	status, err := c.backend.DeleteMovie(ctx, movieID)
	if err != nil {
		c.notify(key, err, "Failed to delete movie. Please try again.")
		return err
	}

	if status >= 200 && status < 300 {
		c.mu.Lock()
		c.remove(movieID)
		c.mu.Unlock()
		return nil
	}

	c.logger.Warn("delete returned non-2xx status, reloading", "movie", movieID, "status", status)
	return c.Load(ctx)
}

// DeleteComment removes a comment without votes after confirmation.
//
// The response is reconciled in order: a returned movie replaces the record, otherwise a 2xx status
// removes the comment locally, otherwise the board is reloaded.
func (c *Controller) DeleteComment(ctx context.Context, movieID, commentID string) error {
	if err := c.requireRole(models.RoleAdmin); err != nil {
		return err
	}
	m, err := c.lookup(movieID)
	if err != nil {
		return err
	}

	cm, ok := m.Comment(commentID)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrCommentNotFound, commentID)
	}

	key := "delete:" + movieID + ":" + commentID
	if !cm.Deletable() {
		err := fmt.Errorf("%w: %s", shared.ErrCommentHasVotes, commentID)
		c.notify(key, err, "Comments with votes cannot be deleted.")
		return err
	}

	if err := c.acquire(key); err != nil {
		return err
	}
	defer c.release(key)

	if err := c.confirm(ctx, fmt.Sprintf("Delete comment by %s?", cm.Author())); err != nil {
		return err
	}

	res, err := c.backend.DeleteComment(ctx, movieID, commentID)
	if err != nil {
		c.notify(key, err, "Failed to delete comment. Please try again.")
		return err
	}

	if res.Movie == nil && !res.OK() {
		c.logger.Warn("comment delete returned non-2xx status, reloading", "movie", movieID, "status", res.StatusCode)
		return c.Load(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if res.Movie != nil {
		c.replace(*res.Movie)
	} else if i := c.index(movieID); i >= 0 {
		c.movies[i] = c.movies[i].WithoutComment(commentID)
	}
	if c.editor.CommentID == commentID {
		c.editor = Editor{}
	}
	return nil
}
