package movies

import (
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// EditorState is the comment editor's mode.
type EditorState int

const (
	EditorIdle EditorState = iota
	EditingExisting
	EditingNew
)

func (s EditorState) String() string {
	switch s {
	case EditingExisting:
		return "editing-existing"
	case EditingNew:
		return "editing-new"
	default:
		return "idle"
	}
}

// Editor is the single comment editor of the list. The zero value is idle.
type Editor struct {
	State     EditorState
	MovieID   string
	CommentID string // set when editing an existing comment
}

func (e Editor) Active() bool { return e.State != EditorIdle }

// Editor returns the editor state.
func (c *Controller) Editor() Editor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editor
}

// StartEdit opens the editor on the member's own comment, pre-filling the draft.
func (c *Controller) StartEdit(movieID string) error {
	if err := c.requireRole(models.RoleMember); err != nil {
		return err
	}
	userID := c.Session().Identifier

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(movieID)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrMovieNotFound, movieID)
	}
	cm, ok := c.movies[i].CommentBy(userID)
	if !ok {
		return fmt.Errorf("%w: no comment of yours on %s", shared.ErrCommentNotFound, movieID)
	}

	c.closeEditor()
	c.editor = Editor{State: EditingExisting, MovieID: movieID, CommentID: cm.ID}
	c.drafts[movieID] = cm.Body
	return nil
}

// StartNew opens the editor for a first comment on movieID.
func (c *Controller) StartNew(movieID string) error {
	if err := c.requireRole(models.RoleMember); err != nil {
		return err
	}
	userID := c.Session().Identifier

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(movieID)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrMovieNotFound, movieID)
	}
	if _, ok := c.movies[i].CommentBy(userID); ok {
		return fmt.Errorf("%w: you already commented on %s", shared.ErrInvalidArgument, movieID)
	}

	c.closeEditor()
	c.editor = Editor{State: EditingNew, MovieID: movieID}
	return nil
}

// Cancel closes the editor, restoring the draft to the last saved body.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeEditor()
}

// closeEditor resets the editor and its draft. Callers hold c.mu.
func (c *Controller) closeEditor() {
	if !c.editor.Active() {
		return
	}

	id := c.editor.MovieID
	saved := ""
	if i := c.index(id); i >= 0 {
		if cm, ok := c.movies[i].CommentBy(c.Session().Identifier); ok {
			saved = cm.Body
		}
	}
	if saved == "" {
		delete(c.drafts, id)
	} else {
		c.drafts[id] = saved
	}
	c.editor = Editor{}
}

// SetDraft stores the draft comment for movieID.
func (c *Controller) SetDraft(movieID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[movieID] = text
}

// Draft returns the draft comment for movieID.
func (c *Controller) Draft(movieID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drafts[movieID]
}

// ToggleComments expands movieID's comments, or collapses them when already expanded.
//
// Collapsing a movie closes an editor open on it.
func (c *Controller) ToggleComments(movieID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	collapsing := c.expanded
	if c.expanded == movieID {
		c.expanded = ""
	} else {
		c.expanded = movieID
	}
	if collapsing != "" && c.editor.MovieID == collapsing && c.expanded != collapsing {
		c.closeEditor()
	}
}

// Expanded returns the movie whose comments are shown.
func (c *Controller) Expanded() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded
}
