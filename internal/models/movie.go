package models

import (
	"strings"
	"time"
)

// TempIDPrefix marks movies inserted optimistically before the backend assigned an id.
const TempIDPrefix = "temp-"

// Movie is one entry of the board.
//
// The JSON encoding mirrors the backend's wire shape so encoded movies normalize back to themselves.
type Movie struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AddedBy     string    `json:"added_by,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpVotes     int       `json:"upVotes"`
	DownVotes   int       `json:"downVotes"`
	TotalVotes  int       `json:"totalVotes"` // may be negative
	Votes       []Vote    `json:"votes"`
	Comments    []Comment `json:"comments"`
}

// IsTemporary reports whether m is an optimistic placeholder.
func (m Movie) IsTemporary() bool { return strings.HasPrefix(m.ID, TempIDPrefix) }

// Clone returns a deep copy of m so callers cannot alias controller state.
func (m Movie) Clone() Movie {
	c := m
	c.Votes = cloneVotes(m.Votes)
	if m.Comments != nil {
		c.Comments = make([]Comment, len(m.Comments))
		for i, cm := range m.Comments {
			c.Comments[i] = cm.Clone()
		}
	}
	return c
}

// VoteBy returns the vote cast by userID, assuming at most one per user.
func (m Movie) VoteBy(userID string) (Vote, bool) {
	if userID == "" {
		return Vote{}, false
	}
	for _, v := range m.Votes {
		if v.UserID == userID {
			return v, true
		}
	}
	return Vote{}, false
}

// CommentBy returns the comment written by userID.
func (m Movie) CommentBy(userID string) (Comment, bool) {
	if userID == "" {
		return Comment{}, false
	}
	for _, c := range m.Comments {
		if c.UserID == userID {
			return c, true
		}
	}
	return Comment{}, false
}

// Comment looks up a comment by id.
func (m Movie) Comment(id string) (Comment, bool) {
	for _, c := range m.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

// WithoutComment returns a copy of m with comment id removed.
func (m Movie) WithoutComment(id string) Movie {
	c := m.Clone()
	kept := make([]Comment, 0, len(c.Comments))
	for _, cm := range c.Comments {
		if cm.ID != id {
			kept = append(kept, cm)
		}
	}
	c.Comments = kept
	return c
}

// Vote is one user's vote on a movie or comment.
type Vote struct {
	UserID string
	Up     bool
}

// VoteForm tags which vote representation the backend sent for a comment.
type VoteForm int

const (
	VoteFormNone     VoteForm = iota // no vote information at all
	VoteFormCounters                 // explicit upVotes/downVotes counters
	VoteFormList                     // a votes array
)

// CommentVotes is the vote weight of a comment, resolved once at normalization.
type CommentVotes struct {
	Form  VoteForm
	Up    int
	Down  int
	Votes []Vote
}

// Weight is the number of votes the comment carries.
func (v CommentVotes) Weight() int {
	switch v.Form {
	case VoteFormCounters:
		if v.Up > MaxCount-v.Down {
			return MaxCount
		}
		return v.Up + v.Down
	case VoteFormList:
		return len(v.Votes)
	default:
		return 0
	}
}

// Comment is a user's comment on a movie.
type Comment struct {
	ID       string
	UserID   string
	UserName string
	Body     string
	Votes    CommentVotes
}

// Deletable reports whether the comment carries zero vote weight.
func (c Comment) Deletable() bool {
	if c.Votes.Form == VoteFormCounters {
		return c.Votes.Up == 0 && c.Votes.Down == 0
	}
	return c.Votes.Weight() == 0
}

// Author returns the display name, or "Unknown".
func (c Comment) Author() string {
	if c.UserName == "" {
		return "Unknown"
	}
	return c.UserName
}

func (c Comment) Clone() Comment {
	cc := c
	cc.Votes.Votes = cloneVotes(c.Votes.Votes)
	return cc
}

func cloneVotes(v []Vote) []Vote {
	if v == nil {
		return nil
	}
	return append(make([]Vote, 0, len(v)), v...)
}
