package models

import (
	"encoding/json"
	"math"
	"time"
)

// MaxCount bounds every normalized counter.
const MaxCount = math.MaxInt32

// NormalizeMovie builds a [Movie] from a decoded JSON value.
//
// It never fails: counters that are missing, non-numeric or negative become 0 (totalVotes keeps its sign),
// magnitudes are capped at [MaxCount], sequences that are not arrays become empty, and a missing creation
// time becomes now.
func NormalizeMovie(raw any, now time.Time) Movie {
	obj := asObject(raw)

	m := Movie{
		ID:          firstString(obj, "_id", "id"),
		Title:       stringField(obj, "title"),
		Description: stringField(obj, "description"),
		AddedBy:     refID(obj["added_by"]),
		CreatedAt:   createdAt(obj, now),
		UpVotes:     count(obj["upVotes"]),
		DownVotes:   count(obj["downVotes"]),
		TotalVotes:  signed(obj["totalVotes"]),
		Votes:       []Vote{},
		Comments:    []Comment{},
	}

	for _, v := range asArray(obj["votes"]) {
		m.Votes = append(m.Votes, normalizeVote(v))
	}
	for _, c := range asArray(obj["comments"]) {
		m.Comments = append(m.Comments, normalizeComment(c))
	}

	return m
}

// NormalizeMovies normalizes every element of a JSON array. Anything else yields an empty slice.
func NormalizeMovies(raw any, now time.Time) []Movie {
	items := asArray(raw)
	movies := make([]Movie, 0, len(items))
	for _, item := range items {
		movies = append(movies, NormalizeMovie(item, now))
	}
	return movies
}

func normalizeVote(raw any) Vote {
	obj := asObject(raw)
	v := Vote{UserID: refID(obj["user_id"])}

	if up, ok := obj["voteType"].(bool); ok {
		v.Up = up
		return v
	}
	switch firstString(obj, "direction", "type") {
	case "up":
		v.Up = true
	}
	return v
}

func normalizeComment(raw any) Comment {
	obj := asObject(raw)
	c := Comment{
		ID:     firstString(obj, "_id", "id"),
		UserID: refID(obj["user_id"]),
		Body:   stringField(obj, "body"),
	}

	if user := asObject(obj["user_id"]); user != nil {
		c.UserName = stringField(user, "name")
	}
	if c.UserName == "" {
		c.UserName = stringField(obj, "userName")
	}

	_, hasUp := obj["upVotes"].(float64)
	_, hasDown := obj["downVotes"].(float64)
	votes, hasList := obj["votes"].([]any)

	switch {
	case hasUp || hasDown:
		c.Votes = CommentVotes{Form: VoteFormCounters, Up: count(obj["upVotes"]), Down: count(obj["downVotes"])}
	case hasList:
		c.Votes = CommentVotes{Form: VoteFormList, Votes: make([]Vote, 0, len(votes))}
		for _, v := range votes {
			c.Votes.Votes = append(c.Votes.Votes, normalizeVote(v))
		}
	}

	return c
}

func createdAt(obj map[string]any, now time.Time) time.Time {
	raw, ok := obj["createdAt"]
	if !ok || raw == nil {
		raw, ok = obj["created_at"]
	}
	if !ok || raw == nil {
		return now
	}

	switch v := raw.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	case float64:
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Time{}
}

func asObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

func asArray(v any) []any {
	arr, _ := v.([]any)
	return arr
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(obj, k); s != "" {
			return s
		}
	}
	return ""
}

// refID reads a reference that is either a bare id string or a populated {_id: ...} object.
func refID(v any) string {
	switch ref := v.(type) {
	case string:
		return ref
	case map[string]any:
		return firstString(ref, "_id", "id")
	default:
		return ""
	}
}

func count(v any) int {
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) || n < 0 {
		return 0
	}
	return int(min(n, MaxCount))
}

func signed(v any) int {
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) {
		return 0
	}
	return int(max(min(n, MaxCount), -MaxCount))
}

// wireUser is the populated user reference the backend embeds in comments.
type wireUser struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (v Vote) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UserID   string `json:"user_id"`
		VoteType bool   `json:"voteType"`
	}{v.UserID, v.Up})
}

func (c Comment) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"_id":     c.ID,
		"user_id": wireUser{ID: c.UserID, Name: c.UserName},
		"body":    c.Body,
	}
	switch c.Votes.Form {
	case VoteFormCounters:
		out["upVotes"] = c.Votes.Up
		out["downVotes"] = c.Votes.Down
	case VoteFormList:
		votes := c.Votes.Votes
		if votes == nil {
			votes = []Vote{}
		}
		out["votes"] = votes
	}
	return json.Marshal(out)
}
