package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/marquee/internal/models"
)

var (
	_ list.Item = movieItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.movie.IsTemporary() {
		return i.movie.Title + " (saving...)"
	}
	return i.movie.Title
}
func (i movieItem) Description() string {
	desc := fmt.Sprintf("▲ %d  ▼ %d  score %d  • %d comments", i.movie.UpVotes, i.movie.DownVotes, i.movie.TotalVotes, len(i.movie.Comments))
	if i.movie.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.movie.Description)
	}
	return desc
}

func movieItems(ms []models.Movie) []list.Item {
	items := make([]list.Item, len(ms))
	for i, m := range ms {
		items[i] = movieItem{movie: m}
	}
	return items
}
