package movies

import (
	"sort"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
)

// SortKey selects the order of the board.
type SortKey string

const (
	SortTotalVotes SortKey = "totalVotes"
	SortUpVotes    SortKey = "upVotes"
	SortDownVotes  SortKey = "downVotes"
	SortCreatedAt  SortKey = "createdAt"
)

// SortKeys lists the keys in display order.
var SortKeys = []SortKey{SortTotalVotes, SortUpVotes, SortDownVotes, SortCreatedAt}

// ParseSortKey maps a name or alias to a key. Unknown names sort by creation time.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "totalvotes", "total", "score":
		return SortTotalVotes
	case "upvotes", "up":
		return SortUpVotes
	case "downvotes", "down":
		return SortDownVotes
	default:
		return SortCreatedAt
	}
}

// Next returns the key after k in [SortKeys].
func (k SortKey) Next() SortKey {
	for i, key := range SortKeys {
		if key == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortKeys[0]
}

func (k SortKey) Label() string {
	switch k {
	case SortTotalVotes:
		return "score"
	case SortUpVotes:
		return "up votes"
	case SortDownVotes:
		return "down votes"
	default:
		return "newest"
	}
}

// Sort returns a sorted copy of movies. The input is not modified and ties keep their order.
func Sort(movies []models.Movie, key SortKey) []models.Movie {
	out := append([]models.Movie(nil), movies...)

	var less func(a, b models.Movie) bool
	switch key {
	case SortTotalVotes:
		less = func(a, b models.Movie) bool { return a.TotalVotes > b.TotalVotes }
	case SortUpVotes:
		less = func(a, b models.Movie) bool { return a.UpVotes > b.UpVotes }
	case SortDownVotes:
		less = func(a, b models.Movie) bool { return a.DownVotes > b.DownVotes }
	default:
		less = func(a, b models.Movie) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
