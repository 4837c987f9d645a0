package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/parley-im/parley/internal/constants"
	"github.com/parley-im/parley/internal/store"
)

// FilterMembers returns the members whose display name or user ID matches
// the query. Substring matches come first, followed by near matches within
// the edit-distance cutoff. An empty query returns the input unchanged.
func FilterMembers(members []*store.Member, query string) []*store.Member {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return members
	}

	type scored struct {
		member   *store.Member
		distance int
	}

	// Short queries get a proportionally tighter cutoff so a 4-letter
	// query cannot reach an unrelated 4-letter name on edits alone.
	maxDistance := len(query) / 2
	if maxDistance > constants.MemberFilterMaxDistance {
		maxDistance = constants.MemberFilterMaxDistance
	}

	var matches []scored
	for _, m := range members {
		name := strings.ToLower(m.DisplayName)
		id := strings.ToLower(m.UserID)

		if strings.Contains(name, query) || strings.Contains(id, query) {
			matches = append(matches, scored{m, 0})
			continue
		}

		d := levenshtein.ComputeDistance(query, name)
		if id != name {
			if dID := levenshtein.ComputeDistance(query, id); dID < d {
				d = dID
			}
		}
		if d <= maxDistance {
			matches = append(matches, scored{m, d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]*store.Member, len(matches))
	for i, s := range matches {
		result[i] = s.member
	}
	return result
}
