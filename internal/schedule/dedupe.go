package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/aknowles/ssbball/internal/model"
)

// DedupeOptions controls the dedup key scope.
type DedupeOptions struct {
	// KeyOnGrade includes the team grade in the dedup key. It must be on
	// whenever a run merges multiple grades; otherwise same-time games
	// against the same opponent in different grades collapse into one.
	KeyOnGrade bool
}

// Dedupe collapses duplicate game records collected from overlapping
// fetches and leagues. Practices never pass through here.
//
// The input is stable-sorted so league games precede tournament games
// (secondarily by start time); the first record inserted for a key wins,
// so the league feed stays authoritative when both carry the same
// fixture. Two genuinely distinct games at the identical timestamp
// against normalized-identical opponents in the same grade are
// indistinguishable and collapse to one; that is an accepted
// approximation of the key, not a bug in the walk.
func Dedupe(games []model.Event, opts DedupeOptions) []model.Event {
	sorted := make([]model.Event, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Tournament != sorted[j].Tournament {
			return !sorted[i].Tournament
		}
		return sorted[i].When.Before(sorted[j].When)
	})

	seen := make(map[string]struct{}, len(sorted))
	unique := make([]model.Event, 0, len(sorted))
	for _, g := range sorted {
		key := dedupeKey(g, opts)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, g)
	}

	// Output order is deterministic and independent of input order.
	sort.Slice(unique, func(i, j int) bool {
		if !unique[i].When.Equal(unique[j].When) {
			return unique[i].When.Before(unique[j].When)
		}
		if unique[i].Opponent != unique[j].Opponent {
			return unique[i].Opponent < unique[j].Opponent
		}
		return unique[i].Team.Slug() < unique[j].Team.Slug()
	})
	return unique
}

func dedupeKey(g model.Event, opts DedupeOptions) string {
	parts := []string{
		g.When.Format(time.RFC3339),
		Normalize(g.Opponent),
	}
	if opts.KeyOnGrade {
		parts = append(parts, g.Team.Grade)
	}
	return strings.Join(parts, "|")
}
