package schedule

import (
	"sort"
	"strings"

	"github.com/aknowles/ssbball/internal/model"
	"github.com/aknowles/ssbball/internal/snapshot"
)

// EventKey derives the stable identity an event is tracked under across
// runs: kind, team slug, calendar date, normalized opponent. Keying on
// the date rather than the full timestamp makes a time change to the
// same fixture a "modified" entry instead of a delete+add pair, which
// matches how users read the notifications. The kind prefix keeps games
// and practices in separate namespaces even when date and team coincide.
func EventKey(ev model.Event) string {
	return strings.Join([]string{
		string(ev.Kind),
		ev.Team.Slug(),
		ev.When.Format(dateLayout),
		Normalize(ev.Opponent),
	}, "|")
}

// Project reduces an event to the snapshot projection used for diffing.
func Project(ev model.Event) snapshot.Entry {
	return snapshot.Entry{
		When:     ev.When,
		Opponent: ev.Opponent,
		Location: ev.Location,
		Team:     ev.Team.Slug(),
		Kind:     string(ev.Kind),
	}
}

// BuildSnapshot projects the full event set into the persistable
// snapshot form.
func BuildSnapshot(games, practices []model.Event) snapshot.Snapshot {
	snap := make(snapshot.Snapshot, len(games)+len(practices))
	for _, ev := range games {
		snap[EventKey(ev)] = Project(ev)
	}
	for _, ev := range practices {
		snap[EventKey(ev)] = Project(ev)
	}
	return snap
}

// Changed is one modified event with field-level flags so the
// notification composer can phrase the change precisely.
type Changed struct {
	Old             snapshot.Entry
	New             snapshot.Entry
	TimeChanged     bool
	LocationChanged bool
}

// Changes buckets the diff between two snapshots.
type Changes struct {
	New      []snapshot.Entry
	Deleted  []snapshot.Entry
	Modified []Changed
}

// Empty reports whether the diff carries no changes at all.
func (c Changes) Empty() bool {
	return len(c.New) == 0 && len(c.Deleted) == 0 && len(c.Modified) == 0
}

// DetectChanges diffs the previous snapshot against the current event
// set. Only schedule-affecting fields count: start time, location, and
// existence. Score and result updates are frequent and say nothing
// about whether to show up, so they never produce a change.
func DetectChanges(prev snapshot.Snapshot, games, practices []model.Event) Changes {
	current := BuildSnapshot(games, practices)

	var ch Changes
	for key, now := range current {
		old, ok := prev[key]
		if !ok {
			ch.New = append(ch.New, now)
			continue
		}
		timeChanged := !old.When.Equal(now.When)
		locationChanged := old.Location != now.Location
		if timeChanged || locationChanged {
			ch.Modified = append(ch.Modified, Changed{
				Old:             old,
				New:             now,
				TimeChanged:     timeChanged,
				LocationChanged: locationChanged,
			})
		}
	}
	for key, old := range prev {
		if _, ok := current[key]; !ok {
			ch.Deleted = append(ch.Deleted, old)
		}
	}

	sortEntries(ch.New)
	sortEntries(ch.Deleted)
	sort.Slice(ch.Modified, func(i, j int) bool {
		if !ch.Modified[i].New.When.Equal(ch.Modified[j].New.When) {
			return ch.Modified[i].New.When.Before(ch.Modified[j].New.When)
		}
		return ch.Modified[i].New.Team < ch.Modified[j].New.Team
	})
	return ch
}

func sortEntries(entries []snapshot.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].When.Equal(entries[j].When) {
			return entries[i].When.Before(entries[j].When)
		}
		if entries[i].Team != entries[j].Team {
			return entries[i].Team < entries[j].Team
		}
		return entries[i].Opponent < entries[j].Opponent
	})
}
