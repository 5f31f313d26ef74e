// Package notify turns change buckets into grouped per-team ntfy.sh
// messages and delivers them.
package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aknowles/ssbball/internal/model"
	"github.com/aknowles/ssbball/internal/schedule"
	"github.com/aknowles/ssbball/internal/snapshot"
)

// Message is one per-team push notification ready for transport.
type Message struct {
	Topic    string
	Title    string
	Body     string
	Priority string
	Tags     []string
}

const (
	eventTimeLayout = "Mon Jan 2 3:04 PM"
	clockLayout     = "3:04 PM"
	dayLayout       = "Mon Jan 2"
)

// Compose groups all three change buckets by team and renders one
// message per team that has any change this run. Topic names are
// derived deterministically from the prefix and team slug so
// subscribers can pre-register without a discovery step.
func Compose(ch schedule.Changes, topicPrefix, leagueLabel string) []Message {
	type bucket struct {
		added    []snapshot.Entry
		deleted  []snapshot.Entry
		modified []schedule.Changed
	}
	byTeam := map[string]*bucket{}
	get := func(team string) *bucket {
		b, ok := byTeam[team]
		if !ok {
			b = &bucket{}
			byTeam[team] = b
		}
		return b
	}

	for _, e := range ch.New {
		b := get(e.Team)
		b.added = append(b.added, e)
	}
	for _, e := range ch.Deleted {
		b := get(e.Team)
		b.deleted = append(b.deleted, e)
	}
	for _, m := range ch.Modified {
		b := get(m.New.Team)
		b.modified = append(b.modified, m)
	}

	msgs := make([]Message, 0, len(byTeam))
	for team, b := range byTeam {
		var lines []string
		for _, e := range b.added {
			lines = append(lines, "NEW "+entryLabel(e))
		}
		for _, e := range b.deleted {
			lines = append(lines, "CANCELLED "+entryLabel(e))
		}
		for _, m := range b.modified {
			lines = append(lines, "CHANGED "+changedLabel(m))
		}

		priority := "default"
		tags := []string{"basketball"}
		if len(b.deleted) > 0 {
			priority = "high"
			tags = append(tags, "warning")
		}

		msgs = append(msgs, Message{
			Topic:    topicName(topicPrefix, team),
			Title:    teamTitle(team, leagueLabel),
			Body:     strings.Join(lines, "\n"),
			Priority: priority,
			Tags:     tags,
		})
	}

	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Topic < msgs[j].Topic })
	return msgs
}

// entryLabel renders one event line, e.g.
// "Game: Sun Dec 7 6:00 PM vs Stoughton (Gym A)".
func entryLabel(e snapshot.Entry) string {
	kind := "Game"
	if e.Kind == string(model.KindPractice) {
		kind = "Practice"
	}
	s := fmt.Sprintf("%s: %s", kind, e.When.Format(eventTimeLayout))
	if e.Opponent != "" {
		s += " vs " + e.Opponent
	}
	if e.Location != "" {
		s += " (" + e.Location + ")"
	}
	return s
}

// changedLabel phrases a modification precisely: old-to-new time when
// the time moved, a location marker when the venue moved, and always a
// date so the line can be placed without cross-referencing.
func changedLabel(m schedule.Changed) string {
	kind := "Game"
	if m.New.Kind == string(model.KindPractice) {
		kind = "Practice"
	}
	s := fmt.Sprintf("%s: %s", kind, m.New.When.Format(dayLayout))
	if m.New.Opponent != "" {
		s += " vs " + m.New.Opponent
	}
	var parts []string
	if m.TimeChanged {
		parts = append(parts, fmt.Sprintf("time %s now %s",
			m.Old.When.Format(clockLayout), m.New.When.Format(clockLayout)))
	}
	if m.LocationChanged {
		parts = append(parts, "location now "+orTBD(m.New.Location))
	}
	return s + ", " + strings.Join(parts, ", ")
}

func orTBD(s string) string {
	if s == "" {
		return "TBD"
	}
	return s
}

// topicName derives "{prefix}-{team}" lowercased with spaces replaced
// by hyphens.
func topicName(prefix, team string) string {
	t := prefix + "-" + team
	t = strings.ToLower(t)
	return strings.ReplaceAll(t, " ", "-")
}

func teamTitle(team, leagueLabel string) string {
	display := team
	if key, ok := model.ParseSlug(team); ok {
		display = key.Display()
	}
	if leagueLabel == "" {
		return display + " schedule update"
	}
	return fmt.Sprintf("%s %s schedule update", leagueLabel, display)
}
