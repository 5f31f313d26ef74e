package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Kind distinguishes fetched games from generated practices.
type Kind string

const (
	KindGame     Kind = "game"
	KindPractice Kind = "practice"
)

// HomeAway is the home/away indicator derived from source data.
type HomeAway int

const (
	Unknown HomeAway = iota
	Home
	Away
)

func (h HomeAway) String() string {
	switch h {
	case Home:
		return "Home"
	case Away:
		return "Away"
	default:
		return "Unknown"
	}
}

// Result of a completed game from this team's perspective.
type Result string

const (
	ResultWin  Result = "W"
	ResultLoss Result = "L"
	ResultTie  Result = "T"
)

// Score holds the final score of a completed game. Only present once
// both scores have been posted by the league.
type Score struct {
	Team     int
	Opponent int
	Result   Result
}

// TeamKey identifies a roster within the town: grade, gender, jersey
// color. It replaces the hyphen-split string keys the league sites use.
type TeamKey struct {
	Grade  string // "5", "8", ...
	Gender string // "M" or "F"
	Color  string // "White", "Red", ...
}

// Slug renders the canonical external identifier, e.g. "5b-white".
// Used for config keys, snapshot keys, and notification topics.
func (k TeamKey) Slug() string {
	g := "b"
	if strings.EqualFold(k.Gender, "F") {
		g = "g"
	}
	return strings.ToLower(fmt.Sprintf("%s%s-%s", k.Grade, g, strings.ReplaceAll(k.Color, " ", "-")))
}

// Display renders a human-readable label, e.g. "5th Boys White".
func (k TeamKey) Display() string {
	gender := "Boys"
	if strings.EqualFold(k.Gender, "F") {
		gender = "Girls"
	}
	return fmt.Sprintf("%s %s %s", ordinal(k.Grade), gender, k.Color)
}

// Short renders the compact label used in calendar summaries, e.g. "5B-White".
func (k TeamKey) Short() string {
	g := "B"
	if strings.EqualFold(k.Gender, "F") {
		g = "G"
	}
	return fmt.Sprintf("%s%s-%s", k.Grade, g, k.Color)
}

// ParseSlug inverts Slug: "5b-white" yields {5, M, White}. Reports
// false for strings that don't follow the slug shape.
func ParseSlug(s string) (TeamKey, bool) {
	m := slugPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return TeamKey{}, false
	}
	gender := "M"
	if m[2] == "g" {
		gender = "F"
	}
	words := strings.Split(strings.ReplaceAll(m[3], "-", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return TeamKey{Grade: m[1], Gender: gender, Color: strings.Join(words, " ")}, true
}

var slugPattern = regexp.MustCompile(`^(\d+)([bg])-(.+)$`)

func ordinal(grade string) string {
	switch grade {
	case "1":
		return "1st"
	case "2":
		return "2nd"
	case "3":
		return "3rd"
	default:
		return grade + "th"
	}
}

// Event is the central entity of the pipeline: a single game or practice.
type Event struct {
	// When is the start time in the league timezone. Always set; records
	// without a parseable date never reach this type.
	When time.Time

	// Duration of the event. Games default to one hour; practices carry
	// the duration from their rule.
	Duration time.Duration

	Kind Kind

	// Opponent is set for games only.
	Opponent string

	// Location is the free-text venue, possibly empty.
	Location string

	Team TeamKey

	// League is the source label, e.g. "MetroWest", "SSYBL", or
	// "Practice" for generated events.
	League string

	// Tournament marks non-league fixtures (playoffs, tournaments).
	// League games win over tournament duplicates during dedup.
	Tournament bool

	HomeAway HomeAway

	// Score is populated only for completed games.
	Score *Score

	// Notes is practice-only free text.
	Notes string
}

// End returns the end time of the event.
func (e Event) End() time.Time {
	d := e.Duration
	if d <= 0 {
		d = time.Hour
	}
	return e.When.Add(d)
}
