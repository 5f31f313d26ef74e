package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/aknowles/ssbball/internal/config"
	appLog "github.com/aknowles/ssbball/internal/log"
	"github.com/aknowles/ssbball/internal/model"
)

const (
	// conflictBuffer pads a practice interval on both ends before
	// checking game overlap. Fixed policy: a gym slot needs transition
	// time either side of a game.
	conflictBuffer = time.Hour

	// gameBlockDuration is the interval a game blocks for conflict
	// purposes, independent of how the game renders on a calendar.
	gameBlockDuration = time.Hour

	defaultPracticeMinutes = 60
)

// PracticeConfig carries everything practice generation needs for one
// team. The generator itself performs no I/O.
type PracticeConfig struct {
	Schedule  config.PracticeSchedule
	Window    SeasonWindow
	Blackouts []Blackout
	Team      model.TeamKey
	Location  *time.Location
}

// GeneratePractices expands the team's recurring weekly rules into
// concrete dated events, applying per-date modifications, blackout
// skips, and game-conflict skips, then appends ad-hoc entries.
//
// Failure semantics: a malformed weekday name or unparsable time string
// anywhere in the team's schedule short-circuits that team to an empty
// list with a logged warning. Other teams' calendars must still be
// produced, so nothing here returns an error.
func GeneratePractices(cfg PracticeConfig, games []model.Event) []model.Event {
	if len(cfg.Schedule.Recurring) == 0 && len(cfg.Schedule.Adhoc) == 0 {
		return nil
	}
	if cfg.Window.Start.IsZero() {
		appLog.Warn("no season window configured; skipping practice generation", "team", cfg.Team.Slug())
		return nil
	}
	loc := cfg.Location
	if loc == nil {
		loc = cfg.Window.Start.Location()
	}

	mods := make(map[string]config.Modification, len(cfg.Schedule.Modifications))
	for _, m := range cfg.Schedule.Modifications {
		mods[m.Date] = m
	}

	var out []model.Event

	for _, rule := range cfg.Schedule.Recurring {
		occurrences, err := expandWeekly(rule, cfg.Window, loc)
		if err != nil {
			appLog.Warn("invalid recurring practice rule; skipping team",
				"team", cfg.Team.Slug(), "day", rule.Day, "time", rule.Time, "err", err)
			return nil
		}

		for _, occ := range occurrences {
			start := occ
			minutes := rule.DurationMinutes
			location := rule.Location
			notes := rule.Notes

			if mod, ok := mods[occ.Format(dateLayout)]; ok {
				if mod.Cancel {
					continue
				}
				// Overlay onto this occurrence only; the rule's defaults
				// stay intact for other weeks.
				if mod.Time != "" {
					h, m, terr := parseTimeOfDay(mod.Time)
					if terr != nil {
						appLog.Warn("invalid modification time; skipping team",
							"team", cfg.Team.Slug(), "date", mod.Date, "time", mod.Time)
						return nil
					}
					start = time.Date(occ.Year(), occ.Month(), occ.Day(), h, m, 0, 0, loc)
				}
				if mod.DurationMinutes > 0 {
					minutes = mod.DurationMinutes
				}
				if mod.Location != "" {
					location = mod.Location
				}
				if mod.Notes != "" {
					notes = mod.Notes
				}
			} else if reason, blacked := BlackoutReason(cfg.Blackouts, start); blacked {
				appLog.Debug("practice skipped for blackout",
					"team", cfg.Team.Slug(), "date", occ.Format(dateLayout), "reason", reason)
				continue
			}

			if minutes <= 0 {
				minutes = defaultPracticeMinutes
			}
			dur := time.Duration(minutes) * time.Minute

			if conflictsWithGame(start, dur, games) {
				appLog.Debug("practice skipped for game conflict",
					"team", cfg.Team.Slug(), "date", occ.Format(dateLayout))
				continue
			}

			out = append(out, practiceEvent(cfg.Team, start, dur, location, notes))
		}
	}

	for _, ah := range cfg.Schedule.Adhoc {
		start, dur, err := parseAdhoc(ah, loc)
		if err != nil {
			appLog.Warn("invalid ad-hoc practice entry; skipping team",
				"team", cfg.Team.Slug(), "date", ah.Date, "time", ah.Time, "err", err)
			return nil
		}
		// Ad-hoc entries respect season bounds and game conflicts but
		// not blackouts: an explicitly dated entry is deliberate.
		if start.Before(cfg.Window.Start) || start.After(cfg.Window.End) {
			appLog.Debug("ad-hoc practice outside season window",
				"team", cfg.Team.Slug(), "date", ah.Date)
			continue
		}
		if conflictsWithGame(start, dur, games) {
			appLog.Debug("ad-hoc practice skipped for game conflict",
				"team", cfg.Team.Slug(), "date", ah.Date)
			continue
		}
		out = append(out, practiceEvent(cfg.Team, start, dur, ah.Location, ah.Notes))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].When.Before(out[j].When) })
	return out
}

// expandWeekly turns one recurring rule into concrete start times, one
// per week from the first matching weekday at or after season start
// through season end inclusive.
func expandWeekly(rule config.RecurringRule, window SeasonWindow, loc *time.Location) ([]time.Time, error) {
	wd, err := parseWeekday(rule.Day)
	if err != nil {
		return nil, err
	}
	h, m, err := parseTimeOfDay(rule.Time)
	if err != nil {
		return nil, err
	}

	dtstart := time.Date(window.Start.Year(), window.Start.Month(), window.Start.Day(), h, m, 0, 0, loc)
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dtstart,
		Until:     window.End,
		Byweekday: []rrule.Weekday{wd},
	})
	if err != nil {
		return nil, err
	}
	return r.All(), nil
}

func practiceEvent(team model.TeamKey, start time.Time, dur time.Duration, location, notes string) model.Event {
	return model.Event{
		When:     start,
		Duration: dur,
		Kind:     model.KindPractice,
		Location: location,
		Team:     team,
		League:   "Practice",
		Notes:    notes,
	}
}

// conflictsWithGame reports whether a practice at [start, start+dur),
// padded by conflictBuffer on both ends, overlaps any game's blocked
// interval for this team.
func conflictsWithGame(start time.Time, dur time.Duration, games []model.Event) bool {
	padStart := start.Add(-conflictBuffer)
	padEnd := start.Add(dur).Add(conflictBuffer)
	for _, g := range games {
		if g.Kind != model.KindGame {
			continue
		}
		gStart := g.When
		gEnd := gStart.Add(gameBlockDuration)
		if padStart.Before(gEnd) && gStart.Before(padEnd) {
			return true
		}
	}
	return false
}

func parseAdhoc(ah config.AdhocPractice, loc *time.Location) (time.Time, time.Duration, error) {
	day, err := time.ParseInLocation(dateLayout, ah.Date, loc)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("bad date %q: %w", ah.Date, err)
	}
	h, m, err := parseTimeOfDay(ah.Time)
	if err != nil {
		return time.Time{}, 0, err
	}
	minutes := ah.DurationMinutes
	if minutes <= 0 {
		minutes = defaultPracticeMinutes
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc)
	return start, time.Duration(minutes) * time.Minute, nil
}

var weekdays = map[string]rrule.Weekday{
	"monday":    rrule.MO,
	"tuesday":   rrule.TU,
	"wednesday": rrule.WE,
	"thursday":  rrule.TH,
	"friday":    rrule.FR,
	"saturday":  rrule.SA,
	"sunday":    rrule.SU,
}

func parseWeekday(name string) (rrule.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return rrule.Weekday{}, fmt.Errorf("unknown weekday %q", name)
	}
	return wd, nil
}

// parseTimeOfDay accepts "18:00" and "6:00 PM" forms.
func parseTimeOfDay(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm"} {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("unparsable time of day %q", s)
}
