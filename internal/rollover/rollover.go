// Package rollover prepares the config for a new season: fresh season
// dates, the Massachusetts school-calendar blackout dates, and a sweep
// of stale per-team modifications and ad-hoc entries.
package rollover

import (
	"fmt"
	"time"

	"github.com/aknowles/ssbball/internal/config"
)

// NthWeekday finds the nth occurrence of a weekday in a month, e.g. the
// 3rd Monday in January.
func NthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysUntil := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, daysUntil+(n-1)*7)
}

// VacationWeek returns the Monday and Friday of the week containing a
// holiday. MA school vacations run the full week of the holiday.
func VacationWeek(holiday time.Time) (time.Time, time.Time) {
	daysSinceMonday := (int(holiday.Weekday()) - int(time.Monday) + 7) % 7
	monday := holiday.AddDate(0, 0, -daysSinceMonday)
	return monday, monday.AddDate(0, 0, 4)
}

// SeasonDates generates the season window for a year. The town's
// basketball season runs January through March.
func SeasonDates(year int) (start, end string) {
	return fmt.Sprintf("%d-01-01", year), fmt.Sprintf("%d-03-31", year)
}

// BlackoutDates generates the blackout entries for a year:
// New Year's Day, MLK Day, February vacation (Presidents Day week),
// and April vacation (Patriots Day week).
func BlackoutDates(year int) []config.BlackoutConfig {
	const day = "2006-01-02"

	newYears := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	mlk := NthWeekday(year, time.January, time.Monday, 3)
	febStart, febEnd := VacationWeek(NthWeekday(year, time.February, time.Monday, 3))
	aprStart, aprEnd := VacationWeek(NthWeekday(year, time.April, time.Monday, 3))

	return []config.BlackoutConfig{
		{Start: newYears.Format(day), End: newYears.Format(day), Reason: "New Year's Day"},
		{Start: mlk.Format(day), End: mlk.Format(day), Reason: "Martin Luther King Jr. Day"},
		{Start: febStart.Format(day), End: febEnd.Format(day), Reason: "February Vacation (Presidents Day Week)"},
		{Start: aprStart.Format(day), End: aprEnd.Format(day), Reason: "April Vacation (Patriots Day Week)"},
	}
}

// Apply rewrites cfg in place for the target year. Recurring practice
// rules survive the rollover since they rarely change; dated
// modifications always belong to the old season and are cleared.
// Ad-hoc entries are cleared too unless keepAdhoc is set.
func Apply(cfg *config.Config, year int, keepAdhoc bool) {
	cfg.Season.Start, cfg.Season.End = SeasonDates(year)
	cfg.Season.Blackouts = BlackoutDates(year)

	for slug, ps := range cfg.Practices {
		ps.Modifications = nil
		if !keepAdhoc {
			ps.Adhoc = nil
		}
		cfg.Practices[slug] = ps
	}
}
