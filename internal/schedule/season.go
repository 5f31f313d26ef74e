package schedule

import (
	"time"

	"github.com/aknowles/ssbball/internal/config"
	appLog "github.com/aknowles/ssbball/internal/log"
)

const dateLayout = "2006-01-02"

// SeasonWindow is the inclusive date range practices are generated in.
// End is pinned to the last instant of its day.
type SeasonWindow struct {
	Start time.Time
	End   time.Time
}

// Blackout is a resolved exclusion interval. Any practice start falling
// inside [Start, End] is skipped; games are never blacked out.
type Blackout struct {
	Start  time.Time
	End    time.Time
	Reason string
}

// ResolveSeason parses the configured season bounds in loc. A parse
// failure for either bound means "season not configured": ok is false
// and practice generation becomes a no-op, never an error.
func ResolveSeason(sc config.SeasonConfig, loc *time.Location) (SeasonWindow, bool) {
	start, err := time.ParseInLocation(dateLayout, sc.Start, loc)
	if err != nil {
		if sc.Start != "" {
			appLog.Warn("unparsable season start; skipping practice generation", "start", sc.Start)
		}
		return SeasonWindow{}, false
	}
	end, err := time.ParseInLocation(dateLayout, sc.End, loc)
	if err != nil {
		if sc.End != "" {
			appLog.Warn("unparsable season end; skipping practice generation", "end", sc.End)
		}
		return SeasonWindow{}, false
	}
	return SeasonWindow{
		Start: start,
		End:   endOfDay(end),
	}, true
}

// ResolveBlackouts parses the configured blackout entries. Entries with
// unparsable dates are dropped with a warning.
func ResolveBlackouts(sc config.SeasonConfig, loc *time.Location) []Blackout {
	out := make([]Blackout, 0, len(sc.Blackouts))
	for _, b := range sc.Blackouts {
		start, err := time.ParseInLocation(dateLayout, b.Start, loc)
		if err != nil {
			appLog.Warn("unparsable blackout start; dropping entry", "start", b.Start, "reason", b.Reason)
			continue
		}
		end, err := time.ParseInLocation(dateLayout, b.End, loc)
		if err != nil {
			appLog.Warn("unparsable blackout end; dropping entry", "end", b.End, "reason", b.Reason)
			continue
		}
		out = append(out, Blackout{
			Start:  start,
			End:    endOfDay(end),
			Reason: b.Reason,
		})
	}
	return out
}

// BlackoutReason reports whether t falls inside any blackout interval.
// Linear scan; the first matching interval's reason wins. Blackout
// lists are single digits long in practice, so nothing fancier is
// warranted.
func BlackoutReason(blackouts []Blackout, t time.Time) (string, bool) {
	for _, b := range blackouts {
		if !t.Before(b.Start) && !t.After(b.End) {
			return b.Reason, true
		}
	}
	return "", false
}

// endOfDay pins a date to 23:59:59 so inclusive end dates cover the
// whole day.
func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
}
