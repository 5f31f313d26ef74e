package fetch

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	appLog "github.com/aknowles/ssbball/internal/log"
	"github.com/aknowles/ssbball/internal/model"
)

var (
	timeOfDayPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(AM|PM|am|pm)?`)
	monthDayPattern  = regexp.MustCompile(`^([A-Za-z]+)\s*(\d{1,2})`)
	colorPattern     = regexp.MustCompile(`\((\w+)\)`)
)

// ParseScheduleResponse turns a raw sportsite2 schedule payload into
// game events for one team. The API has shipped several response shapes
// and key spellings over the years, so every lookup probes alternates.
// Records without a parseable date are dropped here; the core never
// sees them.
func ParseScheduleResponse(data []byte, tc TeamConfig, loc *time.Location, now time.Time) []model.Event {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		appLog.Warn("schedule response is not JSON", "team", tc.ID, "err", err)
		return nil
	}

	items := scheduleItems(decoded)
	appLog.Info("schedule items found", "team", tc.ID, "count", len(items))

	var games []model.Event
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		dateStr := firstString(item, "gamedate", "date", "gdate")
		timeStr := firstString(item, "starttime", "time", "gametime")
		if dateStr == "" {
			continue
		}

		when, ok := parseAPIDate(dateStr, timeStr, loc, now)
		if !ok {
			appLog.Debug("unparseable game date; dropping record", "team", tc.ID, "date", dateStr, "time", timeStr)
			continue
		}

		opponent := strings.TrimSpace(firstString(item, "opponent", "opp", "oppname"))
		gameType := firstString(item, "homeaway", "ha", "type")
		homeAway := parseHomeAway(gameType)
		if strings.HasPrefix(opponent, "@") {
			opponent = strings.TrimSpace(strings.TrimPrefix(opponent, "@"))
			if homeAway == model.Unknown {
				homeAway = model.Away
			}
		}
		if opponent == "" {
			opponent = "TBD"
		}

		games = append(games, model.Event{
			When:       when,
			Duration:   time.Hour,
			Kind:       model.KindGame,
			Opponent:   opponent,
			Location:   assembleLocation(item),
			Team:       tc.Key,
			League:     tc.League.Name,
			Tournament: isTournament(item),
			HomeAway:   homeAway,
			Score:      parseScore(item),
		})
	}
	return games
}

// scheduleItems digs the game list out of whichever wrapper shape the
// API chose to return.
func scheduleItems(decoded any) []any {
	switch v := decoded.(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range []string{"schedule", "games", "data"} {
			switch inner := v[key].(type) {
			case []any:
				return inner
			case map[string]any:
				if list, ok := inner["games"].([]any); ok {
					return list
				}
			}
		}
		// Last resort: the first list-valued field.
		for _, val := range v {
			if list, ok := val.([]any); ok && len(list) > 0 {
				return list
			}
		}
	}
	return nil
}

func firstString(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := item[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// parseAPIDate handles the date spellings seen across API revisions:
// "1/2/2026", "2026-01-02", and "Jan 2". Missing time defaults to noon.
func parseAPIDate(dateStr, timeStr string, loc *time.Location, now time.Time) (time.Time, bool) {
	var year, month, day int

	switch {
	case strings.Contains(dateStr, "/"):
		parts := strings.Split(dateStr, "/")
		if len(parts) != 3 {
			return time.Time{}, false
		}
		m, err1 := strconv.Atoi(parts[0])
		d, err2 := strconv.Atoi(parts[1])
		y, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return time.Time{}, false
		}
		if y < 100 {
			y += 2000
		}
		year, month, day = y, m, d

	case strings.Contains(dateStr, "-"):
		parts := strings.Split(dateStr, "-")
		if len(parts) != 3 {
			return time.Time{}, false
		}
		y, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		d, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return time.Time{}, false
		}
		year, month, day = y, m, d

	default:
		m := monthDayPattern.FindStringSubmatch(dateStr)
		if m == nil {
			return time.Time{}, false
		}
		mon, ok := monthByName(m[1])
		if !ok {
			return time.Time{}, false
		}
		d, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, false
		}
		// A month-only date carries no year; early months during a
		// season that started in the fall belong to the next year.
		y := now.Year()
		if mon < 6 && now.Month() > time.August {
			y++
		}
		year, month, day = y, mon, d
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	hour, minute := 12, 0
	if tm := timeOfDayPattern.FindStringSubmatch(timeStr); tm != nil {
		hour, _ = strconv.Atoi(tm[1])
		minute, _ = strconv.Atoi(tm[2])
		ampm := strings.ToUpper(tm[3])
		if ampm == "PM" && hour != 12 {
			hour += 12
		} else if ampm == "AM" && hour == 12 {
			hour = 0
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), true
}

func monthByName(name string) (int, bool) {
	months := map[string]int{
		"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
		"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
	}
	key := strings.ToLower(name)
	if len(key) > 3 {
		key = key[:3]
	}
	m, ok := months[key]
	return m, ok
}

func parseHomeAway(gameType string) model.HomeAway {
	t := strings.ToLower(strings.TrimSpace(gameType))
	switch {
	case t == "a" || strings.Contains(t, "away"):
		return model.Away
	case t == "h" || strings.Contains(t, "home"):
		return model.Home
	default:
		return model.Unknown
	}
}

// isTournament flags non-league fixtures: playoffs and tournaments the
// league marks with a schedule-type field. These lose to league games
// during dedup.
func isTournament(item map[string]any) bool {
	t := strings.ToLower(firstString(item, "gametype", "schedtype", "eventtype"))
	if t == "" {
		return false
	}
	for _, marker := range []string{"tournament", "playoff", "non-league", "nonleague"} {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}

// parseScore extracts a final score when both sides have been posted.
func parseScore(item map[string]any) *model.Score {
	us, ok1 := numericField(item, "teamscore", "ourscore", "score")
	them, ok2 := numericField(item, "oppscore", "theirscore", "opponentscore")
	if !ok1 || !ok2 {
		return nil
	}
	result := model.ResultTie
	if us > them {
		result = model.ResultWin
	} else if us < them {
		result = model.ResultLoss
	}
	return &model.Score{Team: us, Opponent: them, Result: result}
}

func numericField(item map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		switch v := item[key].(type) {
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		case float64:
			return int(v), true
		}
	}
	return 0, false
}

// assembleLocation joins venue, street, and city/state/zip with commas
// for geocoding, pulling court/gym suffixes out of the venue name and
// reattaching them at the end in parentheses.
func assembleLocation(item map[string]any) string {
	venue := firstString(item, "location", "loc", "facility")
	street := firstString(item, "street")
	cityStZip := firstString(item, "citystzip")

	venue, court := splitCourtInfo(venue)

	var parts []string
	if venue != "" {
		parts = append(parts, venue)
	}
	switch {
	case street != "" && cityStZip != "":
		parts = append(parts, street+", "+cityStZip)
	case street != "":
		parts = append(parts, street)
	case cityStZip != "":
		parts = append(parts, cityStZip)
	}

	location := strings.Join(parts, ", ")
	if court != "" {
		location += " (" + court + ")"
	}
	return location
}

// splitCourtInfo separates "Milton High School - Court 2" into the
// venue and the court suffix. Calendar apps geocode the venue far more
// reliably without the court in the name.
func splitCourtInfo(venue string) (string, string) {
	before, after, found := strings.Cut(venue, " - ")
	if !found || after == "" {
		return venue, ""
	}
	lower := strings.ToLower(after)
	for _, word := range []string{"court", "gym", "field", "rink", "front", "back", "main"} {
		if strings.Contains(lower, word) {
			return strings.TrimSpace(before), strings.TrimSpace(after)
		}
	}
	return venue, ""
}

// ParseTeamColor extracts the jersey color from a roster name like
// "Milton (White) D2".
func ParseTeamColor(teamName string) string {
	if m := colorPattern.FindStringSubmatch(teamName); m != nil {
		return m[1]
	}
	return ""
}
