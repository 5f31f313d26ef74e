package fetch

import (
	"testing"
	"time"

	"github.com/aknowles/ssbball/internal/model"
)

var ny = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}()

func testTeamConfig() TeamConfig {
	lg, _ := LeagueByID("metrowbb")
	return TeamConfig{
		ID:     "milton-5th-boys-white-metrowbb",
		Name:   "Milton 5th Boys White (MetroWest)",
		League: lg,
		TeamNo: "1234",
		Key:    model.TeamKey{Grade: "5", Gender: "M", Color: "White"},
	}
}

var parseNow = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

func TestParseScheduleResponseListShape(t *testing.T) {
	data := []byte(`[
		{"gamedate": "1/10/2026", "starttime": "2:00 PM", "opponent": "Stoughton", "homeaway": "H",
		 "location": "Milton High School - Court 2", "street": "25 Gile Rd", "citystzip": "Milton, MA 02186"},
		{"gamedate": "1/17/2026", "starttime": "10:00 AM", "opponent": "@ Walpole"}
	]`)

	games := ParseScheduleResponse(data, testTeamConfig(), ny, parseNow)
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}

	g := games[0]
	want := time.Date(2026, 1, 10, 14, 0, 0, 0, ny)
	if !g.When.Equal(want) {
		t.Errorf("when = %v, want %v", g.When, want)
	}
	if g.Opponent != "Stoughton" || g.HomeAway != model.Home {
		t.Errorf("opponent = %q home/away = %v", g.Opponent, g.HomeAway)
	}
	if g.Location != "Milton High School, 25 Gile Rd, Milton, MA 02186 (Court 2)" {
		t.Errorf("location = %q", g.Location)
	}
	if g.League != "MetroWest" || g.Kind != model.KindGame {
		t.Errorf("league = %q kind = %q", g.League, g.Kind)
	}

	// "@" prefix implies away when no explicit indicator is present.
	g = games[1]
	if g.Opponent != "Walpole" || g.HomeAway != model.Away {
		t.Errorf("opponent = %q home/away = %v", g.Opponent, g.HomeAway)
	}
}

func TestParseScheduleResponseWrapperShapes(t *testing.T) {
	shapes := []string{
		`{"schedule": [{"gamedate": "2026-01-10", "opponent": "Stoughton"}]}`,
		`{"games": [{"gamedate": "2026-01-10", "opponent": "Stoughton"}]}`,
		`{"data": {"games": [{"gamedate": "2026-01-10", "opponent": "Stoughton"}]}}`,
		`{"whatever": [{"gamedate": "2026-01-10", "opponent": "Stoughton"}]}`,
	}
	for _, shape := range shapes {
		games := ParseScheduleResponse([]byte(shape), testTeamConfig(), ny, parseNow)
		if len(games) != 1 {
			t.Errorf("shape %s: got %d games, want 1", shape, len(games))
		}
	}
}

func TestParseScheduleResponseDropsBadRecords(t *testing.T) {
	data := []byte(`[
		{"gamedate": "not a date", "opponent": "Stoughton"},
		{"opponent": "No Date Team"},
		{"gamedate": "1/10/2026", "opponent": ""}
	]`)
	games := ParseScheduleResponse(data, testTeamConfig(), ny, parseNow)
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	if games[0].Opponent != "TBD" {
		t.Errorf("empty opponent = %q, want TBD", games[0].Opponent)
	}
}

func TestParseScheduleResponseNotJSON(t *testing.T) {
	if games := ParseScheduleResponse([]byte("<html>error</html>"), testTeamConfig(), ny, parseNow); games != nil {
		t.Errorf("non-JSON produced %d games", len(games))
	}
}

func TestParseScheduleResponseTournamentAndScore(t *testing.T) {
	data := []byte(`[
		{"gamedate": "1/10/2026", "opponent": "Stoughton", "gametype": "Tournament",
		 "teamscore": "42", "oppscore": "38"},
		{"gamedate": "1/17/2026", "opponent": "Walpole", "teamscore": 30, "oppscore": 33}
	]`)
	games := ParseScheduleResponse(data, testTeamConfig(), ny, parseNow)
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	if !games[0].Tournament {
		t.Error("tournament game not flagged")
	}
	if s := games[0].Score; s == nil || s.Team != 42 || s.Opponent != 38 || s.Result != model.ResultWin {
		t.Errorf("score = %+v", games[0].Score)
	}
	if s := games[1].Score; s == nil || s.Result != model.ResultLoss {
		t.Errorf("score = %+v", games[1].Score)
	}
}

func TestParseAPIDate(t *testing.T) {
	tests := []struct {
		date, clock string
		want        time.Time
		ok          bool
	}{
		{"1/10/2026", "2:00 PM", time.Date(2026, 1, 10, 14, 0, 0, 0, ny), true},
		{"1/10/26", "2:00 PM", time.Date(2026, 1, 10, 14, 0, 0, 0, ny), true},
		{"2026-01-10", "14:00", time.Date(2026, 1, 10, 14, 0, 0, 0, ny), true},
		// Missing time defaults to noon.
		{"1/10/2026", "", time.Date(2026, 1, 10, 12, 0, 0, 0, ny), true},
		// Noon and midnight edge cases.
		{"1/10/2026", "12:00 PM", time.Date(2026, 1, 10, 12, 0, 0, 0, ny), true},
		{"1/10/2026", "12:30 AM", time.Date(2026, 1, 10, 0, 30, 0, 0, ny), true},
		// Yearless month-name dates: January during a December run
		// belongs to next year.
		{"Jan 10", "2:00 PM", time.Date(2026, 1, 10, 14, 0, 0, 0, ny), true},
		{"Dec 14", "2:00 PM", time.Date(2025, 12, 14, 14, 0, 0, 0, ny), true},
		{"garbage", "2:00 PM", time.Time{}, false},
		{"13/45/2026", "", time.Time{}, false},
	}
	for _, tc := range tests {
		got, ok := parseAPIDate(tc.date, tc.clock, ny, parseNow)
		if ok != tc.ok {
			t.Errorf("parseAPIDate(%q, %q) ok = %v, want %v", tc.date, tc.clock, ok, tc.ok)
			continue
		}
		if ok && !got.Equal(tc.want) {
			t.Errorf("parseAPIDate(%q, %q) = %v, want %v", tc.date, tc.clock, got, tc.want)
		}
	}
}

func TestSplitCourtInfo(t *testing.T) {
	tests := []struct {
		in, venue, court string
	}{
		{"Milton High School - Court 2", "Milton High School", "Court 2"},
		{"Ames School - Main Gym", "Ames School", "Main Gym"},
		// A hyphenated venue with no court keyword stays intact.
		{"Blue Hills - East Campus", "Blue Hills - East Campus", ""},
		{"Milton High School", "Milton High School", ""},
	}
	for _, tc := range tests {
		venue, court := splitCourtInfo(tc.in)
		if venue != tc.venue || court != tc.court {
			t.Errorf("splitCourtInfo(%q) = %q, %q; want %q, %q", tc.in, venue, court, tc.venue, tc.court)
		}
	}
}

func TestParseTeamColor(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Milton (White)", "White"},
		{"Milton (Red) D2", "Red"},
		{"Milton", ""},
	}
	for _, tc := range tests {
		if got := ParseTeamColor(tc.in); got != tc.want {
			t.Errorf("ParseTeamColor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSeason(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), "2026"},
		{time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), "2026"},
		{time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), "2026"},
		{time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), "2027"},
	}
	for _, tc := range tests {
		if got := Season(tc.now); got != tc.want {
			t.Errorf("Season(%v) = %q, want %q", tc.now, got, tc.want)
		}
	}
}
