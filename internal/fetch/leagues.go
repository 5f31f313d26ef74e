// Package fetch acquires raw schedule data from the league web
// properties. All tolerance for the upstream's loose data shapes lives
// here; the reconciliation core only ever sees validated model.Event
// values.
package fetch

import (
	"strconv"
	"time"
)

const (
	apiBase          = "https://sportsite2.com"
	teamScheduleURL  = apiBase + "/getTeamSchedule.php"
	teamDiscoveryURL = apiBase + "/getTownGenderGradeTeams.php"
)

// League describes one league web property. Both known leagues sit on
// the same sportsite2 backend and differ only in branding and origin.
type League struct {
	ID     string // API client id, e.g. "metrowbb"
	Name   string // display label, e.g. "MetroWest"
	URL    string // launch page carrying the town dropdown
	Origin string // Origin/Referer the API expects
}

var leagues = []League{
	{
		ID:     "ssybl",
		Name:   "SSYBL",
		URL:    "https://ssybl.org/launch.php",
		Origin: "https://ssybl.org",
	},
	{
		ID:     "metrowbb",
		Name:   "MetroWest",
		URL:    "https://metrowestbball.com/launch.php",
		Origin: "https://metrowestbball.com",
	},
}

// LeagueByID looks up a league by its client id.
func LeagueByID(id string) (League, bool) {
	for _, lg := range leagues {
		if lg.ID == id {
			return lg, true
		}
	}
	return League{}, false
}

// Season derives the API season label from a point in time. The season
// runs roughly August through March and is labeled by its ending year,
// so August onward belongs to next year's season.
func Season(now time.Time) string {
	year := now.Year()
	if now.Month() >= time.August {
		year++
	}
	return strconv.Itoa(year)
}
