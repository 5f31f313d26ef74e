package fetch

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aknowles/ssbball/internal/config"
	appLog "github.com/aknowles/ssbball/internal/log"
	"github.com/aknowles/ssbball/internal/model"
)

// TeamConfig identifies one discovered roster in one league, with
// everything needed to fetch its schedule and label its calendar.
type TeamConfig struct {
	// ID is the calendar/file identifier, e.g.
	// "milton-5th-boys-white-metrowbb".
	ID string
	// Name is the display name, e.g. "Milton 5th Boys White (MetroWest)".
	Name string
	// ShortName is the compact summary prefix, e.g. "5B-White".
	ShortName    string
	League       League
	TeamNo       string
	Key          model.TeamKey
	DivisionTier string
}

// DiscoverAndFetch resolves town ids, discovers every matching roster
// across the configured leagues, grades, and genders, and fetches each
// roster's schedule. A failure for one league or one team is logged and
// isolated; the rest of the batch continues.
func DiscoverAndFetch(ctx context.Context, c *Client, cfg *config.Config, loc *time.Location) ([]TeamConfig, []model.Event) {
	season := Season(time.Now().In(loc))

	townIDs := map[string]string{}
	for _, id := range cfg.Leagues {
		lg, ok := LeagueByID(id)
		if !ok {
			appLog.Warn("unknown league in config", "league", id)
			continue
		}
		townNo, err := TownID(ctx, c, lg, cfg.Town)
		if err != nil {
			appLog.Warn("town not found in league", "league", id, "town", cfg.Town, "err", err)
			continue
		}
		townIDs[id] = townNo
	}
	if len(townIDs) == 0 {
		appLog.Error("town not found in any league", errors.New("no town ids resolved"), "town", cfg.Town)
		return nil, nil
	}

	var teams []TeamConfig
	for _, leagueID := range cfg.Leagues {
		townNo, ok := townIDs[leagueID]
		if !ok {
			continue
		}
		lg, _ := LeagueByID(leagueID)

		for _, grade := range cfg.Grades {
			for _, gender := range cfg.Genders {
				records, err := c.DiscoverTeams(ctx, lg, townNo, grade, gender, season)
				if err != nil {
					appLog.Warn("team discovery failed",
						"league", leagueID, "grade", grade, "gender", gender, "err", err)
					continue
				}
				for _, rec := range records {
					color := ParseTeamColor(rec.TeamName)
					if skipColor(cfg.Colors, color) {
						appLog.Debug("skipping team by color filter", "team", rec.TeamName, "color", color)
						continue
					}
					teams = append(teams, buildTeamConfig(cfg.Town, lg, rec, grade, gender, color))
				}
			}
		}
	}
	appLog.Info("discovery complete", "teams", len(teams), "season", season)

	var games []model.Event
	for _, tc := range teams {
		games = append(games, FetchTeamGames(ctx, c, tc, season, loc)...)
	}
	return teams, games
}

// FetchTeamGames fetches and parses one roster's schedule. Any error
// yields an empty result so other teams' calendars are still produced.
func FetchTeamGames(ctx context.Context, c *Client, tc TeamConfig, season string, loc *time.Location) []model.Event {
	body, err := c.FetchSchedule(ctx, tc.League, tc.TeamNo, season)
	if err != nil {
		appLog.Warn("schedule fetch failed", "team", tc.ID, "err", err)
		return nil
	}
	games := ParseScheduleResponse(body, tc, loc, time.Now().In(loc))
	appLog.Info("games fetched", "team", tc.ID, "count", len(games))
	return games
}

func skipColor(wanted []string, color string) bool {
	if len(wanted) == 0 || color == "" {
		return false
	}
	for _, w := range wanted {
		if strings.EqualFold(w, color) {
			return false
		}
	}
	return true
}

func buildTeamConfig(town string, lg League, rec TeamRecord, grade int, gender, color string) TeamConfig {
	key := model.TeamKey{
		Grade:  strconv.Itoa(grade),
		Gender: gender,
		Color:  color,
	}
	genderName := "boys"
	if strings.EqualFold(gender, "F") {
		genderName = "girls"
	}
	id := strings.ToLower(strings.Join([]string{
		town, strconv.Itoa(grade) + "th", genderName, color, lg.ID,
	}, "-"))
	id = strings.ReplaceAll(id, " ", "-")

	return TeamConfig{
		ID:           id,
		Name:         town + " " + key.Display() + " (" + lg.Name + ")",
		ShortName:    key.Short(),
		League:       lg,
		TeamNo:       rec.TeamNo,
		Key:          key,
		DivisionTier: rec.DivisionTier,
	}
}
