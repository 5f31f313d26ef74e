// Package pipeline orchestrates one full run: fetch, reconcile,
// diff, notify, publish. Single-threaded and single-pass; the snapshot
// is read once at the start and written once at the end.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aknowles/ssbball/internal/config"
	"github.com/aknowles/ssbball/internal/fetch"
	"github.com/aknowles/ssbball/internal/ical"
	appLog "github.com/aknowles/ssbball/internal/log"
	"github.com/aknowles/ssbball/internal/model"
	"github.com/aknowles/ssbball/internal/notify"
	"github.com/aknowles/ssbball/internal/schedule"
	"github.com/aknowles/ssbball/internal/site"
	"github.com/aknowles/ssbball/internal/snapshot"
)

// Options are per-run overrides on top of the config file.
type Options struct {
	// DryRun skips notifications and the snapshot write, so the next
	// real run still diffs against the last real run.
	DryRun bool
	// OutputDir overrides cfg.OutputDir when non-empty.
	OutputDir string
	// BaseURL overrides cfg.BaseURL when non-empty.
	BaseURL string
}

// Summary reports what a run produced.
type Summary struct {
	Teams             int
	Games             int
	Practices         int
	Calendars         []site.CalendarInfo
	Changes           schedule.Changes
	NotificationsSent int
}

// Run executes one pipeline pass. The only user-visible failure is a
// total absence of fetchable data; per-team problems are logged and
// isolated upstream.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("bad timezone %q: %w", cfg.Timezone, err)
	}

	outputDir := cfg.OutputDir
	if opts.OutputDir != "" {
		outputDir = opts.OutputDir
	}
	baseURL := cfg.BaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	snapshotPath := filepath.Join(outputDir, "snapshot.json")

	prev, err := snapshot.Load(snapshotPath)
	if err != nil {
		appLog.Warn("could not read previous snapshot; treating as first run", "path", snapshotPath, "err", err)
		prev = snapshot.Snapshot{}
	}

	client := fetch.NewClient(0)
	teams, rawGames := fetch.DiscoverAndFetch(ctx, client, cfg, loc)
	if len(teams) == 0 {
		return nil, errors.New("no teams discovered in any league")
	}

	if !cfg.IncludeNonLeague {
		rawGames = dropTournament(rawGames)
	}

	games := schedule.Dedupe(rawGames, schedule.DedupeOptions{KeyOnGrade: cfg.DedupeGrade()})

	window, seasonOK := schedule.ResolveSeason(cfg.Season, loc)
	blackouts := schedule.ResolveBlackouts(cfg.Season, loc)

	var practices []model.Event
	for _, key := range rosterKeys(teams) {
		ps, ok := cfg.Practices[key.Slug()]
		if !ok || !seasonOK {
			continue
		}
		teamGames := eventsForTeam(games, key)
		practices = append(practices, schedule.GeneratePractices(schedule.PracticeConfig{
			Schedule:  ps,
			Window:    window,
			Blackouts: blackouts,
			Team:      key,
			Location:  loc,
		}, teamGames)...)
	}

	changes := schedule.DetectChanges(prev, games, practices)
	appLog.Info("change detection complete",
		"new", len(changes.New), "deleted", len(changes.Deleted), "modified", len(changes.Modified))

	sum := &Summary{
		Teams:     len(teams),
		Games:     len(games),
		Practices: len(practices),
		Changes:   changes,
	}

	if cfg.Notify.Enabled && !opts.DryRun && !changes.Empty() {
		msgs := notify.Compose(changes, cfg.Notify.TopicPrefix, cfg.Town+" Basketball")
		sum.NotificationsSent = notify.NewSender(cfg.Notify).SendAll(ctx, msgs)
	}

	cals, err := writeCalendars(cfg, outputDir, teams, games, practices)
	if err != nil {
		return nil, err
	}
	sum.Calendars = cals

	now := time.Now().In(loc)
	indexHTML, err := site.Render(cfg.Town, baseURL, cals, now)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "index.html"), indexHTML, 0o644); err != nil {
		return nil, err
	}
	statusJSON, err := site.StatusJSON(cfg.Town, len(teams), cals, now)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "status.json"), statusJSON, 0o644); err != nil {
		return nil, err
	}

	if opts.DryRun {
		appLog.Info("dry run; snapshot not written", "path", snapshotPath)
	} else {
		if err := snapshot.Save(snapshotPath, schedule.BuildSnapshot(games, practices)); err != nil {
			return nil, fmt.Errorf("snapshot save: %w", err)
		}
	}

	appLog.Info("run complete",
		"teams", sum.Teams, "games", sum.Games, "practices", sum.Practices,
		"calendars", len(sum.Calendars), "notifications", sum.NotificationsSent)
	return sum, nil
}

// writeCalendars publishes one .ics per team-league plus one combined
// calendar per roster. The combined calendar merges every league's
// games (deduped again within the roster) and the roster's practices.
func writeCalendars(cfg *config.Config, outputDir string, teams []fetch.TeamConfig, games, practices []model.Event) ([]site.CalendarInfo, error) {
	var cals []site.CalendarInfo

	for _, key := range rosterKeys(teams) {
		combined := append(eventsForTeam(games, key), eventsForTeam(practices, key)...)
		id := combinedCalendarID(cfg.Town, key)
		name := cfg.Town + " " + key.Display()
		if err := writeICS(outputDir, id, combined, name, cfg.Timezone); err != nil {
			return nil, err
		}
		cals = append(cals, site.CalendarInfo{
			Type:        "combined",
			ID:          id,
			Name:        name,
			Description: "All leagues combined",
			Games:       len(combined),
			Key:         key,
		})
	}

	for _, tc := range teams {
		events := eventsForLeague(games, tc.Key, tc.League.Name)
		if err := writeICS(outputDir, tc.ID, events, tc.Name, cfg.Timezone); err != nil {
			return nil, err
		}
		cals = append(cals, site.CalendarInfo{
			Type:   "team",
			ID:     tc.ID,
			Name:   tc.Name,
			League: tc.League.Name,
			Games:  len(events),
			Key:    tc.Key,
		})
	}
	return cals, nil
}

func writeICS(outputDir, id string, events []model.Event, name, timezone string) error {
	data := ical.Generate(events, name, id, timezone)
	path := filepath.Join(outputDir, id+".ics")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	appLog.Info("calendar written", "path", path, "events", len(events))
	return nil
}

func combinedCalendarID(town string, key model.TeamKey) string {
	return strings.ToLower(strings.ReplaceAll(town+"-"+key.Slug(), " ", "-"))
}

// rosterKeys returns the distinct team keys, preserving discovery order.
func rosterKeys(teams []fetch.TeamConfig) []model.TeamKey {
	seen := map[string]struct{}{}
	var keys []model.TeamKey
	for _, tc := range teams {
		slug := tc.Key.Slug()
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		keys = append(keys, tc.Key)
	}
	return keys
}

func eventsForTeam(events []model.Event, key model.TeamKey) []model.Event {
	slug := key.Slug()
	var out []model.Event
	for _, ev := range events {
		if ev.Team.Slug() == slug {
			out = append(out, ev)
		}
	}
	return out
}

func eventsForLeague(events []model.Event, key model.TeamKey, league string) []model.Event {
	var out []model.Event
	for _, ev := range eventsForTeam(events, key) {
		if ev.League == league {
			out = append(out, ev)
		}
	}
	return out
}

func dropTournament(events []model.Event) []model.Event {
	out := events[:0]
	for _, ev := range events {
		if !ev.Tournament {
			out = append(out, ev)
		}
	}
	return out
}
