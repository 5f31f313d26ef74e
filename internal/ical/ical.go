// Package ical serializes reconciled event sets into subscribable
// iCalendar payloads.
package ical

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/aknowles/ssbball/internal/model"
)

// Generate renders one calendar. calID is the stable identifier used in
// PRODID and event UIDs; calName is the human-visible calendar name.
func Generate(events []model.Event, calName, calID, timezone string) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Basketball Schedule//" + calID + "//EN")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(calName)
	cal.SetXWRTimezone(timezone)

	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].When.Before(sorted[j].When) })

	now := time.Now()
	for _, ev := range sorted {
		ve := cal.AddEvent(eventUID(ev, calID))
		ve.SetDtStampTime(now)
		ve.SetStartAt(ev.When)
		ve.SetEndAt(ev.End())
		ve.SetSummary(summary(ev))
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		ve.SetDescription(description(ev))

		addReminder(ve, "-PT1H", reminderText(ev, "1 hour"))
		addReminder(ve, "-PT30M", reminderText(ev, "30 minutes"))
	}

	return []byte(cal.Serialize())
}

// eventUID derives a stable UID so re-publishing the same fixture never
// duplicates it in subscribers' calendars.
func eventUID(ev model.Event, calID string) string {
	sum := md5.Sum([]byte(strings.Join([]string{
		ev.When.Format(time.RFC3339),
		ev.Opponent,
		ev.Team.Grade,
		ev.League,
		string(ev.Kind),
	}, "-")))
	return hex.EncodeToString(sum[:]) + "@" + calID
}

func summary(ev model.Event) string {
	prefix := "[" + ev.Team.Short() + "] "
	if ev.Kind == model.KindPractice {
		return prefix + "Practice"
	}
	if ev.HomeAway == model.Away {
		return prefix + "@ " + ev.Opponent
	}
	return prefix + "vs " + ev.Opponent
}

func description(ev model.Event) string {
	var lines []string
	lines = append(lines, "Team: "+ev.Team.Display())
	if ev.Kind == model.KindPractice {
		lines = append(lines, "Practice")
		if ev.Notes != "" {
			lines = append(lines, "Notes: "+ev.Notes)
		}
	} else {
		lines = append(lines, "Opponent: "+ev.Opponent)
		lines = append(lines, "League: "+ev.League)
		if ev.Tournament {
			lines = append(lines, "Non-league / tournament game")
		}
		if ev.HomeAway != model.Unknown {
			lines = append(lines, "Game: "+ev.HomeAway.String())
		}
		if ev.Score != nil {
			lines = append(lines, fmt.Sprintf("Final: %d-%d (%s)",
				ev.Score.Team, ev.Score.Opponent, ev.Score.Result))
		}
	}
	if ev.Location != "" {
		lines = append(lines, "Location: "+ev.Location)
	}
	return strings.Join(lines, "\n")
}

func reminderText(ev model.Event, lead string) string {
	if ev.Kind == model.KindPractice {
		return "Basketball practice in " + lead
	}
	return "Basketball game vs " + ev.Opponent + " in " + lead
}

func addReminder(ve *ics.VEvent, trigger, text string) {
	alarm := ve.AddAlarm()
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetTrigger(trigger)
	alarm.SetProperty(ics.ComponentProperty(ics.PropertyDescription), text)
}
