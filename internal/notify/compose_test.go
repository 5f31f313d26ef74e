package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/aknowles/ssbball/internal/schedule"
	"github.com/aknowles/ssbball/internal/snapshot"
)

var ny = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}()

func TestComposeGroupsByTeam(t *testing.T) {
	ch := schedule.Changes{
		New: []snapshot.Entry{
			{When: time.Date(2026, 1, 10, 14, 0, 0, 0, ny), Opponent: "Stoughton", Team: "5b-white", Kind: "game"},
			{When: time.Date(2026, 1, 11, 14, 0, 0, 0, ny), Opponent: "Walpole", Team: "8b-white", Kind: "game"},
			{When: time.Date(2026, 1, 12, 18, 0, 0, 0, ny), Team: "5b-white", Kind: "practice"},
		},
	}

	msgs := Compose(ch, "ssbball", "Milton Basketball")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	// Sorted by topic.
	if msgs[0].Topic != "ssbball-5b-white" || msgs[1].Topic != "ssbball-8b-white" {
		t.Errorf("topics = %q, %q", msgs[0].Topic, msgs[1].Topic)
	}
	if got := strings.Count(msgs[0].Body, "\n") + 1; got != 2 {
		t.Errorf("5b-white body has %d lines, want 2:\n%s", got, msgs[0].Body)
	}
	if !strings.Contains(msgs[0].Title, "5th Boys White") {
		t.Errorf("title = %q", msgs[0].Title)
	}
	if !strings.Contains(msgs[0].Body, "NEW Game: Sat Jan 10 2:00 PM vs Stoughton") {
		t.Errorf("body = %q", msgs[0].Body)
	}
}

func TestComposeCancellationPriority(t *testing.T) {
	ch := schedule.Changes{
		New: []snapshot.Entry{
			{When: time.Date(2026, 1, 10, 14, 0, 0, 0, ny), Opponent: "Stoughton", Team: "5b-white", Kind: "game"},
		},
		Deleted: []snapshot.Entry{
			{When: time.Date(2026, 1, 17, 14, 0, 0, 0, ny), Opponent: "Walpole", Team: "8b-white", Kind: "game"},
		},
	}

	msgs := Compose(ch, "ssbball", "Milton Basketball")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}

	addOnly, withDelete := msgs[0], msgs[1]
	if addOnly.Priority != "default" {
		t.Errorf("add-only priority = %q", addOnly.Priority)
	}
	if withDelete.Priority != "high" {
		t.Errorf("cancellation priority = %q", withDelete.Priority)
	}
	if !hasTag(withDelete.Tags, "warning") {
		t.Errorf("cancellation tags = %v, want warning", withDelete.Tags)
	}
	if hasTag(addOnly.Tags, "warning") {
		t.Errorf("add-only tags = %v, no warning expected", addOnly.Tags)
	}
	if !strings.Contains(withDelete.Body, "CANCELLED Game: Sat Jan 17 2:00 PM vs Walpole") {
		t.Errorf("body = %q", withDelete.Body)
	}
}

func TestComposeModifiedPhrasing(t *testing.T) {
	old := snapshot.Entry{
		When: time.Date(2026, 1, 10, 14, 0, 0, 0, ny), Opponent: "Stoughton",
		Team: "5b-white", Kind: "game", Location: "Milton HS",
	}
	moved := old
	moved.When = time.Date(2026, 1, 10, 16, 0, 0, 0, ny)
	moved.Location = "Cunningham Hall"

	ch := schedule.Changes{
		Modified: []schedule.Changed{
			{Old: old, New: moved, TimeChanged: true, LocationChanged: true},
		},
	}
	msgs := Compose(ch, "ssbball", "")
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	body := msgs[0].Body
	for _, want := range []string{
		"CHANGED Game: Sat Jan 10 vs Stoughton",
		"time 2:00 PM now 4:00 PM",
		"location now Cunningham Hall",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q missing %q", body, want)
		}
	}
}

func TestComposeEmptyChanges(t *testing.T) {
	if msgs := Compose(schedule.Changes{}, "ssbball", "Milton Basketball"); len(msgs) != 0 {
		t.Errorf("empty diff produced %d messages", len(msgs))
	}
}

func TestTopicName(t *testing.T) {
	if got := topicName("Milton Hoops", "5b-white"); got != "milton-hoops-5b-white" {
		t.Errorf("topicName = %q", got)
	}
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
