package schedule

import (
	"testing"
	"time"

	"github.com/aknowles/ssbball/internal/model"
	"github.com/aknowles/ssbball/internal/snapshot"
)

func TestEventKeyNamespacesKinds(t *testing.T) {
	when := time.Date(2026, 1, 10, 18, 0, 0, 0, ny)
	team := model.TeamKey{Grade: "5", Gender: "b", Color: "White"}
	g := model.Event{When: when, Kind: model.KindGame, Opponent: "Stoughton", Team: team}
	p := model.Event{When: when, Kind: model.KindPractice, Team: team}
	if EventKey(g) == EventKey(p) {
		t.Error("game and practice on the same date share a key")
	}
}

func TestEventKeyDateNotTime(t *testing.T) {
	team := model.TeamKey{Grade: "5", Gender: "b", Color: "White"}
	a := model.Event{When: time.Date(2026, 1, 10, 14, 0, 0, 0, ny), Kind: model.KindGame, Opponent: "Stoughton", Team: team}
	b := model.Event{When: time.Date(2026, 1, 10, 16, 0, 0, 0, ny), Kind: model.KindGame, Opponent: "Stoughton 5B", Team: team}
	if EventKey(a) != EventKey(b) {
		t.Error("time-shifted fixture got a new key; it should diff as modified")
	}
}

func TestDetectChangesFirstRun(t *testing.T) {
	team := model.TeamKey{Grade: "5", Gender: "b", Color: "White"}
	games := []model.Event{
		{When: time.Date(2026, 1, 10, 14, 0, 0, 0, ny), Kind: model.KindGame, Opponent: "Stoughton", Team: team},
	}
	ch := DetectChanges(snapshot.Snapshot{}, games, nil)
	if len(ch.New) != 1 || len(ch.Deleted) != 0 || len(ch.Modified) != 0 {
		t.Errorf("first run diff = %d new, %d deleted, %d modified", len(ch.New), len(ch.Deleted), len(ch.Modified))
	}
}

func TestDetectChangesStableSetIsEmpty(t *testing.T) {
	team := model.TeamKey{Grade: "5", Gender: "b", Color: "White"}
	games := []model.Event{
		{When: time.Date(2026, 1, 10, 14, 0, 0, 0, ny), Kind: model.KindGame, Opponent: "Stoughton", Team: team, Location: "Milton HS"},
	}
	practices := []model.Event{
		{When: time.Date(2026, 1, 12, 18, 0, 0, 0, ny), Kind: model.KindPractice, Team: team},
	}
	prev := BuildSnapshot(games, practices)
	ch := DetectChanges(prev, games, practices)
	if !ch.Empty() {
		t.Errorf("unchanged set produced a diff: %+v", ch)
	}
}

func TestDetectChangesTimeChange(t *testing.T) {
	team := model.TeamKey{Grade: "5", Gender: "b", Color: "White"}
	old := []model.Event{
		{When: time.Date(2026, 1, 10, 14, 0, 0, 0, ny), Kind: model.KindGame, Opponent: "Stoughton", Team: team, Location: "Milton HS"},
	}
	prev := BuildSnapshot(old, nil)

	moved := old[0]
	moved.When = time.Date(2026, 1, 10, 16, 0, 0, 0, ny)
	ch := DetectChanges(prev, []model.Event{moved}, nil)

	if len(ch.New) != 0 || len(ch.Deleted) != 0 {
		t.Fatalf("time change produced add/delete: %d new, %d deleted", len(ch.New), len(ch.Deleted))
	}
	if len(ch.Modified) != 1 {
		t.Fatalf("got %d modified, want 1", len(ch.Modified))
	}
	m := ch.Modified[0]
	if !m.TimeChanged || m.LocationChanged {
		t.Errorf("flags = time %v location %v, want time only", m.TimeChanged, m.LocationChanged)
	}
}

func TestDetectChangesLocationChange(t *testing.T) {
	team := model.TeamKey{Grade: "5", Gender: "b", Color: "White"}
	old := []model.Event{
		{When: time.Date(2026, 1, 10, 14, 0, 0, 0, ny), Kind: model.KindGame, Opponent: "Stoughton", Team: team, Location: "Milton HS"},
	}
	prev := BuildSnapshot(old, nil)

	moved := old[0]
	moved.Location = "Cunningham Hall"
	ch := DetectChanges(prev, []model.Event{moved}, nil)
	if len(ch.Modified) != 1 {
		t.Fatalf("got %d modified, want 1", len(ch.Modified))
	}
	m := ch.Modified[0]
	if m.TimeChanged || !m.LocationChanged {
		t.Errorf("flags = time %v location %v, want location only", m.TimeChanged, m.LocationChanged)
	}
}

func TestDetectChangesScoreIgnored(t *testing.T) {
	team := model.TeamKey{Grade: "5", Gender: "b", Color: "White"}
	old := []model.Event{
		{When: time.Date(2026, 1, 10, 14, 0, 0, 0, ny), Kind: model.KindGame, Opponent: "Stoughton", Team: team},
	}
	prev := BuildSnapshot(old, nil)

	scored := old[0]
	scored.Score = &model.Score{Team: 42, Opponent: 38, Result: model.ResultWin}
	ch := DetectChanges(prev, []model.Event{scored}, nil)
	if !ch.Empty() {
		t.Errorf("score update produced a diff: %+v", ch)
	}
}

func TestDetectChangesDeleted(t *testing.T) {
	team := model.TeamKey{Grade: "5", Gender: "b", Color: "White"}
	old := []model.Event{
		{When: time.Date(2026, 1, 10, 14, 0, 0, 0, ny), Kind: model.KindGame, Opponent: "Stoughton", Team: team},
		{When: time.Date(2026, 1, 17, 14, 0, 0, 0, ny), Kind: model.KindGame, Opponent: "Walpole", Team: team},
	}
	prev := BuildSnapshot(old, nil)

	ch := DetectChanges(prev, old[:1], nil)
	if len(ch.Deleted) != 1 {
		t.Fatalf("got %d deleted, want 1", len(ch.Deleted))
	}
	if ch.Deleted[0].Opponent != "Walpole" {
		t.Errorf("deleted = %q, want Walpole", ch.Deleted[0].Opponent)
	}
}
