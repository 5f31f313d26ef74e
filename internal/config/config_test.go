package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if cfg.Town != "Milton" || len(cfg.Leagues) != 2 {
		t.Errorf("default config = %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config not written: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("config perms = %o, want 600", perm)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := DefaultConfig()
	in.Town = "Needham"
	in.Grades = []int{6}
	in.Practices["6b-white"] = PracticeSchedule{
		Recurring: []RecurringRule{{Day: "tuesday", Time: "18:30", DurationMinutes: 75, Location: "Gym A"}},
		Modifications: []Modification{
			{Date: "2026-01-13", Cancel: true},
		},
	}
	in.Season = SeasonConfig{
		Start: "2026-01-01",
		End:   "2026-03-31",
		Blackouts: []BlackoutConfig{
			{Start: "2026-02-16", End: "2026-02-20", Reason: "February Vacation"},
		},
	}

	if err := Save(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if out.Town != "Needham" || len(out.Grades) != 1 || out.Grades[0] != 6 {
		t.Errorf("loaded = %+v", out)
	}
	ps, ok := out.Practices["6b-white"]
	if !ok {
		t.Fatal("practice schedule lost in round trip")
	}
	if len(ps.Recurring) != 1 || ps.Recurring[0].Time != "18:30" {
		t.Errorf("recurring = %+v", ps.Recurring)
	}
	if len(ps.Modifications) != 1 || !ps.Modifications[0].Cancel {
		t.Errorf("modifications = %+v", ps.Modifications)
	}
	if len(out.Season.Blackouts) != 1 || out.Season.Blackouts[0].Reason != "February Vacation" {
		t.Errorf("blackouts = %+v", out.Season.Blackouts)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	var cfg Config
	cfg.Normalize()

	if cfg.Town != "Milton" {
		t.Errorf("town = %q", cfg.Town)
	}
	if cfg.Timezone != "America/New_York" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.Listen == "" || cfg.RefreshCron == "" || cfg.OutputDir == "" {
		t.Errorf("serve defaults missing: %+v", cfg)
	}
	if cfg.Notify.Server != "https://ntfy.sh" {
		t.Errorf("ntfy server = %q", cfg.Notify.Server)
	}
	if cfg.Practices == nil {
		t.Error("practices map not initialized")
	}
}

func TestDedupeGradeDefault(t *testing.T) {
	var cfg Config
	if !cfg.DedupeGrade() {
		t.Error("dedupe-by-grade should default on")
	}
	off := false
	cfg.DedupeByGrade = &off
	if cfg.DedupeGrade() {
		t.Error("explicit false ignored")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("town: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("invalid YAML loaded without error")
	}
}
