package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BlackoutConfig is a closed date interval during which no practice is
// scheduled (e.g. school vacation). Dates are "2006-01-02" strings in
// the league timezone; End is inclusive through the end of that day.
type BlackoutConfig struct {
	Start  string `yaml:"start" json:"start"`
	End    string `yaml:"end" json:"end"`
	Reason string `yaml:"reason" json:"reason"`
}

// SeasonConfig holds the season window and its blackout periods.
type SeasonConfig struct {
	Start     string           `yaml:"start" json:"start"`
	End       string           `yaml:"end" json:"end"`
	Blackouts []BlackoutConfig `yaml:"blackout_dates" json:"blackout_dates"`
}

// RecurringRule produces one practice per week inside the season window.
type RecurringRule struct {
	// Day is the weekday name, e.g. "monday".
	Day string `yaml:"day" json:"day"`
	// Time is the start time of day, "18:00" or "6:00 PM".
	Time string `yaml:"time" json:"time"`
	// DurationMinutes defaults to 60 when zero.
	DurationMinutes int    `yaml:"duration_minutes" json:"duration_minutes"`
	Location        string `yaml:"location" json:"location"`
	Notes           string `yaml:"notes" json:"notes"`
}

// Modification overrides or cancels the recurring occurrence that would
// fall on Date. Empty override fields keep the rule's defaults.
type Modification struct {
	Date            string `yaml:"date" json:"date"`
	Cancel          bool   `yaml:"cancel" json:"cancel"`
	Time            string `yaml:"time,omitempty" json:"time,omitempty"`
	DurationMinutes int    `yaml:"duration_minutes,omitempty" json:"duration_minutes,omitempty"`
	Location        string `yaml:"location,omitempty" json:"location,omitempty"`
	Notes           string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// AdhocPractice is a single explicitly dated practice not derived from
// any recurring rule. Ad-hoc entries bypass blackout checks; a human
// placed them on purpose.
type AdhocPractice struct {
	Date            string `yaml:"date" json:"date"`
	Time            string `yaml:"time" json:"time"`
	DurationMinutes int    `yaml:"duration_minutes" json:"duration_minutes"`
	Location        string `yaml:"location" json:"location"`
	Notes           string `yaml:"notes" json:"notes"`
}

// PracticeSchedule is the per-team practice configuration, keyed in
// Config.Practices by the team slug (e.g. "5b-white").
type PracticeSchedule struct {
	Recurring     []RecurringRule `yaml:"recurring" json:"recurring"`
	Adhoc         []AdhocPractice `yaml:"adhoc" json:"adhoc"`
	Modifications []Modification  `yaml:"modifications" json:"modifications"`
}

// NotifyConfig controls the ntfy.sh push fan-out.
type NotifyConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Server is the ntfy base URL.
	Server string `yaml:"server" json:"server"`
	// TopicPrefix is prepended to the team slug to form the topic.
	TopicPrefix string `yaml:"topic_prefix" json:"topic_prefix"`
	// Token is an optional bearer token. The NTFY_TOKEN environment
	// variable overrides it so the secret can stay out of the file.
	Token string `yaml:"token,omitempty" json:"token,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Town is the town whose teams are scraped, e.g. "Milton".
	Town string `yaml:"town" json:"town"`

	// Leagues are league client IDs, e.g. "metrowbb", "ssybl".
	Leagues []string `yaml:"leagues" json:"leagues"`

	// Grades / Genders / Colors select which discovered teams to keep.
	// Empty Colors keeps all colors.
	Grades  []int    `yaml:"grades" json:"grades"`
	Genders []string `yaml:"genders" json:"genders"`
	Colors  []string `yaml:"colors" json:"colors"`

	// IncludeNonLeague keeps tournament/playoff fixtures in the output.
	IncludeNonLeague bool `yaml:"include_non_league" json:"include_non_league"`

	// DedupeByGrade includes the grade in the dedup key. Required once a
	// run spans multiple grades; only single-grade deployments may turn
	// it off.
	DedupeByGrade *bool `yaml:"dedupe_by_grade,omitempty" json:"dedupe_by_grade,omitempty"`

	// Timezone is the IANA league timezone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Season may be absent; teams without a season window simply get no
	// generated practices.
	Season SeasonConfig `yaml:"season" json:"season"`

	// Practices maps team slug to its practice schedule.
	Practices map[string]PracticeSchedule `yaml:"practices" json:"practices"`

	Notify NotifyConfig `yaml:"notify" json:"notify"`

	// OutputDir receives .ics files, index.html, status.json, and the
	// schedule snapshot.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// BaseURL is the public URL the status page links point at.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron is the serve-mode refresh schedule (5-field cron).
	RefreshCron string `yaml:"refresh" json:"refresh"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Town:        "Milton",
		Leagues:     []string{"metrowbb", "ssybl"},
		Grades:      []int{5, 8},
		Genders:     []string{"M"},
		Colors:      []string{"White"},
		Timezone:    "America/New_York",
		Practices:   map[string]PracticeSchedule{},
		OutputDir:   "docs",
		Listen:      "127.0.0.1:8080",
		RefreshCron: "0 */3 * * *",
		Notify: NotifyConfig{
			Server:      "https://ntfy.sh",
			TopicPrefix: "ssbball",
		},
	}
}

// DedupeGrade reports whether the dedup key includes the grade.
// Defaults to true: multi-grade runs silently merge distinct fixtures
// without it.
func (c *Config) DedupeGrade() bool {
	if c.DedupeByGrade == nil {
		return true
	}
	return *c.DedupeByGrade
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Town == "" {
		c.Town = "Milton"
	}
	if len(c.Leagues) == 0 {
		c.Leagues = []string{"metrowbb", "ssybl"}
	}
	if len(c.Grades) == 0 {
		c.Grades = []int{5, 8}
	}
	if len(c.Genders) == 0 {
		c.Genders = []string{"M"}
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.Practices == nil {
		c.Practices = map[string]PracticeSchedule{}
	}
	if c.OutputDir == "" {
		c.OutputDir = "docs"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "0 */3 * * *"
	}
	if c.Notify.Server == "" {
		c.Notify.Server = "https://ntfy.sh"
	}
	if c.Notify.TopicPrefix == "" {
		c.Notify.TopicPrefix = "ssbball"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed,
//     write a default config with 0600 perms, and return the default.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ssbball-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
