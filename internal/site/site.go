// Package site renders the static status page and status.json that
// accompany the published calendars.
package site

import (
	"bytes"
	"encoding/json"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/aknowles/ssbball/internal/model"
)

// CalendarInfo describes one published .ics file for the landing page
// and status.json.
type CalendarInfo struct {
	// Type is "team" for a single-league calendar or "combined" for the
	// all-leagues merge of one roster.
	Type        string        `json:"type"`
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	League      string        `json:"league,omitempty"`
	Description string        `json:"description,omitempty"`
	Games       int           `json:"games"`
	Key         model.TeamKey `json:"-"`
}

// Status is the machine-readable run summary.
type Status struct {
	Updated         string         `json:"updated"`
	Town            string         `json:"town"`
	TeamsDiscovered int            `json:"teams_discovered"`
	Calendars       []CalendarInfo `json:"calendars"`
}

// StatusJSON renders status.json.
func StatusJSON(town string, teams int, cals []CalendarInfo, updated time.Time) ([]byte, error) {
	return json.MarshalIndent(Status{
		Updated:         updated.Format(time.RFC3339),
		Town:            town,
		TeamsDiscovered: teams,
		Calendars:       cals,
	}, "", "  ")
}

type card struct {
	ID       string
	Name     string
	Games    int
	URL      string
	Combined bool
}

type teamGroup struct {
	Label string
	Cards []card
}

type gradeSection struct {
	Label     string
	Teams     []teamGroup
	TeamCount int
	GameCount int
}

type pageData struct {
	Town    string
	Updated string
	Grades  []gradeSection
}

// Render produces the landing page HTML: calendars grouped by grade,
// then gender and color, with subscribe links for each.
func Render(town, baseURL string, cals []CalendarInfo, updated time.Time) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")

	// Group calendars by grade then team slug.
	byGrade := map[string]map[string][]card{}
	gradeGames := map[string]int{}
	for _, c := range cals {
		grade := c.Key.Grade
		if grade == "" {
			grade = "Other"
		}
		slug := c.Key.Slug()
		if byGrade[grade] == nil {
			byGrade[grade] = map[string][]card{}
		}
		label := c.League
		if c.Type == "combined" {
			label = "Combined (All Leagues)"
		}
		byGrade[grade][slug] = append(byGrade[grade][slug], card{
			ID:       c.ID,
			Name:     label,
			Games:    c.Games,
			URL:      base + "/" + c.ID + ".ics",
			Combined: c.Type == "combined",
		})
		gradeGames[grade] += c.Games
	}

	var grades []gradeSection
	for grade, bySlug := range byGrade {
		section := gradeSection{
			Label:     gradeLabel(grade),
			GameCount: gradeGames[grade],
		}
		var slugs []string
		for slug := range bySlug {
			slugs = append(slugs, slug)
		}
		sort.Strings(slugs)
		for _, slug := range slugs {
			cards := bySlug[slug]
			// Combined calendar first, then leagues alphabetically.
			sort.Slice(cards, func(i, j int) bool {
				if cards[i].Combined != cards[j].Combined {
					return cards[i].Combined
				}
				return cards[i].Name < cards[j].Name
			})
			label := slug
			if key, ok := model.ParseSlug(slug); ok {
				label = key.Display()
			}
			section.Teams = append(section.Teams, teamGroup{Label: label, Cards: cards})
			section.TeamCount++
		}
		grades = append(grades, section)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].Label < grades[j].Label })

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Town:    town,
		Updated: updated.Format("2006-01-02 15:04 MST"),
		Grades:  grades,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gradeLabel(grade string) string {
	switch grade {
	case "1":
		return "1st Grade"
	case "2":
		return "2nd Grade"
	case "3":
		return "3rd Grade"
	case "Other", "":
		return "Other"
	default:
		return grade + "th Grade"
	}
}

var pageTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"trimScheme": func(u string) string {
		u = strings.TrimPrefix(u, "https://")
		return strings.TrimPrefix(u, "http://")
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Town}} Basketball Calendars</title>
<style>
* { box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
       max-width: 900px; margin: 0 auto; padding: 20px; background: #f5f5f5; color: #333; }
h1 { text-align: center; color: #1a1a2e; }
.subtitle { text-align: center; color: #666; margin-bottom: 30px; }
.grade { background: #1a1a2e; color: white; padding: 14px 20px; border-radius: 10px;
         margin-top: 16px; display: flex; justify-content: space-between; }
.grade-info { font-size: 13px; opacity: 0.8; }
.team { margin: 14px 4px; }
.team-header { font-weight: 700; font-size: 15px; color: #1a1a2e;
               border-bottom: 1px solid #ddd; padding-bottom: 6px; margin-bottom: 8px; }
.card { background: white; border-radius: 10px; padding: 12px 16px; margin-bottom: 8px;
        box-shadow: 0 2px 8px rgba(0,0,0,0.1); display: flex;
        justify-content: space-between; align-items: center; }
.card.combined { border: 2px solid #e63946; }
.card-title { font-weight: 600; font-size: 14px; color: #1a1a2e; }
.card-games { font-size: 12px; color: #666; margin-left: 8px; }
.btn { display: inline-block; padding: 6px 12px; border-radius: 6px; text-decoration: none;
       font-weight: 500; font-size: 12px; margin-left: 6px; }
.btn-primary { background: #e63946; color: white; }
.btn-secondary { background: #1a1a2e; color: white; }
.instructions { background: white; border-radius: 12px; padding: 20px; margin-top: 30px; }
.footer { text-align: center; margin-top: 30px; color: #666; font-size: 13px; }
</style>
</head>
<body>
<h1>&#127936; {{.Town}} Basketball</h1>
<p class="subtitle">Subscribe to automatically sync game schedules to your calendar</p>
{{range .Grades}}
<div class="grade"><span>&#127936; {{.Label}}</span>
  <span class="grade-info">{{.TeamCount}} teams &bull; {{.GameCount}} games</span></div>
{{range .Teams}}
<div class="team">
  <div class="team-header">{{.Label}}</div>
  {{range .Cards}}
  <div class="card{{if .Combined}} combined{{end}}">
    <span><span class="card-title">{{if .Combined}}&#11088; {{end}}{{.Name}}</span>
      <span class="card-games">{{.Games}} games</span></span>
    <span>
      <a href="{{.ID}}.ics" class="btn btn-primary" download>Download</a>
      <a href="webcal://{{trimScheme .URL}}" class="btn btn-secondary">Subscribe</a>
    </span>
  </div>
  {{end}}
</div>
{{end}}
{{end}}
<div class="instructions">
<h2>How to Subscribe</h2>
<ul>
<li><strong>Google Calendar:</strong> Other calendars (+) &rarr; From URL &rarr; paste URL</li>
<li><strong>Apple Calendar:</strong> File &rarr; New Calendar Subscription &rarr; paste URL</li>
<li><strong>iPhone/iPad:</strong> Tap Subscribe, or Settings &rarr; Calendar &rarr; Accounts &rarr; Add Subscribed Calendar</li>
<li><strong>Outlook:</strong> Add calendar &rarr; Subscribe from web</li>
</ul>
<p><strong>Tip:</strong> Calendars auto-update every 24 hours. Data refreshes every 3 hours.</p>
</div>
<p class="footer">Last updated: {{.Updated}}<br>Data from MetroWest Basketball &amp; SSYBL</p>
</body>
</html>
`))
