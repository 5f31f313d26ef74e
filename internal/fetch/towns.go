package fetch

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	appLog "github.com/aknowles/ssbball/internal/log"
)

// knownTowns is the hardcoded lookup of last resort, used only when
// both the static page and the rendered page fail to produce a town
// dropdown.
var knownTowns = map[string]map[string]string{
	"ssybl":    {"milton": "3553"},
	"metrowbb": {"milton": "3488"},
}

// ParseTowns extracts town name to town id from a league launch page.
// It prefers the dedicated town <select> elements and falls back to
// scanning every option on the page with stricter filters.
func ParseTowns(html string) map[string]string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	towns := map[string]string{}
	collect := func(sel string, strict bool) {
		doc.Find(sel).Each(func(_ int, opt *goquery.Selection) {
			id, ok := opt.Attr("value")
			if !ok {
				return
			}
			name := strings.TrimSpace(opt.Text())
			if !townOption(id, name, strict) {
				return
			}
			// Prefer 4-digit ids when the same name appears twice.
			if _, seen := towns[name]; !seen || len(id) == 4 {
				towns[name] = id
			}
		})
	}

	collect("select#inputTown option", false)
	if len(towns) == 0 {
		collect("select#popupTown option", false)
	}
	if len(towns) == 0 {
		collect("option", true)
	}
	return towns
}

// townOption filters out "Choose a town..." placeholders and non-town
// options. Strict mode additionally requires a 4+ digit id and a
// capitalized name, for when we scan the whole page.
func townOption(id, name string, strict bool) bool {
	if id == "" || name == "" {
		return false
	}
	for _, r := range id {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	if strings.HasPrefix(strings.ToLower(name), "choose") {
		return false
	}
	if strict {
		return len(name) > 2 && len(id) >= 4 && unicode.IsUpper(rune(name[0]))
	}
	return len(name) > 1
}

// TownID resolves the town id for a league. Order of attempts:
//
//  1. fetch the launch page and parse its dropdown (always up to date)
//  2. render the page in headless Chromium, for leagues whose dropdown
//     is populated by JavaScript and absent from the static HTML
//  3. the hardcoded knownTowns fallback
func TownID(ctx context.Context, c *Client, lg League, townName string) (string, error) {
	appLog.Info("resolving town id", "league", lg.ID, "town", townName)

	html, err := c.GetPage(ctx, lg.URL)
	if err != nil {
		appLog.Warn("league page fetch failed", "league", lg.ID, "err", err)
	}

	towns := ParseTowns(html)
	if len(towns) == 0 {
		appLog.Info("no towns in static page, rendering in browser", "league", lg.ID)
		rendered, rerr := RenderedHTML(ctx, lg.URL, 0)
		if rerr != nil {
			appLog.Warn("browser render failed", "league", lg.ID, "err", rerr)
		} else {
			towns = ParseTowns(rendered)
		}
	}
	appLog.Info("towns parsed", "league", lg.ID, "count", len(towns))

	if id, ok := matchTown(towns, townName); ok {
		return id, nil
	}

	if byName, ok := knownTowns[lg.ID]; ok {
		if id, ok := byName[strings.ToLower(townName)]; ok {
			appLog.Warn("using hardcoded town id fallback", "league", lg.ID, "town", townName, "town_no", id)
			return id, nil
		}
	}

	return "", fmt.Errorf("town %q not found in %s", townName, lg.Name)
}

// matchTown looks up a town case-insensitively, trying an exact match
// before a partial one.
func matchTown(towns map[string]string, townName string) (string, bool) {
	want := strings.ToLower(townName)
	for name, id := range towns {
		if strings.ToLower(name) == want {
			return id, true
		}
	}
	for name, id := range towns {
		if strings.Contains(strings.ToLower(name), want) {
			appLog.Info("partial town match", "wanted", townName, "matched", name)
			return id, true
		}
	}
	return "", false
}
