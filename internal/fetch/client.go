package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	appLog "github.com/aknowles/ssbball/internal/log"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	defaultRequestsPerMinute = 30
)

// Client is the rate-limited HTTP client for the sportsite2 API and the
// league launch pages. A token bucket keeps the scraper polite; the
// batch is sequential anyway.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client. requestsPerMinute <= 0 applies the
// default.
func NewClient(requestsPerMinute int) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

// GetPage fetches a league page (e.g. launch.php) as HTML.
func (c *Client) GetPage(ctx context.Context, pageURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("page fetch failed: " + resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// postForm performs a form-encoded POST against a sportsite2 endpoint
// with the Origin/Referer the API expects for the given league.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, lg League) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Origin", lg.Origin)
	req.Header.Set("Referer", lg.Origin+"/")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("api request failed: " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// FetchSchedule fetches the raw schedule payload for one team.
func (c *Client) FetchSchedule(ctx context.Context, lg League, teamNo, season string) ([]byte, error) {
	form := url.Values{
		"clientid": {lg.ID},
		"yrseason": {season},
		"teamno":   {teamNo},
	}
	appLog.Info("fetching schedule", "league", lg.ID, "team_no", teamNo, "season", season)
	return c.postForm(ctx, teamScheduleURL, form, lg)
}

// TeamRecord is one discovered roster from the team discovery endpoint.
type TeamRecord struct {
	TeamNo       string `json:"teamno"`
	TeamName     string `json:"teamname"`
	DivisionNo   string `json:"divisionno"`
	DivisionTier string `json:"divisiontier"`
}

// DiscoverTeams lists the rosters for a town/grade/gender combination.
func (c *Client) DiscoverTeams(ctx context.Context, lg League, townNo string, grade int, gender, season string) ([]TeamRecord, error) {
	form := url.Values{
		"clientid": {lg.ID},
		"yrseason": {season},
		"townno":   {townNo},
		"grade":    {strconv.Itoa(grade)},
		"gender":   {gender},
	}
	appLog.Info("discovering teams", "league", lg.ID, "grade", grade, "gender", gender, "town_no", townNo)

	body, err := c.postForm(ctx, teamDiscoveryURL, form, lg)
	if err != nil {
		return nil, err
	}

	var records []TeamRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, err
	}

	out := records[:0]
	for _, r := range records {
		if r.TeamNo == "" {
			continue
		}
		r.TeamName = strings.TrimSpace(r.TeamName)
		out = append(out, r)
	}
	appLog.Info("teams discovered", "league", lg.ID, "count", len(out))
	return out, nil
}
