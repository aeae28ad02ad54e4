// Package timetable fetches the official London Unified Prayer Timetable
// (LUPT) for a given calendar day.
//
// The API returns "HH:MM" local wall-clock strings. Any non-200 status,
// malformed JSON or unrecognized payload shape is reported as an error;
// callers treat every error as "timetable unavailable" and fall back to
// pure astronomical computation.
package timetable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.londonprayertimes.com/api/times/"

// Row holds the official instants for one calendar day, localized to the
// configured zone.
type Row struct {
	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
}

// Client is the LUPT HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	city       string
	loc        *time.Location
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a LUPT client with rate limiting. An empty apiKey is
// allowed; every fetch will then fail fast so the fallback path is taken.
func NewClient(apiKey string, loc *time.Location, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		city:       "london",
		loc:        loc,
		limiter:    rate.NewLimiter(rate.Limit(1), 2),
		logger:     logger,
	}
}

// rawRow matches the per-day JSON object. The API has shipped both "maghrib"
// and "magrib" spellings, and optionally reports both asr conventions.
type rawRow struct {
	Fajr      string `json:"fajr"`
	Sunrise   string `json:"sunrise"`
	Dhuhr     string `json:"dhuhr"`
	Asr       string `json:"asr"`
	AsrMithl1 string `json:"asr_mithl1"`
	AsrMithl2 string `json:"asr_mithl2"`
	Maghrib   string `json:"maghrib"`
	Magrib    string `json:"magrib"`
	Isha      string `json:"isha"`
}

// Day fetches the official row for the given calendar day.
func (c *Client) Day(ctx context.Context, day time.Time) (*Row, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no LUPT API key configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("key", c.apiKey)
	params.Set("date", day.Format("2006-01-02"))
	params.Set("city", c.city)
	params.Set("24hours", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LUPT returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	raw, err := extractRow(body)
	if err != nil {
		return nil, err
	}
	return c.parseRow(raw, day)
}

// extractRow handles both payload shapes: a flat per-day object, and the
// legacy {"times": [row, ...]} wrapper.
func extractRow(body []byte) (*rawRow, error) {
	var flat rawRow
	if err := json.Unmarshal(body, &flat); err == nil && flat.Fajr != "" {
		return &flat, nil
	}

	var wrapped struct {
		Times []rawRow `json:"times"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Times) > 0 {
		return &wrapped.Times[0], nil
	}

	return nil, fmt.Errorf("unrecognized LUPT payload shape: %s", truncate(body, 200))
}

func (c *Client) parseRow(raw *rawRow, day time.Time) (*Row, error) {
	maghrib := raw.Maghrib
	if maghrib == "" {
		maghrib = raw.Magrib
	}

	fields := map[string]string{
		"fajr":    raw.Fajr,
		"sunrise": raw.Sunrise,
		"dhuhr":   raw.Dhuhr,
		"asr":     raw.Asr,
		"maghrib": maghrib,
		"isha":    raw.Isha,
	}

	parsed := make(map[string]time.Time, len(fields))
	for name, hhmm := range fields {
		t, err := atClock(hhmm, day, c.loc)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		parsed[name] = t
	}

	c.logger.Debug("LUPT row",
		"date", day.Format("2006-01-02"),
		"fajr", raw.Fajr, "sunrise", raw.Sunrise, "dhuhr", raw.Dhuhr,
		"asr", raw.Asr, "maghrib", maghrib, "isha", raw.Isha)

	return &Row{
		Fajr:    parsed["fajr"],
		Sunrise: parsed["sunrise"],
		Dhuhr:   parsed["dhuhr"],
		Asr:     parsed["asr"],
		Maghrib: parsed["maghrib"],
		Isha:    parsed["isha"],
	}, nil
}

// atClock turns an "HH:MM" wall-clock string into an instant on the given
// day in loc.
func atClock(hhmm string, day time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
