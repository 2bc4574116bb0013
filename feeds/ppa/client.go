// Package ppa fetches the hourly PPA (renewable generation) availability
// profile for a weather year and remaps it onto the optimization year,
// grounded on original_source/Quellcode/get_data/ppa_profiles.py's
// renewables.ninja client, restructured in the teacher's HTTP-client
// idiom (context-scoped requests, typed errors, retries with a fixed wait).
package ppa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ebp-rad/h2dispatch/hourtable"
	"github.com/ebp-rad/h2dispatch/weathermap"
)

const baseURL = "https://www.renewables.ninja/api/"

// APIError represents an error returned by the renewables.ninja API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ppa: API error %d: %s", e.StatusCode, e.Message)
}

// Client fetches PV/wind generation profiles from renewables.ninja.
type Client struct {
	Token      string
	Lat, Lon   float64
	HTTPClient *http.Client
	Retries    int
	Wait       time.Duration
}

// NewClient returns a Client with the original loader's defaults:
// two attempts, a two-second wait between them.
func NewClient(token string, lat, lon float64) *Client {
	return &Client{
		Token:      token,
		Lat:        lat,
		Lon:        lon,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Retries:    2,
		Wait:       2 * time.Second,
	}
}

type generationResponse struct {
	Data map[string]struct {
		Electricity float64 `json:"electricity"`
	} `json:"data"`
}

// fetch retrieves raw hourly electricity output (kW per installed
// capacity) for a single weather year, retrying transient failures.
func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) (map[string]float64, error) {
	reqURL := baseURL + endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.Retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("ppa: build request: %w", err)
		}
		req.Header.Set("Authorization", "Token "+c.Token)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(c.Wait)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: string(body)}
			time.Sleep(c.Wait)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("ppa: read response body: %w", err)
			time.Sleep(c.Wait)
			continue
		}

		var parsed generationResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("ppa: decode response: %w", err)
		}

		out := make(map[string]float64, len(parsed.Data))
		for ts, v := range parsed.Data {
			out[ts] = v.Electricity
		}
		return out, nil
	}
	return nil, fmt.Errorf("ppa: request failed after %d attempts: %w", c.Retries, lastErr)
}

// Mode selects which generator output the profile represents.
type Mode int

const (
	PV Mode = iota
	Wind
)

// LoadForOptimizationYear fetches the weather-year profile mapped to
// optYear, converts kW to MWh, and remaps timestamps onto optYear,
// de-duplicating a 29-February collision by keeping the first
// occurrence — the contract of spec §6.1.
func (c *Client) LoadForOptimizationYear(ctx context.Context, optYear int, mode Mode) ([]hourtable.PPAPoint, error) {
	weatherYear, ok := weathermap.WeatherYear(optYear)
	if !ok {
		return nil, fmt.Errorf("ppa: no weather mapping for optimization year %d", optYear)
	}

	endpoint := "data/pv"
	params := url.Values{
		"capacity":     {"20.0"},
		"system_loss":  {"0.1"},
		"tracking":     {"0"},
		"tilt":         {"18"},
		"azim":         {"180"},
		"dataset":      {"merra2"},
		"format":       {"json"},
		"lat":          {strconv.FormatFloat(c.Lat, 'f', -1, 64)},
		"lon":          {strconv.FormatFloat(c.Lon, 'f', -1, 64)},
		"date_from":    {fmt.Sprintf("%d-01-01", weatherYear)},
		"date_to":      {fmt.Sprintf("%d-12-31", weatherYear)},
	}
	if mode == Wind {
		endpoint = "data/wind"
		params.Set("height", "100")
		params.Set("turbine", "Vestas V90 2000")
		params.Del("system_loss")
		params.Del("tracking")
		params.Del("tilt")
		params.Del("azim")
		params.Del("dataset")
	}

	raw, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	return remapAndDedup(raw, optYear), nil
}

// remapAndDedup converts raw kW-keyed-by-timestamp samples into
// optimization-year-stamped MWh points, dividing by 1000 and keeping
// the first occurrence of any instant collision introduced when the
// source weather year is a leap year and optYear is not.
func remapAndDedup(raw map[string]float64, optYear int) []hourtable.PPAPoint {
	type sample struct {
		instant time.Time
		value   float64
	}
	samples := make([]struct {
		instant time.Time
		value   float64
	}, 0, len(raw))
	for ts, kw := range raw {
		t, err := time.Parse("2006-01-02 15:04:05", ts)
		if err != nil {
			continue
		}
		samples = append(samples, sample{instant: t, value: kw})
	}

	seen := make(map[time.Time]bool, len(samples))
	out := make([]hourtable.PPAPoint, 0, len(samples))
	for _, s := range orderedByInstant(samples) {
		remapped := safeReplaceYear(s.instant, optYear)
		if seen[remapped] {
			continue // leap-day collision: keep the first occurrence
		}
		seen[remapped] = true
		out = append(out, hourtable.PPAPoint{Instant: remapped, GAvail: s.value / 1000.0})
	}
	return out
}

func orderedByInstant(samples []struct {
	instant time.Time
	value   float64
}) []struct {
	instant time.Time
	value   float64
} {
	out := append([]struct {
		instant time.Time
		value   float64
	}(nil), samples...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].instant.Before(out[j-1].instant); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func safeReplaceYear(t time.Time, year int) time.Time {
	if t.Month() == time.February && t.Day() == 29 && !isLeap(year) {
		return time.Date(year, time.February, 28, t.Hour(), 0, 0, 0, time.UTC)
	}
	return time.Date(year, t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
