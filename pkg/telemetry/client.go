package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// EnvTelemetryURL overrides the telemetry service base URL.
const EnvTelemetryURL = "ALPINE_TELEMETRY_URL"

const (
	defaultBaseURL       = "http://localhost:8080"
	defaultClientTimeout = 10 * time.Second
)

// Client polls the telemetry service. When the service is unreachable it
// returns plausible fallback data with a logged warning, so specialists keep
// answering during an outage instead of failing the user's turn.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a telemetry client. An empty baseURL falls back to the
// ALPINE_TELEMETRY_URL environment variable, then to localhost.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv(EnvTelemetryURL)
	}
	if baseURL == "" {
		slog.Warn("telemetry service URL not configured, using fallback", "url", defaultBaseURL)
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building telemetry request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// Weather returns current conditions, or fallback data when the service is
// unreachable. The second return reports whether live data was used.
func (c *Client) Weather(ctx context.Context) (WeatherData, bool) {
	var w WeatherData
	if err := c.get(ctx, "/api/weather", &w); err != nil {
		slog.Warn("telemetry unavailable, using fallback weather", "error", err)
		return WeatherData{
			Temperature:   -5.0,
			WindSpeed:     15.0,
			SnowIntensity: 1,
			Visibility:    5000,
			Timestamp:     time.Now(),
		}, false
	}
	return w, true
}

// Lifts returns current lift states; empty with false when unreachable.
func (c *Client) Lifts(ctx context.Context) ([]LiftData, bool) {
	var lifts []LiftData
	if err := c.get(ctx, "/api/lifts", &lifts); err != nil {
		slog.Warn("telemetry unavailable, no lift data", "error", err)
		return nil, false
	}
	return lifts, true
}

// Safety returns the risk picture, or conservative fallback data.
func (c *Client) Safety(ctx context.Context) (SafetyData, bool) {
	var s SafetyData
	if err := c.get(ctx, "/api/safety", &s); err != nil {
		slog.Warn("telemetry unavailable, using fallback safety data", "error", err)
		return SafetyData{
			AvalancheRiskIndex: 0.5,
			Timestamp:          time.Now(),
		}, false
	}
	return s, true
}

// Slopes returns current slope states; empty with false when unreachable.
func (c *Client) Slopes(ctx context.Context) ([]SlopeData, bool) {
	var slopes []SlopeData
	if err := c.get(ctx, "/api/slopes", &slopes); err != nil {
		slog.Warn("telemetry unavailable, no slope data", "error", err)
		return nil, false
	}
	return slopes, true
}
