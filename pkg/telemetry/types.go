// Package telemetry synthesizes and serves resort telemetry: weather, lift
// operations, safety data, and slope conditions. Specialist agents poll it
// over HTTP; it is a pure data source with no protocol role.
package telemetry

import "time"

// Lift statuses.
const (
	LiftOpen        = "open"
	LiftClosed      = "closed"
	LiftMaintenance = "maintenance"
)

// Slope difficulties, easiest first.
const (
	DifficultyGreen = "green"
	DifficultyBlue  = "blue"
	DifficultyRed   = "red"
	DifficultyBlack = "black"
)

// Incident severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// WeatherData is the current weather at the resort.
type WeatherData struct {
	Temperature   float64   `json:"temperature"`    // Celsius, -15..5
	WindSpeed     float64   `json:"wind_speed"`     // km/h, 0..80
	SnowIntensity float64   `json:"snow_intensity"` // cm/h, 0..5
	Visibility    float64   `json:"visibility"`     // meters, 50..10000
	Timestamp     time.Time `json:"timestamp"`
}

// LiftData is the state of a single lift.
type LiftData struct {
	LiftID          string    `json:"lift_id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"` // open | closed | maintenance
	QueueLength     int       `json:"queue_length"`
	WaitTimeMinutes float64   `json:"wait_time_minutes"`
	ThroughputRate  int       `json:"throughput_rate"` // people per hour
	Timestamp       time.Time `json:"timestamp"`
}

// IncidentReport is one recent safety incident.
type IncidentReport struct {
	IncidentType string    `json:"incident_type"`
	Location     string    `json:"location"`
	Severity     string    `json:"severity"`
	Timestamp    time.Time `json:"timestamp"`
}

// SafetyData is the resort-wide risk picture.
type SafetyData struct {
	AvalancheRiskIndex float64          `json:"avalanche_risk_index"` // 0.0 safe .. 1.0 extreme
	IncidentReports    []IncidentReport `json:"incident_reports"`
	Timestamp          time.Time        `json:"timestamp"`
}

// SlopeData is the state of a single slope.
type SlopeData struct {
	SlopeID     string  `json:"slope_id"`
	Name        string  `json:"name"`
	Difficulty  string  `json:"difficulty"` // green | blue | red | black
	IsOpen      bool    `json:"is_open"`
	Groomed     bool    `json:"groomed"`
	SnowDepthCM float64 `json:"snow_depth_cm"`
}

// ResortState is a complete snapshot.
type ResortState struct {
	Weather   WeatherData `json:"weather"`
	Lifts     []LiftData  `json:"lifts"`
	Safety    SafetyData  `json:"safety"`
	Slopes    []SlopeData `json:"slopes"`
	Timestamp time.Time   `json:"timestamp"`
}
