package telemetry

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Drift parameters for the random walks. Values are per update tick.
const (
	temperatureDrift   = 0.5
	windSpeedDrift     = 3.0
	snowIntensityDrift = 0.3
	visibilityDrift    = 300.0

	queueDrift           = 10
	statusChangeProb     = 0.02
	riskDrift            = 0.02
	incidentProb         = 0.05
	depthDrift           = 0.3
	reopenProb           = 0.10
	groomProb            = 0.02
	ungroomProb          = 0.01
	maxIncidentsRetained = 20
)

// Generator evolves synthetic resort telemetry with gradual random walks so
// consecutive reads look like a live mountain rather than noise.
type Generator struct {
	mu sync.RWMutex

	weather   WeatherData
	lifts     []LiftData
	safety    SafetyData
	slopes    []SlopeData
	incidents []IncidentReport
	now       time.Time

	rng *rand.Rand
}

// NewGenerator seeds a generator with realistic starting values.
func NewGenerator() *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now(),
	}

	g.weather = WeatherData{
		Temperature:   g.uniform(-10, 0),
		WindSpeed:     g.uniform(5, 25),
		SnowIntensity: g.uniform(0, 2),
		Visibility:    g.uniform(5000, 10000),
		Timestamp:     g.now,
	}
	g.safety = SafetyData{
		AvalancheRiskIndex: g.uniform(0.1, 0.4),
		IncidentReports:    []IncidentReport{},
		Timestamp:          g.now,
	}
	g.lifts = g.initialLifts()
	g.slopes = g.initialSlopes()

	return g
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) initialLifts() []LiftData {
	configs := []struct {
		id, name   string
		throughput int
	}{
		{"gondola-1", "Summit Gondola", 2400},
		{"chairlift-alpha", "Alpine Express", 1800},
		{"chairlift-bravo", "Eagle Chair", 1600},
		{"t-bar-1", "Beginner T-Bar", 800},
		{"magic-carpet-1", "Kids Magic Carpet", 400},
	}

	lifts := make([]LiftData, 0, len(configs))
	for _, c := range configs {
		queue := 10 + g.rng.Intn(71)
		lifts = append(lifts, LiftData{
			LiftID:          c.id,
			Name:            c.name,
			Status:          LiftOpen,
			QueueLength:     queue,
			WaitTimeMinutes: roundTenth(float64(queue) / float64(c.throughput) * 60),
			ThroughputRate:  c.throughput,
			Timestamp:       g.now,
		})
	}
	return lifts
}

func (g *Generator) initialSlopes() []SlopeData {
	configs := []struct {
		id, name, difficulty string
		groomed              bool
		baseDepth            float64
	}{
		{"valley-run", "Valley Run", DifficultyGreen, true, 85},
		{"sunrise-trail", "Sunrise Trail", DifficultyGreen, true, 90},
		{"alpine-meadow", "Alpine Meadow", DifficultyBlue, true, 105},
		{"eagle-ridge", "Eagle Ridge", DifficultyBlue, false, 95},
		{"timber-bowl", "Timber Bowl", DifficultyBlue, false, 110},
		{"north-face", "North Face", DifficultyRed, false, 120},
		{"summit-chute", "Summit Chute", DifficultyBlack, false, 130},
		{"avalanche-alley", "Avalanche Alley", DifficultyBlack, false, 125},
	}

	slopes := make([]SlopeData, 0, len(configs))
	for _, c := range configs {
		slopes = append(slopes, SlopeData{
			SlopeID:     c.id,
			Name:        c.name,
			Difficulty:  c.difficulty,
			IsOpen:      true,
			Groomed:     c.groomed,
			SnowDepthCM: roundTenth(c.baseDepth + g.uniform(-10, 10)),
		})
	}
	return slopes
}

// Run updates the data on a randomized 1-3s interval until ctx is canceled.
func (g *Generator) Run(ctx context.Context) {
	slog.Info("starting telemetry generation loop")
	for {
		interval := time.Duration(g.uniform(1, 3) * float64(time.Second))
		select {
		case <-ctx.Done():
			slog.Info("stopping telemetry generation loop")
			return
		case <-time.After(interval):
			g.Update()
		}
	}
}

// Update advances every data family by one tick.
func (g *Generator) Update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.now = time.Now()
	g.updateWeather()
	g.updateLifts()
	g.updateSafety()
	g.updateSlopes()
}

func (g *Generator) updateWeather() {
	w := &g.weather

	w.Temperature = clamp(w.Temperature+g.uniform(-temperatureDrift, temperatureDrift), -15, 5)
	w.WindSpeed = clamp(w.WindSpeed+g.uniform(-windSpeedDrift, windSpeedDrift), 0, 80)
	w.SnowIntensity = clamp(w.SnowIntensity+g.uniform(-snowIntensityDrift, snowIntensityDrift), 0, 5)

	visDelta := g.uniform(-visibilityDrift, visibilityDrift)
	// Heavy snow and strong wind both push visibility down.
	if w.SnowIntensity > 2 {
		visDelta -= visibilityDrift * 2
	}
	if w.WindSpeed > 40 {
		visDelta -= visibilityDrift * 1.5
	}
	w.Visibility = clamp(w.Visibility+visDelta, 50, 10000)
	w.Timestamp = g.now
}

func (g *Generator) updateLifts() {
	for i := range g.lifts {
		lift := &g.lifts[i]

		lift.QueueLength = clampInt(lift.QueueLength+g.rng.Intn(2*queueDrift+1)-queueDrift, 0, 200)

		if g.rng.Float64() < statusChangeProb {
			if lift.Status == LiftOpen {
				if g.rng.Intn(2) == 0 {
					lift.Status = LiftClosed
				} else {
					lift.Status = LiftMaintenance
				}
			} else {
				lift.Status = LiftOpen
			}
		}

		if lift.Status == LiftOpen && lift.ThroughputRate > 0 {
			lift.WaitTimeMinutes = roundTenth(float64(lift.QueueLength) / float64(lift.ThroughputRate) * 60)
		} else {
			lift.WaitTimeMinutes = 0
		}
		lift.Timestamp = g.now
	}
}

func (g *Generator) updateSafety() {
	riskDelta := g.uniform(-riskDrift, riskDrift)
	if g.weather.WindSpeed > 50 {
		riskDelta += riskDrift * 0.5
	}
	if g.weather.SnowIntensity > 3 {
		riskDelta += riskDrift * 0.5
	}
	g.safety.AvalancheRiskIndex = clamp(g.safety.AvalancheRiskIndex+riskDelta, 0, 1)

	if g.rng.Float64() < incidentProb {
		g.incidents = append(g.incidents, g.generateIncident())
		if len(g.incidents) > maxIncidentsRetained {
			g.incidents = g.incidents[len(g.incidents)-maxIncidentsRetained:]
		}
	}

	g.safety.IncidentReports = append([]IncidentReport(nil), g.incidents...)
	g.safety.Timestamp = g.now
}

func (g *Generator) generateIncident() IncidentReport {
	types := []string{"minor_injury", "collision", "lost_person", "equipment_failure"}
	if g.safety.AvalancheRiskIndex > 0.7 {
		// Weighted toward avalanche warnings under high risk.
		types = append(types, "avalanche_warning", "avalanche_warning")
	}
	incidentType := types[g.rng.Intn(len(types))]

	severities := map[string][]string{
		"minor_injury":      {SeverityLow, SeverityMedium},
		"collision":         {SeverityLow, SeverityMedium, SeverityHigh},
		"lost_person":       {SeverityMedium, SeverityHigh},
		"equipment_failure": {SeverityLow, SeverityMedium, SeverityHigh},
		"avalanche_warning": {SeverityHigh, SeverityCritical},
	}[incidentType]

	locations := make([]string, 0, len(g.slopes)+len(g.lifts))
	for _, s := range g.slopes {
		locations = append(locations, s.Name)
	}
	for _, l := range g.lifts {
		locations = append(locations, l.Name)
	}

	return IncidentReport{
		IncidentType: incidentType,
		Location:     locations[g.rng.Intn(len(locations))],
		Severity:     severities[g.rng.Intn(len(severities))],
		Timestamp:    g.now,
	}
}

func (g *Generator) updateSlopes() {
	for i := range g.slopes {
		slope := &g.slopes[i]

		depthDelta := g.uniform(-depthDrift, depthDrift)
		if g.weather.SnowIntensity > 1 {
			depthDelta += g.weather.SnowIntensity * 0.1
		}
		slope.SnowDepthCM = roundTenth(max(0, slope.SnowDepthCM+depthDelta))

		if slope.Difficulty == DifficultyBlack && g.safety.AvalancheRiskIndex > 0.8 {
			slope.IsOpen = false
		}
		if (slope.Difficulty == DifficultyBlack || slope.Difficulty == DifficultyRed) && g.weather.WindSpeed > 60 {
			slope.IsOpen = false
		}

		if !slope.IsOpen && g.rng.Float64() < reopenProb {
			blackRisk := slope.Difficulty == DifficultyBlack && g.safety.AvalancheRiskIndex > 0.8
			windRisk := (slope.Difficulty == DifficultyBlack || slope.Difficulty == DifficultyRed) && g.weather.WindSpeed > 60
			if !blackRisk && !windRisk {
				slope.IsOpen = true
			}
		}

		if (slope.Difficulty == DifficultyGreen || slope.Difficulty == DifficultyBlue) && g.rng.Float64() < groomProb {
			slope.Groomed = true
		} else if slope.Groomed && g.rng.Float64() < ungroomProb {
			slope.Groomed = false
		}
	}
}

// Weather returns the current weather snapshot.
func (g *Generator) Weather() WeatherData {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.weather
}

// Lifts returns the current lift snapshots.
func (g *Generator) Lifts() []LiftData {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]LiftData(nil), g.lifts...)
}

// Safety returns the current safety snapshot.
func (g *Generator) Safety() SafetyData {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := g.safety
	out.IncidentReports = append([]IncidentReport(nil), g.safety.IncidentReports...)
	return out
}

// Slopes returns the current slope snapshots.
func (g *Generator) Slopes() []SlopeData {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]SlopeData(nil), g.slopes...)
}

// State returns a complete snapshot.
func (g *Generator) State() ResortState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return ResortState{
		Weather:   g.weather,
		Lifts:     append([]LiftData(nil), g.lifts...),
		Safety:    g.safety,
		Slopes:    append([]SlopeData(nil), g.slopes...),
		Timestamp: g.now,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
