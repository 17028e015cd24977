// Copyright 2026 The AlpineAI Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resort

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpineai/alpine/pkg/telemetry"
)

func calmWeather() telemetry.WeatherData {
	return telemetry.WeatherData{
		Temperature:   -4,
		WindSpeed:     12,
		SnowIntensity: 0.5,
		Visibility:    8000,
	}
}

func TestRolesHaveCardsToolsAndInstructions(t *testing.T) {
	roles := []string{RoleWeather, RoleLifts, RoleSafety, RoleCoach, RoleAdvisor}
	for _, role := range roles {
		card, err := Card(role, "http://localhost:8001")
		require.NoError(t, err, role)
		assert.NoError(t, card.Validate(), role)
		assert.Equal(t, "http://localhost:8001", card.URL)
		assert.True(t, card.Capabilities.Streaming, role)

		instructions, err := Instructions(role)
		require.NoError(t, err, role)
		assert.NotEmpty(t, instructions, role)
	}

	// The advisor carries no local tools; its tools are its specialists.
	tc := telemetry.NewClient("http://localhost:1")
	for _, role := range roles[:4] {
		tools, err := Tools(role, tc)
		require.NoError(t, err, role)
		assert.NotEmpty(t, tools, role)
	}
	_, err := Tools(RoleAdvisor, tc)
	assert.Error(t, err)

	_, err = Card("dj", "")
	assert.Error(t, err)
}

func TestAssessStorm(t *testing.T) {
	w := calmWeather()
	verdict := AssessStorm(w)
	assert.False(t, verdict.StormIncoming)
	assert.Contains(t, verdict.Reason, "Conditions are good")

	w.WindSpeed = 55
	verdict = AssessStorm(w)
	assert.True(t, verdict.StormIncoming)
	assert.Contains(t, verdict.Reason, "Storm conditions detected")
	assert.Contains(t, verdict.Reason, "High wind speed")

	w = calmWeather()
	w.SnowIntensity = 3.5
	verdict = AssessStorm(w)
	assert.True(t, verdict.StormIncoming)
	assert.Contains(t, verdict.Reason, "Heavy snow intensity")

	w = calmWeather()
	w.Visibility = 300
	verdict = AssessStorm(w)
	assert.True(t, verdict.StormIncoming)
	assert.Contains(t, verdict.Reason, "Low visibility")
}

func TestAssessStorm_WarningTier(t *testing.T) {
	w := calmWeather()
	w.WindSpeed = 45
	verdict := AssessStorm(w)
	assert.False(t, verdict.StormIncoming)
	assert.Contains(t, verdict.Reason, "Monitoring conditions")
	assert.Contains(t, verdict.Reason, "Elevated wind speed")

	w = calmWeather()
	w.Visibility = 800
	verdict = AssessStorm(w)
	assert.False(t, verdict.StormIncoming)
	assert.Contains(t, verdict.Reason, "Reduced visibility")
}

func TestRiskScore(t *testing.T) {
	safety := telemetry.SafetyData{AvalancheRiskIndex: 0.2}

	// Calm weather adds nothing to the avalanche index.
	assert.InDelta(t, 0.2, RiskScore(calmWeather(), safety), 1e-9)

	// High wind, low visibility and heavy snow stack.
	w := telemetry.WeatherData{WindSpeed: 60, Visibility: 400, SnowIntensity: 4}
	assert.InDelta(t, 0.2+0.2+0.15+0.1, RiskScore(w, safety), 1e-9)

	// Moderate tiers contribute less.
	w = telemetry.WeatherData{WindSpeed: 35, Visibility: 900, SnowIntensity: 1}
	assert.InDelta(t, 0.2+0.1+0.05, RiskScore(w, safety), 1e-9)

	// The score never exceeds 1.
	extreme := telemetry.SafetyData{AvalancheRiskIndex: 0.95}
	w = telemetry.WeatherData{WindSpeed: 70, Visibility: 100, SnowIntensity: 5}
	assert.Equal(t, 1.0, RiskScore(w, extreme))
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, "low", RiskLevel(0.1))
	assert.Equal(t, "moderate", RiskLevel(0.3))
	assert.Equal(t, "high", RiskLevel(0.5))
	assert.Equal(t, "critical", RiskLevel(0.7))
	assert.Equal(t, "critical", RiskLevel(1.0))
}

func TestSlopeSafety(t *testing.T) {
	slopes := []telemetry.SlopeData{
		{SlopeID: "valley-run", Name: "Valley Run", Difficulty: telemetry.DifficultyGreen, IsOpen: true},
		{SlopeID: "summit-chute", Name: "Summit Chute", Difficulty: telemetry.DifficultyBlack, IsOpen: true},
		{SlopeID: "north-face", Name: "North Face", Difficulty: telemetry.DifficultyRed, IsOpen: false},
	}
	calm := calmWeather()
	lowRisk := telemetry.SafetyData{AvalancheRiskIndex: 0.1}

	verdict := SlopeSafety("valley-run", slopes, calm, lowRisk)
	assert.True(t, verdict.Safe)
	assert.Contains(t, verdict.Reason, "Valley Run")

	// Lookup is case-insensitive.
	assert.True(t, SlopeSafety("Valley-Run", slopes, calm, lowRisk).Safe)

	// A closed slope is never safe, whatever the conditions.
	verdict = SlopeSafety("north-face", slopes, calm, lowRisk)
	assert.False(t, verdict.Safe)
	assert.Contains(t, verdict.Reason, "closed")

	// Unknown slopes get maximum risk.
	verdict = SlopeSafety("moon-bowl", slopes, calm, lowRisk)
	assert.False(t, verdict.Safe)
	assert.Equal(t, 1.0, verdict.RiskScore)
	assert.Contains(t, verdict.Reason, "not found")

	// Black runs close out at a lower risk ceiling than greens.
	midRisk := telemetry.SafetyData{AvalancheRiskIndex: 0.55}
	assert.False(t, SlopeSafety("summit-chute", slopes, calm, midRisk).Safe)
	assert.True(t, SlopeSafety("valley-run", slopes, calm, midRisk).Safe)
}

func TestShortestQueue(t *testing.T) {
	lifts := []telemetry.LiftData{
		{LiftID: "gondola", Status: telemetry.LiftOpen, QueueLength: 12, ThroughputRate: 2800},
		{LiftID: "summit-express", Status: telemetry.LiftOpen, QueueLength: 4, ThroughputRate: 2400},
		{LiftID: "ridge-chair", Status: telemetry.LiftClosed, QueueLength: 0},
	}

	best := shortestQueue(lifts)
	require.NotNil(t, best)
	assert.Equal(t, "summit-express", best.LiftID)

	// Ties go to the faster lift.
	lifts[0].QueueLength = 4
	best = shortestQueue(lifts)
	require.NotNil(t, best)
	assert.Equal(t, "gondola", best.LiftID)

	assert.Nil(t, shortestQueue([]telemetry.LiftData{
		{LiftID: "ridge-chair", Status: telemetry.LiftMaintenance},
	}))
	assert.Nil(t, shortestQueue(nil))
}

func TestParsePreferences(t *testing.T) {
	p := parsePreferences("avoid_crowds, groomed_only")
	assert.True(t, p.AvoidCrowds)
	assert.True(t, p.GroomedOnly)

	p = parsePreferences("Avoid Crowds")
	assert.True(t, p.AvoidCrowds)
	assert.False(t, p.GroomedOnly)

	p = parsePreferences("groomed")
	assert.True(t, p.GroomedOnly)

	p = parsePreferences("")
	assert.False(t, p.AvoidCrowds)
	assert.False(t, p.GroomedOnly)
}

func TestNormalizeSkill(t *testing.T) {
	assert.Equal(t, "beginner", normalizeSkill("Beginner"))
	assert.Equal(t, "expert", normalizeSkill(" expert "))
	assert.Equal(t, "intermediate", normalizeSkill("ninja"))
	assert.Equal(t, "intermediate", normalizeSkill(""))
}

func TestAverageOpenQueue(t *testing.T) {
	lifts := []telemetry.LiftData{
		{Status: telemetry.LiftOpen, QueueLength: 10},
		{Status: telemetry.LiftOpen, QueueLength: 20},
		{Status: telemetry.LiftClosed, QueueLength: 99},
	}
	assert.InDelta(t, 15, averageOpenQueue(lifts), 1e-9)
	assert.Zero(t, averageOpenQueue(nil))
}

func TestBuildDayPlan(t *testing.T) {
	ranked := []rankedSlope{
		{SlopeID: "alpine-meadow", Name: "Alpine Meadow", Score: 80},
		{SlopeID: "sunrise-trail", Name: "Sunrise Trail", Score: 70},
		{SlopeID: "valley-run", Name: "Valley Run", Score: 60},
	}

	plan := buildDayPlan("intermediate", ranked)
	assert.Equal(t, "intermediate", plan["skill_level"])

	parts, ok := plan["plan"].(map[string]any)
	require.True(t, ok)

	morning := parts["morning"].(map[string]any)["slope"].(rankedSlope)
	midday := parts["midday"].(map[string]any)["slope"].(rankedSlope)
	afternoon := parts["afternoon"].(map[string]any)["slope"].(rankedSlope)

	assert.Equal(t, "valley-run", morning.SlopeID)   // easiest warm-up
	assert.Equal(t, "alpine-meadow", midday.SlopeID) // best run while fresh
	assert.Equal(t, "sunrise-trail", afternoon.SlopeID)
}

func TestBuildDayPlan_NoSlopes(t *testing.T) {
	plan := buildDayPlan("expert", nil)
	assert.Nil(t, plan["plan"])
	assert.Contains(t, plan["note"], "no suitable open slopes")
}

// telemetryStub serves fixed telemetry over HTTP for ranking tests.
func telemetryStub(t *testing.T, slopes []telemetry.SlopeData, lifts []telemetry.LiftData, safety telemetry.SafetyData) *telemetry.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/slopes", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(slopes)
	})
	mux.HandleFunc("/api/lifts", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(lifts)
	})
	mux.HandleFunc("/api/safety", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(safety)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return telemetry.NewClient(srv.URL)
}

func TestRankSlopes(t *testing.T) {
	slopes := []telemetry.SlopeData{
		{SlopeID: "valley-run", Name: "Valley Run", Difficulty: telemetry.DifficultyGreen, IsOpen: true, Groomed: true, SnowDepthCM: 80},
		{SlopeID: "alpine-meadow", Name: "Alpine Meadow", Difficulty: telemetry.DifficultyBlue, IsOpen: true, Groomed: false, SnowDepthCM: 100},
		{SlopeID: "north-face", Name: "North Face", Difficulty: telemetry.DifficultyRed, IsOpen: true, Groomed: false, SnowDepthCM: 120},
		{SlopeID: "timber-bowl", Name: "Timber Bowl", Difficulty: telemetry.DifficultyBlue, IsOpen: false, Groomed: true, SnowDepthCM: 110},
	}
	tc := telemetryStub(t, slopes, nil, telemetry.SafetyData{AvalancheRiskIndex: 0.1})

	ranked, err := rankSlopes(context.Background(), tc, "intermediate", preferences{})
	require.NoError(t, err)

	// Reds and closed slopes are filtered; the groomed green wins on score.
	require.Len(t, ranked, 2)
	assert.Equal(t, "valley-run", ranked[0].SlopeID)
	assert.InDelta(t, 50+15+8, ranked[0].Score, 1e-9)
	assert.Equal(t, "alpine-meadow", ranked[1].SlopeID)
	assert.InDelta(t, 50+10, ranked[1].Score, 1e-9)
}

func TestRankSlopes_GroomedOnlyFilters(t *testing.T) {
	slopes := []telemetry.SlopeData{
		{SlopeID: "valley-run", Name: "Valley Run", Difficulty: telemetry.DifficultyGreen, IsOpen: true, Groomed: true, SnowDepthCM: 80},
		{SlopeID: "sunrise-trail", Name: "Sunrise Trail", Difficulty: telemetry.DifficultyGreen, IsOpen: true, Groomed: false, SnowDepthCM: 90},
	}
	tc := telemetryStub(t, slopes, nil, telemetry.SafetyData{})

	ranked, err := rankSlopes(context.Background(), tc, "beginner", preferences{GroomedOnly: true})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "valley-run", ranked[0].SlopeID)
}

func TestRankSlopes_AvoidCrowdsPenalty(t *testing.T) {
	slopes := []telemetry.SlopeData{
		{SlopeID: "valley-run", Name: "Valley Run", Difficulty: telemetry.DifficultyGreen, IsOpen: true, SnowDepthCM: 100},
	}
	lifts := []telemetry.LiftData{
		{LiftID: "gondola", Status: telemetry.LiftOpen, QueueLength: 10},
	}
	tc := telemetryStub(t, slopes, lifts, telemetry.SafetyData{})

	ranked, err := rankSlopes(context.Background(), tc, "beginner", preferences{AvoidCrowds: true})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.InDelta(t, 50+10-30, ranked[0].Score, 1e-9)
	assert.Contains(t, ranked[0].Reason, "adjusted for crowds")
}

func TestRankSlopes_AvalanchePenalizesSteepTerrain(t *testing.T) {
	slopes := []telemetry.SlopeData{
		{SlopeID: "summit-chute", Name: "Summit Chute", Difficulty: telemetry.DifficultyBlack, IsOpen: true, SnowDepthCM: 150},
		{SlopeID: "north-face", Name: "North Face", Difficulty: telemetry.DifficultyRed, IsOpen: true, SnowDepthCM: 150},
	}
	tc := telemetryStub(t, slopes, nil, telemetry.SafetyData{AvalancheRiskIndex: 0.6})

	ranked, err := rankSlopes(context.Background(), tc, "expert", preferences{})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	for _, r := range ranked {
		assert.InDelta(t, 50+15-25, r.Score, 1e-9)
		assert.Contains(t, r.Reason, "avalanche risk")
	}
}
