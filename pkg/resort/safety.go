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
	"strings"

	"github.com/alpineai/alpine/pkg/a2a"
	"github.com/alpineai/alpine/pkg/telemetry"
	"github.com/alpineai/alpine/pkg/tool"
	"github.com/alpineai/alpine/pkg/tool/functiontool"
)

var safetyCard = a2a.AgentCard{
	Name:               "Safety Agent",
	Description:        "Evaluates avalanche risk, slope safety, and closures across the resort.",
	Version:            Version,
	Capabilities:       defaultCapabilities(),
	DefaultInputModes:  []string{"text"},
	DefaultOutputModes: []string{"text"},
	Skills: []a2a.AgentSkill{
		{
			Name:        "risk_evaluation",
			Description: "Score current avalanche and conditions risk for the resort or an area",
			Examples:    []string{"How risky is it out there?", "What's the avalanche risk on the north face?"},
		},
		{
			Name:        "slope_safety",
			Description: "Judge whether a specific slope is safe to ski right now",
			Examples:    []string{"Is Summit Chute safe?", "Can I ski Avalanche Alley today?"},
		},
		{
			Name:        "closures",
			Description: "List slopes currently closed",
			Examples:    []string{"Which runs are closed?"},
		},
	},
}

const safetyInstructions = `You are the Safety Agent for an alpine ski resort.
Assess avalanche risk, slope safety, and closures using your tools. Always
fetch fresh data before answering. Be conservative: when risk is high or
data is uncertain, advise against skiing the slope and say why. Never tell a
skier a closed slope is safe.`

// Per-difficulty risk ceilings for is_slope_safe. A slope is safe only while
// the composite risk score stays below its difficulty's ceiling.
var safeRiskThresholds = map[string]float64{
	telemetry.DifficultyBlack: 0.5,
	telemetry.DifficultyRed:   0.6,
	telemetry.DifficultyBlue:  0.7,
	telemetry.DifficultyGreen: 0.8,
}

type evaluateRiskArgs struct {
	Area string `json:"area,omitempty" jsonschema:"description=Area or slope name to evaluate; omit or use 'all' for the whole resort"`
}

type slopeSafeArgs struct {
	SlopeID string `json:"slope_id" jsonschema:"description=Slope id to check (e.g. north-face),required"`
}

// SafetyTools builds the safety specialist's tool set over the telemetry
// client.
func SafetyTools(tc *telemetry.Client) []tool.Tool {
	return []tool.Tool{
		functiontool.MustNew("evaluate_risk",
			"Evaluate the current safety risk level for the resort or a named area",
			func(ctx context.Context, args evaluateRiskArgs) (string, error) {
				weather, _ := tc.Weather(ctx)
				safety, live := tc.Safety(ctx)

				score := RiskScore(weather, safety)
				area := args.Area
				if area == "" {
					area = "all"
				}

				incidents := safety.IncidentReports
				if area != "all" {
					filtered := incidents[:0:0]
					for _, inc := range incidents {
						if strings.Contains(strings.ToLower(inc.Location), strings.ToLower(area)) {
							filtered = append(filtered, inc)
						}
					}
					incidents = filtered
				}

				return asJSON(map[string]any{
					"area":                 area,
					"risk_score":           score,
					"risk_level":           RiskLevel(score),
					"avalanche_risk_index": safety.AvalancheRiskIndex,
					"recent_incidents":     incidents,
					"live_data":            live,
				})
			}),
		functiontool.MustNew("is_slope_safe",
			"Check whether a specific slope is safe to ski given current conditions and risk",
			func(ctx context.Context, args slopeSafeArgs) (string, error) {
				weather, _ := tc.Weather(ctx)
				safety, _ := tc.Safety(ctx)
				slopes, live := tc.Slopes(ctx)

				verdict := SlopeSafety(args.SlopeID, slopes, weather, safety)
				return asJSON(map[string]any{
					"slope_id":   args.SlopeID,
					"is_safe":    verdict.Safe,
					"risk_score": verdict.RiskScore,
					"reason":     verdict.Reason,
					"live_data":  live,
				})
			}),
		functiontool.MustNew("get_closed_slopes",
			"List all slopes currently closed",
			func(ctx context.Context, _ struct{}) (string, error) {
				slopes, live := tc.Slopes(ctx)
				closed := make([]telemetry.SlopeData, 0)
				for _, s := range slopes {
					if !s.IsOpen {
						closed = append(closed, s)
					}
				}
				return asJSON(map[string]any{
					"closed_slopes": closed,
					"total_closed":  len(closed),
					"live_data":     live,
				})
			}),
	}
}

// RiskScore folds weather conditions into the avalanche index and clamps the
// result to [0, 1].
func RiskScore(w telemetry.WeatherData, s telemetry.SafetyData) float64 {
	score := s.AvalancheRiskIndex

	switch {
	case w.WindSpeed > 50:
		score += 0.2
	case w.WindSpeed > 30:
		score += 0.1
	}
	switch {
	case w.Visibility < 500:
		score += 0.15
	case w.Visibility < 1000:
		score += 0.05
	}
	if w.SnowIntensity > 3 {
		score += 0.1
	}

	return clampF(score, 0, 1)
}

// RiskLevel buckets a risk score into a label.
func RiskLevel(score float64) string {
	switch {
	case score < 0.3:
		return telemetry.SeverityLow
	case score < 0.5:
		return "moderate"
	case score < 0.7:
		return telemetry.SeverityHigh
	default:
		return telemetry.SeverityCritical
	}
}

// SafetyVerdict is the outcome of a slope safety check.
type SafetyVerdict struct {
	Safe      bool
	RiskScore float64
	Reason    string
}

// SlopeSafety judges one slope. Closed or unknown slopes are never safe; open
// slopes are safe only while the composite risk score stays under the
// ceiling for their difficulty.
func SlopeSafety(slopeID string, slopes []telemetry.SlopeData, w telemetry.WeatherData, s telemetry.SafetyData) SafetyVerdict {
	var slope *telemetry.SlopeData
	for i := range slopes {
		if strings.EqualFold(slopes[i].SlopeID, slopeID) {
			slope = &slopes[i]
			break
		}
	}
	if slope == nil {
		return SafetyVerdict{Safe: false, RiskScore: 1.0, Reason: "slope not found: " + slopeID}
	}
	if !slope.IsOpen {
		return SafetyVerdict{Safe: false, RiskScore: RiskScore(w, s), Reason: slope.Name + " is closed"}
	}

	score := RiskScore(w, s)
	threshold, ok := safeRiskThresholds[slope.Difficulty]
	if !ok {
		threshold = safeRiskThresholds[telemetry.DifficultyGreen]
	}
	if score >= threshold {
		return SafetyVerdict{
			Safe:      false,
			RiskScore: score,
			Reason:    slope.Name + " (" + slope.Difficulty + ") exceeds the safe risk threshold: " + RiskLevel(score) + " risk",
		}
	}
	return SafetyVerdict{
		Safe:      true,
		RiskScore: score,
		Reason:    slope.Name + " (" + slope.Difficulty + ") is open with " + RiskLevel(score) + " risk",
	}
}
