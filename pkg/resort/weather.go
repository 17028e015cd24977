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
	"fmt"
	"math"
	"math/rand"

	"github.com/alpineai/alpine/pkg/a2a"
	"github.com/alpineai/alpine/pkg/telemetry"
	"github.com/alpineai/alpine/pkg/tool"
	"github.com/alpineai/alpine/pkg/tool/functiontool"
)

// Storm thresholds. Crossing any one of them means storm conditions; the
// lower warning tier flags conditions worth monitoring.
const (
	stormWindSpeed     = 50.0
	stormSnowIntensity = 3.0
	stormVisibility    = 500.0

	warnWindSpeed  = 40.0
	warnVisibility = 1000.0
)

var weatherCard = a2a.AgentCard{
	Name:               "Weather Agent",
	Description:        "Reports current mountain weather, hourly forecasts, and storm assessments for the resort.",
	Version:            Version,
	Capabilities:       defaultCapabilities(),
	DefaultInputModes:  []string{"text"},
	DefaultOutputModes: []string{"text"},
	Skills: []a2a.AgentSkill{
		{
			Name:        "current_conditions",
			Description: "Report temperature, wind, snowfall, and visibility right now",
			Examples:    []string{"What's the weather like on the mountain?", "How windy is it?"},
		},
		{
			Name:        "forecast",
			Description: "Project conditions up to 24 hours ahead",
			Examples:    []string{"What will the weather be this afternoon?", "Forecast for the next 6 hours"},
		},
		{
			Name:        "storm_assessment",
			Description: "Judge whether a storm is incoming",
			Examples:    []string{"Is a storm coming?", "Should I expect whiteout conditions?"},
		},
	},
}

const weatherInstructions = `You are the Weather Agent for an alpine ski resort.
Answer questions about current conditions, forecasts, and storms using your
tools. Always fetch fresh data before answering; never invent numbers.
Report temperatures in Celsius, wind in km/h, and visibility in meters, and
state clearly when a storm is incoming.`

type forecastArgs struct {
	Hours int `json:"hours,omitempty" jsonschema:"description=Number of hours to forecast (1-24),minimum=1,maximum=24"`
}

// WeatherTools builds the weather specialist's tool set over the telemetry
// client.
func WeatherTools(tc *telemetry.Client) []tool.Tool {
	return []tool.Tool{
		functiontool.MustNew("get_current_conditions",
			"Get current weather conditions at the ski resort including temperature, wind speed, snow intensity, and visibility",
			func(ctx context.Context, _ struct{}) (string, error) {
				conditions, live := tc.Weather(ctx)
				return asJSON(map[string]any{
					"temperature":    conditions.Temperature,
					"wind_speed":     conditions.WindSpeed,
					"snow_intensity": conditions.SnowIntensity,
					"visibility":     conditions.Visibility,
					"timestamp":      conditions.Timestamp,
					"live_data":      live,
				})
			}),
		functiontool.MustNew("get_forecast",
			"Get a weather forecast for the specified number of hours ahead (1-24)",
			func(ctx context.Context, args forecastArgs) (string, error) {
				return forecast(ctx, tc, args.Hours)
			}),
		functiontool.MustNew("is_storm_incoming",
			"Assess whether a storm is incoming based on current weather conditions",
			func(ctx context.Context, _ struct{}) (string, error) {
				current, _ := tc.Weather(ctx)
				return asJSON(AssessStorm(current))
			}),
	}
}

// forecast projects current conditions forward with small hourly variations.
// Hours outside 1..24 are clamped, not rejected.
func forecast(ctx context.Context, tc *telemetry.Client, hours int) (string, error) {
	if hours < 1 {
		hours = 1
	}
	if hours > 24 {
		hours = 24
	}

	current, live := tc.Weather(ctx)

	type hourly struct {
		Hour          int     `json:"hour"`
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"wind_speed"`
		SnowIntensity float64 `json:"snow_intensity"`
		Visibility    float64 `json:"visibility"`
	}

	projected := make([]hourly, 0, hours)
	for hour := 1; hour <= hours; hour++ {
		projected = append(projected, hourly{
			Hour:          hour,
			Temperature:   round1(current.Temperature + uniform(-2, 2)),
			WindSpeed:     round1(max(0, current.WindSpeed+uniform(-5, 5))),
			SnowIntensity: round1(clampF(current.SnowIntensity+uniform(-1, 1), 0, 5)),
			Visibility:    max(100, current.Visibility+uniform(-500, 500)),
		})
	}

	return asJSON(map[string]any{
		"current_conditions": current,
		"forecast_hours":     hours,
		"hourly_forecast":    projected,
		"live_data":          live,
	})
}

// StormAssessment is the verdict of the storm rule engine.
type StormAssessment struct {
	StormIncoming bool   `json:"storm_incoming"`
	Reason        string `json:"reason"`
}

// AssessStorm applies the storm rules to one weather snapshot: wind above 50
// km/h, snowfall above 3 cm/h, or visibility below 500 m all mean storm
// conditions; elevated-but-lower readings are reported as monitoring notes.
func AssessStorm(w telemetry.WeatherData) StormAssessment {
	var reasons []string
	storm := false

	if w.WindSpeed > stormWindSpeed {
		reasons = append(reasons, fmt.Sprintf("High wind speed detected: %.1f km/h", w.WindSpeed))
		storm = true
	}
	if w.SnowIntensity > stormSnowIntensity {
		reasons = append(reasons, fmt.Sprintf("Heavy snow intensity: %.1f/5", w.SnowIntensity))
		storm = true
	}
	if w.Visibility < stormVisibility {
		reasons = append(reasons, fmt.Sprintf("Low visibility: %.0fm", w.Visibility))
		storm = true
	}

	if !storm {
		if w.WindSpeed > warnWindSpeed {
			reasons = append(reasons, fmt.Sprintf("Elevated wind speed: %.1f km/h", w.WindSpeed))
		}
		if w.SnowIntensity >= stormSnowIntensity {
			reasons = append(reasons, fmt.Sprintf("Moderate to heavy snow: %.1f/5", w.SnowIntensity))
		}
		if w.Visibility < warnVisibility {
			reasons = append(reasons, fmt.Sprintf("Reduced visibility: %.0fm", w.Visibility))
		}
	}

	switch {
	case storm:
		return StormAssessment{true, "Storm conditions detected: " + joinReasons(reasons)}
	case len(reasons) > 0:
		return StormAssessment{false, "Monitoring conditions: " + joinReasons(reasons)}
	default:
		return StormAssessment{false, fmt.Sprintf(
			"Conditions are good (Wind: %.1f km/h, Snow: %.1f/5, Visibility: %.0fm)",
			w.WindSpeed, w.SnowIntensity, w.Visibility)}
	}
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}

func uniform(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
