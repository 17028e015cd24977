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
	"sort"
	"strings"

	"github.com/alpineai/alpine/pkg/a2a"
	"github.com/alpineai/alpine/pkg/telemetry"
	"github.com/alpineai/alpine/pkg/tool"
	"github.com/alpineai/alpine/pkg/tool/functiontool"
)

var coachCard = a2a.AgentCard{
	Name:               "Ski Coach Agent",
	Description:        "Recommends slopes and builds day plans matched to a skier's skill level and preferences.",
	Version:            Version,
	Capabilities:       defaultCapabilities(),
	DefaultInputModes:  []string{"text"},
	DefaultOutputModes: []string{"text"},
	Skills: []a2a.AgentSkill{
		{
			Name:        "slope_recommendation",
			Description: "Recommend the best open slopes for a skill level and preferences",
			Examples:    []string{"I'm an intermediate skier, where should I go?", "Best groomed runs for a beginner?"},
		},
		{
			Name:        "day_plan",
			Description: "Build a morning-to-afternoon plan for a day on the mountain",
			Examples:    []string{"Plan my day, I'm an advanced skier"},
		},
	},
}

const coachInstructions = `You are the Ski Coach Agent for an alpine ski resort.
Recommend slopes and build day plans using your tools. Always fetch fresh
recommendations before answering; match runs to the skier's stated skill
level and never send a beginner onto blue, red, or black terrain.`

type recommendArgs struct {
	SkillLevel  string `json:"skill_level" jsonschema:"description=Skier skill level: beginner / intermediate / advanced / expert,required"`
	Preferences string `json:"preferences,omitempty" jsonschema:"description=Comma-separated preferences such as avoid_crowds or groomed_only"`
}

type dayPlanArgs struct {
	SkillLevel string `json:"skill_level" jsonschema:"description=Skier skill level: beginner / intermediate / advanced / expert,required"`
}

// CoachTools builds the ski-coach specialist's tool set over the telemetry
// client.
func CoachTools(tc *telemetry.Client) []tool.Tool {
	return []tool.Tool{
		functiontool.MustNew("recommend_slope",
			"Recommend the best open slopes for a skill level, optionally honoring preferences like avoid_crowds or groomed_only",
			func(ctx context.Context, args recommendArgs) (string, error) {
				ranked, err := rankSlopes(ctx, tc, args.SkillLevel, parsePreferences(args.Preferences))
				if err != nil {
					return asJSON(map[string]any{"error": err.Error()})
				}
				if len(ranked) > 3 {
					ranked = ranked[:3]
				}
				return asJSON(map[string]any{
					"skill_level":     normalizeSkill(args.SkillLevel),
					"recommendations": ranked,
				})
			}),
		functiontool.MustNew("build_day_plan",
			"Build a morning, midday, and afternoon slope plan for a skill level",
			func(ctx context.Context, args dayPlanArgs) (string, error) {
				ranked, err := rankSlopes(ctx, tc, args.SkillLevel, preferences{})
				if err != nil {
					return asJSON(map[string]any{"error": err.Error()})
				}
				return asJSON(buildDayPlan(normalizeSkill(args.SkillLevel), ranked))
			}),
	}
}

type preferences struct {
	AvoidCrowds bool
	GroomedOnly bool
}

func parsePreferences(raw string) preferences {
	var p preferences
	for _, pref := range strings.Split(raw, ",") {
		switch strings.TrimSpace(strings.ToLower(pref)) {
		case "avoid_crowds", "avoid crowds":
			p.AvoidCrowds = true
		case "groomed_only", "groomed only", "groomed":
			p.GroomedOnly = true
		}
	}
	return p
}

func normalizeSkill(skill string) string {
	s := strings.TrimSpace(strings.ToLower(skill))
	if _, ok := skillDifficulties[s]; !ok {
		return "intermediate"
	}
	return s
}

// rankedSlope is one scored recommendation.
type rankedSlope struct {
	SlopeID    string  `json:"slope_id"`
	Name       string  `json:"name"`
	Difficulty string  `json:"difficulty"`
	Groomed    bool    `json:"groomed"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
}

// rankSlopes scores every open slope a skill level can handle, best first.
// Grooming earns a bonus, nearby lift queues a penalty when crowds are to be
// avoided, and steep terrain loses points under elevated avalanche risk.
func rankSlopes(ctx context.Context, tc *telemetry.Client, skill string, prefs preferences) ([]rankedSlope, error) {
	slopes, _ := tc.Slopes(ctx)
	lifts, _ := tc.Lifts(ctx)
	safety, _ := tc.Safety(ctx)

	allowed := skillDifficulties[normalizeSkill(skill)]
	avgQueue := averageOpenQueue(lifts)

	var ranked []rankedSlope
	for _, slope := range slopes {
		if !slope.IsOpen || !contains(allowed, slope.Difficulty) {
			continue
		}
		if prefs.GroomedOnly && !slope.Groomed {
			continue
		}

		score := 50.0
		var notes []string

		if slope.Groomed {
			score += 15
			notes = append(notes, "freshly groomed")
		}
		score += slope.SnowDepthCM / 10

		if prefs.AvoidCrowds {
			score -= avgQueue * 3
			notes = append(notes, "adjusted for crowds")
		}
		if safety.AvalancheRiskIndex > 0.5 &&
			(slope.Difficulty == telemetry.DifficultyBlack || slope.Difficulty == telemetry.DifficultyRed) {
			score -= 25
			notes = append(notes, "elevated avalanche risk on steep terrain")
		}

		reason := "good match for your level"
		if len(notes) > 0 {
			reason += " (" + strings.Join(notes, ", ") + ")"
		}

		ranked = append(ranked, rankedSlope{
			SlopeID:    slope.SlopeID,
			Name:       slope.Name,
			Difficulty: slope.Difficulty,
			Groomed:    slope.Groomed,
			Score:      round1(score),
			Reason:     reason,
		})
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked, nil
}

func averageOpenQueue(lifts []telemetry.LiftData) float64 {
	total, n := 0, 0
	for _, lift := range lifts {
		if lift.Status == telemetry.LiftOpen {
			total += lift.QueueLength
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// buildDayPlan splits the ranked slopes into a simple three-part itinerary:
// warm up on the easiest match, ski the best runs midday, wind down in the
// afternoon.
func buildDayPlan(skill string, ranked []rankedSlope) map[string]any {
	plan := map[string]any{
		"skill_level": skill,
	}
	if len(ranked) == 0 {
		plan["plan"] = nil
		plan["note"] = "no suitable open slopes right now"
		return plan
	}

	easiest := ranked[len(ranked)-1]
	best := ranked[0]
	afternoon := easiest
	if len(ranked) > 1 {
		afternoon = ranked[1]
	}

	plan["plan"] = map[string]any{
		"morning": map[string]any{
			"slope":    easiest,
			"activity": "Warm up with relaxed runs on " + easiest.Name,
		},
		"midday": map[string]any{
			"slope":    best,
			"activity": "Ski your best terrain on " + best.Name + " while legs are fresh",
		},
		"afternoon": map[string]any{
			"slope":    afternoon,
			"activity": "Wind down on " + afternoon.Name + " and finish early if conditions worsen",
		},
	}
	return plan
}
