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

// Package resort defines the AlpineAI specialists: domain tool sets over the
// resort telemetry service, plus the agent cards and instructions each
// specialist serves over the A2A protocol.
package resort

import (
	"encoding/json"
	"fmt"

	"github.com/alpineai/alpine/pkg/a2a"
	"github.com/alpineai/alpine/pkg/telemetry"
	"github.com/alpineai/alpine/pkg/tool"
)

// Specialist roles.
const (
	RoleWeather = "weather"
	RoleLifts   = "lifts"
	RoleSafety  = "safety"
	RoleCoach   = "coach"
	RoleAdvisor = "advisor"
)

// Version stamps every agent card.
const Version = "1.0.0"

// skillDifficulties maps skier skill levels to the slope difficulties they
// can handle.
var skillDifficulties = map[string][]string{
	"beginner":     {telemetry.DifficultyGreen},
	"intermediate": {telemetry.DifficultyGreen, telemetry.DifficultyBlue},
	"advanced":     {telemetry.DifficultyBlue, telemetry.DifficultyRed},
	"expert":       {telemetry.DifficultyRed, telemetry.DifficultyBlack},
}

// Tools returns the tool set for one specialist role.
func Tools(role string, tc *telemetry.Client) ([]tool.Tool, error) {
	switch role {
	case RoleWeather:
		return WeatherTools(tc), nil
	case RoleLifts:
		return LiftTools(tc), nil
	case RoleSafety:
		return SafetyTools(tc), nil
	case RoleCoach:
		return CoachTools(tc), nil
	default:
		return nil, fmt.Errorf("unknown specialist role %q", role)
	}
}

// Card returns the agent card for a role, served at url.
func Card(role, url string) (*a2a.AgentCard, error) {
	var card a2a.AgentCard
	switch role {
	case RoleWeather:
		card = weatherCard
	case RoleLifts:
		card = liftsCard
	case RoleSafety:
		card = safetyCard
	case RoleCoach:
		card = coachCard
	case RoleAdvisor:
		card = advisorCard
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
	card.URL = url
	return &card, nil
}

// Instructions returns the system instructions for a role.
func Instructions(role string) (string, error) {
	switch role {
	case RoleWeather:
		return weatherInstructions, nil
	case RoleLifts:
		return liftsInstructions, nil
	case RoleSafety:
		return safetyInstructions, nil
	case RoleCoach:
		return coachInstructions, nil
	case RoleAdvisor:
		return advisorInstructions, nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

// AgentName returns the display name for a role.
func AgentName(role string) (string, error) {
	card, err := Card(role, "")
	if err != nil {
		return "", err
	}
	return card.Name, nil
}

func defaultCapabilities() a2a.AgentCapabilities {
	return a2a.AgentCapabilities{Streaming: true, PushNotifications: false}
}

// asJSON renders a tool result the way models consume best: indented JSON.
func asJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding tool result: %w", err)
	}
	return string(data), nil
}
