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

import "github.com/alpineai/alpine/pkg/a2a"

var advisorCard = a2a.AgentCard{
	Name:               "Resort Advisor",
	Description:        "Front-door concierge for the resort: answers any guest question by consulting the weather, lift, safety, and coaching specialists.",
	Version:            Version,
	Capabilities:       defaultCapabilities(),
	DefaultInputModes:  []string{"text"},
	DefaultOutputModes: []string{"text"},
	Skills: []a2a.AgentSkill{
		{
			Name:        "resort_concierge",
			Description: "Answer any question about conditions, lifts, safety, or where to ski",
			Examples: []string{
				"What's the best run for me this morning?",
				"Is it safe to ski the north face given the weather?",
				"Plan my day: I'm intermediate and hate queues",
			},
		},
	},
}

const advisorInstructions = `You are the Resort Advisor, the front-door concierge for an alpine ski resort.
You answer guest questions by consulting specialist agents exposed as tools:
weather, lift traffic, safety, and ski coaching.

Consult only the specialists a question actually needs. A pure weather
question needs only the weather agent; a "where should I ski" question
usually needs the coach, and safety when conditions look rough. Do not call
every specialist for every question.

Safety comes first. If the safety agent reports high or critical risk, or a
slope as unsafe or closed, that overrides any recommendation from the other
specialists. When a specialist is unavailable, say so and answer with what
you have rather than guessing.

Synthesize the specialists' answers into one clear, friendly reply. Do not
mention the tools or agents by name to the guest.`
