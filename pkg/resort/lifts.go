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

var liftsCard = a2a.AgentCard{
	Name:               "Lift Traffic Agent",
	Description:        "Reports lift operating status, queue lengths, and wait times across the resort.",
	Version:            Version,
	Capabilities:       defaultCapabilities(),
	DefaultInputModes:  []string{"text"},
	DefaultOutputModes: []string{"text"},
	Skills: []a2a.AgentSkill{
		{
			Name:        "lift_status",
			Description: "Report which lifts are open, closed, or under maintenance",
			Examples:    []string{"Which lifts are running?", "Is the Summit Gondola open?"},
		},
		{
			Name:        "wait_times",
			Description: "Report current queue lengths and expected wait times",
			Examples:    []string{"How long is the wait at Alpine Express?", "Where are the queues shortest?"},
		},
	},
}

const liftsInstructions = `You are the Lift Traffic Agent for an alpine ski resort.
Answer questions about lift availability, queues, and wait times using your
tools. Always fetch fresh data before answering. When asked where to go,
prefer open lifts with the shortest queues.`

type liftStatusArgs struct {
	LiftID string `json:"lift_id,omitempty" jsonschema:"description=Optional lift id to look up (e.g. gondola-1); omit for all lifts"`
}

// LiftTools builds the lift-traffic specialist's tool set over the telemetry
// client.
func LiftTools(tc *telemetry.Client) []tool.Tool {
	return []tool.Tool{
		functiontool.MustNew("get_lift_status",
			"Get operating status for all lifts, or one lift by id",
			func(ctx context.Context, args liftStatusArgs) (string, error) {
				lifts, live := tc.Lifts(ctx)
				if args.LiftID != "" {
					for _, lift := range lifts {
						if strings.EqualFold(lift.LiftID, args.LiftID) {
							return asJSON(map[string]any{"lift": lift, "live_data": live})
						}
					}
					return asJSON(map[string]any{"error": "lift not found: " + args.LiftID})
				}
				open := 0
				for _, lift := range lifts {
					if lift.Status == telemetry.LiftOpen {
						open++
					}
				}
				return asJSON(map[string]any{
					"lifts":       lifts,
					"total_lifts": len(lifts),
					"open_lifts":  open,
					"live_data":   live,
				})
			}),
		functiontool.MustNew("get_wait_times",
			"Get current queue lengths and estimated wait times for all open lifts",
			func(ctx context.Context, _ struct{}) (string, error) {
				lifts, live := tc.Lifts(ctx)
				type wait struct {
					LiftID          string  `json:"lift_id"`
					Name            string  `json:"name"`
					QueueLength     int     `json:"queue_length"`
					WaitTimeMinutes float64 `json:"wait_time_minutes"`
				}
				waits := make([]wait, 0, len(lifts))
				for _, lift := range lifts {
					if lift.Status != telemetry.LiftOpen {
						continue
					}
					waits = append(waits, wait{lift.LiftID, lift.Name, lift.QueueLength, lift.WaitTimeMinutes})
				}
				sort.Slice(waits, func(i, j int) bool {
					return waits[i].WaitTimeMinutes < waits[j].WaitTimeMinutes
				})
				return asJSON(map[string]any{"wait_times": waits, "live_data": live})
			}),
		functiontool.MustNew("find_shortest_queue",
			"Find the open lift with the shortest queue right now",
			func(ctx context.Context, _ struct{}) (string, error) {
				lifts, live := tc.Lifts(ctx)
				best := shortestQueue(lifts)
				if best == nil {
					return asJSON(map[string]any{"error": "no lifts are currently open"})
				}
				return asJSON(map[string]any{"shortest_queue": best, "live_data": live})
			}),
	}
}

// shortestQueue picks the open lift with the fewest people waiting. Ties go
// to the faster lift.
func shortestQueue(lifts []telemetry.LiftData) *telemetry.LiftData {
	var best *telemetry.LiftData
	for i := range lifts {
		lift := &lifts[i]
		if lift.Status != telemetry.LiftOpen {
			continue
		}
		if best == nil ||
			lift.QueueLength < best.QueueLength ||
			(lift.QueueLength == best.QueueLength && lift.ThroughputRate > best.ThroughputRate) {
			best = lift
		}
	}
	return best
}
