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

package main

import (
	"encoding/json"
	"fmt"

	"github.com/alpineai/alpine/pkg/config"
	"github.com/alpineai/alpine/pkg/resort"
)

// CardCmd prints the agent card one role would serve, as JSON.
type CardCmd struct {
	Role string `arg:"" help:"Agent role: weather, lifts, safety, coach, or advisor."`
}

func (c *CardCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	url := ""
	for _, agentCfg := range cfg.Agents {
		if agentCfg.Role == c.Role {
			url = agentCfg.URL
			break
		}
	}

	card, err := resort.Card(c.Role, url)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
