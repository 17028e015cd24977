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

// Package config loads and validates the platform configuration: a single
// YAML document covering logging, the model provider, session persistence,
// telemetry, metrics, and the agent roster.
package config

import (
	"fmt"

	"github.com/alpineai/alpine/pkg/resort"
)

// Config is the complete platform configuration, the single entry point for
// everything the alpine binary runs.
type Config struct {
	Name string `yaml:"name,omitempty"`

	Global    GlobalConfig           `yaml:"global,omitempty"`
	LLM       LLMConfig              `yaml:"llm,omitempty"`
	Session   SessionConfig          `yaml:"session,omitempty"`
	Telemetry TelemetryConfig        `yaml:"telemetry,omitempty"`
	Agents    map[string]AgentConfig `yaml:"agents,omitempty"`
}

// SetDefaults fills every unset field so a zero-value config still runs a
// complete demo resort.
func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = "alpineai"
	}
	c.Global.SetDefaults()
	c.LLM.SetDefaults()
	c.Session.SetDefaults()
	c.Telemetry.SetDefaults()

	if c.Agents == nil {
		c.Agents = make(map[string]AgentConfig)
	}
	if len(c.Agents) == 0 {
		for role, port := range defaultAgentPorts {
			c.Agents[role] = AgentConfig{Role: role, Listen: fmt.Sprintf(":%d", port)}
		}
	}
	for name := range c.Agents {
		agent := c.Agents[name]
		agent.SetDefaults(name)
		c.Agents[name] = agent
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.Global.Validate(); err != nil {
		return fmt.Errorf("global: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	for name, agent := range c.Agents {
		if err := agent.Validate(); err != nil {
			return fmt.Errorf("agent %q: %w", name, err)
		}
	}
	return nil
}

// Agent returns an agent configuration by name.
func (c *Config) Agent(name string) (AgentConfig, bool) {
	agent, ok := c.Agents[name]
	return agent, ok
}

// defaultAgentPorts is the zero-config port layout.
var defaultAgentPorts = map[string]int{
	resort.RoleWeather: 8001,
	resort.RoleLifts:   8002,
	resort.RoleSafety:  8003,
	resort.RoleCoach:   8004,
	resort.RoleAdvisor: 8005,
}

// ============================================================================
// GLOBAL SETTINGS
// ============================================================================

// GlobalConfig holds settings shared by every component.
type GlobalConfig struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

func (c *GlobalConfig) SetDefaults() {
	c.Logging.SetDefaults()
	c.Metrics.SetDefaults()
}

func (c *GlobalConfig) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return c.Metrics.Validate()
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug | info | warn | error
	Format string `yaml:"format,omitempty"` // simple | verbose | json
	Output string `yaml:"output,omitempty"` // stdout | stderr | file path
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "simple"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch c.Format {
	case "simple", "verbose", "json":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Listen  string `yaml:"listen,omitempty"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.Listen == "" {
		c.Listen = ":9090"
	}
}

func (c *MetricsConfig) Validate() error {
	return nil
}

// ============================================================================
// MODEL PROVIDER
// ============================================================================

// LLMConfig points every agent at one OpenAI-compatible chat endpoint.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url,omitempty"`
	Model       string  `yaml:"model,omitempty"`
	APIKey      string  `yaml:"api_key,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
}

func (c *LLMConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2000
	}
}

func (c *LLMConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// ============================================================================
// SESSION PERSISTENCE
// ============================================================================

// SessionConfig selects where conversation history is persisted.
type SessionConfig struct {
	Backend string `yaml:"backend,omitempty"` // memory | sql
	Dialect string `yaml:"dialect,omitempty"` // postgres | mysql | sqlite
	DSN     string `yaml:"dsn,omitempty"`
}

func (c *SessionConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Backend == "sql" && c.Dialect == "" {
		c.Dialect = "sqlite"
	}
	if c.Backend == "sql" && c.Dialect == "sqlite" && c.DSN == "" {
		c.DSN = "alpine-sessions.db"
	}
}

func (c *SessionConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "sql":
		switch c.Dialect {
		case "postgres", "mysql", "sqlite", "sqlite3":
		default:
			return fmt.Errorf("invalid dialect %q", c.Dialect)
		}
		if c.DSN == "" {
			return fmt.Errorf("dsn is required for the sql backend")
		}
		return nil
	default:
		return fmt.Errorf("invalid backend %q", c.Backend)
	}
}

// ============================================================================
// TELEMETRY
// ============================================================================

// TelemetryConfig covers both sides of the telemetry service: where the
// generator listens and where the specialists reach it.
type TelemetryConfig struct {
	Listen  string `yaml:"listen,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

func (c *TelemetryConfig) SetDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
}

func (c *TelemetryConfig) Validate() error {
	return nil
}

// ============================================================================
// AGENTS
// ============================================================================

// AgentConfig describes one agent process: its role, where it listens, and
// the public URL advertised on its card.
type AgentConfig struct {
	Role          string   `yaml:"role,omitempty"`
	Listen        string   `yaml:"listen,omitempty"`
	URL           string   `yaml:"url,omitempty"`
	Specialists   []string `yaml:"specialists,omitempty"` // advisor only: specialist base URLs
	MaxIterations int      `yaml:"max_iterations,omitempty"`
}

func (c *AgentConfig) SetDefaults(name string) {
	if c.Role == "" {
		c.Role = name
	}
	if c.Listen == "" {
		if port, ok := defaultAgentPorts[c.Role]; ok {
			c.Listen = fmt.Sprintf(":%d", port)
		}
	}
	if c.URL == "" && c.Listen != "" {
		c.URL = "http://localhost" + c.Listen
	}
	if c.Role == resort.RoleAdvisor && len(c.Specialists) == 0 {
		for _, role := range []string{resort.RoleWeather, resort.RoleLifts, resort.RoleSafety, resort.RoleCoach} {
			c.Specialists = append(c.Specialists, fmt.Sprintf("http://localhost:%d", defaultAgentPorts[role]))
		}
	}
}

func (c *AgentConfig) Validate() error {
	switch c.Role {
	case resort.RoleWeather, resort.RoleLifts, resort.RoleSafety, resort.RoleCoach, resort.RoleAdvisor:
	default:
		return fmt.Errorf("invalid role %q", c.Role)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	}
	return nil
}
