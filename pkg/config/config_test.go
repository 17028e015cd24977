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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroConfigRunsFullResort(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "alpineai", cfg.Name)
	assert.Equal(t, "info", cfg.Global.Logging.Level)
	assert.Equal(t, "simple", cfg.Global.Logging.Format)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, ":8080", cfg.Telemetry.Listen)
	assert.Equal(t, "http://localhost:8080", cfg.Telemetry.BaseURL)

	// Every role gets an agent with a port and a card URL.
	require.Len(t, cfg.Agents, 5)
	weather, ok := cfg.Agent("weather")
	require.True(t, ok)
	assert.Equal(t, ":8001", weather.Listen)
	assert.Equal(t, "http://localhost:8001", weather.URL)

	// The advisor knows where its specialists live.
	advisor, ok := cfg.Agent("advisor")
	require.True(t, ok)
	assert.Equal(t, ":8005", advisor.Listen)
	require.Len(t, advisor.Specialists, 4)
	assert.Contains(t, advisor.Specialists, "http://localhost:8001")
	assert.Contains(t, advisor.Specialists, "http://localhost:8004")
}

func TestLoadFromString_OverridesAndDefaults(t *testing.T) {
	cfg, err := LoadFromString(`
name: test-resort
llm:
  model: gpt-4o
  temperature: 0.3
session:
  backend: sql
  dialect: postgres
  dsn: postgres://localhost/alpine
agents:
  weather:
    listen: ":9101"
  advisor:
    listen: ":9105"
    specialists:
      - http://weather.internal:9101
    max_iterations: 12
`)
	require.NoError(t, err)

	assert.Equal(t, "test-resort", cfg.Name)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens) // default survives partial override
	assert.Equal(t, "sql", cfg.Session.Backend)
	assert.Equal(t, "postgres", cfg.Session.Dialect)

	// Only the named agents exist; roles default from the map key.
	require.Len(t, cfg.Agents, 2)
	weather, _ := cfg.Agent("weather")
	assert.Equal(t, "weather", weather.Role)
	assert.Equal(t, "http://localhost:9101", weather.URL)

	advisor, _ := cfg.Agent("advisor")
	assert.Equal(t, []string{"http://weather.internal:9101"}, advisor.Specialists)
	assert.Equal(t, 12, advisor.MaxIterations)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alpine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("ALPINE_TEST_KEY", "sk-secret")
	t.Setenv("ALPINE_TEST_MODEL", "gpt-4o")

	cfg, err := LoadFromString(`
llm:
  api_key: ${ALPINE_TEST_KEY}
  model: $ALPINE_TEST_MODEL
  base_url: ${ALPINE_TEST_URL:-http://localhost:11434/v1}
`)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
}

func TestEnvExpansion_SetVariableBeatsDefault(t *testing.T) {
	t.Setenv("ALPINE_TEST_URL", "https://api.openai.com/v1")

	cfg, err := LoadFromString(`
llm:
  base_url: ${ALPINE_TEST_URL:-http://localhost:11434/v1}
`)
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad log level", "global:\n  logging:\n    level: loud\n"},
		{"bad log format", "global:\n  logging:\n    format: fancy\n"},
		{"temperature out of range", "llm:\n  temperature: 3.5\n"},
		{"bad session backend", "session:\n  backend: redis\n"},
		{"bad session dialect", "session:\n  backend: sql\n  dialect: oracle\n  dsn: x\n"},
		{"unknown agent role", "agents:\n  dj:\n    listen: \":9000\"\n"},
		{"negative iterations", "agents:\n  weather:\n    max_iterations: -1\n"},
		{"not yaml", "{{{"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFromString(tc.yaml)
			assert.Error(t, err)
		})
	}
}

func TestExpandEnvString(t *testing.T) {
	t.Setenv("ALPINE_TEST_VAR", "chalet")

	assert.Equal(t, "plain", expandEnvString("plain"))
	assert.Equal(t, "chalet", expandEnvString("${ALPINE_TEST_VAR}"))
	assert.Equal(t, "a chalet b", expandEnvString("a $ALPINE_TEST_VAR b"))
	assert.Equal(t, "", expandEnvString("${ALPINE_TEST_UNSET}"))
	assert.Equal(t, "fallback", expandEnvString("${ALPINE_TEST_UNSET:-fallback}"))
}
