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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alpineai/alpine/pkg/a2a"
	"github.com/alpineai/alpine/pkg/agent"
	"github.com/alpineai/alpine/pkg/config"
	"github.com/alpineai/alpine/pkg/model"
	"github.com/alpineai/alpine/pkg/model/openai"
	"github.com/alpineai/alpine/pkg/observability"
	"github.com/alpineai/alpine/pkg/resort"
	"github.com/alpineai/alpine/pkg/session"
	"github.com/alpineai/alpine/pkg/telemetry"
	"github.com/alpineai/alpine/pkg/tool"
	"github.com/alpineai/alpine/pkg/tool/agenttool"
)

// RoleTelemetry serves the synthetic data generator; it is not an agent.
const RoleTelemetry = "telemetry"

// resolveRetryInterval paces the advisor's startup wait for its specialists.
const resolveRetryInterval = 2 * time.Second

// ServeCmd starts the telemetry service and the requested agents.
type ServeCmd struct {
	Roles []string `arg:"" optional:"" help:"Roles to run: telemetry, weather, lifts, safety, coach, advisor, or all (default)."`

	ResolveTimeout time.Duration `help:"How long the advisor waits for its specialists at startup." default:"30s"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cli.Config != "" {
		slog.Info("Loaded configuration", "path", cli.Config)
	} else {
		slog.Info("Using zero-config defaults")
	}

	roles, err := c.selectRoles(cfg)
	if err != nil {
		return err
	}

	metrics, err := observability.InitMetrics(cfg.Global.Metrics.Enabled)
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	observability.SetGlobalMetrics(metrics)

	repo, err := newRepository(cfg)
	if err != nil {
		return err
	}
	sessions := session.NewStore(repo)
	defer sessions.Close()

	llm := newModel(cfg)
	defer llm.Close()

	tc := telemetry.NewClient(cfg.Telemetry.BaseURL)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Global.Metrics.Enabled {
		g.Go(func() error {
			slog.Info("Metrics endpoint listening", "addr", cfg.Global.Metrics.Listen)
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			return serveHTTP(ctx, "metrics", cfg.Global.Metrics.Listen, mux)
		})
	}

	for _, role := range roles {
		if role == RoleTelemetry {
			g.Go(func() error { return c.runTelemetry(ctx, cfg) })
			continue
		}
		agentCfg, ok := findAgent(cfg, role)
		if !ok {
			return fmt.Errorf("no agent configured for role %q", role)
		}
		g.Go(func() error { return c.runAgent(ctx, cfg, agentCfg, llm, sessions, tc) })
	}

	return g.Wait()
}

// selectRoles expands the positional role arguments; no arguments or "all"
// means everything the config defines plus the telemetry service.
func (c *ServeCmd) selectRoles(cfg *config.Config) ([]string, error) {
	requested := c.Roles
	if len(requested) == 0 {
		requested = []string{"all"}
	}

	var roles []string
	for _, role := range requested {
		switch role {
		case "all":
			roles = append(roles, RoleTelemetry)
			for _, agentCfg := range cfg.Agents {
				roles = append(roles, agentCfg.Role)
			}
		case RoleTelemetry,
			resort.RoleWeather, resort.RoleLifts, resort.RoleSafety,
			resort.RoleCoach, resort.RoleAdvisor:
			roles = append(roles, role)
		default:
			return nil, fmt.Errorf("unknown role %q", role)
		}
	}
	return roles, nil
}

// runTelemetry starts the synthetic data generator and its HTTP service.
func (c *ServeCmd) runTelemetry(ctx context.Context, cfg *config.Config) error {
	generator := telemetry.NewGenerator()
	go generator.Run(ctx)

	slog.Info("Telemetry service listening", "addr", cfg.Telemetry.Listen)
	return serveHTTP(ctx, RoleTelemetry, cfg.Telemetry.Listen, telemetry.NewService(generator))
}

// runAgent builds and serves one A2A agent. The advisor first waits for its
// specialists to come up so their cards can be wrapped as tools.
func (c *ServeCmd) runAgent(ctx context.Context, cfg *config.Config, agentCfg config.AgentConfig, llm model.LLM, sessions *session.Store, tc *telemetry.Client) error {
	card, err := resort.Card(agentCfg.Role, agentCfg.URL)
	if err != nil {
		return err
	}
	instructions, err := resort.Instructions(agentCfg.Role)
	if err != nil {
		return err
	}

	var tools []tool.Tool
	if agentCfg.Role == resort.RoleAdvisor {
		tools, err = c.specialistTools(ctx, agentCfg.Specialists)
	} else {
		tools, err = resort.Tools(agentCfg.Role, tc)
	}
	if err != nil {
		return err
	}

	executor := agent.New(agent.Config{
		Name:          card.Name,
		Instructions:  instructions,
		MaxIterations: agentCfg.MaxIterations,
		Temperature:   cfg.LLM.Temperature,
		MaxTokens:     cfg.LLM.MaxTokens,
	}, llm, tools)

	server := a2a.NewServer(card, executor, sessions)
	slog.Info("Agent listening", "role", agentCfg.Role, "agent", card.Name, "addr", agentCfg.Listen, "url", agentCfg.URL)
	return serveHTTP(ctx, agentCfg.Role, agentCfg.Listen, server)
}

// specialistTools resolves each specialist's agent card and wraps it as a
// tool for the advisor. Specialists usually start in the same process, so
// resolution retries until ResolveTimeout elapses.
func (c *ServeCmd) specialistTools(ctx context.Context, baseURLs []string) ([]tool.Tool, error) {
	client := a2a.NewClient(nil)
	deadline := time.Now().Add(c.ResolveTimeout)

	tools := make([]tool.Tool, 0, len(baseURLs))
	for _, baseURL := range baseURLs {
		for {
			card, err := client.Resolve(ctx, baseURL)
			if err == nil {
				tools = append(tools, agenttool.New(client, card))
				break
			}
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("resolving specialist %s: %w", baseURL, err)
			}
			slog.Debug("Specialist not ready, retrying", "url", baseURL, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(resolveRetryInterval):
			}
		}
	}
	return tools, nil
}

func findAgent(cfg *config.Config, role string) (config.AgentConfig, bool) {
	for _, agentCfg := range cfg.Agents {
		if agentCfg.Role == role {
			return agentCfg, true
		}
	}
	return config.AgentConfig{}, false
}

func newRepository(cfg *config.Config) (session.Repository, error) {
	switch cfg.Session.Backend {
	case "sql":
		repo, err := session.Open(cfg.Session.Dialect, cfg.Session.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		slog.Info("Session persistence enabled", "dialect", cfg.Session.Dialect)
		return repo, nil
	default:
		return session.NewMemoryRepository(), nil
	}
}

func newModel(cfg *config.Config) model.LLM {
	opts := []openai.Option{openai.WithModel(cfg.LLM.Model)}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
	}
	if cfg.LLM.APIKey != "" {
		opts = append(opts, openai.WithAPIKey(cfg.LLM.APIKey))
	}
	return openai.New(opts...)
}

// serveHTTP runs one HTTP listener until ctx is cancelled, then drains it.
func serveHTTP(ctx context.Context, name, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Listener shutdown was not clean", "name", name, "error", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("%s listener failed: %w", name, err)
	}
}
