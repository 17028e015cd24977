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

// Command alpine runs the AlpineAI demo resort: a telemetry generator plus
// five A2A agents (weather, lifts, safety, coach, and the advisor that
// orchestrates them).
//
// Usage:
//
//	alpine serve --config alpine.yaml
//	alpine serve all
//	alpine serve weather safety
//	alpine card advisor
//	alpine validate alpine.yaml
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"

	"github.com/alpineai/alpine/pkg/config"
	"github.com/alpineai/alpine/pkg/logger"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Serve    ServeCmd    `cmd:"" help:"Start the telemetry service and agents."`
	Card     CardCmd     `cmd:"" help:"Print an agent card as JSON."`
	Validate ValidateCmd `cmd:"" help:"Validate a configuration file."`

	Config    string `short:"c" help:"Path to config file." type:"path" env:"ALPINE_CONFIG"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info" env:"LOG_LEVEL"`
	LogFile   string `help:"Log file path (empty = stdout)." env:"LOG_FILE"`
	LogFormat string `help:"Log format (simple, verbose, json)." default:"simple" env:"LOG_FORMAT"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("alpine version %s\n", version)
	return nil
}

// initLogger configures the process-wide logger from CLI flags. Returns a
// cleanup function to close the log file, if any.
func initLogger(cli *CLI) (func(), error) {
	level, err := logger.ParseLevel(cli.LogLevel)
	if err != nil {
		return nil, err
	}

	output := os.Stdout
	cleanup := func() {}
	if cli.LogFile != "" {
		file, closer, err := logger.OpenLogFile(cli.LogFile)
		if err != nil {
			return nil, err
		}
		output, cleanup = file, closer
	}

	logger.Init(level, output, cli.LogFormat)
	return cleanup, nil
}

func main() {
	_ = config.LoadEnvFiles()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("alpine"),
		kong.Description("AlpineAI - multi-agent ski resort demo platform"),
		kong.UsageOnError(),
	)

	cleanup, err := initLogger(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
