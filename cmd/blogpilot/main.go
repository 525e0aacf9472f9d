// Copyright 2025 Kadir Pekel
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

	"github.com/alecthomas/kong"
	"github.com/blogpilot/blogpilot/pkg/competitor"
	"github.com/blogpilot/blogpilot/pkg/config"
	"github.com/blogpilot/blogpilot/pkg/gateway"
	"github.com/blogpilot/blogpilot/pkg/logger"
	"github.com/blogpilot/blogpilot/pkg/model"
	"github.com/blogpilot/blogpilot/pkg/model/anthropic"
	"github.com/blogpilot/blogpilot/pkg/model/gemini"
	"github.com/blogpilot/blogpilot/pkg/model/openai"
	"github.com/blogpilot/blogpilot/pkg/orchestrator"
	"github.com/blogpilot/blogpilot/pkg/registry"
	"github.com/blogpilot/blogpilot/pkg/server"
	"github.com/hashicorp/go-multierror"
)

// CLI is the top-level command set. Unlike a full agent runtime, the
// content-generation pipeline needs only a server to start and a
// version/info command — there is no agent config, RAG index, or studio
// mode to configure here.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP/SSE orchestration server."`
	Info    InfoCmd    `cmd:"" help:"Print resolved configuration and exit."`
	Version VersionCmd `cmd:"" help:"Print version information."`

	ConfigDir string `help:"Directory holding persisted settings YAML files." default:"." env:"BLOGPILOT_CONFIG_DIR"`
	LogLevel  string `help:"Log level: debug, info, warn, error." default:"info" env:"BLOGPILOT_LOG_LEVEL"`
	LogFile   string `help:"Write logs to this file instead of stderr." env:"BLOGPILOT_LOG_FILE"`
	LogFormat string `help:"Log format: simple (level and message), verbose (time, level and message), or any other value for slog's standard text format." default:"text" env:"BLOGPILOT_LOG_FORMAT"`
}

// ServeCmd starts the HTTP server that drives the content-generation
// pipeline for a UI collaborator.
type ServeCmd struct {
	Addr string `help:"Address to listen on." default:":8787" env:"BLOGPILOT_ADDR"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutdown signal received")
		cancel()
	}()

	loader := config.NewLoader(cli.ConfigDir)
	settings, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	catalog := registry.DefaultCatalog()
	clients, err := buildClients(*settings)
	if err != nil {
		return fmt.Errorf("configuring provider clients: %w", err)
	}

	gw := gateway.New(catalog, clients)
	fetcher := competitor.New(nil) // browser automation is out of scope; HTTP-only enrichment
	models := resolveModelSelections(*settings, catalog)
	orch := orchestrator.New(gw, fetcher, models)

	srv := server.New(orch)
	httpServer := &http.Server{
		Addr:         c.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams hold the connection open
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	printBanner(c.Addr)
	slog.Info("blogpilot server listening", "addr", c.Addr, "config_dir", cli.ConfigDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// buildClients constructs an LLM client per provider that has a resolvable
// API key, either from settings.APIKeys or the environment. A provider with
// no key anywhere is simply omitted — the gateway reports a clear error
// only if an orchestration actually tries to route to it. Construction
// failures for individual providers (e.g. a malformed key) are collected
// rather than aborting the whole server: one bad provider shouldn't take
// down the others.
func buildClients(settings config.Settings) (map[registry.Provider]model.LLM, error) {
	clients := make(map[registry.Provider]model.LLM)
	var errs *multierror.Error

	if key := resolveKey(settings, "anthropic"); key != "" {
		if c, err := anthropic.New(anthropic.Config{APIKey: key}); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("anthropic: %w", err))
		} else {
			clients[registry.ProviderAnthropic] = c
		}
	}
	if key := resolveKey(settings, "openai"); key != "" {
		if c, err := openai.New(openai.Config{APIKey: key}); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("openai: %w", err))
		} else {
			clients[registry.ProviderOpenAI] = c
		}
	}
	if key := resolveKey(settings, "gemini"); key != "" {
		if c, err := gemini.New(gemini.Config{APIKey: key}); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("gemini: %w", err))
		} else {
			clients[registry.ProviderGemini] = c
		}
	}
	if errs != nil && len(errs.Errors) > 0 {
		if len(clients) == 0 {
			return nil, errs.ErrorOrNil()
		}
		slog.Warn("some provider clients failed to initialize", "error", errs.ErrorOrNil())
	}
	return clients, nil
}

func resolveKey(settings config.Settings, provider string) string {
	if key := settings.APIKeys[provider]; key != "" {
		return key
	}
	return config.GetProviderAPIKey(provider)
}

// resolveModelSelections maps the user's persisted role -> display-name
// choices onto the gateway's model selections, falling back to the
// catalog's first entry for each role when the user hasn't chosen yet.
func resolveModelSelections(settings config.Settings, catalog *registry.ModelCatalog) orchestrator.ModelSelections {
	sel := orchestrator.ModelSelections{}
	for _, p := range settings.Providers {
		switch p.Role {
		case string(registry.RoleSummary):
			sel.Summary = p.DisplayName
		case string(registry.RoleWriting):
			sel.Writing = p.DisplayName
		}
	}
	if sel.Summary == "" {
		sel.Summary = firstDisplayNameForRole(catalog, registry.RoleSummary)
	}
	if sel.Writing == "" {
		sel.Writing = firstDisplayNameForRole(catalog, registry.RoleWriting)
	}
	return sel
}

func firstDisplayNameForRole(catalog *registry.ModelCatalog, role registry.Role) string {
	for _, entry := range catalog.All() {
		if entry.Role == role {
			return entry.DisplayName
		}
	}
	return ""
}

// InfoCmd prints the resolved settings without starting the server, useful
// for diagnosing a misconfigured deployment.
type InfoCmd struct{}

func (c *InfoCmd) Run(cli *CLI) error {
	ctx := context.Background()
	loader := config.NewLoader(cli.ConfigDir)
	settings, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	fmt.Printf("config dir:        %s\n", cli.ConfigDir)
	fmt.Printf("writing settings:  %+v\n", settings.Writing)
	fmt.Printf("provider choices:  %+v\n", settings.Providers)
	fmt.Printf("api keys present:  %d\n", len(settings.APIKeys))
	return nil
}

// VersionCmd prints build information.
type VersionCmd struct{}

const version = "0.1.0"

func (c *VersionCmd) Run(cli *CLI) error {
	fmt.Printf("blogpilot %s\n", version)
	return nil
}

func printBanner(addr string) {
	if stat, err := os.Stdout.Stat(); err != nil || (stat.Mode()&os.ModeCharDevice) == 0 {
		return
	}
	const green = "\033[38;2;16;185;129m"
	const reset = "\033[0m"
	fmt.Printf("%s\n  blogpilot — content-generation pipeline server\n  listening on %s\n%s\n", green, addr, reset)
}

func shouldSkipBanner(args []string) bool {
	for _, a := range args {
		switch a {
		case "info", "version":
			return true
		}
	}
	return false
}

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		slog.Warn("failed to load .env files", "error", err)
	}

	var cli CLI
	parser := kong.Must(&cli,
		kong.Name("blogpilot"),
		kong.Description("Staged LLM pipeline that turns a keyword into a finished blog post."),
		kong.UsageOnError(),
	)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	cleanup, err := initLogger(cli.LogLevel, cli.LogFile, cli.LogFormat)
	parser.FatalIfErrorf(err)
	defer cleanup()

	if !shouldSkipBanner(os.Args[1:]) {
		slog.Debug("starting", "command", kctx.Command())
	}

	parser.FatalIfErrorf(kctx.Run(&cli))
}

// initLogger resolves the requested log level and output destination and
// initializes the shared slog default logger. Returns a no-op cleanup when
// logging to stderr, or one that closes the log file otherwise.
func initLogger(levelStr, logFile, format string) (func(), error) {
	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	if logFile == "" {
		logger.Init(level, os.Stderr, format)
		return func() {}, nil
	}
	file, cleanup, err := logger.OpenLogFile(logFile)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.Init(level, file, format)
	return cleanup, nil
}
