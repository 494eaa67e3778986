package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/api"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/audit"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/chat"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/routing"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/synth"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool/builtin"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/config"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/eventbus"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/llm"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/mcp"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/sqlite"
	"github.com/matiasleandrokruk/toolbridge/internal/server"
	"github.com/matiasleandrokruk/toolbridge/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("toolbridge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	if err := serve(); err != nil {
		fmt.Fprintf(out, "toolbridge: %v\n", err) //nolint:errcheck
		return 1
	}
	return 0
}

func serve() error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := sqlite.MigrateUp(db); err != nil {
		db.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	closers := []io.Closer{db}

	bus := eventbus.New()
	auditService := audit.NewService(db, log)
	go audit.NewRecorder(auditService, bus).Run(ctx)

	registry := tool.NewRegistry(log, cfg.ToolTimeout)
	builtin.RegisterAll(registry, builtin.Config{FileRoot: cfg.FileRoot})

	if cfg.MCPServer != "" {
		bridge, err := mcp.Connect(ctx, cfg.MCPServer, log)
		if err != nil {
			// A dead bridge should not take the builtin tools down
			// with it.
			log.Warn("mcp bridge unavailable", "server", cfg.MCPServer, "error", err)
		} else {
			n, err := bridge.RegisterTools(ctx, registry)
			if err != nil {
				log.Warn("mcp tool discovery failed", "server", cfg.MCPServer, "error", err)
				bridge.Close()
			} else {
				log.Info("registered mcp tools", "server", cfg.MCPServer, "count", n)
				closers = append(closers, bridge)
			}
		}
	}

	providerRouter := llm.NewRouter(map[string]llm.Provider{
		cfg.LLMModel: llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMAPIKey),
	}, cfg.LLMModel)
	provider, err := providerRouter.Route(ctx)
	if err != nil {
		return fmt.Errorf("select llm provider: %w", err)
	}
	if err := provider.HealthCheck(ctx); err != nil {
		log.Warn("llm provider not reachable at startup", "base_url", cfg.LLMBaseURL, "error", err)
	}

	query := routing.NewQueryStrategy(registry, provider, cfg.RoutingTimeout)
	intentRouter := routing.NewDefaultRouter(log, registry, query)
	chatService := chat.NewService(provider, registry, intentRouter, synth.NewSynthesizer(), bus, cfg.LLMModel, log)

	handler := api.NewRouter(api.Deps{
		Registry: registry,
		Chat:     chatService,
		Audit:    auditService,
		Bus:      bus,
		Log:      log,
	})

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Host
	srvCfg.Port = cfg.Port
	srv := server.NewServer(handler, srvCfg, log, closers...)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}
}

func printHelp(out io.Writer) {
	helpText := `toolbridge - tool invocation engine for OpenAI-compatible chat

Usage:
  toolbridge [options]

Options:
  --version    Show version information
  --help       Show this help message

Configuration is read from TOOLBRIDGE_CONFIG (YAML) and environment
variables; environment wins. See config keys:
  TOOLBRIDGE_HOST, TOOLBRIDGE_PORT, TOOLBRIDGE_DB, TOOLBRIDGE_FILE_ROOT,
  LLM_BASE_URL, LLM_MODEL, LLM_API_KEY,
  TOOL_TIMEOUT, ROUTING_TIMEOUT, MCP_SERVER

Examples:
  toolbridge --version
  TOOLBRIDGE_PORT=9090 toolbridge`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
