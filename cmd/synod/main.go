package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	synodhttp "github.com/synod-io/synod/internal/adapter/http"
	"github.com/synod-io/synod/internal/adapter/mcp"
	synodnats "github.com/synod-io/synod/internal/adapter/nats"
	"github.com/synod-io/synod/internal/adapter/natskv"
	synodotel "github.com/synod-io/synod/internal/adapter/otel"
	"github.com/synod-io/synod/internal/adapter/postgres"
	"github.com/synod-io/synod/internal/adapter/ristretto"
	"github.com/synod-io/synod/internal/adapter/tiered"
	"github.com/synod-io/synod/internal/adapter/ws"
	"github.com/synod-io/synod/internal/config"
	"github.com/synod-io/synod/internal/logger"
	"github.com/synod-io/synod/internal/middleware"
	"github.com/synod-io/synod/internal/port/provider"
	"github.com/synod-io/synod/internal/secrets"
	"github.com/synod-io/synod/internal/service"
)

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(flags); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(flags config.CLIFlags) error {
	cfg, yamlPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	holder := config.NewHolder(cfg, yamlPath)

	slog.Info("config loaded",
		"path", yamlPath,
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"agents", len(cfg.Council.Agents),
		"chairman", cfg.Council.Chairman.Name,
	)

	vault, err := secrets.NewVault(secrets.EnvLoader("OPENROUTER_API_KEY", "SYNOD_MCP_API_KEY"))
	if err != nil {
		return fmt.Errorf("secrets: %w", err)
	}

	ctx := context.Background()

	if flags.Rollback != nil {
		if err := postgres.RollbackMigrations(ctx, cfg.Postgres.DSN, *flags.Rollback); err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		slog.Info("migrations rolled back", "steps", *flags.Rollback)
		return nil
	}

	// --- Telemetry ---

	if cfg.Telemetry.Enabled {
		shutdown, err := synodotel.Setup(ctx, cfg.Logging.Service, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				slog.Warn("telemetry shutdown", "error", err)
			}
		}()
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := synodnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	scoresKV, err := queue.KeyValue(ctx, cfg.NATS.ScoresBucket, 0)
	if err != nil {
		return fmt.Errorf("scores bucket: %w", err)
	}
	cacheKV, err := queue.KeyValue(ctx, cfg.Cache.L2Bucket, cfg.Cache.L2TTL)
	if err != nil {
		return fmt.Errorf("cache bucket: %w", err)
	}

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB * 1024 * 1024)
	if err != nil {
		return fmt.Errorf("l1 cache: %w", err)
	}
	sharedCache := tiered.New(l1, natskv.NewCache(cacheKV), 5*time.Minute)

	// --- Provider ---

	modelProvider, err := newProvider(cfg, vault)
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}

	// --- Services ---

	hub := ws.NewHub()
	store := postgres.NewStore(pool)

	scoreSvc := service.NewScoreService(natskv.NewScoreStore(scoresKV), cfg.Council.CountSelfVotes)
	scoreSvc.SetCache(sharedCache)

	councilSvc := service.NewCouncilService(modelProvider, scoreSvc, hub, queue, cfg.Council)
	if cfg.Telemetry.Enabled {
		metrics, err := synodotel.NewMetrics()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		councilSvc.SetMetrics(metrics)
	}

	titleSvc := service.NewTitleService(store, modelProvider, cfg.Council.TitleModel)
	convSvc := service.NewConversationService(store, councilSvc, titleSvc, cfg.Council.ContextTurns)

	var catalogSvc *service.CatalogService
	if lister, ok := modelProvider.(provider.ModelLister); ok {
		catalogSvc = service.NewCatalogService(lister, sharedCache, cfg.Cache.L2TTL)
	} else {
		return fmt.Errorf("provider %q cannot list models", modelProvider.Name())
	}

	// --- MCP ---

	if cfg.MCP.Enabled {
		mcpSrv := mcp.NewServer(mcp.ServerConfig{
			Addr:    cfg.MCP.Addr,
			Name:    "synod",
			Version: version,
			APIKey:  cfg.MCP.APIKey,
		}, mcp.ServerDeps{
			Council: councilSvc,
			Scores:  scoreSvc,
			Catalog: catalogSvc,
		})
		if err := mcpSrv.Start(); err != nil {
			return fmt.Errorf("mcp: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mcpSrv.Stop(stopCtx)
		}()
	}

	// --- HTTP ---

	handlers := &synodhttp.Handlers{
		Conversations: convSvc,
		Catalog:       catalogSvc,
		Scores:        scoreSvc,
	}

	r := chi.NewRouter()
	r.Use(synodhttp.SecurityHeaders)
	r.Use(synodhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(synodhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.Telemetry.Enabled {
		r.Use(synodotel.HTTPMiddleware(cfg.Logging.Service))
	}

	r.Get("/health", healthHandler(holder, queue, hub))
	r.Get("/ws", hub.HandleWS)
	synodhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Turns block on a full deliberation; keep writes open well past
		// the per-turn timeout.
		WriteTimeout: cfg.Council.TurnTimeout + time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// SIGHUP reloads the YAML config and the provider API key without a
	// restart. Only settings read per-request pick up the new values.
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			if err := holder.Reload(); err != nil {
				slog.Error("config reload failed", "error", err)
				continue
			}
			if err := vault.Reload(); err != nil {
				slog.Error("secret reload failed", "error", err)
				continue
			}
			if rotator, ok := modelProvider.(interface{ SetAPIKey(string) }); ok {
				rotator.SetAPIKey(vault.Get("OPENROUTER_API_KEY"))
			}
			slog.Info("config reloaded", "api_key", vault.Redacted("OPENROUTER_API_KEY"))
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// version is stamped via -ldflags at release build time.
var version = "0.1.0"

// healthHandler reports liveness plus the state of the main dependencies.
func healthHandler(holder *config.Holder, queue *synodnats.Queue, hub *ws.Hub) http.HandlerFunc {
	type healthStatus struct {
		Status      string `json:"status"`
		Version     string `json:"version"`
		NATS        bool   `json:"nats_connected"`
		WSClients   int    `json:"ws_clients"`
		AgentCount  int    `json:"agents"`
		CountedSelf bool   `json:"count_self_votes"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		cfg := holder.Get()
		status := healthStatus{
			Status:      "ok",
			Version:     version,
			NATS:        queue.IsConnected(),
			WSClients:   hub.ConnectionCount(),
			AgentCount:  len(cfg.Council.Agents),
			CountedSelf: cfg.Council.CountSelfVotes,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}
