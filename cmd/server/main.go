package main

import (
	"fmt"
	"os"

	"github.com/qially/portal/internal/api"
	"github.com/qially/portal/internal/bus"
	"github.com/qially/portal/internal/config"
	"github.com/qially/portal/internal/observ"
	"github.com/qially/portal/internal/session"
	"github.com/qially/portal/internal/storage/memory"
	"github.com/qially/portal/internal/tenant"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	metrics := observ.NewMetrics()

	// Process-scoped state, constructed here and injected everywhere —
	// no ambient singletons. Session and connection state live and die with
	// this process: a restart logs everyone out and drops every socket,
	// which is the intended lifecycle.
	stores := memory.NewStores()

	sessions := session.NewStore(cfg.SessionTTL,
		session.WithCountFunc(func(n int) { metrics.ActiveSessions.Set(float64(n)) }),
	)
	defer sessions.Close()

	hub := bus.NewHub(logger,
		bus.WithCountFunc(func(n int) { metrics.ActiveConnections.Set(float64(n)) }),
		bus.WithDeliveryFuncs(
			func() { metrics.BroadcastsSent.Inc() },
			func() { metrics.BroadcastsDropped.Inc() },
		),
	)
	defer hub.Close()

	resolver := tenant.NewResolver(cfg.DefaultTenant, cfg.TenantAliases)

	if cfg.SeedDemoData {
		if err := seedDemoData(stores, cfg.DefaultTenant); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("demo data seeded")
	}

	router := api.NewRouter(api.Deps{
		Stores:   stores,
		Sessions: sessions,
		Hub:      hub,
		Resolver: resolver,
		Metrics:  metrics,
		Logger:   logger,
	})

	logger.Info("starting portal server",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("default_tenant", cfg.DefaultTenant),
	)

	return router.Run(":" + cfg.Port)
}
