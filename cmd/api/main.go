package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/docs"
	"github.com/privatinsolvenz/lead-dashboard/internal/auth"
	"github.com/privatinsolvenz/lead-dashboard/internal/automation"
	"github.com/privatinsolvenz/lead-dashboard/internal/clickup"
	"github.com/privatinsolvenz/lead-dashboard/internal/config"
	"github.com/privatinsolvenz/lead-dashboard/internal/database"
	"github.com/privatinsolvenz/lead-dashboard/internal/http/handler"
	"github.com/privatinsolvenz/lead-dashboard/internal/http/middleware"
	"github.com/privatinsolvenz/lead-dashboard/internal/http/router"
	"github.com/privatinsolvenz/lead-dashboard/internal/jobs"
	"github.com/privatinsolvenz/lead-dashboard/internal/logger"
	"github.com/privatinsolvenz/lead-dashboard/internal/normalizer"
	"github.com/privatinsolvenz/lead-dashboard/internal/oplog"
	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"go.uber.org/zap"
)

// @title Lead Dashboard API
// @version 1.0
// @description Lead intake, phase tracking and ClickUp synchronisation for the insolvency consultation dashboard

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token issued by the dashboard

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description Admin API key
// @Security BearerAuth
// @Security ApiKeyAuth

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// stores bundles the record store chosen at startup
type stores struct {
	leads  repository.LeadRepository
	tokens repository.TokenRepository
	close  func(ctx context.Context) error
}

func run() error {
	ctx := context.Background()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In staging/production secrets come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	st := openStores(ctx, cfg, log)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn("Error closing record store", zap.Error(err))
		}
	}()

	checks := map[string]router.HealthCheck{}

	var sink oplog.Sink
	switch cfg.Oplog.Driver {
	case config.OplogDriverRedis:
		redisSink, err := oplog.NewRedisSink(cfg.Redis.URL, cfg.Oplog.Key, cfg.Oplog.Capacity)
		if err != nil {
			return fmt.Errorf("failed to create redis log sink: %w", err)
		}
		defer func() { _ = redisSink.Close() }()
		checks["oplog"] = redisSink.Ping
		sink = redisSink
	default:
		sink = oplog.NewRingBuffer(cfg.Oplog.Capacity)
	}
	logs := oplog.NewBroadcaster(sink, log)
	log.Info("Operational log initialized", zap.String("driver", cfg.Oplog.Driver))

	credentials := clickup.NewCredentialResolver(st.tokens, cfg.ClickUp.APIKey, log)
	clickupClient := clickup.NewClient(clickup.Config{
		BaseURL:      cfg.ClickUp.BaseURL,
		ClientID:     cfg.ClickUp.ClientID,
		ClientSecret: cfg.ClickUp.ClientSecret,
		RedirectURL:  cfg.ClickUp.RedirectURL,
		Timeout:      cfg.ClickUp.TimeoutDuration(),
	}, credentials)

	forwarder := automation.NewForwarder(automation.Config{
		MakeWebhookURL: cfg.Integration.MakeWebhookURL,
		N8nWebhookURL:  cfg.Integration.N8nWebhookURL,
		Timeout:        cfg.Integration.TimeoutDuration(),
	}, log)

	tokens := auth.NewTokenManager(cfg.Session.Secret)
	if !tokens.Configured() {
		log.Warn("Session secret not configured, session tokens and OAuth are disabled")
	}

	// Services
	syncService := service.NewSyncService(st.leads, clickupClient, forwarder, cfg.ClickUp.ListID, cfg.Sync.TimeoutDuration(), logs, log)
	leadService := service.NewLeadService(st.leads, nil, syncService, logs, log)
	webhookService := service.NewWebhookService(st.leads, normalizer.New(), leadService, syncService, clickupClient, logs, log)
	oauthService := service.NewOAuthService(clickupClient, st.tokens, tokens, cfg.Auth.StateTTLDuration(), logs, log)
	checks["database"] = leadService.Ping
	integrationService := service.NewIntegrationService(service.IntegrationSettings{
		ClickUpAPIKey:  credentials.HasAPIKey(),
		ClickUpListID:  cfg.ClickUp.ListID != "",
		MakeWebhookURL: forwarder.Configures(automation.TargetMake),
		N8nWebhookURL:  forwarder.Configures(automation.TargetN8n),
		OplogDriver:    cfg.Oplog.Driver,
		DatabaseDriver: cfg.Database.Driver,
	}, oauthService)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, cfg.ApiKey.Value, cfg.Auth.Enabled, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(
		cfg,
		log,
		authMiddleware,
		rateLimiter,
		checks,
		handler.NewLeadHandler(leadService, log),
		handler.NewWebhookHandler(webhookService, log),
		handler.NewSyncHandler(syncService, log),
		handler.NewLogHandler(logs, middleware.StreamOrigins(&cfg.CORS, cfg.App.Environment), log),
		handler.NewIntegrationHandler(integrationService, log),
		handler.NewOAuthHandler(oauthService, log),
		handler.NewAuthHandler(tokens, cfg.Session.TTLDuration(), log),
	)

	scheduler := jobs.NewScheduler(log)
	scheduled, err := jobs.RegisterSyncAllJob(scheduler, syncService, log, cfg.Sync.Schedule, cfg.Sync.TimeoutDuration())
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	if scheduled {
		scheduler.Start()
	} else {
		log.Info("Periodic sync disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduled {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		drained := make(chan struct{})
		go func() {
			syncService.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-ctx.Done():
			log.Warn("Background syncs still running at shutdown")
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

// openStores connects the configured record store. When the store cannot be
// reached the service still starts and data routes answer 503 until an
// operator fixes the connection and restarts it.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) stores {
	noop := func(context.Context) error { return nil }

	if cfg.Database.Driver == config.DriverMongoDB {
		db, reachable, err := database.ConnectMongo(ctx, &cfg.MongoDB, &cfg.Database, log)
		if err != nil {
			log.Error("MongoDB not configured, starting degraded", zap.Error(err))
			return unavailableStores(err, noop)
		}

		// Indexes are retried on the first write or readiness check when this fails
		leads := repository.NewMongoLeadRepository(db)
		if reachable {
			if err := leads.EnsureIndexes(ctx); err != nil {
				log.Warn("Failed to create lead indexes, will retry", zap.Error(err))
			}
		}
		log.Info("MongoDB initialized",
			zap.String("database", cfg.MongoDB.Database),
			zap.Bool("reachable", reachable))

		return stores{
			leads:  leads,
			tokens: repository.NewMongoTokenRepository(db),
			close:  func(ctx context.Context) error { return database.DisconnectMongo(ctx, db) },
		}
	}

	db, err := database.NewDatabase(ctx, &cfg.Database, log)
	if err != nil {
		log.Error("Database unreachable, starting degraded",
			zap.String("driver", cfg.Database.Driver),
			zap.Error(err))
		return unavailableStores(err, noop)
	}

	if cfg.Database.Driver == config.DriverSQLite {
		if err := database.AutoMigrate(db); err != nil {
			log.Error("Failed to migrate SQLite schema", zap.Error(err))
		}
	}
	log.Info("Database initialized", zap.String("driver", cfg.Database.Driver))

	return stores{
		leads:  repository.NewGormLeadRepository(db),
		tokens: repository.NewGormTokenRepository(db),
		close:  func(context.Context) error { return database.Close(db) },
	}
}

func unavailableStores(cause error, closeFn func(context.Context) error) stores {
	repo := repository.NewUnavailableRepository(cause)
	return stores{leads: repo, tokens: repo, close: closeFn}
}
