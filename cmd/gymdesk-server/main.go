package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/core/service"
	"github.com/yndnr/gymdesk-go/internal/infra/buildinfo"
	"github.com/yndnr/gymdesk-go/internal/infra/confloader"
	"github.com/yndnr/gymdesk-go/internal/infra/shutdown"
	"github.com/yndnr/gymdesk-go/internal/server/config"
	"github.com/yndnr/gymdesk-go/internal/server/httpserver"
	"github.com/yndnr/gymdesk-go/internal/server/httpserver/handler"
	"github.com/yndnr/gymdesk-go/internal/storage"
	"github.com/yndnr/gymdesk-go/internal/storage/kvstore"
	"github.com/yndnr/gymdesk-go/internal/storage/memory"
	"github.com/yndnr/gymdesk-go/internal/storage/postgres"
	"github.com/yndnr/gymdesk-go/internal/telemetry/logger"
	"github.com/yndnr/gymdesk-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		migrateDir  = flag.String("migrate", "", "Apply postgres migrations (up or down) and exit")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("gymdesk-server", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if *migrateDir != "" {
		if cfg.Storage.Postgres.DSN == "" {
			return errors.New("migrate: storage.postgres.dsn is not set")
		}
		return postgres.Migrate(cfg.Storage.Postgres.DSN, *migrateDir)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting gymdesk-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile,
		"storage", cfg.Storage.Engine)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := metric.NewRegistry()

	backend, err := initStorage(ctx, cfg, log, metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	if cfg.Storage.SeedTrainingTypes {
		if err := backend.store.SeedTrainingTypes(ctx, domain.DefaultTrainingTypes); err != nil {
			_ = backend.close()
			return fmt.Errorf("seed training types: %w", err)
		}
	}

	services, sessions, err := initServices(cfg, backend.store, log)
	if err != nil {
		_ = backend.close()
		return fmt.Errorf("init services: %w", err)
	}
	if err := metrics.RegisterSessionGauge(sessions.Count); err != nil {
		_ = backend.close()
		return fmt.Errorf("register session gauge: %w", err)
	}

	go services.Sessions.RunCleanup(ctx)

	h := handler.New(handler.Config{
		Services: services,
		Metrics:  metrics,
		Ready:    backend.ready,
		Logger:   log.Slog(),
	})

	routerCfg := &httpserver.RouterConfig{
		Handler:          h,
		Logger:           log,
		CORSOrigins:      cfg.Server.HTTP.CORSOrigins,
		RateLimit:        cfg.Server.HTTP.RateLimit,
		RateBurst:        cfg.Server.HTTP.RateBurst,
		MetricsAllowList: cfg.Server.HTTP.MetricsAllowList,
		TrustedProxies:   cfg.Server.HTTP.TrustedProxies,
	}
	if cfg.Server.HTTP.MetricsEnabled {
		routerCfg.Metrics = metrics
	}
	httpServer := httpserver.New(cfg.Server.HTTP, httpserver.NewRouter(routerCfg), log)

	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout + 5*time.Second)

	// Hooks run in reverse order: HTTP first, storage last.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("closing storage")
		return backend.close()
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		cancel()
		return nil
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	if *configFile != "" {
		watcher, err := watchConfig(*configFile, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", cfg.Server.HTTP.TLSEnabled())
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads defaults, the optional file, .env and the environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	opts := []confloader.Option{
		confloader.WithDefaults(config.DefaultMap()),
		confloader.WithDotEnv(".env"),
	}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	cfg := config.Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger creates the process logger and installs it as the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    os.Stdout,
		AddSource: cfg.Log.AddSource,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// watchConfig reloads the file on change and applies the log level.
// Other settings need a restart.
func watchConfig(path string, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}

// storageBackend is the opened persistence layer.
type storageBackend struct {
	store service.GymStore
	ready func(ctx context.Context) error
	close func() error
}

// initStorage opens the engine selected by storage.engine.
func initStorage(ctx context.Context, cfg *config.ServerConfig, log logger.Logger, metrics *metric.Registry) (*storageBackend, error) {
	switch cfg.Storage.Engine {
	case "postgres":
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:             cfg.Storage.Postgres.DSN,
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
			AutoMigrate:     cfg.Storage.Postgres.AutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		return &storageBackend{
			store: postgres.New(db),
			ready: pingDB(db),
			close: db.Close,
		}, nil

	default:
		kvCfg := storage.DefaultKVConfig(cfg.Storage.DataDir)
		kvCfg.Engine = cfg.Storage.Engine
		kvCfg.Badger.GCInterval = cfg.Storage.Badger.GCInterval.String()
		kvCfg.Badger.GCThreshold = cfg.Storage.Badger.GCThreshold
		kvCfg.Badger.CacheSize = cfg.Storage.Badger.CacheSize
		kvCfg.Badger.SyncWrites = cfg.Storage.Badger.SyncWrites

		kv, err := storage.Open(kvCfg, log.Slog())
		if err != nil {
			return nil, err
		}
		if be, ok := kv.(*storage.BadgerEngine); ok {
			be.RegisterMetrics(metrics.Registerer())
		}
		return &storageBackend{
			store: kvstore.New(kv),
			ready: func(ctx context.Context) error {
				_, err := kv.Stats(ctx)
				return err
			},
			close: kv.Close,
		}, nil
	}
}

func pingDB(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return db.PingContext(ctx)
	}
}

// initServices wires the domain services. Sessions always live in memory.
func initServices(cfg *config.ServerConfig, store service.GymStore, log logger.Logger) (handler.Services, *memory.Store, error) {
	hasher, err := service.NewPasswordHasher(cfg.Auth.PasswordHash)
	if err != nil {
		return handler.Services{}, nil, err
	}

	sessionStore := memory.New(memory.WithMaxSessionsPerUser(cfg.Session.MaxPerUser))
	sessions := service.NewSessionService(sessionStore, &service.SessionConfig{
		TTL:             cfg.Session.TTL,
		IdleTimeout:     cfg.Session.IdleTimeout,
		CleanupInterval: cfg.Session.CleanupInterval,
	}, service.WithSessionLogger(log.Slog()))

	creds := service.NewCredentialService(store, hasher)
	auth := service.NewAuthService(creds, store, sessions, &service.AuthConfig{
		LoginRate:              cfg.Auth.LoginRate,
		LoginBurst:             cfg.Auth.LoginBurst,
		RevokeOnPasswordChange: cfg.Auth.RevokeOnPasswordChange,
	})

	log.Info("services initialized",
		"session_ttl", cfg.Session.TTL.String(),
		"password_hash", cfg.Auth.PasswordHash)

	return handler.Services{
		Auth:      auth,
		Sessions:  sessions,
		Trainees:  service.NewTraineeService(store, creds, sessions),
		Trainers:  service.NewTrainerService(store, creds, sessions),
		Trainings: service.NewTrainingService(store),
		Types:     service.NewTrainingTypeService(store),
	}, sessionStore, nil
}
