package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"tasklistd/internal/config"
	"tasklistd/internal/provider"
	"tasklistd/internal/reminder"
	"tasklistd/internal/rpc"
	"tasklistd/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a tasklistd.yaml config file")
	addr := flag.String("addr", "", "listen address, overrides the config file")
	dbPath := flag.String("db", "", "sqlite database path, overrides the config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	// Make zap available to packages that log through zap.L().
	zap.ReplaceGlobals(logger)
	defer func() {
		if err := logger.Sync(); err != nil {
			zap.L().Debug("failed to sync logger", zap.Error(err))
		}
	}()

	cfg := config.LoadFromPath(*configPath)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	db, err := sqlx.Connect("sqlite3", cfg.Storage.Path)
	if err != nil {
		logger.Fatal("failed to open sqlite database", zap.String("path", cfg.Storage.Path), zap.Error(err))
	}
	if err := storage.MigrateUp(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	var gateway storage.Gateway
	if cfg.Storage.ConnectionMode == storage.ModePerOperation {
		// The migration connection is only needed long enough to migrate.
		if err := db.Close(); err != nil {
			logger.Warn("failed to close migration connection", zap.Error(err))
		}
		gateway = storage.NewDialGateway(cfg.Storage.Path)
	} else {
		gateway = storage.NewPoolGatewayFromDB(db)
		defer func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close sqlite connection", zap.Error(err))
			}
		}()
	}

	store, err := storage.NewStore(gateway)
	if err != nil {
		logger.Fatal("failed to build store", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := reminder.NewEngine(cfg.Reminder.Buffer)
	engine.Start()
	notifier := reminder.NewNotifier(engine, store)
	notifier.Start()
	defer notifier.Stop()
	if err := notifier.Load(ctx); err != nil {
		logger.Warn("failed to load armed reminders", zap.Error(err))
	}

	svc, err := provider.NewService(store, provider.Metadata{
		ID:          cfg.Provider.ID,
		Name:        cfg.Provider.Name,
		Description: cfg.Provider.Description,
		IconName:    cfg.Provider.IconName,
	}, provider.Options{
		StreamBuffer:      cfg.Stream.Buffer,
		CountByParentList: cfg.Counts.ByParentList,
		Observer:          notifier,
	})
	if err != nil {
		logger.Fatal("failed to build provider", zap.Error(err))
	}

	server := rpc.NewServer(cfg.Server.Addr, svc, rpc.Options{
		RateLimit: cfg.RateLimit,
		Notifier:  notifier,
		Logger:    logger,
	})

	logger.Info("starting tasklistd",
		zap.String("addr", cfg.Server.Addr),
		zap.String("db", cfg.Storage.Path),
		zap.String("connection_mode", cfg.Storage.ConnectionMode))
	if err := server.Run(ctx); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
