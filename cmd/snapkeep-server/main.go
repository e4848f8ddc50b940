package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yndnr/snapkeep/internal/core/service"
	"github.com/yndnr/snapkeep/internal/infra/buildinfo"
	"github.com/yndnr/snapkeep/internal/infra/confloader"
	"github.com/yndnr/snapkeep/internal/infra/shutdown"
	"github.com/yndnr/snapkeep/internal/infra/tlsroots"
	"github.com/yndnr/snapkeep/internal/server/config"
	"github.com/yndnr/snapkeep/internal/server/httpserver"
	"github.com/yndnr/snapkeep/internal/server/localserver"
	"github.com/yndnr/snapkeep/internal/storage"
	"github.com/yndnr/snapkeep/internal/storage/docsource"
	"github.com/yndnr/snapkeep/internal/storage/ledger"
	"github.com/yndnr/snapkeep/internal/storage/snapshot"
	"github.com/yndnr/snapkeep/internal/telemetry/logger"
	"github.com/yndnr/snapkeep/internal/telemetry/metric"
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
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("snapkeep-server %s\n", buildinfo.String())
		return nil
	}

	loader := newLoader(*configFile)
	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLog, err := logger.New(config.ToLoggerConfig(cfg))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(appLog)
	log := appLog.Slog()

	info := buildinfo.Get()
	log.Info("starting snapkeep-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile,
		"settings", config.Sanitize(cfg))

	ctx := context.Background()
	metrics := metric.NewRegistry()
	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout, shutdown.WithLogger(log))

	store, closeStore, err := openLedgerStore(cfg, metrics, log)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	if closeStore != nil {
		shutdownHandler.OnShutdown("ledger", func(context.Context) error {
			return closeStore()
		})
	}
	backupLedger := ledger.New(store,
		ledger.WithLogger(log),
		ledger.WithCorruptionCounter(metrics.LedgerCorruptions))

	source := docsource.NewDir(cfg.Storage.DataDir, ledgerExclusions(cfg)...)
	aggregator := snapshot.NewAggregator(source, log)
	artifacts := snapshot.NewArtifactStore(cfg.Storage.BackupDir)

	opts := []service.BackupOption{
		service.WithLogger(log),
		service.WithMetrics(metrics),
		service.WithVerifyChecksum(cfg.Backup.VerifyChecksum),
		service.WithRetentionKeep(cfg.Backup.RetentionKeep),
	}
	cipher, err := config.NewCipher(cfg)
	if err != nil {
		return fmt.Errorf("init encryption: %w", err)
	}
	if cipher != nil {
		opts = append(opts, service.WithCipher(cipher))
	}
	backupSvc := service.NewBackupService(backupLedger, aggregator, artifacts, opts...)

	if err := metrics.Registerer().Register(metric.NewCollector(backupSvc.Stats)); err != nil {
		return fmt.Errorf("register ledger collector: %w", err)
	}

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.BackupService = backupSvc
	routerCfg.Metrics = metrics
	routerCfg.Logger = log
	routerCfg.AdminAllowList = cfg.Server.HTTP.AdminAllowList
	routerCfg.RateLimit = cfg.Server.HTTP.RateLimit
	routerCfg.RateBurst = cfg.Server.HTTP.RateBurst

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, httpserver.NewRouter(routerCfg))

	watchCtx, stopWatchers := context.WithCancel(ctx)
	shutdownHandler.OnShutdown("watchers", func(context.Context) error {
		stopWatchers()
		return nil
	})

	if config.TLSEnabled(cfg) {
		certWatcher, err := tlsroots.NewWatcher(
			cfg.Server.HTTP.TLSCertFile,
			cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(log))
		if err != nil {
			return fmt.Errorf("load TLS key pair: %w", err)
		}
		httpServer.UseTLS(certWatcher.ServerConfig())
		go func() {
			if err := certWatcher.Run(watchCtx); err != nil {
				log.Error("certificate watcher stopped", "error", err)
			}
		}()
	}

	if loader.FilePath() != "" {
		if err := watchConfig(loader, log, shutdownHandler); err != nil {
			log.Warn("config hot reload disabled", "error", err)
		}
	}

	if socket := cfg.Server.Local.SocketPath; socket != "" {
		localCfg := *routerCfg
		localCfg.AdminAllowList = nil
		localCfg.RateLimit = 0
		localServer := localserver.New(socket, httpserver.NewRouter(&localCfg))
		if err := localServer.Listen(); err != nil {
			return fmt.Errorf("local admin socket: %w", err)
		}
		shutdownHandler.OnShutdown("local", func(ctx context.Context) error {
			return localServer.Shutdown(ctx)
		})
		go func() {
			log.Info("local admin socket listening", "path", socket)
			if err := localServer.Serve(); err != nil {
				log.Error("local admin socket error", "error", err)
			}
		}()
	}

	shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()
	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", httpServer.TLS(),
			"encryption", backupSvc.EncryptionEnabled())
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			stopServing()
		}
	}()

	if err := shutdownHandler.Wait(serveCtx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
	}

	log.Info("server stopped gracefully")
	return nil
}

func newLoader(configFile string) *confloader.Loader {
	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	return confloader.NewLoader(opts...)
}

// loadConfig loads defaults, the config file and the environment, then
// validates the result.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openLedgerStore returns the ledger persistence backend and, for Badger,
// a close function.
func openLedgerStore(cfg *config.ServerConfig, metrics *metric.Registry, log *slog.Logger) (ledger.Store, func() error, error) {
	if !config.IsBadgerLedger(cfg) {
		log.Info("ledger backend", "backend", config.LedgerBackendFile, "path", cfg.Storage.LedgerPath)
		return ledger.NewFileStore(cfg.Storage.LedgerPath), nil, nil
	}

	engine, err := storage.NewBadgerEngine(config.ToKVConfig(cfg), log)
	if err != nil {
		return nil, nil, err
	}
	if err := engine.RegisterMetrics(metrics.Registerer()); err != nil {
		engine.Close()
		return nil, nil, err
	}
	log.Info("ledger backend", "backend", config.LedgerBackendBadger, "dir", cfg.Storage.BadgerDir)
	return ledger.NewBadgerStore(engine), engine.Close, nil
}

// ledgerExclusions keeps a file ledger out of snapshots when it lives in
// the data directory.
func ledgerExclusions(cfg *config.ServerConfig) []docsource.Option {
	if config.IsBadgerLedger(cfg) {
		return nil
	}
	ledgerDir, err := filepath.Abs(filepath.Dir(cfg.Storage.LedgerPath))
	if err != nil {
		return nil
	}
	dataDir, err := filepath.Abs(cfg.Storage.DataDir)
	if err != nil || ledgerDir != dataDir {
		return nil
	}
	return []docsource.Option{docsource.Exclude(cfg.Storage.LedgerPath)}
}

// watchConfig reloads the config file on change and applies the log level.
// Other settings need a restart.
func watchConfig(loader *confloader.Loader, log *slog.Logger, sh *shutdown.Handler) error {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return err
	}
	if err := watcher.Watch(loader.FilePath()); err != nil {
		watcher.Stop()
		return err
	}

	watcher.OnChange(func(path string) {
		next := config.Default()
		if err := loader.Reload(next); err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		if err := config.Verify(next); err != nil {
			log.Warn("reloaded config is invalid, keeping current settings", "path", path, "error", err)
			return
		}
		if next.Log.Level != logger.GetLevel() {
			logger.SetLevel(next.Log.Level)
			log.Info("log level changed", "level", next.Log.Level)
		}
	})
	watcher.StartAsync()

	sh.OnShutdown("config-watcher", func(context.Context) error {
		return watcher.Stop()
	})
	return nil
}
