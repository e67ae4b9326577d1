package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/forkmesh-go/internal/core/service"
	"github.com/yndnr/forkmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/forkmesh-go/internal/infra/confloader"
	"github.com/yndnr/forkmesh-go/internal/infra/shutdown"
	"github.com/yndnr/forkmesh-go/internal/infra/tlsroots"
	"github.com/yndnr/forkmesh-go/internal/remote/rpcclient"
	"github.com/yndnr/forkmesh-go/internal/server/config"
	"github.com/yndnr/forkmesh-go/internal/server/httpserver"
	"github.com/yndnr/forkmesh-go/internal/storage/memory"
	"github.com/yndnr/forkmesh-go/internal/svm"
	"github.com/yndnr/forkmesh-go/internal/telemetry/logger"
	"github.com/yndnr/forkmesh-go/internal/telemetry/metric"
)

// shutdownTimeout bounds all shutdown hooks together.
const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, "forkmesh-server "+buildinfo.String())
	}
	return &cli.App{
		Name:    "forkmesh-server",
		Usage:   "Disposable ledger forks over HTTP and JSON-RPC",
		Version: buildinfo.Get().Version,
		Flags:   serverFlags(),
		Action:  run,
	}
}

func run(c *cli.Context) error {
	configFile := c.String("config")
	overrides := flagOverrides(c)

	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting forkmesh-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile,
		"remote", config.Sanitize(cfg).Remote.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Remote ledger
	roots, err := tlsroots.NewPool(cfg.Remote.CAFile)
	if err != nil {
		return fmt.Errorf("load remote CA file: %w", err)
	}
	remote := rpcclient.New(rpcclient.Config{
		URL:             cfg.Remote.URL,
		Commitment:      cfg.Remote.Commitment,
		Timeout:         cfg.Remote.Timeout,
		MaxRetries:      cfg.Remote.MaxRetries,
		RetryBase:       cfg.Remote.RetryBase,
		RateLimit:       cfg.Remote.RateLimit,
		RateBurst:       cfg.Remote.RateBurst,
		BreakerFailures: cfg.Remote.BreakerFailures,
		BreakerOpen:     cfg.Remote.BreakerOpen,
		RootCAs:         roots,
		Logger:          log.With("component", "rpcclient"),
	})

	// Fork store
	store := memory.New()
	svcOpts := []service.Option{
		service.WithRetention(cfg.Fork.Retention),
		service.WithSweepInterval(cfg.Fork.SweepInterval),
		service.WithLogger(log.With("component", "forks")),
	}

	var registry *metric.Registry
	if cfg.Metrics.Enabled {
		registry = metric.NewRegistry()
		if err := registry.Register(metric.NewShardCollector(store.ShardStats)); err != nil {
			return fmt.Errorf("register shard collector: %w", err)
		}
		svcOpts = append(svcOpts, service.WithRecorder(registry))
	}

	engines := svm.Factory(svm.WithLamportsPerSignature(cfg.Engine.LamportsPerSignature))
	forks := service.NewForkService(store, remote, engines, svcOpts...)
	forks.Start(ctx)

	// HTTP server
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		ForkService:        forks,
		Remote:             remote,
		Metrics:            registry,
		Logger:             log.With("component", "http"),
		CORSAllowedOrigins: cfg.Server.HTTP.CORSAllowedOrigins,
		GlobalRateLimit:    cfg.Server.HTTP.RateLimit,
		EnableAudit:        true,
	})

	srvOpts := []httpserver.Option{
		httpserver.WithTimeouts(cfg.Server.HTTP.ReadTimeout, cfg.Server.HTTP.WriteTimeout),
	}
	if cfg.Server.HTTP.TLSEnabled() {
		reloader, err := tlsroots.NewCertReloader(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(log))
		if err != nil {
			return fmt.Errorf("load TLS key pair: %w", err)
		}
		go func() {
			if err := reloader.Run(ctx); err != nil {
				log.Error("certificate reloader stopped", "error", err)
			}
		}()
		srvOpts = append(srvOpts, httpserver.WithTLSConfig(reloader.ServerConfig()))
	}
	srv := httpserver.New(cfg.Server.HTTP.Addr, router, srvOpts...)

	// Hot reload of log.level
	if configFile != "" {
		watcher := confloader.NewWatcher(configFile, func(path string) {
			reloadLogLevel(path, overrides, log)
		}, confloader.WithWatcherLogger(log))
		go func() {
			if err := watcher.Run(ctx); err != nil {
				log.Error("configuration watcher stopped", "error", err)
			}
		}()
	}

	// Hooks run in reverse order: HTTP, eviction, watchers
	sh := shutdown.NewHandler(shutdownTimeout, log)
	sh.OnShutdown("watchers", func(context.Context) error {
		cancel()
		return nil
	})
	sh.OnShutdown("eviction", func(context.Context) error {
		forks.Stop()
		return nil
	})
	sh.OnShutdown("http", srv.Shutdown)

	waitCtx, stopWaiting := context.WithCancel(ctx)
	defer stopWaiting()

	failed := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr, "tls", srv.TLSEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
			stopWaiting()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	shutdownErr := sh.Wait(waitCtx)

	select {
	case err := <-failed:
		return errors.Join(fmt.Errorf("http server: %w", err), shutdownErr)
	default:
	}
	if shutdownErr != nil {
		return shutdownErr
	}

	log.Info("server stopped gracefully")
	return nil
}
