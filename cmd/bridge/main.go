package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/txf-bridge/internal/config"
	"github.com/rickgao/txf-bridge/internal/downstream"
	"github.com/rickgao/txf-bridge/internal/schedule"
	"github.com/rickgao/txf-bridge/internal/supervisor"
	"github.com/rickgao/txf-bridge/internal/upstream"
	"github.com/rickgao/txf-bridge/internal/vendorsdk"
	"github.com/rickgao/txf-bridge/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/bridge.local.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to an optional .env file of credentials")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting txf-bridge",
		"build", version.String(),
		version.LogGroup(),
		"config", *configPath,
	)

	if err := config.LoadDotEnv(*envPath); err != nil {
		logger.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		if errors.Is(err, config.ErrMissingCredential) {
			logger.Error("missing required upstream credential", "error", err)
		} else {
			logger.Error("failed to load config", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"contract", cfg.Upstream.ContractPath,
		"downstream_topic", cfg.Downstream.Topic,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	scheduleCfg, err := buildScheduleConfig(cfg.Session, cfg.Supervisor.MonitorInterval)
	if err != nil {
		logger.Error("failed to build session calendar", "error", err)
		os.Exit(1)
	}

	downstreamCfg := downstream.Config{
		Brokers:          cfg.Downstream.Brokers,
		Topic:            cfg.Downstream.Topic,
		Linger:           cfg.Downstream.Linger,
		BatchMaxBytes:    cfg.Downstream.BatchMaxBytes,
		MaxBufferedBytes: cfg.Downstream.MaxBufferedBytes,
		RequiredAcks:     cfg.Downstream.RequiredAcks,
		FlushTimeout:     cfg.Downstream.FlushTimeout,
		ProbeGroupPrefix: cfg.Downstream.ProbeGroupPrefix,
	}

	publisher, err := downstream.NewPublisher(downstreamCfg, logger)
	if err != nil {
		logger.Error("failed to initialize downstream producer", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	probe := downstream.NewProbe(downstreamCfg, logger)

	supervisorCfg := supervisor.Config{
		MonitorInterval:   cfg.Supervisor.MonitorInterval,
		TimeoutSeconds:    cfg.Supervisor.TimeoutSeconds,
		MaxTimeoutRetries: cfg.Supervisor.MaxTimeoutRetries,
		ShutdownDrain:     supervisor.DefaultConfig().ShutdownDrain,
	}

	sup := supervisor.New(supervisorCfg, scheduleCfg, publisher, probe, logger)
	onTick, onSubscribed := sup.Callbacks()

	upstreamCfg := upstream.Config{
		APIKey:                    cfg.Upstream.APIKey,
		SecretKey:                 cfg.Upstream.SecretKey,
		ContractPath:              cfg.Upstream.ContractPath,
		ContractPollAttempts:      cfg.Upstream.ContractPollAttempts,
		ContractPollInterval:      cfg.Upstream.ContractPollInterval,
		UnsubscribeConfirmTimeout: cfg.Upstream.UnsubscribeConfirmTimeout,
		UnsubscribeConfirmPoll:    cfg.Upstream.UnsubscribeConfirmPoll,
	}
	mgr := upstream.NewManager(upstreamCfg, vendorsdk.Factory, onTick, onSubscribed, logger)
	sup.AttachUpstream(mgr)

	healthServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: healthHandler(sup),
	}
	go func() {
		logger.Info("starting health server", "addr", cfg.HTTP.Addr)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("bridge running", "instance_id", cfg.Instance.ID)

	if err := sup.Run(ctx); err != nil {
		logger.Error("supervisor exited with error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = healthServer.Shutdown(shutdownCtx)

	logger.Info("bridge stopped")
}

func buildScheduleConfig(s config.SessionConfig, monitorInterval time.Duration) (schedule.Config, error) {
	loc, err := time.LoadLocation(s.Location)
	if err != nil {
		return schedule.Config{}, err
	}
	return schedule.Config{
		Location:        loc,
		DayOpen:         s.DayOpen,
		DayClose:        s.DayClose,
		NightOpen:       s.NightOpen,
		NightClose:      s.NightClose,
		MonitorInterval: monitorInterval,
		DayThreshold:    s.DayThreshold,
		NightThreshold:  s.NightThreshold,
	}, nil
}

func healthHandler(sup *supervisor.Supervisor) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sup.Health())
	})
	return mux
}
