package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tokenforge/config"
	"tokenforge/core/events"
	"tokenforge/core/state"
	"tokenforge/core/types"
	"tokenforge/gateway"
	"tokenforge/gateway/middleware"
	"tokenforge/native/migration"
	"tokenforge/native/minter"
	"tokenforge/native/staking"
	"tokenforge/native/token"
	"tokenforge/native/vesting"
	"tokenforge/observability/logging"
	"tokenforge/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("tokenforged", logging.Options{
		Level:     cfg.LogLevel,
		Path:      cfg.LogPath,
		MaxSizeMB: cfg.LogMaxSize,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("daemon exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	manager := state.NewManager(db)
	ring := events.NewRingEmitter(cfg.EventBuffer)

	ledger := token.NewEngine()
	ledger.SetState(manager)
	ledger.SetEmitter(ring)

	if cfg.Treasury != "" {
		treasury, err := types.ParseAddress(cfg.Treasury)
		if err != nil {
			return fmt.Errorf("parse treasury: %w", err)
		}
		supply, err := config.ParseAmount(cfg.GenesisSupply)
		if err != nil {
			return fmt.Errorf("parse genesis supply: %w", err)
		}
		if err := ledger.InitGenesis(treasury, supply); err != nil {
			return fmt.Errorf("apply genesis: %w", err)
		}
		logger.Info("genesis ensured", "treasury", treasury.String(), "supply", supply.String())
	} else {
		logger.Warn("no treasury configured; genesis skipped")
	}

	mintEngine := minter.NewEngine(ledger)
	mintEngine.SetState(manager)
	mintEngine.SetEmitter(ring)
	for channel, cc := range map[string]config.ChannelConfig{
		minter.ChannelAdmin: cfg.AdminChannel,
		minter.ChannelGame:  cfg.GameChannel,
	} {
		rate, err := config.ParseAmount(cc.RatePerSecond)
		if err != nil {
			return fmt.Errorf("parse %s channel rate: %w", channel, err)
		}
		hardCap, err := config.ParseAmount(cc.HardCap)
		if err != nil {
			return fmt.Errorf("parse %s channel cap: %w", channel, err)
		}
		if err := mintEngine.InitChannel(channel, minter.ChannelDefaults{
			RatePerSecond: rate,
			HardCap:       hardCap,
		}); err != nil {
			return fmt.Errorf("init %s channel: %w", channel, err)
		}
	}

	stakeEngine := staking.NewEngine(ledger)
	stakeEngine.SetState(manager)
	stakeEngine.SetEmitter(ring)
	if err := stakeEngine.Init(); err != nil {
		return fmt.Errorf("init staking: %w", err)
	}

	tracker := migration.NewEngine(ledger)
	tracker.SetState(manager)
	tracker.SetEmitter(ring)

	vestEngine := vesting.NewEngine(ledger, tracker)
	vestEngine.SetState(manager)
	vestEngine.SetEmitter(ring)
	if cfg.VestingPeriodSeconds > 0 {
		vestEngine.SetVestingPeriod(cfg.VestingPeriodSeconds)
	}

	server := gateway.NewServer(gateway.Config{
		Engines: gateway.Engines{
			Token:     ledger,
			Minter:    mintEngine,
			Staking:   stakeEngine,
			Vesting:   vestEngine,
			Migration: tracker,
		},
		Events: ring,
		Logger: logger,
		RateLimiter: middleware.NewRateLimiter(middleware.RateLimit{
			PerSecond: cfg.RateLimitPerSecond,
			Burst:     cfg.RateLimitBurst,
		}),
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "address", cfg.ListenAddress)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
