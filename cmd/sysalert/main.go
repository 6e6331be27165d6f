// Package main is the entry point for the sysalert telemetry agent. It loads
// configuration, wires the collector registry and probe aggregator together,
// and runs the polling loop as a foreground process.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sysalert/agent/internal/autostart"
	"github.com/sysalert/agent/internal/collector"
	"github.com/sysalert/agent/internal/config"
	"github.com/sysalert/agent/internal/history"
	"github.com/sysalert/agent/internal/models"
	"github.com/sysalert/agent/internal/scheduler"
	"github.com/sysalert/agent/internal/telemetry"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  = flag.String("config", "sysalert.yaml", "Path to configuration file")
	showVersion = flag.Bool("version", false, "Show version and exit")
	runOnce     = flag.Bool("once", false, "Collect a single snapshot, print it as JSON, and exit")
	install     = flag.Bool("install", false, "Register the agent as a boot-time launchd job and exit")
	uninstall   = flag.Bool("uninstall", false, "Remove the boot-time launchd job and exit")
	userMode    = flag.Bool("user", false, "Install per-user instead of system-wide (powermetrics then falls back to estimates)")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("sysalert %s\n", version)
		os.Exit(0)
	}

	if *install || *uninstall {
		if err := manageAutostart(*install); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	agg := telemetry.New(buildRegistry(cfg, logger), cfg.Probes, logger)

	if *runOnce {
		if err := printOnce(ctx, agg); err != nil {
			logger.Fatal("Snapshot failed", zap.Error(err))
		}
		return
	}

	logger.Info("Starting sysalert agent",
		zap.String("version", version),
		zap.Duration("interval", cfg.Collection.Interval.Duration))

	runAgent(ctx, cfg, agg, logger)
	logger.Info("Agent stopped")
}

// buildRegistry registers every local collector.
func buildRegistry(cfg *config.Config, logger *zap.Logger) *collector.Registry {
	registry := collector.NewRegistry(logger)
	registry.Register(collector.NewCPUCollector())
	registry.Register(collector.NewMemoryCollector())
	registry.Register(collector.NewNetworkCollector())
	registry.Register(collector.NewTemperatureCollector(logger))
	registry.Register(collector.NewProcessCollector(cfg.Collection.TopProcesses))
	registry.Register(collector.NewSysInfoCollector())
	registry.Register(collector.NewHealthCollector())
	return registry
}

// runAgent wires the scheduler to the optional history store and blocks
// until the context is cancelled.
func runAgent(ctx context.Context, cfg *config.Config, agg *telemetry.Aggregator, logger *zap.Logger) {
	var store *history.Store
	if cfg.History.Enabled {
		var err error
		store, err = history.Open(cfg.History.DBPath, cfg.History.BatchSize, logger)
		if err != nil {
			logger.Fatal("Failed to open history store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("History store close failed", zap.Error(err))
			}
		}()
	}

	sched := scheduler.New(agg, cfg, logger)
	sched.OnSnapshot(func(snap *models.Snapshot) {
		logger.Info("Snapshot",
			zap.Float64("cpu_avg", snap.CPU.Average),
			zap.Float64("package_w", snap.CPU.Power.PackageWatts),
			zap.Float64("battery", snap.Battery.Percentage),
			zap.Int("thermal_pressure", snap.Thermal.Pressure),
			zap.String("workload", snap.Performance.Workload))

		if store != nil {
			if err := store.Record(ctx, snap); err != nil {
				logger.Warn("History record failed", zap.Error(err))
			}
		}
	})

	sched.Start(ctx)
}

// manageAutostart installs or removes the launchd job for the current binary.
// Installing over an existing job is a no-op.
func manageAutostart(installing bool) error {
	mode := autostart.SystemMode
	if *userMode {
		mode = autostart.UserMode
	}
	mgr := autostart.NewWithMode(mode)

	if !installing {
		return mgr.Uninstall()
	}

	installed, err := mgr.IsInstalled()
	if err != nil {
		return err
	}
	if installed {
		fmt.Printf("%s is already installed\n", mgr.ServiceName())
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}
	if err := mgr.Install(execPath); err != nil {
		return err
	}
	fmt.Printf("installed %s\n", mgr.ServiceName())
	return nil
}

// printOnce collects a single snapshot and writes it to stdout as JSON.
func printOnce(ctx context.Context, agg *telemetry.Aggregator) error {
	snap := agg.Collect(ctx)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// initLogger creates a zap logger based on the configuration.
// It outputs to both console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
