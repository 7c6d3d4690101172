package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/andrescamacho/colony-go/internal/adapters/cli"
	"github.com/andrescamacho/colony-go/internal/adapters/grpc"
	"github.com/andrescamacho/colony-go/internal/adapters/metrics"
	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/application/spawning/queries"
	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
	"github.com/andrescamacho/colony-go/internal/infrastructure/database"
	"github.com/andrescamacho/colony-go/internal/infrastructure/pidfile"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Config file (default: colony.yaml in ., ./configs or /etc/colony)")
	flag.Parse()

	fmt.Println("Colony Planner Daemon v0.1.0")
	fmt.Println("============================")

	// Load configuration
	fmt.Println("Loading configuration...")
	watcher, err := config.NewWatcher(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Acquire PID file lock to prevent multiple instances
	pidPath := watcher.Config().Daemon.PIDFile
	fmt.Printf("Acquiring PID file lock: %s\n", pidPath)
	lock, err := pidfile.Acquire(pidPath)
	if err != nil {
		log.Fatalf("Failed to acquire PID file lock: %v", err)
	}
	fmt.Println("PID file lock acquired")

	err = run(watcher)
	if releaseErr := lock.Release(); releaseErr != nil {
		log.Printf("Warning: failed to release PID file: %v", releaseErr)
	}
	if err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(watcher *config.Watcher) error {
	cfg := watcher.Config()

	// 1. Spawn pipeline
	pipeline, err := cli.NewPipelineFromConfig(cfg)
	if err != nil {
		return err
	}
	fmt.Println("Spawn pipeline initialized")

	// 2. Step log persistence (optional)
	var logRepo *persistence.GormStepLogRepository
	if cfg.Logging.Persist {
		fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close(db)
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logRepo = persistence.NewGormStepLogRepository(db, nil)
		fmt.Println("Database connected")
	}
	logger := persistence.NewStepLogWriter(logRepo, os.Stdout, cfg.Logging.Level, "daemon")

	// 3. Metrics
	var requestCollector *metrics.RequestMetricsCollector
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()

		spawnCollector := metrics.NewSpawnMetricsCollector()
		if err := spawnCollector.Register(); err != nil {
			return fmt.Errorf("failed to register spawn metrics: %w", err)
		}
		metrics.SetGlobalSpawnCollector(spawnCollector)

		requestCollector = metrics.NewRequestMetricsCollector()
		if err := requestCollector.Register(); err != nil {
			return fmt.Errorf("failed to register request metrics: %w", err)
		}

		metricsServer = metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
		if err := metricsServer.Start(); err != nil {
			return err
		}
		fmt.Printf("Metrics available at http://%s%s\n", metricsServer.Addr(), cfg.Metrics.Path)
	}

	// 4. Mediator
	med := common.NewMediator()
	med.Use(common.TimingMiddleware(time.Now))
	med.Use(metrics.PrometheusMiddleware(requestCollector))

	if err := common.RegisterHandler[*queries.EvaluateStepQuery](med, queries.NewEvaluateStepHandler(pipeline)); err != nil {
		return fmt.Errorf("failed to register EvaluateStep handler: %w", err)
	}
	fmt.Println("Handlers registered")

	// 5. Hot reload of loadouts and ranks
	if cfg.Daemon.WatchConfig && watcher.File() != "" {
		watcher.Start(func(next *config.Config, err error) {
			if err != nil {
				logger.Log(common.LevelError, "configuration reload rejected", map[string]interface{}{
					"error": err.Error(),
				})
				return
			}
			if err := reloadSpawnTables(pipeline, next); err != nil {
				logger.Log(common.LevelError, "configuration reload rejected", map[string]interface{}{
					"error": err.Error(),
				})
				return
			}
			logger.Log(common.LevelInfo, "loadouts and ranks reloaded", map[string]interface{}{
				"file": watcher.File(),
			})
		})
		fmt.Printf("Watching %s for changes\n", watcher.File())
	}

	// 6. gRPC planner service
	socketPath := cfg.Daemon.SocketPath
	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	server, err := grpc.NewPlannerServer(med, socketPath, logger)
	if err != nil {
		return fmt.Errorf("failed to create planner server: %w", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Printf("\nReceived signal %v, shutting down...\n", sig)
		shutdown(server, metricsServer, cfg.Daemon.ShutdownTimeout)
	}()

	fmt.Printf("\n✓ Daemon is ready on %s\n", socketPath)
	fmt.Println("Press Ctrl+C to stop")

	// Start serving (blocks until shutdown)
	if err := server.Start(); err != nil {
		return fmt.Errorf("planner server error: %w", err)
	}

	fmt.Println("\nDaemon stopped")
	return nil
}

// reloadSpawnTables swaps the loadout table and ranks of a running pipeline
func reloadSpawnTables(pipeline *spawning.Pipeline, cfg *config.Config) error {
	table, err := cfg.Spawn.ToLoadoutTable()
	if err != nil {
		return err
	}
	ranks, err := cfg.Spawn.ToStaticRanks()
	if err != nil {
		return err
	}
	pipeline.SetLoadoutTable(table)
	pipeline.SetStaticRanks(ranks)
	return nil
}

func shutdown(server *grpc.PlannerServer, metricsServer *metrics.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Printf("Warning: metrics server shutdown: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		server.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("Timeout waiting for in-flight calls, stopping now")
		server.ForceStop()
	}
}
