package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tokamak-network/pages-deployer/docs"
	"github.com/tokamak-network/pages-deployer/internal/config"
	"github.com/tokamak-network/pages-deployer/internal/consts"
	"github.com/tokamak-network/pages-deployer/internal/logger"
	"github.com/tokamak-network/pages-deployer/pkg/api/routes"
	"github.com/tokamak-network/pages-deployer/pkg/api/servers"
	"github.com/tokamak-network/pages-deployer/pkg/infrastructure/github"
	"github.com/tokamak-network/pages-deployer/pkg/infrastructure/inmemory"
	"github.com/tokamak-network/pages-deployer/pkg/infrastructure/postgres/connection"
	postgresRepositories "github.com/tokamak-network/pages-deployer/pkg/infrastructure/postgres/repositories"
	redisStore "github.com/tokamak-network/pages-deployer/pkg/infrastructure/redis"
	"github.com/tokamak-network/pages-deployer/pkg/metrics"
	"github.com/tokamak-network/pages-deployer/pkg/notifier"
	"github.com/tokamak-network/pages-deployer/pkg/services"
	"github.com/tokamak-network/pages-deployer/pkg/taskmanager"

	"github.com/gin-contrib/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title           Pages Deployer
// @version         2.1
// @description     Generates static projects from task briefs and publishes them to GitHub Pages.

// @host      localhost:${PORT}
// @BasePath  /api/v1
func main() {

	logger.Init()
	defer logger.Sync()

	// Load .env file if it exists (optional for Docker runtime)
	if err := godotenv.Load(".env"); err != nil {
		logger.Infof("No .env file found, using environment variables: %s", err)
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	host, hostInfo, err := newRepositoryHost(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to set up repository host", zap.Error(err))
	}

	stores, err := newRecordStores(cfg)
	if err != nil {
		logger.Fatal("Failed to set up record store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer stores.close()

	taskManager := taskmanager.NewTaskManager(cfg.Workers, cfg.QueueSize)
	taskManager.Start()
	m.RegisterQueueDepth(taskManager.Pending)

	deploymentService := services.NewDeploymentService(
		services.DeploymentServiceConfig{
			Secret:          cfg.Secret,
			NotifyOnFailure: cfg.NotifyOnFailure,
		},
		host,
		stores.deployments,
		stores.taskRecords,
		notifier.New(notifier.WithMetrics(m)),
		taskManager,
		m,
	)

	// programmatically set swagger info
	docs.SwaggerInfo.Title = "Pages Deployer"
	docs.SwaggerInfo.Version = consts.ServiceVersion
	docs.SwaggerInfo.Schemes = []string{"http"}
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%s", cfg.Port)
	docs.SwaggerInfo.BasePath = "/api/v1"

	server := servers.NewServer(cfg, deploymentService, taskManager, m, registry, hostInfo, true)
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"*"}

	server.Use(cors.New(corsConfig))

	routes.SetupRoutes(server)

	go func() {
		logger.Info("Server listening",
			zap.String("port", cfg.Port),
			zap.String("host", cfg.HostBackend),
			zap.String("store", cfg.StoreBackend),
		)
		if err := server.Start(cfg.Port); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	logger.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}
	if err := taskManager.Stop(shutdownCtx); err != nil {
		logger.Warn("Deployments still running at shutdown", zap.Int("pending", taskManager.Pending()), zap.Error(err))
	}
}

func newRepositoryHost(ctx context.Context, cfg *config.Config) (services.RepositoryHost, servers.HostInfo, error) {
	switch cfg.HostBackend {
	case config.HostBackendMemory:
		host := inmemory.NewHost(cfg.GitHub.Owner)
		logger.Warn("Using in-memory repository host; nothing will be published", zap.String("owner", host.Owner()))
		return host, servers.HostInfo{Backend: cfg.HostBackend, Connected: false, User: host.Owner()}, nil
	default:
		client, err := github.NewClient(ctx, github.Config{
			Token:   cfg.GitHub.Token,
			Owner:   cfg.GitHub.Owner,
			APIURL:  cfg.GitHub.APIURL,
			Private: cfg.GitHub.Private,
		})
		if err != nil {
			return nil, servers.HostInfo{}, err
		}
		return client, servers.HostInfo{Backend: cfg.HostBackend, Connected: true, User: client.Owner()}, nil
	}
}

type recordStores struct {
	deployments services.DeploymentRepository
	taskRecords services.TaskRecordRepository
	close       func()
}

func newRecordStores(cfg *config.Config) (*recordStores, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		db, err := connection.Init(
			cfg.Postgres.User,
			cfg.Postgres.Host,
			cfg.Postgres.Password,
			cfg.Postgres.Database,
			cfg.Postgres.Port,
		)
		if err != nil {
			return nil, err
		}
		return &recordStores{
			deployments: postgresRepositories.NewDeploymentRepository(db),
			taskRecords: postgresRepositories.NewTaskRecordRepository(db),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	case config.StoreBackendRedis:
		store, err := redisStore.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		return &recordStores{
			deployments: store,
			taskRecords: store,
			close:       func() { _ = store.Close() },
		}, nil
	default:
		store := inmemory.NewStore()
		logger.Info("Task records are kept in memory and lost on restart")
		return &recordStores{deployments: store, taskRecords: store, close: func() {}}, nil
	}
}
