package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/niiboye001/genesis-invoice/internal/config"
	"github.com/niiboye001/genesis-invoice/internal/container"
	httpapi "github.com/niiboye001/genesis-invoice/internal/interfaces/http"
	"github.com/niiboye001/genesis-invoice/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default configs/config.yaml when present)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if err := run(cfg, logger.Logger); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
		_ = logger.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting Genesis Invoice",
		zap.String("version", httpapi.Version),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close container", zap.Error(err))
		}
	}()

	health := func(ctx context.Context) (bool, interface{}) {
		status := app.Health(ctx)
		return status.Overall, status.Components
	}

	server := httpapi.NewServer(
		httpapi.ServerConfig{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			Mode:            cfg.Server.Mode,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		},
		app.Services().Invoices,
		app.Services().Documents,
		health,
		app.ServiceLogger(),
	)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("Server exited successfully")
	return nil
}
