package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jwt-pizza-service/internal/app"
	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/config"
	"jwt-pizza-service/internal/microservices/notificator"
)

var (
	configPath string
	port       int

	rootCmd = &cobra.Command{
		Use:           "pizza-service",
		Short:         "JWT Pizza backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the pizza REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.HTTP.Port = port
			}
			return run(cmd.Context(), cfg, "pizza-service", app.Run)
		},
	}

	notificationsCmd = &cobra.Command{
		Use:   "notifications",
		Short: "Consume order events and log a notification for each",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.RabbitMQ.Enabled() {
				return errors.New("rabbitmq.host is required for notifications")
			}
			return run(cmd.Context(), cfg, "notification-subscriber", func(ctx context.Context, cfg *config.Config) error {
				return notificator.Start(ctx, cfg.RabbitMQ)
			})
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.Version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default: ./config.yaml when present)")
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port, overrides http.port")

	rootCmd.AddCommand(serveCmd, notificationsCmd, versionCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.FindConfig()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		path = found
	}
	return config.LoadConfig(path)
}

func run(ctx context.Context, cfg *config.Config, service string, fn func(context.Context, *config.Config) error) error {
	closer := logger.Setup(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer closer.Close()

	lg := logger.New("bootstrap")
	lg.Info("starting", map[string]any{"service": service, "version": app.Version})
	if err := fn(ctx, cfg); err != nil {
		lg.Error("fatal", err, map[string]any{"service": service})
		return err
	}
	return nil
}
