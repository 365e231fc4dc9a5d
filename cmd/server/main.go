package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tennis-referee-service/internal/config"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/server"
)

const serviceName = "tennis-referee-service"

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: serviceName,
		Version: cfg.Log.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, logger)
	if err != nil {
		logging.Error(logger, "server setup failed", err)
		return err
	}
	srv.Run(ctx, stop)
	return nil
}
