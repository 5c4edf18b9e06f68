package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/dharitri-health/portal-cli/internal/buildinfo"
	"github.com/dharitri-health/portal-cli/internal/client/cli"
	"github.com/dharitri-health/portal-cli/internal/client/config"
	"github.com/dharitri-health/portal-cli/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	// Warnings and errors only: the REPL owns stdout, diagnostics go to stderr.
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
