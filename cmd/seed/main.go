package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rankdesk/rankdesk/internal/adapters/catalog"
	"github.com/rankdesk/rankdesk/internal/seed"
	"github.com/rankdesk/rankdesk/pkg/logger"
)

const seedTimeout = 30 * time.Second

func main() {
	var (
		dbPath   = flag.String("db", "rankdesk.db", "Path to the catalog database")
		fixtures = flag.String("fixtures", "fixtures.yaml", "Path to the YAML fixtures file")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(*logLevel); err != nil {
		os.Stderr.WriteString("invalid log level: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	log := logger.Get().Named("seed")

	f, err := seed.Load(*fixtures)
	if err != nil {
		log.Error(ctx, "failed to load fixtures", logger.String("path", *fixtures), logger.Error(err))
		os.Exit(1)
	}

	cat, err := catalog.Open(*dbPath)
	if err != nil {
		log.Error(ctx, "failed to open catalog", logger.String("db", *dbPath), logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = cat.Close() }()

	if err := seed.Apply(ctx, cat, f); err != nil {
		log.Error(ctx, "failed to apply fixtures", logger.Error(err))
		os.Exit(1)
	}
}
