// Package main copies a YAML or SQLite rule database into the postgres rule
// store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/yieldpreview/internal/config"
	"github.com/cory-johannsen/yieldpreview/internal/observability"
	"github.com/cory-johannsen/yieldpreview/internal/preview"
	"github.com/cory-johannsen/yieldpreview/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	format := flag.String("format", "", "source format: yaml or sqlite")
	source := flag.String("source", "", "YAML table directory or sqlite gameplay database")
	flag.Parse()

	if *format == "" || *source == "" {
		fmt.Fprintln(os.Stderr, "usage: import-gameinfo [-config <file>] -format <yaml|sqlite> -source <path>")
		os.Exit(1)
	}
	if *format != config.DriverYAML && *format != config.DriverSQLite {
		fmt.Fprintf(os.Stderr, "unknown format %q (supported: yaml, sqlite)\n", *format)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	start := time.Now()
	ctx := context.Background()

	src := cfg
	src.RuleDB = config.RuleDBConfig{Driver: *format, Path: *source}
	tables, err := preview.LoadRules(ctx, src, logger)
	if err != nil {
		logger.Fatal("reading source rules", zap.String("format", *format), zap.String("source", *source), zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to rule store", zap.Error(err))
	}
	defer pool.Close()

	if err := postgres.NewRuleRepository(pool.DB(), logger).Store(ctx, tables); err != nil {
		logger.Fatal("storing rules", zap.Error(err))
	}
	fmt.Printf("import complete: %d modifiers, %d requirements in %s\n",
		len(tables.Modifiers), len(tables.Requirements), time.Since(start).Round(time.Millisecond))
}
