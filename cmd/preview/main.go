// Package main previews the yield change of a policy card, or of a list of
// modifiers, against a saved game-state snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/yieldpreview/internal/config"
	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
	"github.com/cory-johannsen/yieldpreview/internal/observability"
	"github.com/cory-johannsen/yieldpreview/internal/preview"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	statePath := flag.String("state", "content/state/sample.yaml", "path to a game-state snapshot YAML file")
	tradition := flag.String("tradition", "", "tradition type to preview")
	modifiers := flag.String("modifiers", "", "comma-separated modifier ids to preview")
	flag.Parse()

	if (*tradition == "") == (*modifiers == "") {
		fmt.Fprintln(os.Stderr, "usage: preview [-config <file>] [-state <file>] (-tradition <type> | -modifiers <id,id,...>)")
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

	ctx := context.Background()
	tables, err := preview.LoadRules(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("loading rule database", zap.String("driver", cfg.RuleDB.Driver), zap.Error(err))
	}
	logger.Info("rule database loaded",
		zap.String("driver", cfg.RuleDB.Driver),
		zap.Int("modifiers", len(tables.Modifiers)),
		zap.Int("traditions", len(tables.Traditions)),
	)

	snap, err := gamestate.LoadSnapshot(*statePath)
	if err != nil {
		logger.Fatal("loading game state", zap.String("path", *statePath), zap.Error(err))
	}

	o := preview.New(cfg.Preview, logger, gamestate.NewStaticProvider(snap), gameinfo.NewDB(tables))

	var res preview.Result
	if *tradition != "" {
		res = o.PreviewTradition(*tradition)
	} else {
		res = o.PreviewModifiers(splitIDs(*modifiers))
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		logger.Fatal("encoding result", zap.Error(err))
	}
	if err := enc.Close(); err != nil {
		logger.Fatal("flushing result", zap.Error(err))
	}

	logger.Info("preview complete",
		zap.String(observability.FieldPreviewID, res.ID.String()),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func splitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
