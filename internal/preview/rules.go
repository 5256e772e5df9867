package preview

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/yieldpreview/internal/config"
	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
	"github.com/cory-johannsen/yieldpreview/internal/gameinfo/sqlite"
	"github.com/cory-johannsen/yieldpreview/internal/storage/postgres"
)

// LoadRules reads the rule tables from the source cfg.RuleDB selects.
//
// Precondition: cfg must have passed Validate.
// Postcondition: Returns the tables or a wrapped error naming the driver.
func LoadRules(ctx context.Context, cfg config.Config, logger *zap.Logger) (*gameinfo.Tables, error) {
	switch cfg.RuleDB.Driver {
	case config.DriverYAML:
		t, err := gameinfo.LoadYAMLDir(cfg.RuleDB.Path)
		if err != nil {
			return nil, fmt.Errorf("loading yaml rules: %w", err)
		}
		return t, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.RuleDB.Path, true)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite rules: %w", err)
		}
		defer db.Close()
		t, err := sqlite.Load(ctx, db, logger)
		if err != nil {
			return nil, fmt.Errorf("loading sqlite rules: %w", err)
		}
		return t, nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to rule store: %w", err)
		}
		defer pool.Close()
		t, err := postgres.NewRuleRepository(pool.DB(), logger).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading postgres rules: %w", err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown rule database driver %q", cfg.RuleDB.Driver)
	}
}
