package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
)

// ErrEmptyRuleStore is returned by Load when no Modifiers rows exist.
var ErrEmptyRuleStore = errors.New("rule store is empty")

// RuleRepository loads and replaces the rule tables.
type RuleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewRuleRepository creates a RuleRepository backed by db.
//
// Precondition: db must be an open pool whose schema was migrated; logger must not be nil.
func NewRuleRepository(db *pgxpool.Pool, logger *zap.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

// Load reads every table in gameinfo.Schema concurrently.
//
// Postcondition: Returns populated Tables, ErrEmptyRuleStore when nothing
// has been imported yet, or the first query error.
func (r *RuleRepository) Load(ctx context.Context) (*gameinfo.Tables, error) {
	parts := make([]*gameinfo.Tables, len(gameinfo.Schema))
	g, gctx := errgroup.WithContext(ctx)
	for i, tb := range gameinfo.Schema {
		i, tb := i, tb
		g.Go(func() error {
			part := &gameinfo.Tables{}
			rows, err := r.db.Query(gctx, tb.SelectSQL(gameinfo.Postgres))
			if err != nil {
				return fmt.Errorf("querying %s: %w", tb.Name, err)
			}
			defer rows.Close()
			for rows.Next() {
				if err := tb.Scan(part, rows); err != nil {
					return err
				}
			}
			if err := rows.Err(); err != nil {
				return fmt.Errorf("iterating %s: %w", tb.Name, err)
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := &gameinfo.Tables{}
	for _, p := range parts {
		out.Merge(p)
	}
	if len(out.Modifiers) == 0 {
		return nil, ErrEmptyRuleStore
	}
	r.logger.Info("rule tables loaded from postgres",
		zap.Int("modifiers", len(out.Modifiers)),
		zap.Int("requirements", len(out.Requirements)))
	return out, nil
}

// Store replaces the contents of every rule table with t in one transaction.
//
// Precondition: t must not be nil.
// Postcondition: Either every table is replaced or none is.
func (r *RuleRepository) Store(ctx context.Context, t *gameinfo.Tables) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, tb := range gameinfo.Schema {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE %s", pgx.Identifier{tb.Name}.Sanitize())); err != nil {
			return fmt.Errorf("truncating %s: %w", tb.Name, err)
		}
		rows := tb.Rows(t)
		if len(rows) == 0 {
			continue
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{tb.Name}, tb.ColumnNames(), pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copying into %s: %w", tb.Name, err)
		}
		r.logger.Debug("table stored", zap.String("table", tb.Name), zap.Int64("rows", n))
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
