// Package sqlite reads the rule tables from the game's gameplay SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/yieldpreview/internal/gameinfo"
)

// Open opens the database at path.
//
// Precondition: path must name an existing file unless readOnly is false.
// Postcondition: Returns a pinged handle or a non-nil error.
func Open(path string, readOnly bool) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)"
	if readOnly {
		dsn += "&mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

// Load reads every table in gameinfo.Schema concurrently. Tables or columns
// the database does not carry are logged and left empty, since older game
// builds omit some of them.
//
// Precondition: db must be open; logger must not be nil.
// Postcondition: Returns a fully populated Tables or the first query error.
func Load(ctx context.Context, db *sql.DB, logger *zap.Logger) (*gameinfo.Tables, error) {
	parts := make([]*gameinfo.Tables, len(gameinfo.Schema))
	g, gctx := errgroup.WithContext(ctx)
	for i, tb := range gameinfo.Schema {
		i, tb := i, tb
		g.Go(func() error {
			part := &gameinfo.Tables{}
			n, err := loadTable(gctx, db, tb, part)
			if err != nil {
				if isMissingSchema(err) {
					logger.Warn("skipping table absent from gameplay database",
						zap.String("table", tb.Name), zap.Error(err))
					parts[i] = part
					return nil
				}
				return err
			}
			logger.Debug("loaded table", zap.String("table", tb.Name), zap.Int("rows", n))
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
	return out, nil
}

func loadTable(ctx context.Context, db *sql.DB, tb gameinfo.Table, into *gameinfo.Tables) (int, error) {
	rows, err := db.QueryContext(ctx, tb.SelectSQL(gameinfo.SQLite))
	if err != nil {
		return 0, fmt.Errorf("querying %s: %w", tb.Name, err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		if err := tb.Scan(into, rows); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("iterating %s: %w", tb.Name, err)
	}
	return n, nil
}

func isMissingSchema(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}

// Write creates every table in gameinfo.Schema and inserts the rows of t in
// a single transaction.
//
// Precondition: db must be writable.
// Postcondition: Either every row is written or none is.
func Write(ctx context.Context, db *sql.DB, t *gameinfo.Tables) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, tb := range gameinfo.Schema {
		if _, err := tx.ExecContext(ctx, tb.CreateSQL(gameinfo.SQLite)); err != nil {
			return fmt.Errorf("creating %s: %w", tb.Name, err)
		}
		rows := tb.Rows(t)
		if len(rows) == 0 {
			continue
		}
		stmt, err := tx.PrepareContext(ctx, tb.InsertSQL(gameinfo.SQLite))
		if err != nil {
			return fmt.Errorf("preparing insert into %s: %w", tb.Name, err)
		}
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r...); err != nil {
				_ = stmt.Close()
				return fmt.Errorf("inserting into %s: %w", tb.Name, err)
			}
		}
		if err := stmt.Close(); err != nil {
			return fmt.Errorf("closing insert into %s: %w", tb.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
