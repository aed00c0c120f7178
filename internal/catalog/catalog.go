// Package catalog caches extracted feature records in a local sqlite file so
// unchanged images are not re-processed across runs. Entries are keyed by
// absolute path plus file mod time and size; a changed file simply misses.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"imgsheet/internal/extract"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	path       TEXT    NOT NULL,
	mod_time   TEXT    NOT NULL,
	size_bytes INTEGER NOT NULL,
	ord        INTEGER NOT NULL,
	name       TEXT    NOT NULL,
	kind       TEXT    NOT NULL,
	text_value TEXT,
	num_value  REAL,
	PRIMARY KEY (path, ord)
);
CREATE INDEX IF NOT EXISTS idx_records_path ON records(path);`

// Value kinds persisted per feature.
const (
	kindText  = "text"
	kindInt   = "int"
	kindFloat = "float"
)

type Catalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the catalog at path.
func Open(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return &Catalog{db: db, logger: logger}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Lookup returns the cached record for path if the file is unchanged since
// it was stored. The second return is false on a miss.
func (c *Catalog) Lookup(ctx context.Context, path string) (*extract.Record, bool, error) {
	modTime, size, err := fingerprint(path)
	if err != nil {
		return nil, false, err
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT name, kind, text_value, num_value
		 FROM records
		 WHERE path = ? AND mod_time = ? AND size_bytes = ?
		 ORDER BY ord`,
		path, modTime, size)
	if err != nil {
		return nil, false, fmt.Errorf("catalog lookup %s: %w", path, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			c.logger.Error("catalog.rows.close", "error", cerr)
		}
	}()

	rec := extract.NewRecord()
	for rows.Next() {
		var name, kind string
		var textVal sql.NullString
		var numVal sql.NullFloat64
		if err := rows.Scan(&name, &kind, &textVal, &numVal); err != nil {
			return nil, false, fmt.Errorf("catalog scan: %w", err)
		}
		switch kind {
		case kindInt:
			rec.Set(name, int(numVal.Float64))
		case kindFloat:
			rec.Set(name, numVal.Float64)
		default:
			rec.Set(name, textVal.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("catalog rows: %w", err)
	}
	if rec.Len() == 0 {
		return nil, false, nil
	}
	return rec, true, nil
}

// Store saves rec for path, replacing any previous entry.
func (c *Catalog) Store(ctx context.Context, path string, rec *extract.Record) error {
	modTime, size, err := fingerprint(path)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE path = ?`, path); err != nil {
		return fmt.Errorf("catalog delete %s: %w", path, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (path, mod_time, size_bytes, ord, name, kind, text_value, num_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("catalog prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for ord, name := range rec.Keys() {
		v, _ := rec.Get(name)
		var kind string
		var textVal any
		var numVal any
		switch x := v.(type) {
		case int:
			kind, numVal = kindInt, float64(x)
		case int64:
			kind, numVal = kindInt, float64(x)
		case float64:
			kind, numVal = kindFloat, x
		case string:
			kind, textVal = kindText, x
		default:
			kind, textVal = kindText, fmt.Sprintf("%v", x)
		}
		if _, err := stmt.ExecContext(ctx, path, modTime, size, ord, name, kind, textVal, numVal); err != nil {
			return fmt.Errorf("catalog insert %s/%s: %w", path, name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog commit: %w", err)
	}
	c.logger.Debug("catalog.store.ok", "path", path, "features", rec.Len())
	return nil
}

func fingerprint(path string) (string, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.ModTime().UTC().Format(time.RFC3339Nano), info.Size(), nil
}
