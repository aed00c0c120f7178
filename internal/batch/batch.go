// Package batch drives sequential feature extraction over many images and
// decides the skip-and-continue policy: a failed image is logged and dropped,
// successful records accumulate in input order.
package batch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"imgsheet/constants"
	"imgsheet/internal/extract"
)

// Stats aggregates one Run.
type Stats struct {
	Processed int
	Succeeded int
	Failed    int
	Cached    int
}

// Cache is the optional feature store consulted before re-extracting.
type Cache interface {
	Lookup(ctx context.Context, path string) (*extract.Record, bool, error)
	Store(ctx context.Context, path string, rec *extract.Record) error
}

// Images walks root and returns the image files in walk order. Hidden files
// and directories are skipped; without recursive, subdirectories are not
// entered.
func Images(root string, recursive bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if constants.IsImageExt(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// Driver runs the extractor over a list of paths, strictly sequentially.
type Driver struct {
	extractor *extract.Extractor
	cache     Cache // nil disables caching
	logger    *slog.Logger
}

func NewDriver(extractor *extract.Extractor, cache Cache, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{extractor: extractor, cache: cache, logger: logger}
}

// Run extracts a feature record per path. Failed images are skipped; the
// returned records keep input order. Cache read/write problems degrade to
// plain extraction, they never fail the batch.
func (d *Driver) Run(ctx context.Context, paths []string) ([]*extract.Record, Stats) {
	logger := d.logger.With("batch_id", uuid.New().String())
	var stats Stats
	records := make([]*extract.Record, 0, len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch.cancelled", "error", err, "remaining", len(paths)-stats.Processed)
			break
		}
		stats.Processed++

		if d.cache != nil {
			rec, hit, err := d.cache.Lookup(ctx, path)
			if err != nil {
				logger.Warn("batch.cache.lookup.failed", "path", path, "error", err)
			} else if hit {
				records = append(records, rec)
				stats.Succeeded++
				stats.Cached++
				continue
			}
		}

		rec, err := d.extractor.Extract(ctx, path)
		if err != nil {
			logger.Warn("batch.extract.failed", "path", path, "error", err)
			stats.Failed++
			continue
		}
		if d.cache != nil {
			if err := d.cache.Store(ctx, path, rec); err != nil {
				logger.Warn("batch.cache.store.failed", "path", path, "error", err)
			}
		}
		records = append(records, rec)
		stats.Succeeded++
	}

	logger.Info("batch.done",
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"cached", stats.Cached,
	)
	return records, stats
}
