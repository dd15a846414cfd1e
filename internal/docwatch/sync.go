// Package docwatch keeps the document index in step with the documents
// directory when files are added or removed behind the service's back.
package docwatch

import (
	"context"
	"log/slog"

	"github.com/starford/studyplan/internal/models"
	"github.com/starford/studyplan/internal/storage"
)

// Indexer is the part of the study service reconciliation drives.
type Indexer interface {
	Documents(ctx context.Context) ([]models.Document, error)
	IndexFile(ctx context.Context, name string) (models.Document, bool, error)
	ForgetFile(ctx context.Context, doc models.Document) (bool, error)
}

// Result counts what a Sync pass changed.
type Result struct {
	Registered int
	Forgotten  int
}

// Sync brings the index up to date with the directory:
//   - files without a document row are registered under General
//   - rows whose file is gone are removed
//
// Per-file failures are logged and skipped.
func Sync(ctx context.Context, idx Indexer, files storage.Provider, logger *slog.Logger) (Result, error) {
	var res Result

	onDisk, err := files.List()
	if err != nil {
		return res, err
	}
	docs, err := idx.Documents(ctx)
	if err != nil {
		return res, err
	}

	disk := make(map[string]struct{}, len(onDisk))
	for _, f := range onDisk {
		disk[f.Name] = struct{}{}
	}
	indexed := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		indexed[d.Path] = struct{}{}
		if _, ok := disk[d.Path]; ok {
			continue
		}
		forgotten, err := idx.ForgetFile(ctx, d)
		if err != nil {
			logger.Warn("sync: forget failed", slog.String("path", d.Path), slog.String("error", err.Error()))
			continue
		}
		if forgotten {
			res.Forgotten++
		}
	}

	for _, f := range onDisk {
		if _, ok := indexed[f.Name]; ok {
			continue
		}
		_, registered, err := idx.IndexFile(ctx, f.Name)
		if err != nil {
			logger.Warn("sync: register failed", slog.String("path", f.Name), slog.String("error", err.Error()))
			continue
		}
		if registered {
			res.Registered++
		}
	}

	if res.Registered > 0 || res.Forgotten > 0 {
		logger.Info("sync: documents reconciled",
			slog.Int("registered", res.Registered),
			slog.Int("forgotten", res.Forgotten),
		)
	}
	return res, nil
}
