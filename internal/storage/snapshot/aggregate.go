package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/yndnr/snapkeep/internal/core/domain"
	"github.com/yndnr/snapkeep/internal/storage/docsource"
)

// Aggregator collects every data document into one SnapshotDocument.
type Aggregator struct {
	source docsource.Source
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator creates an Aggregator reading from source.
func NewAggregator(source docsource.Source, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Aggregate reads all documents the source lists. A document that cannot
// be read or is not valid JSON is logged and left out; only a failure to
// list the source aborts the snapshot.
func (a *Aggregator) Aggregate(ctx context.Context, ownerScope string, typ domain.BackupType) (*domain.SnapshotDocument, error) {
	names, err := a.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: list documents: %w", err)
	}

	doc := &domain.SnapshotDocument{
		Timestamp:  a.now().UTC(),
		OwnerScope: ownerScope,
		Type:       typ,
		Files:      make(map[string]json.RawMessage, len(names)),
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := a.source.Read(ctx, name)
		if err != nil {
			a.logger.Warn("snapshot: skipping unreadable document",
				"document", name,
				"error", err,
			)
			continue
		}
		if !json.Valid(data) {
			a.logger.Warn("snapshot: skipping document with invalid JSON",
				"document", name,
			)
			continue
		}

		doc.Files[docsource.StoreName(name)] = json.RawMessage(data)
	}

	a.logger.Debug("snapshot: aggregated documents",
		"listed", len(names),
		"included", len(doc.Files),
	)
	return doc, nil
}
