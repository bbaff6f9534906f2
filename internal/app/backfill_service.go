package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"assignment-helper/internal/metrics"
	"assignment-helper/internal/model"
)

// SourceEmbeddingStore is satisfied by repository.AcademicSourceRepository.
type SourceEmbeddingStore interface {
	ListWithoutEmbedding(ctx context.Context) ([]model.AcademicSource, error)
	UpdateEmbedding(ctx context.Context, id uint, vec []float32) (bool, error)
}

// BackfillReport counts the outcome of one run. Skipped sources were filled
// by someone else between listing and storing.
type BackfillReport struct {
	Scanned  int `json:"scanned"`
	Embedded int `json:"embedded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// BackfillService fills missing source embeddings. Each successful vector is
// committed on its own, so a rerun only touches sources still missing one.
type BackfillService struct {
	store    SourceEmbeddingStore
	embedder Embedder
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewBackfillService(store SourceEmbeddingStore, embedder Embedder, logger *zap.Logger, m *metrics.Metrics) *BackfillService {
	return &BackfillService{
		store:    store,
		embedder: embedder,
		logger:   logger,
		metrics:  m,
	}
}

func (s *BackfillService) Run(ctx context.Context) (*BackfillReport, error) {
	sources, err := s.store.ListWithoutEmbedding(ctx)
	if err != nil {
		return nil, err
	}

	report := &BackfillReport{Scanned: len(sources)}
	s.logger.Info("backfill started", zap.Int("pending", len(sources)))

	for i := range sources {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("backfill interrupted: %w", err)
		}
		source := &sources[i]

		vec, err := s.embedder.Embed(ctx, source.EmbeddingText())
		s.metrics.RecordEmbedding("backfill", err)
		if err != nil {
			report.Failed++
			s.logger.Warn("embedding failed, source left pending",
				zap.Uint("source_id", source.ID),
				zap.String("title", source.Title),
				zap.Error(err),
			)
			continue
		}

		stored, err := s.store.UpdateEmbedding(ctx, source.ID, vec)
		if err != nil {
			report.Failed++
			s.logger.Warn("store embedding failed",
				zap.Uint("source_id", source.ID),
				zap.Error(err),
			)
			continue
		}
		if !stored {
			report.Skipped++
			s.logger.Info("source already embedded, skipped", zap.Uint("source_id", source.ID))
			continue
		}
		report.Embedded++
	}

	s.logger.Info("backfill finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("embedded", report.Embedded),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}
