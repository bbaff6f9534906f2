package app

import (
	"context"

	"go.uber.org/zap"

	"assignment-helper/internal/metrics"
	"assignment-helper/internal/repository"
)

const (
	DefaultTopK = 5
	MaxTopK     = 50

	// nullDistance stands in for a distance the database could not compute.
	nullDistance = 1.0
)

// SourceSearcher is satisfied by repository.AcademicSourceRepository.
type SourceSearcher interface {
	SearchNearest(ctx context.Context, vec []float32, topK int) ([]repository.SourceMatchRow, error)
}

// SourceMatch is one ranked source. SimilarityScore is the raw cosine
// distance, so smaller means closer.
type SourceMatch struct {
	ID              uint    `json:"id"`
	Title           string  `json:"title"`
	Authors         string  `json:"authors"`
	PublicationYear *int    `json:"publication_year"`
	Abstract        string  `json:"abstract"`
	SourceType      string  `json:"source_type"`
	SimilarityScore float64 `json:"similarity_score"`
}

type RetrievalService struct {
	embedder Embedder
	searcher SourceSearcher
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewRetrievalService(embedder Embedder, searcher SourceSearcher, logger *zap.Logger, m *metrics.Metrics) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		searcher: searcher,
		logger:   logger,
		metrics:  m,
	}
}

// Search returns up to topK sources closest to query. An embedding failure
// yields an empty list, not an error; only a failed database query is returned.
func (s *RetrievalService) Search(ctx context.Context, query string, topK int) ([]SourceMatch, error) {
	topK = ClampTopK(topK)

	vec, err := s.embedder.Embed(ctx, query)
	s.metrics.RecordEmbedding("retrieval", err)
	if err != nil {
		s.logger.Warn("query embedding failed, returning no sources", zap.Error(err))
		return []SourceMatch{}, nil
	}

	rows, err := s.searcher.SearchNearest(ctx, vec, topK)
	if err != nil {
		return nil, err
	}

	matches := make([]SourceMatch, 0, len(rows))
	for _, row := range rows {
		score := nullDistance
		if row.Distance != nil {
			score = *row.Distance
		} else {
			s.logger.Warn("null distance for source", zap.Uint("source_id", row.ID))
		}
		matches = append(matches, SourceMatch{
			ID:              row.ID,
			Title:           row.Title,
			Authors:         row.Authors,
			PublicationYear: row.PublicationYear,
			Abstract:        row.Abstract,
			SourceType:      row.SourceType,
			SimilarityScore: score,
		})
		if len(matches) == topK {
			break
		}
	}
	return matches, nil
}

// ClampTopK maps a requested result count into [1, MaxTopK]; non-positive
// values select DefaultTopK.
func ClampTopK(topK int) int {
	if topK <= 0 {
		return DefaultTopK
	}
	if topK > MaxTopK {
		return MaxTopK
	}
	return topK
}
