package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"assignment-helper/internal/metrics"
	"assignment-helper/internal/model"
	"assignment-helper/internal/repository"
)

// AnalysisPayload is what the analysis workflow posts back. Every field but
// AssignmentID is optional; absent values take the defaults applied in Result.
type AnalysisPayload struct {
	AssignmentID            *uint                  `json:"assignment_id"`
	SuggestedSources        []model.SourceSummary  `json:"suggested_sources"`
	PlagiarismScore         *float64               `json:"plagiarism_score"`
	FlaggedSections         []model.FlaggedSection `json:"flagged_sections"`
	ResearchSuggestions     *string                `json:"research_suggestions"`
	CitationRecommendations *string                `json:"citation_recommendations"`
	ConfidenceScore         *float64               `json:"confidence_score"`
}

// DecodeAnalysisPayload parses a workflow body. Unknown fields are ignored.
func DecodeAnalysisPayload(raw []byte) (*AnalysisPayload, error) {
	var payload AnalysisPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &payload, nil
}

func (p *AnalysisPayload) Validate() error {
	if p.AssignmentID == nil || *p.AssignmentID == 0 {
		return fmt.Errorf("%w: assignment_id is required", ErrInvalidInput)
	}
	return nil
}

// Result builds the row to insert, filling defaults for absent fields.
func (p *AnalysisPayload) Result() *model.AnalysisResult {
	result := &model.AnalysisResult{
		SuggestedSources: []model.SourceSummary{},
		FlaggedSections:  []model.FlaggedSection{},
	}
	if p.AssignmentID != nil {
		result.AssignmentID = *p.AssignmentID
	}
	if p.SuggestedSources != nil {
		result.SuggestedSources = p.SuggestedSources
	}
	if p.PlagiarismScore != nil {
		result.PlagiarismScore = *p.PlagiarismScore
	}
	if p.FlaggedSections != nil {
		result.FlaggedSections = p.FlaggedSections
	}
	if p.ResearchSuggestions != nil {
		result.ResearchSuggestions = *p.ResearchSuggestions
	}
	if p.CitationRecommendations != nil {
		result.CitationRecommendations = *p.CitationRecommendations
	}
	if p.ConfidenceScore != nil {
		result.ConfidenceScore = *p.ConfidenceScore
	}
	return result
}

// IngestionService persists analysis results delivered by the workflow,
// over HTTP or the message queue.
type IngestionService struct {
	db             *gorm.DB
	assignmentRepo *repository.AssignmentRepository
	resultRepo     *repository.AnalysisResultRepository
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

func NewIngestionService(
	db *gorm.DB,
	assignmentRepo *repository.AssignmentRepository,
	resultRepo *repository.AnalysisResultRepository,
	logger *zap.Logger,
	m *metrics.Metrics,
) *IngestionService {
	return &IngestionService{
		db:             db,
		assignmentRepo: assignmentRepo,
		resultRepo:     resultRepo,
		logger:         logger,
		metrics:        m,
	}
}

// Store inserts one AnalysisResult inside a transaction. An unknown
// assignment returns ErrAssignmentNotFound and writes nothing.
func (s *IngestionService) Store(ctx context.Context, channel string, payload *AnalysisPayload) (*model.AnalysisResult, error) {
	if err := payload.Validate(); err != nil {
		s.metrics.RecordIngestion(channel, "invalid")
		return nil, err
	}

	result := payload.Result()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.assignmentRepo.WithTx(tx).Exists(ctx, result.AssignmentID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrAssignmentNotFound
		}
		return s.resultRepo.WithTx(tx).Create(ctx, result)
	})
	if err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			s.metrics.RecordIngestion(channel, "not_found")
			s.logger.Warn("analysis for unknown assignment",
				zap.String("channel", channel),
				zap.Uint("assignment_id", result.AssignmentID),
			)
			return nil, err
		}
		s.metrics.RecordIngestion(channel, "error")
		return nil, fmt.Errorf("store analysis result failed: %w", err)
	}

	s.metrics.RecordIngestion(channel, "stored")
	s.logger.Info("analysis result stored",
		zap.String("channel", channel),
		zap.Uint("analysis_id", result.ID),
		zap.Uint("assignment_id", result.AssignmentID),
	)
	return result, nil
}
