package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"assignment-helper/internal/model"
)

type AnalysisResultRepository struct {
	db *gorm.DB
}

func NewAnalysisResultRepository(db *gorm.DB) *AnalysisResultRepository {
	return &AnalysisResultRepository{db: db}
}

func (r *AnalysisResultRepository) WithTx(tx *gorm.DB) *AnalysisResultRepository {
	return &AnalysisResultRepository{db: tx}
}

func (r *AnalysisResultRepository) Create(ctx context.Context, result *model.AnalysisResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("create analysis result failed: %w", err)
	}
	return nil
}

func (r *AnalysisResultRepository) GetByID(ctx context.Context, id uint) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get analysis result failed: %w", err)
	}
	return &result, nil
}

// GetLatestByAssignmentID returns the newest row; several may exist because
// re-ingestion is not deduplicated.
func (r *AnalysisResultRepository) GetLatestByAssignmentID(ctx context.Context, assignmentID uint) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("analyzed_at DESC, id DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest analysis result failed: %w", err)
	}
	return &result, nil
}

func (r *AnalysisResultRepository) CountByAssignmentID(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.AnalysisResult{}).Where("assignment_id = ?", assignmentID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count analysis results failed: %w", err)
	}
	return count, nil
}
