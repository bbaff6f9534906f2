package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"assignment-helper/internal/model"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) WithTx(tx *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

func (r *AssignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return fmt.Errorf("create assignment failed: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id uint) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment failed: %w", err)
	}
	return &assignment, nil
}

// Exists avoids loading original_text, which can be large.
func (r *AssignmentRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Assignment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check assignment existence failed: %w", err)
	}
	return count > 0, nil
}

func (r *AssignmentRepository) ListByStudentID(ctx context.Context, studentID uint) ([]model.Assignment, error) {
	var list []model.Assignment
	if err := r.db.WithContext(ctx).
		Omit("original_text").
		Where("student_id = ?", studentID).
		Order("uploaded_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list assignments failed: %w", err)
	}
	return list, nil
}

func (r *AssignmentRepository) CountByStudentID(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Assignment{}).Where("student_id = ?", studentID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count assignments failed: %w", err)
	}
	return count, nil
}
