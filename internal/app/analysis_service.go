package app

import (
	"context"
	"errors"

	"assignment-helper/internal/model"
	"assignment-helper/internal/repository"
)

// AnalysisService serves a student's own assignments and analysis results.
type AnalysisService struct {
	assignmentRepo *repository.AssignmentRepository
	resultRepo     *repository.AnalysisResultRepository
}

func NewAnalysisService(assignmentRepo *repository.AssignmentRepository, resultRepo *repository.AnalysisResultRepository) *AnalysisService {
	return &AnalysisService{
		assignmentRepo: assignmentRepo,
		resultRepo:     resultRepo,
	}
}

// GetAnalysis returns ErrAccessDenied when the result's assignment belongs to
// someone else, without exposing the result.
func (s *AnalysisService) GetAnalysis(ctx context.Context, studentID, analysisID uint) (*model.AnalysisResult, error) {
	if analysisID == 0 {
		return nil, ErrAnalysisNotFound
	}
	result, err := s.resultRepo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrAnalysisNotFound
	}
	if _, err := s.ownedAssignment(ctx, studentID, result.AssignmentID); err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, err
	}
	return result, nil
}

func (s *AnalysisService) ListAssignments(ctx context.Context, studentID uint) ([]model.Assignment, error) {
	if studentID == 0 {
		return nil, ErrUnauthorized
	}
	list, err := s.assignmentRepo.ListByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Assignment{}
	}
	return list, nil
}

// LatestForAssignment returns the newest result for an owned assignment.
func (s *AnalysisService) LatestForAssignment(ctx context.Context, studentID, assignmentID uint) (*model.AnalysisResult, error) {
	if _, err := s.ownedAssignment(ctx, studentID, assignmentID); err != nil {
		return nil, err
	}
	result, err := s.resultRepo.GetLatestByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrAnalysisNotFound
	}
	return result, nil
}

func (s *AnalysisService) ownedAssignment(ctx context.Context, studentID, assignmentID uint) (*model.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if assignment.StudentID != studentID {
		return nil, ErrAccessDenied
	}
	return assignment, nil
}
