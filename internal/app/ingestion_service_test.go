package app

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"assignment-helper/internal/model"
	"assignment-helper/internal/repository"
	"assignment-helper/internal/testutil"
)

func newIngestionService(t *testing.T) (*IngestionService, *gorm.DB) {
	db := testutil.DB(t)
	svc := NewIngestionService(db, repository.NewAssignmentRepository(db), repository.NewAnalysisResultRepository(db), testutil.Logger(t), nil)
	return svc, db
}

func countResults(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&model.AnalysisResult{}).Count(&n).Error)
	return n
}

func TestStoreUnknownAssignmentWritesNothing(t *testing.T) {
	svc, db := newIngestionService(t)

	_, err := svc.Store(context.Background(), "http", &AnalysisPayload{AssignmentID: ptrUint(404), PlagiarismScore: ptrFloat(0.3)})
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
	assert.Zero(t, countResults(t, db))
}

func TestStoreCreatesExactlyOneRow(t *testing.T) {
	svc, db := newIngestionService(t)
	student := testutil.SeedStudent(t, db, "s@example.com")
	assignment := testutil.SeedAssignment(t, db, student.ID, "essay.pdf")
	ctx := context.Background()

	payload, err := DecodeAnalysisPayload([]byte(`{
		"assignment_id": ` + strconv.FormatUint(uint64(assignment.ID), 10) + `,
		"plagiarism_score": 0.42,
		"suggested_sources": [{"id": 3, "title": "Paper", "similarity_score": 0.12}],
		"flagged_sections": [{"location": "p2", "reason": "verbatim match"}],
		"research_suggestions": "Read more",
		"confidence_score": 0.9,
		"extra_field": "ignored"
	}`))
	require.NoError(t, err)

	result, err := svc.Store(ctx, "http", payload)
	require.NoError(t, err)
	assert.NotZero(t, result.ID)
	assert.Equal(t, int64(1), countResults(t, db))

	stored, err := repository.NewAnalysisResultRepository(db).GetByID(ctx, result.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.42, stored.PlagiarismScore, 1e-9)
	require.Len(t, stored.SuggestedSources, 1)
	assert.Equal(t, "Paper", stored.SuggestedSources[0].Title)
	require.Len(t, stored.FlaggedSections, 1)
	assert.Equal(t, "verbatim match", stored.FlaggedSections[0].Reason)
	assert.Equal(t, "", stored.CitationRecommendations)

	// Re-ingestion is accepted and adds a second row.
	_, err = svc.Store(ctx, "amqp", &AnalysisPayload{AssignmentID: ptrUint(assignment.ID)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), countResults(t, db))
}

func TestStoreAcceptsPlainStringLists(t *testing.T) {
	svc, db := newIngestionService(t)
	student := testutil.SeedStudent(t, db, "p@example.com")
	assignment := testutil.SeedAssignment(t, db, student.ID, "essay.pdf")
	ctx := context.Background()

	payload, err := DecodeAnalysisPayload([]byte(`{
		"assignment_id": ` + strconv.FormatUint(uint64(assignment.ID), 10) + `,
		"suggested_sources": ["Smith 2020", "Jones 2019"],
		"flagged_sections": ["Paragraph 3 matches a web source"]
	}`))
	require.NoError(t, err)

	result, err := svc.Store(ctx, "http", payload)
	require.NoError(t, err)

	stored, err := repository.NewAnalysisResultRepository(db).GetByID(ctx, result.ID)
	require.NoError(t, err)
	require.Len(t, stored.SuggestedSources, 2)
	assert.Equal(t, "Jones 2019", stored.SuggestedSources[1].Title)
	require.Len(t, stored.FlaggedSections, 1)
	assert.Equal(t, "Paragraph 3 matches a web source", stored.FlaggedSections[0].Text)
}

func TestStoreAppliesDefaults(t *testing.T) {
	svc, db := newIngestionService(t)
	student := testutil.SeedStudent(t, db, "d@example.com")
	assignment := testutil.SeedAssignment(t, db, student.ID, "essay.txt")

	result, err := svc.Store(context.Background(), "http", &AnalysisPayload{AssignmentID: ptrUint(assignment.ID)})
	require.NoError(t, err)
	assert.Zero(t, result.PlagiarismScore)
	assert.Zero(t, result.ConfidenceScore)
	assert.NotNil(t, result.SuggestedSources)
	assert.Empty(t, result.SuggestedSources)
	assert.NotNil(t, result.FlaggedSections)
	assert.Empty(t, result.FlaggedSections)
}

func TestStoreRejectsMissingAssignmentID(t *testing.T) {
	svc, db := newIngestionService(t)

	_, err := svc.Store(context.Background(), "http", &AnalysisPayload{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, countResults(t, db))
}

func TestDecodeAnalysisPayloadRejectsBadJSON(t *testing.T) {
	_, err := DecodeAnalysisPayload([]byte(`{"assignment_id": "abc"`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DecodeAnalysisPayload([]byte(`{"assignment_id": -1}`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
