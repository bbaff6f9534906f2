package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"assignment-helper/internal/model"
	"assignment-helper/internal/testutil"
)

func TestStudentRepositoryCreateAndGet(t *testing.T) {
	db := testutil.DB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	student := &model.Student{Email: "ada@uni.test", PasswordHash: "hash", FullName: "Ada", StudentID: "S1"}
	require.NoError(t, repo.Create(ctx, student))
	require.NotZero(t, student.ID)
	assert.False(t, student.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "ada@uni.test")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, student.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Ada", byID.FullName)

	missing, err := repo.GetByEmail(ctx, "nobody@uni.test")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStudentRepositoryUniqueEmail(t *testing.T) {
	db := testutil.DB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Student{Email: "dup@uni.test", PasswordHash: "h"}))
	assert.ErrorIs(t, repo.Create(ctx, &model.Student{Email: "dup@uni.test", PasswordHash: "h"}), gorm.ErrDuplicatedKey)
}

func TestAssignmentRepository(t *testing.T) {
	db := testutil.DB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()
	owner := testutil.SeedStudent(t, db, "owner@uni.test")
	other := testutil.SeedStudent(t, db, "other@uni.test")

	first := &model.Assignment{StudentID: owner.ID, Filename: "a_essay.pdf", OriginalFilename: "essay.pdf"}
	require.NoError(t, repo.Create(ctx, first))
	second := &model.Assignment{StudentID: owner.ID, Filename: "b_notes.txt", OriginalFilename: "notes.txt", OriginalText: "hello"}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &model.Assignment{StudentID: other.ID, Filename: "c.doc"}))

	exists, err := repo.Exists(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, exists)

	list, err := repo.ListByStudentID(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Empty(t, list[0].OriginalText)

	count, err := repo.CountByStudentID(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.OriginalText)
}

func TestAnalysisResultRepository(t *testing.T) {
	db := testutil.DB(t)
	repo := NewAnalysisResultRepository(db)
	ctx := context.Background()
	student := testutil.SeedStudent(t, db, "s@uni.test")
	assignment := testutil.SeedAssignment(t, db, student.ID, "x.pdf")

	year := 2020
	first := &model.AnalysisResult{
		AssignmentID:     assignment.ID,
		SuggestedSources: []model.SourceSummary{{Title: "Deep Learning", Authors: "Goodfellow", PublicationYear: &year}},
		PlagiarismScore:  0.2,
		FlaggedSections:  []model.FlaggedSection{{Location: "p1", Reason: "close paraphrase"}},
		ConfidenceScore:  0.9,
	}
	require.NoError(t, repo.Create(ctx, first))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.SuggestedSources, 1)
	assert.Equal(t, "Deep Learning", got.SuggestedSources[0].Title)
	require.NotNil(t, got.SuggestedSources[0].PublicationYear)
	assert.Equal(t, 2020, *got.SuggestedSources[0].PublicationYear)
	require.Len(t, got.FlaggedSections, 1)
	assert.Equal(t, "close paraphrase", got.FlaggedSections[0].Reason)

	second := &model.AnalysisResult{AssignmentID: assignment.ID, AnalyzedAt: time.Now().Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, second))

	latest, err := repo.GetLatestByAssignmentID(ctx, assignment.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)

	count, err := repo.CountByAssignmentID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	none, err := repo.GetLatestByAssignmentID(ctx, 12345)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAcademicSourceRepositoryBackfillQueries(t *testing.T) {
	db := testutil.DB(t)
	repo := NewAcademicSourceRepository(db)
	ctx := context.Background()

	pending := &model.AcademicSource{Title: "Pending", Abstract: "needs vector", SourceType: model.SourceTypePaper}
	require.NoError(t, repo.Create(ctx, pending))
	done := &model.AcademicSource{Title: "Done", Abstract: "has vector", SourceType: model.SourceTypeTextbook}
	require.NoError(t, repo.Create(ctx, done))
	stored, err := repo.UpdateEmbedding(ctx, done.ID, []float32{0.1, 0.2})
	require.NoError(t, err)
	assert.True(t, stored)

	list, err := repo.ListWithoutEmbedding(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)
	assert.Equal(t, "Pending. needs vector", list[0].EmbeddingText())

	var reloaded model.AcademicSource
	require.NoError(t, db.First(&reloaded, done.ID).Error)
	require.NotNil(t, reloaded.Embedding)
	assert.Equal(t, []float32{0.1, 0.2}, reloaded.Embedding.Slice())

	// A second update must not replace an existing vector.
	stored, err = repo.UpdateEmbedding(ctx, done.ID, []float32{9, 9})
	require.NoError(t, err)
	assert.False(t, stored)
	require.NoError(t, db.First(&reloaded, done.ID).Error)
	assert.Equal(t, []float32{0.1, 0.2}, reloaded.Embedding.Slice())
}

func TestAcademicSourceRepositoryRejectsUnknownSourceType(t *testing.T) {
	db := testutil.DB(t)
	repo := NewAcademicSourceRepository(db)

	err := repo.Create(context.Background(), &model.AcademicSource{Title: "Blog post", SourceType: "blog"})
	assert.Error(t, err)

	var n int64
	require.NoError(t, db.Model(&model.AcademicSource{}).Count(&n).Error)
	assert.Zero(t, n)
}
