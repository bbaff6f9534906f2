package repository

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"assignment-helper/internal/model"
)

// SourceMatchRow is one nearest-neighbour hit. Distance is the raw pgvector
// cosine distance; it may be NULL in degenerate cases (zero vectors).
type SourceMatchRow struct {
	ID              uint
	Title           string
	Authors         string
	PublicationYear *int
	Abstract        string
	SourceType      string
	Distance        *float64
}

const searchNearestSQL = `SELECT id, title, authors, publication_year, abstract, source_type,
	embedding <=> ? AS distance
FROM academic_sources
WHERE embedding IS NOT NULL
ORDER BY distance
LIMIT ?`

type AcademicSourceRepository struct {
	db *gorm.DB
}

func NewAcademicSourceRepository(db *gorm.DB) *AcademicSourceRepository {
	return &AcademicSourceRepository{db: db}
}

func (r *AcademicSourceRepository) Create(ctx context.Context, source *model.AcademicSource) error {
	if !model.ValidSourceType(source.SourceType) {
		return fmt.Errorf("create academic source failed: unknown source type %q", source.SourceType)
	}
	if err := r.db.WithContext(ctx).Create(source).Error; err != nil {
		return fmt.Errorf("create academic source failed: %w", err)
	}
	return nil
}

// ListWithoutEmbedding returns sources still waiting for the backfill job.
func (r *AcademicSourceRepository) ListWithoutEmbedding(ctx context.Context) ([]model.AcademicSource, error) {
	var list []model.AcademicSource
	if err := r.db.WithContext(ctx).
		Select("id", "title", "abstract").
		Where("embedding IS NULL").
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list sources without embedding failed: %w", err)
	}
	return list, nil
}

// UpdateEmbedding commits a single vector and reports whether it was stored.
// Rows that already carry an embedding are left untouched, so a source filled
// by a concurrent backfill yields false.
func (r *AcademicSourceRepository) UpdateEmbedding(ctx context.Context, id uint, vec []float32) (bool, error) {
	v := pgvector.NewVector(vec)
	res := r.db.WithContext(ctx).
		Model(&model.AcademicSource{}).
		Where("id = ? AND embedding IS NULL", id).
		Update("embedding", v)
	if res.Error != nil {
		return false, fmt.Errorf("update source embedding failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SearchNearest ranks embedded sources by cosine distance to vec, closest first.
func (r *AcademicSourceRepository) SearchNearest(ctx context.Context, vec []float32, topK int) ([]SourceMatchRow, error) {
	var rows []SourceMatchRow
	if err := r.db.WithContext(ctx).
		Raw(searchNearestSQL, pgvector.NewVector(vec), topK).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("search nearest sources failed: %w", err)
	}
	return rows, nil
}
