package model

import "github.com/pgvector/pgvector-go"

const (
	SourceTypePaper          = "paper"
	SourceTypeTextbook       = "textbook"
	SourceTypeCourseMaterial = "course_material"
)

// AcademicSource is a retrievable reference. Embedding stays nil until the
// backfill job fills it; nil rows never take part in similarity search.
type AcademicSource struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	Title           string           `gorm:"size:512;not null" json:"title"`
	Authors         string           `gorm:"size:512" json:"authors"`
	PublicationYear *int             `json:"publication_year"`
	Abstract        string           `gorm:"type:text" json:"abstract"`
	FullText        string           `gorm:"type:text" json:"full_text,omitempty"`
	SourceType      string           `gorm:"size:32;index" json:"source_type"`
	Embedding       *pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
}

// EmbeddingText is the text the backfill job embeds for this source.
func (s *AcademicSource) EmbeddingText() string {
	return s.Title + ". " + s.Abstract
}

func ValidSourceType(t string) bool {
	switch t {
	case SourceTypePaper, SourceTypeTextbook, SourceTypeCourseMaterial:
		return true
	}
	return false
}

// AllModels is the AutoMigrate set.
func AllModels() []interface{} {
	return []interface{}{&Student{}, &Assignment{}, &AnalysisResult{}, &AcademicSource{}}
}
