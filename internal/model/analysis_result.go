package model

import (
	"bytes"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SourceSummary is one entry of AnalysisResult.SuggestedSources, in the order
// the analysis workflow ranked them.
type SourceSummary struct {
	ID              *uint    `json:"id,omitempty"`
	Title           string   `json:"title"`
	Authors         string   `json:"authors,omitempty"`
	PublicationYear *int     `json:"publication_year,omitempty"`
	SourceType      string   `json:"source_type,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	Citation        string   `json:"citation,omitempty"`
}

// UnmarshalJSON also accepts a bare string, taken as the title.
func (s *SourceSummary) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*s = SourceSummary{Title: title}
		return nil
	}
	type plain SourceSummary
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = SourceSummary(p)
	return nil
}

type FlaggedSection struct {
	Location string `json:"location,omitempty"`
	Text     string `json:"text,omitempty"`
	Reason   string `json:"reason"`
}

// UnmarshalJSON also accepts a bare string, taken as the flagged text.
func (f *FlaggedSection) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*f = FlaggedSection{Text: text}
		return nil
	}
	type plain FlaggedSection
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = FlaggedSection(p)
	return nil
}

func isJSONString(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '"'
}

type AnalysisResult struct {
	ID                      uint                                `gorm:"primaryKey" json:"id"`
	AssignmentID            uint                                `gorm:"not null;index" json:"assignment_id"`
	SuggestedSources        datatypes.JSONSlice[SourceSummary]  `json:"suggested_sources"`
	PlagiarismScore         float64                             `json:"plagiarism_score"`
	FlaggedSections         datatypes.JSONSlice[FlaggedSection] `json:"flagged_sections"`
	ResearchSuggestions     string                              `gorm:"type:text" json:"research_suggestions"`
	CitationRecommendations string                              `gorm:"type:text" json:"citation_recommendations"`
	ConfidenceScore         float64                             `json:"confidence_score"`
	AnalyzedAt              time.Time                           `gorm:"autoCreateTime" json:"analyzed_at"`

	Assignment *Assignment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
