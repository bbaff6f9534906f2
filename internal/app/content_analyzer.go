package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"assignment-helper/internal/ai"
)

const (
	analysisTextLimit     = 2000
	analysisSourceLimit   = 3
	analysisAbstractLimit = 200

	PlagiarismRiskLow     = "low"
	PlagiarismRiskMedium  = "medium"
	PlagiarismRiskHigh    = "high"
	PlagiarismRiskUnknown = "unknown"
)

const analysisSystemPrompt = "You are an academic research assistant. Provide structured JSON analysis of academic assignments."

// Completer is satisfied by ai.Completer.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

type ContentAnalysis struct {
	Topic                   string   `json:"topic"`
	KeyThemes               []string `json:"key_themes"`
	ResearchQuestions       []string `json:"research_questions"`
	AcademicLevel           string   `json:"academic_level"`
	ResearchSuggestions     string   `json:"research_suggestions"`
	CitationRecommendations string   `json:"citation_recommendations"`
	PlagiarismRisk          string   `json:"plagiarism_risk"`
}

// FallbackAnalysis is returned whenever the model cannot produce an analysis.
func FallbackAnalysis() ContentAnalysis {
	return ContentAnalysis{
		Topic:                   "Unknown",
		KeyThemes:               []string{},
		ResearchQuestions:       []string{},
		AcademicLevel:           "Unknown",
		ResearchSuggestions:     "Analysis unavailable",
		CitationRecommendations: "Use appropriate academic citation style",
		PlagiarismRisk:          PlagiarismRiskUnknown,
	}
}

type ContentReport struct {
	Analysis ContentAnalysis `json:"analysis"`
	Sources  []SourceMatch   `json:"sources"`
}

type ContentAnalyzer struct {
	completer Completer
	retrieval *RetrievalService
	logger    *zap.Logger
}

func NewContentAnalyzer(completer Completer, retrieval *RetrievalService, logger *zap.Logger) *ContentAnalyzer {
	return &ContentAnalyzer{
		completer: completer,
		retrieval: retrieval,
		logger:    logger,
	}
}

// Analyze never fails: any model or decoding error yields FallbackAnalysis.
func (a *ContentAnalyzer) Analyze(ctx context.Context, text string, sources []SourceMatch) ContentAnalysis {
	messages := []ai.ChatMessage{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: buildAnalysisPrompt(text, sources)},
	}

	raw, err := a.completer.Complete(ctx, messages)
	if err != nil {
		a.logger.Warn("content analysis failed", zap.Error(err))
		return FallbackAnalysis()
	}

	analysis, err := parseContentAnalysis(raw)
	if err != nil {
		a.logger.Warn("content analysis returned malformed json", zap.Error(err))
		return FallbackAnalysis()
	}
	return analysis
}

// AnalyzeContent looks up sources similar to the text, then analyzes it against them.
func (a *ContentAnalyzer) AnalyzeContent(ctx context.Context, text string, topK int) (*ContentReport, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}

	sources := []SourceMatch{}
	if a.retrieval != nil {
		found, err := a.retrieval.Search(ctx, truncateRunes(text, analysisTextLimit), topK)
		if err != nil {
			return nil, err
		}
		sources = found
	}

	return &ContentReport{
		Analysis: a.Analyze(ctx, text, sources),
		Sources:  sources,
	}, nil
}

func buildAnalysisPrompt(text string, sources []SourceMatch) string {
	if len(sources) > analysisSourceLimit {
		sources = sources[:analysisSourceLimit]
	}
	lines := make([]string, 0, len(sources))
	for i, src := range sources {
		year := "n.d."
		if src.PublicationYear != nil {
			year = fmt.Sprintf("%d", *src.PublicationYear)
		}
		lines = append(lines, fmt.Sprintf("Source %d: %s by %s (%s) - %s...",
			i+1, src.Title, src.Authors, year, truncateRunes(src.Abstract, analysisAbstractLimit)))
	}

	var b strings.Builder
	b.WriteString("Analyze the following academic assignment and provide structured analysis:\n\n")
	b.WriteString("ASSIGNMENT TEXT:\n")
	b.WriteString(truncateRunes(text, analysisTextLimit))
	b.WriteString("...\n\nRELEVANT SOURCES:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nPlease provide analysis in JSON format with these fields:\n")
	b.WriteString("- topic: main topic of the assignment\n")
	b.WriteString("- key_themes: list of key themes identified\n")
	b.WriteString("- research_questions: list of research questions found or suggested\n")
	b.WriteString("- academic_level: estimated academic level (e.g., undergraduate, graduate)\n")
	b.WriteString("- research_suggestions: suggestions for further research\n")
	b.WriteString("- citation_recommendations: recommended citation styles and sources to cite\n")
	b.WriteString("- plagiarism_risk: assessment of plagiarism risk level (low/medium/high)\n")
	return b.String()
}

func parseContentAnalysis(raw string) (ContentAnalysis, error) {
	var analysis ContentAnalysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &analysis); err != nil {
		return ContentAnalysis{}, fmt.Errorf("decode analysis failed: %w", err)
	}
	if analysis.KeyThemes == nil {
		analysis.KeyThemes = []string{}
	}
	if analysis.ResearchQuestions == nil {
		analysis.ResearchQuestions = []string{}
	}
	switch risk := strings.ToLower(strings.TrimSpace(analysis.PlagiarismRisk)); risk {
	case PlagiarismRiskLow, PlagiarismRiskMedium, PlagiarismRiskHigh:
		analysis.PlagiarismRisk = risk
	default:
		analysis.PlagiarismRisk = PlagiarismRiskUnknown
	}
	return analysis, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
