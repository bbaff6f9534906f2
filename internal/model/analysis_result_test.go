package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlaggedSectionAcceptsStringOrObject(t *testing.T) {
	var sections []FlaggedSection
	require.NoError(t, json.Unmarshal([]byte(`["copied intro", {"location": "p2", "text": "x", "reason": "match"}]`), &sections))

	assert.Equal(t, []FlaggedSection{
		{Text: "copied intro"},
		{Location: "p2", Text: "x", Reason: "match"},
	}, sections)
}

func TestSourceSummaryAcceptsStringOrObject(t *testing.T) {
	var sources []SourceSummary
	require.NoError(t, json.Unmarshal([]byte(`["Deep Learning", {"title": "Attention", "authors": "Vaswani"}]`), &sources))

	assert.Equal(t, []SourceSummary{
		{Title: "Deep Learning"},
		{Title: "Attention", Authors: "Vaswani"},
	}, sources)
}

func TestAnalysisItemsRejectOtherShapes(t *testing.T) {
	var sections []FlaggedSection
	assert.Error(t, json.Unmarshal([]byte(`[42]`), &sections))

	var sources []SourceSummary
	assert.Error(t, json.Unmarshal([]byte(`[["nested"]]`), &sources))
}
