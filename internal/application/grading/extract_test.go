package grading

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"compliance-qa-api/internal/application/selection"
)

func TestExtractClauseRefs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"clause keyword",
			"Per Clause 3.7.2.1 the enclosure shall be earthed.",
			[]string{"3.7.2.1"},
		},
		{
			"section keyword",
			"Section 3.7 covers damp situations.",
			[]string{"3.7"},
		},
		{
			"full standard reference",
			"AS/NZS 3000:2018 Clause 5.5.2 requires a main earthing conductor.",
			[]string{"5.5.2"},
		},
		{
			"bare standard prefix",
			"AS3000 1.4.32 defines extra-low voltage.",
			[]string{"1.4.32"},
		},
		{
			"multiple references deduplicated and sorted",
			"Clause 3.7.2 and clause 1.4 and Section 3.7.2 apply.",
			[]string{"1.4", "3.7.2"},
		},
		{
			"no references",
			"Use a 2.5 mm conductor.",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractClauseRefs(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractCitedContentIDs(t *testing.T) {
	retrieved := []RetrievedContent{
		{
			Candidate: selection.NewCandidate("TEXT_ab12cd", selection.ContentTextChunk, selection.ClassA, 0.9),
			Text:      "Clause 3.7.2.1 requires that switchboards in damp situations be protected against corrosion at all times.",
		},
		{
			Candidate: selection.NewCandidate("VISUAL_ef34ab", selection.ContentVisual, selection.ClassUnknown, 0.8),
			Text:      "Diagram of clearance distances around a switchboard installation area.",
		},
	}

	t.Run("explicit id citation", func(t *testing.T) {
		ids := ExtractCitedContentIDs("Protection is required [ID: TEXT_ab12cd].", retrieved)
		assert.Equal(t, []string{"TEXT_ab12cd"}, ids)
	})

	t.Run("clause reference mapped to content", func(t *testing.T) {
		ids := ExtractCitedContentIDs("According to Clause 3.7.2.1 the switchboard must be protected.", retrieved)
		assert.Contains(t, ids, "TEXT_ab12cd")
	})

	t.Run("text overlap fallback", func(t *testing.T) {
		snippet := strings.ToLower(retrieved[0].Text[:40])
		ids := ExtractCitedContentIDs("As the standard puts it: "+snippet, retrieved)
		assert.Contains(t, ids, "TEXT_ab12cd")
	})

	t.Run("bare id mention", func(t *testing.T) {
		ids := ExtractCitedContentIDs("According to VISUAL_ef34ab the clearances are shown.", retrieved)
		assert.Contains(t, ids, "VISUAL_ef34ab")
	})

	t.Run("unknown bare ids ignored", func(t *testing.T) {
		ids := ExtractCitedContentIDs("According to TEXT_ffffff nothing applies.", retrieved)
		assert.Empty(t, ids)
	})

	t.Run("duplicates collapsed", func(t *testing.T) {
		ids := ExtractCitedContentIDs("[ID: TEXT_ab12cd] and again [ID: TEXT_ab12cd]", retrieved)
		assert.Equal(t, []string{"TEXT_ab12cd"}, ids)
	})
}
