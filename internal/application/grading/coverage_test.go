package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"compliance-qa-api/internal/application/selection"
)

func text(id string, class selection.NormativityClass) selection.Candidate {
	return selection.NewCandidate(id, selection.ContentTextChunk, class, 0.8)
}

func TestComputeCoverageNormative(t *testing.T) {
	retrieved := []selection.Candidate{
		text("a1", selection.ClassA),
		text("c1", selection.ClassC),
	}

	t.Run("full score when normative content cited", func(t *testing.T) {
		report := ComputeCoverage(retrieved, []string{"a1"}, "The cable shall be protected.", GroundTruthFlags{})
		assert.InDelta(t, 1.0, report.NormativeCoverage, 1e-9)
	})

	t.Run("half score when normative retrieved but not cited", func(t *testing.T) {
		report := ComputeCoverage(retrieved, []string{"c1"}, "answer", GroundTruthFlags{})
		assert.InDelta(t, 0.5, report.NormativeCoverage, 1e-9)
	})

	t.Run("zero when nothing normative retrieved", func(t *testing.T) {
		report := ComputeCoverage([]selection.Candidate{text("c1", selection.ClassC)}, nil, "answer", GroundTruthFlags{})
		assert.InDelta(t, 0.0, report.NormativeCoverage, 1e-9)
	})
}

func TestComputeCoverageNonNormativeReliance(t *testing.T) {
	retrieved := []selection.Candidate{
		text("a1", selection.ClassA),
		text("c1", selection.ClassC),
		text("c2", selection.ClassC),
		text("c3", selection.ClassC),
	}

	tests := []struct {
		name  string
		cited []string
		want  float64
	}{
		{"no non-normative citations", []string{"a1"}, 1.0},
		{"quarter share", []string{"a1", "a1", "a1", "c1"}, 0.5},
		{"half share reaches zero", []string{"a1", "c1"}, 0.0},
		{"above half stays zero", []string{"c1", "c2", "c3"}, 0.0},
		{"no citations at all", nil, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ComputeCoverage(retrieved, tt.cited, "answer", GroundTruthFlags{})
			assert.InDelta(t, tt.want, report.NonNormativeReliance, 1e-9)
		})
	}
}

func TestComputeCoverageConditionalRisk(t *testing.T) {
	retrieved := []selection.Candidate{
		text("a1", selection.ClassA),
		text("b1", selection.ClassB),
	}

	t.Run("conditional cited with applicability language", func(t *testing.T) {
		report := ComputeCoverage(retrieved, []string{"b1"},
			"This applies only if the installation is outdoors.", GroundTruthFlags{})
		assert.InDelta(t, 1.0, report.ConditionalRisk, 1e-9)
	})

	t.Run("conditional cited without applicability language", func(t *testing.T) {
		report := ComputeCoverage(retrieved, []string{"b1"},
			"The minimum clearance is 600 mm.", GroundTruthFlags{})
		assert.InDelta(t, 0.0, report.ConditionalRisk, 1e-9)
	})

	t.Run("conditional retrieved but not cited without cue", func(t *testing.T) {
		report := ComputeCoverage(retrieved, []string{"a1"},
			"The minimum clearance is 600 mm.", GroundTruthFlags{})
		assert.InDelta(t, 0.5, report.ConditionalRisk, 1e-9)
	})

	t.Run("no conditional chunks involved", func(t *testing.T) {
		report := ComputeCoverage([]selection.Candidate{text("a1", selection.ClassA)}, []string{"a1"},
			"The minimum clearance is 600 mm.", GroundTruthFlags{})
		assert.InDelta(t, 1.0, report.ConditionalRisk, 1e-9)
	})
}

func TestComputeCoverageMultimodalStarvation(t *testing.T) {
	table := selection.NewCandidate("t1", selection.ContentStructuredTable, selection.ClassUnknown, 0.7)
	visual := selection.NewCandidate("v1", selection.ContentVisual, selection.ClassUnknown, 0.7)

	t.Run("hard fail when required table missing", func(t *testing.T) {
		report := ComputeCoverage([]selection.Candidate{text("a1", selection.ClassA)}, nil,
			"answer", GroundTruthFlags{RequiresTable: true})
		assert.InDelta(t, 0.0, report.MultimodalStarvation, 1e-9)
	})

	t.Run("pass when required table retrieved", func(t *testing.T) {
		report := ComputeCoverage([]selection.Candidate{table}, nil,
			"answer", GroundTruthFlags{RequiresTable: true})
		assert.InDelta(t, 1.0, report.MultimodalStarvation, 1e-9)
	})

	t.Run("hard fail when required diagram missing", func(t *testing.T) {
		report := ComputeCoverage([]selection.Candidate{table}, nil,
			"answer", GroundTruthFlags{RequiresDiagram: true})
		assert.InDelta(t, 0.0, report.MultimodalStarvation, 1e-9)
	})

	t.Run("proxy penalty when answer mentions a table none retrieved", func(t *testing.T) {
		report := ComputeCoverage([]selection.Candidate{text("a1", selection.ClassA)}, nil,
			"See Table 3.1 for conductor sizes.", GroundTruthFlags{})
		assert.InDelta(t, 0.5, report.MultimodalStarvation, 1e-9)
	})

	t.Run("no penalty when mentioned table was retrieved", func(t *testing.T) {
		report := ComputeCoverage([]selection.Candidate{table, visual}, nil,
			"See Table 3.1 and Figure 2.", GroundTruthFlags{})
		assert.InDelta(t, 1.0, report.MultimodalStarvation, 1e-9)
	})
}
