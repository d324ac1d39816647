package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeCitations(t *testing.T) {
	tests := []struct {
		name         string
		cited        []string
		expected     string
		wantAccuracy float64
		wantCorrect  bool
	}{
		{"exact citation", []string{"1.4"}, "1.4", 1.0, true},
		{"parent citation gets partial credit", []string{"1.4"}, "1.4.32", 0.6, false},
		{"deep parent passes threshold", []string{"3.7.2"}, "3.7.2.1", 0.75, true},
		{"best citation wins over extras", []string{"9.9", "1.4.32", "2.1"}, "1.4.32", 1.0, true},
		{"multiple expected clauses comma-separated", []string{"5.5.2"}, "1.4, 5.5.2", 1.0, true},
		{"no citations", nil, "1.4", 0.0, false},
		{"no ground truth", []string{"1.4.32"}, "", 0.5, false},
		{"unparseable ground truth", []string{"1.4"}, "abc", 0.5, false},
		{"unparseable citations", []string{"abc", "..."}, "1.4", 0.0, false},
		{"raw citations normalized before matching", []string{"Clause 1..4."}, "1.4", 1.0, true},
		{"wrong section", []string{"2.1"}, "1.1", 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grade := GradeCitations(tt.cited, tt.expected)
			assert.InDelta(t, tt.wantAccuracy, grade.Accuracy, 1e-9)
			assert.Equal(t, tt.wantCorrect, grade.Correct)
			assert.NotEmpty(t, grade.Diagnostics)
		})
	}
}

func TestGradeCitationsThreshold(t *testing.T) {
	// 0.75 是判定正确的边界值
	grade := GradeCitations([]string{"3.7.2"}, "3.7.2.1")
	assert.InDelta(t, CorrectThreshold, grade.Accuracy, 1e-9)
	assert.True(t, grade.Correct)

	grade = GradeCitations([]string{"1.4"}, "1.4.32")
	assert.Less(t, grade.Accuracy, CorrectThreshold)
	assert.False(t, grade.Correct)
}
