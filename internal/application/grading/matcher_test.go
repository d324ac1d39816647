package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchClauses(t *testing.T) {
	tests := []struct {
		name     string
		cited    string
		expected string
		want     float64
	}{
		{"exact match", "1.4", "1.4", 1.0},
		{"deep exact match", "3.7.2.1", "3.7.2.1", 1.0},

		// 前缀关系按较浅一方的深度给分
		{"parent cited at depth two", "1.4", "1.4.32", 0.6},
		{"child cited against depth-two parent", "1.4.32", "1.4", 0.6},
		{"parent cited at depth one", "1", "1.4.32", 0.5},
		{"parent cited at depth three", "3.7.2", "3.7.2.1", 0.75},
		{"deep shared prefix beyond three", "3.7.2.1", "3.7.2.1.5", 0.75},

		{"same top-level section only", "1.4", "1.5", 0.3},
		{"same section different depths", "1.9.9", "1.2", 0.3},

		{"different sections", "2.1", "1.1", 0.0},
		// "1.40" 与 "1.4" 不是前缀关系，只共享顶层章节
		{"segment boundary respected", "1.40", "1.4", 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MatchClauses(ClauseID(tt.cited), ClauseID(tt.expected)), 1e-9)
		})
	}
}

func TestMatchClausesSymmetry(t *testing.T) {
	// 前缀关系的给分与引用方向无关
	pairs := [][2]string{{"1.4", "1.4.32"}, {"1", "1.9"}, {"3.7.2", "3.7.2.1"}}
	for _, p := range pairs {
		a, b := ClauseID(p[0]), ClauseID(p[1])
		assert.Equal(t, MatchClauses(a, b), MatchClauses(b, a))
	}
}
