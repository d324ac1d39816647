package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClause(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		valid bool
	}{
		{"plain clause", "1.4.32", "1.4.32", true},
		{"surrounding whitespace", "  3.7.2  ", "3.7.2", true},
		{"clause word prefix", "Clause 1..4.", "1.4", true},
		{"repeated dots collapsed", "1..4", "1.4", true},
		{"trailing punctuation stripped", "5.5.2,", "5.5.2", true},
		{"single segment", "7", "7", true},
		{"letters only", "abc", "", false},
		{"single dot", ".", "", false},
		{"empty string", "", "", false},
		{"whitespace only", "   ", "", false},
		{"punctuation only", "..,;", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeClause(tt.input)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, ClauseID(tt.want), got)
		})
	}
}

func TestClauseIDHierarchy(t *testing.T) {
	assert.Equal(t, 3, ClauseID("1.4.32").Depth())
	assert.Equal(t, 1, ClauseID("7").Depth())
	assert.Equal(t, "1", ClauseID("1.4.32").TopSegment())

	assert.True(t, ClauseID("1.4").IsAncestorOf("1.4.32"))
	assert.False(t, ClauseID("1.4.32").IsAncestorOf("1.4"))
	// "1.4" 不是 "1.40" 的层级前缀
	assert.False(t, ClauseID("1.4").IsAncestorOf("1.40"))
	assert.False(t, ClauseID("1.4").IsAncestorOf("1.4"))
}
