package grading

import (
	"fmt"
	"strings"
)

// CitationGrade 引用评分结果
type CitationGrade struct {
	Accuracy    float64 `json:"accuracy"`
	Correct     bool    `json:"correct"`
	Diagnostics string  `json:"diagnostics"`
}

// GradeCitations 对答案中提取的条款引用做分级评分
//
// expected 可以用逗号分隔多个可接受的条款。每条引用取其对所有期望
// 条款的最高匹配分，总分取各引用的最高分，奖励"至少有一条好引用"
// 而不是做平均。缺失期望条款给 0.5 存疑分，与答错区分开。
func GradeCitations(cited []string, expected string) CitationGrade {
	if len(cited) == 0 {
		return CitationGrade{Accuracy: 0.0, Correct: false, Diagnostics: "no citations found in answer"}
	}

	// 期望条款缺失时无从比较，给存疑分
	if strings.TrimSpace(expected) == "" {
		return CitationGrade{Accuracy: 0.5, Correct: false, Diagnostics: "no expected clause provided for comparison"}
	}

	expectedSet := make([]ClauseID, 0, 4)
	for _, raw := range strings.Split(expected, ",") {
		if id, ok := NormalizeClause(raw); ok {
			expectedSet = append(expectedSet, id)
		}
	}
	if len(expectedSet) == 0 {
		return CitationGrade{
			Accuracy:    0.5,
			Correct:     false,
			Diagnostics: fmt.Sprintf("could not parse expected clause: %s", expected),
		}
	}

	citedSet := make([]ClauseID, 0, len(cited))
	for _, raw := range cited {
		if id, ok := NormalizeClause(raw); ok {
			citedSet = append(citedSet, id)
		}
	}
	if len(citedSet) == 0 {
		return CitationGrade{Accuracy: 0.0, Correct: false, Diagnostics: "cited clauses could not be normalized"}
	}

	accuracy := 0.0
	bestPairs := make([]string, 0, len(citedSet))
	for _, c := range citedSet {
		bestScore := 0.0
		var bestExpected ClauseID
		for _, e := range expectedSet {
			if score := MatchClauses(c, e); score > bestScore {
				bestScore = score
				bestExpected = e
			}
		}
		if bestExpected != "" {
			bestPairs = append(bestPairs, fmt.Sprintf("%s -> %s (%.2f)", c, bestExpected, bestScore))
		}
		if bestScore > accuracy {
			accuracy = bestScore
		}
	}

	return CitationGrade{
		Accuracy: accuracy,
		Correct:  accuracy >= CorrectThreshold,
		Diagnostics: fmt.Sprintf("expected: %v | cited: %v | best matches: [%s] | score: %.2f",
			expectedSet, citedSet, strings.Join(bestPairs, ", "), accuracy),
	}
}
