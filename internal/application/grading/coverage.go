package grading

import (
	"fmt"
	"regexp"

	"compliance-qa-api/internal/application/selection"
)

// NonNormativeShareLimit 非规范性引用占比的惩罚阈值
// 引用中 C 类占比达到该值时 NonNormativeReliance 归零
const NonNormativeShareLimit = 0.5

// GroundTruthFlags 标准答案对非文本证据的要求
type GroundTruthFlags struct {
	RequiresTable   bool `json:"requires_table"`
	RequiresDiagram bool `json:"requires_diagram"`
}

// CoverageReport 覆盖度评测结果
type CoverageReport struct {
	NormativeCoverage    float64 `json:"normative_coverage"`
	NonNormativeReliance float64 `json:"non_normative_reliance"`
	ConditionalRisk      float64 `json:"conditional_risk"`
	MultimodalStarvation float64 `json:"multimodal_starvation"`

	NormativeCoverageDetails    string `json:"normative_coverage_details,omitempty"`
	NonNormativeRelianceDetails string `json:"non_normative_reliance_details,omitempty"`
	ConditionalRiskDetails      string `json:"conditional_risk_details,omitempty"`
	MultimodalStarvationDetails string `json:"multimodal_starvation_details,omitempty"`
}

// 条件性措辞的词法线索
var conditionalCues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwhere\b`),
	regexp.MustCompile(`(?i)\bwhen\b`),
	regexp.MustCompile(`(?i)\bif\b`),
	regexp.MustCompile(`(?i)\bunless\b`),
	regexp.MustCompile(`(?i)\bonly if\b`),
	regexp.MustCompile(`(?i)\bin cases where\b`),
	regexp.MustCompile(`(?i)\bprovided that\b`),
	regexp.MustCompile(`(?i)\bsubject to\b`),
	regexp.MustCompile(`(?i)\bdepending on\b`),
	regexp.MustCompile(`(?i)\bmay\b`),
	regexp.MustCompile(`(?i)\bcan\b`),
	regexp.MustCompile(`(?i)\bshall.*where\b`),
	regexp.MustCompile(`(?i)\bmust.*when\b`),
	regexp.MustCompile(`(?i)\brequired.*if\b`),
}

var (
	tableMentionPattern  = regexp.MustCompile(`(?i)table\s+\d+(?:\.\d+)?`)
	figureMentionPattern = regexp.MustCompile(`(?i)figure\s+\d+(?:\.\d+)?`)
)

// ComputeCoverage 基于检索集与引用集计算四项覆盖度指标
//
// 分类口径复用 selection 包，但不依赖其排序结果。
// citedIDs 为答案中被引用的内容标识，由引用抽取得到。
func ComputeCoverage(retrieved []selection.Candidate, citedIDs []string, answerText string, truth GroundTruthFlags) CoverageReport {
	var report CoverageReport

	byID := make(map[string]selection.Candidate, len(retrieved))
	retrievedClasses := make(map[selection.NormativityClass]int)
	var tablesRetrieved, visualsRetrieved int
	for _, c := range retrieved {
		byID[c.ID] = c
		retrievedClasses[c.EffectiveClass()]++
		switch c.ContentType {
		case selection.ContentStructuredTable:
			tablesRetrieved++
		case selection.ContentVisual:
			visualsRetrieved++
		}
	}

	citedClasses := make(map[selection.NormativityClass]int)
	totalCited := 0
	for _, id := range citedIDs {
		if c, ok := byID[id]; ok {
			citedClasses[c.EffectiveClass()]++
			totalCited++
		}
	}

	// 规范性覆盖：已引用 A/B 得满分，检索到但未引用得半分
	normativeRetrieved := retrievedClasses[selection.ClassA] + retrievedClasses[selection.ClassB]
	normativeCited := citedClasses[selection.ClassA] + citedClasses[selection.ClassB]
	switch {
	case totalCited > 0 && normativeCited > 0:
		report.NormativeCoverage = 1.0
		report.NormativeCoverageDetails = fmt.Sprintf("%d normative chunk(s) cited", normativeCited)
	case normativeRetrieved > 0:
		report.NormativeCoverage = 0.5
		report.NormativeCoverageDetails = fmt.Sprintf("%d normative chunk(s) retrieved but none cited", normativeRetrieved)
	default:
		report.NormativeCoverage = 0.0
		report.NormativeCoverageDetails = "no normative chunks retrieved or cited"
	}

	// 非规范性依赖：C 类引用占比超过阈值线性扣到零
	cShare := 0.0
	if totalCited > 0 {
		cShare = float64(citedClasses[selection.ClassC]) / float64(totalCited)
	}
	report.NonNormativeReliance = max(0.0, 1.0-cShare/NonNormativeShareLimit)
	report.NonNormativeRelianceDetails = fmt.Sprintf("C chunks cited: %d/%d (%.1f%%)",
		citedClasses[selection.ClassC], totalCited, cShare*100)

	report.ConditionalRisk, report.ConditionalRiskDetails =
		conditionalRisk(citedClasses[selection.ClassB], retrievedClasses[selection.ClassB], totalCited, answerText)

	report.MultimodalStarvation, report.MultimodalStarvationDetails =
		multimodalStarvation(tablesRetrieved, visualsRetrieved, answerText, truth)

	return report
}

// conditionalRisk 条件性条款被引用时检查答案是否陈述了适用条件
// 这是风险标志而不是硬性扣分
func conditionalRisk(bCited, bRetrieved, totalCited int, answer string) (float64, string) {
	hasCue := false
	for _, cue := range conditionalCues {
		if cue.MatchString(answer) {
			hasCue = true
			break
		}
	}

	switch {
	case bCited > 0 && hasCue:
		return 1.0, fmt.Sprintf("%d conditional chunk(s) cited, applicability language present", bCited)
	case bCited > 0:
		return 0.0, fmt.Sprintf("%d conditional chunk(s) cited without applicability language", bCited)
	case bRetrieved > 0 && totalCited > 0 && hasCue:
		return 1.0, fmt.Sprintf("%d conditional chunk(s) retrieved, applicability language present", bRetrieved)
	case bRetrieved > 0 && totalCited > 0:
		return 0.5, fmt.Sprintf("%d conditional chunk(s) retrieved, no applicability language in answer", bRetrieved)
	default:
		return 1.0, "no conditional chunks involved"
	}
}

// multimodalStarvation 标准答案要求表格或图示时检查对应内容是否被检索到
// 无标准答案标志时退化为答案文本中的表格/图示编号提及检查
func multimodalStarvation(tablesRetrieved, visualsRetrieved int, answer string, truth GroundTruthFlags) (float64, string) {
	if truth.RequiresTable || truth.RequiresDiagram {
		if truth.RequiresTable && tablesRetrieved == 0 {
			return 0.0, "ground truth references tables but no structured_table chunks retrieved"
		}
		if truth.RequiresDiagram && visualsRetrieved == 0 {
			return 0.0, "ground truth references diagrams but no visual_content chunks retrieved"
		}
		return 1.0, fmt.Sprintf("multimodal content retrieved: %d tables, %d visuals", tablesRetrieved, visualsRetrieved)
	}

	if tableMentionPattern.MatchString(answer) && tablesRetrieved == 0 {
		return 0.5, "answer mentions tables but no structured_table chunks retrieved"
	}
	if figureMentionPattern.MatchString(answer) && visualsRetrieved == 0 {
		return 0.5, "answer mentions figures but no visual_content chunks retrieved"
	}
	return 1.0, fmt.Sprintf("multimodal content retrieved: %d tables, %d visuals", tablesRetrieved, visualsRetrieved)
}
