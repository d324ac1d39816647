package grading

import (
	"regexp"
	"sort"
	"strings"

	"compliance-qa-api/internal/application/selection"
)

// 条款引用的文本模式，覆盖 "AS/NZS 3000:2018 Clause 5.5.2"、
// "Clause 3.7.2"、"Section 3.7" 与 "AS3000 3.7.2.1" 等写法
var clauseRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)AS/?NZS?\s*3000(?::\d{4})?\s+(?:Clause|Section)\s+([\d.]+)`),
	regexp.MustCompile(`(?i)(?:Clause|Section)\s+([\d.]+)`),
	regexp.MustCompile(`(?i)AS3000\s+([\d.]+)`),
}

var (
	explicitIDPattern = regexp.MustCompile(`(?i)\[ID:\s*([A-Z]+_[a-f0-9]+)\]`)
	bareIDPattern     = regexp.MustCompile(`(?i)\b([A-Z]+_[a-f0-9]+)\b`)
)

// 片段重叠匹配参数
const (
	overlapSnippetLength = 40
	overlapMinSnippet    = 20
	overlapMinContent    = 50
)

// ExtractClauseRefs 从答案文本中提取条款引用的原始字符串
// 结果去重并排序，归一化交由 NormalizeClause
func ExtractClauseRefs(text string) []string {
	seen := make(map[string]struct{})
	for _, pattern := range clauseRefPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			seen[m[1]] = struct{}{}
		}
	}

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// RetrievedContent 引用映射所需的检索内容视图
type RetrievedContent struct {
	Candidate selection.Candidate
	Text      string
}

// ExtractCitedContentIDs 从答案文本推断被引用的内容标识
//
// 依优先级叠加四种策略：显式 [ID: ...] 标注、条款引用到内容的映射、
// 文本片段重叠匹配、裸内容标识提及。结果去重且只含检索集内的标识。
func ExtractCitedContentIDs(answer string, retrieved []RetrievedContent) []string {
	seen := make(map[string]struct{})
	ordered := make([]string, 0, len(retrieved))
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}

	validIDs := make(map[string]struct{}, len(retrieved))
	for _, item := range retrieved {
		validIDs[item.Candidate.ID] = struct{}{}
	}

	// 策略一：显式 [ID: ...] 标注
	for _, m := range explicitIDPattern.FindAllStringSubmatch(answer, -1) {
		add(m[1])
	}

	// 策略二：条款引用映射到包含该条款的内容
	for _, clause := range ExtractClauseRefs(answer) {
		escaped := regexp.QuoteMeta(clause)
		clauseInContent := regexp.MustCompile(`(?i)(?:\b|Clause\s+|Section\s+)` + escaped + `\b`)
		for _, item := range retrieved {
			if item.Text == "" {
				continue
			}
			if clauseInContent.MatchString(item.Text) {
				add(item.Candidate.ID)
			}
		}
	}

	// 策略三：片段重叠，捕获未显式引用的转述
	answerLower := strings.ToLower(answer)
	for _, item := range retrieved {
		if _, ok := seen[item.Candidate.ID]; ok {
			continue
		}
		if len(item.Text) < overlapMinContent {
			continue
		}
		for _, snippet := range contentSnippets(strings.ToLower(item.Text)) {
			if len(snippet) > overlapMinSnippet && strings.Contains(answerLower, snippet) {
				add(item.Candidate.ID)
				break
			}
		}
	}

	// 策略四：无 [ID: ...] 包装的裸标识提及
	for _, m := range bareIDPattern.FindAllStringSubmatch(answer, -1) {
		if _, ok := validIDs[m[1]]; ok {
			add(m[1])
		}
	}

	return ordered
}

// contentSnippets 取内容的首、中、尾三段用于重叠匹配
func contentSnippets(content string) []string {
	snippets := make([]string, 0, 3)
	if len(content) >= overlapSnippetLength {
		snippets = append(snippets, strings.TrimSpace(content[:overlapSnippetLength]))
	}
	if len(content) >= overlapSnippetLength*2 {
		mid := len(content)/2 - overlapSnippetLength/2
		snippets = append(snippets, strings.TrimSpace(content[mid:mid+overlapSnippetLength]))
	}
	if len(content) >= overlapSnippetLength*3 {
		snippets = append(snippets, strings.TrimSpace(content[len(content)-overlapSnippetLength:]))
	}
	return snippets
}
