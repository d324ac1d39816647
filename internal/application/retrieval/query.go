package retrieval

import (
	"regexp"
	"sort"
	"strings"
)

// QueryType 查询类型
type QueryType string

const (
	QueryTypeGeneral    QueryType = "general"
	QueryTypeDefinition QueryType = "definition"
	QueryTypeAmendment  QueryType = "amendment"
	QueryTypeTable      QueryType = "table"
)

// QueryInfo 查询类型识别结果
type QueryInfo struct {
	Type QueryType
	// Term 定义类查询中被询问的术语
	Term             string
	BoostDefinitions bool
	FilterAmendments bool
	BoostTables      bool
}

var definitionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`what is (?:a |an |the )?(.+?)(?:\?|$)`),
	regexp.MustCompile(`define (.+?)(?:\?|$)`),
	regexp.MustCompile(`definition of (.+?)(?:\?|$)`),
	regexp.MustCompile(`what does (.+?) mean`),
}

var amendmentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`what (?:has )?changed`),
	regexp.MustCompile(`what(?:'s| is) new`),
	regexp.MustCompile(`new requirements?`),
	regexp.MustCompile(`amendments?`),
	regexp.MustCompile(`updates? (?:to|in)`),
}

var tablePattern = regexp.MustCompile(`table \d+`)

// DetectQueryType 识别查询类型以优化检索
func DetectQueryType(query string) QueryInfo {
	lower := strings.ToLower(query)

	for _, pattern := range definitionPatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			return QueryInfo{
				Type:             QueryTypeDefinition,
				Term:             strings.TrimSpace(m[1]),
				BoostDefinitions: true,
			}
		}
	}

	for _, pattern := range amendmentPatterns {
		if pattern.MatchString(lower) {
			return QueryInfo{Type: QueryTypeAmendment, FilterAmendments: true}
		}
	}

	if tablePattern.MatchString(lower) {
		return QueryInfo{Type: QueryTypeTable, BoostTables: true}
	}

	return QueryInfo{Type: QueryTypeGeneral}
}

// QueryExpander 在检索前用行业同义词扩展查询
type QueryExpander struct {
	patterns []expansionPattern
}

type expansionPattern struct {
	pattern  *regexp.Regexp
	term     string
	synonyms []string
}

// maxSynonymsPerTerm 每个命中术语附加的同义词上限，避免查询爆炸
const maxSynonymsPerTerm = 3

// DefaultSynonyms 默认的行业术语同义词映射
var DefaultSynonyms = map[string][]string{
	"RCD":              {"ELCB", "safety switch", "residual current device"},
	"MEN":              {"multiple earthed neutral", "earthing system"},
	"ELV":              {"extra-low voltage", "low voltage"},
	"SWITCHBOARD":      {"distribution board", "panel", "DB"},
	"EARTHING":         {"grounding", "earth conductor"},
	"CONDUIT":          {"ducting", "cable enclosure"},
	"DAMP SITUATION":   {"wet area", "bathroom", "outdoor"},
	"CLEARANCE":        {"separation distance", "spacing"},
	"CIRCUIT BREAKER":  {"CB", "MCB", "overcurrent protection"},
	"CONSUMER MAINS":   {"service mains", "supply mains"},
}

// NewQueryExpander 构造查询扩展器
// 术语按长度从长到短匹配，避免 "RCD PROTECTION" 被 "RCD" 抢先命中
func NewQueryExpander(mappings map[string][]string) *QueryExpander {
	if mappings == nil {
		mappings = DefaultSynonyms
	}

	terms := make([]string, 0, len(mappings))
	for term := range mappings {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })

	expander := &QueryExpander{patterns: make([]expansionPattern, 0, len(terms))}
	for _, term := range terms {
		expander.patterns = append(expander.patterns, expansionPattern{
			pattern:  regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
			term:     term,
			synonyms: mappings[term],
		})
	}
	return expander
}

// Expand 在命中术语后追加同义词，保留原查询结构
// 返回扩展后的查询与命中的术语
func (e *QueryExpander) Expand(query string) (string, []string) {
	expanded := query
	var matched []string

	for _, p := range e.patterns {
		if !p.pattern.MatchString(query) {
			continue
		}
		matched = append(matched, p.term)

		synonyms := p.synonyms
		if len(synonyms) > maxSynonymsPerTerm {
			synonyms = synonyms[:maxSynonymsPerTerm]
		}
		suffix := " " + strings.Join(synonyms, " ")

		replaced := false
		expanded = p.pattern.ReplaceAllStringFunc(expanded, func(m string) string {
			if replaced {
				return m
			}
			replaced = true
			return m + suffix
		})
	}

	return expanded, matched
}
