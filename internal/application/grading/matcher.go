package grading

// 分级匹配得分表
// 层级相邻的引用给部分分，深层共享前缀的引用更可信
const (
	ScoreExact = 1.0
	// 前缀关系按较浅一方的深度给分
	ScorePrefixDepth1 = 0.5
	ScorePrefixDepth2 = 0.6
	ScorePrefixDeep   = 0.75
	// 仅同顶层章节，弱主题相关
	ScoreSameSection = 0.3
	ScoreNone        = 0.0

	// CorrectThreshold 判定引用正确的最低得分
	CorrectThreshold = 0.75
)

// MatchClauses 计算引用条款与期望条款之间的分级匹配得分
//
// 两个参数均须已归一化。规则按序判定，先命中者生效：
// 完全相等、互为层级前缀（按较浅深度给 0.5/0.6/0.75）、
// 同顶层章节给 0.3，其余为 0。
func MatchClauses(cited, expected ClauseID) float64 {
	if cited == expected {
		return ScoreExact
	}

	if cited.IsAncestorOf(expected) {
		return prefixScore(cited.Depth())
	}
	if expected.IsAncestorOf(cited) {
		return prefixScore(expected.Depth())
	}

	if cited.TopSegment() == expected.TopSegment() {
		return ScoreSameSection
	}

	return ScoreNone
}

// prefixScore 按较浅一方的深度返回前缀匹配得分
func prefixScore(depth int) float64 {
	switch {
	case depth <= 1:
		return ScorePrefixDepth1
	case depth == 2:
		return ScorePrefixDepth2
	default:
		return ScorePrefixDeep
	}
}
