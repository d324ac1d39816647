package selection

import (
	"sort"
)

// quotaTier 保底配额层级
// 按声明顺序依次消费候选，新增层级只需追加条目
type quotaTier struct {
	name  string
	match func(Candidate) bool
	min   int
}

// isNormativeText 规范性文本
// Unknown 分类的文本默认按规范性对待，避免标注缺失的文本被静默丢弃
func isNormativeText(c Candidate) bool {
	if !c.IsText() {
		return false
	}
	cls := c.EffectiveClass()
	return cls == ClassA || cls == ClassB || cls == ClassUnknown
}

// isNonNormativeText 非规范性文本
func isNonNormativeText(c Candidate) bool {
	return c.IsText() && c.EffectiveClass() == ClassC
}

// isNonText 表格与图示等非文本内容
func isNonText(c Candidate) bool {
	return !c.IsText()
}

// SelectQuota 从重排结果中构造受配额约束的最终选集
//
// 输入须为 Rerank 的输出。选集长度不超过 FinalSize，并在候选充足时
// 保证规范性文本与非文本内容的最低数量，非规范性文本受硬上限约束。
// 这不是纯 top-K 策略，牺牲少量得分换取证据类型的多样性。
// 候选不足时返回满足约束的全部内容，不做填充。
func SelectQuota(candidates []Candidate, p Policy) []Candidate {
	if len(candidates) == 0 {
		return []Candidate{}
	}

	tiers := []quotaTier{
		{name: "normative_text", match: isNormativeText, min: p.MinNormativeText},
		{name: "non_text", match: isNonText, min: p.MinUnknownNonText},
	}

	taken := make([]bool, len(candidates))
	selected := make([]Candidate, 0, p.FinalSize)

	// 按层级顺序满足保底配额，层级内保持重排顺序
	for _, tier := range tiers {
		count := 0
		for i, c := range candidates {
			if count >= tier.min || len(selected) >= p.FinalSize {
				break
			}
			if taken[i] || !tier.match(c) {
				continue
			}
			taken[i] = true
			selected = append(selected, c)
			count++
		}
	}

	// 剩余名额从未消费的候选中按得分补齐
	// 非规范性文本即使检索量更大也只放行 MaxNonNormativeText 条
	remaining := p.FinalSize - len(selected)
	if remaining > 0 {
		pool := make([]Candidate, 0, len(candidates))
		nonNormative := 0
		for i, c := range candidates {
			if taken[i] {
				continue
			}
			if isNonNormativeText(c) {
				if nonNormative >= p.MaxNonNormativeText {
					continue
				}
				nonNormative++
			}
			pool = append(pool, c)
		}

		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].RerankScore > pool[j].RerankScore
		})

		if len(pool) > remaining {
			pool = pool[:remaining]
		}
		selected = append(selected, pool...)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].RerankScore > selected[j].RerankScore
	})
	for i := range selected {
		selected[i].Rank = i + 1
	}

	return selected
}
