package retrieval

import (
	"fmt"
	"strings"
)

// BuildPromptContext 将选中内容格式化为可直接注入 Prompt 的块。
// 约束：尽量短，引用以条款号标注，不携带 score 等调试信息。
func BuildPromptContext(items []ContentItem, maxItems int, maxRunesPerItem int) string {
	if len(items) == 0 {
		return ""
	}
	if maxItems <= 0 {
		maxItems = 10
	}
	if maxRunesPerItem <= 0 {
		maxRunesPerItem = 400
	}

	n := len(items)
	if n > maxItems {
		n = maxItems
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		item := items[i]

		ref := "Context"
		if clause := strings.TrimSpace(item.Clause); clause != "" {
			ref = "Clause " + clause
			if ct := strings.TrimSpace(item.ClauseType); ct != "" {
				ref += " " + ct
			}
		}

		txt := compactOneLine(item.Text)
		txt = truncateRunes(txt, maxRunesPerItem)
		if strings.TrimSpace(txt) == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%d] (%s) %s", i+1, ref, txt))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func compactOneLine(s string) string {
	out := strings.ReplaceAll(s, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = strings.ReplaceAll(out, "\n", " ")
	out = strings.TrimSpace(out)
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return out
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
