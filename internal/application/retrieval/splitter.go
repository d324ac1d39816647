package retrieval

import (
	"strings"
	"unicode"
)

// splitByRunes 将长文本按 rune 窗口切块，窗口间保留 overlapRunes 的重叠。
// 切点尽量落在空白处，避免把条款句子从中间截断。
func splitByRunes(s string, maxRunes int, overlapRunes int) []string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil
	}
	if maxRunes <= 0 {
		return []string{raw}
	}
	if overlapRunes < 0 || overlapRunes >= maxRunes {
		overlapRunes = 0
	}

	runes := []rune(raw)
	if len(runes) <= maxRunes {
		return []string{raw}
	}

	out := make([]string, 0, (len(runes)/(maxRunes-overlapRunes))+1)
	start := 0
	for start < len(runes) {
		end := start + maxRunes
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = snapToWhitespace(runes, start, end, overlapRunes)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end >= len(runes) {
			break
		}

		start = end - overlapRunes
	}
	return out
}

// snapToWhitespace 从 end 向前回退到最近的空白字符。
// 回退范围不超过重叠区，保证推进量始终为正且不丢失文本。
func snapToWhitespace(runes []rune, start, end, overlapRunes int) int {
	limit := end - overlapRunes
	if limit <= start {
		limit = start + 1
	}
	for i := end - 1; i > limit; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return end
}
