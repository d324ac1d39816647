// Package grading 提供条款引用归一化、分级匹配与覆盖度评测能力
package grading

import (
	"regexp"
	"strings"
)

// ClauseID 归一化后的条款标识，形如 "1.4.32"
// 仅由 NormalizeClause 产生
type ClauseID string

var (
	nonClauseChars = regexp.MustCompile(`[^\d.]`)
	repeatedDots   = regexp.MustCompile(`\.{2,}`)
	validClause    = regexp.MustCompile(`^\d+(\.\d+)*$`)
)

// NormalizeClause 将自由文本的条款引用归一化为可比较的 ClauseID
//
// 依次去除空白、剔除数字与点号之外的字符、折叠连续点号、去掉首尾点号，
// 最后校验格式。无法归一化时返回 ok=false，失败是一个值而不是错误。
func NormalizeClause(raw string) (ClauseID, bool) {
	clause := strings.TrimSpace(raw)
	if clause == "" {
		return "", false
	}

	clause = nonClauseChars.ReplaceAllString(clause, "")
	clause = repeatedDots.ReplaceAllString(clause, ".")
	clause = strings.Trim(clause, ".")

	if !validClause.MatchString(clause) {
		return "", false
	}
	return ClauseID(clause), true
}

// Segments 返回点号分隔的层级段
func (c ClauseID) Segments() []string {
	return strings.Split(string(c), ".")
}

// Depth 返回层级深度，即段数
func (c ClauseID) Depth() int {
	return len(c.Segments())
}

// TopSegment 返回最上层的段
func (c ClauseID) TopSegment() string {
	return c.Segments()[0]
}

// IsAncestorOf 判断 c 是否为 other 的严格前缀层级
// 例如 "1.4" 是 "1.4.32" 的上级
func (c ClauseID) IsAncestorOf(other ClauseID) bool {
	return strings.HasPrefix(string(other), string(c)+".")
}
