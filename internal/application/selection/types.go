// Package selection 提供检索后的候选重排与配额选择能力
package selection

// ContentType 候选内容的模态类型
type ContentType string

const (
	ContentTextChunk       ContentType = "text_chunk"
	ContentStructuredTable ContentType = "structured_table"
	ContentVisual          ContentType = "visual_content"
)

// NormativityClass 规范性分类
// A 表示强制性条款，B 表示条件性条款，C 表示非规范性说明
type NormativityClass string

const (
	ClassA       NormativityClass = "A"
	ClassB       NormativityClass = "B"
	ClassC       NormativityClass = "C"
	ClassUnknown NormativityClass = "UNKNOWN"
)

// Candidate 检索候选
// Similarity 由检索方给定，RerankScore 与 Rank 由本包各阶段写入
type Candidate struct {
	ID          string           `json:"id"`
	ContentType ContentType      `json:"content_type"`
	Class       NormativityClass `json:"normativity_class"`
	Similarity  float64          `json:"similarity"`
	RerankScore float64          `json:"rerank_score"`
	Rank        int              `json:"rank"`
}

// NewCandidate 构造候选，缺失的元数据回退为 Unknown
func NewCandidate(id string, contentType ContentType, class NormativityClass, similarity float64) Candidate {
	if contentType == "" {
		contentType = ContentTextChunk
	}
	if class == "" {
		class = ClassUnknown
	}
	return Candidate{
		ID:          id,
		ContentType: contentType,
		Class:       class,
		Similarity:  similarity,
	}
}

// IsText 判断候选是否为文本类内容
func (c Candidate) IsText() bool {
	return c.ContentType == ContentTextChunk
}

// EffectiveClass 返回用于打分的规范性分类
// 非文本内容无论携带何种分类标签都按 Unknown 处理
func (c Candidate) EffectiveClass() NormativityClass {
	if !c.IsText() {
		return ClassUnknown
	}
	if c.Class == "" {
		return ClassUnknown
	}
	return c.Class
}
