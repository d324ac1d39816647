package selection

import (
	"fmt"
)

// 默认选择策略参数
const (
	DefaultCandidateSetSize    = 30
	DefaultFinalSize           = 20
	DefaultBoostA              = 0.15
	DefaultBoostB              = 0.05
	DefaultPenaltyC            = -0.10
	DefaultNeutralUnknown      = 0.0
	DefaultMinNormativeText    = 4
	DefaultMaxNonNormativeText = 2
	DefaultMinUnknownNonText   = 2
)

// Policy 重排与配额选择策略
// 一次请求内不可变，所有阶段共享同一份
type Policy struct {
	// CandidateSetSize 进入重排的候选上限
	CandidateSetSize int
	// FinalSize 最终选集上限
	FinalSize int

	// 按规范性分类施加的加权
	BoostA         float64
	BoostB         float64
	PenaltyC       float64
	NeutralUnknown float64

	// MinNormativeText 规范性文本的最低保底数量
	MinNormativeText int
	// MaxNonNormativeText 非规范性文本的硬上限
	MaxNonNormativeText int
	// MinUnknownNonText 非文本内容的最低保底数量
	MinUnknownNonText int
}

// DefaultPolicy 返回默认策略
func DefaultPolicy() Policy {
	return Policy{
		CandidateSetSize:    DefaultCandidateSetSize,
		FinalSize:           DefaultFinalSize,
		BoostA:              DefaultBoostA,
		BoostB:              DefaultBoostB,
		PenaltyC:            DefaultPenaltyC,
		NeutralUnknown:      DefaultNeutralUnknown,
		MinNormativeText:    DefaultMinNormativeText,
		MaxNonNormativeText: DefaultMaxNonNormativeText,
		MinUnknownNonText:   DefaultMinUnknownNonText,
	}
}

// Validate 校验策略参数
// 配置错误应在加载阶段直接失败，而不是在请求路径上
func (p Policy) Validate() error {
	if p.CandidateSetSize <= 0 {
		return fmt.Errorf("candidate_set_size must be positive, got %d", p.CandidateSetSize)
	}
	if p.FinalSize <= 0 {
		return fmt.Errorf("final_size must be positive, got %d", p.FinalSize)
	}
	if p.FinalSize > p.CandidateSetSize {
		return fmt.Errorf("final_size %d exceeds candidate_set_size %d", p.FinalSize, p.CandidateSetSize)
	}
	if p.MinNormativeText < 0 {
		return fmt.Errorf("min_normative_text must not be negative, got %d", p.MinNormativeText)
	}
	if p.MaxNonNormativeText < 0 {
		return fmt.Errorf("max_non_normative_text must not be negative, got %d", p.MaxNonNormativeText)
	}
	if p.MinUnknownNonText < 0 {
		return fmt.Errorf("min_unknown_non_text must not be negative, got %d", p.MinUnknownNonText)
	}
	if p.MinNormativeText+p.MinUnknownNonText > p.FinalSize {
		return fmt.Errorf("minimum quotas %d exceed final_size %d",
			p.MinNormativeText+p.MinUnknownNonText, p.FinalSize)
	}
	return nil
}

// adjustment 返回候选的加权值
func (p Policy) adjustment(c Candidate) float64 {
	if !c.IsText() {
		return p.NeutralUnknown
	}
	switch c.EffectiveClass() {
	case ClassA:
		return p.BoostA
	case ClassB:
		return p.BoostB
	case ClassC:
		return p.PenaltyC
	default:
		return p.NeutralUnknown
	}
}
