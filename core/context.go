package core

import "github.com/rushteam/cetmatch/pkg/utils"

// MatchContext 承载一次查询的输入与观测信息，贯穿整个 Pipeline 透传。
type MatchContext struct {
	RequestID string

	Query Query

	// Key 是查询的归一化字段，在进入 Pipeline 前计算一次
	Key Normalized

	// Labels 是查询级标签，记录过滤步骤、排序路径等，用于 explain / 观测
	Labels map[string]utils.Label

	// Stats 由各阶段填写的计数
	Stats MatchStats
}

// MatchStats 是一次匹配各阶段的规模。
type MatchStats struct {
	Pool     int `json:"pool"`
	Subset   int `json:"subset"`
	Admitted int `json:"admitted"`
	Eligible int `json:"eligible"`
}

// NewMatchContext 基于查询创建上下文。
func NewMatchContext(requestID string, q Query) *MatchContext {
	return &MatchContext{
		RequestID: requestID,
		Query:     q,
		Key:       q.Normalize(),
		Labels:    make(map[string]utils.Label),
	}
}

// PutLabel 写入查询级 Label。
func (mctx *MatchContext) PutLabel(key string, lbl utils.Label) {
	if mctx.Labels == nil {
		mctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := mctx.Labels[key]; ok {
		mctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	mctx.Labels[key] = lbl
}

// GetLabel 获取查询级 Label。
func (mctx *MatchContext) GetLabel(key string) (utils.Label, bool) {
	if mctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := mctx.Labels[key]
	return lbl, ok
}
