// Package cetmatch 是学院录取匹配引擎：根据考生的分位、专业、类别与性别，
// 返回最可能录取该考生的学院列表。
//
// 设计要点：
// - Pipeline-first: 匹配逻辑由 Node 串联（Filter → Feature → Classify → Rank → ReRank）
// - 分类器只是先验：工作子集非空时结果一定非空（就近降级）
// - 依赖注入: 候选池、编码器、分类器在构建时传入，之后只读
// - 错误分类: CONFIGURATION / DATA / EMPTY_POOL / MATCHING_FAILURE / INVALID_INPUT
package cetmatch

import (
	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/engine"
	"github.com/rushteam/cetmatch/feature"
	"github.com/rushteam/cetmatch/model"
	"github.com/rushteam/cetmatch/pipeline"
)

// 轻量 facade：便于直接 import "cetmatch" 使用核心抽象。
type (
	Engine   = engine.Engine
	Matcher  = engine.Matcher
	Outcome  = engine.Outcome
	Query    = core.Query
	Record   = core.Record
	Pool     = core.Pool
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
)

const (
	KindFilter   = pipeline.KindFilter
	KindFeature  = pipeline.KindFeature
	KindClassify = pipeline.KindClassify
	KindRank     = pipeline.KindRank
	KindReRank   = pipeline.KindReRank
)

// New 创建匹配引擎，见 engine.New。
func New(pool *core.Pool, enc feature.Encoder, clf model.Classifier, opts ...engine.Option) (*engine.Engine, error) {
	return engine.New(pool, enc, clf, opts...)
}

// NewPool 构建候选池，见 core.NewPool。
func NewPool(records []core.Record) *core.Pool {
	return core.NewPool(records)
}
