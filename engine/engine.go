// Package engine 是匹配引擎：把考生查询映射为有序、有上限的学院列表。
//
// 引擎内部是一条固定的 Pipeline：
//
//	filter.cascade → feature.encode → rank.classify → rank.admit → rerank.topn
//
// 候选池、编码器、分类器在构建时注入，之后只读，可被并发查询共享。
package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/feature"
	"github.com/rushteam/cetmatch/filter"
	"github.com/rushteam/cetmatch/model"
	"github.com/rushteam/cetmatch/pipeline"
	"github.com/rushteam/cetmatch/pkg/utils"
	"github.com/rushteam/cetmatch/rank"
	"github.com/rushteam/cetmatch/rerank"
)

// Matcher 是对外的匹配接口，Engine / Unavailable / CachedMatcher 均实现它。
type Matcher interface {
	// Match 返回最多 q.Limit 个学院名称
	Match(ctx context.Context, q core.Query) ([]string, error)
	// Explain 返回结果及匹配过程信息
	Explain(ctx context.Context, q core.Query) (*Outcome, error)
}

// Result 是结果中的一条记录。
type Result struct {
	College    string  `json:"college"`
	Branch     string  `json:"branch"`
	Caste      string  `json:"caste"`
	Gender     string  `json:"gender"`
	Percentile float64 `json:"percentile"`
	Diff       float64 `json:"diff"`
	Admitted   bool    `json:"admitted"`
}

// Outcome 是一次匹配的完整输出。
type Outcome struct {
	Colleges       []string          `json:"colleges"`
	Results        []Result          `json:"results"`
	Step           string            `json:"filter_step"`
	Path           string            `json:"rank_path"`
	FallbackReason string            `json:"fallback_reason,omitempty"`
	Stats          core.MatchStats   `json:"stats"`
	Labels         map[string]string `json:"labels,omitempty"`
}

// Engine 是匹配引擎。
type Engine struct {
	pool       *core.Pool
	encoder    feature.Encoder
	classifier model.Classifier
	steps      []filter.Matcher
	pipeline   *pipeline.Pipeline
	logger     *zap.Logger
}

// Option 配置 Engine
type Option func(*Engine)

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSteps 替换过滤放宽阶梯（默认 exact → branch → 全量）
func WithSteps(steps ...filter.Matcher) Option {
	return func(e *Engine) {
		e.steps = steps
	}
}

// New 创建引擎。编码器或分类器缺失返回 CONFIGURATION 错误，候选池缺失返回 DATA 错误。
// 空候选池可以构建成功，但每次查询都会返回 EMPTY_POOL。
func New(pool *core.Pool, enc feature.Encoder, clf model.Classifier, opts ...Option) (*Engine, error) {
	if enc == nil {
		return nil, core.NewConfigurationError(core.ModuleFeature, "engine: encoder unavailable", nil)
	}
	if clf == nil {
		return nil, core.NewConfigurationError(core.ModuleModel, "engine: classifier unavailable", nil)
	}
	if pool == nil {
		return nil, core.NewDataError("engine: candidate pool not loaded", nil)
	}

	e := &Engine{
		pool:       pool,
		encoder:    enc,
		classifier: clf,
		steps:      filter.DefaultSteps(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.pipeline = &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&filter.CascadeNode{Steps: e.steps},
			&feature.EncodeNode{Encoder: e.encoder},
			&rank.ClassifyNode{Model: e.classifier},
			&rank.AdmitNode{},
			&rerank.TopNNode{},
		},
	}
	return e, nil
}

// Pool 返回引擎持有的候选池（只读）。
func (e *Engine) Pool() *core.Pool { return e.pool }

// Match 返回最多 q.Limit 个学院名称（允许重复）。
func (e *Engine) Match(ctx context.Context, q core.Query) ([]string, error) {
	out, err := e.Explain(ctx, q)
	if err != nil {
		return nil, err
	}
	return out.Colleges, nil
}

// Explain 执行匹配并返回结果与过程信息。失败时不返回部分结果。
func (e *Engine) Explain(ctx context.Context, q core.Query) (*Outcome, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if e.pool.Len() == 0 {
		return nil, core.ErrEmptyPool
	}

	mctx := core.NewMatchContext(RequestIDFromContext(ctx), q)
	mctx.Stats.Pool = e.pool.Len()

	items, err := e.pipeline.Run(ctx, mctx, core.ItemsFromPool(e.pool))
	if err != nil {
		e.logger.Warn("match failed",
			zap.String("request_id", mctx.RequestID),
			zap.Stringer("query", q),
			zap.Error(err),
		)
		return nil, toMatchingFailure(err)
	}

	out := buildOutcome(mctx, items)
	e.logger.Debug("match",
		zap.String("request_id", mctx.RequestID),
		zap.Stringer("query", q),
		zap.String("filter_step", out.Step),
		zap.String("rank_path", out.Path),
		zap.Int("subset", out.Stats.Subset),
		zap.Int("admitted", out.Stats.Admitted),
		zap.Int("results", len(out.Colleges)),
	)
	return out, nil
}

func toMatchingFailure(err error) error {
	stage := "pipeline"
	var se *pipeline.StageError
	if errors.As(err, &se) {
		stage = se.Node
		err = se.Err
	}
	return core.NewMatchingFailure(stage, err)
}

func buildOutcome(mctx *core.MatchContext, items []*core.Item) *Outcome {
	out := &Outcome{
		Colleges: core.Colleges(items),
		Results:  make([]Result, 0, len(items)),
		Stats:    mctx.Stats,
		Labels:   utils.Flatten(mctx.Labels),
	}
	if lbl, ok := mctx.GetLabel("filter_step"); ok {
		out.Step = lbl.Value
	}
	if lbl, ok := mctx.GetLabel("rank_path"); ok {
		out.Path = lbl.Value
	}
	if lbl, ok := mctx.GetLabel("fallback_reason"); ok {
		out.FallbackReason = lbl.Value
	}
	for _, it := range items {
		rec := it.Record
		out.Results = append(out.Results, Result{
			College:    rec.College,
			Branch:     rec.Branch,
			Caste:      rec.Caste,
			Gender:     rec.Gender,
			Percentile: rec.Percentile,
			Diff:       it.Diff,
			Admitted:   it.Verdict,
		})
	}
	return out
}
