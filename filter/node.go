package filter

import (
	"context"

	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/pipeline"
	"github.com/rushteam/cetmatch/pkg/utils"
)

// StepAll 是所有过滤步骤都为空、退回全量候选池时的步骤名。
const StepAll = "all"

// CascadeNode 是逐级放宽的过滤 Node。
// 按 Steps 顺序尝试，第一个得到非空结果的步骤胜出；全部为空时使用全部输入。
// 输出始终是新切片，输入（即候选池）保持不变。
//
// 下游不区分命中的是哪一级，步骤名只写入 filter_step label 供观测。
type CascadeNode struct {
	Steps []Matcher
}

func (n *CascadeNode) Name() string {
	return "filter.cascade"
}

func (n *CascadeNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *CascadeNode) Process(
	_ context.Context,
	mctx *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return []*core.Item{}, nil
	}

	for _, step := range n.Steps {
		out := make([]*core.Item, 0)
		for _, it := range items {
			if it == nil || it.Record == nil {
				continue
			}
			if step.Match(mctx.Key, it.Record) {
				out = append(out, it)
			}
		}
		if len(out) > 0 {
			markStep(mctx, out, step.Name())
			return out, nil
		}
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil && it.Record != nil {
			out = append(out, it)
		}
	}
	markStep(mctx, out, StepAll)
	return out, nil
}

func markStep(mctx *core.MatchContext, items []*core.Item, step string) {
	mctx.Stats.Subset = len(items)
	lbl := utils.Label{Value: step, Source: "filter"}
	mctx.PutLabel("filter_step", lbl)
	for _, it := range items {
		it.PutLabel("filter_step", lbl)
	}
}
