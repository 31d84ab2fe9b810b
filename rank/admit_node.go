package rank

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/pipeline"
	"github.com/rushteam/cetmatch/pkg/utils"
)

// 排序路径，写入 rank_path label。
const (
	PathAdmitted = "admitted"
	PathNearest  = "nearest"
)

// 就近降级的原因，写入查询级 fallback_reason label。
const (
	ReasonNoAdmits    = "no_admits"    // 分类器没有预测任何录取
	ReasonBelowCutoff = "below_cutoff" // 预测录取的记录分位线都高于考生
)

// AdmitNode 把 (工作子集, 判定) 转换为有序结果，判定顺序固定：
//
//  1. admitted = 判定为录取的记录
//  2. admitted 为空 → 就近降级（工作子集）
//  3. diff = 考生分位 - 记录分位
//  4. eligible = diff >= 0 的 admitted；为空 → 就近降级（工作子集）；
//     否则按 diff 升序（分位线最贴近考生的排最前）
//  5. 就近降级：忽略判定，按 |记录分位 - 考生分位| 升序
//
// 分类器只是先验：只要工作子集非空，输出就非空。
// 所有排序都是稳定排序，平局保持候选池原始顺序。截断由后续的 TopNNode 完成。
type AdmitNode struct{}

func (n *AdmitNode) Name() string        { return "rank.admit" }
func (n *AdmitNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *AdmitNode) Process(
	_ context.Context,
	mctx *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	p := mctx.Query.Percentile

	eligible := make([]*core.Item, 0, len(items))
	admitted := 0
	for _, it := range items {
		if !it.Verdict {
			continue
		}
		admitted++
		diff := p - it.Record.Percentile
		if diff >= 0 {
			it.Diff = diff
			eligible = append(eligible, it)
		}
	}

	mctx.Stats.Admitted = admitted
	mctx.Stats.Eligible = len(eligible)

	if admitted == 0 {
		mctx.PutLabel("fallback_reason", utils.Label{Value: ReasonNoAdmits, Source: "rank"})
		return nearest(mctx, items), nil
	}
	if len(eligible) == 0 {
		mctx.PutLabel("fallback_reason", utils.Label{Value: ReasonBelowCutoff, Source: "rank"})
		return nearest(mctx, items), nil
	}

	sortByDiff(eligible)
	mark(mctx, eligible, PathAdmitted)
	return eligible, nil
}

// nearest 是就近降级：不看判定，按绝对分位差排序，返回新切片。
func nearest(mctx *core.MatchContext, items []*core.Item) []*core.Item {
	p := mctx.Query.Percentile
	out := make([]*core.Item, len(items))
	for i, it := range items {
		it.Diff = math.Abs(it.Record.Percentile - p)
		out[i] = it
	}
	sortByDiff(out)
	mark(mctx, out, PathNearest)
	return out
}

func sortByDiff(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Diff < items[j].Diff
	})
}

func mark(mctx *core.MatchContext, items []*core.Item, path string) {
	lbl := utils.Label{Value: path, Source: "rank"}
	mctx.PutLabel("rank_path", lbl)
	for _, it := range items {
		it.PutLabel("rank_path", lbl)
	}
}
