package rerank

import (
	"context"

	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在排序后截取前 N 条记录。
//
// N 为 0 时使用查询中的 limit（引擎默认的用法）；
// N < 0 表示不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	mctx *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit == 0 && mctx != nil {
		limit = mctx.Query.Limit
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
