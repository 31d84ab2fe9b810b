package pipeline

import (
	"context"

	"github.com/rushteam/cetmatch/core"
)

// Pipeline 把匹配逻辑拆成顺序执行的 Node 链：filter → feature → classify → rank → rerank。
type Pipeline struct {
	Nodes []Node
}

// StageError 标记失败的 Node，便于上层映射为 MATCHING_FAILURE。
type StageError struct {
	Node string
	Kind Kind
	Err  error
}

func (e *StageError) Error() string {
	return string(e.Kind) + "/" + e.Node + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

func (p *Pipeline) Run(
	ctx context.Context,
	mctx *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, mctx, cur)
		if err != nil {
			return nil, &StageError{Node: node.Name(), Kind: node.Kind(), Err: err}
		}
		cur = next
	}
	return cur, nil
}
