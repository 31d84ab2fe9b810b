package rank

import (
	"context"
	"fmt"

	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/model"
	"github.com/rushteam/cetmatch/pipeline"
	"github.com/rushteam/cetmatch/pkg/utils"
)

// ClassifyNode 是判定 Node：一次批量调用 Classifier，
// verdict[i] 写回 items[i].Verdict，顺序保持不变。
type ClassifyNode struct {
	Model model.Classifier
}

func (n *ClassifyNode) Name() string        { return "rank.classify" }
func (n *ClassifyNode) Kind() pipeline.Kind { return pipeline.KindClassify }

func (n *ClassifyNode) Process(
	ctx context.Context,
	_ *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Model == nil {
		return nil, fmt.Errorf("classifier not set")
	}
	if len(items) == 0 {
		return items, nil
	}

	vectors := make([][]float64, len(items))
	for i, it := range items {
		if it.Vector == nil {
			return nil, fmt.Errorf("row %d has no feature vector", i)
		}
		vectors[i] = it.Vector
	}

	verdicts, err := n.Model.PredictBatch(ctx, vectors)
	if err != nil {
		return nil, fmt.Errorf("%s predict: %w", n.Model.Name(), err)
	}
	if len(verdicts) != len(items) {
		return nil, fmt.Errorf("%s returned %d verdicts for %d rows", n.Model.Name(), len(verdicts), len(items))
	}

	for i, it := range items {
		it.Verdict = verdicts[i]
		it.PutLabel("classify_model", utils.Label{Value: n.Model.Name(), Source: "classify"})
	}
	return items, nil
}
