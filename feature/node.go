package feature

import (
	"context"
	"fmt"

	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/pipeline"
)

// EncodeNode 是特征构建 Node：为工作子集中的每条记录构建特征向量。
// 所有向量共享查询的 percentile，类别部分使用记录自身的原始取值。
// 向量写入 item.Vector，item 顺序不变。
type EncodeNode struct {
	Encoder Encoder
}

func (n *EncodeNode) Name() string        { return "feature.encode" }
func (n *EncodeNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n *EncodeNode) Process(
	_ context.Context,
	mctx *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Encoder == nil {
		return nil, fmt.Errorf("encoder not set")
	}

	width := n.Encoder.Width()
	for i, it := range items {
		rec := it.Record
		cat, err := n.Encoder.Encode(rec.Branch, rec.Caste, rec.Gender)
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", i, err)
		}
		if len(cat) != width {
			return nil, fmt.Errorf("encode row %d: width %d, want %d", i, len(cat), width)
		}
		vec := make([]float64, 0, width+1)
		vec = append(vec, mctx.Query.Percentile)
		vec = append(vec, cat...)
		it.Vector = vec
	}
	return items, nil
}
