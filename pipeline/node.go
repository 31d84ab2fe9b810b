package pipeline

import (
	"context"

	"github.com/rushteam/cetmatch/core"
)

// Kind 用于标记 Node 所处阶段，方便观测/打点。
type Kind string

const (
	KindFilter   Kind = "filter"   // 过滤阶段：逐级放宽约束，得到工作子集
	KindFeature  Kind = "feature"  // 特征阶段：为工作子集构建特征向量
	KindClassify Kind = "classify" // 分类阶段：批量得到录取判定
	KindRank     Kind = "rank"     // 排序阶段：录取/就近降级策略
	KindReRank   Kind = "rerank"   // 重排阶段：截断到 limit
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态；Node 不得修改输入切片本身，
// 需要过滤/重排时返回新切片。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		mctx *core.MatchContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
