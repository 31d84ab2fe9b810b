package core

import "github.com/rushteam/cetmatch/pkg/utils"

// Item 是匹配链路中的统一承载结构：记录、特征向量、判定、差值与标签。
// 每次查询都会为工作子集新建 Item，Pool 中的 Record 只读共享。
type Item struct {
	Index   int       // 在 Pool 中的原始位置
	Record  *Record   // 只读
	Vector  []float64 // 特征向量 [percentile, one-hot...]
	Verdict bool      // 分类器判定：true 表示预测录取
	Diff    float64   // 排序键：admitted 路径为 diff，nearest 路径为 |diff|
	Labels  map[string]utils.Label
}

func NewItem(index int, rec *Record) *Item {
	return &Item{
		Index:  index,
		Record: rec,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// ItemsFromPool 为 Pool 中每条记录创建一个 Item，顺序与 Pool 一致。
func ItemsFromPool(p *Pool) []*Item {
	items := make([]*Item, p.Len())
	for i := range items {
		items[i] = NewItem(i, p.At(i))
	}
	return items
}

// Colleges 按顺序取出学院名称（不去重）。
func Colleges(items []*Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil || it.Record == nil {
			continue
		}
		out = append(out, it.Record.College)
	}
	return out
}
