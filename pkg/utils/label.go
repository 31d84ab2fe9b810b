package utils

// Label 是匹配链路中的解释信息：记录命中的过滤步骤、判定模型、排序路径等。
// Value 与 Source 的语义由各阶段自定义；这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // filter / classify / rank ...
}

// MergeLabel 用于合并同名 Label，保留历史、可追踪：
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}
	if existing == incoming {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	case existing.Source != incoming.Source:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// Flatten 把 label map 转成 key -> value，便于输出。
func Flatten(labels map[string]Label) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v.Value
	}
	return out
}
