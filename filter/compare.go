package filter

import "github.com/rushteam/cetmatch/core"

// Criteria 是浏览/对比接口的可选过滤条件，空值表示不过滤该字段。
type Criteria struct {
	Branch     string
	Caste      string
	Gender     string
	Percentile *float64
}

// Compare 按条件筛选候选池（大小写不敏感），不经过分类器。
// Percentile 不为空时，只保留分位线不高于考生分位的记录。
func Compare(pool *core.Pool, c Criteria) []*core.Record {
	branch := core.NormalizeKey(c.Branch)
	caste := core.NormalizeKey(c.Caste)
	gender := core.NormalizeKey(c.Gender)

	out := make([]*core.Record, 0)
	for _, rec := range pool.Records() {
		if branch != "" && rec.BranchKey != branch {
			continue
		}
		if caste != "" && rec.CasteKey != caste {
			continue
		}
		if gender != "" && rec.GenderKey != gender {
			continue
		}
		if c.Percentile != nil && *c.Percentile < rec.Percentile {
			continue
		}
		out = append(out, rec)
	}
	return out
}
