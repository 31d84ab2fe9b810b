package filter

import "github.com/rushteam/cetmatch/core"

// Matcher 是候选过滤策略：判断一条记录是否与查询的归一化字段匹配。
// 返回 true 表示保留。
type Matcher interface {
	// Name 返回策略名称（写入 filter_step label）
	Name() string

	// Match 判断记录是否保留
	Match(key core.Normalized, rec *core.Record) bool
}

// ExactMatcher 要求专业、类别、性别全部一致。
type ExactMatcher struct{}

func (ExactMatcher) Name() string { return "exact" }

func (ExactMatcher) Match(key core.Normalized, rec *core.Record) bool {
	return rec.BranchKey == key.Branch &&
		rec.CasteKey == key.Caste &&
		rec.GenderKey == key.Gender
}

// BranchMatcher 只要求专业一致，忽略类别与性别。
type BranchMatcher struct{}

func (BranchMatcher) Name() string { return "branch" }

func (BranchMatcher) Match(key core.Normalized, rec *core.Record) bool {
	return rec.BranchKey == key.Branch
}

// DefaultSteps 是默认的放宽阶梯：exact → branch → 全量。
func DefaultSteps() []Matcher {
	return []Matcher{ExactMatcher{}, BranchMatcher{}}
}
