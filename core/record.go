package core

import (
	"strings"

	"golang.org/x/text/cases"
)

// Record 是一条历史录取记录（某学院某专业在某类别/性别下的录取分位线）。
//
// BranchKey / CasteKey / GenderKey 是归一化（去首尾空白 + case fold）后的副本，
// 只在构建 Pool 时计算一次，查询时直接比较，不再重复归一化。
type Record struct {
	Percentile float64 `json:"percentile"`
	College    string  `json:"college_name"`
	Branch     string  `json:"branch"`
	Caste      string  `json:"caste"`
	Gender     string  `json:"gender"`

	BranchKey string `json:"-"`
	CasteKey  string `json:"-"`
	GenderKey string `json:"-"`
}

// NormalizeKey 返回用于匹配的归一化字符串。
// cases.Caser 不是并发安全的，这里每次新建。
func NormalizeKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func (r *Record) normalize() {
	r.BranchKey = NormalizeKey(r.Branch)
	r.CasteKey = NormalizeKey(r.Caste)
	r.GenderKey = NormalizeKey(r.Gender)
}

// Pool 是候选池：有序、只读的历史记录集合。
// 进程生命周期内只构建一次，任何阶段都不会原地修改它。
type Pool struct {
	records []*Record
}

// NewPool 拷贝 records 并计算归一化字段。
func NewPool(records []Record) *Pool {
	p := &Pool{records: make([]*Record, len(records))}
	for i := range records {
		r := records[i]
		r.normalize()
		p.records[i] = &r
	}
	return p
}

// Len 返回记录数，nil Pool 视为空。
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.records)
}

// Records 返回池中记录（按原始顺序）。
// 返回的是新切片，调用方可以自由截取/排序，但不得修改 *Record。
func (p *Pool) Records() []*Record {
	if p == nil {
		return nil
	}
	out := make([]*Record, len(p.records))
	copy(out, p.records)
	return out
}

// At 返回第 i 条记录。
func (p *Pool) At(i int) *Record {
	return p.records[i]
}
