package feature

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rushteam/cetmatch/core"
)

// 编码器的类别列，顺序固定，决定 one-hot 向量的拼接顺序。
const (
	ColumnBranch = "branch"
	ColumnCaste  = "caste"
	ColumnGender = "gender"
)

// Columns 是编码列的固定顺序。
var Columns = []string{ColumnBranch, ColumnCaste, ColumnGender}

// Encoder 是类别特征编码器接口：把 (branch, caste, gender) 映射为定长数值向量。
// 实现必须是只读的，可被并发调用；遇到未知类别时不得失败。
type Encoder interface {
	// Encode 编码一条记录的类别取值，返回长度为 Width() 的向量
	Encode(branch, caste, gender string) ([]float64, error)
	// Width 返回编码向量长度
	Width() int
}

// OneHotEncoder One-Hot 编码（独热编码）
// 每个类别列对应一段定长区间，区间内每个维度对应一个已知类别。
// 未出现在词表中的取值在该列区间内全部为 0（忽略未知类别）。
//
// 类别按原始字符串精确匹配，不做归一化：词表就是用原始取值拟合的。
type OneHotEncoder struct {
	Categories map[string][]string // 每个列名对应的有序类别列表

	index  map[string]map[string]int
	offset map[string]int
	width  int
}

// NewOneHotEncoder 创建 One-Hot 编码器，categories 必须包含 Columns 中的每一列
func NewOneHotEncoder(categories map[string][]string) (*OneHotEncoder, error) {
	e := &OneHotEncoder{
		Categories: categories,
		index:      make(map[string]map[string]int, len(Columns)),
		offset:     make(map[string]int, len(Columns)),
	}
	for _, col := range Columns {
		cats, ok := categories[col]
		if !ok {
			return nil, fmt.Errorf("encoder: missing column %q", col)
		}
		idx := make(map[string]int, len(cats))
		for i, cat := range cats {
			if _, dup := idx[cat]; dup {
				return nil, fmt.Errorf("encoder: duplicate category %q in column %q", cat, col)
			}
			idx[cat] = i
		}
		e.index[col] = idx
		e.offset[col] = e.width
		e.width += len(cats)
	}
	return e, nil
}

// FitOneHotEncoder 从候选池学习词表：每列取原始值去重后排序。
func FitOneHotEncoder(pool *core.Pool) (*OneHotEncoder, error) {
	seen := map[string]map[string]struct{}{
		ColumnBranch: {},
		ColumnCaste:  {},
		ColumnGender: {},
	}
	for _, rec := range pool.Records() {
		seen[ColumnBranch][rec.Branch] = struct{}{}
		seen[ColumnCaste][rec.Caste] = struct{}{}
		seen[ColumnGender][rec.Gender] = struct{}{}
	}

	categories := make(map[string][]string, len(seen))
	for col, set := range seen {
		cats := make([]string, 0, len(set))
		for cat := range set {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		categories[col] = cats
	}
	return NewOneHotEncoder(categories)
}

type encoderFile struct {
	Type       string              `json:"type"`
	Categories map[string][]string `json:"categories"`
}

// LoadOneHotEncoder 从 JSON 文件加载编码器。
// 格式：{"type": "onehot", "categories": {"branch": [...], "caste": [...], "gender": [...]}}
func LoadOneHotEncoder(path string) (*OneHotEncoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encoder: %w", err)
	}
	var raw encoderFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse encoder: %w", err)
	}
	if raw.Type != "" && raw.Type != "onehot" {
		return nil, fmt.Errorf("encoder: unsupported type %q", raw.Type)
	}
	return NewOneHotEncoder(raw.Categories)
}

// Save 把编码器写入 JSON 文件。
func (e *OneHotEncoder) Save(path string) error {
	data, err := json.MarshalIndent(encoderFile{Type: "onehot", Categories: e.Categories}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal encoder: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write encoder: %w", err)
	}
	return nil
}

func (e *OneHotEncoder) Width() int { return e.width }

// Encode 编码单条记录，从不因未知类别失败。
func (e *OneHotEncoder) Encode(branch, caste, gender string) ([]float64, error) {
	vec := make([]float64, e.width)
	e.set(vec, ColumnBranch, branch)
	e.set(vec, ColumnCaste, caste)
	e.set(vec, ColumnGender, gender)
	return vec, nil
}

func (e *OneHotEncoder) set(vec []float64, col, value string) {
	if i, ok := e.index[col][value]; ok {
		vec[e.offset[col]+i] = 1.0
	}
}

// FeatureNames 返回向量各维度的名称，第 0 维是 percentile。
func (e *OneHotEncoder) FeatureNames() []string {
	names := make([]string, 0, e.width+1)
	names = append(names, "percentile")
	for _, col := range Columns {
		for _, cat := range e.Categories[col] {
			names = append(names, col+"="+cat)
		}
	}
	return names
}
