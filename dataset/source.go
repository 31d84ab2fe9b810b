// Package dataset 加载历史录取记录，构建只读的候选池。
//
// 支持的数据源：
//   - CSVSource：本地 CSV 文件（按候选路径顺序取第一个存在的文件）
//   - SQLiteSource：SQLite 表
//
// 必需列：Percentile, College_Name, Branch_Name, Caste, Gender。
// 缺列是 DATA 错误；缺字段或 percentile 无法解析的行会被丢弃并记录在 Report 中，
// 不会把缺失的 percentile 当作 0。
package dataset

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/rushteam/cetmatch/core"
)

// 数据集列名
const (
	ColPercentile = "Percentile"
	ColCollege    = "College_Name"
	ColBranch     = "Branch_Name"
	ColCaste      = "Caste"
	ColGender     = "Gender"
)

// RequiredColumns 是构建记录必需的列
var RequiredColumns = []string{ColPercentile, ColCollege, ColBranch, ColCaste, ColGender}

// maxIssues 限制 Report 中保留的逐行问题数量
const maxIssues = 50

// Source 是候选池数据源。
type Source interface {
	// Name 返回数据源描述（用于日志）
	Name() string
	// Load 读取全部记录并构建候选池
	Load(ctx context.Context) (*core.Pool, *Report, error)
}

// Report 是一次加载的统计信息。
type Report struct {
	Source  string
	Rows    int   // 读取的数据行数
	Loaded  int   // 进入候选池的记录数
	Dropped int   // 被丢弃的行数
	Issues  error // 被丢弃行的原因（*multierror.Error，最多保留 maxIssues 条）
}

func (r *Report) drop(row int, err error) {
	r.Dropped++
	if r.Dropped <= maxIssues {
		r.Issues = multierror.Append(r.Issues, fmt.Errorf("row %d: %w", row, err))
	}
}

// buildRecord 校验并构建一条记录；类别字段保留原始取值。
func buildRecord(percentile, college, branch, caste, gender string) (core.Record, error) {
	for _, f := range []struct{ name, value string }{
		{ColCollege, college},
		{ColBranch, branch},
		{ColCaste, caste},
		{ColGender, gender},
	} {
		if strings.TrimSpace(f.value) == "" {
			return core.Record{}, fmt.Errorf("missing %s", f.name)
		}
	}

	raw := strings.TrimSpace(percentile)
	if raw == "" {
		return core.Record{}, fmt.Errorf("missing %s", ColPercentile)
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return core.Record{}, fmt.Errorf("invalid %s %q", ColPercentile, raw)
	}

	return core.Record{
		Percentile: p,
		College:    college,
		Branch:     branch,
		Caste:      caste,
		Gender:     gender,
	}, nil
}
