package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/rushteam/cetmatch/core"
)

// DefaultTable 是 SQLite 中存放历史记录的默认表名
const DefaultTable = "cutoffs"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource 从 SQLite 表加载候选池，列名与 CSV 一致。
type SQLiteSource struct {
	DSN   string
	Table string
}

func NewSQLiteSource(dsn, table string) *SQLiteSource {
	if table == "" {
		table = DefaultTable
	}
	return &SQLiteSource{DSN: dsn, Table: table}
}

func (s *SQLiteSource) Name() string {
	return "sqlite:" + s.DSN + "#" + s.Table
}

func (s *SQLiteSource) Load(ctx context.Context) (*core.Pool, *Report, error) {
	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return nil, nil, core.NewDataError("dataset: open sqlite", err)
	}
	defer db.Close()

	pool, report, err := ReadTable(ctx, db, s.Table)
	if report != nil {
		report.Source = s.Name()
	}
	return pool, report, err
}

// ReadTable 从已打开的数据库读取表，按 rowid 保持插入顺序。
func ReadTable(ctx context.Context, db *sql.DB, table string) (*core.Pool, *Report, error) {
	if !identRe.MatchString(table) {
		return nil, nil, core.NewDataError(fmt.Sprintf("dataset: invalid table name %q", table), nil)
	}

	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s FROM %s ORDER BY rowid`,
		ColPercentile, ColCollege, ColBranch, ColCaste, ColGender, table,
	)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, core.NewDataError("dataset: query "+table, err)
	}
	defer rows.Close()

	report := &Report{}
	records := make([]core.Record, 0)
	for rows.Next() {
		report.Rows++
		var pct, college, branch, caste, gender sql.NullString
		if err := rows.Scan(&pct, &college, &branch, &caste, &gender); err != nil {
			report.drop(report.Rows, err)
			continue
		}
		rec, err := buildRecord(pct.String, college.String, branch.String, caste.String, gender.String)
		if err != nil {
			report.drop(report.Rows, err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, core.NewDataError("dataset: iterate "+table, err)
	}

	report.Loaded = len(records)
	return core.NewPool(records), report, nil
}
