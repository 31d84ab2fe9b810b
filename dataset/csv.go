package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rushteam/cetmatch/core"
)

// DefaultCSVPaths 是默认的候选数据文件，按顺序取第一个存在的。
var DefaultCSVPaths = []string{
	"data/cet_predictor_database_cleaned.csv",
	"data/colleges.csv",
}

// CSVSource 从本地 CSV 文件加载候选池。
type CSVSource struct {
	Paths []string
}

func NewCSVSource(paths ...string) *CSVSource {
	if len(paths) == 0 {
		paths = DefaultCSVPaths
	}
	return &CSVSource{Paths: paths}
}

func (s *CSVSource) Name() string {
	return "csv:" + strings.Join(s.Paths, ",")
}

// Resolve 返回第一个存在的文件路径。
func (s *CSVSource) Resolve() (string, error) {
	for _, p := range s.Paths {
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", core.NewDataError("dataset: stat "+p, err)
		}
	}
	return "", core.NewDataError(fmt.Sprintf("dataset: none of %v exists", s.Paths), nil)
}

func (s *CSVSource) Load(ctx context.Context) (*core.Pool, *Report, error) {
	path, err := s.Resolve()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, core.NewDataError("dataset: open "+path, err)
	}
	defer f.Close()

	pool, report, err := ReadCSV(ctx, f)
	if report != nil {
		report.Source = path
	}
	return pool, report, err
}

// ReadCSV 从 reader 读取带表头的 CSV。
func ReadCSV(ctx context.Context, r io.Reader) (*core.Pool, *Report, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, core.NewDataError("dataset: empty csv, no header", nil)
		}
		return nil, nil, core.NewDataError("dataset: read header", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{}
	records := make([]core.Record, 0)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.Rows++
				report.drop(line, err)
				continue
			}
			return nil, nil, core.NewDataError("dataset: read csv", err)
		}
		report.Rows++

		get := func(col string) string {
			i := cols[col]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}
		rec, err := buildRecord(get(ColPercentile), get(ColCollege), get(ColBranch), get(ColCaste), get(ColGender))
		if err != nil {
			report.drop(line, err)
			continue
		}
		records = append(records, rec)
	}

	report.Loaded = len(records)
	return core.NewPool(records), report, nil
}

func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := cols[name]; !ok {
			cols[name] = i
		}
	}
	missing := make([]string, 0)
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, core.NewDataError(fmt.Sprintf("dataset: missing required columns %v", missing), nil)
	}
	return cols, nil
}
