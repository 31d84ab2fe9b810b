package core

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// DefaultLimit 是未指定 limit 时返回的学院数量。
const DefaultLimit = 5

// Query 是一次匹配请求的考生信息，请求内不可变。
type Query struct {
	Percentile float64 `json:"percentile" validate:"gte=0,lte=100"`
	Branch     string  `json:"branch" validate:"required"`
	Caste      string  `json:"caste" validate:"required"`
	Gender     string  `json:"gender" validate:"required"`
	Limit      int     `json:"top_n" validate:"gte=1,lte=100"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate 校验查询参数范围，失败时返回 INVALID_INPUT。
func (q Query) Validate() error {
	if err := getValidator().Struct(q); err != nil {
		return NewInvalidInputError("invalid query", err)
	}
	return nil
}

// Normalized 是查询中用于过滤的归一化字段。
type Normalized struct {
	Branch string
	Caste  string
	Gender string
}

// Normalize 返回查询的归一化字段。
func (q Query) Normalize() Normalized {
	return Normalized{
		Branch: NormalizeKey(q.Branch),
		Caste:  NormalizeKey(q.Caste),
		Gender: NormalizeKey(q.Gender),
	}
}

// CacheKey 返回决定匹配结果的全部输入组成的 key。
// 过滤只使用归一化字段，因此大小写/空白不同的查询共享同一个 key。
func (q Query) CacheKey() string {
	n := q.Normalize()
	return strings.Join([]string{
		strconv.FormatFloat(q.Percentile, 'g', -1, 64),
		n.Branch,
		n.Caste,
		n.Gender,
		strconv.Itoa(q.Limit),
	}, "|")
}

func (q Query) String() string {
	return fmt.Sprintf("percentile=%v branch=%q caste=%q gender=%q limit=%d",
		q.Percentile, q.Branch, q.Caste, q.Gender, q.Limit)
}
