package model

import (
	"context"
	"fmt"

	"github.com/rushteam/cetmatch/pkg/dsl"
)

// RuleClassifier 用 CEL 表达式做录取判定，表达式在构建时编译一次。
// 适合没有训练好的模型时的开发/回归环境，例如 `percentile >= 90.0`。
type RuleClassifier struct {
	program *dsl.Program
}

func NewRuleClassifier(expr string) (*RuleClassifier, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", expr, err)
	}
	return &RuleClassifier{program: prg}, nil
}

func (m *RuleClassifier) Name() string { return "rule" }

// Expression 返回规则表达式
func (m *RuleClassifier) Expression() string { return m.program.String() }

func (m *RuleClassifier) PredictBatch(ctx context.Context, vectors [][]float64) ([]bool, error) {
	out := make([]bool, len(vectors))
	for i, x := range vectors {
		ok, err := m.program.Evaluate(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = ok
	}
	return out, nil
}
