// Package dsl 提供基于 CEL (Common Expression Language) 的判定表达式，
// 用于以规则形式描述录取判定（例如开发/回归环境中替代训练好的模型）。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("percentile", cel.DoubleType),
		cel.Variable("x", cel.ListType(cel.DoubleType)),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的判定表达式，编译一次、并发安全、可多次求值。
//
// 可用变量：
//   - percentile：特征向量第 0 维（考生分位）
//   - x：完整特征向量 [percentile, one-hot...]
//
// 示例：
//   - `percentile >= 90.0`
//   - `percentile >= 85.0 && x[1] == 1.0`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，表达式必须返回布尔值。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("expression must return bool, got %v", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式
func (p *Program) String() string { return p.expr }

// Evaluate 对一个特征向量求值。
func (p *Program) Evaluate(vec []float64) (bool, error) {
	if len(vec) == 0 {
		return false, fmt.Errorf("empty feature vector")
	}

	out, _, err := p.prg.Eval(map[string]any{
		"percentile": vec[0],
		"x":          vec,
	})
	if err != nil {
		// 越界访问 x[i] 等运行期错误
		return false, fmt.Errorf("eval error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}
