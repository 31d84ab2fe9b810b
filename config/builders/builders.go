// Package builders 在 init 中注册内置分类器构建器。
package builders

import (
	"fmt"
	"math"
	"time"

	"github.com/rushteam/cetmatch/config"
	"github.com/rushteam/cetmatch/model"
	"github.com/rushteam/cetmatch/pkg/conv"
)

// DefaultModelPath 是未配置 path 时本地模型文件的位置
const DefaultModelPath = "models/cet_model.json"

func init() {
	config.Register("lr", BuildLR)
	config.Register("forest", BuildForest)
	config.Register("rule", BuildRule)
	config.Register("rpc", BuildRPC)
}

func BuildLR(params map[string]any) (model.Classifier, error) {
	path := conv.String(params, "path", DefaultModelPath)
	m, err := model.LoadLRClassifier(path)
	if err != nil {
		return nil, fmt.Errorf("load lr model %s: %w", path, err)
	}
	if err := overrideThreshold(params, &m.Threshold); err != nil {
		return nil, err
	}
	return m, nil
}

func BuildForest(params map[string]any) (model.Classifier, error) {
	path := conv.String(params, "path", DefaultModelPath)
	m, err := model.LoadForestClassifier(path)
	if err != nil {
		return nil, fmt.Errorf("load forest model %s: %w", path, err)
	}
	if err := overrideThreshold(params, &m.Threshold); err != nil {
		return nil, err
	}
	return m, nil
}

func BuildRule(params map[string]any) (model.Classifier, error) {
	expr := conv.String(params, "expression", "")
	if expr == "" {
		return nil, fmt.Errorf("expression not found")
	}
	return model.NewRuleClassifier(expr)
}

func BuildRPC(params map[string]any) (model.Classifier, error) {
	endpoint := conv.String(params, "endpoint", "")
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint not found")
	}
	// timeout 纯数字按秒计，retry_delay 纯数字按毫秒计
	timeout := conv.Duration(params, "timeout", time.Second, 10*time.Second)
	threshold := model.DefaultThreshold
	if err := overrideThreshold(params, &threshold); err != nil {
		return nil, err
	}
	opts := []model.RPCOption{
		model.WithRPCResponsePath(conv.String(params, "response_path", "")),
		model.WithRPCThreshold(threshold),
	}
	if n := conv.Int64(params, "attempts", 0); n > 0 {
		opts = append(opts, model.WithRPCAttempts(uint(n)))
	}
	if d := conv.Duration(params, "retry_delay", time.Millisecond, -1); d >= 0 {
		opts = append(opts, model.WithRPCRetryDelay(d))
	}
	name := conv.String(params, "name", "rpc")
	return model.NewRPCClassifier(name, endpoint, timeout, opts...), nil
}

// overrideThreshold 在 params 显式给出 threshold 时覆盖 *dst，包括 0。
func overrideThreshold(params map[string]any, dst *float64) error {
	if _, ok := params["threshold"]; !ok {
		return nil
	}
	t := conv.Float64(params, "threshold", math.NaN())
	if err := model.CheckThreshold(t); err != nil {
		return err
	}
	*dst = t
	return nil
}
