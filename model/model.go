package model

import (
	"context"
	"fmt"
	"math"
)

// Classifier 是录取判定的最小抽象：输入一批特征向量，输出等长、同序的布尔判定。
// true 表示预测录取。实现必须在构建后只读，可被并发调用。
// 具体实现可以是本地模型（LR / Forest / CEL 规则）或远程 RPC 模型服务。
type Classifier interface {
	Name() string
	PredictBatch(ctx context.Context, vectors [][]float64) ([]bool, error)
}

// DefaultThreshold 是概率型模型判定为录取的默认阈值。
const DefaultThreshold = 0.5

// CheckThreshold 校验概率阈值在 [0, 1] 内。0 表示全部判定为录取，是合法配置。
func CheckThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("threshold %v out of range [0, 1]", t)
	}
	return nil
}

// thresholdOrDefault 处理模型文件中可选的 threshold 字段：缺省时取 DefaultThreshold。
func thresholdOrDefault(t *float64) (float64, error) {
	if t == nil {
		return DefaultThreshold, nil
	}
	if err := CheckThreshold(*t); err != nil {
		return 0, err
	}
	return *t, nil
}
