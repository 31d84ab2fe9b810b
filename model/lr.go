package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// LRClassifier 实现了逻辑回归 (Logistic Regression) 二分类器。
//
// 预测原理：
// 1. 线性加权求和: z = Bias + sum(Weight_i * x_i)
// 2. Sigmoid 变换: P = 1 / (1 + exp(-z))
// 3. P >= Threshold 判定为录取
//
// Weights 的长度必须与特征向量一致（1 + one-hot 宽度）。
type LRClassifier struct {
	Bias      float64   // 偏置项 (Bias / Intercept)
	Weights   []float64 // 特征权重，按向量维度顺序
	Threshold float64
}

// LoadLRClassifier 从 JSON 文件加载模型。
// 格式：{"bias": -3.2, "weights": [0.05, ...], "threshold": 0.5}，threshold 缺省为 DefaultThreshold。
func LoadLRClassifier(path string) (*LRClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Bias      float64   `json:"bias"`
		Weights   []float64 `json:"weights"`
		Threshold *float64  `json:"threshold"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse lr model: %w", err)
	}
	if len(raw.Weights) == 0 {
		return nil, fmt.Errorf("lr model has no weights")
	}
	threshold, err := thresholdOrDefault(raw.Threshold)
	if err != nil {
		return nil, fmt.Errorf("lr model: %w", err)
	}
	return &LRClassifier{Bias: raw.Bias, Weights: raw.Weights, Threshold: threshold}, nil
}

func (m *LRClassifier) Name() string { return "lr" }

// Probability 返回单个向量的录取概率。
func (m *LRClassifier) Probability(x []float64) (float64, error) {
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("feature width %d, model expects %d", len(x), len(m.Weights))
	}
	z := m.Bias
	for i, v := range x {
		z += m.Weights[i] * v
	}
	return 1 / (1 + math.Exp(-z)), nil
}

func (m *LRClassifier) PredictBatch(ctx context.Context, vectors [][]float64) ([]bool, error) {
	out := make([]bool, len(vectors))
	for i, x := range vectors {
		p, err := m.Probability(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = p >= m.Threshold
	}
	return out, nil
}
