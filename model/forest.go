package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// TreeNode 是决策树中的一个节点。
// Feature < 0 表示叶子节点，Value 为叶子上“录取”的概率。
// 非叶子节点：x[Feature] <= Threshold 走 Left，否则走 Right（Left/Right 为节点下标）。
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree 是一棵以数组存储的二叉决策树，根节点为下标 0。
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// ForestClassifier 是随机森林分类器：对所有树的叶子概率取平均，
// 平均概率 >= Threshold 判定为录取。
type ForestClassifier struct {
	Trees     []Tree
	Threshold float64
}

// LoadForestClassifier 从 JSON 文件加载森林。
// 格式：{"threshold": 0.5, "trees": [{"nodes": [...]}, ...]}
func LoadForestClassifier(path string) (*ForestClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Threshold *float64 `json:"threshold"`
		Trees     []Tree   `json:"trees"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse forest model: %w", err)
	}
	threshold, err := thresholdOrDefault(raw.Threshold)
	if err != nil {
		return nil, fmt.Errorf("forest model: %w", err)
	}
	return NewForestClassifier(raw.Trees, threshold)
}

// NewForestClassifier 校验树结构与阈值并创建分类器，threshold 按原值使用。
func NewForestClassifier(trees []Tree, threshold float64) (*ForestClassifier, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	for ti, t := range trees {
		if len(t.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.Feature < 0 {
				continue
			}
			// 子节点必须在当前节点之后，保证遍历一定终止
			if n.Left <= ni || n.Left >= len(t.Nodes) || n.Right <= ni || n.Right >= len(t.Nodes) {
				return nil, fmt.Errorf("tree %d node %d: invalid children (%d, %d)", ti, ni, n.Left, n.Right)
			}
		}
	}
	if err := CheckThreshold(threshold); err != nil {
		return nil, err
	}
	return &ForestClassifier{Trees: trees, Threshold: threshold}, nil
}

func (m *ForestClassifier) Name() string { return "forest" }

func (t *Tree) predict(x []float64) (float64, error) {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value, nil
		}
		if n.Feature >= len(x) {
			return 0, fmt.Errorf("split on feature %d, vector width %d", n.Feature, len(x))
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Probability 返回单个向量的平均录取概率。
func (m *ForestClassifier) Probability(x []float64) (float64, error) {
	var sum float64
	for ti := range m.Trees {
		p, err := m.Trees[ti].predict(x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", ti, err)
		}
		sum += p
	}
	return sum / float64(len(m.Trees)), nil
}

func (m *ForestClassifier) PredictBatch(ctx context.Context, vectors [][]float64) ([]bool, error) {
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
