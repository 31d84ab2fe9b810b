package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/tidwall/gjson"
)

// RPCClassifier 是通过 HTTP 调用外部模型服务的 Classifier 实现。
// 适配 sklearn/xgboost 包装服务、TF Serving、KServe 等返回批量预测的接口。
//
// 请求格式（JSON）：
//
//	{"instances": [[96.0, 1, 0, ...], ...]}
//
// 响应中 ResponsePath 指向的数组逐行给出判定，元素可以是：
//   - bool：直接作为判定
//   - number：>= Threshold 判定为录取（0/1 标签或概率均可）
//   - array：视为各类别概率，取最后一个（正类）与 Threshold 比较
type RPCClassifier struct {
	name         string
	Endpoint     string // 例如 "http://127.0.0.1:5000/predict"
	Timeout      time.Duration
	Attempts     uint
	RetryDelay   time.Duration
	ResponsePath string // gjson 路径，默认 "predictions"
	Threshold    float64
	Client       *http.Client
}

// RPCOption 配置 RPCClassifier
type RPCOption func(*RPCClassifier)

// WithRPCAttempts 设置最大尝试次数（含首次）
func WithRPCAttempts(n uint) RPCOption {
	return func(m *RPCClassifier) {
		if n > 0 {
			m.Attempts = n
		}
	}
}

// WithRPCRetryDelay 设置重试间隔
func WithRPCRetryDelay(d time.Duration) RPCOption {
	return func(m *RPCClassifier) { m.RetryDelay = d }
}

// WithRPCResponsePath 设置响应中预测数组的 gjson 路径
func WithRPCResponsePath(path string) RPCOption {
	return func(m *RPCClassifier) {
		if path != "" {
			m.ResponsePath = path
		}
	}
}

// WithRPCThreshold 设置数值型预测的录取阈值，0 表示任何数值预测都判定为录取
func WithRPCThreshold(t float64) RPCOption {
	return func(m *RPCClassifier) { m.Threshold = t }
}

// WithRPCHTTPClient 替换 HTTP 客户端
func WithRPCHTTPClient(c *http.Client) RPCOption {
	return func(m *RPCClassifier) { m.Client = c }
}

func NewRPCClassifier(name, endpoint string, timeout time.Duration, opts ...RPCOption) *RPCClassifier {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if name == "" {
		name = "rpc"
	}
	m := &RPCClassifier{
		name:         name,
		Endpoint:     endpoint,
		Timeout:      timeout,
		Attempts:     3,
		RetryDelay:   100 * time.Millisecond,
		ResponsePath: "predictions",
		Threshold:    DefaultThreshold,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *RPCClassifier) Name() string {
	return m.name
}

// PredictBatch 调用远程模型服务进行批量预测，网络错误与 5xx 会按配置重试。
func (m *RPCClassifier) PredictBatch(ctx context.Context, vectors [][]float64) ([]bool, error) {
	if len(vectors) == 0 {
		return []bool{}, nil
	}

	jsonData, err := json.Marshal(map[string]any{"instances": vectors})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var body []byte
	err = retry.Do(
		func() error {
			b, err := m.call(ctx, jsonData)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(m.Attempts),
		retry.Delay(m.RetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	return m.decode(body, len(vectors))
}

func (m *RPCClassifier) call(ctx context.Context, payload []byte) ([]byte, error) {
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: m.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(body))
		if resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, retry.Unrecoverable(err)
	}
	return body, nil
}

func (m *RPCClassifier) decode(body []byte, want int) ([]bool, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode response: invalid json")
	}
	result := gjson.GetBytes(body, m.ResponsePath)
	if !result.IsArray() {
		return nil, fmt.Errorf("decode response: %q is not an array", m.ResponsePath)
	}

	rows := result.Array()
	if len(rows) != want {
		return nil, fmt.Errorf("response predictions count mismatch: expected %d, got %d", want, len(rows))
	}

	out := make([]bool, len(rows))
	for i, r := range rows {
		v, err := m.verdict(r)
		if err != nil {
			return nil, fmt.Errorf("decode row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (m *RPCClassifier) verdict(r gjson.Result) (bool, error) {
	switch {
	case r.Type == gjson.True || r.Type == gjson.False:
		return r.Bool(), nil
	case r.Type == gjson.Number:
		return r.Float() >= m.Threshold, nil
	case r.IsArray():
		probs := r.Array()
		if len(probs) == 0 {
			return false, fmt.Errorf("empty probability row")
		}
		last := probs[len(probs)-1]
		if last.Type != gjson.Number {
			return false, fmt.Errorf("probability is not a number: %s", last.Raw)
		}
		return last.Float() >= m.Threshold, nil
	default:
		return false, fmt.Errorf("unsupported prediction %s", r.Raw)
	}
}
