package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCClassifier_Decode(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want []bool
	}{
		{"bools", "", `{"predictions": [true, false]}`, []bool{true, false}},
		{"labels", "", `{"predictions": [1, 0]}`, []bool{true, false}},
		{"probabilities", "", `{"predictions": [0.7, 0.49]}`, []bool{true, false}},
		{"class probabilities", "", `{"predictions": [[0.2, 0.8], [0.9, 0.1]]}`, []bool{true, false}},
		{"nested path", "outputs.admit", `{"outputs": {"admit": [0, 1]}}`, []bool{false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			m := NewRPCClassifier("", srv.URL, time.Second, WithRPCResponsePath(tt.path))
			got, err := m.PredictBatch(context.Background(), [][]float64{{1}, {2}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRPCClassifier_Request(t *testing.T) {
	var got struct {
		Instances [][]float64 `json:"instances"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"predictions": [true]}`))
	}))
	defer srv.Close()

	m := NewRPCClassifier("xgb", srv.URL, time.Second)
	assert.Equal(t, "xgb", m.Name())
	_, err := m.PredictBatch(context.Background(), [][]float64{{96.5, 1, 0}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{96.5, 1, 0}}, got.Instances)
}

func TestRPCClassifier_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"predictions": [1]}`))
	}))
	defer srv.Close()

	m := NewRPCClassifier("", srv.URL, time.Second, WithRPCRetryDelay(time.Millisecond))
	got, err := m.PredictBatch(context.Background(), [][]float64{{1}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRPCClassifier_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	m := NewRPCClassifier("", srv.URL, time.Second, WithRPCRetryDelay(time.Millisecond))
	_, err := m.PredictBatch(context.Background(), [][]float64{{1}})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRPCClassifier_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions": [1]}`))
	}))
	defer srv.Close()

	m := NewRPCClassifier("", srv.URL, time.Second)
	_, err := m.PredictBatch(context.Background(), [][]float64{{1}, {2}})
	assert.Error(t, err)
}

func TestRPCClassifier_EmptyBatch(t *testing.T) {
	m := NewRPCClassifier("", "http://127.0.0.1:0", time.Second)
	got, err := m.PredictBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
