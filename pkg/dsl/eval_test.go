package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		vec  []float64
		want bool
	}{
		{"percentile >= 90.0", []float64{92}, true},
		{"percentile >= 90.0", []float64{89.9}, false},
		{"percentile >= 85.0 && x[1] == 1.0", []float64{86, 1, 0}, true},
		{"size(x) == 3", []float64{1, 0, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			prg, err := Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, prg.String())

			got, err := prg.Evaluate(tt.vec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, expr := range []string{"", "percentile >=", "percentile * 2.0", "unknown > 1.0"} {
		_, err := Compile(expr)
		assert.Error(t, err, expr)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	prg, err := Compile("x[3] == 1.0")
	require.NoError(t, err)

	_, err = prg.Evaluate([]float64{1})
	assert.Error(t, err)

	_, err = prg.Evaluate(nil)
	assert.Error(t, err)
}
