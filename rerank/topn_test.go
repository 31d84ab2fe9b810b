package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cetmatch/core"
)

func TestTopNNode(t *testing.T) {
	pool := core.NewPool([]core.Record{{College: "A"}, {College: "B"}, {College: "C"}})

	tests := []struct {
		name  string
		n     int
		limit int
		want  []string
	}{
		{"query limit", 0, 2, []string{"A", "B"}},
		{"limit larger than input", 0, 10, []string{"A", "B", "C"}},
		{"fixed n overrides query", 1, 3, []string{"A"}},
		{"negative n keeps all", -1, 1, []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mctx := core.NewMatchContext("", core.Query{Limit: tt.limit})
			out, err := (&TopNNode{N: tt.n}).Process(context.Background(), mctx, core.ItemsFromPool(pool))
			require.NoError(t, err)
			assert.Equal(t, tt.want, core.Colleges(out))
		})
	}
}
