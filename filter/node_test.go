package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cetmatch/core"
)

func testPool() *core.Pool {
	return core.NewPool([]core.Record{
		{Percentile: 90, College: "A", Branch: "Computer Science", Caste: "OPEN", Gender: "Male"},
		{Percentile: 85, College: "B", Branch: "Computer Science", Caste: "SC", Gender: "Female"},
		{Percentile: 70, College: "C", Branch: "Civil", Caste: "OPEN", Gender: "Male"},
		{Percentile: 95, College: "D", Branch: "computer science ", Caste: "open", Gender: "MALE"},
	})
}

func runCascade(t *testing.T, pool *core.Pool, q core.Query) ([]*core.Item, *core.MatchContext) {
	t.Helper()
	mctx := core.NewMatchContext("", q)
	node := &CascadeNode{Steps: DefaultSteps()}
	out, err := node.Process(context.Background(), mctx, core.ItemsFromPool(pool))
	require.NoError(t, err)
	return out, mctx
}

func TestCascadeNode_Steps(t *testing.T) {
	tests := []struct {
		name     string
		query    core.Query
		wantStep string
		want     []string
	}{
		{
			name:     "exact match is case and whitespace insensitive",
			query:    core.Query{Branch: "COMPUTER SCIENCE", Caste: " Open", Gender: "male"},
			wantStep: "exact",
			want:     []string{"A", "D"},
		},
		{
			name:     "relax to branch only",
			query:    core.Query{Branch: "Computer Science", Caste: "ST", Gender: "Male"},
			wantStep: "branch",
			want:     []string{"A", "B", "D"},
		},
		{
			name:     "relax to whole pool",
			query:    core.Query{Branch: "Aerospace", Caste: "OPEN", Gender: "Male"},
			wantStep: StepAll,
			want:     []string{"A", "B", "C", "D"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, mctx := runCascade(t, testPool(), tt.query)
			assert.Equal(t, tt.want, core.Colleges(out))

			lbl, ok := mctx.GetLabel("filter_step")
			require.True(t, ok)
			assert.Equal(t, tt.wantStep, lbl.Value)
			assert.Equal(t, len(tt.want), mctx.Stats.Subset)
		})
	}
}

func TestCascadeNode_DoesNotMutateInput(t *testing.T) {
	pool := testPool()
	items := core.ItemsFromPool(pool)
	before := core.Colleges(items)

	node := &CascadeNode{Steps: DefaultSteps()}
	mctx := core.NewMatchContext("", core.Query{Branch: "Civil", Caste: "OPEN", Gender: "Male"})
	out, err := node.Process(context.Background(), mctx, items)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, before, core.Colleges(items))
	assert.Equal(t, 4, pool.Len())
}

func TestCascadeNode_EmptyInput(t *testing.T) {
	node := &CascadeNode{Steps: DefaultSteps()}
	out, err := node.Process(context.Background(), core.NewMatchContext("", core.Query{}), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
