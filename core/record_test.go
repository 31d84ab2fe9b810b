package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_NormalizesAndCopies(t *testing.T) {
	src := []Record{
		{Percentile: 90, College: "A", Branch: " Computer Science", Caste: "OPEN ", Gender: "Male"},
		{Percentile: 80, College: "B", Branch: "Civil", Caste: "SC", Gender: "Female"},
	}
	p := NewPool(src)
	require.Equal(t, 2, p.Len())

	r := p.At(0)
	assert.Equal(t, "computer science", r.BranchKey)
	assert.Equal(t, "open", r.CasteKey)
	assert.Equal(t, "male", r.GenderKey)
	// 原始取值保留
	assert.Equal(t, " Computer Science", r.Branch)

	src[0].College = "changed"
	assert.Equal(t, "A", p.At(0).College)
}

func TestPool_RecordsReturnsNewSlice(t *testing.T) {
	p := NewPool([]Record{{College: "A"}, {College: "B"}})
	recs := p.Records()
	recs[0], recs[1] = recs[1], recs[0]
	assert.Equal(t, "A", p.At(0).College)
}

func TestPool_Nil(t *testing.T) {
	var p *Pool
	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.Records())
}

func TestColleges_KeepsDuplicatesAndOrder(t *testing.T) {
	p := NewPool([]Record{{College: "X"}, {College: "Y"}, {College: "X"}})
	items := ItemsFromPool(p)
	assert.Equal(t, []string{"X", "Y", "X"}, Colleges(items))
	assert.Equal(t, 2, items[2].Index)
}
