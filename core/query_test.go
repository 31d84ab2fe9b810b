package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validQuery() Query {
	return Query{Percentile: 96, Branch: "Computer Science", Caste: "OPEN", Gender: "Male", Limit: 5}
}

func TestQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Query)
		wantErr bool
	}{
		{name: "valid", mutate: func(q *Query) {}},
		{name: "percentile zero", mutate: func(q *Query) { q.Percentile = 0 }},
		{name: "percentile hundred", mutate: func(q *Query) { q.Percentile = 100 }},
		{name: "percentile negative", mutate: func(q *Query) { q.Percentile = -0.1 }, wantErr: true},
		{name: "percentile above hundred", mutate: func(q *Query) { q.Percentile = 100.5 }, wantErr: true},
		{name: "limit zero", mutate: func(q *Query) { q.Limit = 0 }, wantErr: true},
		{name: "limit too large", mutate: func(q *Query) { q.Limit = 101 }, wantErr: true},
		{name: "limit max", mutate: func(q *Query) { q.Limit = 100 }},
		{name: "missing branch", mutate: func(q *Query) { q.Branch = "" }, wantErr: true},
		{name: "missing caste", mutate: func(q *Query) { q.Caste = "" }, wantErr: true},
		{name: "missing gender", mutate: func(q *Query) { q.Gender = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuery()
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr {
				assert.True(t, IsInvalidInput(err), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestQuery_Normalize(t *testing.T) {
	q := Query{Branch: "  Computer SCIENCE ", Caste: "Open", Gender: "MALE"}
	n := q.Normalize()
	assert.Equal(t, Normalized{Branch: "computer science", Caste: "open", Gender: "male"}, n)
}

func TestQuery_CacheKey(t *testing.T) {
	a := validQuery()
	b := validQuery()
	b.Branch = " computer science "
	b.Gender = "MALE"
	assert.Equal(t, a.CacheKey(), b.CacheKey())

	c := validQuery()
	c.Limit = 3
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())

	d := validQuery()
	d.Percentile = 96.5
	assert.NotEqual(t, a.CacheKey(), d.CacheKey())
}
