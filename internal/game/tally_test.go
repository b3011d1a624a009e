package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally(t *testing.T) {
	tests := []struct {
		name       string
		votes      map[string]string
		max        int
		candidates []string
		unique     string
	}{
		{
			name:       "unique leader",
			votes:      map[string]string{"a": "b", "c": "b", "d": "a"},
			max:        2,
			candidates: []string{"b"},
			unique:     "b",
		},
		{
			name:       "two-way tie",
			votes:      map[string]string{"a": "b", "c": "d"},
			max:        1,
			candidates: []string{"b", "d"},
		},
		{
			name:  "no votes",
			votes: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Tally(tt.votes)

			assert.Equal(t, tt.max, res.Max)
			assert.Equal(t, tt.candidates, res.Candidates)

			got, ok := res.Unique()
			assert.Equal(t, tt.unique != "", ok)
			assert.Equal(t, tt.unique, got)
		})
	}
}

func TestTally_CountsEveryTarget(t *testing.T) {
	res := Tally(map[string]string{"a": "c", "b": "c", "c": "a", "d": "b"})

	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 2}, res.Counts)
}
