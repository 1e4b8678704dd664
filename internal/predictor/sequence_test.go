package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosestSubsequence(t *testing.T) {
	testCases := []struct {
		name      string
		text      []int
		pattern   []int
		wantStart int
		wantLen   int
	}{
		{
			name:      "full match",
			text:      []int{1, 2, 3, 1, 2, 3},
			pattern:   []int{2, 3},
			wantStart: 4,
			wantLen:   2,
		},
		{
			name:      "partial match wins over none",
			text:      []int{1, 2, 3, 1, 2, 3},
			pattern:   []int{3, 2},
			wantStart: 5,
			wantLen:   1,
		},
		{
			name:      "prefers later occurrence",
			text:      []int{1, 2, 1, 2},
			pattern:   []int{1, 2},
			wantStart: 2,
			wantLen:   2,
		},
		{
			name:      "no match",
			text:      []int{1, 2, 3},
			pattern:   []int{9},
			wantStart: -1,
			wantLen:   0,
		},
		{
			name:      "empty pattern",
			text:      []int{1, 2, 3},
			pattern:   nil,
			wantStart: -1,
			wantLen:   0,
		},
		{
			name:      "empty text",
			text:      nil,
			pattern:   []int{1},
			wantStart: -1,
			wantLen:   0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			start, matchLen := closestSubsequence(tc.text, tc.pattern)
			assert.Equal(t, tc.wantStart, start)
			assert.Equal(t, tc.wantLen, matchLen)
		})
	}
}

func TestNextInSequence(t *testing.T) {
	plan := []int{1, 2, 3}

	testCases := []struct {
		name    string
		pattern []int
		want    int
	}{
		{name: "empty history starts the plan", pattern: nil, want: 1},
		{name: "mid cycle", pattern: []int{1, 2}, want: 3},
		{name: "wraps around", pattern: []int{1, 2, 3}, want: 1},
		{name: "longer than one cycle", pattern: []int{1, 2, 3, 1, 2}, want: 3},
		{name: "noisy history still follows the plan", pattern: []int{2, 1, 2}, want: 3},
		{name: "single element", pattern: []int{3}, want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, nextInSequence(plan, tc.pattern))
		})
	}
}

func TestNextInSequence_successorGuard(t *testing.T) {
	// a plan with a duplicated element: successors of 2 are 3 and 1
	plan := []int{1, 2, 3, 2}

	next := nextInSequence(plan, []int{1, 2})
	assert.Contains(t, []int{3, 1}, next)

	// out-of-plan prediction gets substituted with a direct successor
	next = nextInSequence(plan, []int{3, 2})
	assert.Contains(t, []int{3, 1}, next)
}

func TestNextInSequence_deterministic(t *testing.T) {
	plan := []int{4, 7, 9}
	pattern := []int{7, 9, 4}

	first := nextInSequence(plan, pattern)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, nextInSequence(plan, pattern))
	}
}

func TestFilterToPlan(t *testing.T) {
	assert.Equal(t, []int{1, 3, 1}, filterToPlan([]int{1, 5, 3, 8, 1}, []int{1, 2, 3}))
	assert.Nil(t, filterToPlan([]int{5, 8}, []int{1, 2, 3}))
}
