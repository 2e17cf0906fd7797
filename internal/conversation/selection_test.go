package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		message string
		count   int
		want    []int
		none    bool
	}{
		{"all of them", "all of them please", 3, []int{0, 1, 2}, false},
		{"uppercase all", "ALL", 2, []int{0, 1}, false},
		{"none", "none of these", 3, nil, true},
		{"single number", "let's go with 2", 3, []int{1}, false},
		{"several numbers", "1, 3 and 4", 5, []int{0, 2, 3}, false},
		{"jobs phrasing", "jobs 1 and 3", 3, []int{0, 2}, false},
		{"out of range clamped", "I'll take 7", 3, nil, false},
		{"mixed in and out of range", "2 and 9", 3, []int{1}, false},
		{"zero rejected", "0", 3, nil, false},
		{"not understood", "hmm let me think", 3, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, none := parseSelection(tt.message, tt.count)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.none, none)
		})
	}
}

func TestParseSelectionAllWinsOverNumbers(t *testing.T) {
	got, none := parseSelection("all 3 of them", 3)
	assert.False(t, none)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestReplyClassifiers(t *testing.T) {
	assert.True(t, isApproval("Looks good, send it!"))
	assert.True(t, isApproval("yes"))
	assert.True(t, isApproval("okay"))
	assert.True(t, isApproval("perfect"))
	assert.False(t, isApproval("make it shorter"))
	// Phrases only match whole words: feedback mentioning "broken" or
	// "token" must not read as an "ok".
	assert.False(t, isApproval("the second paragraph is broken"))
	assert.False(t, isApproval("that token count feels off"))

	assert.True(t, isSkip("skip this one"))
	assert.True(t, isSkip("pass"))
	assert.False(t, isSkip("approve"))
	assert.False(t, isSkip("the passage about scaling is weak"))

	assert.True(t, isAffirmative("sure, go ahead"))
	assert.True(t, isAffirmative("Yes please"))
	assert.False(t, isAffirmative("no thanks"))
	assert.False(t, isAffirmative("yesterday was fine"))
}
