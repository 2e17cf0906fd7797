package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		input string
		want  Stage
		ok    bool
	}{
		{"profile_collection", StageProfileCollection, true},
		{"job_review", StageJobReview, true},
		{"networking_message_review", StageNetworkingMsgReview, true},
		{"complete", StageComplete, true},
		{"", InitialStage, false},
		{"Job_Review", InitialStage, false},
		{"totally_made_up", InitialStage, false},
	}
	for _, tt := range tests {
		got, ok := ParseStage(tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
	}
}

func TestCurrentJobFollowsApprovals(t *testing.T) {
	state := &ConversationState{
		SelectedJobs:    []string{"a", "b", "c"},
		ApprovedLetters: map[string]string{},
	}

	id, ok := state.CurrentJob()
	assert.True(t, ok)
	assert.Equal(t, "a", id)

	state.ApprovedLetters["a"] = "letter"
	id, ok = state.CurrentJob()
	assert.True(t, ok)
	assert.Equal(t, "b", id)

	state.ApprovedLetters["b"] = "letter"
	state.ApprovedLetters["c"] = "letter"
	_, ok = state.CurrentJob()
	assert.False(t, ok)
}

func TestDropCurrentJob(t *testing.T) {
	state := &ConversationState{
		SelectedJobs:    []string{"a", "b", "c"},
		ApprovedLetters: map[string]string{"a": "letter"},
	}

	// Pointer is on "b"; dropping removes it and moves on to "c".
	state.DropCurrentJob()
	assert.Equal(t, []string{"a", "c"}, state.SelectedJobs)

	id, ok := state.CurrentJob()
	assert.True(t, ok)
	assert.Equal(t, "c", id)

	state.DropCurrentJob()
	_, ok = state.CurrentJob()
	assert.False(t, ok)

	// Dropping past the end is a no-op.
	state.DropCurrentJob()
	assert.Equal(t, []string{"a"}, state.SelectedJobs)
}

func TestMissingPreferencesOrder(t *testing.T) {
	p := &Profile{}
	assert.Equal(t, []string{FieldDesiredPosition, FieldLocations, FieldCurrentLocation}, p.MissingPreferences())
	assert.False(t, p.SearchReady())

	p.DesiredPosition = "software engineer"
	assert.Equal(t, []string{FieldLocations, FieldCurrentLocation}, p.MissingPreferences())

	p.Locations = []string{"Remote"}
	p.CurrentLocation = "New York"
	assert.Empty(t, p.MissingPreferences())
	assert.True(t, p.SearchReady())
}
