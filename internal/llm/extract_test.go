package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prefs struct {
	Position string `json:"position"`
	City     string `json:"city"`
}

func TestExtractObjectFencedBlock(t *testing.T) {
	reply := "Sure! Here is the extracted data:\n```json\n{\"position\": \"software engineer\", \"city\": \"New York\"}\n```\nLet me know if you need anything else."

	var p prefs
	require.NoError(t, ExtractObject(reply, &p))
	assert.Equal(t, "software engineer", p.Position)
	assert.Equal(t, "New York", p.City)
}

func TestExtractObjectEmbeddedInProse(t *testing.T) {
	reply := `Based on the message, the user wants {"position": "data scientist"} as far as I can tell.`

	var p prefs
	require.NoError(t, ExtractObject(reply, &p))
	assert.Equal(t, "data scientist", p.Position)
}

func TestExtractObjectBareJSON(t *testing.T) {
	var p prefs
	require.NoError(t, ExtractObject(`  {"city": "Berlin"}  `, &p))
	assert.Equal(t, "Berlin", p.City)
}

func TestExtractObjectBracesInsideStrings(t *testing.T) {
	reply := `{"position": "engineer {backend}", "city": "SF"}`

	var p prefs
	require.NoError(t, ExtractObject(reply, &p))
	assert.Equal(t, "engineer {backend}", p.Position)
}

func TestExtractObjectNothingUsable(t *testing.T) {
	var p prefs
	err := ExtractObject("I could not determine any preferences from that message.", &p)
	assert.ErrorIs(t, err, ErrNoObject)

	err = ExtractObject("{ this is { not json }", &p)
	assert.ErrorIs(t, err, ErrNoObject)
}
