package letters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobagent/internal/domain"
)

type promptCapturingCompleter struct {
	prompt string
	reply  string
}

func (c *promptCapturingCompleter) Complete(_ context.Context, prompt string, _ int) (string, error) {
	c.prompt = prompt
	return c.reply, nil
}

func testProfile() *domain.Profile {
	return &domain.Profile{
		Name:            "Jordan Doe",
		CurrentLocation: "New York",
		Skills:          []string{"Go", "SQL"},
		WorkExperience: []domain.WorkExperience{
			{Company: "Acme", Title: "Engineer", StartDate: "2020-01", EndDate: "Present", Description: "Built backend services", Highlights: []string{"Cut latency 40%"}},
		},
	}
}

func TestGeneratePrefersDetailedDescription(t *testing.T) {
	completer := &promptCapturingCompleter{reply: "  Dear Hiring Manager, ...  "}
	gen := NewGenerator(completer)

	app := &domain.JobApplication{
		JobTitle:            "Backend Engineer",
		Company:             "Veridian Labs",
		JobDescription:      "short search snippet",
		DetailedDescription: "full posting text",
		Requirements:        []string{"Go"},
	}

	letter, err := gen.Generate(context.Background(), testProfile(), app, "")
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager, ...", letter)

	assert.Contains(t, completer.prompt, "full posting text")
	assert.NotContains(t, completer.prompt, "short search snippet")
	assert.Contains(t, completer.prompt, "Requirements")
	assert.Contains(t, completer.prompt, "Cut latency 40%")
	assert.NotContains(t, completer.prompt, "PREVIOUS FEEDBACK")
}

func TestGenerateRevisionIncludesFeedback(t *testing.T) {
	completer := &promptCapturingCompleter{reply: "revised letter"}
	gen := NewGenerator(completer)

	app := &domain.JobApplication{JobTitle: "Backend Engineer", Company: "Veridian Labs", JobDescription: "snippet"}

	_, err := gen.Generate(context.Background(), testProfile(), app, "make it shorter")
	require.NoError(t, err)

	assert.Contains(t, completer.prompt, "PREVIOUS FEEDBACK FROM USER:\nmake it shorter")
	// Without a detail fetch the search snippet is the fallback.
	assert.Contains(t, completer.prompt, "snippet")
}
