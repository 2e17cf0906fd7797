// Package letters generates cover letters with the language model.
package letters

import (
	"context"
	"fmt"
	"strings"

	"jobagent/internal/domain"
	"jobagent/internal/llm"
)

// maxWords is the word budget stated to the model. It is an instruction, not
// a programmatic truncation; the model can and occasionally does run over.
const maxWords = 300

const maxTokens = 1500

// Generator produces cover letter text. Persisting the result and keeping
// revision history is the job pipeline's responsibility.
type Generator struct {
	completer llm.Completer
}

// NewGenerator creates a cover letter generator.
func NewGenerator(completer llm.Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate writes a letter for the given profile and job. A non-empty
// feedback string turns the call into a revision of the previous letter.
func (g *Generator) Generate(ctx context.Context, profile *domain.Profile, app *domain.JobApplication, feedback string) (string, error) {
	prompt := buildPrompt(profile, app, feedback)

	letter, err := g.completer.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return "", fmt.Errorf("generate cover letter for %s at %s: %w", app.JobTitle, app.Company, err)
	}
	return strings.TrimSpace(letter), nil
}

func buildPrompt(profile *domain.Profile, app *domain.JobApplication, feedback string) string {
	var b strings.Builder

	b.WriteString("Write a professional cover letter for this job application.\n\n")

	b.WriteString("Job Details:\n")
	fmt.Fprintf(&b, "- Title: %s\n", app.JobTitle)
	fmt.Fprintf(&b, "- Company: %s\n", app.Company)
	if detail := app.DetailText(); detail != "" {
		fmt.Fprintf(&b, "- Description: %s\n", detail)
	}
	writeBullets(&b, "Requirements", app.Requirements)
	writeBullets(&b, "Key Responsibilities", app.Responsibilities)
	writeBullets(&b, "Required Skills", app.Skills)

	b.WriteString("\nCandidate Profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", profile.Name)
	fmt.Fprintf(&b, "- Current Location: %s\n", profile.CurrentLocation)
	fmt.Fprintf(&b, "- Skills: %s\n", strings.Join(profile.Skills, ", "))
	if len(profile.WorkExperience) > 0 {
		recent := profile.WorkExperience[0]
		fmt.Fprintf(&b, "- Recent Experience: %s - %s\n", recent.Company, recent.Title)
	}
	if len(profile.Education) > 0 {
		edu := profile.Education[0]
		fmt.Fprintf(&b, "- Education: %s in %s from %s\n", edu.Degree, edu.Field, edu.Institution)
	}

	if len(profile.WorkExperience) > 0 {
		b.WriteString("\nDetailed Work Experience:\n")
		experience := profile.WorkExperience
		if len(experience) > 3 {
			experience = experience[:3]
		}
		for _, exp := range experience {
			fmt.Fprintf(&b, "- %s at %s (%s - %s)\n  %s\n", exp.Title, exp.Company, exp.StartDate, exp.EndDate, exp.Description)
			if len(exp.Highlights) > 0 {
				fmt.Fprintf(&b, "  Key highlights: %s\n", strings.Join(exp.Highlights, ", "))
			}
		}
	}

	fmt.Fprintf(&b, `
Write a compelling, personalized cover letter (max %d words). Focus on:
1. Why I'm excited about this specific role and company
2. How my skills and experience directly match their requirements and responsibilities
3. Specific examples from my work history that demonstrate relevant capabilities
4. Professional yet genuine tone

IMPORTANT:
- Make it highly specific to THIS job - reference actual requirements, responsibilities, and skills listed
- Use concrete examples from my work experience
- Avoid generic phrases and cliches
- Be authentic and show genuine enthusiasm`, maxWords)

	if feedback != "" {
		fmt.Fprintf(&b, "\n\nPREVIOUS FEEDBACK FROM USER:\n%s\n\nPlease revise the cover letter based on this feedback while maintaining all the above requirements.", feedback)
	}

	return b.String()
}

func writeBullets(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s:\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "  • %s\n", item)
	}
}
