// Package resume turns raw resume text into a profile draft.
package resume

import (
	"context"
	"fmt"

	"jobagent/internal/domain"
	"jobagent/internal/llm"
)

const parseMaxTokens = 2000

// Parser extracts structured profile data from resume text via the language
// model. Extracting the text from the uploaded file is the caller's problem.
type Parser struct {
	completer llm.Completer
}

// NewParser creates a resume parser.
func NewParser(completer llm.Completer) *Parser {
	return &Parser{completer: completer}
}

const parsePrompt = `Parse this resume and extract structured data. Return ONLY valid JSON with no markdown formatting.

Resume:
%s

Return JSON in this exact format:
{
  "full_name": "string",
  "email": "string",
  "phone": "string",
  "work_experience": [
    {
      "company": "string",
      "title": "string",
      "start_date": "YYYY-MM",
      "end_date": "YYYY-MM or Present",
      "description": "string",
      "highlights": ["string"]
    }
  ],
  "education": [
    {
      "institution": "string",
      "degree": "string",
      "field": "string",
      "graduation_date": "YYYY-MM"
    }
  ],
  "skills": ["string"]
}`

// Parse extracts a profile draft from resume text. Search preferences are
// left empty; the conversation collects them afterwards.
func (p *Parser) Parse(ctx context.Context, resumeText string) (*domain.Profile, error) {
	reply, err := p.completer.Complete(ctx, fmt.Sprintf(parsePrompt, resumeText), parseMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("parse resume: %w", err)
	}

	var profile domain.Profile
	if err := llm.ExtractObject(reply, &profile); err != nil {
		return nil, fmt.Errorf("parse resume reply: %w", err)
	}
	return &profile, nil
}
