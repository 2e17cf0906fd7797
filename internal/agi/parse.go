package agi

import (
	"encoding/json"
	"regexp"
	"strings"

	"jobagent/internal/domain"
)

// Lenient parsers that recover structured listings from free-form agent
// output. The agent is asked for a fixed format but does not reliably
// produce it, so each parser tries embedded JSON first and falls back to
// line heuristics, returning nil when nothing usable is found.

var (
	jsonArrayRe    = regexp.MustCompile(`(?s)\[.*?\]`)
	dashSplitRe    = regexp.MustCompile(`\s*[-–—]\s*`)
	numberPrefixRe = regexp.MustCompile(`^\d+\.\s*`)

	aboutRe  = regexp.MustCompile(`(?is)ABOUT THE JOB:\s*(.*?)(?:REQUIREMENTS:|RESPONSIBILITIES:|SKILLS:|$)`)
	reqRe    = regexp.MustCompile(`(?is)REQUIREMENTS:\s*(.*?)(?:RESPONSIBILITIES:|SKILLS:|$)`)
	respRe   = regexp.MustCompile(`(?is)RESPONSIBILITIES:\s*(.*?)(?:SKILLS:|REQUIREMENTS:|$)`)
	skillsRe = regexp.MustCompile(`(?is)SKILLS:\s*(.*?)(?:REQUIREMENTS:|RESPONSIBILITIES:|$)`)

	degreeRe = regexp.MustCompile(`\b(1st|2nd|3rd)\b`)
)

// ParseJobs recovers job listings from agent messages. It tries a JSON array
// first, then lines shaped "Title - Company - Location[ - Salary]".
func ParseJobs(messages []AgentMessage) []JobListing {
	for _, m := range messages {
		if m.Type != MessageDone && m.Type != MessageThought {
			continue
		}

		if jobs := jobsFromJSON(m.Content); len(jobs) > 0 {
			return jobs
		}
		if jobs := jobsFromLines(m.Content); len(jobs) > 0 {
			return jobs
		}
	}
	return nil
}

func jobsFromJSON(content string) []JobListing {
	match := jsonArrayRe.FindString(content)
	if match == "" {
		return nil
	}
	var jobs []JobListing
	if err := json.Unmarshal([]byte(match), &jobs); err != nil {
		return nil
	}
	if len(jobs) == 0 || jobs[0].Title == "" {
		return nil
	}
	return jobs
}

func jobsFromLines(content string) []JobListing {
	var jobs []JobListing
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 10 {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "task completed") ||
			strings.Contains(lower, "i successfully completed") {
			continue
		}
		// Skip header rows from tabular replies.
		if strings.Contains(lower, "job title") && strings.Contains(lower, "company name") {
			continue
		}

		segments := dashSplitRe.Split(line, -1)
		if len(segments) < 3 {
			continue
		}
		title := strings.TrimSpace(segments[0])
		company := strings.TrimSpace(segments[1])
		location := strings.TrimSpace(segments[2])
		if len(title) <= 3 || len(company) <= 1 || location == "" {
			continue
		}

		job := JobListing{
			Title:    numberPrefixRe.ReplaceAllString(title, ""),
			Company:  company,
			Location: location,
		}
		if len(segments) >= 4 {
			job.Salary = strings.TrimSpace(strings.Join(segments[3:], " - "))
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// ParseJobDetails recovers the long-form posting sections from agent
// messages. Sections missing from the reply come back empty rather than
// failing the whole parse; nil is returned only when no section matched.
func ParseJobDetails(messages []AgentMessage) *JobDetails {
	var parts []string
	for _, m := range messages {
		if m.Type == MessageDone || m.Type == MessageThought {
			parts = append(parts, m.Content)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	content := strings.Join(parts, "\n\n")

	details := &JobDetails{}
	matched := false
	if m := aboutRe.FindStringSubmatch(content); m != nil {
		details.DetailedDescription = strings.TrimSpace(m[1])
		matched = true
	}
	if m := reqRe.FindStringSubmatch(content); m != nil {
		details.Requirements = parseBullets(m[1])
		matched = true
	}
	if m := respRe.FindStringSubmatch(content); m != nil {
		details.Responsibilities = parseBullets(m[1])
		matched = true
	}
	if m := skillsRe.FindStringSubmatch(content); m != nil {
		details.Skills = parseBullets(m[1])
		matched = true
	}
	if !matched {
		return nil
	}
	return details
}

// parseBullets extracts "-", "•" and "1." style bullet lines.
func parseBullets(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		isBullet := strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") ||
			numberPrefixRe.MatchString(line)
		if !isBullet {
			continue
		}
		line = strings.TrimLeft(line, "-• \t")
		line = numberPrefixRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// ParsePeople recovers people-search results. It tries a JSON array first,
// then lines shaped "Name - Title - <degree>[ - Bio]" where degree is one of
// 1st/2nd/3rd. Order is preserved so index-based selection stays stable.
func ParsePeople(messages []AgentMessage) []domain.Person {
	for _, m := range messages {
		if m.Type != MessageDone && m.Type != MessageThought {
			continue
		}

		if people := peopleFromJSON(m.Content); len(people) > 0 {
			return people
		}
		if people := peopleFromLines(m.Content); len(people) > 0 {
			return people
		}
	}
	return nil
}

func peopleFromJSON(content string) []domain.Person {
	match := jsonArrayRe.FindString(content)
	if match == "" {
		return nil
	}
	var people []domain.Person
	if err := json.Unmarshal([]byte(match), &people); err != nil {
		return nil
	}
	if len(people) == 0 || people[0].Name == "" {
		return nil
	}
	return people
}

func peopleFromLines(content string) []domain.Person {
	var people []domain.Person
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		segments := dashSplitRe.Split(line, -1)
		if len(segments) < 3 {
			continue
		}
		degree := degreeRe.FindString(line)
		if degree == "" {
			continue
		}

		person := domain.Person{
			Name:             numberPrefixRe.ReplaceAllString(strings.TrimSpace(segments[0]), ""),
			Title:            strings.TrimSpace(segments[1]),
			ConnectionDegree: domain.ConnectionDegree(degree),
		}
		if len(segments) >= 4 {
			person.Description = strings.TrimSpace(strings.Join(segments[3:], " - "))
		}
		if person.Name == "" || person.Title == "" {
			continue
		}
		people = append(people, person)
	}
	return people
}
