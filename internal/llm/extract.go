package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoObject is returned when no JSON object can be recovered from a model
// reply. Callers treat it as "nothing extracted", never as a hard failure.
var ErrNoObject = errors.New("no json object found in model output")

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractObject recovers a single JSON object from free-form model output.
// Models wrap structured replies inconsistently, so three forms are tried in
// order: a fenced code block, the first balanced {...} substring, then the
// whole trimmed text.
func ExtractObject(text string, v interface{}) error {
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), v); err == nil {
			return nil
		}
	}

	if obj := firstBalancedObject(text); obj != "" {
		if err := json.Unmarshal([]byte(obj), v); err == nil {
			return nil
		}
	}

	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), v); err == nil {
		return nil
	}

	return ErrNoObject
}

// firstBalancedObject returns the first {...} substring with balanced braces,
// respecting string literals and escapes.
func firstBalancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
