package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

var numberRe = regexp.MustCompile(`\d+`)

// parseSelection interprets a free-text review reply against a list of count
// items. It recognizes "all", "none", and 1-based numbers found anywhere in
// the text (clamped to range, duplicates kept). An empty selection with
// none=false means the reply was not understood.
func parseSelection(message string, count int) (indexes []int, none bool) {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "all") {
		for i := 0; i < count; i++ {
			indexes = append(indexes, i)
		}
		return indexes, false
	}
	if strings.Contains(lower, "none") {
		return nil, true
	}

	for _, token := range numberRe.FindAllString(message, -1) {
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		idx := n - 1
		if idx >= 0 && idx < count {
			indexes = append(indexes, idx)
		}
	}
	return indexes, false
}

// Classifier phrases match on word boundaries, so "ok" fires on "ok, send it"
// but not inside words like "broken" or "token".
var (
	approvalRe    = phraseRe("approve", "looks good", "look good", "perfect", "great", "send it", "submit", "yes", "yep", "yeah", "sure", "ok", "okay")
	skipRe        = phraseRe("skip", "next one", "pass", "drop")
	affirmativeRe = phraseRe("yes", "yeah", "yep", "sure", "ok", "okay", "please", "go ahead", "sounds good")
)

func phraseRe(phrases ...string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func isApproval(message string) bool    { return approvalRe.MatchString(strings.ToLower(message)) }
func isSkip(message string) bool        { return skipRe.MatchString(strings.ToLower(message)) }
func isAffirmative(message string) bool { return affirmativeRe.MatchString(strings.ToLower(message)) }
