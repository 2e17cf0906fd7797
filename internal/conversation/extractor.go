package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jobagent/internal/domain"
	"jobagent/internal/llm"
	"jobagent/internal/store"
)

const (
	extractMaxTokens = 200

	// historyWindow bounds how many recent turns go into the extraction
	// prompt.
	historyWindow = 10
)

// Extractor pulls job-search preferences out of free-text messages. It only
// asks the model about fields that are still missing and never overwrites a
// value that is already set, no matter what the model echoes back.
type Extractor struct {
	completer llm.Completer
	repo      store.Repository
	logger    *slog.Logger
}

// NewExtractor creates a slot extractor.
func NewExtractor(completer llm.Completer, repo store.Repository, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: completer, repo: repo, logger: logger}
}

// extractedPreferences is the partial update shape the model is asked for.
// Absent fields come back zero-valued and are skipped during the merge.
type extractedPreferences struct {
	DesiredPosition string   `json:"desiredPosition"`
	Locations       []string `json:"locations"`
	CurrentLocation string   `json:"currentLocation"`
}

// fieldPrompts describes each preference field to the model, keyed by the
// domain field name.
var fieldPrompts = map[string]string{
	domain.FieldDesiredPosition: `"desiredPosition": the kind of job the user wants (e.g. "software engineer")`,
	domain.FieldLocations:       `"locations": array of locations the user wants to search in; normalize abbreviations (e.g. "SF" -> "San Francisco") and include "Remote" if mentioned`,
	domain.FieldCurrentLocation: `"currentLocation": where the user currently lives; normalize abbreviations (e.g. "NYC" -> "New York")`,
}

// Extract runs one extraction pass over the user's message and merges any
// newly learned preferences into the state's profile draft, persisting a
// profile snapshot on every successful partial extraction. Extraction
// failures are logged and reported as "nothing learned"; they never bubble
// up to the user.
func (e *Extractor) Extract(ctx context.Context, state *domain.ConversationState, message string, history []*domain.ConversationMessage) bool {
	missing := state.ProfileDraft.MissingPreferences()
	if len(missing) == 0 {
		return false
	}

	reply, err := e.completer.Complete(ctx, e.buildPrompt(message, missing, history), extractMaxTokens)
	if err != nil {
		e.logger.Warn("preference extraction call failed", "user_id", state.UserID, "error", err)
		return false
	}

	var extracted extractedPreferences
	if err := llm.ExtractObject(reply, &extracted); err != nil {
		e.logger.Warn("preference extraction reply unparseable", "user_id", state.UserID, "error", err)
		return false
	}

	learned := e.merge(&state.ProfileDraft, extracted)
	if !learned {
		return false
	}

	// Defensive incremental save so a later crash loses nothing.
	snapshot := state.ProfileDraft
	snapshot.ID = state.UserID
	snapshot.UpdatedAt = time.Now()
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = snapshot.UpdatedAt
	}
	if err := e.repo.UpsertProfile(ctx, &snapshot); err != nil {
		e.logger.Warn("incremental profile save failed", "user_id", state.UserID, "error", err)
	}
	return true
}

// merge copies extracted values into the draft, restricted to fields that
// are still empty.
func (e *Extractor) merge(draft *domain.Profile, extracted extractedPreferences) bool {
	learned := false
	if draft.DesiredPosition == "" && extracted.DesiredPosition != "" {
		draft.DesiredPosition = extracted.DesiredPosition
		learned = true
	}
	if len(draft.Locations) == 0 && len(extracted.Locations) > 0 {
		draft.Locations = extracted.Locations
		learned = true
	}
	if draft.CurrentLocation == "" && extracted.CurrentLocation != "" {
		draft.CurrentLocation = extracted.CurrentLocation
		learned = true
	}
	return learned
}

func (e *Extractor) buildPrompt(message string, missing []string, history []*domain.ConversationMessage) string {
	var b strings.Builder
	b.WriteString("Extract job search preferences from the user's latest message.\n\n")

	if start := len(history) - historyWindow; start > 0 {
		history = history[start:]
	}
	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User's latest message: %q\n\n", message)

	b.WriteString("Return a JSON object containing ONLY the fields below, and only when the message actually states them:\n")
	for _, field := range missing {
		b.WriteString("- " + fieldPrompts[field] + "\n")
	}
	b.WriteString("\nOmit any field the message does not mention. Return ONLY valid JSON.")
	return b.String()
}
