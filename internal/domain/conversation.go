package domain

import (
	"time"
)

// Stage is the discrete step of the conversation workflow that determines
// which handler processes the next user message.
type Stage string

const (
	StageProfileCollection   Stage = "profile_collection"
	StageJobSearch           Stage = "job_search"
	StageJobReview           Stage = "job_review"
	StageCoverLetterReview   Stage = "cover_letter_review"
	StageApplication         Stage = "application"
	StageNetworkingSearch    Stage = "networking_search"
	StageNetworkingReview    Stage = "networking_review"
	StageNetworkingMsgReview Stage = "networking_message_review"
	StageComplete            Stage = "complete"
)

// InitialStage is where every new conversation starts.
const InitialStage = StageProfileCollection

// ParseStage maps a stored stage string to a Stage. Unknown or empty values
// report ok=false so callers can fall back to the initial stage explicitly
// instead of silently coercing.
func ParseStage(s string) (Stage, bool) {
	switch Stage(s) {
	case StageProfileCollection, StageJobSearch, StageJobReview,
		StageCoverLetterReview, StageApplication, StageNetworkingSearch,
		StageNetworkingReview, StageNetworkingMsgReview, StageComplete:
		return Stage(s), true
	}
	return InitialStage, false
}

// ConversationState is the per-user workflow state, mutated once per
// processed message. Exactly one state record exists per user.
type ConversationState struct {
	UserID string `json:"user_id"`
	Stage  Stage  `json:"stage"`

	// ProfileDraft accumulates extracted preferences until the profile is
	// finalized at the job-search transition.
	ProfileDraft Profile `json:"profile_draft"`

	// SelectedJobs are application ids the user picked during job review,
	// in review order. The cover-letter stage walks them sequentially.
	SelectedJobs []string `json:"selected_jobs,omitempty"`

	// LetterDrafts maps application id to the letter currently under
	// review; ApprovedLetters holds the version the user signed off on.
	LetterDrafts    map[string]string `json:"letter_drafts,omitempty"`
	ApprovedLetters map[string]string `json:"approved_letters,omitempty"`

	// PendingPeople holds the latest people-search results between the
	// networking review turns. Selection indexes refer into this slice.
	PendingPeople []Person `json:"pending_people,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
}

// NewConversationState seeds a state at the initial stage.
func NewConversationState(userID string, draft Profile) *ConversationState {
	draft.ID = userID
	return &ConversationState{
		UserID:       userID,
		Stage:        InitialStage,
		ProfileDraft: draft,
		LastUpdated:  time.Now(),
	}
}

// CurrentJob returns the selected application the cover-letter review stage
// is currently working on: the pointer equals the number of letters already
// approved. ok is false once every selected job has been handled.
func (s *ConversationState) CurrentJob() (string, bool) {
	idx := len(s.ApprovedLetters)
	if idx >= len(s.SelectedJobs) {
		return "", false
	}
	return s.SelectedJobs[idx], true
}

// DropCurrentJob removes the job under review from the selection, used when
// the user chooses to skip it.
func (s *ConversationState) DropCurrentJob() {
	idx := len(s.ApprovedLetters)
	if idx >= len(s.SelectedJobs) {
		return
	}
	s.SelectedJobs = append(s.SelectedJobs[:idx], s.SelectedJobs[idx+1:]...)
}

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Channel is the transport a user message arrived on.
type Channel string

const (
	ChannelText  Channel = "text"
	ChannelVoice Channel = "voice"
)

// PendingAction tags an assistant turn with the follow-up the workflow is
// waiting on. It doubles as the discriminator for TurnMetadata: each action
// determines which payload field is populated.
type PendingAction string

const (
	ActionNone            PendingAction = ""
	ActionJobSearch       PendingAction = "job_search"
	ActionApproveJobs     PendingAction = "approve_jobs"
	ActionApproveLetter   PendingAction = "approve_cover_letter"
	ActionSearchContacts  PendingAction = "search_contacts"
	ActionApproveContacts PendingAction = "approve_contacts"
)

// LetterDraft is the cover letter currently presented for review.
type LetterDraft struct {
	ApplicationID string `json:"application_id"`
	JobTitle      string `json:"job_title"`
	Company       string `json:"company"`
	Letter        string `json:"letter"`
}

// TurnMetadata carries the structured payload attached to an assistant turn.
// Exactly one payload field is set, keyed by Action:
//
//	ActionApproveJobs     -> Jobs
//	ActionApproveLetter   -> Letter
//	ActionApproveContacts -> People
type TurnMetadata struct {
	Channel Channel       `json:"channel,omitempty"`
	Action  PendingAction `json:"pending_action,omitempty"`

	Jobs   []JobApplication `json:"jobs_found,omitempty"`
	Letter *LetterDraft     `json:"cover_letter_draft,omitempty"`
	People []Person         `json:"contacts_found,omitempty"`
}

// ConversationMessage is one immutable entry in a user's message log.
type ConversationMessage struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Role      MessageRole   `json:"role"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	Metadata  *TurnMetadata `json:"metadata,omitempty"`
}
