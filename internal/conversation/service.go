// Package conversation implements the stage-keyed dialogue controller that
// drives the job-hunting workflow one user message at a time.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"jobagent/internal/domain"
	"jobagent/internal/jobs"
	"jobagent/internal/networking"
	"jobagent/internal/store"
)

// fallbackReply is sent for unknown stages and for handler failures. It
// commits to nothing so the same turn can be retried.
const fallbackReply = "I'm here to help! How can I assist you with your job search?"

const errorReply = "I'm sorry, something went wrong on my end while handling that. Could you try again in a moment?"

// TurnResult is what one processed message produces.
type TurnResult struct {
	Response string                    `json:"response"`
	State    *domain.ConversationState `json:"state"`
	Metadata *domain.TurnMetadata      `json:"metadata,omitempty"`
}

// turnReply is a stage handler's output before persistence.
type turnReply struct {
	response string
	metadata *domain.TurnMetadata
}

// Service is the conversation state machine. One instance serves all users;
// per-user state lives in the repository and is read-modify-written once per
// turn. Concurrent turns for the same user are assumed to be serialized by
// the caller.
type Service struct {
	repo       store.Repository
	extractor  *Extractor
	jobs       *jobs.Service
	networking *networking.Service
	logger     *slog.Logger
}

// NewService creates the conversation service.
func NewService(repo store.Repository, extractor *Extractor, jobSvc *jobs.Service, netSvc *networking.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		extractor:  extractor,
		jobs:       jobSvc,
		networking: netSvc,
		logger:     logger,
	}
}

// InitializeConversation seeds a fresh conversation at the initial stage,
// usually right after a resume upload produced a profile draft.
func (s *Service) InitializeConversation(ctx context.Context, userID string, draft domain.Profile) (*domain.ConversationState, error) {
	state := domain.NewConversationState(userID, draft)
	if err := s.repo.UpsertConversationState(ctx, state); err != nil {
		return nil, fmt.Errorf("initialize conversation for %s: %w", userID, err)
	}
	return state, nil
}

// ProcessMessage is the single entry point: it records the user's message,
// runs the current stage's handler, records the reply and persists the
// updated state. Handler failures produce an apologetic reply with the stage
// unchanged; only persistence failures propagate.
func (s *Service) ProcessMessage(ctx context.Context, userID, text string, channel domain.Channel) (*TurnResult, error) {
	state, err := s.loadOrSeedState(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("process message: load history for %s: %w", userID, err)
	}

	// The inbound message is recorded before the handler runs so it
	// survives even when the handler fails.
	if err := s.appendMessage(ctx, userID, domain.RoleUser, text, &domain.TurnMetadata{Channel: channel}); err != nil {
		return nil, err
	}

	stageBefore := state.Stage
	reply, err := s.dispatch(ctx, state, text, history)
	if err != nil {
		s.logger.Error("stage handler failed",
			"user_id", userID, "stage", stageBefore, "error", err)
		state.Stage = stageBefore
		reply = &turnReply{response: errorReply, metadata: &domain.TurnMetadata{}}
	}

	if err := s.appendMessage(ctx, userID, domain.RoleAssistant, reply.response, reply.metadata); err != nil {
		return nil, err
	}

	state.LastUpdated = time.Now()
	if err := s.repo.UpsertConversationState(ctx, state); err != nil {
		return nil, fmt.Errorf("process message: save state for %s: %w", userID, err)
	}

	return &TurnResult{Response: reply.response, State: state, Metadata: reply.metadata}, nil
}

// GetHistory returns the user's message log in chronological order.
func (s *Service) GetHistory(ctx context.Context, userID string) ([]*domain.ConversationMessage, error) {
	return s.repo.ListMessages(ctx, userID)
}

// ClearConversation deletes the message log and the state, so the next
// message starts over at the initial stage.
func (s *Service) ClearConversation(ctx context.Context, userID string) error {
	if err := s.repo.ClearMessages(ctx, userID); err != nil {
		return fmt.Errorf("clear conversation for %s: %w", userID, err)
	}
	if err := s.repo.DeleteConversationState(ctx, userID); err != nil {
		return fmt.Errorf("clear conversation for %s: %w", userID, err)
	}
	return nil
}

// loadOrSeedState fetches the user's state, seeding a fresh one (pre-filled
// from any stored profile) for first-time users.
func (s *Service) loadOrSeedState(ctx context.Context, userID string) (*domain.ConversationState, error) {
	state, err := s.repo.GetConversationState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("process message: load state for %s: %w", userID, err)
	}
	if state != nil {
		return state, nil
	}

	var draft domain.Profile
	profile, err := s.repo.GetProfile(ctx, userID)
	switch {
	case err == nil:
		draft = *profile
	case errors.Is(err, domain.ErrNotFound):
		// First contact without a resume upload; start empty.
	default:
		return nil, fmt.Errorf("process message: load profile for %s: %w", userID, err)
	}
	return domain.NewConversationState(userID, draft), nil
}

// dispatch routes the message to the current stage's handler. An unknown
// stored stage gets a generic reply and is logged, but not mutated.
func (s *Service) dispatch(ctx context.Context, state *domain.ConversationState, text string, history []*domain.ConversationMessage) (*turnReply, error) {
	stage, known := domain.ParseStage(string(state.Stage))
	if !known {
		s.logger.Warn("unknown conversation stage", "user_id", state.UserID, "stage", state.Stage)
		return &turnReply{response: fallbackReply, metadata: &domain.TurnMetadata{}}, nil
	}

	switch stage {
	case domain.StageProfileCollection:
		return s.handleProfileCollection(ctx, state, text, history)
	case domain.StageJobSearch:
		return s.handleJobSearch(ctx, state)
	case domain.StageJobReview:
		return s.handleJobReview(ctx, state, text)
	case domain.StageCoverLetterReview:
		return s.handleCoverLetterReview(ctx, state, text)
	case domain.StageApplication:
		return s.handleApplication(state)
	case domain.StageNetworkingSearch:
		return s.handleNetworkingSearch(state, text)
	case domain.StageNetworkingReview:
		return s.handleNetworkingReview(ctx, state)
	case domain.StageNetworkingMsgReview:
		return s.handleNetworkingMessageReview(ctx, state, text)
	case domain.StageComplete:
		return &turnReply{response: fallbackReply, metadata: &domain.TurnMetadata{}}, nil
	}
	return &turnReply{response: fallbackReply, metadata: &domain.TurnMetadata{}}, nil
}

func (s *Service) appendMessage(ctx context.Context, userID string, role domain.MessageRole, content string, metadata *domain.TurnMetadata) error {
	msg := &domain.ConversationMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("record %s message for %s: %w", role, userID, err)
	}
	return nil
}
