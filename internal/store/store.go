// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"jobagent/internal/domain"
)

// Repository defines durable last-write-wins access to the four record
// collections. Single-record getters return domain.ErrNotFound when there is
// no match, except GetConversationState which returns (nil, nil) so callers
// can seed a default state for first-time users.
type Repository interface {
	// GetProfile retrieves a candidate profile by user id.
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)

	// UpsertProfile creates or updates a profile record.
	UpsertProfile(ctx context.Context, profile *domain.Profile) error

	// DeleteProfile removes a profile. Deleting is an external operation;
	// the conversation flow never calls it.
	DeleteProfile(ctx context.Context, id string) error

	// GetApplication retrieves a job application by id, with its embedded
	// networking contacts rehydrated.
	GetApplication(ctx context.Context, id string) (*domain.JobApplication, error)

	// ListApplicationsByUser returns a user's applications in creation order.
	ListApplicationsByUser(ctx context.Context, userID string) ([]*domain.JobApplication, error)

	// UpsertApplication creates or updates an application record.
	UpsertApplication(ctx context.Context, app *domain.JobApplication) error

	// DeleteApplication removes an application.
	DeleteApplication(ctx context.Context, id string) error

	// GetContact retrieves a networking contact by id.
	GetContact(ctx context.Context, id string) (*domain.NetworkingContact, error)

	// ListContactsByApplication returns contacts for an application in the
	// order they were saved.
	ListContactsByApplication(ctx context.Context, applicationID string) ([]*domain.NetworkingContact, error)

	// UpsertContact creates or updates a contact record.
	UpsertContact(ctx context.Context, contact *domain.NetworkingContact) error

	// GetConversationState retrieves conversation state for a user.
	// Returns (nil, nil) when no state exists yet.
	GetConversationState(ctx context.Context, userID string) (*domain.ConversationState, error)

	// UpsertConversationState creates or updates conversation state.
	UpsertConversationState(ctx context.Context, state *domain.ConversationState) error

	// DeleteConversationState removes conversation state.
	DeleteConversationState(ctx context.Context, userID string) error

	// AppendMessage stores one immutable conversation message.
	AppendMessage(ctx context.Context, msg *domain.ConversationMessage) error

	// ListMessages returns a user's messages in chronological order.
	ListMessages(ctx context.Context, userID string) ([]*domain.ConversationMessage, error)

	// ClearMessages deletes all messages for a user.
	ClearMessages(ctx context.Context, userID string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
