package store

import (
	"context"
	"sync"

	"jobagent/internal/domain"
)

// MemoryStore is an in-memory Repository with the same contract as the
// SQLite implementation. Used in tests and ephemeral runs; nothing survives
// a restart.
type MemoryStore struct {
	mu sync.RWMutex

	profiles map[string]domain.Profile

	applications map[string]domain.JobApplication
	appOrder     []string

	contacts     map[string]domain.NetworkingContact
	contactOrder []string

	states   map[string]domain.ConversationState
	messages map[string][]domain.ConversationMessage
}

var _ Repository = (*MemoryStore)(nil)

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		profiles:     make(map[string]domain.Profile),
		applications: make(map[string]domain.JobApplication),
		contacts:     make(map[string]domain.NetworkingContact),
		states:       make(map[string]domain.ConversationState),
		messages:     make(map[string][]domain.ConversationMessage),
	}
}

func (s *MemoryStore) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpsertProfile(_ context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *MemoryStore) DeleteProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
	return nil
}

func (s *MemoryStore) GetApplication(_ context.Context, id string) (*domain.JobApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	app.NetworkingContacts = s.contactsForLocked(id)
	return &app, nil
}

func (s *MemoryStore) ListApplicationsByUser(_ context.Context, userID string) ([]*domain.JobApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var apps []*domain.JobApplication
	for _, id := range s.appOrder {
		app, ok := s.applications[id]
		if !ok || app.UserID != userID {
			continue
		}
		app.NetworkingContacts = s.contactsForLocked(id)
		apps = append(apps, &app)
	}
	return apps, nil
}

func (s *MemoryStore) UpsertApplication(_ context.Context, app *domain.JobApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[app.ID]; !ok {
		s.appOrder = append(s.appOrder, app.ID)
	}
	stored := *app
	// Contacts live in their own collection; GetApplication rehydrates them.
	stored.NetworkingContacts = nil
	s.applications[app.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteApplication(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.applications, id)
	return nil
}

func (s *MemoryStore) GetContact(_ context.Context, id string) (*domain.NetworkingContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListContactsByApplication(_ context.Context, applicationID string) ([]*domain.NetworkingContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var contacts []*domain.NetworkingContact
	for _, c := range s.contactsForLocked(applicationID) {
		c := c
		contacts = append(contacts, &c)
	}
	return contacts, nil
}

func (s *MemoryStore) UpsertContact(_ context.Context, contact *domain.NetworkingContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[contact.ID]; !ok {
		s.contactOrder = append(s.contactOrder, contact.ID)
	}
	s.contacts[contact.ID] = *contact
	return nil
}

func (s *MemoryStore) GetConversationState(_ context.Context, userID string) (*domain.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *MemoryStore) UpsertConversationState(_ context.Context, state *domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.UserID] = *state
	return nil
}

func (s *MemoryStore) DeleteConversationState(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, msg *domain.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.UserID] = append(s.messages[msg.UserID], *msg)
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, userID string) ([]*domain.ConversationMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]*domain.ConversationMessage, 0, len(s.messages[userID]))
	for _, m := range s.messages[userID] {
		m := m
		msgs = append(msgs, &m)
	}
	return msgs, nil
}

func (s *MemoryStore) ClearMessages(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, userID)
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// contactsForLocked returns an application's contacts in save order. Callers
// must hold at least the read lock.
func (s *MemoryStore) contactsForLocked(applicationID string) []domain.NetworkingContact {
	var contacts []domain.NetworkingContact
	for _, id := range s.contactOrder {
		c, ok := s.contacts[id]
		if ok && c.ApplicationID == applicationID {
			contacts = append(contacts, c)
		}
	}
	return contacts
}
