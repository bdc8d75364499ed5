package session

import (
	"context"
	"sync"

	"taskdeck/internal/logging"
)

// Store is the single owner of authentication state. Every controller
// reads the token through it; only the store itself and the API client's
// 401 handler mutate it, and both mutations are clear-if-present.
//
// Invariant: User() is non-nil exactly when Token() is non-empty, because
// a token that fails to decode is discarded during Hydrate/SetToken.
type Store struct {
	mu      sync.RWMutex
	token   string
	user    *Identity
	storage TokenStorage
	log     logging.Logger
}

func NewStore(storage TokenStorage, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{storage: storage, log: log}
}

// Hydrate loads a previously persisted token. A malformed token is treated
// as an invalid session and cleared silently rather than surfaced.
func (s *Store) Hydrate(ctx context.Context) error {
	token, err := s.storage.Get()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	identity, err := decodeIdentity(token, "")
	if err != nil {
		s.log.Warn(ctx, "stored token undecodable, clearing session", "err", err)
		return s.storage.Clear()
	}

	s.mu.Lock()
	s.token = token
	s.user = &identity
	s.mu.Unlock()
	s.log.Info(ctx, "session hydrated", "user", identity.ID)
	return nil
}

// SetToken persists a freshly issued token and decodes the identity from
// it, using fallbackEmail when the payload carries no email claim.
func (s *Store) SetToken(ctx context.Context, token, fallbackEmail string) error {
	identity, err := decodeIdentity(token, fallbackEmail)
	if err != nil {
		return err
	}
	if err := s.storage.Set(token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = &identity
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the decoded identity, nil when signed out.
func (s *Store) User() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a token is present. Presence is all the
// route guard needs; real validation happens server-side on first use.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Clear wipes the session unconditionally, both in memory and persisted.
// Safe to call repeatedly.
func (s *Store) Clear() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	_ = s.storage.Clear()
}
