package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	ledgermodel "github.com/sarveshz/munim/backend/internal/model/ledger"
	"github.com/sarveshz/munim/backend/internal/nlp/intent"
)

var ErrSessionNotFound = errors.New("session not found")

// Session holds at most one active draft for a single conversation stream.
// The draft pointer is replaced wholesale on every change; turns never see a
// partially patched draft.
type Session struct {
	ID           string                        `json:"id"`
	ActiveDraft  *ledgermodel.DraftTransaction `json:"activeDraft,omitempty"`
	ActiveDomain intent.Intent                 `json:"activeDomain,omitempty"`
	Turns        int                           `json:"turns"`
	CreatedAt    time.Time                     `json:"createdAt"`
	UpdatedAt    time.Time                     `json:"updatedAt"`
}

// SessionStore abstracts session persistence. The default is in-memory and
// non-durable; a durable backend can be swapped in without touching the
// interpreter itself.
type SessionStore interface {
	Create(ctx context.Context) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, session Session) error
}

// MemorySessionStore keeps sessions in process memory for their lifetime.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore bootstraps the default volatile session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

// Create provisions an empty session.
func (s *MemorySessionStore) Create(_ context.Context) (Session, error) {
	now := time.Now().UTC()
	session := Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session, nil
}

// Get retrieves a session by identifier.
func (s *MemorySessionStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Save writes the session back after a turn.
func (s *MemorySessionStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}
	s.sessions[session.ID] = session
	return nil
}
