// Package conversation implements the command interpreter: it classifies
// each utterance, builds or amends the session's draft transaction, and
// commits confirmed drafts through the storage gateway.
package conversation

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sarveshz/munim/backend/internal/nlp/intent"
	"github.com/sarveshz/munim/backend/internal/storage"
)

// Service runs conversational turns against per-session draft state.
type Service struct {
	sessions SessionStore
	gateway  storage.Gateway

	// Turns within one session are processed strictly one at a time;
	// different sessions do not contend.
	mu        sync.Mutex
	turnLocks map[string]*sync.Mutex
}

// NewService wires the interpreter to its session store and storage gateway.
func NewService(sessions SessionStore, gateway storage.Gateway) *Service {
	return &Service{
		sessions:  sessions,
		gateway:   gateway,
		turnLocks: make(map[string]*sync.Mutex),
	}
}

// CreateSession provisions a fresh conversation.
func (s *Service) CreateSession(ctx context.Context) (Session, error) {
	return s.sessions.Create(ctx)
}

// GetSession returns the current session snapshot.
func (s *Service) GetSession(ctx context.Context, sessionID string) (Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// HandleTurn processes one utterance to completion and returns the response
// for it. Malformed input never errors out of the interpreter itself; the
// only errors surfaced here are a missing session or a failed session save.
func (s *Service) HandleTurn(ctx context.Context, sessionID, utterance string) (Response, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}

	classified := intent.Classify(utterance, session.ActiveDraft != nil)
	log.Printf("[turn] session=%s intent=%s", sessionID, classified)

	var resp Response
	switch classified {
	case intent.Modify:
		resp = s.modifyDraft(&session, utterance)
	case intent.Sale:
		resp = s.handleSale(&session, utterance)
	case intent.Purchase:
		resp = s.handlePurchase(&session, utterance)
	case intent.Party:
		resp = s.handleParty(&session, utterance)
	case intent.Item:
		resp = s.handleItem(&session, utterance)
	default:
		resp = helpResponse()
	}

	session.Turns++
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func (s *Service) lockFor(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.turnLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.turnLocks[sessionID] = lock
	}
	return lock
}
