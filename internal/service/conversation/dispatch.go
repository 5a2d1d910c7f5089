package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"

	ledgermodel "github.com/sarveshz/munim/backend/internal/model/ledger"
	"github.com/sarveshz/munim/backend/internal/storage"
)

var (
	// ErrNoDraft means the session has nothing pending to save.
	ErrNoDraft = errors.New("no active draft to save")
	// ErrDraftMismatch means the confirm descriptor points at a draft
	// snapshot the session has since replaced.
	ErrDraftMismatch = errors.New("draft has changed since this confirmation was offered")
)

// Commit resolves a confirm descriptor: it dispatches the identified draft
// to the storage gateway and clears the session on success. On any gateway
// failure the draft stays in the session so the user can simply retry.
func (s *Service) Commit(ctx context.Context, sessionID, draftID string) (Response, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}

	draft := session.ActiveDraft
	if draft == nil {
		return Response{}, ErrNoDraft
	}
	if draftID != "" && draftID != draft.ID {
		return Response{}, ErrDraftMismatch
	}

	collection := collectionFor(draft.Kind)
	if err := s.gateway.Insert(ctx, collection, recordFor(draft)); err != nil {
		log.Printf("[dispatch] session=%s collection=%s insert failed: %v", sessionID, collection, err)
		return Response{}, err
	}

	session.ActiveDraft = nil
	session.ActiveDomain = ""
	if err := s.sessions.Save(ctx, session); err != nil {
		return Response{}, err
	}

	log.Printf("[dispatch] session=%s saved %s to %s", sessionID, draft.Reference, collection)
	return Response{
		Text:        fmt.Sprintf("Saved %s. What next?", draft.Reference),
		Suggestions: helpSuggestions,
	}, nil
}

func collectionFor(kind ledgermodel.Kind) storage.Collection {
	switch kind {
	case ledgermodel.KindPurchase:
		return storage.Purchases
	case ledgermodel.KindParty:
		return storage.Parties
	case ledgermodel.KindItem:
		return storage.Items
	default:
		return storage.Sales
	}
}

// recordFor picks what actually gets stored: master-data drafts persist
// their record payload, trade drafts persist the full transaction.
func recordFor(draft *ledgermodel.DraftTransaction) any {
	switch {
	case draft.Kind == ledgermodel.KindParty && draft.Party != nil:
		return draft.Party
	case draft.Kind == ledgermodel.KindItem && draft.Item != nil:
		return draft.Item
	default:
		return draft
	}
}
