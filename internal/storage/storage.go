// Package storage defines the gateway port the interpreter commits drafts
// through. The interpreter is agnostic to the backend; it only needs Insert
// plus error kinds it can surface to the user.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names the target record set for a committed draft.
type Collection string

const (
	Sales     Collection = "sales"
	Purchases Collection = "purchases"
	Parties   Collection = "parties"
	Items     Collection = "items"
)

// ParseCollection validates a collection name from an external caller.
func ParseCollection(name string) (Collection, bool) {
	switch Collection(name) {
	case Sales, Purchases, Parties, Items:
		return Collection(name), true
	}
	return "", false
}

// Sentinel error kinds. Callers match with errors.Is; the draft is never
// cleared on any of them.
var (
	// ErrValidation means the gateway rejected the record itself.
	ErrValidation = errors.New("record failed validation")
	// ErrTransient means the backend failed but a retry may succeed.
	ErrTransient = errors.New("storage temporarily unavailable")
	// ErrUnavailable means no gateway is configured or reachable.
	ErrUnavailable = errors.New("storage gateway unavailable")
)

// GatewayError wraps a sentinel kind with backend detail for the user.
type GatewayError struct {
	Kind    error
	Details string
}

func (e *GatewayError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Details)
	}
	return e.Kind.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Kind
}

// Gateway is the single external collaborator of the interpreter. Insert
// stores one record atomically; List exists for boundary inspection.
type Gateway interface {
	Insert(ctx context.Context, collection Collection, record any) error
	List(ctx context.Context, collection Collection) ([]json.RawMessage, error)
}
