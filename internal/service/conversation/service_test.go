package conversation_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	ledgermodel "github.com/sarveshz/munim/backend/internal/model/ledger"
	conversation "github.com/sarveshz/munim/backend/internal/service/conversation"
	"github.com/sarveshz/munim/backend/internal/storage"
	"github.com/sarveshz/munim/backend/internal/storage/memory"
)

func newTestService() (*conversation.Service, *memory.Store) {
	gateway := memory.New()
	svc := conversation.NewService(conversation.NewMemorySessionStore(), gateway)
	return svc, gateway
}

func startSession(t *testing.T, svc *conversation.Service) string {
	t.Helper()
	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	return session.ID
}

func turn(t *testing.T, svc *conversation.Service, sessionID, utterance string) conversation.Response {
	t.Helper()
	resp, err := svc.HandleTurn(context.Background(), sessionID, utterance)
	if err != nil {
		t.Fatalf("HandleTurn(%q) err: %v", utterance, err)
	}
	return resp
}

func activeDraft(t *testing.T, svc *conversation.Service, sessionID string) *ledgermodel.DraftTransaction {
	t.Helper()
	session, err := svc.GetSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	return session.ActiveDraft
}

func TestSaleDraftFromUtterance(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)

	resp := turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")

	draft := activeDraft(t, svc, sessionID)
	if draft == nil {
		t.Fatal("expected an active draft")
	}
	if draft.Kind != ledgermodel.KindSale {
		t.Fatalf("unexpected kind: %s", draft.Kind)
	}
	if draft.PartyName != "ABC Corp" {
		t.Fatalf("unexpected party: %q", draft.PartyName)
	}
	if len(draft.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(draft.Items))
	}

	item := draft.Items[0]
	if item.ItemName != "laptops" || item.Quantity != 10 || item.Rate != 50000 {
		t.Fatalf("unexpected line item: %+v", item)
	}
	if item.GSTPercent != 18 || item.TaxAmount != 90000 || item.Total != 590000 {
		t.Fatalf("unexpected line totals: %+v", item)
	}
	if draft.Subtotal != 500000 || draft.TotalTax != 90000 || draft.NetTotal != 590000 || draft.BalanceDue != 590000 {
		t.Fatalf("unexpected draft totals: %+v", draft)
	}
	if !strings.HasPrefix(draft.Reference, "SI-") {
		t.Fatalf("unexpected reference: %s", draft.Reference)
	}

	if resp.Confirm == nil || resp.Confirm.Kind != "save" || resp.Confirm.DraftID != draft.ID {
		t.Fatalf("expected a save confirm bound to the draft, got %+v", resp.Confirm)
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected modification suggestions")
	}
}

func TestChangeGSTRecomputesFromExistingSubtotal(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)
	turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")

	turn(t, svc, sessionID, "Change GST to 5%")

	draft := activeDraft(t, svc, sessionID)
	item := draft.Items[0]
	if item.GSTPercent != 5 {
		t.Fatalf("unexpected gst: %f", item.GSTPercent)
	}
	if item.Quantity != 10 || item.Rate != 50000 {
		t.Fatalf("quantity/rate must not change: %+v", item)
	}
	if draft.TotalTax != 25000 || draft.NetTotal != 525000 {
		t.Fatalf("unexpected totals after gst change: %+v", draft)
	}
}

func TestUpdateQuantityRecomputesSubtotal(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)
	turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")

	turn(t, svc, sessionID, "Update quantity to 20")

	draft := activeDraft(t, svc, sessionID)
	if draft.Subtotal != 1000000 || draft.TotalTax != 180000 || draft.NetTotal != 1180000 {
		t.Fatalf("unexpected totals after quantity change: %+v", draft)
	}
}

func TestChangePriceRecomputesTotals(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)
	turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")

	turn(t, svc, sessionID, "Change price to 45000")

	draft := activeDraft(t, svc, sessionID)
	if draft.Items[0].Rate != 45000 {
		t.Fatalf("unexpected rate: %f", draft.Items[0].Rate)
	}
	if draft.Subtotal != 450000 || draft.NetTotal != 531000 {
		t.Fatalf("unexpected totals after price change: %+v", draft)
	}
}

func TestChangeGSTToZero(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)
	turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")

	turn(t, svc, sessionID, "Change GST to 0%")

	draft := activeDraft(t, svc, sessionID)
	if draft.Items[0].GSTPercent != 0 {
		t.Fatalf("unexpected gst: %f", draft.Items[0].GSTPercent)
	}
	if draft.TotalTax != 0 || draft.NetTotal != 500000 {
		t.Fatalf("unexpected totals at zero gst: %+v", draft)
	}
}

func TestGSTChangeIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)
	turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")

	turn(t, svc, sessionID, "Change GST to 18%")
	first := activeDraft(t, svc, sessionID)

	turn(t, svc, sessionID, "Change GST to 18%")
	second := activeDraft(t, svc, sessionID)

	if first.Items[0] != second.Items[0] {
		t.Fatalf("line item drifted: %+v vs %+v", first.Items[0], second.Items[0])
	}
	if first.NetTotal != second.NetTotal || first.TotalTax != second.TotalTax {
		t.Fatalf("totals drifted: %+v vs %+v", first, second)
	}
}

func TestModifyWithoutDraftIsNoOp(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)

	// Without a draft the modify keywords never classify as Modify, so
	// this lands on the help response and still must not create state.
	resp := turn(t, svc, sessionID, "Change GST to 5%")
	if resp.Confirm != nil {
		t.Fatal("expected no confirm action")
	}
	if activeDraft(t, svc, sessionID) != nil {
		t.Fatal("expected no draft")
	}
}

func TestUnrecognizedModificationLeavesDraftUntouched(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)
	turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")
	before := activeDraft(t, svc, sessionID)

	// "update" triggers the modify intent but no field keyword matches.
	turn(t, svc, sessionID, "update the colour")

	after := activeDraft(t, svc, sessionID)
	if before.ID != after.ID || before.NetTotal != after.NetTotal {
		t.Fatalf("draft must not change on guidance: %+v vs %+v", before, after)
	}
}

func TestModificationWithoutNumberLeavesDraftUntouched(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)
	turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")
	before := activeDraft(t, svc, sessionID)

	turn(t, svc, sessionID, "change the quantity")

	after := activeDraft(t, svc, sessionID)
	if before.ID != after.ID {
		t.Fatal("draft must not change when the new value is missing")
	}
}

func TestCommitSavesAndClearsSession(t *testing.T) {
	svc, gateway := newTestService()
	sessionID := startSession(t, svc)
	resp := turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")

	if _, err := svc.Commit(context.Background(), sessionID, resp.Confirm.DraftID); err != nil {
		t.Fatalf("Commit err: %v", err)
	}

	if activeDraft(t, svc, sessionID) != nil {
		t.Fatal("expected draft cleared after commit")
	}
	if gateway.Count(storage.Sales) != 1 {
		t.Fatalf("expected 1 sale stored, got %d", gateway.Count(storage.Sales))
	}

	records, _ := gateway.List(context.Background(), storage.Sales)
	var stored ledgermodel.DraftTransaction
	if err := json.Unmarshal(records[0], &stored); err != nil {
		t.Fatalf("stored record unmarshal: %v", err)
	}
	if stored.PartyName != "ABC Corp" || stored.NetTotal != 590000 {
		t.Fatalf("unexpected stored record: %+v", stored)
	}
}

func TestCommitFailureRetainsDraft(t *testing.T) {
	failing := &failingGateway{kind: storage.ErrTransient}
	svc := conversation.NewService(conversation.NewMemorySessionStore(), failing)
	sessionID := startSession(t, svc)
	resp := turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")
	before := activeDraft(t, svc, sessionID)

	_, err := svc.Commit(context.Background(), sessionID, resp.Confirm.DraftID)
	if !errors.Is(err, storage.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}

	after := activeDraft(t, svc, sessionID)
	if after == nil || after.ID != before.ID {
		t.Fatal("draft must survive a failed commit")
	}

	// Retry against the same descriptor succeeds once the backend recovers.
	failing.kind = nil
	if _, err := svc.Commit(context.Background(), sessionID, resp.Confirm.DraftID); err != nil {
		t.Fatalf("retry err: %v", err)
	}
	if activeDraft(t, svc, sessionID) != nil {
		t.Fatal("expected draft cleared after successful retry")
	}
}

func TestCommitStaleDraftRejected(t *testing.T) {
	svc, gateway := newTestService()
	sessionID := startSession(t, svc)
	resp := turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")

	// The draft is amended after the confirm was offered.
	turn(t, svc, sessionID, "Change GST to 5%")

	_, err := svc.Commit(context.Background(), sessionID, resp.Confirm.DraftID)
	if !errors.Is(err, conversation.ErrDraftMismatch) {
		t.Fatalf("expected draft mismatch, got %v", err)
	}
	if gateway.Count(storage.Sales) != 0 {
		t.Fatal("stale confirm must not store anything")
	}
}

func TestCommitWithoutDraft(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)

	_, err := svc.Commit(context.Background(), sessionID, "anything")
	if !errors.Is(err, conversation.ErrNoDraft) {
		t.Fatalf("expected no-draft error, got %v", err)
	}
}

func TestNewCommandOverwritesDraft(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)
	turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000")
	first := activeDraft(t, svc, sessionID)

	turn(t, svc, sessionID, "Purchase from XYZ Traders for 5 chairs at ₹1200")

	second := activeDraft(t, svc, sessionID)
	if second.ID == first.ID {
		t.Fatal("expected a new draft")
	}
	if second.Kind != ledgermodel.KindPurchase || second.PartyName != "XYZ Traders" {
		t.Fatalf("unexpected draft: %+v", second)
	}
	if !strings.HasPrefix(second.Reference, "PUR-") {
		t.Fatalf("unexpected reference: %s", second.Reference)
	}
}

func TestPartyDraftAndCommit(t *testing.T) {
	svc, gateway := newTestService()
	sessionID := startSession(t, svc)
	resp := turn(t, svc, sessionID, "Add party Sunrise Traders GSTIN 27AAPFU0939F1ZV")

	draft := activeDraft(t, svc, sessionID)
	if draft.Kind != ledgermodel.KindParty || draft.Party == nil {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if draft.Party.Name != "Sunrise Traders" || draft.Party.GSTIN != "27AAPFU0939F1ZV" {
		t.Fatalf("unexpected party record: %+v", draft.Party)
	}
	if draft.Party.OpeningBalance != 0 {
		t.Fatalf("opening balance must default to zero: %f", draft.Party.OpeningBalance)
	}

	if _, err := svc.Commit(context.Background(), sessionID, resp.Confirm.DraftID); err != nil {
		t.Fatalf("Commit err: %v", err)
	}
	if gateway.Count(storage.Parties) != 1 {
		t.Fatal("expected party stored in parties collection")
	}
}

func TestItemDraftAppliesMarginHeuristic(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)
	turn(t, svc, sessionID, "Add item Laptop Stand HSN 8473 at 1500")

	draft := activeDraft(t, svc, sessionID)
	if draft.Kind != ledgermodel.KindItem || draft.Item == nil {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if draft.Item.Name != "Laptop Stand" || draft.Item.HSNCode != "8473" {
		t.Fatalf("unexpected item record: %+v", draft.Item)
	}
	if draft.Item.SalesPrice != 1500 || draft.Item.PurchasePrice != 1200 {
		t.Fatalf("unexpected prices: %+v", draft.Item)
	}
}

func TestUnknownUtteranceGetsHelp(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)

	resp := turn(t, svc, sessionID, "hello there")
	if resp.Confirm != nil {
		t.Fatal("help response must not carry a confirm")
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("help response must list example commands")
	}
	if activeDraft(t, svc, sessionID) != nil {
		t.Fatal("help must not create a draft")
	}
}

func TestPaymentReducesBalanceDue(t *testing.T) {
	svc, _ := newTestService()
	sessionID := startSession(t, svc)
	turn(t, svc, sessionID, "Create sale to ABC Corp for 10 laptops at ₹50000 paid 100000")

	draft := activeDraft(t, svc, sessionID)
	if draft.PaymentReceived != 100000 {
		t.Fatalf("unexpected payment: %f", draft.PaymentReceived)
	}
	if draft.NetTotal != 590000 || draft.BalanceDue != 490000 {
		t.Fatalf("unexpected totals: %+v", draft)
	}
}

func TestUnknownSessionRejected(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.HandleTurn(context.Background(), "missing", "hello"); !errors.Is(err, conversation.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

// failingGateway fails Insert with the configured kind until it is cleared.
type failingGateway struct {
	kind error
}

func (g *failingGateway) Insert(context.Context, storage.Collection, any) error {
	if g.kind == nil {
		return nil
	}
	return &storage.GatewayError{Kind: g.kind, Details: "backend offline"}
}

func (g *failingGateway) List(context.Context, storage.Collection) ([]json.RawMessage, error) {
	return nil, nil
}
