package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sarveshz/munim/backend/internal/ledger"
	ledgermodel "github.com/sarveshz/munim/backend/internal/model/ledger"
	"github.com/sarveshz/munim/backend/internal/nlp/extract"
	"github.com/sarveshz/munim/backend/internal/nlp/intent"
)

// Per-domain skip words fed to the name extractor on top of the base set.
var (
	saleSkipWords     = []string{"sale", "to", "sell", "create", "invoice"}
	purchaseSkipWords = []string{"purchase", "from", "buy"}
	partySkipWords    = []string{"party", "add", "create", "new", "customer", "supplier", "gstin"}
	itemSkipWords     = []string{"item", "add", "create", "new", "product", "hsn"}
)

// handleSale builds a single-line sale draft from the utterance. Missing
// figures fall back to domain defaults; the user corrects via follow-ups.
func (s *Service) handleSale(session *Session, utterance string) Response {
	draft := s.buildTradeDraft(utterance, ledgermodel.KindSale)
	session.ActiveDraft = draft
	session.ActiveDomain = intent.Sale

	item := draft.Items[0]
	text := fmt.Sprintf("Sale draft %s for %s: %g × %s @ %s, GST %g%% — total %s, balance due %s.",
		draft.Reference, draft.PartyName, item.Quantity, item.ItemName,
		ledger.FormatAmount(item.Rate), item.GSTPercent,
		ledger.FormatAmount(draft.NetTotal), ledger.FormatAmount(draft.BalanceDue))

	return Response{
		Text:        text,
		Suggestions: modifySuggestions,
		Confirm:     s.confirmFor(session, draft),
	}
}

// handlePurchase mirrors handleSale for supplier-side transactions.
func (s *Service) handlePurchase(session *Session, utterance string) Response {
	draft := s.buildTradeDraft(utterance, ledgermodel.KindPurchase)
	session.ActiveDraft = draft
	session.ActiveDomain = intent.Purchase

	item := draft.Items[0]
	text := fmt.Sprintf("Purchase draft %s from %s: %g × %s @ %s, GST %g%% — total %s, balance due %s.",
		draft.Reference, draft.PartyName, item.Quantity, item.ItemName,
		ledger.FormatAmount(item.Rate), item.GSTPercent,
		ledger.FormatAmount(draft.NetTotal), ledger.FormatAmount(draft.BalanceDue))

	return Response{
		Text:        text,
		Suggestions: modifySuggestions,
		Confirm:     s.confirmFor(session, draft),
	}
}

func (s *Service) buildTradeDraft(utterance string, kind ledgermodel.Kind) *ledgermodel.DraftTransaction {
	var (
		partyName string
		fallback  string
		prefix    string
	)
	if kind == ledgermodel.KindSale {
		partyName = extract.Name(utterance, saleSkipWords...)
		fallback = "Unknown Customer"
		prefix = "SI"
	} else {
		partyName = extract.Name(utterance, purchaseSkipWords...)
		fallback = "Unknown Supplier"
		prefix = "PUR"
	}
	if partyName == "" {
		partyName = fallback
	}

	itemName := extract.ItemName(utterance)
	if itemName == "" {
		itemName = "Item"
	}

	quantity, rate := quantityAndRate(extract.Numbers(utterance))
	payment, _ := extract.Payment(utterance)
	totals := ledger.Compute(quantity, rate, ledger.DefaultGSTPercent, payment)

	return &ledgermodel.DraftTransaction{
		ID:        uuid.NewString(),
		Kind:      kind,
		Reference: reference(prefix),
		PartyName: partyName,
		Items: []ledgermodel.LineItem{{
			ItemName:   itemName,
			Quantity:   quantity,
			Rate:       rate,
			GSTPercent: ledger.DefaultGSTPercent,
			TaxAmount:  totals.TaxAmount,
			Total:      totals.NetTotal,
		}},
		Subtotal:        totals.Subtotal,
		TotalTax:        totals.TaxAmount,
		NetTotal:        totals.NetTotal,
		PaymentReceived: payment,
		BalanceDue:      totals.BalanceDue,
		CreatedAt:       time.Now().UTC(),
	}
}

// handleParty builds a party master-data draft. No financial computation.
func (s *Service) handleParty(session *Session, utterance string) Response {
	name := extract.Name(utterance, partySkipWords...)
	if name == "" {
		name = "Unknown Party"
	}

	record := &ledgermodel.PartyRecord{
		Name:  name,
		GSTIN: extract.GSTIN(utterance),
	}
	draft := &ledgermodel.DraftTransaction{
		ID:        uuid.NewString(),
		Kind:      ledgermodel.KindParty,
		Reference: reference("PTY"),
		PartyName: name,
		Party:     record,
		CreatedAt: time.Now().UTC(),
	}
	session.ActiveDraft = draft
	session.ActiveDomain = intent.Party

	text := fmt.Sprintf("Party draft: %s", name)
	if record.GSTIN != "" {
		text += fmt.Sprintf(" (GSTIN %s)", record.GSTIN)
	}
	text += ". Save it?"

	return Response{
		Text:    text,
		Confirm: s.confirmFor(session, draft),
	}
}

// handleItem builds an item master-data draft. Purchase price defaults to
// 80% of the sales price, a fixed heuristic margin rather than a setting.
func (s *Service) handleItem(session *Session, utterance string) Response {
	name := extract.Name(utterance, itemSkipWords...)
	if name == "" {
		name = "New Item"
	}

	hsn := extract.HSNCode(utterance)

	// Blank out the HSN span so its digits are not mistaken for a price.
	priceText := utterance
	if span := extract.HSNSpan(utterance); span != "" {
		priceText = strings.Replace(priceText, span, " ", 1)
	}
	salesPrice := 0.0
	if nums := extract.Numbers(priceText); len(nums) > 0 {
		salesPrice = nums[0]
	}

	record := &ledgermodel.ItemRecord{
		Name:          name,
		HSNCode:       hsn,
		SalesPrice:    salesPrice,
		PurchasePrice: salesPrice * 0.8,
	}
	draft := &ledgermodel.DraftTransaction{
		ID:        uuid.NewString(),
		Kind:      ledgermodel.KindItem,
		Reference: reference("ITM"),
		Item:      record,
		CreatedAt: time.Now().UTC(),
	}
	session.ActiveDraft = draft
	session.ActiveDomain = intent.Item

	text := fmt.Sprintf("Item draft: %s, sales price %s, purchase price %s",
		name, ledger.FormatAmount(record.SalesPrice), ledger.FormatAmount(record.PurchasePrice))
	if hsn != "" {
		text += fmt.Sprintf(", HSN %s", hsn)
	}
	text += ". Save it?"

	return Response{
		Text:    text,
		Confirm: s.confirmFor(session, draft),
	}
}

func (s *Service) confirmFor(session *Session, draft *ledgermodel.DraftTransaction) *ConfirmAction {
	return &ConfirmAction{
		Kind:      confirmKindSave,
		Label:     "Save",
		SessionID: session.ID,
		DraftID:   draft.ID,
	}
}

// quantityAndRate maps extracted numbers onto the line figures: the first
// number is the quantity (default 1), the second the rate, falling back to
// the first when only one number appears (default 0).
func quantityAndRate(numbers []float64) (quantity, rate float64) {
	quantity = 1
	switch {
	case len(numbers) >= 2:
		quantity = numbers[0]
		rate = numbers[1]
	case len(numbers) == 1:
		quantity = numbers[0]
		rate = numbers[0]
	}
	return quantity, rate
}

// reference builds a human-facing draft reference. Uniqueness only needs to
// hold within a session, so a millisecond suffix is enough.
func reference(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixMilli()%100000000)
}
