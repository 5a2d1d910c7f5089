package conversation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sarveshz/munim/backend/internal/ledger"
	ledgermodel "github.com/sarveshz/munim/backend/internal/model/ledger"
	"github.com/sarveshz/munim/backend/internal/nlp/extract"
)

// modifyDraft amends the first line item of the active draft. Exactly one of
// three fields is targeted per utterance; on any failure the draft is left
// untouched and the user gets guidance instead. Only Items[0] is addressable
// from natural language; multi-item drafts stay representable but their
// later lines cannot be amended this way.
func (s *Service) modifyDraft(session *Session, utterance string) Response {
	draft := session.ActiveDraft
	if draft == nil {
		return nothingToModifyResponse()
	}
	if len(draft.Items) == 0 {
		// Party/item master drafts carry no line to amend.
		return modifyGuidanceResponse()
	}

	lower := strings.ToLower(utterance)
	numbers := extract.Numbers(utterance)

	var (
		updated *ledgermodel.DraftTransaction
		field   string
	)
	switch {
	case strings.Contains(lower, "gst") || strings.Contains(lower, "tax"):
		// extract.Numbers never yields negatives, so any extracted
		// value is a valid rate; zero disables the tax line.
		if len(numbers) == 0 {
			return modifyGuidanceResponse()
		}
		updated = recomputeLine(draft, func(item *ledgermodel.LineItem) {
			item.GSTPercent = numbers[0]
		})
		field = fmt.Sprintf("GST to %g%%", numbers[0])

	case strings.Contains(lower, "quantity"):
		if len(numbers) == 0 {
			return modifyGuidanceResponse()
		}
		updated = recomputeLine(draft, func(item *ledgermodel.LineItem) {
			item.Quantity = numbers[0]
		})
		field = fmt.Sprintf("quantity to %g", numbers[0])

	case strings.Contains(lower, "price") || strings.Contains(lower, "rate"):
		if len(numbers) == 0 {
			return modifyGuidanceResponse()
		}
		updated = recomputeLine(draft, func(item *ledgermodel.LineItem) {
			item.Rate = numbers[0]
		})
		field = fmt.Sprintf("price to %s", ledger.FormatAmount(numbers[0]))

	default:
		return modifyGuidanceResponse()
	}

	session.ActiveDraft = updated
	text := fmt.Sprintf("Updated %s. New total %s, balance due %s.",
		field, ledger.FormatAmount(updated.NetTotal), ledger.FormatAmount(updated.BalanceDue))

	return Response{
		Text:        text,
		Suggestions: modifySuggestions,
		Confirm:     s.confirmFor(session, updated),
	}
}

// recomputeLine copies the draft, applies the field change to the first line
// item and rederives every dependent total. The original draft value is
// never mutated; callers swap the session pointer only on success. The copy
// gets a fresh ID so confirm descriptors issued for the old snapshot go
// stale instead of saving figures the user never saw.
func recomputeLine(draft *ledgermodel.DraftTransaction, apply func(*ledgermodel.LineItem)) *ledgermodel.DraftTransaction {
	updated := *draft
	updated.ID = uuid.NewString()
	updated.Items = append([]ledgermodel.LineItem(nil), draft.Items...)

	item := &updated.Items[0]
	apply(item)

	totals := ledger.Compute(item.Quantity, item.Rate, item.GSTPercent, updated.PaymentReceived)
	item.TaxAmount = totals.TaxAmount
	item.Total = totals.NetTotal

	updated.Subtotal = totals.Subtotal
	updated.TotalTax = totals.TaxAmount
	updated.NetTotal = totals.NetTotal
	updated.BalanceDue = totals.BalanceDue
	return &updated
}
