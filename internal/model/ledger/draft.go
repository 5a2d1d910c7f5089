package ledger

import "time"

// Kind identifies what a draft transaction will become once saved.
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
	KindParty    Kind = "party"
	KindItem     Kind = "item"
)

// LineItem is a single billed line on a sale or purchase draft.
//
// TaxAmount and Total are derived: TaxAmount = Quantity*Rate*GSTPercent/100,
// Total = Quantity*Rate + TaxAmount. They are recomputed whenever quantity,
// rate or GST change; they are never edited directly.
type LineItem struct {
	ItemName   string  `json:"itemName"`
	Quantity   float64 `json:"quantity"`
	Rate       float64 `json:"rate"`
	GSTPercent float64 `json:"gstPercent"`
	TaxAmount  float64 `json:"taxAmount"`
	Total      float64 `json:"total"`
}

// DraftTransaction is an unsaved candidate record built from an utterance.
// It lives in the session until it is committed or overwritten by a new
// command; modification replaces it wholesale, never patches it in place.
type DraftTransaction struct {
	ID              string       `json:"id"`
	Kind            Kind         `json:"kind"`
	Reference       string       `json:"reference,omitempty"`
	PartyName       string       `json:"partyName,omitempty"`
	Items           []LineItem   `json:"items,omitempty"`
	Subtotal        float64      `json:"subtotal"`
	TotalTax        float64      `json:"totalTax"`
	NetTotal        float64      `json:"netTotal"`
	PaymentReceived float64      `json:"paymentReceived"`
	BalanceDue      float64      `json:"balanceDue"`
	Party           *PartyRecord `json:"party,omitempty"`
	Item            *ItemRecord  `json:"item,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
}
