package ledger

// PartyRecord is a customer or supplier master-data entry. GSTIN is carried
// as an opaque registration string; it is validated for shape only.
type PartyRecord struct {
	Name           string  `json:"name"`
	GSTIN          string  `json:"gstin,omitempty"`
	OpeningBalance float64 `json:"openingBalance"`
	Phone          string  `json:"phone,omitempty"`
	Email          string  `json:"email,omitempty"`
	Address        string  `json:"address,omitempty"`
}
