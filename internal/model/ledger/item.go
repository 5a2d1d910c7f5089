package ledger

// ItemRecord is a product master-data entry. HSNCode is the opaque
// product-classification code used on GST invoices.
type ItemRecord struct {
	Name          string  `json:"name"`
	HSNCode       string  `json:"hsnCode,omitempty"`
	SalesPrice    float64 `json:"salesPrice"`
	PurchasePrice float64 `json:"purchasePrice"`
	Unit          string  `json:"unit,omitempty"`
}
