package api

// EntryPayload is the wire shape of one ledger row.
type EntryPayload struct {
	ID               *int64  `json:"id,omitempty"`
	CustomerID       *int64  `json:"customer_id,omitempty"`
	SupplierID       *int64  `json:"supplier_id,omitempty"`
	EntryType        string  `json:"entry_type"`
	EntryDate        string  `json:"entry_date"`
	PostedNumber     string  `json:"posted_number"`
	InvoiceTotal     float64 `json:"invoice_total"`
	TotalReceived    float64 `json:"total_received"`
	BalanceRemaining float64 `json:"balance_remaining"`
	CreditedAmount   float64 `json:"credited_amount"`
	Description      string  `json:"description,omitempty"`
	PaymentRef       string  `json:"payment_ref,omitempty"`
	IsManual         bool    `json:"is_manual"`
}

func (e *EntryPayload) setParty(party PartyRef) {
	id := party.ID
	if party.Kind == PartySupplier {
		e.SupplierID = &id
		return
	}
	e.CustomerID = &id
}

// PartyID returns whichever party id the row carries.
func (e EntryPayload) PartyID() int64 {
	if e.SupplierID != nil {
		return *e.SupplierID
	}
	if e.CustomerID != nil {
		return *e.CustomerID
	}
	return 0
}

// SummaryPayload carries the four server-computed ledger aggregates. They
// are displayed as-is and never recomputed client-side.
type SummaryPayload struct {
	TotalInvoiced     float64 `json:"total_invoiced"`
	ReceivedOnInvoice float64 `json:"received_on_invoice"`
	PaymentsCredited  float64 `json:"payments_credited"`
	NetBalance        float64 `json:"net_balance"`
}

// LedgerPayload is the ledger load response.
type LedgerPayload struct {
	Data    []EntryPayload `json:"data"`
	Summary SummaryPayload `json:"summary"`
}

// ListPayload is one page of a resource listing.
type ListPayload struct {
	Data     []map[string]any
	Total    int
	LastPage int
}
