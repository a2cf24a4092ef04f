// Package ledger maintains the locally-editable running-balance view of a
// party's account: entries fetched from the server, local add/edit/delete,
// and batched persistence of outstanding changes.
package ledger

import (
	"math"
	"time"
)

// EntryType discriminates ledger rows. Fixed at creation.
type EntryType string

// Entry types.
const (
	EntryInvoice EntryType = "invoice"
	EntryManual  EntryType = "manual"
	EntryPayment EntryType = "payment"
)

// Entry is one row in a party's running account. Rows without a server ID
// exist only in local state until a save succeeds; LocalKey keeps them
// addressable in the meantime.
type Entry struct {
	ID       *int64
	LocalKey string
	PartyID  int64     `validate:"required,gt=0"`
	Type     EntryType `validate:"required,oneof=invoice manual payment"`
	Date     time.Time `validate:"required"`

	PostedNumber     string
	InvoiceTotal     float64 `validate:"gte=0"`
	TotalReceived    float64 `validate:"gte=0"`
	BalanceRemaining float64 `validate:"gte=0"`
	CreditedAmount   float64 `validate:"gte=0"`

	Description string
	PaymentRef  string
	IsManual    bool

	// RunningBalance is derived client-side and never persisted.
	RunningBalance float64 `validate:"-"`
}

// Persisted reports whether the row exists on the server.
func (e Entry) Persisted() bool { return e.ID != nil }

// Deletable reports whether the row may be removed through the ledger
// screen. Persisted invoice rows disappear only by canceling the source
// invoice.
func (e Entry) Deletable() bool {
	return !e.Persisted() || e.Type != EntryInvoice || e.IsManual
}

// Editable reports whether the field accepts direct edits on this row.
// Invoice rows keep their system-assigned number and amounts.
func (e Entry) Editable(field Field) bool {
	if e.Type == EntryInvoice && !e.IsManual {
		switch field {
		case FieldPostedNumber, FieldInvoiceTotal, FieldTotalReceived:
			return false
		}
	}
	return true
}

// RecomputeBalance re-derives the outstanding amount after a numeric edit.
func (e *Entry) RecomputeBalance() {
	if e.Type == EntryPayment {
		e.BalanceRemaining = 0
		return
	}
	e.BalanceRemaining = math.Max(0, e.InvoiceTotal-e.TotalReceived)
}

// Field names the editable columns of a ledger row.
type Field string

// Editable fields.
const (
	FieldDate           Field = "entry_date"
	FieldPostedNumber   Field = "posted_number"
	FieldInvoiceTotal   Field = "invoice_total"
	FieldTotalReceived  Field = "total_received"
	FieldCreditedAmount Field = "credited_amount"
	FieldDescription    Field = "description"
	FieldPaymentRef     Field = "payment_ref"
)

// Numeric reports whether edits to the field buffer through a shadow value
// until committed.
func (f Field) Numeric() bool {
	switch f {
	case FieldInvoiceTotal, FieldTotalReceived, FieldCreditedAmount:
		return true
	}
	return false
}

// Summary carries the server-computed aggregates for the loaded range.
type Summary struct {
	TotalInvoiced     float64
	ReceivedOnInvoice float64
	PaymentsCredited  float64
	NetBalance        float64
}

// DateLayout is the calendar-date wire format.
const DateLayout = "2006-01-02"
