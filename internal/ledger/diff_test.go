package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffPartitionsNewAndDirty(t *testing.T) {
	canonical := []Entry{
		{ID: id(1), Type: EntryInvoice, Date: day("2024-01-01"), InvoiceTotal: 100, BalanceRemaining: 100},
		{ID: id(2), Type: EntryManual, Date: day("2024-01-02"), InvoiceTotal: 50, BalanceRemaining: 50},
		{ID: id(3), Type: EntryPayment, Date: day("2024-01-03"), CreditedAmount: 25},
	}
	working := cloneEntries(canonical)
	working[1].Description = "corrected"
	working = append(working, Entry{LocalKey: "local-1", Type: EntryPayment, Date: day("2024-01-04")})

	news, updates := Diff(canonical, working)
	require.Len(t, news, 1)
	require.Equal(t, "local-1", news[0].LocalKey)
	require.Len(t, updates, 1)
	require.Equal(t, int64(2), *updates[0].ID)
}

func TestDiffIgnoresInvoiceRowEdits(t *testing.T) {
	canonical := []Entry{
		{ID: id(1), Type: EntryInvoice, Date: day("2024-01-01"), InvoiceTotal: 100, BalanceRemaining: 100},
	}
	working := cloneEntries(canonical)
	working[0].Description = "should never be sent"

	news, updates := Diff(canonical, working)
	require.Empty(t, news)
	require.Empty(t, updates)
}

func TestDiffCleanWorkingCopyIsEmpty(t *testing.T) {
	canonical := []Entry{
		{ID: id(1), Type: EntryManual, Date: day("2024-01-01"), InvoiceTotal: 10, BalanceRemaining: 10},
		{ID: id(2), Type: EntryPayment, Date: day("2024-01-02"), CreditedAmount: 5},
	}
	news, updates := Diff(canonical, cloneEntries(canonical))
	require.Empty(t, news)
	require.Empty(t, updates)
}

func TestDiffManualInvoiceRowUpdates(t *testing.T) {
	canonical := []Entry{
		{ID: id(7), Type: EntryInvoice, IsManual: true, Date: day("2024-01-01"), InvoiceTotal: 10, BalanceRemaining: 10},
	}
	working := cloneEntries(canonical)
	working[0].TotalReceived = 4
	working[0].BalanceRemaining = 6

	news, updates := Diff(canonical, working)
	require.Empty(t, news)
	require.Len(t, updates, 1)
}
