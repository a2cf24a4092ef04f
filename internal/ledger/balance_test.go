package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func id(v int64) *int64 { return &v }

func TestRunningBalanceDateOrder(t *testing.T) {
	entries := []Entry{
		{ID: id(1), Type: EntryInvoice, Date: day("2024-01-01"), InvoiceTotal: 1000, TotalReceived: 200, BalanceRemaining: 800},
		{ID: id(2), Type: EntryPayment, Date: day("2024-01-03"), CreditedAmount: 300},
	}
	out := ComputeRunningBalances(entries)
	require.Len(t, out, 2)
	require.Equal(t, 800.0, out[0].BalanceRemaining)
	require.Equal(t, 800.0, out[0].RunningBalance)
	require.Equal(t, 500.0, out[1].RunningBalance)
}

func TestRunningBalanceIdempotent(t *testing.T) {
	entries := []Entry{
		{ID: id(3), Type: EntryManual, Date: day("2024-02-10"), InvoiceTotal: 150.10, BalanceRemaining: 150.10},
		{ID: id(1), Type: EntryInvoice, Date: day("2024-02-01"), InvoiceTotal: 99.99, BalanceRemaining: 99.99},
		{Type: EntryPayment, Date: day("2024-02-10"), CreditedAmount: 50, LocalKey: "local-a"},
		{ID: id(2), Type: EntryPayment, Date: day("2024-02-05"), CreditedAmount: 20},
	}
	once := ComputeRunningBalances(entries)
	twice := ComputeRunningBalances(once)
	require.Equal(t, once, twice)
}

func TestRunningBalanceStableUnderReorder(t *testing.T) {
	a := Entry{ID: id(1), Type: EntryInvoice, Date: day("2024-03-01"), BalanceRemaining: 100}
	b := Entry{ID: id(2), Type: EntryManual, Date: day("2024-03-01"), BalanceRemaining: 40}
	c := Entry{ID: id(3), Type: EntryPayment, Date: day("2024-03-01"), CreditedAmount: 30}

	first := ComputeRunningBalances([]Entry{a, b, c})
	second := ComputeRunningBalances([]Entry{c, a, b})
	require.Equal(t, first[len(first)-1].RunningBalance, second[len(second)-1].RunningBalance)

	for i := range first {
		require.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestRunningBalanceUnsavedRowsSortLast(t *testing.T) {
	persisted := Entry{ID: id(9), Type: EntryManual, Date: day("2024-04-01"), BalanceRemaining: 10}
	unsaved := Entry{LocalKey: "local-b", Type: EntryPayment, Date: day("2024-04-01"), CreditedAmount: 4}

	out := ComputeRunningBalances([]Entry{unsaved, persisted})
	require.True(t, out[0].Persisted())
	require.False(t, out[1].Persisted())
	require.Equal(t, 10.0, out[0].RunningBalance)
	require.Equal(t, 6.0, out[1].RunningBalance)
}

func TestRunningBalanceRoundsEachStep(t *testing.T) {
	entries := []Entry{
		{ID: id(1), Type: EntryManual, Date: day("2024-05-01"), BalanceRemaining: 0.105},
		{ID: id(2), Type: EntryManual, Date: day("2024-05-02"), BalanceRemaining: 0.105},
	}
	out := ComputeRunningBalances(entries)
	require.Equal(t, 0.11, out[0].RunningBalance)
	require.Equal(t, 0.22, out[1].RunningBalance)
}

func TestRecomputeBalanceNeverNegative(t *testing.T) {
	e := Entry{Type: EntryManual, InvoiceTotal: 100, TotalReceived: 250}
	e.RecomputeBalance()
	require.Equal(t, 0.0, e.BalanceRemaining)

	e = Entry{Type: EntryPayment, InvoiceTotal: 500, TotalReceived: 0, BalanceRemaining: 123}
	e.RecomputeBalance()
	require.Equal(t, 0.0, e.BalanceRemaining)
}
