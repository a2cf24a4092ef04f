package ledger

import (
	"sort"

	"github.com/meridian-erp/ledgercore/internal/shared"
)

// ComputeRunningBalances returns a sorted copy of entries with the running
// balance filled in. Order is (date asc, id asc) with unsaved rows last;
// ties keep insertion order. Invoice and manual rows add their outstanding
// balance, payments subtract their credited amount. Each running total is
// rounded to two decimals. Pure and idempotent.
func ComputeRunningBalances(entries []Entry) []Entry {
	out := append([]Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		switch {
		case a.Persisted() && b.Persisted():
			return *a.ID < *b.ID
		case a.Persisted():
			return true
		case b.Persisted():
			return false
		default:
			return false
		}
	})

	var running float64
	for i := range out {
		if out[i].Type == EntryPayment {
			running -= out[i].CreditedAmount
		} else {
			running += out[i].BalanceRemaining
		}
		running = shared.Round2(running)
		out[i].RunningBalance = running
	}
	return out
}
