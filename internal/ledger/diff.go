package ledger

// Diff partitions the working copy against the canonical snapshot into rows
// to create (never persisted) and rows to update (persisted, hand-editable,
// and changed since the last fetch). Pure; neither slice is mutated.
func Diff(canonical, working []Entry) (news, updates []Entry) {
	base := make(map[int64]Entry, len(canonical))
	for _, c := range canonical {
		if c.Persisted() {
			base[*c.ID] = c
		}
	}
	for _, w := range working {
		if !w.Persisted() {
			news = append(news, w)
			continue
		}
		if w.Type == EntryInvoice && !w.IsManual {
			continue
		}
		if c, ok := base[*w.ID]; ok && sameRow(c, w) {
			continue
		}
		updates = append(updates, w)
	}
	return news, updates
}

// sameRow compares the fields a user can change on the ledger screen.
func sameRow(a, b Entry) bool {
	return a.Date.Equal(b.Date) &&
		a.PostedNumber == b.PostedNumber &&
		a.InvoiceTotal == b.InvoiceTotal &&
		a.TotalReceived == b.TotalReceived &&
		a.BalanceRemaining == b.BalanceRemaining &&
		a.CreditedAmount == b.CreditedAmount &&
		a.Description == b.Description &&
		a.PaymentRef == b.PaymentRef
}
