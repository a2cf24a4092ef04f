package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/meridian-erp/ledgercore/internal/platform/api"
	"github.com/meridian-erp/ledgercore/internal/resource"
	"github.com/meridian-erp/ledgercore/internal/shared"
)

// Transport defines the API calls the engine depends on.
type Transport interface {
	LoadLedger(ctx context.Context, q api.LedgerQuery) (api.LedgerPayload, error)
	RebuildLedger(ctx context.Context, party api.PartyRef) error
	CreateEntry(ctx context.Context, party api.PartyRef, entry api.EntryPayload) (api.EntryPayload, error)
	BulkUpdateEntries(ctx context.Context, party api.PartyRef, rows []api.EntryPayload) error
	DeleteEntry(ctx context.Context, party api.PartyRef, id int64) error
}

// Engine owns the editable ledger view for a single party. It keeps two
// tiers of state: canonical (as last fetched) and working (as edited); the
// diff between them drives BulkSave. Every mutating operation checks its
// capability before touching the transport.
type Engine struct {
	logger    *slog.Logger
	transport Transport
	caps      shared.Capability
	party     api.PartyRef
	validate  *validator.Validate

	loads singleflight.Group

	mu        sync.Mutex
	canonical []Entry
	working   []Entry
	summary   Summary
	shadows   map[string]string
	from, to  time.Time
}

// NewEngine builds an engine for one party with its capability resolved up
// front.
func NewEngine(logger *slog.Logger, transport Transport, caps shared.Capability, party api.PartyRef) *Engine {
	return &Engine{
		logger:    logger,
		transport: transport,
		caps:      caps,
		party:     party,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		shadows:   make(map[string]string),
	}
}

// Party returns the account this engine edits.
func (e *Engine) Party() api.PartyRef { return e.party }

// Can returns the resolved capability set.
func (e *Engine) Can() shared.Capability { return e.caps }

// Load replaces the local entry list with the server's for the date range.
// Concurrent loads for the same range collapse into one request. On any
// failure the previous state is left untouched.
func (e *Engine) Load(ctx context.Context, from, to time.Time) error {
	if !e.caps.View {
		return fmt.Errorf("load ledger: %w", shared.ErrPermissionDenied)
	}

	q := api.LedgerQuery{Party: e.party, From: formatDate(from), To: formatDate(to)}
	key := fmt.Sprintf("%s:%d:%s:%s", e.party.Kind, e.party.ID, q.From, q.To)

	resultChan := e.loads.DoChan(key, func() (any, error) {
		return e.transport.LoadLedger(ctx, q)
	})
	var payload api.LedgerPayload
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		payload = res.Val.(api.LedgerPayload)
	}

	entries := make([]Entry, 0, len(payload.Data))
	for _, row := range payload.Data {
		entry, err := fromPayload(row)
		if err != nil {
			return &shared.NetworkError{Op: "load ledger", Err: err}
		}
		entries = append(entries, entry)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.canonical = entries
	e.working = cloneEntries(entries)
	e.summary = Summary{
		TotalInvoiced:     payload.Summary.TotalInvoiced,
		ReceivedOnInvoice: payload.Summary.ReceivedOnInvoice,
		PaymentsCredited:  payload.Summary.PaymentsCredited,
		NetBalance:        payload.Summary.NetBalance,
	}
	e.shadows = make(map[string]string)
	e.from, e.to = from, to
	return nil
}

// Entries returns the working rows with running balances computed, in
// display order.
func (e *Engine) Entries() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputeRunningBalances(e.working)
}

// Summary returns the server-provided aggregates as loaded. They are
// independent of the client-derived running balance column.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary
}

// Len returns the number of working rows.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.working)
}

// EntryAt returns a copy of the working row at index.
func (e *Engine) EntryAt(index int) (Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.working) {
		return Entry{}, fmt.Errorf("entry index %d out of range: %w", index, shared.ErrInvalidOperation)
	}
	return e.working[index], nil
}

// AddLocalEntry appends an unsaved manual or payment row dated today with
// zeroed amounts. The row lives only in local state until BulkSave.
func (e *Engine) AddLocalEntry(entryType EntryType) (Entry, error) {
	if entryType != EntryManual && entryType != EntryPayment {
		return Entry{}, fmt.Errorf("cannot add %q rows by hand: %w", entryType, shared.ErrInvalidOperation)
	}
	if !e.caps.Create {
		return Entry{}, fmt.Errorf("add ledger entry: %w", shared.ErrPermissionDenied)
	}
	entry := Entry{
		LocalKey: uuid.NewString(),
		PartyID:  e.party.ID,
		Type:     entryType,
		Date:     truncateDate(time.Now()),
		IsManual: true,
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.working = append(e.working, entry)
	return entry, nil
}

// SetField writes a free-text or date field directly. Numeric fields are
// buffered as raw shadow text so a half-typed value like "12." survives the
// keystroke; CommitNumber coerces them.
func (e *Engine) SetField(index int, field Field, raw string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.working) {
		return fmt.Errorf("entry index %d out of range: %w", index, shared.ErrInvalidOperation)
	}
	entry := &e.working[index]
	if !entry.Editable(field) {
		return fmt.Errorf("%s is read-only on posted invoice rows: %w", field, shared.ErrInvalidOperation)
	}

	if field.Numeric() {
		e.shadows[shadowKey(*entry, field)] = raw
		return nil
	}

	switch field {
	case FieldDate:
		parsed, err := time.Parse(DateLayout, raw)
		if err != nil {
			return &shared.ValidationError{Fields: map[string][]string{string(FieldDate): {"must be a valid date"}}}
		}
		entry.Date = parsed
	case FieldPostedNumber:
		entry.PostedNumber = raw
	case FieldDescription:
		entry.Description = raw
	case FieldPaymentRef:
		entry.PaymentRef = raw
	default:
		return fmt.Errorf("unknown field %q: %w", field, shared.ErrInvalidOperation)
	}
	return nil
}

// ShadowValue returns the uncommitted raw text for a numeric field, if any.
func (e *Engine) ShadowValue(index int, field Field) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.working) {
		return "", false
	}
	raw, ok := e.shadows[shadowKey(e.working[index], field)]
	return raw, ok
}

// CommitNumber coerces the buffered shadow text into the numeric field.
// Empty or unparseable input becomes zero; the row's outstanding balance is
// re-derived afterwards.
func (e *Engine) CommitNumber(index int, field Field) error {
	if !field.Numeric() {
		return fmt.Errorf("%s is not numeric: %w", field, shared.ErrInvalidOperation)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.working) {
		return fmt.Errorf("entry index %d out of range: %w", index, shared.ErrInvalidOperation)
	}
	entry := &e.working[index]
	key := shadowKey(*entry, field)
	raw, ok := e.shadows[key]
	if !ok {
		return nil
	}
	delete(e.shadows, key)

	value := shared.ParseAmount(raw)
	switch field {
	case FieldInvoiceTotal:
		entry.InvoiceTotal = value
	case FieldTotalReceived:
		entry.TotalReceived = value
	case FieldCreditedAmount:
		entry.CreditedAmount = value
	}
	entry.RecomputeBalance()
	return nil
}

// BulkSave persists outstanding local changes: one create call per unsaved
// row, in order, then a single batched update for all dirty persisted rows.
// Each successful create is promoted into canonical state with its server id
// immediately, so a failure partway through the queue leaves the remaining
// rows intact and a retry re-issues only the rows that never made it. On
// full success the ledger reloads to reconcile with what the server actually
// persisted; no reload happens on failure.
func (e *Engine) BulkSave(ctx context.Context) error {
	e.mu.Lock()
	news, updates := Diff(e.canonical, e.working)
	from, to := e.from, e.to
	e.mu.Unlock()

	if len(news) == 0 && len(updates) == 0 {
		return nil
	}
	if len(news) > 0 && !e.caps.Create {
		return fmt.Errorf("save new ledger entries: %w", shared.ErrPermissionDenied)
	}
	if len(updates) > 0 && !e.caps.Update {
		return fmt.Errorf("update ledger entries: %w", shared.ErrPermissionDenied)
	}

	for _, rows := range [][]Entry{news, updates} {
		for _, row := range rows {
			if err := e.validateEntry(row); err != nil {
				return err
			}
		}
	}

	for _, row := range news {
		created, err := e.transport.CreateEntry(ctx, e.party, toPayload(row))
		if err != nil {
			if e.logger != nil && !shared.IsAborted(err) {
				e.logger.Error("create ledger entry", slog.Any("error", err))
			}
			return err
		}
		e.promoteCreated(row.LocalKey, created.ID)
	}

	if len(updates) > 0 {
		rows := make([]api.EntryPayload, 0, len(updates))
		for _, row := range updates {
			rows = append(rows, toPayload(row))
		}
		if err := e.transport.BulkUpdateEntries(ctx, e.party, rows); err != nil {
			if e.logger != nil && !shared.IsAborted(err) {
				e.logger.Error("bulk update ledger entries", slog.Any("error", err))
			}
			return err
		}
	}

	return e.Load(ctx, from, to)
}

// DeleteEntry removes the row at index. Unsaved rows are removed locally
// with no network traffic and a nil flow is returned. Persisted rows return
// the two-step flow that must pass password confirmation before the DELETE
// call fires. Posted invoice rows are rejected outright.
func (e *Engine) DeleteEntry(index int, confirmer resource.PasswordConfirmer) (*resource.DeleteFlow, error) {
	if !e.caps.Delete {
		return nil, fmt.Errorf("delete ledger entry: %w", shared.ErrPermissionDenied)
	}

	e.mu.Lock()
	if index < 0 || index >= len(e.working) {
		e.mu.Unlock()
		return nil, fmt.Errorf("entry index %d out of range: %w", index, shared.ErrInvalidOperation)
	}
	entry := e.working[index]
	if !entry.Deletable() {
		e.mu.Unlock()
		return nil, fmt.Errorf("posted invoice rows can only be removed by canceling the invoice: %w", shared.ErrInvalidOperation)
	}
	if !entry.Persisted() {
		e.working = append(e.working[:index], e.working[index+1:]...)
		e.mu.Unlock()
		return nil, nil
	}
	e.mu.Unlock()

	id := *entry.ID
	return resource.NewDeleteFlow(confirmer, func(ctx context.Context) error {
		if err := e.transport.DeleteEntry(ctx, e.party, id); err != nil {
			return err
		}
		e.mu.Lock()
		e.working = spliceByID(e.working, id)
		e.canonical = spliceByID(e.canonical, id)
		e.mu.Unlock()
		return nil
	}), nil
}

// Rebuild asks the server to regenerate invoice-derived rows from the
// canonical source invoices, then reloads.
func (e *Engine) Rebuild(ctx context.Context) error {
	if !e.caps.Update {
		return fmt.Errorf("rebuild ledger: %w", shared.ErrPermissionDenied)
	}
	if err := e.transport.RebuildLedger(ctx, e.party); err != nil {
		return err
	}
	e.mu.Lock()
	from, to := e.from, e.to
	e.mu.Unlock()
	return e.Load(ctx, from, to)
}

// Dirty reports whether BulkSave has anything to persist.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	news, updates := Diff(e.canonical, e.working)
	return len(news) > 0 || len(updates) > 0
}

// promoteCreated marks a just-created local row as persisted. Without this,
// a save that fails after some creates succeed would leave those rows
// looking unsaved, and a retry would create them on the server twice.
func (e *Engine) promoteCreated(localKey string, serverID *int64) {
	if serverID == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.working {
		if e.working[i].LocalKey != localKey {
			continue
		}
		e.working[i].ID = serverID
		e.canonical = append(e.canonical, e.working[i])
		return
	}
}

func (e *Engine) validateEntry(entry Entry) error {
	err := e.validate.Struct(entry)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], fmt.Sprintf("failed %s validation", fe.Tag()))
		}
		return &shared.ValidationError{Fields: fields}
	}
	return err
}

func shadowKey(entry Entry, field Field) string {
	return entry.LocalKey + ":" + string(field)
}

func cloneEntries(entries []Entry) []Entry {
	return append([]Entry(nil), entries...)
}

func spliceByID(entries []Entry, id int64) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Persisted() && *e.ID == id {
			continue
		}
		out = append(out, e)
	}
	return out
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func fromPayload(row api.EntryPayload) (Entry, error) {
	date, err := time.Parse(DateLayout, row.EntryDate)
	if err != nil {
		return Entry{}, fmt.Errorf("parse entry date %q: %w", row.EntryDate, err)
	}
	return Entry{
		ID:               row.ID,
		LocalKey:         uuid.NewString(),
		PartyID:          row.PartyID(),
		Type:             EntryType(row.EntryType),
		Date:             date,
		PostedNumber:     row.PostedNumber,
		InvoiceTotal:     row.InvoiceTotal,
		TotalReceived:    row.TotalReceived,
		BalanceRemaining: row.BalanceRemaining,
		CreditedAmount:   row.CreditedAmount,
		Description:      row.Description,
		PaymentRef:       row.PaymentRef,
		IsManual:         row.IsManual,
	}, nil
}

func toPayload(entry Entry) api.EntryPayload {
	return api.EntryPayload{
		ID:               entry.ID,
		EntryType:        string(entry.Type),
		EntryDate:        entry.Date.Format(DateLayout),
		PostedNumber:     entry.PostedNumber,
		InvoiceTotal:     entry.InvoiceTotal,
		TotalReceived:    entry.TotalReceived,
		BalanceRemaining: entry.BalanceRemaining,
		CreditedAmount:   entry.CreditedAmount,
		Description:      entry.Description,
		PaymentRef:       entry.PaymentRef,
		IsManual:         entry.IsManual,
	}
}
