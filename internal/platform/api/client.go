// Package api implements the typed REST client for the ERP backend. It is
// the only place that knows the wire contract; status codes are mapped into
// the shared error taxonomy so callers never inspect HTTP responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/meridian-erp/ledgercore/internal/shared"
)

// PartyKind selects which ledger a party belongs to.
type PartyKind string

// Party kinds.
const (
	PartyCustomer PartyKind = "customer"
	PartySupplier PartyKind = "supplier"
)

// PartyRef identifies one customer or supplier account.
type PartyRef struct {
	Kind PartyKind
	ID   int64
}

func (p PartyRef) ledgerPath() string {
	if p.Kind == PartySupplier {
		return "/api/supplier-ledger"
	}
	return "/api/customer-ledger"
}

func (p PartyRef) idParam() string {
	if p.Kind == PartySupplier {
		return "supplier_id"
	}
	return "customer_id"
}

// Client wraps interactions with the ERP REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// LedgerQuery scopes a ledger load to one party and date range.
type LedgerQuery struct {
	Party PartyRef
	From  string // 2006-01-02, empty for open-ended
	To    string
}

// LoadLedger fetches a party's ledger entries and summary aggregates.
func (c *Client) LoadLedger(ctx context.Context, q LedgerQuery) (LedgerPayload, error) {
	const op = "load ledger"
	values := url.Values{}
	values.Set(q.Party.idParam(), strconv.FormatInt(q.Party.ID, 10))
	if q.From != "" {
		values.Set("from", q.From)
	}
	if q.To != "" {
		values.Set("to", q.To)
	}

	var payload LedgerPayload
	body, err := c.do(ctx, op, http.MethodGet, q.Party.ledgerPath()+"?"+values.Encode(), nil)
	if err != nil {
		return LedgerPayload{}, err
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return LedgerPayload{}, &shared.NetworkError{Op: op, Err: err}
	}
	return payload, nil
}

// RebuildLedger asks the server to regenerate invoice-derived rows for the party.
func (c *Client) RebuildLedger(ctx context.Context, party PartyRef) error {
	body := map[string]int64{party.idParam(): party.ID}
	_, err := c.do(ctx, "rebuild ledger", http.MethodPost, party.ledgerPath()+"/rebuild", body)
	return err
}

// CreateEntry persists one new ledger entry and returns the created row.
func (c *Client) CreateEntry(ctx context.Context, party PartyRef, entry EntryPayload) (EntryPayload, error) {
	const op = "save ledger entry"
	entry.setParty(party)
	body, err := c.do(ctx, op, http.MethodPost, party.ledgerPath(), entry)
	if err != nil {
		return EntryPayload{}, err
	}
	var created EntryPayload
	if err := json.Unmarshal(body, &created); err != nil {
		return EntryPayload{}, &shared.NetworkError{Op: op, Err: err}
	}
	return created, nil
}

// BulkUpdateEntries updates all dirty persisted rows in one call.
func (c *Client) BulkUpdateEntries(ctx context.Context, party PartyRef, rows []EntryPayload) error {
	for i := range rows {
		rows[i].setParty(party)
	}
	_, err := c.do(ctx, "update ledger entries", http.MethodPut, party.ledgerPath()+"/bulk", map[string]any{"rows": rows})
	return err
}

// DeleteEntry removes one persisted ledger entry.
func (c *Client) DeleteEntry(ctx context.Context, party PartyRef, id int64) error {
	_, err := c.do(ctx, "delete ledger entry", http.MethodDelete, party.ledgerPath()+"/"+strconv.FormatInt(id, 10), nil)
	return err
}

// DeleteResource removes one row of a listed business resource.
func (c *Client) DeleteResource(ctx context.Context, resource shared.Resource, id int64) error {
	op := "delete " + string(resource)
	_, err := c.do(ctx, op, http.MethodDelete, "/api/"+string(resource)+"/"+strconv.FormatInt(id, 10), nil)
	return err
}

// ConfirmPassword re-submits the account password ahead of a destructive
// action. A mismatch maps to ErrIncorrectPassword.
func (c *Client) ConfirmPassword(ctx context.Context, password string) error {
	const op = "confirm password"
	_, err := c.do(ctx, op, http.MethodPost, "/api/auth/confirm-password", map[string]string{"password": password})
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%s: %w", op, shared.ErrIncorrectPassword)
	}
	return err
}

// ListQuery carries pagination and filter inputs for a resource listing.
type ListQuery struct {
	Page    int
	PerPage int
	Filters map[string]string
}

// ListResource fetches one page of a business resource. Both the paginated
// envelope and the legacy raw-array body are accepted.
func (c *Client) ListResource(ctx context.Context, resource shared.Resource, q ListQuery) (ListPayload, error) {
	op := "load " + string(resource) + " list"
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}
	for k, v := range q.Filters {
		if v != "" {
			values.Set(k, v)
		}
	}
	path := "/api/" + string(resource)
	if enc := values.Encode(); enc != "" {
		path += "?" + enc
	}

	body, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return ListPayload{}, err
	}
	payload, err := decodeListBody(body)
	if err != nil {
		return ListPayload{}, &shared.NetworkError{Op: op, Err: err}
	}
	return payload, nil
}

// do issues one request and maps the response status into the error
// taxonomy. The returned bytes are the raw success body.
func (c *Client) do(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &shared.NetworkError{Op: op, Err: err}
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &shared.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Context cancellation stays reachable through Unwrap so callers
		// can suppress aborted requests.
		return nil, &shared.NetworkError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &shared.NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode < http.StatusBadRequest {
		return raw, nil
	}

	switch resp.StatusCode {
	case http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", op, shared.ErrPermissionDenied)
	case http.StatusUnprocessableEntity:
		return nil, decodeValidation(raw)
	default:
		return nil, &shared.NetworkError{Op: op, Status: resp.StatusCode}
	}
}

func decodeValidation(raw []byte) error {
	var payload struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && len(payload.Errors) > 0 {
		return &shared.ValidationError{Fields: payload.Errors}
	}
	if payload.Message != "" {
		return &shared.ValidationError{Fields: map[string][]string{"general": {payload.Message}}}
	}
	return &shared.ValidationError{Fields: map[string][]string{"general": {"The given data was invalid"}}}
}

func decodeListBody(raw []byte) (ListPayload, error) {
	var envelope struct {
		Data     []map[string]any `json:"data"`
		Total    int              `json:"total"`
		LastPage int              `json:"last_page"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		if envelope.Total == 0 {
			envelope.Total = len(envelope.Data)
		}
		return ListPayload{Data: envelope.Data, Total: envelope.Total, LastPage: envelope.LastPage}, nil
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return ListPayload{}, err
	}
	return ListPayload{Data: rows, Total: len(rows)}, nil
}
