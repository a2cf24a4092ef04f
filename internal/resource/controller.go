// Package resource implements the permission-gated controller shared by
// every business-resource listing: capability-gated mutations, debounced
// cancellable list fetching, and the two-step delete confirmation flow.
package resource

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/meridian-erp/ledgercore/internal/platform/api"
	"github.com/meridian-erp/ledgercore/internal/shared"
)

// ListStrategy selects how a resource list is filtered and paginated.
type ListStrategy int

// List strategies. Server paging forwards page/filters on every fetch;
// client paging fetches once and filters/slices locally. Both must produce
// the same page for the same inputs.
const (
	ServerPaged ListStrategy = iota
	ClientPaged
)

// ListFilter captures the page's filter inputs.
type ListFilter struct {
	Search string
	From   string // 2006-01-02
	To     string
	Extra  map[string]string
}

func (f ListFilter) values() map[string]string {
	out := make(map[string]string, len(f.Extra)+3)
	for k, v := range f.Extra {
		out[k] = v
	}
	if f.Search != "" {
		out["search"] = f.Search
	}
	if f.From != "" {
		out["from"] = f.From
	}
	if f.To != "" {
		out["to"] = f.To
	}
	return out
}

// ListQuery combines pagination with a filter.
type ListQuery struct {
	Page    int
	PerPage int
	Filter  ListFilter
}

// ListPage is one displayed page of rows.
type ListPage struct {
	Rows       []map[string]any
	Pagination shared.Pagination
}

// Transport is the slice of the API client the controller depends on.
type Transport interface {
	ListResource(ctx context.Context, resource shared.Resource, q api.ListQuery) (api.ListPayload, error)
	DeleteResource(ctx context.Context, resource shared.Resource, id int64) error
}

// Controller owns the list state of one business resource. All mutating
// paths re-check the capability even when invoked directly, so a scripted
// call cannot bypass the gate.
type Controller struct {
	logger    *slog.Logger
	transport Transport
	resource  shared.Resource
	caps      shared.Capability
	strategy  ListStrategy
	debounce  time.Duration

	onPage  func(ListPage)
	onError func(error)

	mu       sync.Mutex
	query    ListQuery
	cache    []map[string]any // full fetch, client-paged strategy only
	cached   bool
	timer    *time.Timer
	inflight context.CancelFunc
	rootCtx  context.Context
	stop     context.CancelFunc
}

// ControllerParams groups constructor dependencies.
type ControllerParams struct {
	Logger    *slog.Logger
	Transport Transport
	Resource  shared.Resource
	Caps      shared.Capability
	Strategy  ListStrategy
	Debounce  time.Duration
	OnPage    func(ListPage)
	OnError   func(error)
}

// NewController builds a controller with its capability resolved up front.
func NewController(p ControllerParams) *Controller {
	if p.Debounce <= 0 {
		p.Debounce = 275 * time.Millisecond
	}
	root, stop := context.WithCancel(context.Background())
	return &Controller{
		logger:    p.Logger,
		transport: p.Transport,
		resource:  p.Resource,
		caps:      p.Caps,
		strategy:  p.Strategy,
		debounce:  p.Debounce,
		onPage:    p.OnPage,
		onError:   p.OnError,
		rootCtx:   root,
		stop:      stop,
	}
}

// Can returns the capability set, for rendering affordances.
func (c *Controller) Can() shared.Capability { return c.caps }

// Resource returns the controlled resource name.
func (c *Controller) Resource() shared.Resource { return c.resource }

// Load fetches the requested page immediately, canceling any fetch still in
// flight. Without the view capability no request is made.
func (c *Controller) Load(ctx context.Context, q ListQuery) (ListPage, error) {
	if !c.caps.View {
		return ListPage{}, fmt.Errorf("load %s list: %w", c.resource, shared.ErrPermissionDenied)
	}

	c.mu.Lock()
	c.query = q
	fetchCtx := c.beginFetchLocked(ctx)
	c.mu.Unlock()

	return c.fetch(fetchCtx, q)
}

// SetFilter schedules a debounced refetch for the new filter. An earlier
// pending cycle is superseded; the fetch it may have started is aborted
// before the new one is issued, so a stale response can never land.
func (c *Controller) SetFilter(f ListFilter) {
	if !c.caps.View {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Filter = f
	c.query.Page = 1
	q := c.query
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		fetchCtx := c.beginFetchLocked(c.rootCtx)
		c.mu.Unlock()

		page, err := c.fetch(fetchCtx, q)
		if err != nil {
			if shared.IsAborted(err) {
				return
			}
			if c.logger != nil {
				c.logger.Error("refetch list", slog.String("resource", string(c.resource)), slog.Any("error", err))
			}
			if c.onError != nil {
				c.onError(err)
			}
			return
		}
		if c.onPage != nil {
			c.onPage(page)
		}
	})
}

// SetPage fetches another page of the current filter without debouncing.
func (c *Controller) SetPage(ctx context.Context, page int) (ListPage, error) {
	c.mu.Lock()
	q := c.query
	q.Page = page
	c.mu.Unlock()
	return c.Load(ctx, q)
}

// Close aborts the pending debounce cycle and any outstanding fetch. Call
// on unmount.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.stop()
}

// DeleteRow builds the two-step delete flow for the given row. The actual
// DELETE call fires only after the flow passes password confirmation.
func (c *Controller) DeleteRow(id int64, confirmer PasswordConfirmer) (*DeleteFlow, error) {
	if !c.caps.Delete {
		return nil, fmt.Errorf("delete %s: %w", c.resource, shared.ErrPermissionDenied)
	}
	return NewDeleteFlow(confirmer, func(ctx context.Context) error {
		if err := c.transport.DeleteResource(ctx, c.resource, id); err != nil {
			return err
		}
		c.spliceCached(id)
		return nil
	}), nil
}

// Guard rejects a mutating action whose capability is absent. It backs the
// scripted-call path; rendering uses Can directly.
func (c *Controller) Guard(action Action) error {
	allowed := false
	switch action {
	case ActionView:
		allowed = c.caps.View
	case ActionCreate:
		allowed = c.caps.Create
	case ActionUpdate:
		allowed = c.caps.Update
	case ActionDelete:
		allowed = c.caps.Delete
	case ActionImport:
		allowed = c.caps.Import
	case ActionExport:
		allowed = c.caps.Export
	}
	if !allowed {
		return fmt.Errorf("%s %s: %w", action, c.resource, shared.ErrPermissionDenied)
	}
	return nil
}

// Action names a gated operation.
type Action string

// Gated actions.
const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionImport Action = "import"
	ActionExport Action = "export"
)

// beginFetchLocked cancels the in-flight fetch and registers a new one.
func (c *Controller) beginFetchLocked(parent context.Context) context.Context {
	if c.inflight != nil {
		c.inflight()
	}
	ctx, cancel := context.WithCancel(parent)
	c.inflight = cancel
	return ctx
}

func (c *Controller) fetch(ctx context.Context, q ListQuery) (ListPage, error) {
	if c.strategy == ClientPaged {
		return c.fetchClientPaged(ctx, q)
	}
	payload, err := c.transport.ListResource(ctx, c.resource, api.ListQuery{
		Page:    q.Page,
		PerPage: q.PerPage,
		Filters: q.Filter.values(),
	})
	if err != nil {
		return ListPage{}, err
	}
	return ListPage{
		Rows:       payload.Data,
		Pagination: shared.NewPagination(q.Page, q.PerPage, payload.Total),
	}, nil
}

// fetchClientPaged fetches everything once, then filters and slices the
// cached rows locally.
func (c *Controller) fetchClientPaged(ctx context.Context, q ListQuery) (ListPage, error) {
	c.mu.Lock()
	cached := c.cached
	rows := c.cache
	c.mu.Unlock()

	if !cached {
		payload, err := c.transport.ListResource(ctx, c.resource, api.ListQuery{})
		if err != nil {
			return ListPage{}, err
		}
		c.mu.Lock()
		c.cache = payload.Data
		c.cached = true
		rows = c.cache
		c.mu.Unlock()
	}

	filtered := filterRows(rows, q.Filter)
	pg := shared.NewPagination(q.Page, q.PerPage, len(filtered))
	start, end := pg.PageBounds()
	return ListPage{Rows: filtered[start:end], Pagination: pg}, nil
}

// Invalidate drops the client-paged cache so the next fetch hits the server.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = nil
	c.cached = false
}

func (c *Controller) spliceCached(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cached {
		return
	}
	out := c.cache[:0]
	for _, row := range c.cache {
		if RowID(row) != id {
			out = append(out, row)
		}
	}
	c.cache = out
}

// filterRows applies the filter the way the server does: free text matches
// any string field case-insensitively, from/to bound the row's date field,
// extra fields match exactly.
func filterRows(rows []map[string]any, f ListFilter) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	for _, row := range rows {
		if needle != "" && !rowMatches(row, needle) {
			continue
		}
		if !dateInRange(row, f.From, f.To) {
			continue
		}
		if !extrasMatch(row, f.Extra) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func rowMatches(row map[string]any, needle string) bool {
	for _, v := range row {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func dateInRange(row map[string]any, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	date, ok := row["date"].(string)
	if !ok {
		return true
	}
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

func extrasMatch(row map[string]any, extra map[string]string) bool {
	for k, want := range extra {
		if want == "" {
			continue
		}
		got, ok := row[k].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// RowID extracts the numeric id of a listed row.
func RowID(row map[string]any) int64 {
	switch v := row["id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// NextAfterDelete picks where a detail page navigates after deleting id:
// the nearest preceding row, or zero meaning fall back to the list index.
func NextAfterDelete(rows []map[string]any, deletedID int64) int64 {
	var previous int64
	for _, row := range rows {
		id := RowID(row)
		if id == deletedID {
			return previous
		}
		previous = id
	}
	return 0
}
