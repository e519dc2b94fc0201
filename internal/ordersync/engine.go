package ordersync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/binhvu284/nobleco-sub000/domain"
	"github.com/binhvu284/nobleco-sub000/internal/api"
)

type State string

const (
	StateNoOrder   State = "NO_ORDER"
	StateCreating  State = "CREATING"
	StateActive    State = "ACTIVE"
	StateFinalized State = "FINALIZED"
)

var (
	ErrNoOrder          = errors.New("no draft order to amend")
	ErrAlreadyFinalized = errors.New("draft order already finalized")
)

// Engine owns the draft-order lifecycle for one checkout activation:
// it creates the order exactly once, coalesces field edits into
// debounced PUTs, and locks the fields in before payment.
//
// Create/load failures are returned to the caller (fatal to the flow);
// debounced amend failures are logged and swallowed (best-effort
// background sync).
type Engine struct {
	api api.OrdersAPI

	Debounce        time.Duration
	HydrationWindow time.Duration

	mu                sync.Mutex
	state             State
	orderID           *int64
	orderNumber       string
	creationInitiated bool // one-shot gate, reset only on failure
	hydratingUntil    time.Time

	pending    domain.OrderPatch
	hasPending bool
	timer      *time.Timer
}

func NewEngine(ordersAPI api.OrdersAPI) *Engine {
	return &Engine{
		api:             ordersAPI,
		Debounce:        500 * time.Millisecond,
		HydrationWindow: time.Second,
		state:           StateNoOrder,
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) OrderID() *int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orderID
}

func (e *Engine) OrderNumber() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orderNumber
}

// CreateDraft posts the initial order for a non-empty cart. The gate
// admits exactly one creation per activation; re-invocations while a
// creation is in flight (or after one succeeded) are no-ops.
func (e *Engine) CreateDraft(ctx context.Context, items []domain.CartItem, totals domain.Totals) error {
	e.mu.Lock()
	if e.creationInitiated || e.orderID != nil {
		e.mu.Unlock()
		return nil
	}
	e.creationInitiated = true
	e.state = StateCreating
	e.mu.Unlock()

	req := &api.CreateOrderRequest{
		CartItems:      api.MapItems(items),
		SubtotalAmount: totals.Subtotal,
		DiscountAmount: totals.Discount,
		TaxAmount:      totals.Tax,
		TotalAmount:    totals.Total,
	}
	resp, err := e.api.CreateOrder(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		// release the gate so a reload can retry
		e.creationInitiated = false
		e.state = StateNoOrder
		return err
	}
	id := resp.ID
	e.orderID = &id
	e.orderNumber = resp.OrderNumber
	e.state = StateActive
	e.hydratingUntil = time.Now().Add(e.HydrationWindow)
	return nil
}

// LoadDraft populates the engine from an existing order, used when
// navigation state carries an orderId (returning from payment).
// Mutually exclusive with CreateDraft per activation.
func (e *Engine) LoadDraft(ctx context.Context, orderID int64) (*domain.DraftOrder, error) {
	e.mu.Lock()
	if e.creationInitiated || e.orderID != nil {
		e.mu.Unlock()
		return nil, nil
	}
	e.creationInitiated = true
	e.state = StateCreating
	e.mu.Unlock()

	resp, err := e.api.GetOrder(ctx, orderID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.creationInitiated = false
		e.state = StateNoOrder
		return nil, err
	}
	id := resp.ID
	e.orderID = &id
	e.orderNumber = resp.OrderNumber
	e.state = StateActive
	e.hydratingUntil = time.Now().Add(e.HydrationWindow)

	draft := &domain.DraftOrder{
		OrderID:         &id,
		OrderNumber:     resp.OrderNumber,
		ShippingAddress: resp.ShippingAddress,
		Notes:           resp.Notes,
		DiscountCode:    resp.DiscountCode,
		SubtotalAmount:  resp.SubtotalAmount,
		DiscountAmount:  resp.DiscountAmount,
		TaxAmount:       resp.TaxAmount,
		TotalAmount:     resp.TotalAmount,
		Items:           api.UnmapItems(resp.Items),
	}
	if resp.Client != nil {
		clientID := resp.Client.ID
		draft.ClientID = &clientID
	}
	return draft, nil
}

// ScheduleAmend coalesces a burst of edits into one PUT: each call
// merges its fields into the pending payload and pushes the timer
// back, so only the state after the last edit is sent. A no-op before
// the order exists and during the hydration window right after
// create/load, when values are being populated rather than edited.
func (e *Engine) ScheduleAmend(patch domain.OrderPatch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.orderID == nil || e.state == StateFinalized {
		return
	}
	if time.Now().Before(e.hydratingUntil) {
		return
	}
	e.pending = e.pending.Merge(patch)
	e.hasPending = true
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.Debounce, e.flushPending)
}

func (e *Engine) flushPending() {
	e.mu.Lock()
	if !e.hasPending || e.orderID == nil {
		e.mu.Unlock()
		return
	}
	patch := e.pending
	orderID := *e.orderID
	e.pending = domain.OrderPatch{}
	e.hasPending = false
	e.timer = nil
	e.mu.Unlock()

	if err := e.api.UpdateOrder(context.Background(), orderID, patch); err != nil {
		log.Printf("background order amend failed for order %d: %v", orderID, err)
	}
}

// AmendNow patches immediately, bypassing both the debounce and the
// hydration suppression. Used for direct user actions (client picked
// from a list, country/region selected).
func (e *Engine) AmendNow(ctx context.Context, patch domain.OrderPatch) error {
	e.mu.Lock()
	if e.orderID == nil {
		e.mu.Unlock()
		return ErrNoOrder
	}
	orderID := *e.orderID
	e.mu.Unlock()

	return e.api.UpdateOrder(ctx, orderID, patch)
}

// Finalize folds any still-pending debounced fields into the given
// patch and sends one synchronous PUT. Its failure blocks navigation
// to the payment step, so the error goes back to the caller.
func (e *Engine) Finalize(ctx context.Context, patch domain.OrderPatch) error {
	e.mu.Lock()
	if e.orderID == nil {
		e.mu.Unlock()
		return ErrNoOrder
	}
	if e.state == StateFinalized {
		e.mu.Unlock()
		return ErrAlreadyFinalized
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.hasPending {
		patch = e.pending.Merge(patch)
		e.pending = domain.OrderPatch{}
		e.hasPending = false
	}
	orderID := *e.orderID
	e.mu.Unlock()

	if err := e.api.UpdateOrder(ctx, orderID, patch); err != nil {
		return err
	}

	e.mu.Lock()
	e.state = StateFinalized
	e.mu.Unlock()
	return nil
}

// Reset discards the in-memory draft (the server-side order is left
// alone). Used when navigation supersedes the current draft with a
// different order id.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.state = StateNoOrder
	e.orderID = nil
	e.orderNumber = ""
	e.creationInitiated = false
	e.pending = domain.OrderPatch{}
	e.hasPending = false
	e.hydratingUntil = time.Time{}
}
