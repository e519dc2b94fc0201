package checkout

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/binhvu284/nobleco-sub000/domain"
	"github.com/binhvu284/nobleco-sub000/internal/api"
	"github.com/binhvu284/nobleco-sub000/internal/cart"
	"github.com/binhvu284/nobleco-sub000/internal/cartstore"
	"github.com/binhvu284/nobleco-sub000/internal/clients"
	"github.com/binhvu284/nobleco-sub000/internal/location"
	"github.com/binhvu284/nobleco-sub000/internal/ordersync"
	"github.com/binhvu284/nobleco-sub000/internal/payment"
	"github.com/binhvu284/nobleco-sub000/internal/pricing"
)

var ErrNoDraftOrder = errors.New("no draft order for this activation")

// Backend is the full collaborator surface one activation consumes.
type Backend interface {
	api.OrdersAPI
	api.PaymentsAPI
	api.ClientsAPI
}

// Publisher emits checkout lifecycle events. May be nil.
type Publisher interface {
	OrderCreated(ctx context.Context, orderID int64, orderNumber string, total float64)
	OrderPaid(ctx context.Context, orderID int64, orderNumber string)
}

// Activation is one checkout-page visit: it owns the cart snapshot,
// the order sync engine, the location and client pickers, and hands
// over to a payment session when the shopper proceeds.
type Activation struct {
	backend   Backend
	publisher Publisher
	afterPaid func()

	Snapshot *cart.Snapshot
	Engine   *ordersync.Engine
	Resolver *location.Resolver
	Selector *clients.Selector

	mu      sync.Mutex
	notes   string
	address string
	session *payment.Session
}

func NewActivation(backend Backend, store cartstore.Store, sessionKey string, publisher Publisher, validator pricing.DiscountValidator, afterPaid func()) *Activation {
	a := &Activation{
		backend:   backend,
		publisher: publisher,
		afterPaid: afterPaid,
	}
	a.Engine = ordersync.NewEngine(backend)
	a.Snapshot = cart.NewSnapshot(store, sessionKey, a.Engine, validator)
	a.Resolver = location.NewResolver()
	a.Selector = clients.NewSelector(backend, a.Engine)
	return a
}

// Begin activates the checkout view. With an orderID from navigation
// state it reloads that draft (and supersedes any other in-memory
// one); otherwise it creates a draft for a non-empty cart. The two
// paths are mutually exclusive per activation.
func (a *Activation) Begin(ctx context.Context, existingOrderID *int64) error {
	if err := a.Snapshot.Load(ctx); err != nil {
		log.Printf("cart restore failed: %v", err)
	}

	if existingOrderID != nil {
		if current := a.Engine.OrderID(); current != nil && *current != *existingOrderID {
			// a different order arrived via navigation: drop the
			// in-memory draft and its payment session, the
			// server-side order stays
			a.Engine.Reset()
			a.dropSession()
		}
		draft, err := a.Engine.LoadDraft(ctx, *existingOrderID)
		if err != nil {
			return err
		}
		if draft != nil {
			a.hydrate(ctx, draft)
		}
		return nil
	}

	if a.Snapshot.IsEmpty() {
		return nil
	}

	alreadyCreated := a.Engine.OrderID() != nil

	// initial totals are computed without any discount
	totals := pricing.Compute(a.Snapshot.Items(), "", nil)
	if err := a.Engine.CreateDraft(ctx, a.Snapshot.Items(), totals); err != nil {
		return err
	}
	if a.publisher != nil && !alreadyCreated {
		if id := a.Engine.OrderID(); id != nil {
			a.publisher.OrderCreated(ctx, *id, a.Engine.OrderNumber(), totals.Total)
		}
	}
	return nil
}

// hydrate populates local state from a reloaded draft. Amends the
// population triggers are absorbed by the engine's hydration window.
func (a *Activation) hydrate(ctx context.Context, draft *domain.DraftOrder) {
	a.Snapshot.Replace(ctx, draft.Items)
	a.Snapshot.SetDiscountCode(ctx, draft.DiscountCode)
	a.mu.Lock()
	a.notes = draft.Notes
	a.address = draft.ShippingAddress
	a.mu.Unlock()
}

func (a *Activation) Notes() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notes
}

// SetNotes routes through the debounce: typing a note must not issue
// one PUT per keystroke.
func (a *Activation) SetNotes(notes string) {
	a.mu.Lock()
	a.notes = notes
	a.mu.Unlock()
	a.Engine.ScheduleAmend(domain.OrderPatch{Notes: &notes})
}

// ShippingAddress is the composed picker value, or the raw string a
// reloaded draft carried when no picker selection was made since.
func (a *Activation) ShippingAddress() string {
	if addr := a.Resolver.Address(); addr != "" {
		return addr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.address
}

// SelectCountry is a direct user action: the new address is patched
// immediately, bypassing the debounce and the hydration window.
func (a *Activation) SelectCountry(ctx context.Context, country string) {
	a.Resolver.SelectCountry(country)
	a.amendAddress(ctx)
}

func (a *Activation) SelectRegion(ctx context.Context, region string) {
	a.Resolver.SelectRegion(region)
	a.amendAddress(ctx)
}

func (a *Activation) amendAddress(ctx context.Context) {
	addr := a.Resolver.Address()
	a.mu.Lock()
	a.address = addr
	a.mu.Unlock()
	err := a.Engine.AmendNow(ctx, domain.OrderPatch{ShippingAddress: &addr})
	if err != nil && !errors.Is(err, ordersync.ErrNoOrder) {
		log.Printf("shipping address amend failed: %v", err)
	}
}

func (a *Activation) ApplyDiscount(ctx context.Context, code string) {
	a.Snapshot.SetDiscountCode(ctx, code)
}

func (a *Activation) RemoveDiscount(ctx context.Context) {
	a.Snapshot.SetDiscountCode(ctx, "")
}

// ProceedToPayment finalizes the draft synchronously and hands over a
// payment session. A finalize failure blocks the hand-over. Called
// again within the same activation it returns the existing session.
func (a *Activation) ProceedToPayment(ctx context.Context) (*payment.Session, error) {
	orderID := a.Engine.OrderID()
	if orderID == nil {
		return nil, ErrNoDraftOrder
	}

	a.mu.Lock()
	if a.session != nil && a.session.OrderID() == *orderID {
		existing := a.session
		a.mu.Unlock()
		return existing, nil
	}
	notes := a.notes
	a.mu.Unlock()

	// a session for another order is stale: its poll loop must not
	// outlive the hand-over
	a.dropSession()

	totals := a.Snapshot.Totals()
	code := a.Snapshot.DiscountCode()
	addr := a.ShippingAddress()
	patch := domain.OrderPatch{
		Notes:           &notes,
		ShippingAddress: &addr,
		DiscountCode:    &code,
		SubtotalAmount:  &totals.Subtotal,
		DiscountAmount:  &totals.Discount,
		TaxAmount:       &totals.Tax,
		TotalAmount:     &totals.Total,
		Items:           a.Snapshot.Items(),
	}
	if err := a.Engine.Finalize(ctx, patch); err != nil {
		return nil, err
	}

	var pub payment.EventPublisher
	if a.publisher != nil {
		pub = a.publisher
	}
	session := payment.NewSession(a.backend, *orderID, totals.Total, a.Snapshot, pub, a.afterPaid)

	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	return session, nil
}

// dropSession stops and forgets the current payment session, if any.
func (a *Activation) dropSession() {
	a.mu.Lock()
	session := a.session
	a.session = nil
	a.mu.Unlock()
	if session != nil {
		session.Stop()
	}
}

// Session returns the current payment session, if any.
func (a *Activation) Session() *payment.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Close stops any timers the activation owns (unmount).
func (a *Activation) Close() {
	a.dropSession()
	a.Engine.Reset()
}
