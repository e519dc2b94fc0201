package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/binhvu284/nobleco-sub000/domain"
	"github.com/binhvu284/nobleco-sub000/internal/cartstore"
	"github.com/binhvu284/nobleco-sub000/internal/pricing"
)

// Amender receives the recomputed money fields and item list after
// every cart mutation. The sync engine behind it decides whether an
// order exists to patch.
type Amender interface {
	ScheduleAmend(patch domain.OrderPatch)
}

// Snapshot is the browsing session's cart: an ordered list of
// (product, quantity) lines, mirrored to a client-local store under a
// fixed key. Mutation order is: recompute totals, schedule the order
// patch, persist locally. Local persistence failures only get logged;
// the in-memory cart stays valid for the current session.
type Snapshot struct {
	store   cartstore.Store
	key     string
	amender Amender

	mu           sync.Mutex
	items        []domain.CartItem
	discountCode string
	validator    pricing.DiscountValidator
}

func NewSnapshot(store cartstore.Store, key string, amender Amender, validator pricing.DiscountValidator) *Snapshot {
	if validator == nil {
		validator = pricing.DefaultValidator
	}
	return &Snapshot{
		store:     store,
		key:       key,
		amender:   amender,
		validator: validator,
	}
}

// Load restores the persisted cart, if any. A missing entry is a
// fresh session, not an error.
func (s *Snapshot) Load(ctx context.Context) error {
	items, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, cartstore.ErrCartNotFound) {
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *Snapshot) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Snapshot) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Snapshot) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Compute(s.items, s.discountCode, s.validator)
}

func (s *Snapshot) DiscountCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discountCode
}

// AddProduct appends a new line, or bumps the quantity when the
// product is already in the cart.
func (s *Snapshot) AddProduct(ctx context.Context, product domain.ProductRef, quantity int64) {
	if quantity < 1 {
		quantity = 1
	}
	s.mutate(ctx, func() bool {
		for i := range s.items {
			if s.items[i].Product.ID == product.ID {
				s.items[i].Quantity += quantity
				return true
			}
		}
		s.items = append(s.items, domain.CartItem{Product: product, Quantity: quantity})
		return true
	})
}

// AddOrSetQuantity replaces the quantity of an existing line; absent
// products are a no-op.
func (s *Snapshot) AddOrSetQuantity(ctx context.Context, productID int64, quantity int64) {
	if quantity < 1 {
		return
	}
	s.mutate(ctx, func() bool {
		for i := range s.items {
			if s.items[i].Product.ID == productID {
				s.items[i].Quantity = quantity
				return true
			}
		}
		return false
	})
}

func (s *Snapshot) Increment(ctx context.Context, productID int64) {
	s.mutate(ctx, func() bool {
		for i := range s.items {
			if s.items[i].Product.ID == productID {
				s.items[i].Quantity++
				return true
			}
		}
		return false
	})
}

// Decrement floors at 1; going below is a no-op, not a removal.
func (s *Snapshot) Decrement(ctx context.Context, productID int64) {
	s.mutate(ctx, func() bool {
		for i := range s.items {
			if s.items[i].Product.ID == productID {
				if s.items[i].Quantity <= 1 {
					return false
				}
				s.items[i].Quantity--
				return true
			}
		}
		return false
	})
}

// SetDiscountCode applies or removes (empty code) the discount and
// pushes the recomputed money fields through the amend path.
func (s *Snapshot) SetDiscountCode(ctx context.Context, code string) {
	s.mutate(ctx, func() bool {
		if s.discountCode == code {
			return false
		}
		s.discountCode = code
		return true
	})
}

// Replace swaps the whole item list, used when a draft order is
// reloaded and its stored lines become the cart again. No amend is
// scheduled; the server already has these lines.
func (s *Snapshot) Replace(ctx context.Context, items []domain.CartItem) {
	s.mu.Lock()
	s.items = make([]domain.CartItem, len(items))
	copy(s.items, items)
	s.mu.Unlock()
	s.persist(ctx)
}

// ClearPersisted removes the stored cart after a successful payment
// and empties the in-memory list.
func (s *Snapshot) ClearPersisted(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.discountCode = ""
	s.mu.Unlock()
	if err := s.store.Clear(ctx, s.key); err != nil {
		log.Printf("cart store clear failed for key %s: %v", s.key, err)
	}
}

// mutate runs fn under the lock; when fn reports a change it
// recomputes totals, schedules the amend, then persists.
func (s *Snapshot) mutate(ctx context.Context, fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	totals := pricing.Compute(s.items, s.discountCode, s.validator)
	code := s.discountCode
	s.mu.Unlock()

	patch := domain.OrderPatch{
		SubtotalAmount: &totals.Subtotal,
		DiscountAmount: &totals.Discount,
		TaxAmount:      &totals.Tax,
		TotalAmount:    &totals.Total,
		DiscountCode:   &code,
		Items:          items,
	}
	s.amender.ScheduleAmend(patch)
	s.persist(ctx)
}

func (s *Snapshot) persist(ctx context.Context) {
	items := s.Items()
	if err := s.store.Set(ctx, s.key, items); err != nil {
		log.Printf("cart store write failed for key %s: %v", s.key, err)
	}
}
