package payment

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/binhvu284/nobleco-sub000/domain"
	"github.com/binhvu284/nobleco-sub000/internal/api"
)

var ErrNotStarted = errors.New("payment session not started")

// CartClearer removes the persisted cart once payment is confirmed.
type CartClearer interface {
	ClearPersisted(ctx context.Context)
}

// EventPublisher gets notified about the paid order. May be nil.
type EventPublisher interface {
	OrderPaid(ctx context.Context, orderID int64, orderNumber string)
}

// Session drives one payment-page activation for one order: create
// the payment at most once, show a scannable code, poll the status
// endpoint until a terminal answer, then redirect.
type Session struct {
	api     api.PaymentsAPI
	orderID int64
	amount  float64

	PollInterval  time.Duration
	RedirectDelay time.Duration

	clearer   CartClearer
	publisher EventPublisher
	afterPaid func() // navigation hook, fired RedirectDelay after Paid

	mu        sync.Mutex
	started   bool // one-shot gate, reset only on creation failure
	status    domain.PaymentStatus
	payCode   string
	bank      *api.BankAccount
	qrPayload string
	cancel    context.CancelFunc
}

func NewSession(paymentsAPI api.PaymentsAPI, orderID int64, amount float64, clearer CartClearer, publisher EventPublisher, afterPaid func()) *Session {
	return &Session{
		api:           paymentsAPI,
		orderID:       orderID,
		amount:        amount,
		PollInterval:  5 * time.Second,
		RedirectDelay: 3 * time.Second,
		clearer:       clearer,
		publisher:     publisher,
		afterPaid:     afterPaid,
		status:        domain.PaymentStatusCreating,
	}
}

func (s *Session) OrderID() int64 { return s.orderID }

func (s *Session) Status() domain.PaymentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) PayCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payCode
}

func (s *Session) BankAccount() *api.BankAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank
}

func (s *Session) QRPayload() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qrPayload
}

// Start creates the payment and launches the poll loop. Re-invocation
// within the same activation is a no-op; creation failure releases the
// gate so the user can retry. Fatal to the flow on error.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		// same activation, same order: never a second create-payment.
		// If polling was stopped by back-navigation and the status is
		// still open, pick the loop back up.
		if s.cancel == nil && !s.status.IsTerminal() {
			pollCtx, cancel := context.WithCancel(context.Background())
			s.cancel = cancel
			s.mu.Unlock()
			go s.pollLoop(pollCtx)
			return nil
		}
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.status = domain.PaymentStatusCreating
	s.mu.Unlock()

	resp, err := s.api.CreatePayment(ctx, s.orderID)
	if err != nil {
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
		return err
	}

	bank := resp.BankAccount
	if bank == nil {
		// merchant bank info may live in the shared payment config
		cfg, cfgErr := s.api.GetPaymentConfig(ctx)
		switch {
		case cfgErr != nil:
			log.Printf("payment config fetch failed for order %d: %v", s.orderID, cfgErr)
		case cfg != nil:
			bank = cfg.BankAccount
		}
	}

	pollCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.payCode = resp.OrderNumber
	s.bank = bank
	s.qrPayload = ComposePayload(bank, s.amount, resp.OrderNumber)
	s.status = domain.PaymentStatusPending
	s.cancel = cancel
	s.mu.Unlock()

	// one immediate check, then the interval takes over
	if s.check(ctx) {
		cancel()
		return nil
	}
	go s.pollLoop(pollCtx)
	return nil
}

// pollLoop issues one status check per tick until a terminal status or
// cancellation. A plain ticker, so Stop is a single cancel call.
func (s *Session) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if s.check(ctx) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// check performs one status fetch and returns true on a terminal
// status. Network errors count as pending: the payment may still be
// confirmed on a later tick.
func (s *Session) check(ctx context.Context) bool {
	s.mu.Lock()
	if s.status.IsTerminal() {
		s.mu.Unlock()
		return true
	}
	s.status = domain.PaymentStatusChecking
	s.mu.Unlock()

	resp, err := s.api.GetPaymentStatus(ctx, s.orderID)
	if err != nil {
		log.Printf("payment status check failed for order %d: %v", s.orderID, err)
		s.setStatus(domain.PaymentStatusPending)
		return false
	}

	status := domain.ParsePaymentStatus(resp.Status)
	s.setStatus(status)

	if !status.IsTerminal() {
		return false
	}

	s.stopPolling()
	if status == domain.PaymentStatusPaid {
		s.onPaid(ctx)
	}
	return true
}

func (s *Session) onPaid(ctx context.Context) {
	if s.clearer != nil {
		s.clearer.ClearPersisted(ctx)
	}
	if s.publisher != nil {
		s.publisher.OrderPaid(ctx, s.orderID, s.PayCode())
	}
	if s.afterPaid != nil {
		time.AfterFunc(s.RedirectDelay, s.afterPaid)
	}
}

// Refresh performs one out-of-band status check without touching the
// interval timer (the manual "refresh status" button).
func (s *Session) Refresh(ctx context.Context) (domain.PaymentStatus, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return "", ErrNotStarted
	}
	s.check(ctx)
	return s.Status(), nil
}

// Stop cancels the poll loop. Called on unmount or when the shopper
// navigates back to checkout.
func (s *Session) Stop() {
	s.stopPolling()
}

func (s *Session) setStatus(status domain.PaymentStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *Session) stopPolling() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
