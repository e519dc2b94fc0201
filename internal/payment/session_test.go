package payment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/binhvu284/nobleco-sub000/domain"
	"github.com/binhvu284/nobleco-sub000/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPayments replays a fixed sequence of status answers; "ERR"
// entries simulate a network failure on that tick. The last entry
// repeats forever.
type scriptedPayments struct {
	mu          sync.Mutex
	statuses    []string
	idx         int
	checks      int
	createCalls int
	createErr   error
	bank        *api.BankAccount
	cfg         *api.PaymentConfig
	cfgErr      error
}

func (m *scriptedPayments) CreatePayment(context.Context, int64) (*api.CreatePaymentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &api.CreatePaymentResponse{OrderNumber: "ORD-0042", BankAccount: m.bank}, nil
}

func (m *scriptedPayments) GetPaymentStatus(context.Context, int64) (*api.PaymentStatusResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks++
	status := m.statuses[m.idx]
	if m.idx < len(m.statuses)-1 {
		m.idx++
	}
	if status == "ERR" {
		return nil, errors.New("connection reset")
	}
	return &api.PaymentStatusResponse{Status: status}, nil
}

func (m *scriptedPayments) GetPaymentConfig(context.Context) (*api.PaymentConfig, error) {
	if m.cfgErr != nil {
		return nil, m.cfgErr
	}
	return m.cfg, nil
}

func (m *scriptedPayments) checkCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks
}

type fakeClearer struct{ cleared atomic.Bool }

func (f *fakeClearer) ClearPersisted(context.Context) { f.cleared.Store(true) }

type fakePublisher struct {
	mu     sync.Mutex
	paidID int64
}

func (f *fakePublisher) OrderPaid(_ context.Context, orderID int64, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paidID = orderID
}

func newTestSession(mock *scriptedPayments, clearer *fakeClearer, publisher *fakePublisher, afterPaid func()) *Session {
	s := NewSession(mock, 42, 250000, clearer, publisher, afterPaid)
	s.PollInterval = 30 * time.Millisecond
	s.RedirectDelay = 50 * time.Millisecond
	return s
}

func TestStart_OneShotGate(t *testing.T) {
	mock := &scriptedPayments{statuses: []string{"pending"}}
	s := newTestSession(mock, nil, nil, nil)
	t.Cleanup(s.Stop)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, 1, mock.createCalls)
	assert.Equal(t, domain.PaymentStatusPending, s.Status())
	assert.Equal(t, "ORD-0042", s.PayCode())
}

func TestStart_FailureReleasesGate(t *testing.T) {
	mock := &scriptedPayments{statuses: []string{"pending"}, createErr: errors.New("backend down")}
	s := newTestSession(mock, nil, nil, nil)
	t.Cleanup(s.Stop)

	require.Error(t, s.Start(context.Background()))

	mock.mu.Lock()
	mock.createErr = nil
	mock.mu.Unlock()
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 2, mock.createCalls)
}

func TestStart_QRWithBankAccount(t *testing.T) {
	mock := &scriptedPayments{
		statuses: []string{"pending"},
		bank:     &api.BankAccount{AccountNumber: "007704060012345", BankName: "HDBank", AccountOwner: "NOBLECO"},
	}
	s := newTestSession(mock, nil, nil, nil)
	t.Cleanup(s.Stop)

	require.NoError(t, s.Start(context.Background()))

	assert.Contains(t, s.QRPayload(), "HDBank")
	assert.Contains(t, s.QRPayload(), "007704060012345")
	assert.Contains(t, s.QRPayload(), "ORD-0042")
	assert.Contains(t, s.QRPayload(), "250000")
}

func TestStart_QRFallbackWithoutBank(t *testing.T) {
	mock := &scriptedPayments{statuses: []string{"pending"}, cfgErr: errors.New("config unavailable")}
	s := newTestSession(mock, nil, nil, nil)
	t.Cleanup(s.Stop)

	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, "payment|code:ORD-0042|amount:250000", s.QRPayload())
}

func TestStart_NilPaymentConfig(t *testing.T) {
	// a collaborator with no config endpoint answers empty; the QR
	// falls back to the generic payload instead of crashing
	mock := &scriptedPayments{statuses: []string{"pending"}}
	s := newTestSession(mock, nil, nil, nil)
	t.Cleanup(s.Stop)

	require.NoError(t, s.Start(context.Background()))

	assert.Nil(t, s.BankAccount())
	assert.Equal(t, "payment|code:ORD-0042|amount:250000", s.QRPayload())
}

func TestStart_BankFromPaymentConfig(t *testing.T) {
	mock := &scriptedPayments{
		statuses: []string{"pending"},
		cfg:      &api.PaymentConfig{BankAccount: &api.BankAccount{AccountNumber: "999", BankName: "VCB", AccountOwner: "NOBLECO"}},
	}
	s := newTestSession(mock, nil, nil, nil)
	t.Cleanup(s.Stop)

	require.NoError(t, s.Start(context.Background()))

	require.NotNil(t, s.BankAccount())
	assert.Equal(t, "VCB", s.BankAccount().BankName)
}

func TestPoll_PaidClearsCartAndRedirects(t *testing.T) {
	mock := &scriptedPayments{statuses: []string{"pending", "paid"}}
	clearer := &fakeClearer{}
	publisher := &fakePublisher{}
	redirected := make(chan struct{})
	s := newTestSession(mock, clearer, publisher, func() { close(redirected) })
	t.Cleanup(s.Stop)

	require.NoError(t, s.Start(context.Background()))

	select {
	case <-redirected:
	case <-time.After(2 * time.Second):
		t.Fatal("redirect callback never fired")
	}

	assert.Equal(t, domain.PaymentStatusPaid, s.Status())
	assert.True(t, clearer.cleared.Load())
	publisher.mu.Lock()
	assert.Equal(t, int64(42), publisher.paidID)
	publisher.mu.Unlock()
}

func TestPoll_TerminalStopsTicks(t *testing.T) {
	mock := &scriptedPayments{statuses: []string{"pending", "failed"}}
	s := newTestSession(mock, nil, nil, nil)
	t.Cleanup(s.Stop)

	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool {
		return s.Status() == domain.PaymentStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	settled := mock.checkCount()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, settled, mock.checkCount())
}

func TestPoll_NetworkErrorStaysPending(t *testing.T) {
	mock := &scriptedPayments{statuses: []string{"ERR", "ERR", "pending"}}
	s := newTestSession(mock, nil, nil, nil)
	t.Cleanup(s.Stop)

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, domain.PaymentStatusPending, s.Status())

	// the loop keeps ticking through errors
	require.Eventually(t, func() bool {
		return mock.checkCount() >= 3 && s.Status() == domain.PaymentStatusPending
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefresh_OutOfBandCheck(t *testing.T) {
	mock := &scriptedPayments{statuses: []string{"pending", "paid"}}
	clearer := &fakeClearer{}
	s := NewSession(mock, 42, 250000, clearer, nil, nil)
	s.PollInterval = time.Hour // interval never fires in this test
	s.RedirectDelay = time.Millisecond
	t.Cleanup(s.Stop)

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, domain.PaymentStatusPending, s.Status())

	status, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, status)
	assert.True(t, clearer.cleared.Load())
}

func TestRefresh_BeforeStart(t *testing.T) {
	s := newTestSession(&scriptedPayments{statuses: []string{"pending"}}, nil, nil, nil)

	_, err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestStop_CancelsPolling(t *testing.T) {
	mock := &scriptedPayments{statuses: []string{"pending"}}
	s := newTestSession(mock, nil, nil, nil)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	settled := mock.checkCount()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, settled, mock.checkCount())
}

func TestParse_UnknownStatusTreatedAsPending(t *testing.T) {
	assert.Equal(t, domain.PaymentStatusPending, domain.ParsePaymentStatus("weird"))
	assert.Equal(t, domain.PaymentStatusExpired, domain.ParsePaymentStatus("expired"))
}
