package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/binhvu284/nobleco-sub000/domain"
	"github.com/binhvu284/nobleco-sub000/internal/api"
	"github.com/binhvu284/nobleco-sub000/internal/cartstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend covers the whole collaborator surface one activation
// touches.
type mockBackend struct {
	mu          sync.Mutex
	createCalls int
	updates     []domain.OrderPatch
	createErr   error
	updateErr   error
	getResp     *api.OrderResponse

	clientList []domain.Client

	paymentCalls int
	statusCalls  int
	statusResp   string
}

func (m *mockBackend) CreateOrder(context.Context, *api.CreateOrderRequest) (*api.CreateOrderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &api.CreateOrderResponse{ID: 42, OrderNumber: "ORD-0042"}, nil
}

func (m *mockBackend) GetOrder(context.Context, int64) (*api.OrderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getResp == nil {
		return nil, errors.New("no such order")
	}
	return m.getResp, nil
}

func (m *mockBackend) UpdateOrder(_ context.Context, _ int64, patch domain.OrderPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, patch)
	return nil
}

func (m *mockBackend) DeleteOrder(context.Context, int64) error { return nil }

func (m *mockBackend) CreatePayment(context.Context, int64) (*api.CreatePaymentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paymentCalls++
	return &api.CreatePaymentResponse{OrderNumber: "ORD-0042"}, nil
}

func (m *mockBackend) GetPaymentStatus(context.Context, int64) (*api.PaymentStatusResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls++
	status := m.statusResp
	if status == "" {
		status = "pending"
	}
	return &api.PaymentStatusResponse{Status: status}, nil
}

func (m *mockBackend) GetPaymentConfig(context.Context) (*api.PaymentConfig, error) {
	return &api.PaymentConfig{}, nil
}

func (m *mockBackend) ListClients(context.Context, int64) ([]domain.Client, error) {
	return m.clientList, nil
}

func (m *mockBackend) CreateClient(_ context.Context, req *api.CreateClientRequest) (*domain.Client, error) {
	return &domain.Client{ID: 100, Name: req.Name, Phone: req.Phone}, nil
}

func (m *mockBackend) updateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updates)
}

func (m *mockBackend) lastUpdate() domain.OrderPatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates[len(m.updates)-1]
}

type recordingPublisher struct {
	mu      sync.Mutex
	created []int64
	paid    []int64
}

func (p *recordingPublisher) OrderCreated(_ context.Context, orderID int64, _ string, _ float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, orderID)
}

func (p *recordingPublisher) OrderPaid(_ context.Context, orderID int64, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paid = append(p.paid, orderID)
}

func seedStore(t *testing.T) *cartstore.MemoryStore {
	t.Helper()
	store := cartstore.NewMemoryStore()
	items := []domain.CartItem{
		{Product: domain.ProductRef{ID: 1, Name: "Tea set", SKU: "TS-01", Price: 100000}, Quantity: 2},
		{Product: domain.ProductRef{ID: 2, Name: "Vase", SKU: "VS-02", Price: 50000}, Quantity: 1},
	}
	require.NoError(t, store.Set(context.Background(), "session-1", items))
	return store
}

func newTestActivation(backend *mockBackend, store cartstore.Store, publisher Publisher) *Activation {
	a := NewActivation(backend, store, "session-1", publisher, nil, nil)
	a.Engine.Debounce = 50 * time.Millisecond
	a.Engine.HydrationWindow = 0
	return a
}

func TestBegin_CreatesDraftOnce(t *testing.T) {
	backend := &mockBackend{}
	publisher := &recordingPublisher{}
	a := newTestActivation(backend, seedStore(t), publisher)
	ctx := context.Background()

	require.NoError(t, a.Begin(ctx, nil))
	// activation effect re-runs must not create a second order
	require.NoError(t, a.Begin(ctx, nil))

	assert.Equal(t, 1, backend.createCalls)
	require.NotNil(t, a.Engine.OrderID())
	assert.Equal(t, int64(42), *a.Engine.OrderID())
	assert.Equal(t, []int64{42}, publisher.created)
}

func TestBegin_EmptyCartNoOrder(t *testing.T) {
	backend := &mockBackend{}
	a := newTestActivation(backend, cartstore.NewMemoryStore(), nil)

	require.NoError(t, a.Begin(context.Background(), nil))

	assert.Equal(t, 0, backend.createCalls)
	assert.Nil(t, a.Engine.OrderID())
}

func TestBegin_CreateFailureSurfaces(t *testing.T) {
	backend := &mockBackend{createErr: errors.New("backend down")}
	a := newTestActivation(backend, seedStore(t), nil)

	err := a.Begin(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, a.Engine.OrderID())
}

func TestBegin_LoadsExistingDraft(t *testing.T) {
	backend := &mockBackend{
		getResp: &api.OrderResponse{
			ID:              7,
			OrderNumber:     "ORD-0007",
			ShippingAddress: "Hue, Vietnam",
			Notes:           "gift wrap",
			DiscountCode:    "WELCOME10",
			Client:          &domain.Client{ID: 3, Name: "Lan", Phone: "0901"},
			Items: []api.OrderItemDTO{
				{Product: api.ProductDTO{ID: 1, Name: "Tea set", Price: 100000}, Quantity: 2},
			},
		},
	}
	a := NewActivation(backend, cartstore.NewMemoryStore(), "session-1", nil, nil, nil)
	a.Engine.Debounce = 50 * time.Millisecond
	orderID := int64(7)

	require.NoError(t, a.Begin(context.Background(), &orderID))

	assert.Equal(t, 0, backend.createCalls)
	assert.Equal(t, "gift wrap", a.Notes())
	assert.Equal(t, "Hue, Vietnam", a.ShippingAddress())
	assert.Equal(t, "WELCOME10", a.Snapshot.DiscountCode())
	require.Len(t, a.Snapshot.Items(), 1)

	// the hydration pass must not echo a PUT back at the server
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, backend.updateCount())
}

func TestSelectCountryRegion_ImmediatePatch(t *testing.T) {
	backend := &mockBackend{}
	a := newTestActivation(backend, seedStore(t), nil)
	ctx := context.Background()
	require.NoError(t, a.Begin(ctx, nil))

	a.SelectCountry(ctx, "Vietnam")
	a.SelectRegion(ctx, "Hanoi")

	require.Equal(t, 2, backend.updateCount())
	last := backend.lastUpdate()
	require.NotNil(t, last.ShippingAddress)
	assert.Equal(t, "Hanoi, Vietnam", *last.ShippingAddress)
	assert.Equal(t, "Hanoi, Vietnam", a.ShippingAddress())
}

func TestSetNotes_Debounced(t *testing.T) {
	backend := &mockBackend{}
	a := newTestActivation(backend, seedStore(t), nil)
	ctx := context.Background()
	require.NoError(t, a.Begin(ctx, nil))

	a.SetNotes("g")
	a.SetNotes("gi")
	a.SetNotes("gift wrap please")

	time.Sleep(200 * time.Millisecond)

	require.Equal(t, 1, backend.updateCount())
	last := backend.lastUpdate()
	require.NotNil(t, last.Notes)
	assert.Equal(t, "gift wrap please", *last.Notes)
}

func TestApplyDiscount_SchedulesMoneyPatch(t *testing.T) {
	backend := &mockBackend{}
	a := newTestActivation(backend, seedStore(t), nil)
	ctx := context.Background()
	require.NoError(t, a.Begin(ctx, nil))

	a.ApplyDiscount(ctx, "WELCOME10")
	time.Sleep(200 * time.Millisecond)

	require.Equal(t, 1, backend.updateCount())
	last := backend.lastUpdate()
	require.NotNil(t, last.DiscountAmount)
	assert.Equal(t, 25000.0, *last.DiscountAmount)
	require.NotNil(t, last.TotalAmount)
	assert.Equal(t, 225000.0, *last.TotalAmount)
}

func TestProceedToPayment_FinalizesAndHandsOver(t *testing.T) {
	backend := &mockBackend{}
	a := newTestActivation(backend, seedStore(t), nil)
	ctx := context.Background()
	require.NoError(t, a.Begin(ctx, nil))
	a.SetNotes("fragile")

	session, err := a.ProceedToPayment(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	t.Cleanup(session.Stop)

	// finalize folded the pending note into one synchronous PUT
	require.Equal(t, 1, backend.updateCount())
	last := backend.lastUpdate()
	require.NotNil(t, last.Notes)
	assert.Equal(t, "fragile", *last.Notes)
	require.NotNil(t, last.TotalAmount)
	assert.Equal(t, 250000.0, *last.TotalAmount)

	// same activation, same order: the session is reused
	again, err := a.ProceedToPayment(ctx)
	require.NoError(t, err)
	assert.Same(t, session, again)
}

func TestProceedToPayment_WithoutDraft(t *testing.T) {
	a := newTestActivation(&mockBackend{}, cartstore.NewMemoryStore(), nil)

	_, err := a.ProceedToPayment(context.Background())
	assert.ErrorIs(t, err, ErrNoDraftOrder)
}

func TestProceedToPayment_FinalizeFailureBlocks(t *testing.T) {
	backend := &mockBackend{}
	a := newTestActivation(backend, seedStore(t), nil)
	ctx := context.Background()
	require.NoError(t, a.Begin(ctx, nil))

	backend.mu.Lock()
	backend.updateErr = errors.New("write failed")
	backend.mu.Unlock()

	_, err := a.ProceedToPayment(ctx)
	require.Error(t, err)
	assert.Nil(t, a.Session())
}

func TestBegin_SupersedesDifferentOrder(t *testing.T) {
	backend := &mockBackend{
		getResp: &api.OrderResponse{ID: 9, OrderNumber: "ORD-0009"},
	}
	a := newTestActivation(backend, seedStore(t), nil)
	ctx := context.Background()
	require.NoError(t, a.Begin(ctx, nil))
	require.Equal(t, int64(42), *a.Engine.OrderID())

	other := int64(9)
	require.NoError(t, a.Begin(ctx, &other))

	require.NotNil(t, a.Engine.OrderID())
	assert.Equal(t, int64(9), *a.Engine.OrderID())
}

func (m *mockBackend) statusChecks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls
}

func TestBegin_SupersedeStopsPaymentSession(t *testing.T) {
	backend := &mockBackend{
		getResp: &api.OrderResponse{ID: 9, OrderNumber: "ORD-0009"},
	}
	a := newTestActivation(backend, seedStore(t), nil)
	ctx := context.Background()
	require.NoError(t, a.Begin(ctx, nil))

	session, err := a.ProceedToPayment(ctx)
	require.NoError(t, err)
	session.PollInterval = 20 * time.Millisecond
	require.NoError(t, session.Start(ctx))

	// navigating back with another order must not leave the old
	// order's poll loop ticking
	other := int64(9)
	require.NoError(t, a.Begin(ctx, &other))
	assert.Nil(t, a.Session())

	settled := backend.statusChecks()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, backend.statusChecks())
}

func TestProceedToPayment_ReplacesStaleSession(t *testing.T) {
	backend := &mockBackend{
		getResp: &api.OrderResponse{ID: 9, OrderNumber: "ORD-0009"},
	}
	a := newTestActivation(backend, seedStore(t), nil)
	ctx := context.Background()
	require.NoError(t, a.Begin(ctx, nil))

	stale, err := a.ProceedToPayment(ctx)
	require.NoError(t, err)
	stale.PollInterval = 20 * time.Millisecond
	require.NoError(t, stale.Start(ctx))

	other := int64(9)
	require.NoError(t, a.Begin(ctx, &other))

	fresh, err := a.ProceedToPayment(ctx)
	require.NoError(t, err)
	t.Cleanup(fresh.Stop)
	require.NotSame(t, stale, fresh)
	assert.Equal(t, int64(9), fresh.OrderID())

	// only the fresh session may keep checking after its own stop
	fresh.Stop()
	settled := backend.statusChecks()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, backend.statusChecks())
}
