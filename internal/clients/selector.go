package clients

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/binhvu284/nobleco-sub000/domain"
	"github.com/binhvu284/nobleco-sub000/internal/api"
)

var (
	ErrNameRequired  = errors.New("client name is required")
	ErrPhoneRequired = errors.New("client phone is required")
	ErrUnknownClient = errors.New("client not in loaded directory")
)

// OrderAmender is the immediate-patch hook: picking a client is a
// direct user action, so the order is amended right away rather than
// debounced.
type OrderAmender interface {
	AmendNow(ctx context.Context, patch domain.OrderPatch) error
}

// Selector drives the search/select/create-new flow over the remote
// customer directory and feeds client_id into the draft order.
type Selector struct {
	api     api.ClientsAPI
	amender OrderAmender

	mu       sync.Mutex
	loaded   []domain.Client
	selected *domain.Client
}

func NewSelector(clientsAPI api.ClientsAPI, amender OrderAmender) *Selector {
	return &Selector{api: clientsAPI, amender: amender}
}

// Load fetches the directory for the console user.
func (s *Selector) Load(ctx context.Context, userID int64) error {
	list, err := s.api.ListClients(ctx, userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.loaded = list
	s.mu.Unlock()
	return nil
}

// Search filters the loaded list by name/phone/email substring,
// case-insensitive. An empty query returns everything.
func (s *Selector) Search(query string) []domain.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if query == "" {
		out := make([]domain.Client, len(s.loaded))
		copy(out, s.loaded)
		return out
	}
	q := strings.ToLower(query)
	var out []domain.Client
	for _, c := range s.loaded {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Phone), q) ||
			strings.Contains(strings.ToLower(c.Email), q) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Selector) Selected() *domain.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return nil
	}
	cp := *s.selected
	return &cp
}

// Select marks the client and patches the order immediately. On patch
// failure nothing is committed locally.
func (s *Selector) Select(ctx context.Context, clientID int64) error {
	s.mu.Lock()
	var found *domain.Client
	for i := range s.loaded {
		if s.loaded[i].ID == clientID {
			cp := s.loaded[i]
			found = &cp
			break
		}
	}
	s.mu.Unlock()
	if found == nil {
		return ErrUnknownClient
	}

	id := found.ID
	if err := s.amender.AmendNow(ctx, domain.OrderPatch{ClientID: &id}); err != nil {
		return err
	}

	s.mu.Lock()
	s.selected = found
	s.mu.Unlock()
	return nil
}

// CreateAndSelect validates, posts the new client, appends it to the
// loaded list and selects it. Any failure leaves state untouched.
func (s *Selector) CreateAndSelect(ctx context.Context, req *api.CreateClientRequest) (*domain.Client, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, ErrPhoneRequired
	}

	created, err := s.api.CreateClient(ctx, req)
	if err != nil {
		return nil, err
	}

	id := created.ID
	if err := s.amender.AmendNow(ctx, domain.OrderPatch{ClientID: &id}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.loaded = append(s.loaded, *created)
	cp := *created
	s.selected = &cp
	s.mu.Unlock()
	return created, nil
}

// Preselect seeds the selection from a reloaded draft without touching
// the order (the server already has the client).
func (s *Selector) Preselect(client domain.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &client
}
