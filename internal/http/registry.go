package http

import (
	"sync"

	"github.com/binhvu284/nobleco-sub000/internal/checkout"
)

// Registry keeps one checkout activation per browsing session. Two
// tabs sharing a session share an activation; two sessions never do
// (and may therefore create two independent draft orders, which is
// accepted).
type Registry struct {
	mu          sync.Mutex
	activations map[string]*checkout.Activation
	factory     func(sessionKey string) *checkout.Activation
}

func NewRegistry(factory func(sessionKey string) *checkout.Activation) *Registry {
	return &Registry{
		activations: make(map[string]*checkout.Activation),
		factory:     factory,
	}
}

func (r *Registry) GetOrCreate(sessionID string) *checkout.Activation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.activations[sessionID]; ok {
		return a
	}
	a := r.factory(sessionID)
	r.activations[sessionID] = a
	return a
}

func (r *Registry) Get(sessionID string) *checkout.Activation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activations[sessionID]
}

// Drop closes and forgets a session's activation (checkout abandoned
// or payment settled).
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	a := r.activations[sessionID]
	delete(r.activations, sessionID)
	r.mu.Unlock()
	if a != nil {
		a.Close()
	}
}
