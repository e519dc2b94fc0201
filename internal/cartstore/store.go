package cartstore

import (
	"context"
	"errors"

	"github.com/binhvu284/nobleco-sub000/domain"
)

// Store is the client-local persistence port for the cart snapshot.
// One fixed key per browsing session; the whole cart is overwritten on
// every mutation and deleted after a successful payment.
type Store interface {
	Get(ctx context.Context, key string) ([]domain.CartItem, error)
	Set(ctx context.Context, key string, items []domain.CartItem) error
	Clear(ctx context.Context, key string) error
}

var ErrCartNotFound = errors.New("cart not found")
