package pricing

import (
	"testing"

	"github.com/binhvu284/nobleco-sub000/domain"
	"github.com/stretchr/testify/assert"
)

func cart() []domain.CartItem {
	return []domain.CartItem{
		{Product: domain.ProductRef{ID: 1, Name: "Tea set", Price: 100000}, Quantity: 2},
		{Product: domain.ProductRef{ID: 2, Name: "Vase", Price: 50000}, Quantity: 1},
	}
}

func TestCompute_NoDiscount(t *testing.T) {
	totals := Compute(cart(), "", DefaultValidator)

	assert.Equal(t, 250000.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.Discount)
	assert.Equal(t, 0.0, totals.Tax)
	assert.Equal(t, 250000.0, totals.Total)
}

func TestCompute_WithDiscountCode(t *testing.T) {
	totals := Compute(cart(), "WELCOME10", DefaultValidator)

	assert.Equal(t, 250000.0, totals.Subtotal)
	assert.Equal(t, 25000.0, totals.Discount)
	assert.Equal(t, 225000.0, totals.Total)
}

func TestCompute_EmptyCart(t *testing.T) {
	totals := Compute(nil, "WELCOME10", nil)

	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.Total)
}

func TestCompute_CustomValidator(t *testing.T) {
	totals := Compute(cart(), "HALF", FlatRateValidator{Rate: 0.5})

	assert.Equal(t, 125000.0, totals.Discount)
	assert.Equal(t, 125000.0, totals.Total)
}
