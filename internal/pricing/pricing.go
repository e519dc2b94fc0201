package pricing

import (
	"github.com/binhvu284/nobleco-sub000/domain"
)

// DiscountValidator decides how much a discount code is worth against a
// given subtotal. The real validation lives in a remote discount
// service; FlatRateValidator stands in for it here.
type DiscountValidator interface {
	DiscountFor(code string, subtotal float64) float64
}

// FlatRateValidator applies a fixed fraction of the subtotal to any
// non-empty code. Placeholder until the discount service is wired in.
type FlatRateValidator struct {
	Rate float64
}

func (v FlatRateValidator) DiscountFor(code string, subtotal float64) float64 {
	if code == "" {
		return 0
	}
	return subtotal * v.Rate
}

// DefaultValidator matches the current business placeholder of 10%.
var DefaultValidator DiscountValidator = FlatRateValidator{Rate: 0.10}

// Compute recomputes subtotal/discount/tax/total for the cart. Pure;
// callers invoke it on every mutation that can affect money.
func Compute(items []domain.CartItem, discountCode string, validator DiscountValidator) domain.Totals {
	if validator == nil {
		validator = DefaultValidator
	}
	var subtotal float64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	discount := validator.DiscountFor(discountCode, subtotal)
	tax := 0.0 // no tax service in this flow yet
	return domain.Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal - discount + tax,
	}
}
