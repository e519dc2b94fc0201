package domain

// ProductRef is the slice of a catalog product the cart needs to carry.
type ProductRef struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	SKU      string  `json:"sku"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
}

type CartItem struct {
	Product  ProductRef `json:"product"`
	Quantity int64      `json:"quantity"`
}

// LineTotal is the item contribution to the order subtotal.
func (i CartItem) LineTotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}
