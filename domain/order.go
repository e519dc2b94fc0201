package domain

// DraftOrder mirrors the server-side order locally. Only OrderID and
// OrderNumber come back from the server; everything else is the local
// copy of what was sent (or loaded) last.
type DraftOrder struct {
	OrderID         *int64
	OrderNumber     string
	ClientID        *int64
	ShippingAddress string
	Notes           string
	DiscountCode    string
	SubtotalAmount  float64
	DiscountAmount  float64
	TaxAmount       float64
	TotalAmount     float64
	Items           []CartItem
}

// OrderPatch is a partial update to the draft order. Nil fields are
// omitted from the PUT body; successive patches merge field-wise.
type OrderPatch struct {
	ClientID        *int64
	ShippingAddress *string
	Notes           *string
	DiscountCode    *string
	SubtotalAmount  *float64
	DiscountAmount  *float64
	TaxAmount       *float64
	TotalAmount     *float64
	Items           []CartItem
}

// Merge overlays p2 onto p, last writer wins per field.
func (p OrderPatch) Merge(p2 OrderPatch) OrderPatch {
	if p2.ClientID != nil {
		p.ClientID = p2.ClientID
	}
	if p2.ShippingAddress != nil {
		p.ShippingAddress = p2.ShippingAddress
	}
	if p2.Notes != nil {
		p.Notes = p2.Notes
	}
	if p2.DiscountCode != nil {
		p.DiscountCode = p2.DiscountCode
	}
	if p2.SubtotalAmount != nil {
		p.SubtotalAmount = p2.SubtotalAmount
	}
	if p2.DiscountAmount != nil {
		p.DiscountAmount = p2.DiscountAmount
	}
	if p2.TaxAmount != nil {
		p.TaxAmount = p2.TaxAmount
	}
	if p2.Items != nil {
		p.Items = p2.Items
	}
	if p2.TotalAmount != nil {
		p.TotalAmount = p2.TotalAmount
	}
	return p
}

// IsZero reports whether the patch carries no fields at all.
func (p OrderPatch) IsZero() bool {
	return p.ClientID == nil && p.ShippingAddress == nil && p.Notes == nil &&
		p.DiscountCode == nil && p.SubtotalAmount == nil && p.DiscountAmount == nil &&
		p.TaxAmount == nil && p.TotalAmount == nil && p.Items == nil
}
