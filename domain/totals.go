package domain

// Totals is derived state, recomputed on every cart or discount
// mutation and never persisted on its own.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}
