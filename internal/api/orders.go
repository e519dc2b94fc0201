package api

import (
	"context"
	"fmt"

	"github.com/binhvu284/nobleco-sub000/domain"
)

type OrderItemDTO struct {
	Product  ProductDTO `json:"product"`
	Quantity int64      `json:"quantity"`
}

type ProductDTO struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
}

type CreateOrderRequest struct {
	CartItems      []OrderItemDTO `json:"cartItems"`
	SubtotalAmount float64        `json:"subtotal_amount"`
	DiscountAmount float64        `json:"discount_amount"`
	TaxAmount      float64        `json:"tax_amount"`
	TotalAmount    float64        `json:"total_amount"`
}

type CreateOrderResponse struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`
	ClientID    *int64 `json:"client_id,omitempty"`
}

type OrderResponse struct {
	ID              int64          `json:"id"`
	OrderNumber     string         `json:"order_number"`
	Items           []OrderItemDTO `json:"items"`
	Client          *domain.Client `json:"client,omitempty"`
	ShippingAddress string         `json:"shipping_address"`
	Notes           string         `json:"notes"`
	DiscountCode    string         `json:"discount_code"`
	SubtotalAmount  float64        `json:"subtotal_amount"`
	DiscountAmount  float64        `json:"discount_amount"`
	TaxAmount       float64        `json:"tax_amount"`
	TotalAmount     float64        `json:"total_amount"`
}

// OrdersAPI is the port the sync engine consumes.
type OrdersAPI interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)
	GetOrder(ctx context.Context, orderID int64) (*OrderResponse, error)
	UpdateOrder(ctx context.Context, orderID int64, patch domain.OrderPatch) error
	DeleteOrder(ctx context.Context, orderID int64) error
}

func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	var resp CreateOrderResponse
	if err := c.doGuarded(ctx, "POST", "/orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID int64) (*OrderResponse, error) {
	var resp OrderResponse
	if err := c.do(ctx, "GET", fmt.Sprintf("/orders/%d", orderID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateOrder sends only the fields the patch carries.
func (c *Client) UpdateOrder(ctx context.Context, orderID int64, patch domain.OrderPatch) error {
	body := patchBody(patch)
	if len(body) == 0 {
		return nil
	}
	return c.doGuarded(ctx, "PUT", fmt.Sprintf("/orders/%d", orderID), body, nil)
}

func (c *Client) DeleteOrder(ctx context.Context, orderID int64) error {
	return c.doGuarded(ctx, "DELETE", fmt.Sprintf("/orders/%d", orderID), nil, nil)
}

func patchBody(patch domain.OrderPatch) map[string]any {
	body := make(map[string]any)
	if patch.ClientID != nil {
		body["client_id"] = *patch.ClientID
	}
	if patch.ShippingAddress != nil {
		body["shipping_address"] = *patch.ShippingAddress
	}
	if patch.Notes != nil {
		body["notes"] = *patch.Notes
	}
	if patch.DiscountCode != nil {
		body["discount_code"] = *patch.DiscountCode
	}
	if patch.SubtotalAmount != nil {
		body["subtotal_amount"] = *patch.SubtotalAmount
	}
	if patch.DiscountAmount != nil {
		body["discount_amount"] = *patch.DiscountAmount
	}
	if patch.TaxAmount != nil {
		body["tax_amount"] = *patch.TaxAmount
	}
	if patch.TotalAmount != nil {
		body["total_amount"] = *patch.TotalAmount
	}
	if patch.Items != nil {
		body["cartItems"] = MapItems(patch.Items)
	}
	return body
}

// MapItems converts domain cart items to the wire shape.
func MapItems(items []domain.CartItem) []OrderItemDTO {
	out := make([]OrderItemDTO, len(items))
	for i, it := range items {
		out[i] = OrderItemDTO{
			Product: ProductDTO{
				ID:    it.Product.ID,
				Name:  it.Product.Name,
				SKU:   it.Product.SKU,
				Price: it.Product.Price,
			},
			Quantity: it.Quantity,
		}
	}
	return out
}

// UnmapItems reconstructs cart items from stored order lines, used
// when a draft is reloaded on return from the payment step.
func UnmapItems(items []OrderItemDTO) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	for i, it := range items {
		out[i] = domain.CartItem{
			Product: domain.ProductRef{
				ID:    it.Product.ID,
				Name:  it.Product.Name,
				SKU:   it.Product.SKU,
				Price: it.Product.Price,
			},
			Quantity: it.Quantity,
		}
	}
	return out
}
