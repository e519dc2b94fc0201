package api

import (
	"context"
	"fmt"
)

type BankAccount struct {
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	AccountOwner  string `json:"account_owner"`
}

type CreatePaymentResponse struct {
	OrderNumber string       `json:"order_number"`
	BankAccount *BankAccount `json:"bank_account,omitempty"`
}

type PaymentStatusResponse struct {
	Status      string `json:"status"`
	OrderStatus string `json:"order_status,omitempty"`
}

type PaymentConfig struct {
	BankAccount *BankAccount `json:"bank_account"`
}

// PaymentsAPI is the port the payment session controller consumes.
type PaymentsAPI interface {
	CreatePayment(ctx context.Context, orderID int64) (*CreatePaymentResponse, error)
	GetPaymentStatus(ctx context.Context, orderID int64) (*PaymentStatusResponse, error)
	GetPaymentConfig(ctx context.Context) (*PaymentConfig, error)
}

func (c *Client) CreatePayment(ctx context.Context, orderID int64) (*CreatePaymentResponse, error) {
	var resp CreatePaymentResponse
	if err := c.do(ctx, "POST", fmt.Sprintf("/orders/%d/create-payment", orderID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, orderID int64) (*PaymentStatusResponse, error) {
	var resp PaymentStatusResponse
	if err := c.do(ctx, "GET", fmt.Sprintf("/orders/%d/payment-status", orderID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPaymentConfig fetches the merchant bank account. The config is
// effectively static, so concurrent callers share one flight and the
// first successful answer is memoized.
func (c *Client) GetPaymentConfig(ctx context.Context) (*PaymentConfig, error) {
	if cfg := c.config.Load(); cfg != nil {
		return cfg, nil
	}
	v, err, _ := c.sfg.Do("payment-config", func() (interface{}, error) {
		var resp PaymentConfig
		if err := c.do(ctx, "GET", "/payment-config", nil, &resp); err != nil {
			return nil, err
		}
		c.config.Store(&resp)
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PaymentConfig), nil
}
