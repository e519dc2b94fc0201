package api

import (
	"context"

	"github.com/binhvu284/nobleco-sub000/domain"
)

type CreateClientRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Location string `json:"location,omitempty"`
}

// ClientsAPI is the customer-directory port. The directory owns the
// client lifecycle; this core only lists and creates.
type ClientsAPI interface {
	ListClients(ctx context.Context, userID int64) ([]domain.Client, error)
	CreateClient(ctx context.Context, req *CreateClientRequest) (*domain.Client, error)
}

func (c *Client) ListClients(ctx context.Context, userID int64) ([]domain.Client, error) {
	var resp []domain.Client
	if err := c.do(ctx, "GET", "/clients"+intQuery("userId", userID), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) CreateClient(ctx context.Context, req *CreateClientRequest) (*domain.Client, error) {
	var resp domain.Client
	if err := c.do(ctx, "POST", "/clients", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
