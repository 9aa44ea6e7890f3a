package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

// ListRentals returns a page of rentals visible to the caller.
func (c *Client) ListRentals(ctx context.Context, q PageQuery) (*domain.Page[domain.Rental], error) {
	var page domain.Page[domain.Rental]
	if err := c.get(ctx, "/rentals", q.values(), &page); err != nil {
		return nil, fmt.Errorf("client.ListRentals: %w", err)
	}
	return &page, nil
}

// GetRental fetches a single rental by ID.
func (c *Client) GetRental(ctx context.Context, id string) (*domain.Rental, error) {
	var r domain.Rental
	if err := c.get(ctx, "/rentals/"+url.PathEscape(id), nil, &r); err != nil {
		return nil, fmt.Errorf("client.GetRental: %w", err)
	}
	return &r, nil
}

// CreateRental rents a tape until the due date in req.
func (c *Client) CreateRental(ctx context.Context, req domain.CreateRentalRequest) (*domain.Rental, error) {
	var r domain.Rental
	if err := c.post(ctx, "/rentals", req, &r); err != nil {
		return nil, fmt.Errorf("client.CreateRental: %w", err)
	}
	return &r, nil
}

// FinishRental marks a rental as returned.
func (c *Client) FinishRental(ctx context.Context, id string) (*domain.Rental, error) {
	var r domain.Rental
	req := Request{Method: http.MethodPatch, Path: "/rentals/" + url.PathEscape(id) + "/finish"}
	if err := c.Send(ctx, req, &r); err != nil {
		return nil, fmt.Errorf("client.FinishRental: %w", err)
	}
	return &r, nil
}
