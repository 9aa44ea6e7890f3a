package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

// CreateReview reviews the tape of a finished rental.
func (c *Client) CreateReview(ctx context.Context, req domain.CreateReviewRequest) (*domain.Review, error) {
	var r domain.Review
	if err := c.post(ctx, "/reviews", req, &r); err != nil {
		return nil, fmt.Errorf("client.CreateReview: %w", err)
	}
	return &r, nil
}

// ListReviewsByVHS returns a page of reviews for one tape.
func (c *Client) ListReviewsByVHS(ctx context.Context, vhsID string, q PageQuery) (*domain.Page[domain.Review], error) {
	var page domain.Page[domain.Review]
	if err := c.get(ctx, "/reviews/vhs/"+url.PathEscape(vhsID), q.values(), &page); err != nil {
		return nil, fmt.Errorf("client.ListReviewsByVHS: %w", err)
	}
	return &page, nil
}

// GetReview fetches a single review by ID.
func (c *Client) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	var r domain.Review
	if err := c.get(ctx, "/reviews/"+url.PathEscape(id), nil, &r); err != nil {
		return nil, fmt.Errorf("client.GetReview: %w", err)
	}
	return &r, nil
}

// UpdateReview replaces the rating and comment of a review.
func (c *Client) UpdateReview(ctx context.Context, id string, req domain.UpdateReviewRequest) error {
	if err := c.Send(ctx, Request{Method: http.MethodPut, Path: "/reviews/" + url.PathEscape(id), Body: req}, nil); err != nil {
		return fmt.Errorf("client.UpdateReview: %w", err)
	}
	return nil
}

// DeleteReview deletes a review.
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	if err := c.Send(ctx, Request{Method: http.MethodDelete, Path: "/reviews/" + url.PathEscape(id)}, nil); err != nil {
		return fmt.Errorf("client.DeleteReview: %w", err)
	}
	return nil
}
