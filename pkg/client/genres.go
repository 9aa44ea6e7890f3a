package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

// ListGenres returns a page of genres.
func (c *Client) ListGenres(ctx context.Context, q PageQuery) (*domain.Page[domain.Genre], error) {
	var page domain.Page[domain.Genre]
	if err := c.get(ctx, "/genres", q.values(), &page); err != nil {
		return nil, fmt.Errorf("client.ListGenres: %w", err)
	}
	return &page, nil
}

// GetGenre fetches a single genre by ID.
func (c *Client) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	var g domain.Genre
	if err := c.get(ctx, "/genres/"+url.PathEscape(id), nil, &g); err != nil {
		return nil, fmt.Errorf("client.GetGenre: %w", err)
	}
	return &g, nil
}

// CreateGenre creates a new genre.
func (c *Client) CreateGenre(ctx context.Context, name string) (*domain.Genre, error) {
	var g domain.Genre
	if err := c.post(ctx, "/genres", domain.CreateGenreRequest{Name: name}, &g); err != nil {
		return nil, fmt.Errorf("client.CreateGenre: %w", err)
	}
	return &g, nil
}
