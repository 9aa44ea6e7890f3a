package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

// GetMe returns the authenticated user's profile.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/me", nil, &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// ListUsers returns a page of users.
func (c *Client) ListUsers(ctx context.Context, q PageQuery) (*domain.Page[domain.User], error) {
	var page domain.Page[domain.User]
	if err := c.get(ctx, "/users", q.values(), &page); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return &page, nil
}

// GetUser fetches a single user by ID.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, fmt.Errorf("client.GetUser: %w", err)
	}
	return &u, nil
}

// UpdateFavoriteGenres replaces the user's favorite genres and stores the
// updated profile in the session.
func (c *Client) UpdateFavoriteGenres(ctx context.Context, genreIDs []string) (*domain.User, error) {
	if genreIDs == nil {
		genreIDs = []string{}
	}
	var u domain.User
	req := Request{
		Method: http.MethodPatch,
		Path:   "/users/me/favorite-genres",
		Body:   domain.UpdateFavoriteGenresRequest{FavoriteGenres: genreIDs},
	}
	if err := c.Send(ctx, req, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateFavoriteGenres: %w", err)
	}
	if err := c.store.SetUser(&u); err != nil {
		return nil, fmt.Errorf("client.UpdateFavoriteGenres: %w", Normalize(err))
	}
	return &u, nil
}
