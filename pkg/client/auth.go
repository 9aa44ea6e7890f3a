package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

// Login exchanges credentials for an access token, stores it in the session
// and then loads the profile of the signed-in user.
func (c *Client) Login(ctx context.Context, creds domain.LoginRequest) (*domain.User, error) {
	req := Request{Method: http.MethodPost, Path: pathLogin, Body: creds, Kind: KindLogin, NoAuth: true}
	user, err := c.authenticate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return user, nil
}

// Register creates an account and signs it in, like Login.
func (c *Client) Register(ctx context.Context, reg domain.RegisterRequest) (*domain.User, error) {
	req := Request{Method: http.MethodPost, Path: pathRegister, Body: reg, Kind: KindRegister, NoAuth: true}
	user, err := c.authenticate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return user, nil
}

func (c *Client) authenticate(ctx context.Context, req Request) (*domain.User, error) {
	var auth domain.AuthResponse
	if err := c.Send(ctx, req, &auth); err != nil {
		return nil, err
	}
	if auth.AccessToken == "" {
		e := newAPIError(http.StatusOK)
		e.Path = req.Path
		e.Detail = "response carried no access token"
		e.Message = e.Detail
		return nil, e
	}
	if err := c.store.SetAccessToken(auth.AccessToken); err != nil {
		return nil, Normalize(err)
	}

	me, err := c.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetUser(me); err != nil {
		return nil, Normalize(err)
	}
	return me, nil
}

// Logout invalidates the server-side session and clears the local one. The
// local session is cleared even when the server call fails; that error is
// still returned.
func (c *Client) Logout(ctx context.Context) error {
	serverErr := c.Send(ctx, Request{Method: http.MethodPost, Path: pathLogout}, nil)
	c.resetSession()
	// A 401 or a failed refresh means the session is already gone server side.
	if serverErr != nil && !IsStatus(serverErr, http.StatusUnauthorized) && !errors.Is(serverErr, ErrRefreshFailed) {
		return fmt.Errorf("client.Logout: %w", serverErr)
	}
	return nil
}

// RefreshAccessToken renews the access token using the refresh cookie,
// sharing the call with any refresh already in flight.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	tok, err := c.refresher.refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("client.RefreshAccessToken: %w", Normalize(err))
	}
	return tok, nil
}
