package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"finadvisor/internal/client"
	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/logger"
	"finadvisor/internal/models"
	"finadvisor/internal/session"
	"finadvisor/internal/validator"
)

// Login exchanges credentials for tokens and stores them in the session.
func (a *API) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	req := models.LoginRequest{Email: email, Password: password}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	if err := a.post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}

	displayName := resp.UserName
	if displayName == "" {
		displayName = resp.Email
	}
	err := a.session.Set(ctx, session.State{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		DisplayName:  displayName,
		Email:        resp.Email,
		UserID:       resp.UserID,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &resp, nil
}

// Register creates an account. It does not sign in.
func (a *API) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	var resp models.RegisterResponse
	if err := a.post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh obtains a new access token. An empty refreshToken uses the one in
// the session.
func (a *API) Refresh(ctx context.Context, refreshToken string) (*models.RefreshResponse, error) {
	if refreshToken == "" {
		refreshToken = a.session.RefreshToken()
	}
	if refreshToken == "" {
		return nil, apperrors.ErrNoSession
	}

	var resp models.RefreshResponse
	err := a.client.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Query:  url.Values{"refresh_token": {refreshToken}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := a.session.SetAccessToken(ctx, resp.AccessToken); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &resp, nil
}

// Logout tells the backend and clears the session. The session is cleared
// even when the backend call fails.
func (a *API) Logout(ctx context.Context) error {
	var msg models.Message
	callErr := a.post(ctx, "/auth/logout", nil, &msg)
	if callErr != nil {
		logger.Get().Warnw("logout call failed, clearing session anyway", "error", callErr)
	}
	if err := a.session.Clear(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, fmt.Errorf("clearing session: %w", err))
	}
	return nil
}
