package api

import (
	"context"

	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/events"
	"finadvisor/internal/logger"
	"finadvisor/internal/models"
	"finadvisor/internal/validator"
)

const mePath = "/users/me"

// Me returns the signed-in user's profile.
func (a *API) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := a.get(ctx, mePath, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateMe edits the profile and refreshes the display name kept in the
// session.
func (a *API) UpdateMe(ctx context.Context, in models.ProfileUpdate) (*models.User, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	var u models.User
	err := a.put(ctx, mePath, in, &u)
	if err := a.mutated(err, events.Profile); err != nil {
		return nil, err
	}
	if u.FullName != "" {
		if err := a.session.SetDisplayName(ctx, u.FullName); err != nil {
			logger.Get().Warnw("failed to persist display name", "error", err)
		}
	}
	return &u, nil
}

// ChangePassword replaces the account password.
func (a *API) ChangePassword(ctx context.Context, in models.PasswordChange) (*models.Message, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	var msg models.Message
	if err := a.put(ctx, mePath+"/password", in, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Deactivate disables the account and signs out.
func (a *API) Deactivate(ctx context.Context) error {
	if err := a.delete(ctx, mePath); err != nil {
		return err
	}
	// No reload follows: there is no session left to fetch the profile with.
	if err := a.session.Clear(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return nil
}

// Reactivate re-enables a deactivated account.
func (a *API) Reactivate(ctx context.Context) (*models.User, error) {
	var u models.User
	err := a.post(ctx, mePath+"/reactivate", nil, &u)
	if err := a.mutated(err, events.Profile); err != nil {
		return nil, err
	}
	return &u, nil
}
