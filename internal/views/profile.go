package views

import (
	"context"

	"finadvisor/internal/events"
	"finadvisor/internal/models"
)

// Profile is the account screen.
type Profile struct {
	base
	api  ProfileAPI
	user Resource[models.User]
}

// NewProfile creates the account screen.
func NewProfile(a ProfileAPI, env *Env) *Profile {
	v := &Profile{base: newBase(env), api: a}
	v.watch("profile", v.Load, events.Profile)
	return v
}

// Load fetches the signed-in user.
func (v *Profile) Load(ctx context.Context) error {
	return v.user.Load(ctx, func(ctx context.Context) (models.User, error) {
		u, err := v.api.Me(ctx)
		if err != nil {
			return models.User{}, err
		}
		return *u, nil
	})
}

// State returns the current profile state.
func (v *Profile) State() State[models.User] {
	return v.user.Snapshot()
}

// Update edits the profile fields that are set in in.
func (v *Profile) Update(ctx context.Context, in models.ProfileUpdate) error {
	return v.mutate("Profile updated", func() error {
		_, err := v.api.UpdateMe(ctx, in)
		return err
	})
}

// ChangePassword replaces the password. Mismatched or short passwords are
// rejected before anything is sent.
func (v *Profile) ChangePassword(ctx context.Context, in models.PasswordChange) error {
	return v.mutate("Password changed", func() error {
		_, err := v.api.ChangePassword(ctx, in)
		return err
	})
}

// Deactivate disables the account after confirmation. The session is
// cleared by the API on success.
func (v *Profile) Deactivate(ctx context.Context) error {
	if err := v.confirm("Deactivate your account? You will be signed out."); err != nil {
		return err
	}
	return v.mutate("Account deactivated", func() error {
		return v.api.Deactivate(ctx)
	})
}

// Logout signs out. It never fails from the user's point of view: the
// session is cleared even if the backend call does not go through.
func (v *Profile) Logout(ctx context.Context) error {
	return v.mutate("Signed out", func() error {
		return v.api.Logout(ctx)
	})
}
