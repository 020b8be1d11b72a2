package views

import (
	"context"
	"sync"

	"finadvisor/internal/models"
)

// AuthMode selects the form on the sign-in screen.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

// AuthState is what the sign-in screen shows.
type AuthState struct {
	Mode       AuthMode
	Busy       bool
	Err        error
	SignedIn   bool
	Registered bool
}

// Auth is the sign-in and registration screen.
type Auth struct {
	base
	api AuthAPI

	mu    sync.Mutex
	state AuthState
}

// NewAuth creates the sign-in screen in login mode.
func NewAuth(a AuthAPI, env *Env) *Auth {
	return &Auth{base: newBase(env), api: a}
}

// SetMode switches between the login and registration forms.
func (v *Auth) SetMode(m AuthMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = AuthState{Mode: m}
}

// State returns the current screen state.
func (v *Auth) State() AuthState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Login signs in and stores the session.
func (v *Auth) Login(ctx context.Context, email, password string) error {
	v.begin()
	resp, err := v.api.Login(ctx, email, password)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Busy = false
	v.state.Err = err
	if err != nil {
		v.env.Notices.Error(err)
		return err
	}
	v.state.SignedIn = true
	name := resp.UserName
	if name == "" {
		name = resp.Email
	}
	v.env.Notices.Success("Welcome back, " + name)
	return nil
}

// Register creates an account and switches to the login form.
func (v *Auth) Register(ctx context.Context, req models.RegisterRequest) error {
	v.begin()
	_, err := v.api.Register(ctx, req)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Busy = false
	v.state.Err = err
	if err != nil {
		v.env.Notices.Error(err)
		return err
	}
	v.state.Registered = true
	v.state.Mode = ModeLogin
	v.env.Notices.Success("Registration successful! Please sign in.")
	return nil
}

func (v *Auth) begin() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Busy = true
	v.state.Err = nil
}
