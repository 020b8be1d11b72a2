package views

import (
	"context"
	"time"

	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/events"
	"finadvisor/internal/logger"
)

// Env is what every view shares: where invalidations arrive, where notices
// go, and who approves destructive actions.
type Env struct {
	Bus       *events.Bus
	Notices   *Notices
	Confirmer Confirmer
	// Context is used for reloads triggered by the bus. Defaults to
	// context.Background.
	Context context.Context
	// Now is the clock for date-dependent derivations. Defaults to
	// time.Now.
	Now func() time.Time
}

func (e *Env) defaults() {
	if e.Bus == nil {
		e.Bus = events.New()
	}
	if e.Notices == nil {
		e.Notices = NewNotices()
	}
	if e.Confirmer == nil {
		e.Confirmer = AlwaysConfirm
	}
	if e.Context == nil {
		e.Context = context.Background()
	}
	if e.Now == nil {
		e.Now = time.Now
	}
}

// base is embedded by every view. It owns the bus subscription.
type base struct {
	env         *Env
	unsubscribe func()
}

func newBase(env *Env) base {
	if env == nil {
		env = &Env{}
	}
	env.defaults()
	return base{env: env, unsubscribe: func() {}}
}

// watch reloads the view whenever one of topics is invalidated.
func (b *base) watch(name string, reload func(context.Context) error, topics ...events.Topic) {
	b.unsubscribe = b.env.Bus.Subscribe(func(t events.Topic) {
		logger.Get().Debugw("reloading view", "view", name, "topic", string(t))
		_ = reload(b.env.Context)
	}, topics...)
}

// Close stops reacting to invalidations.
func (b *base) Close() {
	b.unsubscribe()
}

// confirm asks before a destructive action. A declined prompt returns
// ErrConfirmationDeclined and nothing is sent.
func (b *base) confirm(prompt string) error {
	if !b.env.Confirmer.Confirm(prompt) {
		return apperrors.ErrConfirmationDeclined
	}
	return nil
}

// mutate runs a create, update or delete call and reports the outcome as a
// notice. Reloading after success is left to the bus.
func (b *base) mutate(success string, call func() error) error {
	if err := call(); err != nil {
		b.env.Notices.Error(err)
		return err
	}
	b.env.Notices.Success(success)
	return nil
}
