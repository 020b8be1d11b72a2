package tui

import (
	"context"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finadvisor/internal/api"
	"finadvisor/internal/client"
	"finadvisor/internal/models"
	"finadvisor/internal/session"
	"finadvisor/internal/testutil"
	"finadvisor/internal/views"
)

var now = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	backend *testutil.Backend
	user    models.User
	model   Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := testutil.NewBackend(t)
	backend.SetNow(now)

	sess := session.New(nil)
	a := api.New(client.New(backend.URL(), sess, backend.Client()), nil)
	confirm := &Confirmer{}
	env := &views.Env{Bus: a.Bus(), Notices: views.NewNotices(), Confirmer: confirm, Now: func() time.Time { return now }}
	v := &Views{
		Auth:         views.NewAuth(a, env),
		Dashboard:    views.NewDashboard(a, env),
		Transactions: views.NewTransactions(a, env),
		Budgets:      views.NewBudgets(a, env),
		Goals:        views.NewGoals(a, env),
		Forecast:     views.NewForecast(a, env),
		Chat:         views.NewChat(a, env),
		Profile:      views.NewProfile(a, env),
	}
	t.Cleanup(v.Close)

	return &harness{
		backend: backend,
		user:    backend.SeedUser(),
		model:   New(context.Background(), v, env.Notices, sess, confirm),
	}
}

// send feeds msg to the model and runs returned commands until none are
// left. Batches are not used by the model, so one command yields one message.
func (h *harness) send(msg tea.Msg) {
	for msg != nil {
		next, cmd := h.model.Update(msg)
		h.model = next.(Model)
		if cmd == nil {
			return
		}
		msg = cmd()
	}
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) enter() {
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
}

func (h *harness) key(s string) {
	h.typeText(s)
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	h.key("l")
	h.typeText(h.user.Email)
	h.enter()
	h.typeText(testutil.DefaultPassword)
	h.enter()
	require.Equal(t, ScreenDashboard, h.model.Screen())
}

func TestModel_StartsOnSignInWithoutSession(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ScreenAuth, h.model.Screen())
	assert.Nil(t, h.model.Init())
	assert.Contains(t, h.model.View(), "Sign in to continue")
}

func TestModel_LoginOpensOverview(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out := h.model.View()
	assert.Contains(t, out, "Overview")
	assert.Contains(t, out, "Welcome back")
}

func TestModel_WrongPasswordStaysOnSignIn(t *testing.T) {
	h := newHarness(t)
	h.key("l")
	h.typeText(h.user.Email)
	h.enter()
	h.typeText("nope")
	h.enter()

	assert.Equal(t, ScreenAuth, h.model.Screen())
	assert.Contains(t, h.model.View(), "Incorrect email or password")
}

func TestModel_AddTransactionFromForm(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.key("2")
	require.Equal(t, ScreenTransactions, h.model.Screen())
	assert.Contains(t, h.model.View(), "No transactions found")

	h.key("a")
	h.typeText("Coffee")
	h.enter()
	h.typeText("4.50")
	h.enter()
	h.enter() // type prefilled as expense
	h.enter() // category auto-detected
	h.typeText("2024-01-05")
	h.enter()

	out := h.model.View()
	assert.Contains(t, out, "Coffee")
	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "Transaction added")
}

func TestModel_InvalidAmountKeepsFormOpen(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.key("2")
	sent := h.backend.RequestCount()

	h.key("a")
	h.typeText("Coffee")
	h.enter()
	h.typeText("lots")
	h.enter()
	h.enter()
	h.enter()
	h.enter()

	require.NotNil(t, h.model.form)
	assert.Contains(t, h.model.View(), `"lots" is not an amount`)
	assert.Equal(t, sent, h.backend.RequestCount())

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, h.model.form)
}

func TestModel_DeclinedDeleteSendsNothing(t *testing.T) {
	h := newHarness(t)
	tx := h.backend.SeedTransaction(h.user.ID, "Rent", 900, models.TransactionTypeExpense, now)
	h.login(t)
	h.key("2")
	sent := h.backend.RequestCount()

	h.key("d")
	h.typeText("#" + strconv.Itoa(tx.ID))
	h.enter()
	h.typeText("n")
	h.enter()

	assert.Equal(t, sent, h.backend.RequestCount())
	out := h.model.View()
	assert.Contains(t, out, "Rent")
	assert.Contains(t, out, "Cancelled")
}

func TestModel_ConfirmedDeleteRemovesTransaction(t *testing.T) {
	h := newHarness(t)
	tx := h.backend.SeedTransaction(h.user.ID, "Rent", 900, models.TransactionTypeExpense, now)
	h.login(t)
	h.key("2")

	h.key("d")
	h.typeText(strconv.Itoa(tx.ID))
	h.enter()
	h.typeText("y")
	h.enter()

	out := h.model.View()
	assert.NotContains(t, out, "Rent")
	assert.Contains(t, out, "Transaction deleted")
}

func TestModel_BudgetMonthNavigation(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.key("3")
	assert.Contains(t, h.model.View(), "January 2024")

	h.key("]")
	assert.Contains(t, h.model.View(), "February 2024")
	h.key("[")
	h.key("[")
	assert.Contains(t, h.model.View(), "December 2023")
}

func TestModel_SignedOutReturnsToSignIn(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.send(SignedOutMsg{})
	assert.Equal(t, ScreenAuth, h.model.Screen())
	assert.Contains(t, h.model.View(), "Session expired")
}

func TestModel_RevokedSessionDuringReload(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.backend.RevokeTokens()

	h.key("r")
	assert.Equal(t, ScreenAuth, h.model.Screen())
}

func TestModel_TabCycles(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.send(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, ScreenProfile, h.model.Screen())
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ScreenDashboard, h.model.Screen())
}

func TestModel_ChatSend(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.key("6")

	h.key("i")
	h.typeText("How")
	h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	h.typeText("am I doing?")
	h.enter()

	assert.Contains(t, h.model.View(), "You asked: How am I doing?")
}

func TestConfirmer_AnswerIsUsedOnce(t *testing.T) {
	var c Confirmer
	assert.False(t, c.Confirm("x"))
	c.Arm(true)
	assert.True(t, c.Confirm("x"))
	assert.False(t, c.Confirm("x"))
}
