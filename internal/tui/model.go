// Package tui is the interactive dashboard. It drives the views with
// bubbletea commands and draws them with the render package.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/models"
	"finadvisor/internal/render"
	"finadvisor/internal/session"
	"finadvisor/internal/views"
)

// Screen is one page of the dashboard.
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenDashboard
	ScreenTransactions
	ScreenBudgets
	ScreenGoals
	ScreenForecast
	ScreenChat
	ScreenProfile
)

var tabs = []struct {
	screen Screen
	title  string
}{
	{ScreenDashboard, "Overview"},
	{ScreenTransactions, "Transactions"},
	{ScreenBudgets, "Budgets"},
	{ScreenGoals, "Goals"},
	{ScreenForecast, "Forecast"},
	{ScreenChat, "Advisor"},
	{ScreenProfile, "Profile"},
}

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#0F172A")).Background(lipgloss.Color("#87CEEB"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	formStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#87CEEB")).Padding(0, 1)
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87CEEB"))
	formErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// Views are the screens the model drives.
type Views struct {
	Auth         *views.Auth
	Dashboard    *views.Dashboard
	Transactions *views.Transactions
	Budgets      *views.Budgets
	Goals        *views.Goals
	Forecast     *views.Forecast
	Chat         *views.Chat
	Profile      *views.Profile
}

// Close unsubscribes every view from the bus.
func (v *Views) Close() {
	v.Dashboard.Close()
	v.Transactions.Close()
	v.Budgets.Close()
	v.Goals.Close()
	v.Forecast.Close()
	v.Profile.Close()
}

type loadedMsg struct {
	screen Screen
	err    error
}

type doneMsg struct {
	err  error
	next *Screen
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx     context.Context
	v       *Views
	notices *views.Notices
	session *session.Session
	confirm *Confirmer

	screen Screen
	form   *form
	busy   bool
	flash  []views.Notice
	width  int
}

// New creates the model. It opens on the overview when a session exists
// and on the sign-in screen otherwise.
func New(ctx context.Context, v *Views, notices *views.Notices, sess *session.Session, confirm *Confirmer) Model {
	m := Model{ctx: ctx, v: v, notices: notices, session: sess, confirm: confirm, screen: ScreenAuth}
	if sess.Active() {
		m.screen = ScreenDashboard
	}
	return m
}

// Screen returns the page being shown.
func (m Model) Screen() Screen { return m.screen }

// Init loads the first screen.
func (m Model) Init() tea.Cmd {
	return m.loadCmd(m.screen)
}

func (m Model) loadCmd(s Screen) tea.Cmd {
	var load func(context.Context) error
	switch s {
	case ScreenDashboard:
		load = m.v.Dashboard.Load
	case ScreenTransactions:
		load = m.v.Transactions.Load
	case ScreenBudgets:
		load = m.v.Budgets.Load
	case ScreenGoals:
		load = m.v.Goals.Load
	case ScreenForecast:
		load = m.v.Forecast.Load
	case ScreenProfile:
		load = m.v.Profile.Load
	default:
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{screen: s, err: load(ctx)}
	}
}

// run executes a view call off the event loop.
func (m Model) run(call func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{err: call(ctx)}
	}
}

// runThen is run followed by a switch to next on success.
func (m Model) runThen(next Screen, call func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{err: call(ctx), next: &next}
	}
}

func (m Model) enter(s Screen) (tea.Model, tea.Cmd) {
	m.screen = s
	m.form = nil
	if s == ScreenAuth {
		m.v.Auth.SetMode(views.ModeLogin)
	}
	return m, m.loadCmd(s)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case SignedOutMsg:
		m.drainNotices()
		m.flash = append(m.flash, views.Notice{Kind: views.NoticeError, Text: apperrors.ErrUnauthorized.Message, At: time.Now()})
		m.busy = false
		return m.enter(ScreenAuth)

	case loadedMsg:
		m.drainNotices()
		return m.afterCall(nil)

	case doneMsg:
		m.busy = false
		m.drainNotices()
		if errors.Is(msg.err, apperrors.ErrConfirmationDeclined) {
			m.flash = []views.Notice{{Kind: views.NoticeError, Text: apperrors.ErrConfirmationDeclined.Message, At: time.Now()}}
		}
		if msg.err == nil && msg.next != nil {
			return m.enter(*msg.next)
		}
		return m.afterCall(nil)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.form != nil {
			done, cmd := m.form.update(msg)
			if done {
				m.form = nil
				if cmd != nil {
					m.busy = true
				}
			}
			return m, cmd
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// afterCall returns to the sign-in screen if the session ended.
func (m Model) afterCall(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.screen != ScreenAuth && !m.session.Active() {
		return m.enter(ScreenAuth)
	}
	return m, cmd
}

func (m *Model) drainNotices() {
	if n := m.notices.Drain(); len(n) > 0 {
		m.flash = n
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" {
		return m, tea.Quit
	}
	if m.screen == ScreenAuth {
		return m.authKey(key)
	}

	switch key {
	case "r":
		return m, m.loadCmd(m.screen)
	case "tab":
		return m.enter(m.nextTab(1))
	case "shift+tab":
		return m.enter(m.nextTab(-1))
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(tabs) {
		return m.enter(tabs[n-1].screen)
	}

	switch m.screen {
	case ScreenTransactions:
		m.form = m.transactionsForm(key)
	case ScreenBudgets:
		return m.budgetsKey(key)
	case ScreenGoals:
		return m.goalsKey(key)
	case ScreenForecast:
		m.form = m.forecastForm(key)
	case ScreenChat:
		return m.chatKey(key)
	case ScreenProfile:
		m.form = m.profileForm(key)
	}
	return m, nil
}

func (m Model) nextTab(step int) Screen {
	idx := 0
	for i, t := range tabs {
		if t.screen == m.screen {
			idx = i
		}
	}
	idx = (idx + step + len(tabs)) % len(tabs)
	return tabs[idx].screen
}

func (m Model) authKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "l", "enter":
		m.v.Auth.SetMode(views.ModeLogin)
		m.form = newForm("Sign in", func(v []string) (tea.Cmd, error) {
			return m.runThen(ScreenDashboard, func(ctx context.Context) error {
				return m.v.Auth.Login(ctx, v[0], v[1])
			}), nil
		}, "Email", "Password").secret(1)
	case "g":
		m.v.Auth.SetMode(views.ModeRegister)
		m.form = newForm("Create account", func(v []string) (tea.Cmd, error) {
			req := models.RegisterRequest{Email: v[0], Username: v[1], FullName: v[2], Password: v[3], ConfirmPassword: v[4]}
			return m.run(func(ctx context.Context) error {
				return m.v.Auth.Register(ctx, req)
			}), nil
		}, "Email", "Username", "Full name", "Password", "Confirm password").secret(3, 4)
	}
	return m, nil
}

func (m Model) transactionsForm(key string) *form {
	tx := m.v.Transactions
	switch key {
	case "a":
		return newForm("Add transaction", func(v []string) (tea.Cmd, error) {
			in, err := transactionInput(v)
			if err != nil {
				return nil, err
			}
			return m.run(func(ctx context.Context) error {
				_, err := tx.Add(ctx, in)
				return err
			}), nil
		}, transactionLabels...).prefill(2, string(models.TransactionTypeExpense))
	case "e":
		labels := append([]string{"Transaction id"}, transactionLabels...)
		return newForm("Edit transaction", func(v []string) (tea.Cmd, error) {
			id, err := parseID(v[0])
			if err != nil {
				return nil, err
			}
			in, err := transactionInput(v[1:])
			if err != nil {
				return nil, err
			}
			return m.run(func(ctx context.Context) error {
				_, err := tx.Edit(ctx, id, in)
				return err
			}), nil
		}, labels...)
	case "d":
		return m.deleteForm("Delete transaction", tx.Delete)
	case "/":
		f := tx.Filter()
		return newForm("Filter transactions", func(v []string) (tea.Cmd, error) {
			tx.SetFilter(views.TransactionFilter{Search: v[0], Category: v[1], Type: models.TransactionType(strings.ToLower(v[2]))})
			return nil, nil
		}, "Search", "Category", "Type (income/expense/blank)").
			prefill(0, f.Search).prefill(1, f.Category).prefill(2, string(f.Type))
	case "x":
		tx.SetFilter(views.TransactionFilter{})
	}
	return nil
}

// deleteForm asks for an id and a y/n answer, then calls del with the
// answer armed on the confirmer.
func (m Model) deleteForm(title string, del func(context.Context, int) error) *form {
	return newForm(title, func(v []string) (tea.Cmd, error) {
		id, err := parseID(v[0])
		if err != nil {
			return nil, err
		}
		answer := parseYes(v[1])
		return m.run(func(ctx context.Context) error {
			m.confirm.Arm(answer)
			return del(ctx, id)
		}), nil
	}, "Id", "Are you sure? (y/n)")
}

func (m Model) budgetsKey(key string) (tea.Model, tea.Cmd) {
	b := m.v.Budgets
	switch key {
	case "a":
		m.form = newForm("Add budget for "+b.Period().String(), func(v []string) (tea.Cmd, error) {
			limit, err := parseAmount(v[1])
			if err != nil {
				return nil, err
			}
			return m.run(func(ctx context.Context) error {
				_, err := b.Add(ctx, models.BudgetInput{Category: v[0], MonthlyLimit: limit})
				return err
			}), nil
		}, "Category", "Monthly limit")
	case "e":
		m.form = newForm("Change budget limit", func(v []string) (tea.Cmd, error) {
			id, err := parseID(v[0])
			if err != nil {
				return nil, err
			}
			limit, err := parseAmount(v[1])
			if err != nil {
				return nil, err
			}
			return m.run(func(ctx context.Context) error {
				_, err := b.Edit(ctx, id, models.BudgetUpdate{MonthlyLimit: &limit})
				return err
			}), nil
		}, "Budget id", "Monthly limit")
	case "d":
		m.form = m.deleteForm("Delete budget", b.Delete)
	case "[", "]":
		p := b.Period()
		step := 1
		if key == "[" {
			step = -1
		}
		next := views.PeriodOf(time.Date(p.Year, time.Month(p.Month)+time.Month(step), 1, 0, 0, 0, 0, time.UTC))
		return m, m.run(func(ctx context.Context) error {
			return b.SetPeriod(ctx, next)
		})
	}
	return m, nil
}

func (m Model) goalsKey(key string) (tea.Model, tea.Cmd) {
	g := m.v.Goals
	switch key {
	case "a":
		m.form = newForm("New savings goal", func(v []string) (tea.Cmd, error) {
			target, err := parseAmount(v[1])
			if err != nil {
				return nil, err
			}
			date, err := models.ParseDate(v[2])
			if err != nil {
				return nil, err
			}
			var saved float64
			if v[3] != "" {
				if saved, err = parseAmount(v[3]); err != nil {
					return nil, err
				}
			}
			in := models.GoalInput{Name: v[0], TargetAmount: target, TargetDate: date, CurrentAmount: saved}
			return m.run(func(ctx context.Context) error {
				_, err := g.Add(ctx, in)
				return err
			}), nil
		}, "Name", "Target amount", "Target date YYYY-MM-DD", "Already saved (optional)")
	case "c":
		m.form = newForm("Add to goal", func(v []string) (tea.Cmd, error) {
			id, err := parseID(v[0])
			if err != nil {
				return nil, err
			}
			amount, err := parseAmount(v[1])
			if err != nil {
				return nil, err
			}
			return m.run(func(ctx context.Context) error {
				_, err := g.Contribute(ctx, id, amount)
				return err
			}), nil
		}, "Goal id", "Amount")
	case "d":
		m.form = m.deleteForm("Delete goal", g.Delete)
	case "h":
		show := !g.ShowCompleted()
		return m, m.run(func(ctx context.Context) error {
			return g.SetShowCompleted(ctx, show)
		})
	}
	return m, nil
}

func (m Model) forecastForm(key string) *form {
	if key != "p" {
		return nil
	}
	f := m.v.Forecast
	p := f.Params()
	return newForm("Forecast settings", func(v []string) (tea.Cmd, error) {
		months, err := strconv.Atoi(v[0])
		if err != nil || months < 1 || months > 12 {
			return nil, fmt.Errorf("months must be between 1 and 12")
		}
		return m.run(func(ctx context.Context) error {
			return f.SetParams(ctx, views.ForecastParams{Months: months, Category: v[1]})
		}), nil
	}, "Months (1-12)", "Category (blank for all)").
		prefill(0, strconv.Itoa(p.Months)).prefill(1, p.Category)
}

func (m Model) chatKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "i", "enter":
		m.form = newForm("Ask the advisor", func(v []string) (tea.Cmd, error) {
			return m.run(func(ctx context.Context) error {
				return m.v.Chat.Send(ctx, v[0])
			}), nil
		}, "Message")
	case "n":
		m.v.Chat.Reset()
	}
	return m, nil
}

func (m Model) profileForm(key string) *form {
	p := m.v.Profile
	switch key {
	case "e":
		return newForm("Edit profile (blank keeps the current value)", func(v []string) (tea.Cmd, error) {
			in := models.ProfileUpdate{FullName: v[0], Username: v[1], Email: v[2]}
			return m.run(func(ctx context.Context) error {
				return p.Update(ctx, in)
			}), nil
		}, "Full name", "Username", "Email")
	case "p":
		return newForm("Change password", func(v []string) (tea.Cmd, error) {
			in := models.PasswordChange{CurrentPassword: v[0], NewPassword: v[1], ConfirmPassword: v[2]}
			return m.run(func(ctx context.Context) error {
				return p.ChangePassword(ctx, in)
			}), nil
		}, "Current password", "New password", "Confirm new password").secret(0, 1, 2)
	case "x":
		return newForm("Deactivate account", func(v []string) (tea.Cmd, error) {
			answer := parseYes(v[0])
			return m.runThen(ScreenAuth, func(ctx context.Context) error {
				m.confirm.Arm(answer)
				return p.Deactivate(ctx)
			}), nil
		}, "Deactivate your account? You will be signed out. (y/n)")
	case "o":
		return newForm("Sign out", func(v []string) (tea.Cmd, error) {
			if !parseYes(v[0]) {
				return nil, nil
			}
			return m.runThen(ScreenAuth, p.Logout), nil
		}, "Sign out now? (y/n)").prefill(0, "y")
	}
	return nil
}

// View draws the current screen.
func (m Model) View() string {
	var sections []string
	if m.screen != ScreenAuth {
		sections = append(sections, m.header())
	}
	sections = append(sections, m.body())
	if m.form != nil {
		sections = append(sections, m.form.view())
	}
	if m.busy {
		sections = append(sections, helpStyle.Render("Working…"))
	}
	if len(m.flash) > 0 {
		sections = append(sections, render.Notices(m.flash))
	}
	sections = append(sections, helpStyle.Render(m.help()))
	return strings.Join(sections, "\n\n") + "\n"
}

func (m Model) header() string {
	parts := make([]string, 0, len(tabs)+1)
	for i, t := range tabs {
		label := fmt.Sprintf("%d %s", i+1, t.title)
		if t.screen == m.screen {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	if name := m.session.DisplayName(); name != "" {
		parts = append(parts, helpStyle.Render("  "+name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) body() string {
	switch m.screen {
	case ScreenAuth:
		return m.authView()
	case ScreenDashboard:
		return render.Dashboard(m.v.Dashboard.State())
	case ScreenTransactions:
		return render.Transactions(m.v.Transactions.State(), m.v.Transactions.Filter())
	case ScreenBudgets:
		return render.Budgets(m.v.Budgets.State(), m.v.Budgets.Period())
	case ScreenGoals:
		return render.Goals(m.v.Goals.State(), m.v.Goals.ShowCompleted())
	case ScreenForecast:
		return render.Forecast(m.v.Forecast.State())
	case ScreenChat:
		return render.Chat(m.v.Chat.Messages())
	case ScreenProfile:
		return render.Profile(m.v.Profile.State())
	}
	return ""
}

func (m Model) authView() string {
	s := m.v.Auth.State()
	title := "Personal Finance Advisor"
	sub := "Sign in to continue"
	if s.Mode == views.ModeRegister {
		sub = "Create your account"
	}
	return cursorStyle.Render(title) + "\n" + helpStyle.Render(sub)
}

func (m Model) help() string {
	switch m.screen {
	case ScreenAuth:
		return "l sign in • g register • q quit"
	case ScreenTransactions:
		return "a add • e edit • d delete • / filter • x clear filter • r reload • tab next • q quit"
	case ScreenBudgets:
		return "a add • e edit • d delete • [ ] month • r reload • tab next • q quit"
	case ScreenGoals:
		return "a add • c contribute • d delete • h show/hide completed • r reload • q quit"
	case ScreenForecast:
		return "p settings • r reload • tab next • q quit"
	case ScreenChat:
		return "i ask • n new conversation • tab next • q quit"
	case ScreenProfile:
		return "e edit • p password • x deactivate • o sign out • r reload • q quit"
	}
	return "1-7 switch screen • r reload • tab next • q quit"
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(cursorStyle.Render(f.title) + "\n")
	for i, fl := range f.fields {
		value := fl.value
		if fl.secret {
			value = strings.Repeat("•", len([]rune(value)))
		}
		prefix := "  "
		if i == f.index {
			prefix = cursorStyle.Render("> ")
			value += "▏"
		}
		fmt.Fprintf(&b, "%s%s: %s\n", prefix, fl.label, value)
	}
	if f.err != "" {
		b.WriteString(formErrStyle.Render(f.err) + "\n")
	}
	b.WriteString(helpStyle.Render("enter next/submit • esc cancel"))
	return formStyle.Render(b.String())
}
