package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"finadvisor/internal/api"
	"finadvisor/internal/derive"
	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/logger"
	"finadvisor/internal/models"
	"finadvisor/internal/render"
	"finadvisor/internal/tui"
	"finadvisor/internal/views"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

type subcommand func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":             {"Sign in and remember the session", login},
	"register":          {"Create an account", register},
	"logout":            {"Sign out", logout},
	"whoami":            {"Show who is signed in", whoami},
	"refresh":           {"Renew the access token", refresh},
	"tx":                {"Transactions: list|add|update|delete|export|stats", group("tx", txCommands)},
	"summary":           {"Income, expenses and savings rate", summary},
	"monthly":           {"Month by month income and expenses", monthly},
	"budgets":           {"Budgets: list|add|update|delete", group("budgets", budgetCommands)},
	"goals":             {"Savings goals: list|add|contribute|delete", group("goals", goalCommands)},
	"chat":              {"Ask the advisor (interactive without a message)", chat},
	"insights":          {"AI insights about your spending", insights},
	"tips":              {"Savings tips", tips},
	"forecast":          {"Forecast upcoming expenses", forecast},
	"category-forecast": {"Next month's expenses per category", categoryForecast},
	"profile":           {"Profile: show|update|password|deactivate|reactivate", group("profile", profileCommands)},
	"dashboard":         {"Open the interactive dashboard", dashboard},
}

var txCommands = map[string]subcommand{
	"list":   txList,
	"add":    txAdd,
	"update": txUpdate,
	"delete": txDelete,
	"export": txExport,
	"stats":  txStats,
}

var budgetCommands = map[string]subcommand{
	"list":   budgetsList,
	"add":    budgetsAdd,
	"update": budgetsUpdate,
	"delete": budgetsDelete,
}

var goalCommands = map[string]subcommand{
	"list":       goalsList,
	"add":        goalsAdd,
	"contribute": goalsContribute,
	"delete":     goalsDelete,
}

var profileCommands = map[string]subcommand{
	"show":       profileShow,
	"update":     profileUpdate,
	"password":   profilePassword,
	"deactivate": profileDeactivate,
	"reactivate": profileReactivate,
}

func group(name string, subs map[string]subcommand) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		if len(args) == 0 {
			return invalid(fmt.Sprintf("usage: finadvisor %s <%s>", name, strings.Join(sortedKeys(subs), "|")))
		}
		sub, ok := subs[args[0]]
		if !ok {
			return invalid(fmt.Sprintf("unknown %s command %q", name, args[0]))
		}
		return sub(ctx, a, args[1:])
	}
}

func sortedKeys(m map[string]subcommand) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func invalid(msg string) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, msg)
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parse parses flags that may appear before or after positional arguments
// and returns the positional ones.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func idArg(positional []string, what string) (int, error) {
	if len(positional) == 0 {
		return 0, invalid(what + " id is required")
	}
	id, err := strconv.Atoi(strings.TrimPrefix(positional[0], "#"))
	if err != nil || id <= 0 {
		return 0, invalid(fmt.Sprintf("%q is not a valid %s id", positional[0], what))
	}
	return id, nil
}

func optionalDate(s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return &d, nil
}

// Auth

func login(ctx context.Context, a *app, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	resp, err := a.api.Login(ctx, a.ask("Email", *email), a.ask("Password", *password))
	if err != nil {
		return err
	}
	name := resp.UserName
	if name == "" {
		name = resp.Email
	}
	a.println("Welcome back, " + name)
	return nil
}

func register(ctx context.Context, a *app, args []string) error {
	fs := a.flags("register")
	email := fs.String("email", "", "account email")
	username := fs.String("username", "", "username (3-50 characters)")
	fullName := fs.String("name", "", "full name")
	password := fs.String("password", "", "password (at least 6 characters)")
	confirm := fs.String("confirm", "", "password again")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	req := models.RegisterRequest{
		Email:    a.ask("Email", *email),
		Username: a.ask("Username", *username),
		FullName: a.ask("Full name", *fullName),
		Password: a.ask("Password", *password),
	}
	req.ConfirmPassword = a.ask("Confirm password", *confirm)
	if _, err := a.api.Register(ctx, req); err != nil {
		return err
	}
	a.println("Registration successful! Run `finadvisor login` to sign in.")
	return nil
}

func logout(ctx context.Context, a *app, _ []string) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	a.println("Signed out")
	return nil
}

func whoami(_ context.Context, a *app, _ []string) error {
	if !a.session.Active() {
		a.println("Not signed in")
		return nil
	}
	st := a.session.Snapshot()
	a.printf("Signed in as %s <%s>\n", st.DisplayName, st.Email)
	if claims, err := a.session.Claims(); err == nil && claims.ExpiresAt != nil {
		status := "valid until"
		if a.session.Expired(time.Now()) {
			status = "expired at"
		}
		a.printf("Access token %s %s\n", status, claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func refresh(ctx context.Context, a *app, _ []string) error {
	if _, err := a.api.Refresh(ctx, ""); err != nil {
		return err
	}
	a.println("Access token refreshed")
	return nil
}

// Transactions

func txList(ctx context.Context, a *app, args []string) error {
	fs := a.flags("tx list")
	var q api.TransactionQuery
	fs.StringVar(&q.Category, "category", "", "only this category")
	typ := fs.String("type", "", "income or expense")
	fs.StringVar(&q.Search, "search", "", "text to look for in descriptions")
	from := fs.String("from", "", "start date YYYY-MM-DD")
	to := fs.String("to", "", "end date YYYY-MM-DD")
	minAmount := fs.Float64("min", 0, "minimum amount")
	maxAmount := fs.Float64("max", 0, "maximum amount")
	fs.IntVar(&q.Page.Page, "page", 1, "page number")
	fs.IntVar(&q.Page.PageSize, "page-size", 50, "transactions per page")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	q.TransactionType = models.TransactionType(*typ)
	var err error
	if q.DateFrom, err = optionalDate(*from); err != nil {
		return err
	}
	if q.DateTo, err = optionalDate(*to); err != nil {
		return err
	}
	set := visited(fs)
	if set["min"] {
		q.MinAmount = minAmount
	}
	if set["max"] {
		q.MaxAmount = maxAmount
	}

	var txs []models.Transaction
	if q.Empty() {
		txs, err = a.api.ListTransactions(ctx, q)
	} else {
		txs, err = a.api.FilterTransactions(ctx, q)
	}
	if err != nil {
		return err
	}
	a.println(render.TransactionList(txs))
	if len(txs) > 0 {
		a.println("\n" + render.Totals(derive.Totals(txs)))
	}
	return nil
}

type txFlags struct {
	description *string
	amount      *float64
	typ         *string
	category    *string
	date        *string
}

func newTxFlags(fs *flag.FlagSet) txFlags {
	return txFlags{
		description: fs.String("desc", "", "description"),
		amount:      fs.Float64("amount", 0, "amount, always positive"),
		typ:         fs.String("type", string(models.TransactionTypeExpense), "income or expense"),
		category:    fs.String("category", "", "category (detected from the description when empty)"),
		date:        fs.String("date", "", "date YYYY-MM-DD (today when empty)"),
	}
}

func txAdd(ctx context.Context, a *app, args []string) error {
	fs := a.flags("tx add")
	f := newTxFlags(fs)
	if _, err := parse(fs, args); err != nil {
		return err
	}
	date, err := optionalDate(*f.date)
	if err != nil {
		return err
	}
	tx, err := a.api.CreateTransaction(ctx, models.TransactionInput{
		Description:     *f.description,
		Amount:          *f.amount,
		TransactionType: models.TransactionType(*f.typ),
		Category:        *f.category,
		Date:            date,
	})
	if err != nil {
		return err
	}
	a.printf("Transaction added (#%d, %s)\n", tx.ID, tx.Category)
	return nil
}

func txUpdate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("tx update")
	f := newTxFlags(fs)
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := idArg(positional, "transaction")
	if err != nil {
		return err
	}
	cur, err := a.api.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	in := models.TransactionInput{
		Description:     cur.Description,
		Amount:          cur.Amount,
		TransactionType: cur.TransactionType,
		Category:        cur.Category,
		Date:            &models.Date{Time: cur.Date.Time},
	}
	set := visited(fs)
	if set["desc"] {
		in.Description = *f.description
	}
	if set["amount"] {
		in.Amount = *f.amount
	}
	if set["type"] {
		in.TransactionType = models.TransactionType(*f.typ)
	}
	if set["category"] {
		in.Category = *f.category
	}
	if set["date"] {
		if in.Date, err = optionalDate(*f.date); err != nil {
			return err
		}
	}
	if _, err := a.api.UpdateTransaction(ctx, id, in); err != nil {
		return err
	}
	a.println("Transaction updated")
	return nil
}

func txDelete(ctx context.Context, a *app, args []string) error {
	positional, err := parse(a.flags("tx delete"), args)
	if err != nil {
		return err
	}
	id, err := idArg(positional, "transaction")
	if err != nil {
		return err
	}
	if err := a.confirm(fmt.Sprintf("Delete transaction #%d?", id)); err != nil {
		return err
	}
	if err := a.api.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	a.println("Transaction deleted")
	return nil
}

func txExport(ctx context.Context, a *app, args []string) error {
	fs := a.flags("tx export")
	from := fs.String("from", "", "start date YYYY-MM-DD")
	to := fs.String("to", "", "end date YYYY-MM-DD")
	format := fs.String("format", "csv", "csv or json")
	out := fs.String("out", "", "write to this file instead of stdout")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	q := api.ExportQuery{Format: *format}
	var err error
	if q.DateFrom, err = optionalDate(*from); err != nil {
		return err
	}
	if q.DateTo, err = optionalDate(*to); err != nil {
		return err
	}
	data, contentType, err := a.api.ExportTransactions(ctx, q)
	if err != nil {
		return err
	}
	logger.Get().Debugw("export downloaded", "content_type", contentType, "bytes", len(data))
	if *out == "" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	a.printf("Exported %d bytes to %s\n", len(data), *out)
	return nil
}

func txStats(ctx context.Context, a *app, args []string) error {
	fs := a.flags("tx stats")
	from := fs.String("from", "", "start date YYYY-MM-DD")
	to := fs.String("to", "", "end date YYYY-MM-DD")
	groupBy := fs.String("group-by", "", "day, week or month; shows a timeline instead of categories")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	q := api.StatsQuery{GroupBy: *groupBy}
	var err error
	if q.DateFrom, err = optionalDate(*from); err != nil {
		return err
	}
	if q.DateTo, err = optionalDate(*to); err != nil {
		return err
	}

	if q.GroupBy != "" {
		points, err := a.api.TimelineStats(ctx, q)
		if err != nil {
			return err
		}
		for _, p := range points {
			a.printf("%-12s income %12s  expenses %12s\n", p.Period, derive.Money(p.Income), derive.Money(p.Expenses))
		}
		return nil
	}
	stats, err := a.api.CategoryStats(ctx, q)
	if err != nil {
		return err
	}
	for _, s := range stats {
		a.printf("%-16s %12s  (%d transactions)\n", s.Category, derive.Money(s.Total), s.Count)
	}
	return nil
}

// Analytics

func summary(ctx context.Context, a *app, _ []string) error {
	s, err := a.api.Summary(ctx)
	if err != nil && !a.session.Active() {
		return err
	}
	var txs []models.Transaction
	if err != nil {
		logger.Get().Warnw("summary unavailable, computing locally", "error", err)
		if txs, err = a.api.ListTransactions(ctx, api.TransactionQuery{Page: api.PageRequest{PageSize: 500}}); err != nil {
			return err
		}
	}
	resolved, source := derive.SummaryOrFallback(s, txs)
	a.println(render.Summary(resolved, source))
	return nil
}

func monthly(ctx context.Context, a *app, _ []string) error {
	months, err := a.api.Monthly(ctx)
	if err != nil {
		return err
	}
	for _, m := range months {
		a.printf("%-16s income %12s  expenses %12s  saved %12s\n",
			m.Month, derive.Money(m.Income), derive.Money(m.Expenses), derive.Money(m.Savings))
	}
	return nil
}

// Budgets

func budgetsList(ctx context.Context, a *app, args []string) error {
	fs := a.flags("budgets list")
	p := views.PeriodOf(time.Now())
	fs.IntVar(&p.Month, "month", p.Month, "month 1-12")
	fs.IntVar(&p.Year, "year", p.Year, "year")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	budgets, err := a.api.ListBudgets(ctx, p.Month, p.Year)
	if err != nil {
		return err
	}
	resolved := make([]derive.ResolvedBudget, 0, len(budgets))
	for _, b := range budgets {
		resolved = append(resolved, derive.ResolveBudget(b))
	}
	a.println("Budgets for " + p.String())
	a.println(render.BudgetList(resolved))
	return nil
}

func budgetsAdd(ctx context.Context, a *app, args []string) error {
	fs := a.flags("budgets add")
	now := views.PeriodOf(time.Now())
	var in models.BudgetInput
	fs.StringVar(&in.Category, "category", "", "category")
	fs.Float64Var(&in.MonthlyLimit, "limit", 0, "monthly limit")
	fs.IntVar(&in.Month, "month", now.Month, "month 1-12")
	fs.IntVar(&in.Year, "year", now.Year, "year")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	b, err := a.api.CreateBudget(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Budget created (#%d, %s)\n", b.ID, b.Category)
	return nil
}

func budgetsUpdate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("budgets update")
	limit := fs.Float64("limit", 0, "monthly limit")
	month := fs.Int("month", 0, "month 1-12")
	year := fs.Int("year", 0, "year")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := idArg(positional, "budget")
	if err != nil {
		return err
	}
	var in models.BudgetUpdate
	set := visited(fs)
	if set["limit"] {
		in.MonthlyLimit = limit
	}
	if set["month"] {
		in.Month = month
	}
	if set["year"] {
		in.Year = year
	}
	if _, err := a.api.UpdateBudget(ctx, id, in); err != nil {
		return err
	}
	a.println("Budget updated")
	return nil
}

func budgetsDelete(ctx context.Context, a *app, args []string) error {
	positional, err := parse(a.flags("budgets delete"), args)
	if err != nil {
		return err
	}
	id, err := idArg(positional, "budget")
	if err != nil {
		return err
	}
	if err := a.confirm(fmt.Sprintf("Delete budget #%d?", id)); err != nil {
		return err
	}
	if err := a.api.DeleteBudget(ctx, id); err != nil {
		return err
	}
	a.println("Budget deleted")
	return nil
}

// Goals

func goalsList(ctx context.Context, a *app, args []string) error {
	fs := a.flags("goals list")
	all := fs.Bool("all", false, "include completed goals")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	goals, err := a.api.ListGoals(ctx, *all)
	if err != nil {
		return err
	}
	today := time.Now()
	resolved := make([]derive.ResolvedGoal, 0, len(goals))
	for _, g := range goals {
		resolved = append(resolved, derive.ResolveGoal(g, today))
	}
	a.println(render.GoalList(resolved))
	return nil
}

func goalsAdd(ctx context.Context, a *app, args []string) error {
	fs := a.flags("goals add")
	var in models.GoalInput
	fs.StringVar(&in.Name, "name", "", "goal name")
	fs.StringVar(&in.Description, "description", "", "optional description")
	fs.Float64Var(&in.TargetAmount, "target", 0, "target amount")
	fs.Float64Var(&in.CurrentAmount, "saved", 0, "amount already saved")
	date := fs.String("date", "", "target date YYYY-MM-DD")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	d, err := optionalDate(*date)
	if err != nil {
		return err
	}
	if d == nil {
		return invalid("--date is required")
	}
	in.TargetDate = *d
	g, err := a.api.CreateGoal(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Goal created (#%d, %s)\n", g.ID, g.Name)
	return nil
}

func goalsContribute(ctx context.Context, a *app, args []string) error {
	fs := a.flags("goals contribute")
	amount := fs.Float64("amount", 0, "amount to add")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := idArg(positional, "goal")
	if err != nil {
		return err
	}
	if !visited(fs)["amount"] && len(positional) > 1 {
		v, err := strconv.ParseFloat(positional[1], 64)
		if err != nil {
			return invalid(fmt.Sprintf("%q is not an amount", positional[1]))
		}
		*amount = v
	}
	g, err := a.api.Contribute(ctx, id, *amount)
	if err != nil {
		return err
	}
	r := derive.ResolveGoal(*g, time.Now())
	a.printf("Added %s to %s: %s of %s (%s)\n", derive.Money(*amount), r.Name,
		derive.Money(r.CurrentAmount), derive.Money(r.TargetAmount), derive.Percent(r.Progress))
	return nil
}

func goalsDelete(ctx context.Context, a *app, args []string) error {
	positional, err := parse(a.flags("goals delete"), args)
	if err != nil {
		return err
	}
	id, err := idArg(positional, "goal")
	if err != nil {
		return err
	}
	if err := a.confirm(fmt.Sprintf("Delete goal #%d?", id)); err != nil {
		return err
	}
	if err := a.api.DeleteGoal(ctx, id); err != nil {
		return err
	}
	a.println("Goal deleted")
	return nil
}

// AI

func chat(ctx context.Context, a *app, args []string) error {
	env := a.env(ctx, a.confirmer())
	conv := views.NewChat(a.api, env)

	if msg := strings.TrimSpace(strings.Join(args, " ")); msg != "" {
		if err := conv.Send(ctx, msg); err != nil {
			return err
		}
		msgs := conv.Messages()
		a.println(msgs[len(msgs)-1].Content)
		return nil
	}

	a.println(views.Greeting)
	a.println("(empty line to quit)")
	for {
		fmt.Fprint(a.out, "> ")
		line, err := a.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}
		if sendErr := conv.Send(ctx, line); sendErr != nil {
			if !a.session.Active() {
				return sendErr
			}
			fmt.Fprintln(a.errOut, "Error: "+apperrors.UserMessage(sendErr))
		} else {
			msgs := conv.Messages()
			a.println(msgs[len(msgs)-1].Content)
		}
		if err != nil {
			return nil
		}
	}
}

func insights(ctx context.Context, a *app, _ []string) error {
	list, err := a.api.Insights(ctx)
	if err != nil {
		return err
	}
	a.println(render.Insights(list))
	return nil
}

func tips(ctx context.Context, a *app, _ []string) error {
	list, err := a.api.Tips(ctx)
	if err != nil {
		return err
	}
	a.println(render.Tips(list))
	return nil
}

func forecast(ctx context.Context, a *app, args []string) error {
	fs := a.flags("forecast")
	months := fs.Int("months", views.DefaultForecastMonths, "months ahead (1-12)")
	category := fs.String("category", "", "only this category")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	f, err := a.api.Forecast(ctx, *months, *category)
	if err != nil {
		return err
	}
	a.println(render.ForecastVariant(f.Variant()))
	return nil
}

func categoryForecast(ctx context.Context, a *app, args []string) error {
	fs := a.flags("category-forecast")
	months := fs.Int("months", 1, "months ahead (1-6)")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	c, err := a.api.CategoryForecast(ctx, *months)
	if err != nil {
		return err
	}
	a.println(render.CategoryForecast(*c))
	return nil
}

// Profile

func profileShow(ctx context.Context, a *app, _ []string) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.println(render.User(*u))
	return nil
}

func profileUpdate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("profile update")
	var in models.ProfileUpdate
	fs.StringVar(&in.FullName, "name", "", "full name")
	fs.StringVar(&in.Username, "username", "", "username")
	fs.StringVar(&in.Email, "email", "", "email")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if in == (models.ProfileUpdate{}) {
		return invalid("nothing to update: pass --name, --username or --email")
	}
	if _, err := a.api.UpdateMe(ctx, in); err != nil {
		return err
	}
	a.println("Profile updated")
	return nil
}

func profilePassword(ctx context.Context, a *app, args []string) error {
	fs := a.flags("profile password")
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	in := models.PasswordChange{
		CurrentPassword: a.ask("Current password", *current),
		NewPassword:     a.ask("New password", *next),
	}
	in.ConfirmPassword = a.ask("Confirm new password", *confirm)
	msg, err := a.api.ChangePassword(ctx, in)
	if err != nil {
		return err
	}
	text := msg.Message
	if text == "" {
		text = "Password changed"
	}
	a.println(text)
	return nil
}

func profileDeactivate(ctx context.Context, a *app, _ []string) error {
	if err := a.confirm("Deactivate your account? You will be signed out."); err != nil {
		return err
	}
	if err := a.api.Deactivate(ctx); err != nil {
		return err
	}
	a.println("Account deactivated")
	return nil
}

func profileReactivate(ctx context.Context, a *app, _ []string) error {
	u, err := a.api.Reactivate(ctx)
	if err != nil {
		return err
	}
	a.printf("Account reactivated for %s\n", u.Email)
	return nil
}

// Dashboard

func dashboard(ctx context.Context, a *app, _ []string) error {
	confirm := &tui.Confirmer{}
	env := a.env(ctx, confirm)
	v := &tui.Views{
		Auth:         views.NewAuth(a.api, env),
		Dashboard:    views.NewDashboard(a.api, env),
		Transactions: views.NewTransactions(a.api, env),
		Budgets:      views.NewBudgets(a.api, env),
		Goals:        views.NewGoals(a.api, env),
		Forecast:     views.NewForecast(a.api, env),
		Chat:         views.NewChat(a.api, env),
		Profile:      views.NewProfile(a.api, env),
	}
	defer v.Close()

	p := tea.NewProgram(tui.New(ctx, v, env.Notices, a.session, confirm), tea.WithAltScreen(), tea.WithContext(ctx))
	a.redirect.Attach(p)
	_, err := p.Run()
	return err
}
