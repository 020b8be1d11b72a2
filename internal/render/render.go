package render

import (
	"fmt"
	"strings"

	"finadvisor/internal/derive"
	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/models"
	"finadvisor/internal/views"
)

// BarWidth is the number of cells in a progress bar.
const BarWidth = 20

// Empty-state messages.
const (
	NoTransactions = "No transactions found. Add your first transaction to get started."
	NoBudgets      = "No budgets for this month. Create one to start tracking your spending."
	NoGoals        = "No savings goals yet. Create one to start saving."
	NoInsights     = "No insights yet. Add some transactions first."
)

// ProgressBar draws percent as a bar of width cells. Values outside 0..100
// are clamped.
func ProgressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// resource renders the common loading and error phases around body. An
// error with earlier data shows the data with the error underneath.
func resource[T any](s views.State[T], body func(T) string) string {
	switch {
	case s.Status == views.StatusIdle, s.Status == views.StatusLoading && !s.HasData:
		return mutedStyle.Render("Loading…")
	case s.Status == views.StatusError && !s.HasData:
		return Error(s.Err)
	}
	out := body(s.Data)
	if s.Status == views.StatusError {
		out += "\n" + Error(s.Err)
	}
	return out
}

// Error renders a failed read with the retry hint.
func Error(err error) string {
	return errorStyle.Render("Error: "+apperrors.UserMessage(err)) + mutedStyle.Render("  (press r to retry)")
}

// Notices renders transient messages, one per line.
func Notices(notices []views.Notice) string {
	lines := make([]string, 0, len(notices))
	for _, n := range notices {
		if n.Kind == views.NoticeError {
			lines = append(lines, errorStyle.Render("✗ "+n.Text))
		} else {
			lines = append(lines, successStyle.Render("✓ "+n.Text))
		}
	}
	return strings.Join(lines, "\n")
}

func amount(tx models.Transaction) string {
	if tx.TransactionType == models.TransactionTypeIncome {
		return incomeStyle.Render("+" + derive.Money(tx.Amount))
	}
	return expenseStyle.Render("-" + derive.Money(tx.Amount))
}

// TransactionList renders transactions as aligned rows.
func TransactionList(txs []models.Transaction) string {
	if len(txs) == 0 {
		return mutedStyle.Render(NoTransactions)
	}
	var b strings.Builder
	for _, tx := range txs {
		fmt.Fprintf(&b, "#%-5d %s  %-30s %-16s %s\n",
			tx.ID, tx.Date.Format(models.DateLayout), truncate(tx.Description, 30), tx.Category, amount(tx))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Totals renders income, expenses and net of a list.
func Totals(t derive.TransactionTotals) string {
	return fmt.Sprintf("Income %s   Expenses %s   Net %s   (%d transactions)",
		incomeStyle.Render(derive.MoneyDecimal(t.Income)),
		expenseStyle.Render(derive.MoneyDecimal(t.Expenses)),
		derive.MoneyDecimal(t.Net),
		t.Count)
}

// Transactions renders the tracking screen.
func Transactions(s views.State[views.TransactionsData], f views.TransactionFilter) string {
	return resource(s, func(d views.TransactionsData) string {
		var b strings.Builder
		b.WriteString(titleStyle.Render("Transactions") + "\n")
		if f != (views.TransactionFilter{}) {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("filter: search=%q category=%q type=%q", f.Search, f.Category, f.Type)) + "\n")
		}
		b.WriteString(Totals(d.Totals) + "\n\n")
		b.WriteString(TransactionList(d.Visible))
		return b.String()
	})
}

// Summary renders analytics totals and the category breakdown.
func Summary(summary models.AnalyticsSummary, source derive.Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total income    %s\n", incomeStyle.Render(derive.Money(summary.TotalIncome)))
	fmt.Fprintf(&b, "Total expenses  %s\n", expenseStyle.Render(derive.Money(summary.TotalExpenses)))
	fmt.Fprintf(&b, "Net savings     %s\n", derive.Money(summary.NetSavings))
	fmt.Fprintf(&b, "Savings rate    %s", derive.Percent(summary.SavingsRate))
	if source == derive.SourceFallback {
		b.WriteString(mutedStyle.Render("  (computed locally)"))
	}
	shares := derive.SortedBreakdown(summary.CategoryBreakdown)
	if len(shares) > 0 {
		b.WriteString("\n\n" + headerStyle.Render("Spending by category") + "\n")
		for _, s := range shares {
			fmt.Fprintf(&b, "%-16s %12s  %s %s\n", s.Category, derive.Money(s.Amount),
				ProgressBar(s.Percent, BarWidth/2), derive.Percent(s.Percent))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Insights renders AI insights.
func Insights(insights []models.Insight) string {
	if len(insights) == 0 {
		return mutedStyle.Render(NoInsights)
	}
	var b strings.Builder
	for _, in := range insights {
		fmt.Fprintf(&b, "%s %s\n  %s\n", insightStyle(in.Type).Render("●"), in.Title, in.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Tips renders savings tips.
func Tips(tips []models.Tip) string {
	var b strings.Builder
	for _, t := range tips {
		fmt.Fprintf(&b, "• %s %s\n  %s\n", t.Title, mutedStyle.Render("["+t.Impact+" impact, "+t.Difficulty+"]"), t.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Dashboard renders the overview screen.
func Dashboard(s views.State[views.DashboardData]) string {
	return resource(s, func(d views.DashboardData) string {
		return strings.Join([]string{
			titleStyle.Render("Overview"),
			Summary(d.Summary, d.SummarySource),
			headerStyle.Render("Recent transactions"),
			TransactionList(d.Recent),
			headerStyle.Render("AI insights"),
			Insights(d.Insights),
		}, "\n\n")
	})
}

// BudgetList renders resolved budgets with usage bars.
func BudgetList(budgets []derive.ResolvedBudget) string {
	if len(budgets) == 0 {
		return mutedStyle.Render(NoBudgets)
	}
	var b strings.Builder
	for _, r := range budgets {
		style := budgetStatusStyle(r.Status)
		fmt.Fprintf(&b, "#%-4d %-16s %s / %s  %s %s  remaining %s\n",
			r.ID, r.Category,
			derive.Money(r.CurrentSpent), derive.Money(r.MonthlyLimit),
			style.Render(ProgressBar(r.BarWidth, BarWidth)),
			style.Render(fmt.Sprintf("%6s %s", derive.Percent(r.PercentageUsed), statusLabel(string(r.Status)))),
			derive.Money(r.Remaining))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Budgets renders the budgets screen.
func Budgets(s views.State[views.BudgetsData], period views.Period) string {
	return resource(s, func(d views.BudgetsData) string {
		return titleStyle.Render("Budgets: "+period.String()) + "\n\n" + BudgetList(d.Budgets)
	})
}

// GoalList renders resolved goals with progress bars.
func GoalList(goals []derive.ResolvedGoal) string {
	if len(goals) == 0 {
		return mutedStyle.Render(NoGoals)
	}
	var b strings.Builder
	for _, g := range goals {
		style := goalStatusStyle(g.Status)
		fmt.Fprintf(&b, "#%-4d %-20s %s / %s  %s %s\n",
			g.ID, truncate(g.Name, 20),
			derive.Money(g.CurrentAmount), derive.Money(g.TargetAmount),
			style.Render(ProgressBar(g.BarWidth, BarWidth)),
			style.Render(fmt.Sprintf("%6s %s", derive.Percent(g.Progress), statusLabel(string(g.Status)))))
		if g.Status != models.GoalCompleted {
			fmt.Fprintf(&b, "      due %s  %d days left  remaining %s  %s/month\n",
				g.TargetDate.String(), g.DaysRemaining, derive.Money(g.Remaining), derive.Money(g.MonthlySavingsNeeded))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Goals renders the goals screen.
func Goals(s views.State[[]derive.ResolvedGoal], showCompleted bool) string {
	return resource(s, func(goals []derive.ResolvedGoal) string {
		title := "Savings goals"
		if showCompleted {
			title += mutedStyle.Render(" (including completed)")
		}
		return titleStyle.Render(title) + "\n\n" + GoalList(goals)
	})
}

// ForecastVariant renders whichever forecast the backend produced.
func ForecastVariant(v models.ForecastVariant) string {
	var b strings.Builder
	switch f := v.(type) {
	case models.ProphetForecast:
		fmt.Fprintf(&b, "Model: %s on %d data points\n", f.Model.Algorithm, f.Model.DataPoints)
		for _, m := range f.Months {
			fmt.Fprintf(&b, "%-16s %12s", m.Month, derive.Money(float64(m.PredictedExpenses)))
			if m.LowerBound != nil && m.UpperBound != nil {
				fmt.Fprintf(&b, "  (%s – %s)", derive.Money(float64(*m.LowerBound)), derive.Money(float64(*m.UpperBound)))
			}
			fmt.Fprintf(&b, "  %d%% confidence\n", m.Confidence)
		}
		writeTrend(&b, f.Trend)
	case models.StatisticalForecast:
		b.WriteString("Model: statistical average\n")
		for _, m := range f.Months {
			fmt.Fprintf(&b, "%-16s %12s  %d%% confidence\n", m.Month, derive.Money(float64(m.PredictedExpenses)), m.Confidence)
		}
		writeTrend(&b, f.Trend)
	case models.NoForecast:
		reason := f.Reason
		if reason == "" {
			reason = "Not enough data to forecast yet."
		}
		b.WriteString(mutedStyle.Render(reason))
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeTrend(b *strings.Builder, t *models.TrendAnalysis) {
	if t == nil {
		return
	}
	fmt.Fprintf(b, "Trend: %s (%+.1f%%) %s\n", t.Direction, t.ChangePercentage, t.Message)
}

// CategoryForecast renders next month's prediction per category.
func CategoryForecast(c models.CategoryForecastResponse) string {
	if len(c.CategoryForecasts) == 0 {
		msg := c.Message
		if msg == "" {
			msg = "No category forecast available."
		}
		return mutedStyle.Render(msg)
	}
	var b strings.Builder
	for _, f := range c.CategoryForecasts {
		fmt.Fprintf(&b, "%-16s avg %12s  next %12s  %+.1f%%\n", f.Category,
			derive.Money(float64(f.CurrentMonthlyAvg)), derive.Money(float64(f.PredictedNextMonth)), f.TrendPercentage)
	}
	fmt.Fprintf(&b, "Total predicted: %s", derive.Money(float64(c.TotalPredicted)))
	return b.String()
}

// Forecast renders the forecast screen.
func Forecast(s views.State[views.ForecastData]) string {
	return resource(s, func(d views.ForecastData) string {
		title := fmt.Sprintf("Expense forecast, next %d months", d.Params.Months)
		if d.Params.Category != "" {
			title += " (" + d.Params.Category + ")"
		}
		return titleStyle.Render(title) + "\n\n" + ForecastVariant(d.Forecast) +
			"\n\n" + headerStyle.Render("By category") + "\n" + CategoryForecast(d.Categories)
	})
}

// Chat renders the conversation.
func Chat(msgs []models.ChatMessage) string {
	var b strings.Builder
	for _, m := range msgs {
		switch {
		case m.Type == models.ChatRoleUser && m.Failed:
			fmt.Fprintf(&b, "%s %s %s\n", headerStyle.Render("You:"), m.Content, mutedStyle.Render("(not sent)"))
		case m.Type == models.ChatRoleUser:
			fmt.Fprintf(&b, "%s %s\n", headerStyle.Render("You:"), m.Content)
		case m.Failed:
			fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Advisor:"), errorStyle.Render(m.Content))
		default:
			fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Advisor:"), m.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// User renders a profile.
func User(u models.User) string {
	status := successStyle.Render("active")
	if !u.IsActive {
		status = errorStyle.Render("inactive")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Name      %s\n", u.FullName)
	fmt.Fprintf(&b, "Username  %s\n", u.Username)
	fmt.Fprintf(&b, "Email     %s\n", u.Email)
	fmt.Fprintf(&b, "Status    %s", status)
	if u.CreatedAt != nil {
		fmt.Fprintf(&b, "\nMember since %s", u.CreatedAt.Format("January 2006"))
	}
	return boxStyle.Render(b.String())
}

// Profile renders the account screen.
func Profile(s views.State[models.User]) string {
	return resource(s, func(u models.User) string {
		return titleStyle.Render("Profile") + "\n\n" + User(u)
	})
}

func statusLabel(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
