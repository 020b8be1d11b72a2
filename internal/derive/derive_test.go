package derive

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finadvisor/internal/models"
)

func tx(desc string, amount float64, typ models.TransactionType, category string) models.Transaction {
	return models.Transaction{Description: desc, Amount: amount, TransactionType: typ, Category: category}
}

func ptr[T any](v T) *T { return &v }

func TestTotals(t *testing.T) {
	txs := []models.Transaction{
		tx("Salary", 5000, models.TransactionTypeIncome, "Income"),
		tx("Coffee", 4.50, models.TransactionTypeExpense, "Food & Dining"),
		tx("Rent", 1500, models.TransactionTypeExpense, "Housing"),
		tx("Refund", -20, models.TransactionTypeExpense, "Shopping"),
	}

	got := Totals(txs)
	assert.Equal(t, "5000", got.Income.String())
	assert.Equal(t, "1524.5", got.Expenses.String())
	assert.Equal(t, "3475.5", got.Net.String())
	assert.Equal(t, 4, got.Count)
}

func TestTotals_Empty(t *testing.T) {
	got := Totals(nil)
	assert.True(t, got.Income.IsZero())
	assert.True(t, got.Expenses.IsZero())
	assert.True(t, got.Net.IsZero())
	assert.Equal(t, 0, got.Count)
	assert.True(t, got.SavingsRate().IsZero())
}

func TestTotals_NetIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := rng.Intn(50)
		txs := make([]models.Transaction, n)
		for j := range txs {
			typ := models.TransactionTypeIncome
			if rng.Intn(2) == 0 {
				typ = models.TransactionTypeExpense
			}
			cents := rng.Int63n(1_000_000)
			txs[j] = tx("x", float64(cents)/100, typ, "c")
		}

		got := Totals(txs)
		require.True(t, got.Income.Sub(got.Expenses).Equal(got.Net), "iteration %d", i)
		require.Equal(t, n, got.Count)
	}
}

func TestTotals_NoRoundingBeforeSummation(t *testing.T) {
	txs := []models.Transaction{
		tx("a", 0.005, models.TransactionTypeExpense, "c"),
		tx("b", 0.005, models.TransactionTypeExpense, "c"),
	}
	got := Totals(txs)
	assert.Equal(t, "0.01", got.Expenses.String())
	assert.Equal(t, "0.01", MoneyDecimal(got.Expenses))
}

func TestTotals_CoffeeAddsExactly(t *testing.T) {
	before := []models.Transaction{
		tx("Groceries", 82.37, models.TransactionTypeExpense, "Food & Dining"),
		tx("Bus", 2.75, models.TransactionTypeExpense, "Transportation"),
	}
	after := append(append([]models.Transaction{}, before...), tx("Coffee", 4.50, models.TransactionTypeExpense, "Food & Dining"))

	diff := Totals(after).Expenses.Sub(Totals(before).Expenses)
	assert.True(t, diff.Equal(decimal.RequireFromString("4.50")), "diff = %s", diff)
}

func TestSummaryOrFallback(t *testing.T) {
	txs := []models.Transaction{
		tx("Salary", 4000, models.TransactionTypeIncome, "Income"),
		tx("Coffee", 4.50, models.TransactionTypeExpense, "Food & Dining"),
		tx("Lunch", 12, models.TransactionTypeExpense, "Food & Dining"),
		tx("Taxi", 30, models.TransactionTypeExpense, "Transportation"),
	}

	server := &models.AnalyticsSummary{TotalIncome: 1, NetSavings: 1}
	got, src := SummaryOrFallback(server, txs)
	assert.Equal(t, SourceServer, src)
	assert.Equal(t, *server, got)

	got, src = SummaryOrFallback(nil, txs)
	assert.Equal(t, SourceFallback, src)
	assert.Equal(t, 4000.0, got.TotalIncome)
	assert.Equal(t, 46.5, got.TotalExpenses)
	assert.Equal(t, 3953.5, got.NetSavings)
	assert.InDelta(t, 98.8375, got.SavingsRate, 1e-9)
	assert.Equal(t, map[string]float64{"Food & Dining": 16.5, "Transportation": 30}, got.CategoryBreakdown)
}

func TestSummaryOrFallback_MatchesFloatSummary(t *testing.T) {
	// A backend summing floats naively must agree with the exact sum once
	// both are shown at two decimals.
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		var txs []models.Transaction
		var income, expenses float64
		for j := 0; j < 30; j++ {
			amount := float64(rng.Int63n(100_000)) / 100
			if rng.Intn(3) == 0 {
				income += amount
				txs = append(txs, tx("in", amount, models.TransactionTypeIncome, "Income"))
			} else {
				expenses += amount
				txs = append(txs, tx("out", amount, models.TransactionTypeExpense, "Other"))
			}
		}
		got, _ := SummaryOrFallback(nil, txs)
		require.True(t, EqualCents(got.NetSavings, income-expenses), "iteration %d: %v vs %v", i, got.NetSavings, income-expenses)
	}
}

func TestFilterTransactions(t *testing.T) {
	txs := []models.Transaction{
		tx("Morning Coffee", 4.5, models.TransactionTypeExpense, "Food & Dining"),
		tx("coffee beans", 18, models.TransactionTypeExpense, "Groceries"),
		tx("Salary", 4000, models.TransactionTypeIncome, "Income"),
	}

	assert.Len(t, FilterTransactions(txs, "", ""), 3)
	assert.Len(t, FilterTransactions(txs, "COFFEE", ""), 2)
	assert.Len(t, FilterTransactions(txs, "coffee", "Groceries"), 1)
	assert.Empty(t, FilterTransactions(txs, "rent", ""))
	assert.NotNil(t, FilterTransactions(nil, "x", ""))
}

func TestCategoriesAndBreakdown(t *testing.T) {
	txs := []models.Transaction{
		tx("a", 10, models.TransactionTypeExpense, "Shopping"),
		tx("b", 30, models.TransactionTypeExpense, "Food & Dining"),
		tx("c", 10, models.TransactionTypeExpense, "Shopping"),
	}
	assert.Equal(t, []string{"Food & Dining", "Shopping"}, Categories(txs))

	shares := SortedBreakdown(CategoryBreakdown(txs))
	require.Len(t, shares, 2)
	assert.Equal(t, "Food & Dining", shares[0].Category)
	assert.InDelta(t, 60.0, shares[0].Percent, 1e-9)
	assert.InDelta(t, 40.0, shares[1].Percent, 1e-9)
}

func TestResolveBudget(t *testing.T) {
	tests := []struct {
		name          string
		limit, spent  float64
		wantRemaining float64
		wantPercent   float64
		wantStatus    models.BudgetStatus
		wantBar       float64
	}{
		{"under", 500, 100, 400, 20, models.BudgetUnderBudget, 20},
		{"just below near", 500, 399.95, 100.05, 79.99, models.BudgetUnderBudget, 79.99},
		{"rounds to 80 but stays under", 500, 399.99, 100.01, 80, models.BudgetUnderBudget, 80},
		{"near at 80", 500, 400, 100, 80, models.BudgetNearLimit, 80},
		{"rounds to 100 but stays near", 1000, 999.999, 0.001, 100, models.BudgetNearLimit, 100},
		{"over at 100", 500, 500, 0, 100, models.BudgetOverBudget, 100},
		{"over", 500, 650, -150, 130, models.BudgetOverBudget, 100},
		{"zero limit", 0, 50, -50, 0, models.BudgetUnderBudget, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveBudget(models.Budget{MonthlyLimit: tt.limit, CurrentSpent: tt.spent})
			assert.InDelta(t, tt.wantRemaining, got.Remaining, 1e-9)
			assert.InDelta(t, tt.wantPercent, got.PercentageUsed, 1e-9)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.InDelta(t, tt.wantBar, got.BarWidth, 1e-9)
		})
	}
}

func TestResolveBudget_ServerValuesWin(t *testing.T) {
	got := ResolveBudget(models.Budget{
		MonthlyLimit:   500,
		CurrentSpent:   100,
		Remaining:      ptr(123.0),
		PercentageUsed: ptr(55.5),
		Status:         models.BudgetNearLimit,
	})
	assert.Equal(t, 123.0, got.Remaining)
	assert.Equal(t, 55.5, got.PercentageUsed)
	assert.Equal(t, models.BudgetNearLimit, got.Status)
}

func TestResolveGoal(t *testing.T) {
	today := time.Date(2025, time.January, 1, 15, 0, 0, 0, time.UTC)

	g := models.Goal{
		TargetAmount:  100000,
		CurrentAmount: 25000,
		TargetDate:    models.NewDate(2025, time.December, 27),
	}
	got := ResolveGoal(g, today)
	assert.Equal(t, 75000.0, got.Remaining)
	assert.Equal(t, 25.0, got.Progress)
	assert.Equal(t, 25.0, got.BarWidth)
	assert.Equal(t, 360, got.DaysRemaining)
	assert.Equal(t, 6250.0, got.MonthlySavingsNeeded)
	assert.Equal(t, models.GoalOnTrack, got.Status)
}

func TestResolveGoal_OverContributionCapsBar(t *testing.T) {
	today := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	got := ResolveGoal(models.Goal{
		TargetAmount:  1000,
		CurrentAmount: 1500,
		IsCompleted:   true,
		TargetDate:    models.NewDate(2025, time.June, 1),
	}, today)

	assert.Equal(t, 150.0, got.Progress)
	assert.Equal(t, 100.0, got.BarWidth)
	assert.Equal(t, 0.0, got.Remaining)
	assert.Equal(t, 0.0, got.MonthlySavingsNeeded)
	assert.Equal(t, models.GoalCompleted, got.Status)
}

func TestResolveGoal_BarNeverExceeds100(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	today := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		g := models.Goal{
			TargetAmount:  float64(rng.Int63n(100_000) + 1),
			CurrentAmount: float64(rng.Int63n(300_000)),
			TargetDate:    models.NewDate(2025, time.March, 1),
		}
		got := ResolveGoal(g, today)
		require.LessOrEqual(t, got.BarWidth, 100.0)
		require.GreaterOrEqual(t, got.BarWidth, 0.0)
		require.InDelta(t, GoalProgress(g.TargetAmount, g.CurrentAmount), got.Progress, 1e-9)
	}
}

func TestResolveGoal_StatusRules(t *testing.T) {
	today := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	overdue := ResolveGoal(models.Goal{TargetAmount: 100, CurrentAmount: 10, TargetDate: models.NewDate(2024, time.December, 1)}, today)
	assert.Equal(t, models.GoalOverdue, overdue.Status)
	assert.Equal(t, 0, overdue.DaysRemaining)

	// 9 days left: on track requires at least 10% progress.
	due := models.NewDate(2025, time.January, 10)
	assert.Equal(t, models.GoalBehind, ResolveGoal(models.Goal{TargetAmount: 100, CurrentAmount: 9, TargetDate: due}, today).Status)
	assert.Equal(t, models.GoalOnTrack, ResolveGoal(models.Goal{TargetAmount: 100, CurrentAmount: 10, TargetDate: due}, today).Status)

	// Due today: shown as 100% but not reached.
	dueToday := models.NewDate(2025, time.January, 1)
	almost := ResolveGoal(models.Goal{TargetAmount: 1000, CurrentAmount: 999.99, TargetDate: dueToday}, today)
	assert.Equal(t, 100.0, almost.Progress)
	assert.Equal(t, models.GoalBehind, almost.Status)
	assert.Equal(t, models.GoalBehind, ResolveGoal(models.Goal{TargetAmount: 100000, CurrentAmount: 99999, TargetDate: dueToday}, today).Status)
	assert.Equal(t, models.GoalOnTrack, ResolveGoal(models.Goal{TargetAmount: 1000, CurrentAmount: 1000, TargetDate: dueToday}, today).Status)

	assert.Equal(t, models.GoalBehind, ResolveGoal(models.Goal{TargetAmount: 0, CurrentAmount: 5, TargetDate: due}, today).Status)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "4.50", Money(4.5))
	assert.Equal(t, "0.00", Money(0))
	assert.Equal(t, "1,234,567.89", Money(1234567.891))
	assert.Equal(t, "-1,500.00", Money(-1500))
	assert.Equal(t, "100.00", Money(99.999))
	assert.Equal(t, "25.0%", Percent(25))
}
