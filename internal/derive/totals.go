// Package derive computes display values from backend records. The backend's
// own computed fields always win; these functions fill in the same values
// when the backend omits them, using the same formulas.
package derive

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"finadvisor/internal/models"
)

var hundred = decimal.NewFromInt(100)

// TransactionTotals is the aggregate of a transaction list. Amounts are
// summed exactly and only rounded for display.
type TransactionTotals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
	Count    int
}

// Totals sums income and expenses. Expenses are counted by absolute value
// so lists that store them as negative amounts aggregate the same way.
func Totals(txs []models.Transaction) TransactionTotals {
	var t TransactionTotals
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		switch tx.TransactionType {
		case models.TransactionTypeIncome:
			t.Income = t.Income.Add(amount)
		case models.TransactionTypeExpense:
			t.Expenses = t.Expenses.Add(amount.Abs())
		}
	}
	t.Net = t.Income.Sub(t.Expenses)
	t.Count = len(txs)
	return t
}

// SavingsRate returns net/income as a percentage, or zero without income.
func (t TransactionTotals) SavingsRate() decimal.Decimal {
	if !t.Income.IsPositive() {
		return decimal.Zero
	}
	return t.Net.Div(t.Income).Mul(hundred)
}

// Source says where a summary came from.
type Source int

const (
	SourceServer Source = iota
	SourceFallback
)

// SummaryOrFallback returns summary when the backend supplied one and
// otherwise derives the same shape from txs.
func SummaryOrFallback(summary *models.AnalyticsSummary, txs []models.Transaction) (models.AnalyticsSummary, Source) {
	if summary != nil {
		return *summary, SourceServer
	}

	t := Totals(txs)
	return models.AnalyticsSummary{
		TotalIncome:       t.Income.InexactFloat64(),
		TotalExpenses:     t.Expenses.InexactFloat64(),
		NetSavings:        t.Net.InexactFloat64(),
		SavingsRate:       t.SavingsRate().InexactFloat64(),
		CategoryBreakdown: CategoryBreakdown(txs),
	}, SourceFallback
}

// CategoryBreakdown sums expenses per category.
func CategoryBreakdown(txs []models.Transaction) map[string]float64 {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.TransactionType != models.TransactionTypeExpense {
			continue
		}
		category := tx.Category
		if category == "" {
			category = "Other"
		}
		sums[category] = sums[category].Add(decimal.NewFromFloat(tx.Amount).Abs())
	}

	out := make(map[string]float64, len(sums))
	for k, v := range sums {
		out[k] = v.InexactFloat64()
	}
	return out
}

// CategoryShare is one slice of a category breakdown.
type CategoryShare struct {
	Category string
	Amount   float64
	Percent  float64
}

// SortedBreakdown orders a breakdown by amount, largest first, and adds each
// category's share of the total.
func SortedBreakdown(breakdown map[string]float64) []CategoryShare {
	total := decimal.Zero
	for _, v := range breakdown {
		total = total.Add(decimal.NewFromFloat(v))
	}

	shares := make([]CategoryShare, 0, len(breakdown))
	for k, v := range breakdown {
		share := CategoryShare{Category: k, Amount: v}
		if total.IsPositive() {
			share.Percent = decimal.NewFromFloat(v).Div(total).Mul(hundred).InexactFloat64()
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

// FilterTransactions keeps transactions whose description contains search
// (case-insensitive) and whose category equals category. Empty arguments
// match everything.
func FilterTransactions(txs []models.Transaction, search, category string) []models.Transaction {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if search != "" && !strings.Contains(strings.ToLower(tx.Description), search) {
			continue
		}
		if category != "" && tx.Category != category {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Categories returns the distinct categories in txs, sorted.
func Categories(txs []models.Transaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range txs {
		if tx.Category == "" || seen[tx.Category] {
			continue
		}
		seen[tx.Category] = true
		out = append(out, tx.Category)
	}
	sort.Strings(out)
	return out
}

// Money formats an amount with two decimals and thousands separators.
func Money(amount float64) string {
	return MoneyDecimal(decimal.NewFromFloat(amount))
}

// MoneyDecimal formats d like Money.
func MoneyDecimal(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Percent formats p with one decimal.
func Percent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(1) + "%"
}

// EqualCents reports whether a and b agree once rounded to cents.
func EqualCents(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
