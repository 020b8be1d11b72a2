package testutil

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"finadvisor/internal/models"
	"finadvisor/internal/validator"
)

// summary sums with plain floats, as the Python backend does.
func (b *Backend) summary(c *gin.Context) {
	b.mu.Lock()
	txs := b.userTransactions(getUserID(c))
	b.mu.Unlock()

	var income, expenses float64
	breakdown := make(map[string]float64)
	for _, tx := range txs {
		switch tx.TransactionType {
		case models.TransactionTypeIncome:
			income += tx.Amount
		case models.TransactionTypeExpense:
			expenses += math.Abs(tx.Amount)
			breakdown[tx.Category] += math.Abs(tx.Amount)
		}
	}

	rate := 0.0
	if income > 0 {
		rate = (income - expenses) / income * 100
	}
	c.JSON(http.StatusOK, models.AnalyticsSummary{
		TotalIncome:       income,
		TotalExpenses:     expenses,
		NetSavings:        income - expenses,
		SavingsRate:       rate,
		CategoryBreakdown: breakdown,
	})
}

func (b *Backend) monthly(c *gin.Context) {
	b.mu.Lock()
	txs := b.userTransactions(getUserID(c))
	b.mu.Unlock()

	byMonth := make(map[string]*models.MonthlyData)
	for _, tx := range txs {
		key := tx.Date.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &models.MonthlyData{Month: key}
			byMonth[key] = m
		}
		if tx.TransactionType == models.TransactionTypeIncome {
			m.Income += tx.Amount
		} else {
			m.Expenses += math.Abs(tx.Amount)
		}
	}

	out := make([]models.MonthlyData, 0, len(byMonth))
	for _, m := range byMonth {
		m.Savings = m.Income - m.Expenses
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	c.JSON(http.StatusOK, out)
}

func (b *Backend) chat(c *gin.Context) {
	var in models.ChatRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if err := validator.Struct(in); err != nil {
		respondValidation(c, err)
		return
	}
	if len(in.ConversationHistory) > 10 {
		fail(c, http.StatusBadRequest, "Conversation history too long")
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		Response:  fmt.Sprintf("You asked: %s (%d earlier messages)", in.Message, len(in.ConversationHistory)),
		Timestamp: b.clock().Format("2006-01-02T15:04:05"),
	})
}

func (b *Backend) insights(c *gin.Context) {
	b.mu.Lock()
	txs := b.userTransactions(getUserID(c))
	b.mu.Unlock()

	if len(txs) == 0 {
		c.JSON(http.StatusOK, models.InsightsResponse{Insights: []models.Insight{}})
		return
	}
	c.JSON(http.StatusOK, models.InsightsResponse{Insights: []models.Insight{
		{Type: models.InsightPositive, Title: "Good Savings Habit", Message: "You're maintaining a healthy savings rate.", Confidence: "90%"},
		{Type: models.InsightWarning, Title: "Track Your Expenses", Message: "Some expense categories need closer monitoring.", Confidence: "88%"},
	}})
}

func (b *Backend) tips(c *gin.Context) {
	c.JSON(http.StatusOK, models.TipsResponse{Tips: []models.Tip{
		{Title: "Automate savings", Description: "Move a fixed amount to savings on payday.", Impact: "high", Difficulty: "easy"},
		{Title: "Review subscriptions", Description: "Cancel services you no longer use.", Impact: "medium", Difficulty: "easy"},
	}})
}

// forecastExpenses projects the average monthly expense with 2% growth per
// month.
func (b *Backend) forecastExpenses(c *gin.Context) {
	months, err := strconv.Atoi(c.DefaultQuery("months", "3"))
	if err != nil || months < 1 {
		fail(c, http.StatusUnprocessableEntity, "Invalid months")
		return
	}
	category := c.Query("category")

	b.mu.Lock()
	txs := b.userTransactions(getUserID(c))
	method := b.forecast
	now := b.now()
	b.mu.Unlock()

	avg, dataPoints := averageMonthlyExpense(txs, category)
	if dataPoints == 0 {
		c.JSON(http.StatusOK, gin.H{
			"forecast": []models.MonthlyForecast{},
			"method":   models.ForecastNone,
			"message":  "Not enough transaction history to forecast",
		})
		return
	}

	forecast := make([]models.MonthlyForecast, 0, months)
	for i := 1; i <= months; i++ {
		predicted := int64(avg * (1 + float64(i)*0.02))
		f := models.MonthlyForecast{
			Month:             now.AddDate(0, 0, 30*i).Format("January 2006"),
			PredictedExpenses: predicted,
			Confidence:        max(95-i*3, 70),
		}
		if method == models.ForecastProphet {
			lower := int64(float64(predicted) * 0.85)
			upper := int64(float64(predicted) * 1.15)
			f.LowerBound, f.UpperBound = &lower, &upper
		}
		forecast = append(forecast, f)
	}

	body := gin.H{"forecast": forecast}
	if method != "" {
		body["method"] = method
	}
	if method == models.ForecastProphet {
		body["model_info"] = models.ModelInfo{Algorithm: "prophet", DataPoints: dataPoints, TrainingPeriod: fmt.Sprintf("%d transactions", dataPoints)}
		body["trend_analysis"] = models.TrendAnalysis{Direction: "increasing", ChangePercentage: 2, Message: "Expenses are trending up"}
	}
	c.JSON(http.StatusOK, body)
}

func averageMonthlyExpense(txs []models.Transaction, category string) (float64, int) {
	var total float64
	var n int
	months := make(map[string]bool)
	for _, tx := range txs {
		if tx.TransactionType != models.TransactionTypeExpense {
			continue
		}
		if category != "" && tx.Category != category {
			continue
		}
		total += math.Abs(tx.Amount)
		months[tx.Date.Format("2006-01")] = true
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return total / float64(len(months)), n
}

func (b *Backend) categoryForecast(c *gin.Context) {
	months, err := strconv.Atoi(c.DefaultQuery("months", "1"))
	if err != nil || months < 1 {
		fail(c, http.StatusUnprocessableEntity, "Invalid months")
		return
	}

	b.mu.Lock()
	txs := b.userTransactions(getUserID(c))
	b.mu.Unlock()

	categories := make(map[string]bool)
	for _, tx := range txs {
		if tx.TransactionType == models.TransactionTypeExpense {
			categories[tx.Category] = true
		}
	}
	names := make([]string, 0, len(categories))
	for k := range categories {
		names = append(names, k)
	}
	sort.Strings(names)

	resp := models.CategoryForecastResponse{
		CategoryForecasts: []models.CategoryForecast{},
		ForecastPeriod:    fmt.Sprintf("%d month(s)", months),
	}
	for _, name := range names {
		avg, _ := averageMonthlyExpense(txs, name)
		predicted := int64(avg * 1.02)
		resp.CategoryForecasts = append(resp.CategoryForecasts, models.CategoryForecast{
			Category:           name,
			CurrentMonthlyAvg:  int64(avg),
			PredictedNextMonth: predicted,
			TrendPercentage:    2,
			Confidence:         80,
		})
		resp.TotalPredicted += predicted
	}
	if len(names) == 0 {
		resp.Message = "Not enough transaction history to forecast"
	}
	c.JSON(http.StatusOK, resp)
}

func (b *Backend) me(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.users[getUserID(c)].User)
}

func (b *Backend) updateMe(c *gin.Context) {
	var in models.ProfileUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if err := validator.Struct(in); err != nil {
		respondValidation(c, err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[getUserID(c)]
	if in.Email != "" && in.Email != u.Email {
		if b.userByEmail(in.Email) != nil {
			fail(c, http.StatusBadRequest, "Email already registered")
			return
		}
		u.Email = in.Email
	}
	if in.Username != "" && in.Username != u.Username {
		if b.userByUsername(in.Username) != nil {
			fail(c, http.StatusBadRequest, "Username already taken")
			return
		}
		u.Username = in.Username
	}
	if in.FullName != "" {
		u.FullName = in.FullName
	}
	c.JSON(http.StatusOK, u.User)
}

func (b *Backend) changePassword(c *gin.Context) {
	var in models.PasswordChange
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if in.NewPassword != in.ConfirmPassword {
		fail(c, http.StatusBadRequest, "New password and confirm password do not match")
		return
	}

	b.mu.Lock()
	u := b.users[getUserID(c)]
	hash := u.passwordHash
	b.mu.Unlock()

	if bcrypt.CompareHashAndPassword(hash, []byte(in.CurrentPassword)) != nil {
		fail(c, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(in.NewPassword)) == nil {
		fail(c, http.StatusBadRequest, "New password must be different from current password")
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.MinCost)
	if err != nil {
		respondWithError(c, err)
		return
	}
	b.mu.Lock()
	u.passwordHash = newHash
	b.mu.Unlock()
	c.JSON(http.StatusOK, models.Message{Message: "Password changed successfully"})
}

func (b *Backend) deactivate(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[getUserID(c)].IsActive = false
	c.Status(http.StatusNoContent)
}

func (b *Backend) reactivate(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[getUserID(c)]
	if u.IsActive {
		fail(c, http.StatusBadRequest, "Account is already active")
		return
	}
	u.IsActive = true
	c.JSON(http.StatusOK, u.User)
}
