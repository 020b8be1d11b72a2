package testutil

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"finadvisor/internal/models"
	"finadvisor/internal/validator"
)

// budgetResponse fills in spending and the computed fields. It must be
// called with b.mu held.
func (b *Backend) budgetResponse(budget *models.Budget) models.Budget {
	out := *budget
	spent := 0.0
	for _, tx := range b.transactions {
		if tx.UserID != budget.UserID || tx.TransactionType != models.TransactionTypeExpense || tx.Category != budget.Category {
			continue
		}
		if int(tx.Date.Month()) == budget.Month && tx.Date.Year() == budget.Year {
			spent += tx.Amount
		}
	}
	out.CurrentSpent = spent

	remaining := budget.MonthlyLimit - spent
	percent := 0.0
	if budget.MonthlyLimit > 0 {
		percent = spent / budget.MonthlyLimit * 100
	}
	switch {
	case percent >= 100:
		out.Status = models.BudgetOverBudget
	case percent >= 80:
		out.Status = models.BudgetNearLimit
	default:
		out.Status = models.BudgetUnderBudget
	}
	shown := round2(percent)
	out.Remaining = &remaining
	out.PercentageUsed = &shown
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (b *Backend) listBudgets(c *gin.Context) {
	now := b.clock()
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid month")
		return
	}
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid year")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []models.Budget{}
	for _, budget := range b.budgets {
		if budget.UserID == getUserID(c) && budget.Month == month && budget.Year == year {
			out = append(out, b.budgetResponse(budget))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	c.JSON(http.StatusOK, out)
}

func (b *Backend) findBudget(c *gin.Context) (*models.Budget, bool) {
	id, ok := parsePathID(c)
	if !ok {
		return nil, false
	}
	budget, found := b.budgets[id]
	if !found || budget.UserID != getUserID(c) {
		fail(c, http.StatusNotFound, "Budget not found")
		return nil, false
	}
	return budget, true
}

func (b *Backend) getBudget(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	budget, ok := b.findBudget(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b.budgetResponse(budget))
}

func (b *Backend) createBudget(c *gin.Context) {
	var in models.BudgetInput
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

	userID := getUserID(c)
	for _, existing := range b.budgets {
		if existing.UserID == userID && existing.Category == in.Category && existing.Month == in.Month && existing.Year == in.Year {
			fail(c, http.StatusBadRequest, fmt.Sprintf("Budget already exists for %s in %d/%d", in.Category, in.Month, in.Year))
			return
		}
	}

	budget := &models.Budget{
		ID:           b.newID(),
		UserID:       userID,
		Category:     in.Category,
		MonthlyLimit: in.MonthlyLimit,
		Month:        in.Month,
		Year:         in.Year,
	}
	b.budgets[budget.ID] = budget
	c.JSON(http.StatusCreated, b.budgetResponse(budget))
}

func (b *Backend) updateBudget(c *gin.Context) {
	var in models.BudgetUpdate
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

	budget, ok := b.findBudget(c)
	if !ok {
		return
	}
	if in.MonthlyLimit != nil {
		budget.MonthlyLimit = *in.MonthlyLimit
	}
	if in.Month != nil {
		budget.Month = *in.Month
	}
	if in.Year != nil {
		budget.Year = *in.Year
	}
	c.JSON(http.StatusOK, b.budgetResponse(budget))
}

func (b *Backend) deleteBudget(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	budget, ok := b.findBudget(c)
	if !ok {
		return
	}
	delete(b.budgets, budget.ID)
	c.Status(http.StatusNoContent)
}

// goalResponse fills in the computed fields. It must be called with b.mu
// held.
func (b *Backend) goalResponse(goal *models.Goal) models.Goal {
	out := *goal
	remaining := math.Max(0, goal.TargetAmount-goal.CurrentAmount)
	progress := 0.0
	if goal.TargetAmount > 0 {
		progress = goal.CurrentAmount / goal.TargetAmount * 100
	}

	now := b.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Date(goal.TargetDate.Year(), goal.TargetDate.Month(), goal.TargetDate.Day(), 0, 0, 0, 0, time.UTC)
	days := int(target.Sub(today).Hours() / 24)

	monthly := 0.0
	if !goal.IsCompleted {
		monthly = remaining / math.Max(1, float64(days)/30)
	}

	switch {
	case goal.IsCompleted:
		out.Status = models.GoalCompleted
	case days < 0:
		out.Status = models.GoalOverdue
	case progress >= 100-float64(days)/float64(days+1)*100:
		out.Status = models.GoalOnTrack
	default:
		out.Status = models.GoalBehind
	}

	shownProgress := round2(progress)
	daysLeft := max(0, days)
	shownMonthly := round2(monthly)
	out.RemainingAmount = &remaining
	out.ProgressPercentage = &shownProgress
	out.DaysRemaining = &daysLeft
	out.MonthlySavingsNeeded = &shownMonthly
	return out
}

func (b *Backend) listGoals(c *gin.Context) {
	includeCompleted, _ := strconv.ParseBool(c.DefaultQuery("include_completed", "false"))

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []models.Goal{}
	for _, goal := range b.goals {
		if goal.UserID != getUserID(c) || (goal.IsCompleted && !includeCompleted) {
			continue
		}
		out = append(out, b.goalResponse(goal))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TargetDate.Equal(out[j].TargetDate.Time) {
			return out[i].TargetDate.Before(out[j].TargetDate.Time)
		}
		return out[i].ID < out[j].ID
	})
	c.JSON(http.StatusOK, out)
}

func (b *Backend) findGoal(c *gin.Context) (*models.Goal, bool) {
	id, ok := parsePathID(c)
	if !ok {
		return nil, false
	}
	goal, found := b.goals[id]
	if !found || goal.UserID != getUserID(c) {
		fail(c, http.StatusNotFound, "Goal not found")
		return nil, false
	}
	return goal, true
}

func (b *Backend) getGoal(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	goal, ok := b.findGoal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b.goalResponse(goal))
}

func (b *Backend) createGoal(c *gin.Context) {
	var in models.GoalInput
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

	if !in.TargetDate.After(b.now()) {
		fail(c, http.StatusBadRequest, "Target date must be in the future")
		return
	}

	goal := &models.Goal{
		ID:            b.newID(),
		UserID:        getUserID(c),
		Name:          in.Name,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		TargetDate:    in.TargetDate,
		IsCompleted:   in.CurrentAmount >= in.TargetAmount,
	}
	if in.Description != "" {
		desc := in.Description
		goal.Description = &desc
	}
	b.goals[goal.ID] = goal
	c.JSON(http.StatusCreated, b.goalResponse(goal))
}

func (b *Backend) updateGoal(c *gin.Context) {
	var in models.GoalUpdate
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

	goal, ok := b.findGoal(c)
	if !ok {
		return
	}
	if in.Name != nil {
		goal.Name = *in.Name
	}
	if in.Description != nil {
		goal.Description = in.Description
	}
	if in.TargetAmount != nil {
		goal.TargetAmount = *in.TargetAmount
	}
	if in.CurrentAmount != nil {
		goal.CurrentAmount = *in.CurrentAmount
	}
	if in.TargetDate != nil {
		if !in.TargetDate.After(b.now()) && !goal.IsCompleted {
			fail(c, http.StatusBadRequest, "Target date must be in the future for active goals")
			return
		}
		goal.TargetDate = *in.TargetDate
	}
	if in.IsCompleted != nil {
		goal.IsCompleted = *in.IsCompleted
	}
	if goal.CurrentAmount >= goal.TargetAmount {
		goal.IsCompleted = true
	}
	c.JSON(http.StatusOK, b.goalResponse(goal))
}

func (b *Backend) contribute(c *gin.Context) {
	var in models.Contribution
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

	goal, ok := b.findGoal(c)
	if !ok {
		return
	}
	if goal.IsCompleted {
		fail(c, http.StatusBadRequest, "Cannot contribute to a completed goal")
		return
	}
	goal.CurrentAmount += in.Amount
	if goal.CurrentAmount >= goal.TargetAmount {
		goal.IsCompleted = true
	}
	c.JSON(http.StatusOK, b.goalResponse(goal))
}

func (b *Backend) deleteGoal(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	goal, ok := b.findGoal(c)
	if !ok {
		return
	}
	delete(b.goals, goal.ID)
	c.Status(http.StatusNoContent)
}
