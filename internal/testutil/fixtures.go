package testutil

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/models"
)

// DefaultPassword is the password of users created by SeedUser.
const DefaultPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// createUser stores a user with a bcrypt-hashed password.
func (b *Backend) createUser(email, username, fullName, password string) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return 0, fmt.Errorf("hashing password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.userByEmail(email) != nil {
		return 0, apperrors.WithStatus(apperrors.ErrBackend, http.StatusBadRequest, "Email already registered")
	}
	if b.userByUsername(username) != nil {
		return 0, apperrors.WithStatus(apperrors.ErrBackend, http.StatusBadRequest, "Username already taken")
	}

	id := b.newID()
	created := models.Timestamp{Time: b.now().UTC()}
	b.users[id] = &user{
		User: models.User{
			ID:        id,
			Email:     email,
			Username:  username,
			FullName:  fullName,
			IsActive:  true,
			CreatedAt: &created,
		},
		passwordHash: hash,
	}
	return id, nil
}

// SeedUser creates an active user with DefaultPassword and a unique email.
func (b *Backend) SeedUser() models.User {
	b.t.Helper()
	n := nextID()
	return b.SeedUserWithEmail(fmt.Sprintf("user%d@test.com", n))
}

// SeedUserWithEmail creates an active user with the given email.
func (b *Backend) SeedUserWithEmail(email string) models.User {
	b.t.Helper()
	n := nextID()
	id, err := b.createUser(email, fmt.Sprintf("user%d", n), fmt.Sprintf("Test User %d", n), DefaultPassword)
	if err != nil {
		b.t.Fatalf("failed to create test user: %v", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.users[id].User
}

// SeedTransaction stores a transaction for userID. A zero date means now.
func (b *Backend) SeedTransaction(userID int, description string, amount float64, typ models.TransactionType, date time.Time) models.Transaction {
	b.t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	if date.IsZero() {
		date = b.now()
	}
	tx := &models.Transaction{
		ID:              b.newID(),
		UserID:          userID,
		Amount:          amount,
		Description:     description,
		Category:        categorize(description, typ),
		TransactionType: typ,
		Date:            models.Timestamp{Time: date.UTC()},
	}
	b.transactions[tx.ID] = tx
	return *tx
}

// SeedBudget stores a budget for userID.
func (b *Backend) SeedBudget(userID int, category string, limit float64, month, year int) models.Budget {
	b.t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	budget := &models.Budget{
		ID:           b.newID(),
		UserID:       userID,
		Category:     category,
		MonthlyLimit: limit,
		Month:        month,
		Year:         year,
	}
	b.budgets[budget.ID] = budget
	return b.budgetResponse(budget)
}

// SeedGoal stores a goal for userID.
func (b *Backend) SeedGoal(userID int, name string, target, current float64, targetDate models.Date) models.Goal {
	b.t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	goal := &models.Goal{
		ID:            b.newID(),
		UserID:        userID,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: current,
		TargetDate:    targetDate,
		IsCompleted:   current >= target,
	}
	b.goals[goal.ID] = goal
	return b.goalResponse(goal)
}
