package testutil_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"finadvisor/internal/api"
	"finadvisor/internal/client"
	"finadvisor/internal/errors"
	"finadvisor/internal/models"
	"finadvisor/internal/session"
	"finadvisor/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)

	var n int
	if err := db.Raw("SELECT 1").Scan(&n).Error; err != nil {
		t.Fatalf("database should be usable: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	a := testutil.SetupTestDB(t)
	b := testutil.SetupTestDB(t)

	if err := a.Exec("CREATE TABLE only_in_a (id INTEGER)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	if b.Migrator().HasTable("only_in_a") {
		t.Error("databases from separate calls must not share tables")
	}
}

func TestFixtures(t *testing.T) {
	b := testutil.NewBackend(t)
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	b.SetNow(now)

	user := b.SeedUser()
	if user.ID == 0 {
		t.Fatal("user should have a non-zero ID")
	}
	if !user.IsActive {
		t.Error("seeded users should be active")
	}

	tx := b.SeedTransaction(user.ID, "Uber to work", 12, models.TransactionTypeExpense, time.Time{})
	if tx.Category != "Transportation" {
		t.Errorf("expected Transportation, got %q", tx.Category)
	}
	if !tx.Date.Equal(now) {
		t.Errorf("zero date should default to the backend clock, got %v", tx.Date)
	}

	budget := b.SeedBudget(user.ID, "Transportation", 100, 1, 2025)
	if budget.MonthlyLimit != 100 {
		t.Errorf("expected limit 100, got %v", budget.MonthlyLimit)
	}

	goal := b.SeedGoal(user.ID, "Holiday", 1000, 250, models.NewDate(2025, 6, 1))
	if goal.CurrentAmount != 250 {
		t.Errorf("expected current 250, got %v", goal.CurrentAmount)
	}
}

func TestBackend_FailAndRecord(t *testing.T) {
	b := testutil.NewBackend(t)
	user := b.SeedUser()

	a := api.New(client.New(b.URL(), session.New(nil), b.Client()), nil)
	ctx := context.Background()
	if _, err := a.Login(ctx, user.Email, testutil.DefaultPassword); err != nil {
		t.Fatalf("login: %v", err)
	}

	b.Fail(http.MethodGet, "/analytics/summary", http.StatusInternalServerError, "database is down")
	_, err := a.Summary(ctx)
	testutil.AssertAppError(t, err, errors.ErrBackend.Code)
	testutil.AssertUserMessage(t, err, "database is down")

	b.ClearFailures()
	if _, err := a.Summary(ctx); err != nil {
		t.Fatalf("summary after clearing failures: %v", err)
	}
	if got := b.CountRequests(http.MethodGet, "/analytics/summary"); got != 2 {
		t.Errorf("expected 2 summary requests, got %d", got)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrNotFound, "Goal not found")
	testutil.AssertAppError(t, err, "NOT_FOUND")
	testutil.AssertUserMessage(t, err, "Goal not found")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
