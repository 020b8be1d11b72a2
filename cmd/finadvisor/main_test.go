package main

import (
	"bytes"
	"context"
	"flag"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finadvisor/internal/models"
	"finadvisor/internal/testutil"
)

type cli struct {
	t       *testing.T
	backend *testutil.Backend
	user    models.User
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	backend := testutil.NewBackend(t)
	t.Setenv("FINADVISOR_API_URL", backend.URL())
	t.Setenv("FINADVISOR_SESSION_DB", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("LOG_LEVEL", "error")
	return &cli{t: t, backend: backend, user: backend.SeedUser()}
}

// exec runs the CLI with stdin and returns the exit code and both outputs.
func (c *cli) exec(stdin string, args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func (c *cli) login() {
	c.t.Helper()
	code, out, errOut := c.exec("", "login", "--email", c.user.Email, "--password", testutil.DefaultPassword)
	require.Equal(c.t, 0, code, errOut)
	require.Contains(c.t, out, "Welcome back")
}

func TestRun_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), nil, strings.NewReader(""), &out, &errOut))
	assert.Contains(t, out.String(), "Commands:")
	assert.Contains(t, out.String(), "category-forecast")

	out.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"nope"}, strings.NewReader(""), &out, &errOut))
	assert.Contains(t, errOut.String(), `unknown command "nope"`)
}

func TestRun_LoginPersistsSession(t *testing.T) {
	c := newCLI(t)
	c.login()

	code, out, _ := c.exec("", "whoami")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Signed in as")
	assert.Contains(t, out, c.user.Email)

	code, out, _ = c.exec("", "logout")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Signed out")

	_, out, _ = c.exec("", "whoami")
	assert.Contains(t, out, "Not signed in")
}

func TestRun_WrongPassword(t *testing.T) {
	c := newCLI(t)
	code, _, errOut := c.exec("", "login", "--email", c.user.Email, "--password", "wrong")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Incorrect email or password")
	assert.NotContains(t, errOut, "session has ended")
}

func TestRun_NotSignedIn(t *testing.T) {
	c := newCLI(t)
	code, _, errOut := c.exec("", "summary")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Not authenticated")
}

func TestRun_TransactionLifecycle(t *testing.T) {
	c := newCLI(t)
	c.login()

	code, out, errOut := c.exec("", "tx", "add", "--desc", "Coffee", "--amount", "4.50", "--date", "2024-01-05")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Food & Dining")

	code, out, _ = c.exec("", "tx", "list")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Coffee")
	assert.Contains(t, out, "-4.50")

	code, _, errOut = c.exec("", "tx", "add", "--desc", "Nothing", "--amount", "0")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, errOut)
}

func TestRun_DeleteAsksFirst(t *testing.T) {
	c := newCLI(t)
	tx := c.backend.SeedTransaction(c.user.ID, "Rent", 900, models.TransactionTypeExpense, time.Now())
	c.login()
	id := strconv.Itoa(tx.ID)

	code, out, errOut := c.exec("n\n", "tx", "delete", id)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Delete transaction #"+id+"?")
	assert.Contains(t, errOut, "Cancelled")
	assert.Equal(t, 0, c.backend.CountRequests(http.MethodDelete, "/transactions/"+id))

	code, out, _ = c.exec("", "--yes", "tx", "delete", id)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Transaction deleted")
	assert.Equal(t, 1, c.backend.CountRequests(http.MethodDelete, "/transactions/"+id))
}

func TestRun_BudgetsAndGoals(t *testing.T) {
	c := newCLI(t)
	c.login()
	now := time.Now()

	code, _, errOut := c.exec("", "budgets", "add", "--category", "Food & Dining", "--limit", "100")
	require.Equal(t, 0, code, errOut)
	c.backend.SeedTransaction(c.user.ID, "Groceries", 85, models.TransactionTypeExpense, now)

	code, out, _ := c.exec("", "budgets", "list")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "near limit")

	target := now.AddDate(1, 0, 0).Format(models.DateLayout)
	code, out, errOut = c.exec("", "goals", "add", "--name", "Emergency fund", "--target", "1000", "--date", target)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Emergency fund")

	code, out, _ = c.exec("", "goals", "list")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Emergency fund")
}

func TestRun_Chat(t *testing.T) {
	c := newCLI(t)
	c.login()

	code, out, _ := c.exec("", "chat", "How", "am", "I", "doing?")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "You asked: How am I doing?")
}

func TestExtractYes(t *testing.T) {
	yes, rest := extractYes([]string{"tx", "-y", "delete", "3"})
	assert.True(t, yes)
	assert.Equal(t, []string{"tx", "delete", "3"}, rest)

	yes, rest = extractYes([]string{"tx", "list"})
	assert.False(t, yes)
	assert.Equal(t, []string{"tx", "list"}, rest)
}

func TestParse_FlagsAfterPositional(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	amount := fs.Float64("amount", 0, "")
	positional, err := parse(fs, []string{"7", "--amount", "25"})
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, positional)
	assert.Equal(t, 25.0, *amount)
}
