package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"finadvisor/internal/models"
)

type field struct {
	label  string
	value  string
	secret bool
}

// form collects a few text values one field at a time. submit turns the
// values into a command or returns a message shown under the form.
type form struct {
	title  string
	fields []field
	index  int
	err    string
	submit func(values []string) (tea.Cmd, error)
}

func newForm(title string, submit func([]string) (tea.Cmd, error), labels ...string) *form {
	f := &form{title: title, submit: submit}
	for _, l := range labels {
		f.fields = append(f.fields, field{label: l})
	}
	return f
}

// secret masks the fields at the given positions.
func (f *form) secret(idx ...int) *form {
	for _, i := range idx {
		f.fields[i].secret = true
	}
	return f
}

// prefill sets a default for field i.
func (f *form) prefill(i int, value string) *form {
	f.fields[i].value = value
	return f
}

func (f *form) values() []string {
	out := make([]string, len(f.fields))
	for i, fl := range f.fields {
		out[i] = strings.TrimSpace(fl.value)
	}
	return out
}

// update applies a key. It returns done when the form should close and the
// command to run, if any.
func (f *form) update(msg tea.KeyMsg) (done bool, cmd tea.Cmd) {
	cur := &f.fields[f.index]
	switch msg.Type {
	case tea.KeyEsc:
		return true, nil
	case tea.KeyBackspace:
		if r := []rune(cur.value); len(r) > 0 {
			cur.value = string(r[:len(r)-1])
		}
	case tea.KeyUp, tea.KeyShiftTab:
		if f.index > 0 {
			f.index--
		}
	case tea.KeyTab, tea.KeyDown:
		if f.index < len(f.fields)-1 {
			f.index++
		}
	case tea.KeyEnter:
		if f.index < len(f.fields)-1 {
			f.index++
			return false, nil
		}
		cmd, err := f.submit(f.values())
		if err != nil {
			f.err = err.Error()
			return false, nil
		}
		return true, cmd
	case tea.KeySpace:
		cur.value += " "
	case tea.KeyRunes:
		cur.value += string(msg.Runes)
	}
	return false, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive number")
	}
	return id, nil
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an amount", s)
	}
	return v, nil
}

func parseOptionalDate(s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseYes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes":
		return true
	}
	return false
}

// transactionInput reads description, amount, type, category and date.
func transactionInput(v []string) (models.TransactionInput, error) {
	amount, err := parseAmount(v[1])
	if err != nil {
		return models.TransactionInput{}, err
	}
	date, err := parseOptionalDate(v[4])
	if err != nil {
		return models.TransactionInput{}, err
	}
	typ := models.TransactionType(strings.ToLower(v[2]))
	if typ == "" {
		typ = models.TransactionTypeExpense
	}
	return models.TransactionInput{
		Description:     v[0],
		Amount:          amount,
		TransactionType: typ,
		Category:        v[3],
		Date:            date,
	}, nil
}

var transactionLabels = []string{"Description", "Amount", "Type (income/expense)", "Category (blank to auto-detect)", "Date YYYY-MM-DD (blank for today)"}
