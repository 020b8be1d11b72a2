package testutil

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"finadvisor/internal/models"
	"finadvisor/internal/validator"
)

// categoryKeywords stands in for the backend's NLP categorizer.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"Food & Dining", []string{"coffee", "lunch", "dinner", "restaurant", "cafe", "pizza", "grocer"}},
	{"Transportation", []string{"uber", "taxi", "bus", "fuel", "gas", "train", "metro"}},
	{"Housing", []string{"rent", "mortgage", "electricity", "water bill"}},
	{"Entertainment", []string{"netflix", "movie", "spotify", "concert"}},
	{"Shopping", []string{"amazon", "clothes", "shoes", "mall"}},
	{"Healthcare", []string{"pharmacy", "doctor", "hospital", "dentist"}},
}

func categorize(description string, typ models.TransactionType) string {
	if typ == models.TransactionTypeIncome {
		return "Income"
	}
	d := strings.ToLower(description)
	for _, c := range categoryKeywords {
		for _, w := range c.words {
			if strings.Contains(d, w) {
				return c.category
			}
		}
	}
	return "Other"
}

// userTransactions returns the user's transactions newest first. It must be
// called with b.mu held.
func (b *Backend) userTransactions(userID int) []models.Transaction {
	var out []models.Transaction
	for _, tx := range b.transactions {
		if tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (b *Backend) listTransactions(c *gin.Context) {
	b.mu.Lock()
	txs := b.userTransactions(getUserID(c))
	b.mu.Unlock()

	txs = filterByQuery(c, txs)

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if offset > len(txs) {
		offset = len(txs)
	}
	txs = txs[offset:]
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}

	if txs == nil {
		txs = []models.Transaction{}
	}
	c.JSON(http.StatusOK, txs)
}

func filterByQuery(c *gin.Context, txs []models.Transaction) []models.Transaction {
	category := c.Query("category")
	typ := c.Query("transaction_type")
	search := strings.ToLower(c.Query("search"))
	from, _ := time.Parse(models.DateLayout, c.Query("date_from"))
	to, _ := time.Parse(models.DateLayout, c.Query("date_to"))
	minAmount, hasMin := queryFloat(c, "min_amount")
	maxAmount, hasMax := queryFloat(c, "max_amount")

	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		switch {
		case category != "" && tx.Category != category:
		case typ != "" && string(tx.TransactionType) != typ:
		case search != "" && !strings.Contains(strings.ToLower(tx.Description), search):
		case !from.IsZero() && tx.Date.Before(from):
		case !to.IsZero() && !tx.Date.Before(to.AddDate(0, 0, 1)):
		case hasMin && tx.Amount < minAmount:
		case hasMax && tx.Amount > maxAmount:
		default:
			out = append(out, tx)
		}
	}
	return out
}

func queryFloat(c *gin.Context, key string) (float64, bool) {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	return v, err == nil
}

func (b *Backend) getTransaction(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, found := b.transactions[id]
	if !found || tx.UserID != getUserID(c) {
		fail(c, http.StatusNotFound, "Transaction not found")
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (b *Backend) bindTransaction(c *gin.Context) (models.TransactionInput, bool) {
	var in models.TransactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return in, false
	}
	if err := validator.Struct(in); err != nil {
		respondValidation(c, err)
		return in, false
	}
	return in, true
}

func (b *Backend) createTransaction(c *gin.Context) {
	in, ok := b.bindTransaction(c)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	date := b.now()
	if in.Date != nil && !in.Date.IsZero() {
		date = in.Date.Time
	}
	tx := &models.Transaction{
		ID:              b.newID(),
		UserID:          getUserID(c),
		Amount:          in.Amount,
		Description:     in.Description,
		Category:        categorize(in.Description, in.TransactionType),
		TransactionType: in.TransactionType,
		Date:            models.Timestamp{Time: date.UTC()},
	}
	created := models.Timestamp{Time: b.now().UTC()}
	tx.CreatedAt = &created
	b.transactions[tx.ID] = tx
	c.JSON(http.StatusOK, tx)
}

func (b *Backend) updateTransaction(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}
	in, ok := b.bindTransaction(c)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tx, found := b.transactions[id]
	if !found || tx.UserID != getUserID(c) {
		fail(c, http.StatusNotFound, "Transaction not found")
		return
	}
	tx.Amount = in.Amount
	tx.Description = in.Description
	tx.TransactionType = in.TransactionType
	tx.Category = in.Category
	if tx.Category == "" {
		tx.Category = categorize(in.Description, in.TransactionType)
	}
	if in.Date != nil && !in.Date.IsZero() {
		tx.Date = models.Timestamp{Time: in.Date.Time}
	}
	c.JSON(http.StatusOK, tx)
}

func (b *Backend) deleteTransaction(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, found := b.transactions[id]
	if !found || tx.UserID != getUserID(c) {
		fail(c, http.StatusNotFound, "Transaction not found")
		return
	}
	delete(b.transactions, id)
	c.JSON(http.StatusOK, models.Message{Message: "Transaction deleted successfully"})
}

func (b *Backend) categoryStats(c *gin.Context) {
	b.mu.Lock()
	txs := filterByQuery(c, b.userTransactions(getUserID(c)))
	b.mu.Unlock()

	byCategory := make(map[string]*models.CategoryStat)
	var order []string
	for _, tx := range txs {
		if tx.TransactionType != models.TransactionTypeExpense {
			continue
		}
		s, ok := byCategory[tx.Category]
		if !ok {
			s = &models.CategoryStat{Category: tx.Category}
			byCategory[tx.Category] = s
			order = append(order, tx.Category)
		}
		s.Total += tx.Amount
		s.Count++
	}

	out := make([]models.CategoryStat, 0, len(order))
	for _, k := range order {
		out = append(out, *byCategory[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	c.JSON(http.StatusOK, out)
}

func (b *Backend) timelineStats(c *gin.Context) {
	b.mu.Lock()
	txs := filterByQuery(c, b.userTransactions(getUserID(c)))
	b.mu.Unlock()

	layout := "2006-01"
	switch c.DefaultQuery("group_by", "month") {
	case "day":
		layout = models.DateLayout
	case "year":
		layout = "2006"
	}

	buckets := make(map[string]*models.TimelinePoint)
	for _, tx := range txs {
		key := tx.Date.Format(layout)
		p, ok := buckets[key]
		if !ok {
			p = &models.TimelinePoint{Period: key}
			buckets[key] = p
		}
		if tx.TransactionType == models.TransactionTypeIncome {
			p.Income += tx.Amount
		} else {
			p.Expenses += tx.Amount
		}
	}

	out := make([]models.TimelinePoint, 0, len(buckets))
	for _, p := range buckets {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	c.JSON(http.StatusOK, out)
}

func (b *Backend) exportTransactions(c *gin.Context) {
	b.mu.Lock()
	txs := filterByQuery(c, b.userTransactions(getUserID(c)))
	b.mu.Unlock()

	switch c.DefaultQuery("format", "csv") {
	case "json":
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(txs); err != nil {
			respondWithError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", buf.Bytes())
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"id", "date", "description", "category", "type", "amount"})
		for _, tx := range txs {
			_ = w.Write([]string{
				strconv.Itoa(tx.ID),
				tx.Date.Format(models.DateLayout),
				tx.Description,
				tx.Category,
				string(tx.TransactionType),
				strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			})
		}
		w.Flush()
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	default:
		fail(c, http.StatusBadRequest, "Unsupported export format")
	}
}
