package api

import (
	"net/url"
	"strconv"

	"finadvisor/internal/models"
)

// PageRequest holds paging parameters for list endpoints.
type PageRequest struct {
	Page     int
	PageSize int
}

// Defaults fills in default values when page or page size are not provided.
func (p *PageRequest) Defaults() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 50
	}
	if p.PageSize > 500 {
		p.PageSize = 500
	}
}

// Offset returns the backend offset for the current page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TransactionQuery filters the transaction list. Zero values are omitted
// from the query string.
type TransactionQuery struct {
	Category        string
	TransactionType models.TransactionType
	DateFrom        *models.Date
	DateTo          *models.Date
	MinAmount       *float64
	MaxAmount       *float64
	Search          string
	Page            PageRequest
}

// Empty reports whether no filter is set. Paging is not a filter.
func (q TransactionQuery) Empty() bool {
	return q.Category == "" && q.TransactionType == "" && q.DateFrom == nil && q.DateTo == nil &&
		q.MinAmount == nil && q.MaxAmount == nil && q.Search == ""
}

// Values encodes the query, applying paging defaults.
func (q TransactionQuery) Values() url.Values {
	v := url.Values{}
	setString(v, "category", q.Category)
	setString(v, "transaction_type", string(q.TransactionType))
	setDate(v, "date_from", q.DateFrom)
	setDate(v, "date_to", q.DateTo)
	setFloat(v, "min_amount", q.MinAmount)
	setFloat(v, "max_amount", q.MaxAmount)
	setString(v, "search", q.Search)

	page := q.Page
	page.Defaults()
	v.Set("limit", strconv.Itoa(page.PageSize))
	v.Set("offset", strconv.Itoa(page.Offset()))
	return v
}

// StatsQuery scopes the statistics endpoints.
type StatsQuery struct {
	DateFrom *models.Date
	DateTo   *models.Date
	GroupBy  string
}

// Values encodes the query.
func (q StatsQuery) Values() url.Values {
	v := url.Values{}
	setDate(v, "date_from", q.DateFrom)
	setDate(v, "date_to", q.DateTo)
	setString(v, "group_by", q.GroupBy)
	return v
}

// ExportQuery scopes a transaction export. Format defaults to csv.
type ExportQuery struct {
	DateFrom *models.Date
	DateTo   *models.Date
	Format   string
}

// Values encodes the query.
func (q ExportQuery) Values() url.Values {
	v := url.Values{}
	setDate(v, "date_from", q.DateFrom)
	setDate(v, "date_to", q.DateTo)
	format := q.Format
	if format == "" {
		format = "csv"
	}
	v.Set("format", format)
	return v
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setDate(v url.Values, key string, d *models.Date) {
	if d != nil && !d.IsZero() {
		v.Set(key, d.String())
	}
}

func setFloat(v url.Values, key string, f *float64) {
	if f != nil {
		v.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
	}
}
