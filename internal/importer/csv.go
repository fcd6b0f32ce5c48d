package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
)

// CSV imports header-mapped CSV files. The first row names the columns;
// common aliases (amount/value, description/memo, account_id/account) are
// recognized. Rows missing an id column get a generated one so dedup can
// still tell distinct rows apart.
type CSV struct{}

// NewCSV returns the CSV adapter. Stateless, safe for concurrent use.
func NewCSV() *CSV {
	return &CSV{}
}

func (c *CSV) Name() string {
	return "csv"
}

// columnAliases maps header spellings to canonical record fields.
var columnAliases = map[string]string{
	"id":               "id",
	"transaction_id":   "id",
	"txn_id":           "id",
	"amount":           "amount",
	"value":            "amount",
	"date":             "date",
	"posted":           "date",
	"transaction_date": "date",
	"category":         "category",
	"account_id":       "account_id",
	"account":          "account_id",
	"type":             "type",
	"direction":        "type",
	"description":      "description",
	"desc":             "description",
	"memo":             "description",
	"payee":            "description",
}

// CanImport accepts .csv files whose header row names at least an amount
// and a date column.
func (c *CSV) CanImport(path string, header []byte) bool {
	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		return false
	}
	r := csv.NewReader(strings.NewReader(string(header)))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	row, err := r.Read()
	if err != nil {
		return false
	}
	cols := mapColumns(row)
	_, hasAmount := cols["amount"]
	_, hasDate := cols["date"]
	return hasAmount && hasDate
}

// Import reads the whole file and maps each data row to a raw record.
func (c *CSV) Import(ctx context.Context, r io.Reader) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	cols := mapColumns(rows[0])
	if _, ok := cols["amount"]; !ok {
		return nil, fmt.Errorf("CSV header has no amount column")
	}
	if _, ok := cols["date"]; !ok {
		return nil, fmt.Errorf("CSV header has no date column")
	}

	records := make([]domain.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		cell := func(field string) string {
			i, ok := cols[field]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		rec := domain.RawRecord{
			ID:          cell("id"),
			Amount:      cell("amount"),
			Date:        cell("date"),
			Category:    cell("category"),
			AccountID:   cell("account_id"),
			Type:        cell("type"),
			Description: cell("description"),
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.Category == "" {
			rec.Category = string(domain.CategoryUncategorized)
		}
		records = append(records, rec)
	}
	return records, nil
}

// mapColumns resolves the header row to field positions, first alias wins.
func mapColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		field, ok := columnAliases[key]
		if !ok {
			continue
		}
		if _, taken := cols[field]; !taken {
			cols[field] = i
		}
	}
	return cols
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
