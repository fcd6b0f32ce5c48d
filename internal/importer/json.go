package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
)

// JSON imports exports shaped as either a bare array of transaction
// objects or an envelope {"transactions": [...]}. Amounts may be numbers
// or strings; everything lands in the raw record untouched for the
// validator to judge.
type JSON struct{}

// NewJSON returns the JSON adapter. Stateless, safe for concurrent use.
func NewJSON() *JSON {
	return &JSON{}
}

func (j *JSON) Name() string {
	return "json"
}

// CanImport accepts .json files starting with an array or object.
func (j *JSON) CanImport(path string, header []byte) bool {
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return false
	}
	s := strings.TrimSpace(string(header))
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")
}

// jsonRecord tolerates both numeric and string amounts.
type jsonRecord struct {
	ID          string          `json:"id"`
	Amount      json.RawMessage `json:"amount"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	AccountID   string          `json:"account_id"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
}

type jsonEnvelope struct {
	Transactions []jsonRecord `json:"transactions"`
}

// Import decodes the file into raw records.
func (j *JSON) Import(ctx context.Context, r io.Reader) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON content: %w", err)
	}

	var rows []jsonRecord
	trimmed := strings.TrimSpace(string(content))
	if strings.HasPrefix(trimmed, "{") {
		var env jsonEnvelope
		if err := json.Unmarshal(content, &env); err != nil {
			return nil, fmt.Errorf("failed to parse JSON envelope: %w", err)
		}
		rows = env.Transactions
	} else {
		if err := json.Unmarshal(content, &rows); err != nil {
			return nil, fmt.Errorf("failed to parse JSON array: %w", err)
		}
	}

	records := make([]domain.RawRecord, 0, len(rows))
	for _, row := range rows {
		rec := domain.RawRecord{
			ID:          strings.TrimSpace(row.ID),
			Amount:      rawAmount(row.Amount),
			Date:        row.Date,
			Category:    row.Category,
			AccountID:   row.AccountID,
			Type:        row.Type,
			Description: row.Description,
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if strings.TrimSpace(rec.Category) == "" {
			rec.Category = string(domain.CategoryUncategorized)
		}
		records = append(records, rec)
	}
	return records, nil
}

// rawAmount renders a JSON amount value (number or quoted string) as text.
func rawAmount(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return string(raw)
}
