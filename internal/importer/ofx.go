package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
)

// OFX imports OFX/QFX statements (bank and credit card messages, v1 SGML
// and v2 XML). Statements carry no category information, so every record
// arrives uncategorized; the sign of the amount decides debit vs credit.
type OFX struct{}

// NewOFX returns the OFX adapter. Stateless, safe for concurrent use.
func NewOFX() *OFX {
	return &OFX{}
}

func (o *OFX) Name() string {
	return "ofx"
}

// CanImport accepts .ofx/.qfx files with an OFX header marker.
func (o *OFX) CanImport(path string, header []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".ofx" && ext != ".qfx" {
		return false
	}
	upper := strings.ToUpper(string(header))
	return strings.Contains(upper, "OFXHEADER") ||
		strings.Contains(upper, "<?OFX") ||
		strings.Contains(upper, "<OFX>")
}

// Import parses the statement and maps each posted transaction to a raw
// record.
func (o *OFX) Import(ctx context.Context, r io.Reader) ([]domain.RawRecord, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX content: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file (%d bytes): %w", len(content), err)
	}

	var records []domain.RawRecord
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		if stmt.BankTranList == nil {
			continue
		}
		accountID := stmt.BankAcctFrom.AcctID.String()
		records = append(records, o.mapTransactions(stmt.BankTranList, accountID)...)
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		if stmt.BankTranList == nil {
			continue
		}
		accountID := stmt.CCAcctFrom.AcctID.String()
		records = append(records, o.mapTransactions(stmt.BankTranList, accountID)...)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no bank or credit card transactions found in OFX file (bank: %d, creditcard: %d messages)",
			len(resp.Bank), len(resp.CreditCard))
	}
	return records, nil
}

func (o *OFX) mapTransactions(list *ofxgo.TransactionList, accountID string) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(list.Transactions))
	for _, txn := range list.Transactions {
		amount, _ := txn.TrnAmt.Float64()
		dir := string(domain.DirectionCredit)
		if amount < 0 {
			dir = string(domain.DirectionDebit)
		}

		// Name is the merchant field; Memo is the freeform fallback.
		description := strings.TrimSpace(txn.Name.String())
		if description == "" {
			description = strings.TrimSpace(txn.Memo.String())
		}

		records = append(records, domain.RawRecord{
			ID:          txn.FiTID.String(),
			Amount:      fmt.Sprintf("%.2f", math.Abs(amount)),
			Date:        txn.DtPosted.Time.Format(domain.DateLayout),
			Category:    string(domain.CategoryUncategorized),
			AccountID:   accountID,
			Type:        dir,
			Description: description,
		})
	}
	return records
}
