package models

import "time"

// LedgerEntry mirrors one row of the persisted ledger table.
// RelatedType and RelatedID are empty when the entry has no linked entity.
type LedgerEntry struct {
	ID              string
	TransactionDate time.Time
	Type            Direction
	Status          Status
	Category        string
	ClientName      string
	Description     string
	Amount          int64
	PaymentMethod   PaymentMethod
	RelatedType     EntityType
	RelatedID       string
	CreatedAt       time.Time
}

// LedgerExportRow is the CSV shape of a ledger entry.
type LedgerExportRow struct {
	ID              string `csv:"id"`
	TransactionDate string `csv:"transaction_date"`
	Type            string `csv:"type"`
	Status          string `csv:"status"`
	Category        string `csv:"category"`
	ClientName      string `csv:"client_name"`
	Description     string `csv:"description"`
	Amount          int64  `csv:"amount"`
	PaymentMethod   string `csv:"payment_method"`
	RelatedType     string `csv:"related_type"`
	RelatedID       string `csv:"related_id"`
}

// ExportRow flattens the entry for CSV output.
func (e LedgerEntry) ExportRow() LedgerExportRow {
	return LedgerExportRow{
		ID:              e.ID,
		TransactionDate: e.TransactionDate.Format("2006-01-02"),
		Type:            string(e.Type),
		Status:          string(e.Status),
		Category:        e.Category,
		ClientName:      e.ClientName,
		Description:     e.Description,
		Amount:          e.Amount,
		PaymentMethod:   string(e.PaymentMethod),
		RelatedType:     string(e.RelatedType),
		RelatedID:       e.RelatedID,
	}
}
