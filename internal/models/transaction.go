package models

import "time"

// RawTransactionRow is one extracted financial event before classification.
// Amount is in whole currency units and never negative.
type RawTransactionRow struct {
	TransactionDate  time.Time
	Direction        Direction
	CounterpartyName string
	Memo             string
	Amount           int64
	PaymentMethod    PaymentMethod
}

// StagedTransaction is a classified row waiting in the review buffer.
type StagedTransaction struct {
	RawTransactionRow
	Category     string
	LinkedEntity *EntityRef
	ReviewEdited bool
	SourceFile   string
}

// ToLedgerEntry converts a reviewed row into the ledger row shape.
// Statement rows record money that already moved, so they are completed.
func (s StagedTransaction) ToLedgerEntry(id string) LedgerEntry {
	entry := LedgerEntry{
		ID:              id,
		TransactionDate: s.TransactionDate,
		Type:            s.Direction,
		Status:          StatusCompleted,
		Category:        s.Category,
		ClientName:      s.CounterpartyName,
		Description:     s.Memo,
		Amount:          s.Amount,
		PaymentMethod:   s.PaymentMethod,
	}
	if s.LinkedEntity != nil {
		entry.RelatedType = s.LinkedEntity.Type
		entry.RelatedID = s.LinkedEntity.ID
	}
	return entry
}
