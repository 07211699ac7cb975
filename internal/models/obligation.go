package models

import "time"

// ScheduledObligation is a generated pending ledger entry for a recurring
// monthly charge. At most one may exist per (contract, category, month).
type ScheduledObligation struct {
	SourceContractID   string
	SourceContractType EntityType // EntityInvestor or EntityConsignmentParty
	TargetMonth        Month
	DueDate            time.Time
	Category           string
	CounterpartyName   string
	Amount             int64 // zero is a placeholder until confirmed
	Status             Status
}

// ObligationKey identifies a generated obligation within one month.
type ObligationKey struct {
	ContractID string
	Category   string
}

// Key returns the dedup key of the obligation.
func (o ScheduledObligation) Key() ObligationKey {
	return ObligationKey{ContractID: o.SourceContractID, Category: o.Category}
}

// ToLedgerEntry converts the obligation into a pending ledger row.
func (o ScheduledObligation) ToLedgerEntry(id string) LedgerEntry {
	return LedgerEntry{
		ID:              id,
		TransactionDate: o.DueDate,
		Type:            Expense,
		Status:          o.Status,
		Category:        o.Category,
		ClientName:      o.CounterpartyName,
		Description:     o.TargetMonth.String() + " " + o.Category,
		Amount:          o.Amount,
		PaymentMethod:   PaymentBankTransfer,
		RelatedType:     o.SourceContractType,
		RelatedID:       o.SourceContractID,
	}
}
