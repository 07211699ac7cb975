// Package categorizer assigns an accounting category and an optional linked
// entity to a transaction using an ordered chain of strategies:
//  1. user-pinned keyword rules
//  2. consignment party names
//  3. investor names
//  4. vehicle plate numbers
//
// A transaction matched by none of them gets the fallback category.
package categorizer

import (
	"strings"

	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"
)

// Strategy names reported in Result.Strategy.
const (
	StrategyRule        = "Rule"
	StrategyConsignment = "Consignment"
	StrategyInvestor    = "Investor"
	StrategyVehicle     = "Vehicle"
	StrategyFallback    = "Fallback"
)

// Transaction is the classifier's view of one raw row.
type Transaction struct {
	CounterpartyName string
	Memo             string
	Direction        models.Direction
}

// FromRow builds a Transaction from an extracted row.
func FromRow(row models.RawTransactionRow) Transaction {
	return Transaction{
		CounterpartyName: row.CounterpartyName,
		Memo:             row.Memo,
		Direction:        row.Direction,
	}
}

// Snapshot is everything the classifier consults. It is passed in on every
// call so classification never depends on ambient state.
type Snapshot struct {
	Rules    []models.ClassificationRule
	Entities models.EntitySet
}

// Result is the outcome of classifying one transaction.
type Result struct {
	Category     string
	LinkedEntity *models.EntityRef
	Strategy     string
}

// Classifier runs the strategy chain. The first match wins.
type Classifier struct {
	strategies []Strategy
	logger     logging.Logger
}

// NewClassifier creates a classifier with the default strategy order.
func NewClassifier(logger logging.Logger) *Classifier {
	return NewClassifierWithStrategies(logger,
		&RuleStrategy{},
		&ConsignmentStrategy{},
		&InvestorStrategy{},
		&VehicleStrategy{},
	)
}

// NewClassifierWithStrategies creates a classifier running strategies in
// the given order before the fallback.
func NewClassifierWithStrategies(logger logging.Logger, strategies ...Strategy) *Classifier {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Classifier{strategies: strategies, logger: logger}
}

// Classify returns the category for tx. It never fails: a transaction no
// strategy matches gets "other operating expense" with no linked entity.
func (c *Classifier) Classify(snap Snapshot, tx Transaction) Result {
	for _, strategy := range c.strategies {
		result, ok := strategy.Categorize(snap, tx)
		if !ok {
			continue
		}
		result.Strategy = strategy.Name()
		c.logger.Debug("Transaction classified",
			logging.Field{Key: logging.FieldStrategy, Value: result.Strategy},
			logging.Field{Key: logging.FieldParty, Value: tx.CounterpartyName},
			logging.Field{Key: logging.FieldCategory, Value: result.Category})
		return result
	}

	return Result{Category: models.CategoryOtherOperatingExpense, Strategy: StrategyFallback}
}

// Stage classifies row and wraps it as a staged transaction.
func (c *Classifier) Stage(snap Snapshot, row models.RawTransactionRow, sourceFile string) models.StagedTransaction {
	result := c.Classify(snap, FromRow(row))
	return models.StagedTransaction{
		RawTransactionRow: row,
		Category:          result.Category,
		LinkedEntity:      result.LinkedEntity,
		SourceFile:        sourceFile,
	}
}

// haystack is the lower-cased text every strategy searches. The space keeps
// a keyword from matching across the counterparty/memo boundary.
func haystack(tx Transaction) string {
	return strings.ToLower(tx.CounterpartyName + " " + tx.Memo)
}

// contains reports whether needle occurs in text. Blank needles never match.
func contains(text, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return false
	}
	return strings.Contains(text, needle)
}
