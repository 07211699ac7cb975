// Package schedule generates the recurring monthly obligations of active
// investor and consignment contracts as pending ledger entries.
package schedule

import (
	"context"
	"fmt"

	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultDay is the due day used when a contract has none configured.
const DefaultDay = 10

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// EntitySnapshotter serves the current entity registry snapshot.
type EntitySnapshotter interface {
	Snapshot() models.EntitySet
}

// LedgerStore is the subset of ledger persistence the generator uses.
type LedgerStore interface {
	ExistingObligationKeys(ctx context.Context, month models.Month) (map[models.ObligationKey]struct{}, error)
	InsertLedgerEntries(ctx context.Context, entries []models.LedgerEntry) ([]models.LedgerEntry, error)
	UpdateLedgerEntryStatus(ctx context.Context, id string, from, to models.Status, amount *int64) error
	DeleteLedgerEntry(ctx context.Context, id string) error
}

// Report counts what one generation run did.
type Report struct {
	Month   models.Month
	Created int
	Skipped int
}

// Generator creates monthly obligations. Dedup relies on scanning the
// month's existing entries; two generators running for the same month at
// the same time can both insert.
type Generator struct {
	entities   EntitySnapshotter
	ledger     LedgerStore
	defaultDay int
	logger     logging.Logger
}

// NewGenerator creates a generator. A defaultDay outside 1-31 means
// DefaultDay.
func NewGenerator(entities EntitySnapshotter, ledger LedgerStore, defaultDay int, logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if defaultDay < 1 || defaultDay > 31 {
		defaultDay = DefaultDay
	}
	return &Generator{entities: entities, ledger: ledger, defaultDay: defaultDay, logger: logger}
}

// MonthlyInterest returns floor(amount * rate/100 / 12) for an annual
// percentage rate.
func MonthlyInterest(amount int64, annualRate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(annualRate).Div(hundred).Div(twelve).Floor().IntPart()
}

// Obligations returns every obligation the active contracts owe for month,
// whether or not it already exists in the ledger.
func (g *Generator) Obligations(month models.Month) []models.ScheduledObligation {
	snap := g.entities.Snapshot()
	day := func(d int) int {
		if d <= 0 {
			return g.defaultDay
		}
		return d
	}

	var out []models.ScheduledObligation
	for _, inv := range snap.Investors {
		if !inv.Active {
			continue
		}
		out = append(out, models.ScheduledObligation{
			SourceContractID:   inv.ID,
			SourceContractType: models.EntityInvestor,
			TargetMonth:        month,
			DueDate:            month.Day(day(inv.PaymentDay)),
			Category:           models.CategoryInvestorInterest,
			CounterpartyName:   inv.Name,
			Amount:             MonthlyInterest(inv.InvestAmount, inv.InterestRate),
			Status:             models.StatusPending,
		})
	}
	for _, c := range snap.Consignments {
		if !c.Active {
			continue
		}
		out = append(out, models.ScheduledObligation{
			SourceContractID:   c.ID,
			SourceContractType: models.EntityConsignmentParty,
			TargetMonth:        month,
			DueDate:            month.Day(day(c.PayoutDay)),
			Category:           models.CategoryConsignmentSettlement,
			CounterpartyName:   c.PartyName,
			Status:             models.StatusPending,
		})
	}
	return out
}

// GenerateForMonth inserts the obligations for month that do not exist
// yet, in one batch. Running it again for the same month creates nothing.
func (g *Generator) GenerateForMonth(ctx context.Context, month models.Month) (Report, error) {
	report := Report{Month: month}
	logger := g.logger.WithField(logging.FieldMonth, month.String())

	existing, err := g.ledger.ExistingObligationKeys(ctx, month)
	if err != nil {
		return report, fmt.Errorf("failed to load existing obligations for %s: %w", month, err)
	}
	if existing == nil {
		existing = make(map[models.ObligationKey]struct{})
	}

	var entries []models.LedgerEntry
	for _, ob := range g.Obligations(month) {
		key := ob.Key()
		if _, ok := existing[key]; ok {
			report.Skipped++
			logger.Debug("Obligation already exists",
				logging.Field{Key: logging.FieldContract, Value: ob.SourceContractID},
				logging.Field{Key: logging.FieldCategory, Value: ob.Category})
			continue
		}
		existing[key] = struct{}{}
		entries = append(entries, ob.ToLedgerEntry(""))
	}

	if len(entries) > 0 {
		if _, err := g.ledger.InsertLedgerEntries(ctx, entries); err != nil {
			return report, fmt.Errorf("failed to insert obligations for %s: %w", month, err)
		}
	}
	report.Created = len(entries)

	logger.Info("Generated recurring obligations",
		logging.Field{Key: logging.FieldCreated, Value: report.Created},
		logging.Field{Key: logging.FieldSkipped, Value: report.Skipped})
	return report, nil
}

// Confirm marks a pending entry completed, optionally setting its final
// amount. Confirming an entry that is already completed fails with
// ledgererror.ErrInvalidTransition.
func (g *Generator) Confirm(ctx context.Context, id string, amount *int64) error {
	if err := g.ledger.UpdateLedgerEntryStatus(ctx, id, models.StatusPending, models.StatusCompleted, amount); err != nil {
		return err
	}
	fields := []logging.Field{{Key: logging.FieldEntryID, Value: id}}
	if amount != nil {
		fields = append(fields, logging.Field{Key: "amount", Value: *amount})
	}
	g.logger.Info("Obligation confirmed", fields...)
	return nil
}

// Delete removes an entry in any status.
func (g *Generator) Delete(ctx context.Context, id string) error {
	if err := g.ledger.DeleteLedgerEntry(ctx, id); err != nil {
		return err
	}
	g.logger.Info("Ledger entry deleted", logging.Field{Key: logging.FieldEntryID, Value: id})
	return nil
}
