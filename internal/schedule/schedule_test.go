package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetops/fleet-ledger/internal/ledgererror"
	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"
	"fleetops/fleet-ledger/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntities models.EntitySet

func (f fakeEntities) Snapshot() models.EntitySet {
	return models.EntitySet(f)
}

func contracts() fakeEntities {
	return fakeEntities{
		Investors: []models.Investor{
			{ID: "i1", Name: "김투자", InvestAmount: 100_000_000, InterestRate: decimal.RequireFromString("12"), PaymentDay: 25, Active: true},
			{ID: "i2", Name: "이투자", InvestAmount: 10_000_000, InterestRate: decimal.RequireFromString("7.5"), Active: true},
			{ID: "i3", Name: "해지", InvestAmount: 50_000_000, InterestRate: decimal.RequireFromString("10"), Active: false},
		},
		Consignments: []models.ConsignmentContract{
			{ID: "c1", PartyName: "박지입", VehicleID: "v1", PayoutDay: 31, Active: true},
			{ID: "c2", PartyName: "종료", VehicleID: "v2", Active: false},
		},
	}
}

func newTestGenerator(t *testing.T, entities fakeEntities) (*Generator, *storage.SQLiteStorage, *logging.MockLogger) {
	t.Helper()
	db, err := storage.NewSQLiteStorage(storage.MemoryPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	logger := logging.NewMockLogger()
	return NewGenerator(entities, db, 0, logger), db, logger
}

func june() models.Month {
	return models.Month{Year: 2025, Month: time.June}
}

func TestMonthlyInterest(t *testing.T) {
	tests := []struct {
		amount int64
		rate   string
		want   int64
	}{
		{100_000_000, "12", 1_000_000},
		{10_000_000, "7.5", 62_500},
		{1_000_000, "5", 4_166}, // 4166.66 floors
		{0, "12", 0},
		{1_000_000, "0", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthlyInterest(tt.amount, decimal.RequireFromString(tt.rate)), "%d at %s%%", tt.amount, tt.rate)
	}
}

func TestGenerateForMonth_Idempotent(t *testing.T) {
	g, db, logger := newTestGenerator(t, contracts())
	ctx := context.Background()

	first, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Created)
	assert.Equal(t, 0, first.Skipped)

	second, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 3, second.Skipped)

	entries, err := db.ListLedgerEntries(ctx, june())
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.True(t, logger.HasEntry("INFO", "Generated recurring obligations"))
}

func TestGenerateForMonth_Entries(t *testing.T) {
	g, db, _ := newTestGenerator(t, contracts())
	ctx := context.Background()

	_, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)

	entries, err := db.ListLedgerEntries(ctx, june())
	require.NoError(t, err)

	byID := map[string]models.LedgerEntry{}
	for _, e := range entries {
		byID[e.RelatedID] = e
		assert.Equal(t, models.StatusPending, e.Status)
		assert.Equal(t, models.Expense, e.Type)
		assert.Equal(t, models.PaymentBankTransfer, e.PaymentMethod)
	}
	require.Len(t, byID, 3)

	i1 := byID["i1"]
	assert.Equal(t, models.CategoryInvestorInterest, i1.Category)
	assert.Equal(t, models.EntityInvestor, i1.RelatedType)
	assert.Equal(t, int64(1_000_000), i1.Amount)
	assert.Equal(t, time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC), i1.TransactionDate)
	assert.Equal(t, "김투자", i1.ClientName)
	assert.Equal(t, "2025-06 investor interest", i1.Description)

	i2 := byID["i2"]
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), i2.TransactionDate, "default day")
	assert.Equal(t, int64(62_500), i2.Amount)

	c1 := byID["c1"]
	assert.Equal(t, models.CategoryConsignmentSettlement, c1.Category)
	assert.Equal(t, models.EntityConsignmentParty, c1.RelatedType)
	assert.Equal(t, int64(0), c1.Amount)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), c1.TransactionDate, "day 31 clamps to June 30")
}

func TestGenerateForMonth_FebruaryClamp(t *testing.T) {
	g, db, _ := newTestGenerator(t, contracts())
	ctx := context.Background()
	feb := models.Month{Year: 2025, Month: time.February}

	_, err := g.GenerateForMonth(ctx, feb)
	require.NoError(t, err)

	entries, err := db.ListLedgerEntries(ctx, feb)
	require.NoError(t, err)
	for _, e := range entries {
		if e.RelatedID == "c1" {
			assert.Equal(t, 28, e.TransactionDate.Day())
		}
	}
}

func TestGenerateForMonth_NewContractOnlyAddsItsOwnLine(t *testing.T) {
	entities := contracts()
	g, _, _ := newTestGenerator(t, entities)
	ctx := context.Background()

	_, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)

	entities.Investors = append(entities.Investors, models.Investor{
		ID: "i4", Name: "신규", InvestAmount: 12_000_000, InterestRate: decimal.RequireFromString("10"), Active: true,
	})
	g.entities = entities

	report, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 3, report.Skipped)
}

func TestGenerateForMonth_MonthsAreIndependent(t *testing.T) {
	g, _, _ := newTestGenerator(t, contracts())
	ctx := context.Background()

	_, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)

	report, err := g.GenerateForMonth(ctx, models.Month{Year: 2025, Month: time.July})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Created)
	assert.Equal(t, 0, report.Skipped)
}

func TestGenerateForMonth_CompletedEntriesStillCount(t *testing.T) {
	g, db, _ := newTestGenerator(t, contracts())
	ctx := context.Background()

	_, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)
	entries, err := db.ListLedgerEntries(ctx, june())
	require.NoError(t, err)
	for _, e := range entries {
		require.NoError(t, g.Confirm(ctx, e.ID, nil))
	}

	report, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
}

type brokenLedger struct {
	LedgerStore
}

func (brokenLedger) ExistingObligationKeys(context.Context, models.Month) (map[models.ObligationKey]struct{}, error) {
	return nil, errors.New("disk I/O error")
}

func TestGenerateForMonth_LookupFailure(t *testing.T) {
	g := NewGenerator(contracts(), brokenLedger{}, 0, nil)
	_, err := g.GenerateForMonth(context.Background(), june())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestConfirm(t *testing.T) {
	g, db, _ := newTestGenerator(t, contracts())
	ctx := context.Background()

	_, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)
	entries, err := db.ListLedgerEntries(ctx, june())
	require.NoError(t, err)

	var settlement models.LedgerEntry
	for _, e := range entries {
		if e.RelatedID == "c1" {
			settlement = e
		}
	}
	require.NotEmpty(t, settlement.ID)

	amount := int64(2_350_000)
	require.NoError(t, g.Confirm(ctx, settlement.ID, &amount))

	got, err := db.GetLedgerEntry(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, amount, got.Amount)

	err = g.Confirm(ctx, settlement.ID, nil)
	assert.ErrorIs(t, err, ledgererror.ErrInvalidTransition)

	err = g.Confirm(ctx, "missing", nil)
	assert.ErrorIs(t, err, ledgererror.ErrNotFound)
}

func TestDelete(t *testing.T) {
	g, db, _ := newTestGenerator(t, contracts())
	ctx := context.Background()

	_, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)
	entries, err := db.ListLedgerEntries(ctx, june())
	require.NoError(t, err)

	require.NoError(t, g.Confirm(ctx, entries[0].ID, nil))
	require.NoError(t, g.Delete(ctx, entries[0].ID), "completed entries can be deleted")
	require.NoError(t, g.Delete(ctx, entries[1].ID), "pending entries can be deleted")
	assert.ErrorIs(t, g.Delete(ctx, entries[1].ID), ledgererror.ErrNotFound)

	// deleting lets the obligation be generated again
	report, err := g.GenerateForMonth(ctx, june())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
}

func TestNewGenerator_DefaultDay(t *testing.T) {
	g := NewGenerator(contracts(), nil, 40, nil)
	assert.Equal(t, DefaultDay, g.defaultDay)

	g = NewGenerator(contracts(), nil, 5, nil)
	obs := g.Obligations(june())
	for _, ob := range obs {
		if ob.SourceContractID == "i2" {
			assert.Equal(t, 5, ob.DueDate.Day())
		}
	}
	assert.Len(t, obs, 3)
}
