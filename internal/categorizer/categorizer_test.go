package categorizer

import (
	"testing"

	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"

	"github.com/stretchr/testify/assert"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Rules: []models.ClassificationRule{
			{Keyword: "주유", Category: models.CategoryFuel},
			{Keyword: "박지입 정산", Category: models.CategorySalary},
		},
		Entities: models.EntitySet{
			Vehicles: []models.Vehicle{
				{ID: "v1", PlateNumber: "12가3456"},
				{ID: "v-empty", PlateNumber: ""},
			},
			Investors: []models.Investor{
				{ID: "i1", Name: "김투자", Active: true},
				{ID: "i-blank", Name: "  "},
			},
			Consignments: []models.ConsignmentContract{
				{ID: "c1", PartyName: "박지입", Active: true},
				{ID: "c-empty", PartyName: ""},
			},
		},
	}
}

func ref(typ models.EntityType, id string) *models.EntityRef {
	return &models.EntityRef{Type: typ, ID: id}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		tx       Transaction
		category string
		link     *models.EntityRef
		strategy string
	}{
		{
			name:     "rule keyword in counterparty",
			tx:       Transaction{CounterpartyName: "셀프주유소", Direction: models.Expense},
			category: models.CategoryFuel,
			strategy: StrategyRule,
		},
		{
			name:     "rule wins over consignment party",
			tx:       Transaction{CounterpartyName: "박지입", Memo: "박지입 정산", Direction: models.Expense},
			category: models.CategorySalary,
			strategy: StrategyRule,
		},
		{
			name:     "consignment income",
			tx:       Transaction{CounterpartyName: "박지입", Memo: "6월 관리비", Direction: models.Income},
			category: models.CategoryConsignmentManagementFee,
			link:     ref(models.EntityConsignmentParty, "c1"),
			strategy: StrategyConsignment,
		},
		{
			name:     "consignment expense",
			tx:       Transaction{CounterpartyName: "박지입", Direction: models.Expense},
			category: models.CategoryConsignmentProfitDistribution,
			link:     ref(models.EntityConsignmentParty, "c1"),
			strategy: StrategyConsignment,
		},
		{
			name:     "investor income",
			tx:       Transaction{CounterpartyName: "김투자", Direction: models.Income},
			category: models.CategoryInvestmentPrincipal,
			link:     ref(models.EntityInvestor, "i1"),
			strategy: StrategyInvestor,
		},
		{
			name:     "investor expense",
			tx:       Transaction{Memo: "김투자 이자", Direction: models.Expense},
			category: models.CategoryInterestExpense,
			link:     ref(models.EntityInvestor, "i1"),
			strategy: StrategyInvestor,
		},
		{
			name:     "consignment beats investor",
			tx:       Transaction{CounterpartyName: "김투자", Memo: "박지입", Direction: models.Income},
			category: models.CategoryConsignmentManagementFee,
			link:     ref(models.EntityConsignmentParty, "c1"),
			strategy: StrategyConsignment,
		},
		{
			name:     "vehicle last four digits in memo",
			tx:       Transaction{CounterpartyName: "스피드메이트", Memo: "3456 엔진오일", Direction: models.Expense},
			category: models.CategoryVehicleMaintenance,
			link:     ref(models.EntityVehicle, "v1"),
			strategy: StrategyVehicle,
		},
		{
			name:     "vehicle full plate",
			tx:       Transaction{CounterpartyName: "12가3456 세차", Direction: models.Expense},
			category: models.CategoryVehicleMaintenance,
			link:     ref(models.EntityVehicle, "v1"),
			strategy: StrategyVehicle,
		},
		{
			name:     "no match falls back",
			tx:       Transaction{CounterpartyName: "GS칼텍스 강남점", Direction: models.Expense},
			category: models.CategoryOtherOperatingExpense,
			strategy: StrategyFallback,
		},
		{
			name:     "income with no match still falls back",
			tx:       Transaction{CounterpartyName: "unknown", Direction: models.Income},
			category: models.CategoryOtherOperatingExpense,
			strategy: StrategyFallback,
		},
		{
			name:     "empty transaction",
			tx:       Transaction{},
			category: models.CategoryOtherOperatingExpense,
			strategy: StrategyFallback,
		},
	}

	c := NewClassifier(nil)
	snap := testSnapshot()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(snap, tt.tx)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.link, got.LinkedEntity)
			assert.Equal(t, tt.strategy, got.Strategy)
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	snap := Snapshot{Rules: []models.ClassificationRule{{Keyword: "s-oil", Category: models.CategoryFuel}}}
	got := NewClassifier(nil).Classify(snap, Transaction{CounterpartyName: "S-OIL 서초"})
	assert.Equal(t, models.CategoryFuel, got.Category)
}

func TestClassify_EmptyKeywordsNeverMatch(t *testing.T) {
	snap := Snapshot{
		Rules: []models.ClassificationRule{{Keyword: "", Category: models.CategoryFuel}, {Keyword: "  ", Category: models.CategorySalary}},
		Entities: models.EntitySet{
			Vehicles:     []models.Vehicle{{ID: "v", PlateNumber: " "}},
			Investors:    []models.Investor{{ID: "i", Name: ""}},
			Consignments: []models.ConsignmentContract{{ID: "c", PartyName: ""}},
		},
	}
	got := NewClassifier(nil).Classify(snap, Transaction{CounterpartyName: "anything at all", Memo: "memo"})
	assert.Equal(t, models.CategoryOtherOperatingExpense, got.Category)
	assert.Nil(t, got.LinkedEntity)
}

func TestClassify_NoCrossBoundaryMatch(t *testing.T) {
	snap := Snapshot{Rules: []models.ClassificationRule{{Keyword: "GS칼텍스", Category: models.CategoryFuel}}}
	got := NewClassifier(nil).Classify(snap, Transaction{CounterpartyName: "GS", Memo: "칼텍스"})
	assert.Equal(t, models.CategoryOtherOperatingExpense, got.Category)
}

func TestClassify_TotalOverEmptySnapshot(t *testing.T) {
	c := NewClassifier(nil)
	for _, tx := range []Transaction{
		{},
		{CounterpartyName: "\x00\xff"},
		{Memo: "🚗🚗🚗"},
		{Direction: models.Direction("sideways")},
	} {
		assert.NotPanics(t, func() {
			got := c.Classify(Snapshot{}, tx)
			assert.Equal(t, models.CategoryOtherOperatingExpense, got.Category)
		})
	}
}

func TestClassify_RuleLinkedEntityIsReturnedVerbatim(t *testing.T) {
	link := ref(models.EntityVehicle, "v9")
	snap := Snapshot{Rules: []models.ClassificationRule{{Keyword: "렌트", Category: models.CategoryRentalIncome, LinkedEntity: link}}}
	got := NewClassifier(nil).Classify(snap, Transaction{CounterpartyName: "렌트카 대여료", Direction: models.Income})
	assert.Equal(t, models.CategoryRentalIncome, got.Category)
	assert.Equal(t, link, got.LinkedEntity)
}

func TestClassify_LogsMatchingStrategyAtDebug(t *testing.T) {
	logger := logging.NewMockLogger()
	c := NewClassifier(logger)

	c.Classify(testSnapshot(), Transaction{CounterpartyName: "주유"})

	entries := logger.EntriesByLevel("DEBUG")
	if assert.Len(t, entries, 1) {
		assert.Contains(t, entries[0].Fields, logging.Field{Key: logging.FieldStrategy, Value: StrategyRule})
	}

	c.Classify(testSnapshot(), Transaction{CounterpartyName: "nothing"})
	assert.Len(t, logger.EntriesByLevel("DEBUG"), 1, "fallback is not logged")
}

type stubStrategy struct {
	name   string
	result Result
	ok     bool
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Categorize(Snapshot, Transaction) (Result, bool) {
	s.calls++
	return s.result, s.ok
}

func TestClassifier_FirstMatchWins(t *testing.T) {
	first := &stubStrategy{name: "first", result: Result{Category: models.CategoryFuel}, ok: true}
	second := &stubStrategy{name: "second", result: Result{Category: models.CategorySalary}, ok: true}

	c := NewClassifierWithStrategies(nil, first, second)
	got := c.Classify(Snapshot{}, Transaction{})

	assert.Equal(t, models.CategoryFuel, got.Category)
	assert.Equal(t, "first", got.Strategy)
	assert.Equal(t, 0, second.calls)
}

func TestStage(t *testing.T) {
	row := models.RawTransactionRow{CounterpartyName: "박지입", Direction: models.Income, Amount: 300000}
	staged := NewClassifier(nil).Stage(testSnapshot(), row, "june.csv")

	assert.Equal(t, models.CategoryConsignmentManagementFee, staged.Category)
	assert.Equal(t, ref(models.EntityConsignmentParty, "c1"), staged.LinkedEntity)
	assert.Equal(t, "june.csv", staged.SourceFile)
	assert.False(t, staged.ReviewEdited)
	assert.Equal(t, row, staged.RawTransactionRow)
}

func TestPlateSuffix(t *testing.T) {
	assert.Equal(t, "3456", plateSuffix("12가3456"))
	assert.Equal(t, "3456", plateSuffix("12가 3456"))
	assert.Equal(t, "가12", plateSuffix("가12"))
	assert.Equal(t, "", plateSuffix(""))
}
