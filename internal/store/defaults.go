package store

import "fleetops/fleet-ledger/internal/models"

// defaultRules is the starter keyword list offered to new installations.
// It is only written to the rule store by an explicit seed.
var defaultRules = []struct {
	keyword  string
	category string
}{
	{"주유", models.CategoryFuel},
	{"GS칼텍스", models.CategoryFuel},
	{"SK에너지", models.CategoryFuel},
	{"S-OIL", models.CategoryFuel},
	{"현대오일뱅크", models.CategoryFuel},
	{"충전소", models.CategoryFuel},
	{"정비", models.CategoryMaintenanceRepair},
	{"카센터", models.CategoryMaintenanceRepair},
	{"타이어", models.CategoryMaintenanceRepair},
	{"세차", models.CategoryVehicleMaintenance},
	{"손해보험", models.CategoryVehicleInsurance},
	{"화재", models.CategoryVehicleInsurance},
	{"자동차세", models.CategoryVehicleTaxFines},
	{"과태료", models.CategoryVehicleTaxFines},
	{"범칙금", models.CategoryVehicleTaxFines},
	{"캐피탈", models.CategoryInstallmentLease},
	{"급여", models.CategorySalary},
	{"용역", models.CategoryContractorServiceFee},
	{"식당", models.CategoryMealsWelfare},
	{"카페", models.CategoryMealsWelfare},
	{"임대료", models.CategoryRentOffice},
	{"KT", models.CategoryCommunicationsSupplies},
	{"쿠팡", models.CategoryCommunicationsSupplies},
	{"대여료", models.CategoryRentalIncome},
}

// DefaultRules returns a fresh copy of the built-in rule set.
func DefaultRules() []models.ClassificationRule {
	rules := make([]models.ClassificationRule, len(defaultRules))
	for i, r := range defaultRules {
		rules[i] = models.ClassificationRule{Keyword: r.keyword, Category: r.category}
	}
	return rules
}
