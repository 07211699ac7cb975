package categorizer

import (
	"strings"

	"fleetops/fleet-ledger/internal/models"
)

// plateSuffixLen is how many trailing characters of a plate number are
// enough to identify a vehicle in free text.
const plateSuffixLen = 4

// ConsignmentStrategy matches consignment party names.
type ConsignmentStrategy struct{}

// Name returns the name of this strategy for logging and debugging.
func (s *ConsignmentStrategy) Name() string {
	return StrategyConsignment
}

// Categorize links the first consignment party named in the text. Income
// is a management fee, anything else a profit distribution.
func (s *ConsignmentStrategy) Categorize(snap Snapshot, tx Transaction) (Result, bool) {
	text := haystack(tx)
	for _, c := range snap.Entities.Consignments {
		if !contains(text, c.PartyName) {
			continue
		}
		category := models.CategoryConsignmentProfitDistribution
		if tx.Direction == models.Income {
			category = models.CategoryConsignmentManagementFee
		}
		return Result{
			Category:     category,
			LinkedEntity: &models.EntityRef{Type: models.EntityConsignmentParty, ID: c.ID},
		}, true
	}
	return Result{}, false
}

// InvestorStrategy matches investor names.
type InvestorStrategy struct{}

// Name returns the name of this strategy for logging and debugging.
func (s *InvestorStrategy) Name() string {
	return StrategyInvestor
}

// Categorize links the first investor named in the text. Income is
// investment principal, anything else interest expense.
func (s *InvestorStrategy) Categorize(snap Snapshot, tx Transaction) (Result, bool) {
	text := haystack(tx)
	for _, inv := range snap.Entities.Investors {
		if !contains(text, inv.Name) {
			continue
		}
		category := models.CategoryInterestExpense
		if tx.Direction == models.Income {
			category = models.CategoryInvestmentPrincipal
		}
		return Result{
			Category:     category,
			LinkedEntity: &models.EntityRef{Type: models.EntityInvestor, ID: inv.ID},
		}, true
	}
	return Result{}, false
}

// VehicleStrategy matches vehicle plate numbers, in full or by their last
// four characters.
type VehicleStrategy struct{}

// Name returns the name of this strategy for logging and debugging.
func (s *VehicleStrategy) Name() string {
	return StrategyVehicle
}

// Categorize links the first vehicle whose plate occurs in the text.
func (s *VehicleStrategy) Categorize(snap Snapshot, tx Transaction) (Result, bool) {
	text := haystack(tx)
	for _, v := range snap.Entities.Vehicles {
		if contains(text, v.PlateNumber) || contains(text, plateSuffix(v.PlateNumber)) {
			return Result{
				Category:     models.CategoryVehicleMaintenance,
				LinkedEntity: &models.EntityRef{Type: models.EntityVehicle, ID: v.ID},
			}, true
		}
	}
	return Result{}, false
}

// plateSuffix returns the last plateSuffixLen characters of plate, ignoring
// spaces. Shorter plates are returned whole.
func plateSuffix(plate string) string {
	runes := []rune(strings.ReplaceAll(plate, " ", ""))
	if len(runes) <= plateSuffixLen {
		return string(runes)
	}
	return string(runes[len(runes)-plateSuffixLen:])
}
