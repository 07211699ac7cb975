// Package models provides the data structures used throughout the application.
package models

// Direction is the flow of money relative to the business.
type Direction string

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == Income || d == Expense
}

// PaymentMethod is how a transaction was settled.
type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "Card"
	PaymentBankTransfer PaymentMethod = "Bank"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentBankTransfer
}

// Status of a ledger entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Income categories.
const (
	CategoryRentalIncome              = "rental income"
	CategoryConsignmentManagementFee  = "consignment management fee"
	CategoryInvestmentPrincipal       = "investment principal"
	CategoryConsignmentInitialDeposit = "consignment initial deposit"
	CategoryLoanDisbursement          = "loan disbursement"
	CategoryInterestMiscIncome        = "interest and misc income"
)

// Expense categories.
const (
	CategoryConsignmentProfitDistribution = "consignment profit distribution"
	CategoryFuel                          = "fuel"
	CategoryMaintenanceRepair             = "maintenance and repair"
	CategoryVehicleInsurance              = "vehicle insurance"
	CategoryVehicleTaxFines               = "vehicle tax and fines"
	CategoryInstallmentLease              = "installment and lease payment"
	CategoryInterestExpense               = "interest expense"
	CategoryPrincipalRepayment            = "principal repayment"
	CategorySalary                        = "salary"
	CategoryContractorServiceFee          = "contractor service fee"
	CategoryMealsWelfare                  = "meals and welfare"
	CategoryRentOffice                    = "rent and office"
	CategoryCommunicationsSupplies        = "communications and supplies"
	CategoryVehicleMaintenance            = "vehicle maintenance"
	CategoryOtherOperatingExpense         = "other operating expense"
)

// Categories written by the recurring schedule generator.
const (
	CategoryInvestorInterest      = "investor interest"
	CategoryConsignmentSettlement = "consignment settlement"
)

var incomeCategories = []string{
	CategoryRentalIncome,
	CategoryConsignmentManagementFee,
	CategoryInvestmentPrincipal,
	CategoryConsignmentInitialDeposit,
	CategoryLoanDisbursement,
	CategoryInterestMiscIncome,
}

var expenseCategories = []string{
	CategoryConsignmentProfitDistribution,
	CategoryFuel,
	CategoryMaintenanceRepair,
	CategoryVehicleInsurance,
	CategoryVehicleTaxFines,
	CategoryInstallmentLease,
	CategoryInterestExpense,
	CategoryPrincipalRepayment,
	CategorySalary,
	CategoryContractorServiceFee,
	CategoryMealsWelfare,
	CategoryRentOffice,
	CategoryCommunicationsSupplies,
	CategoryVehicleMaintenance,
	CategoryOtherOperatingExpense,
	CategoryInvestorInterest,
	CategoryConsignmentSettlement,
}

var knownCategories = func() map[string]Direction {
	m := make(map[string]Direction, len(incomeCategories)+len(expenseCategories))
	for _, c := range incomeCategories {
		m[c] = Income
	}
	for _, c := range expenseCategories {
		m[c] = Expense
	}
	return m
}()

// IsKnownCategory reports whether name belongs to the fixed taxonomy.
func IsKnownCategory(name string) bool {
	_, ok := knownCategories[name]
	return ok
}

// CategoriesFor returns the taxonomy labels for a direction, in display order.
func CategoriesFor(d Direction) []string {
	var src []string
	switch d {
	case Income:
		src = incomeCategories
	case Expense:
		src = expenseCategories
	default:
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// AllCategories returns every taxonomy label, income first.
func AllCategories() []string {
	return append(CategoriesFor(Income), CategoriesFor(Expense)...)
}
