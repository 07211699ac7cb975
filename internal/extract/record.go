package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"fleetops/fleet-ledger/internal/currencyutils"
	"fleetops/fleet-ledger/internal/dateutils"
	"fleetops/fleet-ledger/internal/ledgererror"
	"fleetops/fleet-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// Record is one transaction as returned by the extraction service.
type Record struct {
	TransactionDate string `json:"transaction_date"`
	Type            string `json:"type"`
	ClientName      string `json:"client_name"`
	Description     string `json:"description"`
	Amount          Amount `json:"amount"`
	PaymentMethod   string `json:"payment_method"`
}

// Amount accepts a JSON number or a string such as "55,000원".
type Amount struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("amount is null")
	}

	text := string(data)
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		text = s
	}

	d, err := currencyutils.ParseAmount(text)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", text, err)
	}
	a.Decimal = d
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

var directionAliases = map[string]models.Direction{
	"income":  models.Income,
	"expense": models.Expense,
	"수입":      models.Income,
	"입금":      models.Income,
	"지출":      models.Expense,
	"출금":      models.Expense,
}

var paymentAliases = map[string]models.PaymentMethod{
	"card":          models.PaymentCard,
	"카드":            models.PaymentCard,
	"bank":          models.PaymentBankTransfer,
	"bank transfer": models.PaymentBankTransfer,
	"banktransfer":  models.PaymentBankTransfer,
	"transfer":      models.PaymentBankTransfer,
	"계좌이체":          models.PaymentBankTransfer,
	"이체":            models.PaymentBankTransfer,
}

// ToRow maps a record onto a raw transaction row. A missing payment method
// means bank transfer.
func (r Record) ToRow() (models.RawTransactionRow, error) {
	var row models.RawTransactionRow

	date, _, err := dateutils.ParseDate(r.TransactionDate)
	if err != nil {
		return row, parseError("transaction_date", r.TransactionDate, err)
	}

	direction, ok := directionAliases[strings.ToLower(strings.TrimSpace(r.Type))]
	if !ok {
		return row, parseError("type", r.Type, fmt.Errorf("want income or expense"))
	}

	amount, err := currencyutils.WholeAmount(r.Amount.Decimal)
	if err != nil {
		return row, parseError("amount", r.Amount.String(), err)
	}

	method := models.PaymentBankTransfer
	if m := strings.ToLower(strings.TrimSpace(r.PaymentMethod)); m != "" {
		if method, ok = paymentAliases[m]; !ok {
			return row, parseError("payment_method", r.PaymentMethod, fmt.Errorf("want Card or Bank"))
		}
	}

	return models.RawTransactionRow{
		TransactionDate:  date,
		Direction:        direction,
		CounterpartyName: strings.TrimSpace(r.ClientName),
		Memo:             strings.TrimSpace(r.Description),
		Amount:           amount,
		PaymentMethod:    method,
	}, nil
}

func parseError(field, value string, err error) error {
	return &ledgererror.ParseError{Source: "extraction", Field: field, Value: value, Err: err}
}
