// Package currencyutils parses and formats won amounts as they appear in
// statements, receipts and review input.
package currencyutils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeAmount is returned for amounts below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrFractionalAmount is returned for amounts with a fractional part.
	ErrFractionalAmount = errors.New("amount must be a whole number")
	// ErrAmountRange is returned for amounts that do not fit an int64.
	ErrAmountRange = errors.New("amount out of range")
)

// Currency marks and separators dropped before parsing. Commas are always
// thousands separators for won amounts.
var amountReplacer = strings.NewReplacer(
	",", "",
	"원", "",
	"₩", "",
	"￦", "",
	"KRW", "",
	" ", "",
	" ", "",
)

// StandardizeAmount strips currency marks, whitespace and thousands
// separators so the result can be parsed by decimal.NewFromString.
// "₩ 1,200,000" and "55,000원" become "1200000" and "55000".
func StandardizeAmount(amountStr string) string {
	return amountReplacer.Replace(strings.TrimSpace(amountStr))
}

// ParseAmount parses a won amount in any of the forms StandardizeAmount
// accepts. An empty string is an error.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// WholeAmount converts a non-negative whole amount to int64.
func WholeAmount(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}
	if !amount.Equal(amount.Truncate(0)) {
		return 0, ErrFractionalAmount
	}
	if !amount.BigInt().IsInt64() {
		return 0, ErrAmountRange
	}
	return amount.IntPart(), nil
}

// ParseWholeAmount parses amountStr and requires a non-negative whole
// number.
func ParseWholeAmount(amountStr string) (int64, error) {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return 0, err
	}
	return WholeAmount(amount)
}

// FormatAmount renders an amount with thousands separators, e.g.
// 1200000 as "1,200,000".
func FormatAmount(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
