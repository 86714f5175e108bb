package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ErrSubMinorUnitAmount is returned for totals that cannot be charged in the
// account's currency, e.g. 45000.50 COP.
var ErrSubMinorUnitAmount = errors.New("amount is finer than the currency minor unit")

// SplitCommission divides total into the platform commission and the provider
// payout. The commission is rounded half-up to the currency's minor unit and
// the payout takes the remainder, so commission+payout == total exactly and
// both parts are valid amounts in that currency.
func SplitCommission(total, percent decimal.Decimal, decimals int32) (commission, payout decimal.Decimal, err error) {
	if total.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("total must not be negative, got %s", total)
	}
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("commission percent must be within 0..100, got %s", percent)
	}
	if !total.Equal(total.Round(decimals)) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %s with %d decimals", ErrSubMinorUnitAmount, total, decimals)
	}
	commission = decimal.Min(total.Mul(percent).Div(hundred).Round(decimals), total)
	payout = total.Sub(commission)
	return commission, payout, nil
}
