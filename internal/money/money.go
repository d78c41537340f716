package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
)

// SatToMsat converts satoshis to millisatoshis.
func SatToMsat(sat int64) (int64, error) {
	if sat < 0 {
		return 0, ErrInvalidAmount
	}
	if sat > math.MaxInt64/1000 {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return sat * 1000, nil
}

// MsatToSat converts millisatoshis to satoshis, flooring any sub-satoshi
// remainder. Display values only; the raw msat figure stays on the node
// response for anyone who needs it.
func MsatToSat(msat int64) int64 {
	if msat < 0 {
		return 0
	}
	return msat / 1000
}

// ParseSat parses a user-entered amount string into whole satoshis. Inputs
// carrying sub-satoshi precision are rejected rather than rounded, so the
// service can never mint or drop value on its own.
func ParseSat(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: sub-satoshi precision not supported", ErrInvalidAmount)
	}
	if !d.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return d.IntPart(), nil
}

// FormatSat renders satoshis as a plain integer string with a unit suffix.
func FormatSat(sat int64) string {
	return fmt.Sprintf("%d sats", sat)
}
