package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyConverter converts amounts into a single base currency using a
// static table of multipliers. Rates are configuration, not a live feed.
type CurrencyConverter struct {
	rates map[string]decimal.Decimal
	base  string
}

// NewCurrencyConverter builds a converter from a base currency code and a
// map of currency code to multiplier-to-base. The base currency must map
// to exactly 1; it is added implicitly when absent.
func NewCurrencyConverter(base string, rates map[string]decimal.Decimal) (*CurrencyConverter, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if len(base) != 3 {
		return nil, NewDomainError(ErrorCodeValidationFailed,
			fmt.Sprintf("base currency must be a 3-letter code, got %q", base))
	}

	normalized := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		code = strings.ToUpper(strings.TrimSpace(code))
		if len(code) != 3 {
			return nil, NewDomainError(ErrorCodeCurrencyInvalidRate,
				fmt.Sprintf("currency code %q is not a 3-letter code", code))
		}
		if rate.Sign() <= 0 {
			return nil, NewDomainError(ErrorCodeCurrencyInvalidRate,
				fmt.Sprintf("rate for %s must be positive, got %s", code, rate))
		}
		normalized[code] = rate
	}

	if baseRate, ok := normalized[base]; ok {
		if !baseRate.Equal(decimal.NewFromInt(1)) {
			return nil, NewDomainError(ErrorCodeCurrencyInvalidRate,
				fmt.Sprintf("base currency %s must have rate 1, got %s", base, baseRate))
		}
	} else {
		normalized[base] = decimal.NewFromInt(1)
	}

	return &CurrencyConverter{base: base, rates: normalized}, nil
}

// Base returns the base currency code all totals are expressed in.
func (c *CurrencyConverter) Base() string {
	return c.base
}

// Supports reports whether a currency code is present in the rate table.
func (c *CurrencyConverter) Supports(code string) bool {
	_, ok := c.rates[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// ToBase converts amount from the given currency into the base currency.
// The result is not rounded; rounding policy belongs to the caller.
func (c *CurrencyConverter) ToBase(amount decimal.Decimal, code string) (decimal.Decimal, error) {
	rate, ok := c.rates[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return decimal.Zero, NewDomainError(ErrorCodeCurrencyUnknown,
			fmt.Sprintf("currency %q is not in the rate table", code)).
			WithDetail("currency", code)
	}
	return amount.Mul(rate), nil
}

// DefaultExchangeRates returns the stock rate table used when no
// EXCHANGE_RATES configuration is supplied.
func DefaultExchangeRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("1.08"),
		"GBP": decimal.RequireFromString("1.27"),
		"MXN": decimal.RequireFromString("0.058"),
		"ARS": decimal.RequireFromString("0.0011"),
	}
}
