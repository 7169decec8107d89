package market

import (
	"fmt"
	"strings"
)

// Args are the positional call-time tokens passed to a getter.
type Args []string

// At returns the argument at position i, or "" when it is absent.
// Empty and "0" tokens count as absent so the getter default applies.
func (a Args) At(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	if a[i] == "0" {
		return ""
	}
	return a[i]
}

type Currency string

const (
	CurrencyRUB Currency = "rub"
	CurrencyUSD Currency = "usd"

	DefaultCurrency = CurrencyRUB
)

// CurrencyValidator decides which currency codes a market accepts.
type CurrencyValidator interface {
	Supports(code Currency) bool
}

// CurrencySet is a fixed CurrencyValidator.
type CurrencySet map[Currency]struct{}

func NewCurrencySet(codes ...Currency) CurrencySet {
	set := make(CurrencySet, len(codes))
	for _, code := range codes {
		set[Currency(strings.ToLower(string(code)))] = struct{}{}
	}
	return set
}

func (s CurrencySet) Supports(code Currency) bool {
	_, ok := s[code]
	return ok
}

// SupportedCurrencies is the set of turnover currencies published by the exchange.
var SupportedCurrencies = NewCurrencySet(CurrencyRUB, CurrencyUSD)

// ParseCurrency normalizes raw to a lowercase code, applying DefaultCurrency
// when raw is empty, and rejects codes the validator does not support.
func ParseCurrency(raw string, validator CurrencyValidator) (Currency, error) {
	if raw == "" {
		raw = string(DefaultCurrency)
	}
	currency := Currency(strings.ToLower(raw))
	if validator == nil {
		validator = SupportedCurrencies
	}
	if !validator.Supports(currency) {
		return "", &ArgumentError{
			Position: 0,
			Value:    raw,
			Message:  fmt.Sprintf("Unsupported currency: %q", raw),
		}
	}
	return currency, nil
}

type Range string

const (
	RangeDay Range = "day"

	DefaultRange = RangeDay
)

// ParseRange accepts only "day" (case-insensitive); empty means "day".
func ParseRange(raw string) (Range, error) {
	if raw == "" {
		raw = string(DefaultRange)
	}
	r := Range(strings.ToLower(raw))
	if r != RangeDay {
		return "", &ArgumentError{
			Position: 0,
			Value:    raw,
			Message:  `Unsupported range. Available ranges: "day"`,
		}
	}
	return r, nil
}

type Measurement string

const (
	MeasurementPoints  Measurement = "points"
	MeasurementPercent Measurement = "%"

	DefaultMeasurement = MeasurementPoints
)

// ParseMeasurement never fails: only the literal "%" selects percent,
// every other token (including typos) means points.
func ParseMeasurement(raw string) Measurement {
	if Measurement(raw) == MeasurementPercent {
		return MeasurementPercent
	}
	return MeasurementPoints
}
