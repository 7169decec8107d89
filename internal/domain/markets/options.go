package markets

import (
	"time"
	_ "time/tzdata"

	"moex-client/internal/domain/entity/market"
)

// DefaultTimezone is the exchange's local timezone; ISS times are reported in it.
const DefaultTimezone = "Europe/Moscow"

type options struct {
	location   *time.Location
	currencies market.CurrencyValidator
	defaults   Tables
}

type Option func(*options)

// WithLocation sets the timezone used to anchor exchange timestamps.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithCurrencies replaces the supported-currency capability.
func WithCurrencies(v market.CurrencyValidator) Option {
	return func(o *options) {
		if v != nil {
			o.currencies = v
		}
	}
}

// WithDefaults replaces the default mapping tables variants fall back to.
func WithDefaults(t Tables) Option {
	return func(o *options) {
		o.defaults = normalizeTables(t)
	}
}

func defaultOptions() options {
	return options{
		location:   MoscowLocation(),
		currencies: market.SupportedCurrencies,
		defaults:   normalizeTables(DefaultTables()),
	}
}

// MoscowLocation loads DefaultTimezone, falling back to a fixed UTC+3 zone.
func MoscowLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}
