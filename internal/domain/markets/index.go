package markets

import "moex-client/internal/domain/entity/market"

const (
	fieldLastChange    = "lastchange"
	fieldLastChangePrc = "lastchangeprc"
)

var indexDefinition = Definition{
	Type: market.IndexType,
	Overrides: Tables{
		Instrument: Mapping{
			"name": "name",
		},
		MarketData: Mapping{
			"lastprice":    "currentvalue",
			"openingprice": "openvalue",
			"closingprice": "lastvalue",
			"volume":       "valtoday",
			"marketcap":    "capitalization",
		},
	},
	// Indices have no usd turnover column, so volume is a plain field lookup.
	Getters: func(b *Base) map[string]market.Getter {
		return map[string]market.Getter{
			MetricChange:     b.ChangeGetter(fieldLastChange, fieldLastChangePrc),
			MetricLastUpdate: b.LastUpdateGetter(fieldSysTime, fieldUpdateTime),
		}
	},
}

// NewIndex builds the index market (ISS engine "stock", market "index").
func NewIndex(opts ...Option) *Base {
	return New(indexDefinition, opts...)
}
