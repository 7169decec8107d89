package markets

import "moex-client/internal/domain/entity/market"

var currencyDefinition = Definition{
	Type: market.CurrencyType,
	Overrides: Tables{
		Instrument: Mapping{
			"currency":      "faceunit",
			"quotecurrency": "currencyid",
		},
		MarketData: Mapping{
			"closingprice": "lcloseprice",
			"currentprice": "lcurrentprice",
		},
	},
	Getters: withGetters(nil),
}

// NewCurrency builds the currency market (ISS engine "currency", market "selt").
func NewCurrency(opts ...Option) *Base {
	return New(currencyDefinition, opts...)
}
