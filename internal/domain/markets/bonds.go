package markets

import "moex-client/internal/domain/entity/market"

var bondsDefinition = Definition{
	Type: market.BondsType,
	Overrides: Tables{
		Instrument: Mapping{
			"maturitydate":    "matdate",
			"accruedinterest": "accruedint",
			"couponrate":      "couponpercent",
		},
		MarketData: Mapping{
			"lastprice":    "last",
			"openingprice": "open",
			"closingprice": "lcloseprice",
			"dailylow":     "low",
			"dailyhigh":    "high",
			"yield":        "yield",
			"duration":     "duration",
			"currentprice": "lcurrentprice",
		},
	},
	Getters: withGetters(nil),
}

// NewBonds builds the bonds market (ISS engine "stock", market "bonds").
func NewBonds(opts ...Option) *Base {
	return New(bondsDefinition, opts...)
}
