package markets

import "moex-client/internal/domain/entity/market"

var sharesDefinition = Definition{
	Type: market.SharesType,
	Overrides: Tables{
		Instrument: Mapping{
			"sector":    "sectorid",
			"listing":   "listlevel",
			"issuesize": "issuesize",
		},
		MarketData: Mapping{
			"closingprice": "lcloseprice",
			"currentprice": "lcurrentprice",
			"marketcap":    "issuecapitalization",
		},
	},
	Getters: withGetters(nil),
}

// NewShares builds the shares market (ISS engine "stock", market "shares").
func NewShares(opts ...Option) *Base {
	return New(sharesDefinition, opts...)
}
