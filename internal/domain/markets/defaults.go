package markets

import "moex-client/internal/domain/entity/market"

// Metric names with computed getters.
const (
	MetricVolume     = "volume"
	MetricChange     = "change"
	MetricLastUpdate = "lastupdate"
)

// Raw ISS market data fields read by the default getters.
const (
	fieldValToday        = "valtoday"
	fieldChange          = "change"
	fieldLastToPrevPrice = "lasttoprevprice"
	fieldSysTime         = "systime"
	fieldUpdateTime      = "updatetime"
)

// DefaultTables returns the base mappings shared by every market.
func DefaultTables() Tables {
	return Tables{
		Instrument: Mapping{
			"id":        "secid",
			"ticker":    "secid",
			"name":      "secname",
			"shortname": "shortname",
			"isin":      "isin",
			"lotsize":   "lotsize",
			"currency":  "currencyid",
			"facevalue": "facevalue",
			"board":     "boardid",
			"status":    "status",
		},
		MarketData: Mapping{
			"lastprice":     "last",
			"openingprice":  "open",
			"closingprice":  "closeprice",
			"dailylow":      "low",
			"dailyhigh":     "high",
			"bid":           "bid",
			"offer":         "offer",
			"weightedprice": "waprice",
			"trades":        "numtrades",
			"quantity":      "voltoday",
		},
	}
}

// DefaultGetters is the getter set a variant inherits when it declares none
// of its own: turnover in rub/usd, day change and last update time.
func DefaultGetters(b *Base) map[string]market.Getter {
	return map[string]market.Getter{
		MetricVolume:     b.VolumeGetter(fieldValToday),
		MetricChange:     b.ChangeGetter(fieldChange, fieldLastToPrevPrice),
		MetricLastUpdate: b.LastUpdateGetter(fieldSysTime, fieldUpdateTime),
	}
}

// withGetters layers variant getters over the defaults.
func withGetters(overrides func(b *Base) map[string]market.Getter) func(b *Base) map[string]market.Getter {
	return func(b *Base) map[string]market.Getter {
		getters := DefaultGetters(b)
		if overrides == nil {
			return getters
		}
		for name, getter := range overrides(b) {
			getters[name] = getter
		}
		return getters
	}
}
