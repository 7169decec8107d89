package market

import (
	"fmt"
	"strings"
)

// MarketType identifies a market variant by its short ISS code.
type MarketType string

const (
	BondsType    MarketType = "bonds"
	SharesType   MarketType = "shares"
	CurrencyType MarketType = "currency"
	IndexType    MarketType = "index"
)

func (mt MarketType) String() string {
	return string(mt)
}

func (mt MarketType) IsValid() bool {
	switch mt {
	case BondsType, SharesType, CurrencyType, IndexType:
		return true
	default:
		return false
	}
}

// Category selects which of the two mapping tables a property is resolved against.
type Category int

const (
	// CategoryInstrument covers static descriptive fields (the ISS "securities" block).
	CategoryInstrument Category = iota
	// CategoryMarketData covers live trading fields (the ISS "marketdata" block).
	CategoryMarketData
)

func (c Category) String() string {
	switch c {
	case CategoryInstrument:
		return "instrument"
	case CategoryMarketData:
		return "marketdata"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "instrument", "security", "securities":
		return CategoryInstrument, nil
	case "", "marketdata", "market_data":
		return CategoryMarketData, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// Getter derives a caller-facing value from one snapshot and call-time arguments.
// Getters must not retain or mutate the snapshot.
type Getter func(snapshot Snapshot, args Args) (any, error)

// Security is one instrument as returned by the exchange: its descriptive row
// and its live market data row.
type Security struct {
	SecID       string
	Board       string
	Description Snapshot
	MarketData  Snapshot
}
