package markets

import (
	"sort"
	"strings"
	"time"

	"moex-client/internal/domain/entity/market"
)

// Mapping translates a lowercase generic property name to a raw ISS field name.
type Mapping map[string]string

// Tables is the pair of mappings every market owns.
type Tables struct {
	Instrument Mapping
	MarketData Mapping
}

func (t Tables) lookup(category market.Category, name string) (string, bool) {
	var m Mapping
	switch category {
	case market.CategoryInstrument:
		m = t.Instrument
	case market.CategoryMarketData:
		m = t.MarketData
	}
	field, ok := m[name]
	return field, ok
}

// Definition declares a market variant: its identity, the mappings it
// overrides and the computed getters it supplies. Getters receives the
// constructed Base so getters can read the variant's location and currency set.
type Definition struct {
	Type      market.MarketType
	Overrides Tables
	Getters   func(b *Base) map[string]market.Getter
}

// Base is the generic market engine shared by all variants. It is immutable
// after New returns and safe for concurrent use.
type Base struct {
	kind       market.MarketType
	defaults   Tables
	overrides  Tables
	getters    map[string]market.Getter
	location   *time.Location
	currencies market.CurrencyValidator
}

// New builds a market from its definition. Override keys may extend the
// default tables as well as rename their entries.
func New(def Definition, opts ...Option) *Base {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &Base{
		kind:       def.Type,
		defaults:   o.defaults,
		overrides:  normalizeTables(def.Overrides),
		location:   o.location,
		currencies: o.currencies,
	}

	b.getters = make(map[string]market.Getter)
	if def.Getters != nil {
		for name, getter := range def.Getters(b) {
			if getter == nil {
				continue
			}
			b.getters[strings.ToLower(name)] = getter
		}
	}
	return b
}

func (b *Base) Type() market.MarketType { return b.kind }

func (b *Base) Location() *time.Location { return b.location }

// Resolve maps name to a raw field: variant override first, then the default
// table, then the lowercased name itself.
func (b *Base) Resolve(name string, category market.Category) string {
	key := strings.ToLower(name)
	if field, ok := b.overrides.lookup(category, key); ok {
		return field
	}
	if field, ok := b.defaults.lookup(category, key); ok {
		return field
	}
	return key
}

func (b *Base) Getter(name string) (market.Getter, bool) {
	getter, ok := b.getters[strings.ToLower(name)]
	return getter, ok
}

// Metrics lists the computed getter names in lexical order.
func (b *Base) Metrics() []string {
	names := make([]string, 0, len(b.getters))
	for name := range b.getters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Value dispatches to a computed getter when one is registered for name and
// otherwise returns the raw market data field name resolves to.
func (b *Base) Value(name string, snapshot market.Snapshot, args market.Args) (any, error) {
	if getter, ok := b.Getter(name); ok {
		return getter(snapshot, args)
	}
	return snapshot.Field(b.Resolve(name, market.CategoryMarketData))
}

// Property returns a static instrument property from the description row.
func (b *Base) Property(name string, description market.Snapshot) (any, error) {
	return description.Field(b.Resolve(name, market.CategoryInstrument))
}

func normalizeTables(t Tables) Tables {
	return Tables{
		Instrument: normalizeMapping(t.Instrument),
		MarketData: normalizeMapping(t.MarketData),
	}
}

func normalizeMapping(m Mapping) Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
