package markets

import (
	"fmt"
	"strings"

	"moex-client/internal/domain/entity/market"
	"moex-client/internal/domain/interfaces"
)

// Registry holds one market instance per variant.
type Registry struct {
	markets map[market.MarketType]*Base
	order   []market.MarketType
}

// NewRegistry builds every known variant with the same options.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{markets: make(map[market.MarketType]*Base)}
	for _, m := range []*Base{
		NewBonds(opts...),
		NewShares(opts...),
		NewCurrency(opts...),
		NewIndex(opts...),
	} {
		r.markets[m.Type()] = m
		r.order = append(r.order, m.Type())
	}
	return r
}

// Lookup finds a market by its code, case-insensitively.
func (r *Registry) Lookup(id string) (interfaces.Market, error) {
	mt := market.MarketType(strings.ToLower(strings.TrimSpace(id)))
	if !mt.IsValid() {
		return nil, fmt.Errorf("%w: %q", market.ErrUnknownMarket, id)
	}
	m, ok := r.markets[mt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", market.ErrUnknownMarket, id)
	}
	return m, nil
}

// Types lists registered market codes in registration order.
func (r *Registry) Types() []market.MarketType {
	out := make([]market.MarketType, len(r.order))
	copy(out, r.order)
	return out
}
