package interfaces

import (
	"context"

	"moex-client/internal/domain/entity/market"
)

// Market resolves generic property names and computed metrics for one market variant.
type Market interface {
	Type() market.MarketType
	Resolve(name string, category market.Category) string
	Getter(name string) (market.Getter, bool)
	Metrics() []string
	Value(name string, snapshot market.Snapshot, args market.Args) (any, error)
	Property(name string, description market.Snapshot) (any, error)
}

// SecuritySource loads the current description and market data row for a security.
type SecuritySource interface {
	Security(ctx context.Context, marketType market.MarketType, secid string) (*market.Security, error)
}
