package market

import (
	"time"

	"github.com/google/uuid"
)

// Reading is a single metric value computed for one security at a point in time.
type Reading struct {
	ID          uuid.UUID  `json:"id"`
	Market      MarketType `json:"market"`
	SecID       string     `json:"secid"`
	Metric      string     `json:"metric"`
	Args        Args       `json:"args,omitempty"`
	Value       any        `json:"value"`
	CollectedAt time.Time  `json:"collected_at"`
}

func NewReading(marketType MarketType, secid, metric string, args Args, value any, at time.Time) Reading {
	return Reading{
		ID:          uuid.New(),
		Market:      marketType,
		SecID:       secid,
		Metric:      metric,
		Args:        args,
		Value:       value,
		CollectedAt: at.UTC(),
	}
}
