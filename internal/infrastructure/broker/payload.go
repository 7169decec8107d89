package broker

import (
	"time"

	"moex-client/internal/domain/entity/market"
)

// BatchMessage is the JSON body published for one flushed batch of readings.
type BatchMessage struct {
	PublishedAt time.Time        `json:"published_at"`
	Readings    []market.Reading `json:"readings"`
}
