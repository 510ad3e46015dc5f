package eventmodels

import (
	"time"
)

// MarketCreatedEvent is published when the registry deploys a new market.
type MarketCreatedEvent struct {
	MarketHash string
	Underlying string
	Strike     string
	Timestamp  time.Time
}
