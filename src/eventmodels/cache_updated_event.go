package eventmodels

import (
	"math/big"
	"time"
)

// CacheUpdatedEvent carries the new checkpointed balances after every
// successful settlement or reconciliation call.
type CacheUpdatedEvent struct {
	MarketHash      string
	UnderlyingCache *big.Int
	StrikeCache     *big.Int
	Timestamp       time.Time
}
