package eventmodels

import (
	"math/big"
	"time"

	"github.com/clearhouse/options-ledger/src/assets"
)

// RedeemedEvent is published after claim tokens are burned for strike assets.
type RedeemedEvent struct {
	MarketHash string
	From       assets.Address
	InClaims   *big.Int
	Timestamp  time.Time
}
