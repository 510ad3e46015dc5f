package eventmodels

import (
	"math/big"
	"time"

	"github.com/clearhouse/options-ledger/src/assets"
)

// ClosedEvent is published after a close settlement, covering both the
// pre-expiry pair variant and the post-expiry claims-only variant.
type ClosedEvent struct {
	MarketHash     string
	From           assets.Address
	OutUnderlyings *big.Int
	Timestamp      time.Time
}
