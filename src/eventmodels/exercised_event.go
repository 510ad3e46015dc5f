package eventmodels

import (
	"math/big"
	"time"

	"github.com/clearhouse/options-ledger/src/assets"
)

// ExercisedEvent is published after a successful exercise settlement, in both
// direct and flash mode.
type ExercisedEvent struct {
	MarketHash     string
	From           assets.Address
	OutUnderlyings *big.Int
	StrikesPaid    *big.Int
	Flash          bool
	Timestamp      time.Time
}
