package eventmodels

import (
	"math/big"
	"time"

	"github.com/clearhouse/options-ledger/src/assets"
)

// MintedEvent is published after a successful mint settlement.
type MintedEvent struct {
	MarketHash    string
	From          assets.Address
	IssuedOptions *big.Int
	IssuedClaims  *big.Int
	Timestamp     time.Time
}
