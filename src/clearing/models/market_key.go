package models

import (
	"fmt"
	"math/big"
	"time"

	"github.com/clearhouse/options-ledger/src/assets"
	"github.com/clearhouse/options-ledger/src/utils"
)

// MarketKey is the identity of an option market. One unit of locked
// underlying entitles the holder to Quote/Base units of strike asset at
// exercise. Two ledgers with the same key must never coexist; the registry
// enforces this through Hash.
type MarketKey struct {
	Underlying assets.Token
	Strike     assets.Token
	Base       *big.Int
	Quote      *big.Int
	Expiry     time.Time
}

func (k MarketKey) Validate() error {
	if k.Underlying == nil {
		return fmt.Errorf("MarketKey.Validate: underlying asset is not set")
	}

	if k.Strike == nil {
		return fmt.Errorf("MarketKey.Validate: strike asset is not set")
	}

	if k.Base == nil || k.Base.Sign() <= 0 {
		return fmt.Errorf("MarketKey.Validate: base must be positive")
	}

	if k.Quote == nil || k.Quote.Sign() <= 0 {
		return fmt.Errorf("MarketKey.Validate: quote must be positive")
	}

	if k.Expiry.IsZero() {
		return fmt.Errorf("MarketKey.Validate: expiry is not set")
	}

	return nil
}

// Hash returns the deterministic identity of the key.
func (k MarketKey) Hash() (string, error) {
	if err := k.Validate(); err != nil {
		return "", err
	}

	return utils.HashStruct(struct {
		Underlying string
		Strike     string
		Base       string
		Quote      string
		Expiry     int64
	}{
		Underlying: k.Underlying.Symbol(),
		Strike:     k.Strike.Symbol(),
		Base:       k.Base.String(),
		Quote:      k.Quote.String(),
		Expiry:     k.Expiry.UTC().Unix(),
	})
}

func (k MarketKey) String() string {
	return fmt.Sprintf("%s/%s %s:%s exp %s", k.Underlying.Symbol(), k.Strike.Symbol(), k.Base.String(), k.Quote.String(), k.Expiry.UTC().Format(time.RFC3339))
}
