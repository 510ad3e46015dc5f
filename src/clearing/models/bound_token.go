package models

import (
	"fmt"
	"math/big"

	"github.com/clearhouse/options-ledger/src/assets"
)

// BoundToken is a fungible accounting token whose supply is controlled by
// exactly one ledger. Transfers are open to anyone; mint and burn fail
// ErrNotAuthorized for every caller except the bound ledger address.
type BoundToken struct {
	inner  *assets.BaseToken
	ledger assets.Address
}

func newBoundToken(name, symbol string, decimals uint8, ledger assets.Address) BoundToken {
	return BoundToken{
		inner:  assets.NewBaseToken(name, symbol, decimals),
		ledger: ledger,
	}
}

func (t *BoundToken) Name() string { return t.inner.Name() }
func (t *BoundToken) Symbol() string { return t.inner.Symbol() }
func (t *BoundToken) Decimals() uint8 { return t.inner.Decimals() }
func (t *BoundToken) TotalSupply() *big.Int { return t.inner.TotalSupply() }
func (t *BoundToken) BalanceOf(o assets.Address) *big.Int { return t.inner.BalanceOf(o) }
func (t *BoundToken) Snapshot() int { return t.inner.Snapshot() }
func (t *BoundToken) RevertToSnapshot(id int) { t.inner.RevertToSnapshot(id) }
func (t *BoundToken) DiscardSnapshot(id int) { t.inner.DiscardSnapshot(id) }

func (t *BoundToken) Transfer(from, to assets.Address, amount *big.Int) (bool, error) {
	return t.inner.Transfer(from, to, amount)
}

func (t *BoundToken) Ledger() assets.Address {
	return t.ledger
}

func (t *BoundToken) Mint(caller, to assets.Address, amount *big.Int) error {
	if caller != t.ledger {
		return ErrNotAuthorized
	}

	if err := t.inner.Mint(to, amount); err != nil {
		return fmt.Errorf("BoundToken.Mint: %w", err)
	}

	return nil
}

func (t *BoundToken) Burn(caller, from assets.Address, amount *big.Int) error {
	if caller != t.ledger {
		return ErrNotAuthorized
	}

	if err := t.inner.Burn(from, amount); err != nil {
		return fmt.Errorf("BoundToken.Burn: %w", err)
	}

	return nil
}

// OptionToken is the fungible long-position claim, 1:1 with underlying
// collateral locked at mint time.
type OptionToken struct {
	BoundToken
}

func NewOptionToken(key MarketKey, ledger assets.Address) *OptionToken {
	name := fmt.Sprintf("%s/%s Option", key.Underlying.Symbol(), key.Strike.Symbol())
	symbol := fmt.Sprintf("OPT-%s-%s", key.Underlying.Symbol(), key.Strike.Symbol())

	return &OptionToken{
		BoundToken: newBoundToken(name, symbol, key.Underlying.Decimals(), ledger),
	}
}

// ClaimToken is the fungible pro-rata claim on the ledger's strike-asset
// pool, denominated in strike units.
type ClaimToken struct {
	BoundToken
}

func NewClaimToken(key MarketKey, ledger assets.Address) *ClaimToken {
	name := fmt.Sprintf("%s/%s Claim", key.Underlying.Symbol(), key.Strike.Symbol())
	symbol := fmt.Sprintf("CLM-%s-%s", key.Underlying.Symbol(), key.Strike.Symbol())

	return &ClaimToken{
		BoundToken: newBoundToken(name, symbol, key.Strike.Decimals(), ledger),
	}
}
