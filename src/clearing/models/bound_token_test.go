package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearhouse/options-ledger/src/assets"
)

func TestBoundTokenGating(t *testing.T) {
	dai := assets.NewBaseToken("Dai Stablecoin", "DAI", 18)
	weth := assets.NewBaseToken("Wrapped Ether", "WETH", 18)

	key := MarketKey{
		Underlying: dai,
		Strike:     weth,
		Base:       e(200, 18),
		Quote:      e(1, 18),
		Expiry:     time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
	}

	ledgerAddr := assets.Address("ledger-under-test")
	claim := NewClaimToken(key, ledgerAddr)
	option := NewOptionToken(key, ledgerAddr)

	t.Run("only the bound ledger may mint", func(t *testing.T) {
		require.ErrorIs(t, claim.Mint(alice, alice, e(1, 18)), ErrNotAuthorized)
		require.NoError(t, claim.Mint(ledgerAddr, alice, e(1, 18)))

		assert.Equal(t, e(1, 18).String(), claim.BalanceOf(alice).String())
	})

	t.Run("only the bound ledger may burn", func(t *testing.T) {
		require.ErrorIs(t, option.Burn(alice, alice, e(1, 18)), ErrNotAuthorized)

		require.NoError(t, option.Mint(ledgerAddr, alice, e(1, 18)))
		require.NoError(t, option.Burn(ledgerAddr, alice, e(1, 18)))

		assert.Equal(t, "0", option.TotalSupply().String())
	})

	t.Run("transfers stay open to holders", func(t *testing.T) {
		_, err := claim.Transfer(alice, bob, e(1, 17))
		require.NoError(t, err)

		assert.Equal(t, e(1, 17).String(), claim.BalanceOf(bob).String())
	})

	t.Run("token metadata derives from the market", func(t *testing.T) {
		assert.Equal(t, "CLM-DAI-WETH", claim.Symbol())
		assert.Equal(t, "OPT-DAI-WETH", option.Symbol())
		assert.Equal(t, ledgerAddr, claim.Ledger())
	})
}
