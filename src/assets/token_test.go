package assets

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseToken(t *testing.T) {
	alice := Address("alice")
	bob := Address("bob")

	t.Run("transfer moves balance", func(t *testing.T) {
		token := NewBaseToken("Dai Stablecoin", "DAI", 18)
		require.NoError(t, token.Mint(alice, big.NewInt(1000)))

		ok, err := token.Transfer(alice, bob, big.NewInt(400))
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, big.NewInt(600), token.BalanceOf(alice))
		assert.Equal(t, big.NewInt(400), token.BalanceOf(bob))
		assert.Equal(t, big.NewInt(1000), token.TotalSupply())
	})

	t.Run("transfer fails on insufficient balance", func(t *testing.T) {
		token := NewBaseToken("Dai Stablecoin", "DAI", 18)
		require.NoError(t, token.Mint(alice, big.NewInt(10)))

		_, err := token.Transfer(alice, bob, big.NewInt(11))
		require.Error(t, err)

		assert.Equal(t, big.NewInt(10), token.BalanceOf(alice))
		assert.Equal(t, "0", token.BalanceOf(bob).String())
	})

	t.Run("burn reduces supply", func(t *testing.T) {
		token := NewBaseToken("Dai Stablecoin", "DAI", 18)
		require.NoError(t, token.Mint(alice, big.NewInt(1000)))
		require.NoError(t, token.Burn(alice, big.NewInt(300)))

		assert.Equal(t, big.NewInt(700), token.BalanceOf(alice))
		assert.Equal(t, big.NewInt(700), token.TotalSupply())
	})

	t.Run("balance of unknown account is zero", func(t *testing.T) {
		token := NewBaseToken("Dai Stablecoin", "DAI", 18)
		assert.Equal(t, "0", token.BalanceOf(Address("nobody")).String())
	})
}

func TestBaseTokenSnapshots(t *testing.T) {
	alice := Address("alice")
	bob := Address("bob")

	t.Run("revert undoes transfers and mints", func(t *testing.T) {
		token := NewBaseToken("Wrapped Ether", "WETH", 18)
		require.NoError(t, token.Mint(alice, big.NewInt(1000)))

		snap := token.Snapshot()

		_, err := token.Transfer(alice, bob, big.NewInt(250))
		require.NoError(t, err)
		require.NoError(t, token.Mint(bob, big.NewInt(99)))

		token.RevertToSnapshot(snap)

		assert.Equal(t, big.NewInt(1000), token.BalanceOf(alice))
		assert.Equal(t, "0", token.BalanceOf(bob).String())
		assert.Equal(t, big.NewInt(1000), token.TotalSupply())
	})

	t.Run("discard keeps committed state", func(t *testing.T) {
		token := NewBaseToken("Wrapped Ether", "WETH", 18)
		require.NoError(t, token.Mint(alice, big.NewInt(1000)))

		snap := token.Snapshot()
		_, err := token.Transfer(alice, bob, big.NewInt(250))
		require.NoError(t, err)
		token.DiscardSnapshot(snap)

		assert.Equal(t, big.NewInt(750), token.BalanceOf(alice))
		assert.Equal(t, big.NewInt(250), token.BalanceOf(bob))
	})

	t.Run("outer revert undoes discarded inner snapshot", func(t *testing.T) {
		token := NewBaseToken("Wrapped Ether", "WETH", 18)
		require.NoError(t, token.Mint(alice, big.NewInt(1000)))

		outer := token.Snapshot()

		inner := token.Snapshot()
		_, err := token.Transfer(alice, bob, big.NewInt(100))
		require.NoError(t, err)
		token.DiscardSnapshot(inner)

		_, err = token.Transfer(alice, bob, big.NewInt(50))
		require.NoError(t, err)

		token.RevertToSnapshot(outer)

		assert.Equal(t, big.NewInt(1000), token.BalanceOf(alice))
		assert.Equal(t, "0", token.BalanceOf(bob).String())
	})

	t.Run("mutations outside a snapshot are not journaled", func(t *testing.T) {
		token := NewBaseToken("Wrapped Ether", "WETH", 18)
		require.NoError(t, token.Mint(alice, big.NewInt(1000)))
		assert.Empty(t, token.journal)
	})
}
