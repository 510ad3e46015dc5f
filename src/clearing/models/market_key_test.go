package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearhouse/options-ledger/src/assets"
)

func TestMarketKey(t *testing.T) {
	dai := assets.NewBaseToken("Dai Stablecoin", "DAI", 18)
	weth := assets.NewBaseToken("Wrapped Ether", "WETH", 18)
	expiry := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	valid := MarketKey{
		Underlying: dai,
		Strike:     weth,
		Base:       e(200, 18),
		Quote:      e(1, 18),
		Expiry:     expiry,
	}

	t.Run("validate accepts a complete key", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("validate rejects missing assets", func(t *testing.T) {
		key := valid
		key.Underlying = nil
		require.Error(t, key.Validate())

		key = valid
		key.Strike = nil
		require.Error(t, key.Validate())
	})

	t.Run("validate rejects a non positive ratio", func(t *testing.T) {
		key := valid
		key.Base = e(0, 0)
		require.Error(t, key.Validate())

		key = valid
		key.Quote = nil
		require.Error(t, key.Validate())
	})

	t.Run("hash is stable for equal keys", func(t *testing.T) {
		h1, err := valid.Hash()
		require.NoError(t, err)

		same := valid
		h2, err := same.Hash()
		require.NoError(t, err)

		assert.Equal(t, h1, h2)
	})

	t.Run("hash differs across parameters", func(t *testing.T) {
		h1, err := valid.Hash()
		require.NoError(t, err)

		other := valid
		other.Expiry = expiry.Add(24 * time.Hour)
		h2, err := other.Hash()
		require.NoError(t, err)

		assert.NotEqual(t, h1, h2)

		other = valid
		other.Base = e(100, 18)
		h3, err := other.Hash()
		require.NoError(t, err)

		assert.NotEqual(t, h1, h3)
	})
}
