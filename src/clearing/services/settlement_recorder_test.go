package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearhouse/options-ledger/src/assets"
	"github.com/clearhouse/options-ledger/src/clearing/models"
	"github.com/clearhouse/options-ledger/src/eventpubsub"
)

func TestSettlementRecorder(t *testing.T) {
	eventpubsub.Init()

	recorder := NewSettlementRecorder()
	require.NoError(t, recorder.Start())

	dai := assets.NewBaseToken("Dai Stablecoin", "DAI", 18)
	weth := assets.NewBaseToken("Wrapped Ether", "WETH", 18)
	clock := models.NewSimulatedClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	key := testKey(dai, weth)
	key.Expiry = clock.CurrentTime.Add(30 * 24 * time.Hour)

	registry := NewMarketRegistry(admin, clock)
	ledger, _, err := registry.CreateMarket(key)
	require.NoError(t, err)

	require.NoError(t, dai.Mint(alice, e(10, 18)))
	_, err = dai.Transfer(alice, ledger.Address(), e(1, 18))
	require.NoError(t, err)

	_, _, err = ledger.Mint(alice, alice)
	require.NoError(t, err)

	t.Run("captures settlement and cache records in order", func(t *testing.T) {
		records := recorder.Records(ledger.Hash())
		require.Len(t, records, 2)

		assert.Equal(t, "mint", records[0].Operation)
		assert.Equal(t, string(alice), records[0].From)
		assert.Equal(t, e(1, 18).String(), records[0].Options)
		assert.Equal(t, e(5, 15).String(), records[0].Claims)

		assert.Equal(t, "cache_updated", records[1].Operation)
		assert.Equal(t, e(1, 18).String(), records[1].Underlyings)
		assert.Equal(t, "0", records[1].Strikes)
	})

	t.Run("filters by market hash", func(t *testing.T) {
		assert.Empty(t, recorder.Records("unknown"))
		assert.Len(t, recorder.Records(""), 2)
	})

	t.Run("exports csv", func(t *testing.T) {
		var sb strings.Builder
		require.NoError(t, recorder.WriteCSV(&sb, ledger.Hash()))

		out := sb.String()
		assert.Contains(t, out, "timestamp,market_hash,operation,from,options,claims,underlyings,strikes")
		assert.Contains(t, out, "mint")
		assert.Contains(t, out, e(5, 15).String())
	})
}
