package router

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearhouse/options-ledger/src/assets"
	"github.com/clearhouse/options-ledger/src/clearing/models"
	"github.com/clearhouse/options-ledger/src/clearing/services"
	"github.com/clearhouse/options-ledger/src/eventpubsub"
)

const admin = assets.Address("admin")

func e(coeff int64, exp uint) *big.Int {
	v := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
	return v.Mul(v, big.NewInt(coeff))
}

func setupTestServer(t *testing.T) (*mux.Router, *models.OptionLedger) {
	t.Helper()

	eventpubsub.Init()

	dai := assets.NewBaseToken("Dai Stablecoin", "DAI", 18)
	weth := assets.NewBaseToken("Wrapped Ether", "WETH", 18)
	clock := models.NewSimulatedClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	reg := services.NewMarketRegistry(admin, clock)
	rec := services.NewSettlementRecorder()
	require.NoError(t, rec.Start())

	ledger, _, err := reg.CreateMarket(models.MarketKey{
		Underlying: dai,
		Strike:     weth,
		Base:       e(200, 18),
		Quote:      e(1, 18),
		Expiry:     clock.CurrentTime.Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)

	alice := assets.Address("alice")
	require.NoError(t, dai.Mint(alice, e(10, 18)))
	_, err = dai.Transfer(alice, ledger.Address(), e(1, 18))
	require.NoError(t, err)
	_, _, err = ledger.Mint(alice, alice)
	require.NoError(t, err)

	r := mux.NewRouter()
	SetupHandler(r.PathPrefix("/markets").Subrouter(), reg, rec)

	return r, ledger
}

func TestHandleMarkets(t *testing.T) {
	r, ledger := setupTestServer(t)

	req := httptest.NewRequest("GET", "/markets", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var out []MarketDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)

	assert.Equal(t, ledger.Hash(), out[0].Hash)
	assert.Equal(t, "DAI", out[0].Underlying)
	assert.Equal(t, e(1, 18).String(), out[0].UnderlyingCache)
	assert.Equal(t, e(1, 18).String(), out[0].OptionSupply)
}

func TestHandleMarket(t *testing.T) {
	r, ledger := setupTestServer(t)

	t.Run("returns one market", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/markets/"+ledger.Hash(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var out MarketDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, "WETH", out.Strike)
	})

	t.Run("unknown market is a 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/markets/deadbeef", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleHistory(t *testing.T) {
	r, ledger := setupTestServer(t)

	t.Run("json history", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/markets/"+ledger.Hash()+"/history", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var out []services.SettlementRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		require.Len(t, out, 2)
		assert.Equal(t, "mint", out[0].Operation)
	})

	t.Run("csv history", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/markets/"+ledger.Hash()+"/history?format=csv", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "mint")
	})
}

func TestHandlePause(t *testing.T) {
	r, ledger := setupTestServer(t)

	t.Run("owner can pause", func(t *testing.T) {
		body := strings.NewReader(`{"caller": "admin", "paused": true}`)
		req := httptest.NewRequest("POST", "/markets/"+ledger.Hash()+"/pause", body)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, ledger.Paused())
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		body := strings.NewReader(`{"caller": "mallory", "paused": false}`)
		req := httptest.NewRequest("POST", "/markets/"+ledger.Hash()+"/pause", body)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
		assert.True(t, ledger.Paused())
	})
}
