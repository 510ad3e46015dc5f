package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/clearhouse/options-ledger/src/assets"
	"github.com/clearhouse/options-ledger/src/clearing/models"
	"github.com/clearhouse/options-ledger/src/clearing/services"
)

var registry *services.MarketRegistry
var recorder *services.SettlementRecorder

type MarketDTO struct {
	Hash            string    `json:"hash"`
	Underlying      string    `json:"underlying"`
	Strike          string    `json:"strike"`
	Base            string    `json:"base"`
	Quote           string    `json:"quote"`
	Expiry          time.Time `json:"expiry"`
	UnderlyingCache string    `json:"underlying_cache"`
	StrikeCache     string    `json:"strike_cache"`
	OptionSupply    string    `json:"option_supply"`
	ClaimSupply     string    `json:"claim_supply"`
	Paused          bool      `json:"paused"`
	Expired         bool      `json:"expired"`
}

func newMarketDTO(ledger *models.OptionLedger) MarketDTO {
	key := ledger.Key()

	return MarketDTO{
		Hash:            ledger.Hash(),
		Underlying:      key.Underlying.Symbol(),
		Strike:          key.Strike.Symbol(),
		Base:            key.Base.String(),
		Quote:           key.Quote.String(),
		Expiry:          key.Expiry,
		UnderlyingCache: ledger.UnderlyingCache().String(),
		StrikeCache:     ledger.StrikeCache().String(),
		OptionSupply:    ledger.OptionToken().TotalSupply().String(),
		ClaimSupply:     ledger.ClaimToken().TotalSupply().String(),
		Paused:          ledger.Paused(),
		Expired:         ledger.Expired(),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("writeJSON: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func handleMarkets(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(404)
		return
	}

	markets := registry.Markets()
	out := make([]MarketDTO, 0, len(markets))
	for _, ledger := range markets {
		out = append(out, newMarketDTO(ledger))
	}

	writeJSON(w, http.StatusOK, out)
}

func handleMarket(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(404)
		return
	}

	vars := mux.Vars(r)
	ledger, ok := registry.GetMarket(vars["hash"])
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("market not found"))
		return
	}

	writeJSON(w, http.StatusOK, newMarketDTO(ledger))
}

func handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(404)
		return
	}

	vars := mux.Vars(r)
	if _, ok := registry.GetMarket(vars["hash"]); !ok {
		writeError(w, http.StatusNotFound, errors.New("market not found"))
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := recorder.WriteCSV(w, vars["hash"]); err != nil {
			log.Errorf("handleHistory: %v", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, recorder.Records(vars["hash"]))
}

type pauseRequest struct {
	Caller string `json:"caller"`
	Paused bool   `json:"paused"`
}

func handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(404)
		return
	}

	var req pauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	vars := mux.Vars(r)
	if err := registry.SetPaused(assets.Address(req.Caller), vars["hash"], req.Paused); err != nil {
		if errors.Is(err, models.ErrNotOwner) {
			writeError(w, http.StatusForbidden, err)
		} else {
			writeError(w, http.StatusNotFound, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"paused": req.Paused})
}

// SetupHandler mounts the market API on the supplied router.
func SetupHandler(router *mux.Router, reg *services.MarketRegistry, rec *services.SettlementRecorder) {
	registry = reg
	recorder = rec

	router.HandleFunc("", handleMarkets)
	router.HandleFunc("/{hash}", handleMarket)
	router.HandleFunc("/{hash}/history", handleHistory)
	router.HandleFunc("/{hash}/pause", handlePause)
}
