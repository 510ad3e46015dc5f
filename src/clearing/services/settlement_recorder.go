package services

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/clearhouse/options-ledger/src/eventmodels"
	"github.com/clearhouse/options-ledger/src/eventpubsub"
)

// SettlementRecord is one row of per-market settlement history. Amount
// columns are decimal strings; unused columns stay empty.
type SettlementRecord struct {
	Timestamp   string `csv:"timestamp" json:"timestamp"`
	MarketHash  string `csv:"market_hash" json:"market_hash"`
	Operation   string `csv:"operation" json:"operation"`
	From        string `csv:"from" json:"from"`
	Options     string `csv:"options" json:"options"`
	Claims      string `csv:"claims" json:"claims"`
	Underlyings string `csv:"underlyings" json:"underlyings"`
	Strikes     string `csv:"strikes" json:"strikes"`
}

// SettlementRecorder subscribes to the settlement topics and keeps an
// in-memory history, exportable as CSV.
type SettlementRecorder struct {
	mu      sync.RWMutex
	records []*SettlementRecord
}

func NewSettlementRecorder() *SettlementRecorder {
	return &SettlementRecorder{}
}

// Start registers the recorder on the event bus. Subscriptions are
// synchronous so history order matches settlement order.
func (r *SettlementRecorder) Start() error {
	subscriptions := map[string]interface{}{
		eventpubsub.MintedEvent:       r.onMinted,
		eventpubsub.ExercisedEvent:    r.onExercised,
		eventpubsub.RedeemedEvent:     r.onRedeemed,
		eventpubsub.ClosedEvent:       r.onClosed,
		eventpubsub.CacheUpdatedEvent: r.onCacheUpdated,
	}

	for topic, handler := range subscriptions {
		if err := eventpubsub.Subscribe(topic, handler); err != nil {
			return fmt.Errorf("SettlementRecorder.Start: failed to subscribe to %s: %w", topic, err)
		}
	}

	return nil
}

func (r *SettlementRecorder) onMinted(ev eventmodels.MintedEvent) {
	r.append(&SettlementRecord{
		Timestamp:  ev.Timestamp.Format(time.RFC3339),
		MarketHash: ev.MarketHash,
		Operation:  "mint",
		From:       string(ev.From),
		Options:    ev.IssuedOptions.String(),
		Claims:     ev.IssuedClaims.String(),
	})
}

func (r *SettlementRecorder) onExercised(ev eventmodels.ExercisedEvent) {
	operation := "exercise"
	if ev.Flash {
		operation = "flash_exercise"
	}

	r.append(&SettlementRecord{
		Timestamp:   ev.Timestamp.Format(time.RFC3339),
		MarketHash:  ev.MarketHash,
		Operation:   operation,
		From:        string(ev.From),
		Underlyings: ev.OutUnderlyings.String(),
		Strikes:     ev.StrikesPaid.String(),
	})
}

func (r *SettlementRecorder) onRedeemed(ev eventmodels.RedeemedEvent) {
	r.append(&SettlementRecord{
		Timestamp:  ev.Timestamp.Format(time.RFC3339),
		MarketHash: ev.MarketHash,
		Operation:  "redeem",
		From:       string(ev.From),
		Claims:     ev.InClaims.String(),
	})
}

func (r *SettlementRecorder) onClosed(ev eventmodels.ClosedEvent) {
	r.append(&SettlementRecord{
		Timestamp:   ev.Timestamp.Format(time.RFC3339),
		MarketHash:  ev.MarketHash,
		Operation:   "close",
		From:        string(ev.From),
		Underlyings: ev.OutUnderlyings.String(),
	})
}

func (r *SettlementRecorder) onCacheUpdated(ev eventmodels.CacheUpdatedEvent) {
	r.append(&SettlementRecord{
		Timestamp:   ev.Timestamp.Format(time.RFC3339),
		MarketHash:  ev.MarketHash,
		Operation:   "cache_updated",
		Underlyings: ev.UnderlyingCache.String(),
		Strikes:     ev.StrikeCache.String(),
	})
}

func (r *SettlementRecorder) append(record *SettlementRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, record)
}

// Records returns the history for one market, or everything when marketHash
// is empty.
func (r *SettlementRecorder) Records(marketHash string) []*SettlementRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*SettlementRecord, 0, len(r.records))
	for _, record := range r.records {
		if marketHash == "" || record.MarketHash == marketHash {
			out = append(out, record)
		}
	}

	return out
}

func (r *SettlementRecorder) WriteCSV(w io.Writer, marketHash string) error {
	records := r.Records(marketHash)
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("SettlementRecorder.WriteCSV: %w", err)
	}

	return nil
}
