package services

import (
	"fmt"
	"math/big"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/clearhouse/options-ledger/src/assets"
	"github.com/clearhouse/options-ledger/src/clearing/models"
	"github.com/clearhouse/options-ledger/src/eventmodels"
	"github.com/clearhouse/options-ledger/src/eventpubsub"
	"github.com/clearhouse/options-ledger/src/utils"
)

// MarketRegistry deploys exactly one option ledger per market key and holds
// the pause authority over every ledger it created.
type MarketRegistry struct {
	mu      sync.RWMutex
	owner   assets.Address
	clock   models.Clock
	markets map[string]*models.OptionLedger
	order   []string
}

func NewMarketRegistry(owner assets.Address, clock models.Clock) *MarketRegistry {
	if clock == nil {
		clock = models.RealClock{}
	}

	return &MarketRegistry{
		owner:   owner,
		clock:   clock,
		markets: make(map[string]*models.OptionLedger),
	}
}

// CreateMarket deploys a ledger for the key, or returns the existing one.
// The second return value reports whether a new market was created.
func (r *MarketRegistry) CreateMarket(key models.MarketKey) (*models.OptionLedger, bool, error) {
	hash, err := key.Hash()
	if err != nil {
		return nil, false, fmt.Errorf("CreateMarket: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.markets[hash]; ok {
		return existing, false, nil
	}

	ledger, err := models.NewOptionLedger(key, r.owner, r.clock)
	if err != nil {
		return nil, false, fmt.Errorf("CreateMarket: %w", err)
	}

	r.markets[hash] = ledger
	r.order = append(r.order, hash)

	log.WithFields(log.Fields{
		"market": utils.ShortHash(hash, 8),
		"key":    key.String(),
	}).Info("market created")

	eventpubsub.Publish(eventpubsub.MarketCreated, eventmodels.MarketCreatedEvent{
		MarketHash: hash,
		Underlying: key.Underlying.Symbol(),
		Strike:     key.Strike.Symbol(),
		Timestamp:  r.clock.Now(),
	})

	return ledger, true, nil
}

func (r *MarketRegistry) GetMarket(hash string) (*models.OptionLedger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ledger, ok := r.markets[hash]
	return ledger, ok
}

// Markets returns every deployed ledger in creation order.
func (r *MarketRegistry) Markets() []*models.OptionLedger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.OptionLedger, 0, len(r.order))
	for _, hash := range r.order {
		out = append(out, r.markets[hash])
	}

	return out
}

// SetPaused toggles the pause flag on one market. The ledger itself enforces
// that the caller holds the pause authority.
func (r *MarketRegistry) SetPaused(caller assets.Address, hash string, paused bool) error {
	ledger, ok := r.GetMarket(hash)
	if !ok {
		return fmt.Errorf("SetPaused: market %s not found", utils.ShortHash(hash, 8))
	}

	return ledger.SetPaused(caller, paused)
}

// LoadMarketsConfig reads a YAML market definition file.
func LoadMarketsConfig(path string) (*eventmodels.MarketsConfigYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadMarketsConfig: failed to read %s: %w", path, err)
	}

	var cfg eventmodels.MarketsConfigYAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("LoadMarketsConfig: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// BuildTokens constructs a token instance per configured symbol.
func BuildTokens(cfg *eventmodels.MarketsConfigYAML) map[string]assets.Token {
	tokens := make(map[string]assets.Token, len(cfg.Tokens))
	for _, tc := range cfg.Tokens {
		tokens[tc.Symbol] = assets.NewBaseToken(tc.Name, tc.Symbol, tc.Decimals)
	}

	return tokens
}

// CreateMarketsFromConfig deploys every configured market, resolving asset
// symbols through the supplied token set.
func (r *MarketRegistry) CreateMarketsFromConfig(cfg *eventmodels.MarketsConfigYAML, tokens map[string]assets.Token) error {
	for _, mc := range cfg.Markets {
		underlying, ok := tokens[mc.Underlying]
		if !ok {
			return fmt.Errorf("CreateMarketsFromConfig: unknown underlying token %s", mc.Underlying)
		}

		strike, ok := tokens[mc.Strike]
		if !ok {
			return fmt.Errorf("CreateMarketsFromConfig: unknown strike token %s", mc.Strike)
		}

		base, ok := new(big.Int).SetString(mc.Base, 10)
		if !ok {
			return fmt.Errorf("CreateMarketsFromConfig: invalid base %q", mc.Base)
		}

		quote, ok := new(big.Int).SetString(mc.Quote, 10)
		if !ok {
			return fmt.Errorf("CreateMarketsFromConfig: invalid quote %q", mc.Quote)
		}

		key := models.MarketKey{
			Underlying: underlying,
			Strike:     strike,
			Base:       base,
			Quote:      quote,
			Expiry:     mc.Expiry,
		}

		if _, _, err := r.CreateMarket(key); err != nil {
			return fmt.Errorf("CreateMarketsFromConfig: %w", err)
		}
	}

	return nil
}
