package models

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/clearhouse/options-ledger/src/assets"
	"github.com/clearhouse/options-ledger/src/eventmodels"
	"github.com/clearhouse/options-ledger/src/eventpubsub"
	"github.com/clearhouse/options-ledger/src/utils"
)

var feeDivisor = big.NewInt(1000)

// OptionLedger is the per-market settlement state machine. Callers push
// collateral or claim tokens to the ledger's address first, then invoke a
// settlement operation; the ledger treats "current balance minus cache" as
// the sole truth of how much was received in the current call.
//
// Every operation is atomic: token snapshots are taken before the first
// mutation and reverted together with the caches on any failure, so no
// intermediate state is ever observable after an error.
type OptionLedger struct {
	address assets.Address
	owner   assets.Address
	key     MarketKey
	hash    string

	optionToken *OptionToken
	claimToken  *ClaimToken

	underlyingCache *big.Int
	strikeCache     *big.Int
	paused          bool

	clock Clock
	agent assets.TransferAgent
}

func NewOptionLedger(key MarketKey, owner assets.Address, clock Clock) (*OptionLedger, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("NewOptionLedger: %w", err)
	}

	hash, err := key.Hash()
	if err != nil {
		return nil, fmt.Errorf("NewOptionLedger: %w", err)
	}

	if clock == nil {
		clock = RealClock{}
	}

	address := assets.Address(fmt.Sprintf("ledger-%s", uuid.NewString()))

	return &OptionLedger{
		address:         address,
		owner:           owner,
		key:             key,
		hash:            hash,
		optionToken:     NewOptionToken(key, address),
		claimToken:      NewClaimToken(key, address),
		underlyingCache: new(big.Int),
		strikeCache:     new(big.Int),
		clock:           clock,
	}, nil
}

// Mint issues option and claim tokens against the underlying collateral the
// caller has already pushed to the ledger's address.
func (l *OptionLedger) Mint(caller, receiver assets.Address) (*big.Int, *big.Int, error) {
	deltaU := l.agent.ReceivedSince(l.key.Underlying, l.address, l.underlyingCache)
	if deltaU.Sign() == 0 {
		return nil, nil, ErrZeroAmount
	}

	if l.Expired() {
		return nil, nil, ErrExpired
	}

	if l.paused {
		return nil, nil, ErrPaused
	}

	issuedOptions := new(big.Int).Set(deltaU)
	issuedClaims := l.strikeAmount(deltaU)

	snap := l.snapshot()

	if err := l.optionToken.Mint(l.address, receiver, issuedOptions); err != nil {
		l.revert(snap)
		return nil, nil, fmt.Errorf("Mint: failed to issue options: %w", err)
	}

	if err := l.claimToken.Mint(l.address, receiver, issuedClaims); err != nil {
		l.revert(snap)
		return nil, nil, fmt.Errorf("Mint: failed to issue claims: %w", err)
	}

	l.underlyingCache.Add(l.underlyingCache, deltaU)
	l.commit(snap)

	l.logger().WithFields(log.Fields{
		"issuedOptions": issuedOptions.String(),
		"issuedClaims":  issuedClaims.String(),
	}).Debug("minted")

	eventpubsub.Publish(eventpubsub.MintedEvent, eventmodels.MintedEvent{
		MarketHash:    l.hash,
		From:          caller,
		IssuedOptions: new(big.Int).Set(issuedOptions),
		IssuedClaims:  new(big.Int).Set(issuedClaims),
		Timestamp:     l.clock.Now(),
	})
	l.publishCacheUpdate()

	return issuedOptions, issuedClaims, nil
}

// Exercise redeems outUnderlyings worth of locked collateral against option
// tokens plus strike payment. With a nil flash callback the caller must have
// delivered both before the call; with a callback the underlying is released
// optimistically first and the deliveries are verified after the callback
// returns.
func (l *OptionLedger) Exercise(caller, receiver assets.Address, outUnderlyings *big.Int, flash FlashExerciser, flashData []byte) (*big.Int, error) {
	if outUnderlyings == nil || outUnderlyings.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	if l.Expired() {
		return nil, ErrExpired
	}

	if l.paused {
		return nil, ErrPaused
	}

	if l.underlyingCache.Cmp(outUnderlyings) < 0 {
		return nil, ErrInsufficientUnderlyingCache
	}

	out := new(big.Int).Set(outUnderlyings)
	required := l.requiredStrikes(out)

	snap := l.snapshot()

	if flash != nil {
		if _, err := l.agent.Send(l.key.Underlying, l.address, receiver, out); err != nil {
			l.revert(snap)
			return nil, fmt.Errorf("Exercise: optimistic transfer failed: %w", err)
		}

		if err := flash.OnFlashExercise(l, new(big.Int).Set(out), new(big.Int).Set(required), flashData); err != nil {
			l.revert(snap)
			return nil, fmt.Errorf("Exercise: flash callback failed: %w", err)
		}
	}

	optionsDelivered := l.optionToken.BalanceOf(l.address)
	if optionsDelivered.Cmp(out) < 0 {
		l.revert(snap)
		return nil, ErrInsufficientOptionsDelivered
	}

	strikesDelivered := l.agent.ReceivedSince(l.key.Strike, l.address, l.strikeCache)
	if strikesDelivered.Cmp(required) < 0 {
		l.revert(snap)
		return nil, ErrInsufficientStrikeDelivered
	}

	if err := l.optionToken.Burn(l.address, l.address, out); err != nil {
		l.revert(snap)
		return nil, fmt.Errorf("Exercise: failed to burn options: %w", err)
	}

	if flash == nil {
		if _, err := l.agent.Send(l.key.Underlying, l.address, receiver, out); err != nil {
			l.revert(snap)
			return nil, fmt.Errorf("Exercise: failed to release underlying: %w", err)
		}
	}

	l.underlyingCache.Sub(l.underlyingCache, out)
	l.strikeCache.Add(l.strikeCache, required)
	l.commit(snap)

	l.logger().WithFields(log.Fields{
		"outUnderlyings": out.String(),
		"strikesPaid":    required.String(),
		"flash":          flash != nil,
	}).Debug("exercised")

	eventpubsub.Publish(eventpubsub.ExercisedEvent, eventmodels.ExercisedEvent{
		MarketHash:     l.hash,
		From:           caller,
		OutUnderlyings: new(big.Int).Set(out),
		StrikesPaid:    new(big.Int).Set(required),
		Flash:          flash != nil,
		Timestamp:      l.clock.Now(),
	})
	l.publishCacheUpdate()

	return new(big.Int).Set(required), nil
}

// Redeem burns the claim tokens delivered to the ledger and pays out the
// same amount of strike asset. Callable in every market state.
func (l *OptionLedger) Redeem(caller, receiver assets.Address) (*big.Int, error) {
	deltaR := l.claimToken.BalanceOf(l.address)
	if deltaR.Sign() == 0 {
		return nil, ErrZeroAmount
	}

	if l.strikeCache.Cmp(deltaR) < 0 {
		return nil, ErrInsufficientStrikeCache
	}

	snap := l.snapshot()

	if err := l.claimToken.Burn(l.address, l.address, deltaR); err != nil {
		l.revert(snap)
		return nil, fmt.Errorf("Redeem: failed to burn claims: %w", err)
	}

	if _, err := l.agent.Send(l.key.Strike, l.address, receiver, deltaR); err != nil {
		l.revert(snap)
		return nil, fmt.Errorf("Redeem: failed to release strike assets: %w", err)
	}

	l.strikeCache.Sub(l.strikeCache, deltaR)
	l.commit(snap)

	l.logger().WithFields(log.Fields{
		"inClaims": deltaR.String(),
	}).Debug("redeemed")

	eventpubsub.Publish(eventpubsub.RedeemedEvent, eventmodels.RedeemedEvent{
		MarketHash: l.hash,
		From:       caller,
		InClaims:   new(big.Int).Set(deltaR),
		Timestamp:  l.clock.Now(),
	})
	l.publishCacheUpdate()

	return deltaR, nil
}

// Close unwinds a position. Before expiry the caller must deliver option
// tokens together with the proportional claim tokens; after expiry claim
// tokens alone entitle their holder to a pro-rata share of both remaining
// pools.
func (l *OptionLedger) Close(caller, receiver assets.Address) (*big.Int, error) {
	if l.Expired() {
		return l.closeExpired(caller, receiver)
	}

	deltaR := l.claimToken.BalanceOf(l.address)
	if deltaR.Sign() == 0 {
		return nil, ErrZeroAmount
	}

	outU := l.underlyingAmount(deltaR)
	if outU.Sign() == 0 {
		return nil, ErrZeroAmount
	}

	deltaO := l.optionToken.BalanceOf(l.address)
	if deltaO.Cmp(outU) < 0 {
		return nil, ErrInsufficientOptionsDelivered
	}

	if l.underlyingCache.Cmp(outU) < 0 {
		return nil, ErrInsufficientUnderlyingCache
	}

	snap := l.snapshot()

	if err := l.optionToken.Burn(l.address, l.address, deltaO); err != nil {
		l.revert(snap)
		return nil, fmt.Errorf("Close: failed to burn options: %w", err)
	}

	if err := l.claimToken.Burn(l.address, l.address, deltaR); err != nil {
		l.revert(snap)
		return nil, fmt.Errorf("Close: failed to burn claims: %w", err)
	}

	if _, err := l.agent.Send(l.key.Underlying, l.address, receiver, outU); err != nil {
		l.revert(snap)
		return nil, fmt.Errorf("Close: failed to release underlying: %w", err)
	}

	l.underlyingCache.Sub(l.underlyingCache, outU)
	l.commit(snap)

	l.logger().WithFields(log.Fields{
		"outUnderlyings": outU.String(),
	}).Debug("closed")

	eventpubsub.Publish(eventpubsub.ClosedEvent, eventmodels.ClosedEvent{
		MarketHash:     l.hash,
		From:           caller,
		OutUnderlyings: new(big.Int).Set(outU),
		Timestamp:      l.clock.Now(),
	})
	l.publishCacheUpdate()

	return outU, nil
}

// closeExpired releases the claim holder's pro-rata share of both pools.
// Option tokens are worthless at this point; any delivered are burned.
func (l *OptionLedger) closeExpired(caller, receiver assets.Address) (*big.Int, error) {
	deltaR := l.claimToken.BalanceOf(l.address)
	if deltaR.Sign() == 0 {
		return nil, ErrZeroAmount
	}

	// supply still includes the delivered claims
	supply := l.claimToken.TotalSupply()

	outU := new(big.Int).Mul(l.underlyingCache, deltaR)
	outU.Quo(outU, supply)

	outS := new(big.Int).Mul(l.strikeCache, deltaR)
	outS.Quo(outS, supply)

	snap := l.snapshot()

	if deltaO := l.optionToken.BalanceOf(l.address); deltaO.Sign() > 0 {
		if err := l.optionToken.Burn(l.address, l.address, deltaO); err != nil {
			l.revert(snap)
			return nil, fmt.Errorf("Close: failed to burn options: %w", err)
		}
	}

	if err := l.claimToken.Burn(l.address, l.address, deltaR); err != nil {
		l.revert(snap)
		return nil, fmt.Errorf("Close: failed to burn claims: %w", err)
	}

	if outU.Sign() > 0 {
		if _, err := l.agent.Send(l.key.Underlying, l.address, receiver, outU); err != nil {
			l.revert(snap)
			return nil, fmt.Errorf("Close: failed to release underlying: %w", err)
		}
	}

	if outS.Sign() > 0 {
		if _, err := l.agent.Send(l.key.Strike, l.address, receiver, outS); err != nil {
			l.revert(snap)
			return nil, fmt.Errorf("Close: failed to release strike assets: %w", err)
		}
	}

	l.underlyingCache.Sub(l.underlyingCache, outU)
	l.strikeCache.Sub(l.strikeCache, outS)
	l.commit(snap)

	l.logger().WithFields(log.Fields{
		"outUnderlyings": outU.String(),
		"outStrikes":     outS.String(),
	}).Debug("closed after expiry")

	eventpubsub.Publish(eventpubsub.ClosedEvent, eventmodels.ClosedEvent{
		MarketHash:     l.hash,
		From:           caller,
		OutUnderlyings: new(big.Int).Set(outU),
		Timestamp:      l.clock.Now(),
	})
	l.publishCacheUpdate()

	return outU, nil
}

// Reconcile resynchronizes both caches to the ledger's actual balances, in
// either direction.
func (l *OptionLedger) Reconcile(caller assets.Address) error {
	l.underlyingCache = l.key.Underlying.BalanceOf(l.address)
	l.strikeCache = l.key.Strike.BalanceOf(l.address)

	l.logger().Debug("reconciled caches")
	l.publishCacheUpdate()

	return nil
}

// Sweep absorbs surplus tokens that arrived outside the settlement flow. It
// only ever raises a cache up to the actual balance, never lowers it.
func (l *OptionLedger) Sweep(caller assets.Address) error {
	if bal := l.key.Underlying.BalanceOf(l.address); bal.Cmp(l.underlyingCache) > 0 {
		l.underlyingCache = bal
	}

	if bal := l.key.Strike.BalanceOf(l.address); bal.Cmp(l.strikeCache) > 0 {
		l.strikeCache = bal
	}

	l.logger().Debug("swept surplus into caches")
	l.publishCacheUpdate()

	return nil
}

func (l *OptionLedger) SetPaused(caller assets.Address, paused bool) error {
	if caller != l.owner {
		return ErrNotOwner
	}

	l.paused = paused
	l.logger().WithFields(log.Fields{
		"paused": paused,
	}).Info("pause flag updated")

	return nil
}

func (l *OptionLedger) Address() assets.Address {
	return l.address
}

func (l *OptionLedger) Owner() assets.Address {
	return l.owner
}

func (l *OptionLedger) Key() MarketKey {
	return l.key
}

func (l *OptionLedger) Hash() string {
	return l.hash
}

func (l *OptionLedger) OptionToken() *OptionToken {
	return l.optionToken
}

func (l *OptionLedger) ClaimToken() *ClaimToken {
	return l.claimToken
}

func (l *OptionLedger) UnderlyingCache() *big.Int {
	return new(big.Int).Set(l.underlyingCache)
}

func (l *OptionLedger) StrikeCache() *big.Int {
	return new(big.Int).Set(l.strikeCache)
}

func (l *OptionLedger) Paused() bool {
	return l.paused
}

func (l *OptionLedger) Expired() bool {
	now := l.clock.Now()
	return now.Equal(l.key.Expiry) || now.After(l.key.Expiry)
}

// strikeAmount converts an underlying amount into strike units, flooring.
func (l *OptionLedger) strikeAmount(underlying *big.Int) *big.Int {
	n := new(big.Int).Mul(underlying, l.key.Quote)
	return n.Quo(n, l.key.Base)
}

// underlyingAmount converts a claim amount into underlying units, flooring.
func (l *OptionLedger) underlyingAmount(claims *big.Int) *big.Int {
	n := new(big.Int).Mul(claims, l.key.Base)
	return n.Quo(n, l.key.Quote)
}

// requiredStrikes is the strike payment for an exercise: the converted
// amount plus a 0.1% fee. The fee is computed on the floored per-mille
// underlying amount, not by flooring the final strike amount; chunked
// exercises therefore never pay less than a single call.
func (l *OptionLedger) requiredStrikes(outUnderlyings *big.Int) *big.Int {
	perMille := new(big.Int).Quo(outUnderlyings, feeDivisor)
	fee := l.strikeAmount(perMille)

	return new(big.Int).Add(l.strikeAmount(outUnderlyings), fee)
}

type ledgerSnapshot struct {
	underlyingCache *big.Int
	strikeCache     *big.Int
	underlying      int
	strike          int
	options         int
	claims          int
}

func (l *OptionLedger) snapshot() ledgerSnapshot {
	return ledgerSnapshot{
		underlyingCache: new(big.Int).Set(l.underlyingCache),
		strikeCache:     new(big.Int).Set(l.strikeCache),
		underlying:      l.key.Underlying.Snapshot(),
		strike:          l.key.Strike.Snapshot(),
		options:         l.optionToken.Snapshot(),
		claims:          l.claimToken.Snapshot(),
	}
}

func (l *OptionLedger) revert(snap ledgerSnapshot) {
	l.claimToken.RevertToSnapshot(snap.claims)
	l.optionToken.RevertToSnapshot(snap.options)
	l.key.Strike.RevertToSnapshot(snap.strike)
	l.key.Underlying.RevertToSnapshot(snap.underlying)
	l.underlyingCache = snap.underlyingCache
	l.strikeCache = snap.strikeCache
}

func (l *OptionLedger) commit(snap ledgerSnapshot) {
	l.claimToken.DiscardSnapshot(snap.claims)
	l.optionToken.DiscardSnapshot(snap.options)
	l.key.Strike.DiscardSnapshot(snap.strike)
	l.key.Underlying.DiscardSnapshot(snap.underlying)
}

func (l *OptionLedger) publishCacheUpdate() {
	eventpubsub.Publish(eventpubsub.CacheUpdatedEvent, eventmodels.CacheUpdatedEvent{
		MarketHash:      l.hash,
		UnderlyingCache: l.UnderlyingCache(),
		StrikeCache:     l.StrikeCache(),
		Timestamp:       l.clock.Now(),
	})
}

func (l *OptionLedger) logger() *log.Entry {
	return log.WithFields(log.Fields{
		"market": utils.ShortHash(l.hash, 8),
	})
}
