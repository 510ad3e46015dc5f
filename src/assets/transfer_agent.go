package assets

import (
	"fmt"
	"math/big"
)

// TransferAgent mediates every ledger-initiated token movement. It never
// trusts a Transfer return value: the amount that actually moved is measured
// as the destination's balance delta, so fee-on-transfer and misreporting
// tokens cannot corrupt downstream cache accounting.
type TransferAgent struct{}

// Send moves amount from -> to and returns the amount that actually arrived.
func (TransferAgent) Send(token Token, from, to Address, amount *big.Int) (*big.Int, error) {
	before := token.BalanceOf(to)

	if _, err := token.Transfer(from, to, amount); err != nil {
		return nil, fmt.Errorf("Send: transfer of %s failed: %w", token.Symbol(), err)
	}

	received := new(big.Int).Sub(token.BalanceOf(to), before)
	if received.Sign() < 0 {
		return nil, fmt.Errorf("Send: %s balance of receiver decreased during transfer", token.Symbol())
	}

	return received, nil
}

// ReceivedSince reports how much of token has arrived at owner beyond the
// last checkpointed balance. Negative drift is reported as zero.
func (TransferAgent) ReceivedSince(token Token, owner Address, checkpoint *big.Int) *big.Int {
	delta := new(big.Int).Sub(token.BalanceOf(owner), checkpoint)
	if delta.Sign() < 0 {
		return new(big.Int)
	}

	return delta
}
