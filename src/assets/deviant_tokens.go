package assets

import (
	"math/big"
)

// Deviant token implementations used to harden the transfer path against
// non-conforming assets. They live in the package proper (not a _test file)
// so downstream packages can exercise their own accounting against them.

// FeeOnTransferToken skims a fee, in basis points, from every transfer. The
// receiver gets less than the nominal amount while the call still reports
// success for the full amount.
type FeeOnTransferToken struct {
	*BaseToken
	FeeBps int64
}

func NewFeeOnTransferToken(name, symbol string, decimals uint8, feeBps int64) *FeeOnTransferToken {
	return &FeeOnTransferToken{
		BaseToken: NewBaseToken(name, symbol, decimals),
		FeeBps:    feeBps,
	}
}

func (t *FeeOnTransferToken) Transfer(from, to Address, amount *big.Int) (bool, error) {
	fee := new(big.Int).Mul(amount, big.NewInt(t.FeeBps))
	fee.Quo(fee, big.NewInt(10000))

	sent := new(big.Int).Sub(amount, fee)
	if _, err := t.BaseToken.Transfer(from, to, sent); err != nil {
		return false, err
	}

	// burn the fee so conservation still holds for the remaining holders
	if fee.Sign() > 0 {
		if err := t.BaseToken.Burn(from, fee); err != nil {
			return false, err
		}
	}

	return true, nil
}

// FalseReturnToken moves the full amount but reports failure, the mirror
// image of tokens that return no value at all.
type FalseReturnToken struct {
	*BaseToken
}

func NewFalseReturnToken(name, symbol string, decimals uint8) *FalseReturnToken {
	return &FalseReturnToken{BaseToken: NewBaseToken(name, symbol, decimals)}
}

func (t *FalseReturnToken) Transfer(from, to Address, amount *big.Int) (bool, error) {
	if _, err := t.BaseToken.Transfer(from, to, amount); err != nil {
		return false, err
	}

	return false, nil
}

// PhantomToken reports success without moving anything.
type PhantomToken struct {
	*BaseToken
}

func NewPhantomToken(name, symbol string, decimals uint8) *PhantomToken {
	return &PhantomToken{BaseToken: NewBaseToken(name, symbol, decimals)}
}

func (t *PhantomToken) Transfer(from, to Address, amount *big.Int) (bool, error) {
	return true, nil
}
