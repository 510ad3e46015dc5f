package assets

import (
	"fmt"
	"math/big"
)

// Address identifies a token holder. Ledger instances, user accounts and
// contracts all share the same address space.
type Address string

const ZeroAddress Address = ""

// Token is the fungible asset surface the clearing layer operates on. A Token
// implementation is untrusted: its Transfer return values may lie, it may skim
// fees, or it may move nothing at all. Snapshot/RevertToSnapshot stand in for
// the host transaction rollback: every balance mutation made while at least
// one snapshot is open can be undone.
type Token interface {
	Name() string
	Symbol() string
	Decimals() uint8
	TotalSupply() *big.Int
	BalanceOf(owner Address) *big.Int
	Transfer(from, to Address, amount *big.Int) (bool, error)
	Snapshot() int
	RevertToSnapshot(id int)
	DiscardSnapshot(id int)
}

type journalEntry struct {
	owner      Address
	prevBal    *big.Int
	prevSupply *big.Int
}

// BaseToken is a conforming in-memory fungible token: balance map plus total
// supply, with an undo-log journal backing snapshots. Mutations are only
// journaled while a snapshot is open, so tokens used outside a settlement
// operation carry no journal overhead.
type BaseToken struct {
	name          string
	symbol        string
	decimals      uint8
	supply        *big.Int
	balances      map[Address]*big.Int
	journal       []journalEntry
	snapshotDepth int
}

func NewBaseToken(name, symbol string, decimals uint8) *BaseToken {
	return &BaseToken{
		name:     name,
		symbol:   symbol,
		decimals: decimals,
		supply:   new(big.Int),
		balances: make(map[Address]*big.Int),
	}
}

func (t *BaseToken) Name() string {
	return t.name
}

func (t *BaseToken) Symbol() string {
	return t.symbol
}

func (t *BaseToken) Decimals() uint8 {
	return t.decimals
}

func (t *BaseToken) TotalSupply() *big.Int {
	return new(big.Int).Set(t.supply)
}

func (t *BaseToken) BalanceOf(owner Address) *big.Int {
	if bal, ok := t.balances[owner]; ok {
		return new(big.Int).Set(bal)
	}

	return new(big.Int)
}

func (t *BaseToken) Transfer(from, to Address, amount *big.Int) (bool, error) {
	if amount == nil || amount.Sign() < 0 {
		return false, fmt.Errorf("Transfer: invalid amount")
	}

	fromBal := t.balanceRef(from)
	if fromBal.Cmp(amount) < 0 {
		return false, fmt.Errorf("Transfer: insufficient %s balance: have %s, need %s", t.symbol, fromBal.String(), amount.String())
	}

	t.recordBalance(from)
	t.recordBalance(to)

	fromBal.Sub(fromBal, amount)
	toBal := t.balanceRef(to)
	toBal.Add(toBal, amount)

	return true, nil
}

// Mint credits new units to an account. BaseToken places no restriction on
// the caller; tokens bound to a ledger wrap this with their own gating.
func (t *BaseToken) Mint(to Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("Mint: invalid amount")
	}

	t.recordBalance(to)
	t.recordSupply()

	toBal := t.balanceRef(to)
	toBal.Add(toBal, amount)
	t.supply.Add(t.supply, amount)

	return nil
}

func (t *BaseToken) Burn(from Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("Burn: invalid amount")
	}

	fromBal := t.balanceRef(from)
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("Burn: insufficient %s balance: have %s, need %s", t.symbol, fromBal.String(), amount.String())
	}

	t.recordBalance(from)
	t.recordSupply()

	fromBal.Sub(fromBal, amount)
	t.supply.Sub(t.supply, amount)

	return nil
}

// Snapshot opens an undo scope and returns a revert point. Snapshots nest:
// reverting an outer snapshot also undoes mutations made under inner
// snapshots that were discarded after committing.
func (t *BaseToken) Snapshot() int {
	t.snapshotDepth++
	return len(t.journal)
}

func (t *BaseToken) RevertToSnapshot(id int) {
	for i := len(t.journal) - 1; i >= id; i-- {
		entry := t.journal[i]
		if entry.prevSupply != nil {
			t.supply.Set(entry.prevSupply)
		} else if entry.prevBal.Sign() == 0 {
			delete(t.balances, entry.owner)
		} else {
			t.balances[entry.owner] = entry.prevBal
		}
	}

	t.journal = t.journal[:id]
	t.closeSnapshot()
}

func (t *BaseToken) DiscardSnapshot(id int) {
	t.closeSnapshot()
}

func (t *BaseToken) closeSnapshot() {
	t.snapshotDepth--
	if t.snapshotDepth <= 0 {
		t.snapshotDepth = 0
		t.journal = t.journal[:0]
	}
}

func (t *BaseToken) balanceRef(owner Address) *big.Int {
	bal, ok := t.balances[owner]
	if !ok {
		bal = new(big.Int)
		t.balances[owner] = bal
	}

	return bal
}

func (t *BaseToken) recordBalance(owner Address) {
	if t.snapshotDepth == 0 {
		return
	}

	t.journal = append(t.journal, journalEntry{
		owner:   owner,
		prevBal: t.BalanceOf(owner),
	})
}

func (t *BaseToken) recordSupply() {
	if t.snapshotDepth == 0 {
		return
	}

	t.journal = append(t.journal, journalEntry{
		prevSupply: new(big.Int).Set(t.supply),
	})
}
