package models

import (
	"math/big"
)

// FlashExerciser is the capability a receiver implements to settle an
// exercise within the same call. The ledger transfers outUnderlyings to the
// receiver optimistically, invokes OnFlashExercise, and only then verifies
// that the option tokens and requiredStrikes have been delivered. No lock
// protects ledger state during the callback window; correctness rests on the
// post-callback balance-delta verification.
type FlashExerciser interface {
	OnFlashExercise(ledger *OptionLedger, outUnderlyings, requiredStrikes *big.Int, data []byte) error
}
