package tracing

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type (
	// PoolChangeHook is called when the reward pool balance changes.
	PoolChangeHook = func(prev, next *uint256.Int, reason PoolChangeReason)

	// ScoreChangeHook is called when a wallet's contribution score changes.
	ScoreChangeHook = func(wallet common.Address, prev, next *uint256.Int, reason ScoreChangeReason)

	// ContributionHook is called for every accepted contribution, rewarded
	// or not.
	ContributionHook = func(wallet common.Address, dataHash common.Hash, dataType uint8, reward *uint256.Int)
)

// Hooks observe ledger changes. Hooks fire as the change is made; a change
// that is later reverted with its transaction has still been reported.
type Hooks struct {
	OnPoolChange   PoolChangeHook
	OnScoreChange  ScoreChangeHook
	OnContribution ContributionHook
}
