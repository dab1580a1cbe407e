package wallet

import "errors"

var (
	ErrAlreadyInitialized   = errors.New("wallet already initialized")
	ErrNotInitialized       = errors.New("wallet not initialized")
	ErrNotFactory           = errors.New("caller is not the factory")
	ErrNotOwner             = errors.New("caller is not the wallet owner")
	ErrArityMismatch        = errors.New("batch arguments length mismatch")
	ErrFeatureNotActive     = errors.New("feature not active")
	ErrInvalidFeatureConfig = errors.New("invalid feature config")
	ErrExternalCallFailed   = errors.New("external call failed")
	ErrProtocolNotAllowed   = errors.New("protocol not allowed")
	ErrChainNotAllowed      = errors.New("chain not allowed")
	ErrStrategyNotFound     = errors.New("strategy not found")
	ErrInvalidThreshold     = errors.New("invalid guardian threshold")
	ErrInvalidGuardian      = errors.New("invalid guardian")
	ErrNotGuardian          = errors.New("caller is not a guardian")
	ErrNoPendingRecovery    = errors.New("no pending recovery")
	ErrTimelockNotMet       = errors.New("recovery timelock not met")
	ErrStakingFailed        = errors.New("staking failed")
	ErrZeroAmount           = errors.New("amount must be positive")
	ErrZeroAddress          = errors.New("zero address")
	ErrUnsupportedCall      = errors.New("unsupported call")
	ErrLedgerUnavailable    = errors.New("factory ledger not reachable")
)
