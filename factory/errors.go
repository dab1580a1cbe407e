package factory

import "errors"

var (
	ErrDuplicateWallet     = errors.New("account already owns a wallet")
	ErrArityMismatch       = errors.New("features and configs length mismatch")
	ErrUnknownFeature      = errors.New("unknown feature")
	ErrFeatureDisabled     = errors.New("feature is not available")
	ErrInvalidFeatureName  = errors.New("invalid feature name")
	ErrNoWallet            = errors.New("no wallet found")
	ErrInactiveWallet      = errors.New("wallet is not active")
	ErrAlreadyInactive     = errors.New("wallet already inactive")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotOwner            = errors.New("caller is not the factory owner")
	ErrInsufficientPool    = errors.New("insufficient reward pool balance")
	ErrZeroAmount          = errors.New("amount must be positive")
	ErrNilTemplate         = errors.New("nil implementation template")
	ErrZeroAddress         = errors.New("zero address")
	ErrInstanceUnavailable = errors.New("wallet instance not reachable")
)
