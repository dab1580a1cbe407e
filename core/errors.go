package core

import "errors"

var (
	// ErrDepth is returned when nested calls exceed MaxCallDepth.
	ErrDepth = errors.New("max call depth exceeded")

	// ErrInsufficientBalance is returned when a value transfer exceeds the
	// sender's native balance.
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")

	// ErrNotCallable is returned when an opaque call targets a registered
	// object that does not implement Contract.
	ErrNotCallable = errors.New("target is not callable")

	// ErrContractCollision is returned when deploying to an occupied address.
	ErrContractCollision = errors.New("contract address collision")

	// ErrReentrantCall is returned when a guarded entry point is re-entered.
	ErrReentrantCall = errors.New("reentrant call")

	// ErrFrameMismatch is returned when a contract receives a frame entered
	// for a different address.
	ErrFrameMismatch = errors.New("frame not entered for this contract")
)
