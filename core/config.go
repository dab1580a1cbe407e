package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Config holds the genesis parameters of a Host.
type Config struct {
	// Time is the initial block timestamp in unix seconds. Zero means "now".
	Time uint64

	// Number is the initial block number.
	Number uint64

	// Alloc pre-funds accounts with native balance.
	Alloc map[common.Address]*uint256.Int
}

// DefaultConfig is an empty genesis starting at the wall clock.
var DefaultConfig = Config{}
