package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// WalletRecord is the ledger's view of one deployed wallet. It is the
// projection returned by readers and the form persisted in archives.
type WalletRecord struct {
	Owner             common.Address
	Address           common.Address
	WalletID          uint64
	Version           uint64
	CreatedAt         uint64
	LastActivity      uint64
	ContributionScore *uint256.Int
	IsActive          bool
	ActiveFeatures    []string
	FeatureConfigs    []FeatureConfigEntry
}

// Config returns the recorded configuration of a feature.
func (r *WalletRecord) Config(name string) ([]byte, bool) {
	for _, fc := range r.FeatureConfigs {
		if fc.Name == name {
			return fc.Config, true
		}
	}
	return nil, false
}

// NetworkStats are the ledger-wide counters.
type NetworkStats struct {
	TotalWallets            uint64
	ActiveWallets           uint64
	TotalContributions      uint64
	TotalRewardsDistributed *uint256.Int
}

// TxRecord is one entry of a wallet's transaction history. Records are
// appended after every execution attempt and never mutated.
type TxRecord struct {
	Target    common.Address
	Value     *uint256.Int
	Payload   []byte
	Timestamp uint64
	Success   bool
}

// LedgerSnapshot is a point-in-time copy of the whole factory ledger.
type LedgerSnapshot struct {
	Factory    common.Address
	Owner      common.Address
	Version    uint64
	RewardPool *uint256.Int
	Stats      NetworkStats
	Catalog    []FeatureEntry
	Wallets    []*WalletRecord
}
