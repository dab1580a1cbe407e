package factory

import (
	"github.com/clydemeng/walletvm/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// WalletInstance is the capability the ledger requires from a deployed
// wallet. Any implementation honouring this contract may be substituted.
type WalletInstance interface {
	// Initialize binds the instance to its owner, id and factory. It may
	// only succeed once.
	Initialize(fr *core.Frame, owner common.Address, walletID uint64, factory common.Address) error

	// ActivateFeature enables a feature on the instance. It reports whether
	// this call was the first activation of the feature.
	ActivateFeature(fr *core.Frame, name string, config []byte) (bool, error)

	// ReceiveContributionReward credits a paid reward to the instance's
	// local bookkeeping.
	ReceiveContributionReward(fr *core.Frame, amount *uint256.Int) error

	// GetBalance returns the instance's native balance.
	GetBalance() *uint256.Int

	// GetActiveFeatures returns the instance's active features in
	// activation order.
	GetActiveFeatures() []string
}

// Template builds wallet instances for newly allocated addresses. Replacing
// the template only affects wallets created afterwards.
type Template interface {
	Instantiate(addr common.Address) WalletInstance
}

// TemplateFunc adapts a plain function to the Template interface.
type TemplateFunc func(addr common.Address) WalletInstance

// Instantiate implements Template.
func (f TemplateFunc) Instantiate(addr common.Address) WalletInstance {
	return f(addr)
}
