package wallet

import (
	"fmt"
	"slices"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/clydemeng/walletvm/factory"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

var (
	_ factory.WalletInstance = (*Wallet)(nil)
	_ core.Contract          = (*Wallet)(nil)
	_ Ledger                 = (*factory.Factory)(nil)
)

// FeatureConfig is the wallet-local state of one feature.
type FeatureConfig struct {
	IsActive    bool
	Config      []byte
	ActivatedAt uint64
}

type featureState struct {
	FeatureConfig
	feature Feature
}

// Info is a read-only summary of a wallet.
type Info struct {
	Address             common.Address
	Owner               common.Address
	WalletID            uint64
	Factory             common.Address
	Initialized         bool
	Nonce               uint64
	Balance             *uint256.Int
	ContributionBalance *uint256.Int
	ActiveFeatures      []string
}

// Wallet is a feature-gated smart wallet. Every entry point takes the frame
// it runs in; all mutations are journaled so a failing transaction leaves
// the wallet untouched.
type Wallet struct {
	host    *core.Host
	address common.Address
	guard   core.Guard

	initialized bool
	owner       common.Address
	walletID    uint64
	factory     common.Address
	nonce       uint64
	rewards     *uint256.Int

	features map[string]*featureState
	active   []string
	history  []types.TxRecord

	strategies map[string]Strategy
	guardians  mapset.Set[common.Address]
	threshold  uint64
	pending    *RecoveryRequest
	actions    map[common.Hash]*CrossChainAction
	staked     map[common.Address]*uint256.Int
}

// New returns an uninitialized wallet living at addr on host.
func New(host *core.Host, addr common.Address) *Wallet {
	return &Wallet{
		host:       host,
		address:    addr,
		rewards:    new(uint256.Int),
		features:   make(map[string]*featureState),
		strategies: make(map[string]Strategy),
		guardians:  mapset.NewThreadUnsafeSet[common.Address](),
		actions:    make(map[common.Hash]*CrossChainAction),
		staked:     make(map[common.Address]*uint256.Int),
	}
}

// NewTemplate returns the factory template deploying this wallet.
func NewTemplate(host *core.Host) factory.Template {
	return factory.TemplateFunc(func(addr common.Address) factory.WalletInstance {
		return New(host, addr)
	})
}

// Initialize binds the wallet to its owner, id and factory. It can succeed
// only once.
func (w *Wallet) Initialize(fr *core.Frame, owner common.Address, walletID uint64, factoryAddr common.Address) error {
	if err := fr.Bind(w.address); err != nil {
		return err
	}
	if w.initialized {
		return ErrAlreadyInitialized
	}
	core.Set(fr, &w.initialized, true)
	core.Set(fr, &w.owner, owner)
	core.Set(fr, &w.walletID, walletID)
	core.Set(fr, &w.factory, factoryAddr)

	log.Debug("Initialized wallet", "wallet", w.address, "owner", owner, "id", walletID)
	return nil
}

// ActivateFeature decodes and enables a feature. Only the factory may call
// it. It returns false without touching state if the feature is already
// active.
func (w *Wallet) ActivateFeature(fr *core.Frame, name string, config []byte) (bool, error) {
	if err := fr.Bind(w.address); err != nil {
		return false, err
	}
	if !w.initialized {
		return false, ErrNotInitialized
	}
	if fr.Caller() != w.factory {
		return false, fmt.Errorf("%w: %s", ErrNotFactory, fr.Caller())
	}
	if fs, ok := w.features[name]; ok && fs.IsActive {
		return false, nil
	}
	feature, err := ParseFeature(name, config)
	if err != nil {
		return false, err
	}
	if err := w.setup(fr, feature); err != nil {
		return false, err
	}
	core.Put(fr, w.features, name, &featureState{
		FeatureConfig: FeatureConfig{
			IsActive:    true,
			Config:      slices.Clone(config),
			ActivatedAt: fr.Now(),
		},
		feature: feature,
	})
	core.Append(fr, &w.active, name)
	featureActivationMeter.Mark(1)

	log.Debug("Enabled wallet feature", "wallet", w.address, "feature", name, "kind", feature.Kind())
	return true, nil
}

// setup applies the side effects of a first activation.
func (w *Wallet) setup(fr *core.Frame, feature Feature) error {
	switch f := feature.(type) {
	case *AIStrategies:
		for _, s := range f.Strategies {
			if s.Name == "" {
				return fmt.Errorf("%w: unnamed strategy", ErrInvalidFeatureConfig)
			}
			core.Put(fr, w.strategies, s.Name, s)
		}
	case *SocialRecovery:
		if len(f.Guardians) > 0 || f.Threshold > 0 {
			return w.configureGuardians(fr, f.Guardians, f.Threshold)
		}
	}
	return nil
}

// ReceiveContributionReward credits a reward paid by the factory. The value
// itself arrives with the call.
func (w *Wallet) ReceiveContributionReward(fr *core.Frame, amount *uint256.Int) error {
	if err := fr.Bind(w.address); err != nil {
		return err
	}
	if !w.initialized {
		return ErrNotInitialized
	}
	if fr.Caller() != w.factory {
		return fmt.Errorf("%w: %s", ErrNotFactory, fr.Caller())
	}
	core.Set(fr, &w.rewards, new(uint256.Int).Add(w.rewards, amount))
	rewardReceivedMeter.Mark(1)
	return nil
}

// Run accepts plain value transfers. The wallet exposes no other opaque
// entry point.
func (w *Wallet) Run(fr *core.Frame, input []byte) ([]byte, error) {
	if err := fr.Bind(w.address); err != nil {
		return nil, err
	}
	if len(input) != 0 {
		return nil, fmt.Errorf("%w: %d bytes of input", ErrUnsupportedCall, len(input))
	}
	log.Trace("Wallet received value", "wallet", w.address, "from", fr.Caller(), "value", fr.Value())
	return nil, nil
}

func (w *Wallet) onlyOwner(fr *core.Frame) error {
	if err := fr.Bind(w.address); err != nil {
		return err
	}
	if !w.initialized {
		return ErrNotInitialized
	}
	if fr.Caller() != w.owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, fr.Caller())
	}
	return nil
}

// requireFeature returns the decoded variant of an active feature.
func (w *Wallet) requireFeature(name string) (Feature, error) {
	fs, ok := w.features[name]
	if !ok || !fs.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrFeatureNotActive, name)
	}
	return fs.feature, nil
}

// ledger resolves the factory this wallet reports to and enters it from fr.
func (w *Wallet) ledger(fr *core.Frame) (Ledger, *core.Frame, error) {
	obj, ok := w.host.Contract(w.factory)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrLedgerUnavailable, w.factory)
	}
	l, ok := obj.(Ledger)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s is %T", ErrLedgerUnavailable, w.factory, obj)
	}
	callee, err := fr.Enter(w.factory)
	if err != nil {
		return nil, nil, err
	}
	return l, callee, nil
}

// Address returns the wallet address.
func (w *Wallet) Address() common.Address { return w.address }

// Owner returns the current owner.
func (w *Wallet) Owner() common.Address { return w.owner }

// Nonce returns the number of reported transactions and cross-chain actions.
func (w *Wallet) Nonce() uint64 { return w.nonce }

// GetBalance returns the wallet's native balance.
func (w *Wallet) GetBalance() *uint256.Int { return w.host.Balance(w.address) }

// ContributionBalance returns the sum of rewards received.
func (w *Wallet) ContributionBalance() *uint256.Int { return new(uint256.Int).Set(w.rewards) }

// GetActiveFeatures returns active features in activation order.
func (w *Wallet) GetActiveFeatures() []string { return slices.Clone(w.active) }

// IsFeatureActive reports whether name is active.
func (w *Wallet) IsFeatureActive(name string) bool {
	fs, ok := w.features[name]
	return ok && fs.IsActive
}

// FeatureConfig returns the local state of a feature.
func (w *Wallet) FeatureConfig(name string) (FeatureConfig, bool) {
	fs, ok := w.features[name]
	if !ok {
		return FeatureConfig{}, false
	}
	cfg := fs.FeatureConfig
	cfg.Config = slices.Clone(cfg.Config)
	return cfg, true
}

// Feature returns the decoded variant of an active feature.
func (w *Wallet) Feature(name string) (Feature, bool) {
	f, err := w.requireFeature(name)
	return f, err == nil
}

// Transactions returns the transaction history, oldest first.
func (w *Wallet) Transactions() []types.TxRecord {
	out := make([]types.TxRecord, len(w.history))
	for i, rec := range w.history {
		rec.Value = new(uint256.Int).Set(rec.Value)
		rec.Payload = slices.Clone(rec.Payload)
		out[i] = rec
	}
	return out
}

// Info returns a summary of the wallet.
func (w *Wallet) Info() Info {
	return Info{
		Address:             w.address,
		Owner:               w.owner,
		WalletID:            w.walletID,
		Factory:             w.factory,
		Initialized:         w.initialized,
		Nonce:               w.nonce,
		Balance:             w.GetBalance(),
		ContributionBalance: w.ContributionBalance(),
		ActiveFeatures:      w.GetActiveFeatures(),
	}
}
