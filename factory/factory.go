package factory

import (
	"fmt"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/clydemeng/walletvm/tracing"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Config holds the deployment parameters of a factory.
type Config struct {
	// Features are registered in the catalog after types.DefaultFeatures.
	Features []string

	// Version is the implementation version stamped on wallets created with
	// the initial template. Zero is treated as one.
	Version uint64

	// Hooks, if set, observe pool, score and contribution changes.
	Hooks *tracing.Hooks
}

// DefaultConfig is the configuration used when none is supplied.
var DefaultConfig = Config{Version: 1}

// networkStats mirrors types.NetworkStats with owned big values.
type networkStats struct {
	totalWallets       uint64
	activeWallets      uint64
	totalContributions uint64
	totalRewards       *uint256.Int
}

func (s networkStats) copy() networkStats {
	s.totalRewards = new(uint256.Int).Set(s.totalRewards)
	return s
}

// Factory is the ledger contract: it deploys one wallet per account, keeps
// the wallet records, the feature catalog, the network statistics and the
// shared reward pool.
type Factory struct {
	host    *core.Host
	address common.Address
	owner   common.Address
	guard   core.Guard
	hooks   *tracing.Hooks

	template Template
	version  uint64

	catalog *catalog
	wallets *registry
	pool    *uint256.Int
	stats   networkStats
}

// Deploy installs a new factory on the host, owned by owner. The factory
// address is derived from the owner the way a contract creation would be.
func Deploy(host *core.Host, owner common.Address, tmpl Template, cfg *Config) (*Factory, error) {
	if tmpl == nil {
		return nil, ErrNilTemplate
	}
	if owner == (common.Address{}) {
		return nil, fmt.Errorf("%w: factory owner", ErrZeroAddress)
	}
	if cfg == nil {
		cfg = &DefaultConfig
	}
	version := cfg.Version
	if version == 0 {
		version = 1
	}
	names := append(append([]string{}, types.DefaultFeatures...), cfg.Features...)

	f := &Factory{
		host:     host,
		owner:    owner,
		hooks:    cfg.Hooks,
		template: tmpl,
		version:  version,
		catalog:  newCatalog(names),
		wallets:  newRegistry(),
		pool:     new(uint256.Int),
		stats:    networkStats{totalRewards: new(uint256.Int)},
	}
	addr, err := host.Deploy(owner, f)
	if err != nil {
		return nil, err
	}
	f.address = addr
	log.Info("Deployed wallet factory", "address", f.address, "owner", owner, "version", version, "features", len(f.catalog.names))
	return f, nil
}

// Address returns the factory's address.
func (f *Factory) Address() common.Address { return f.address }

// Owner returns the factory administrator.
func (f *Factory) Owner() common.Address { return f.owner }

// Version returns the implementation version stamped on new wallets.
func (f *Factory) Version() uint64 { return f.version }

// RewardPool returns the current reward pool balance.
func (f *Factory) RewardPool() *uint256.Int { return new(uint256.Int).Set(f.pool) }

// CreateWallet deploys and initializes a wallet for the caller, then
// activates the requested features. Any invalid feature aborts the whole
// creation.
func (f *Factory) CreateWallet(fr *core.Frame, features []string, configs [][]byte) (common.Address, error) {
	if err := fr.Bind(f.address); err != nil {
		return common.Address{}, err
	}
	if err := f.guard.Enter(); err != nil {
		return common.Address{}, err
	}
	defer f.guard.Exit()

	owner := fr.Caller()
	if _, ok := f.wallets.lookupOwner(owner); ok {
		return common.Address{}, fmt.Errorf("%w: %s", ErrDuplicateWallet, owner)
	}
	if len(features) != len(configs) {
		return common.Address{}, fmt.Errorf("%w: %d features, %d configs", ErrArityMismatch, len(features), len(configs))
	}
	for _, name := range features {
		if err := f.catalog.check(name); err != nil {
			return common.Address{}, err
		}
	}
	var (
		id   = f.wallets.nextID()
		addr = crypto.CreateAddress(f.address, id)
		now  = fr.Now()
	)
	instance := f.template.Instantiate(addr)
	if instance == nil {
		return common.Address{}, ErrNilTemplate
	}
	if err := fr.Create(addr, instance); err != nil {
		return common.Address{}, err
	}
	rec := &walletRecord{
		owner:        owner,
		address:      addr,
		id:           id,
		version:      f.version,
		createdAt:    now,
		lastActivity: now,
		score:        new(uint256.Int),
		active:       true,
		configs:      make(map[string][]byte),
	}
	f.wallets.insert(fr, rec)

	callee, err := fr.Enter(addr)
	if err != nil {
		return common.Address{}, err
	}
	if err := instance.Initialize(callee, owner, id, f.address); err != nil {
		return common.Address{}, fmt.Errorf("initialize wallet %d: %w", id, err)
	}
	for i, name := range features {
		if err := f.activate(fr, rec, instance, name, configs[i]); err != nil {
			return common.Address{}, err
		}
	}
	f.updateStats(fr, func(s *networkStats) {
		s.totalWallets++
		s.activeWallets++
	})
	walletCreatedMeter.Mark(1)
	activeWalletsGauge.Update(int64(f.stats.activeWallets))

	log.Info("Created wallet", "owner", owner, "wallet", addr, "id", id, "version", f.version, "features", len(features))
	return addr, nil
}

// ActivateFeature activates a catalogued feature on the caller's wallet and
// records its configuration. Activating an already active feature updates
// the recorded configuration only.
func (f *Factory) ActivateFeature(fr *core.Frame, name string, config []byte) error {
	if err := fr.Bind(f.address); err != nil {
		return err
	}
	if err := f.guard.Enter(); err != nil {
		return err
	}
	defer f.guard.Exit()

	rec, ok := f.wallets.lookupOwner(fr.Caller())
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoWallet, fr.Caller())
	}
	if err := f.catalog.check(name); err != nil {
		return err
	}
	instance, err := f.instance(rec.address)
	if err != nil {
		return err
	}
	return f.activate(fr, rec, instance, name, config)
}

// activate forwards an activation to the instance and mirrors it in the
// record. The name is appended only on first activation, so the record's
// feature list always matches the instance's.
func (f *Factory) activate(fr *core.Frame, rec *walletRecord, instance WalletInstance, name string, config []byte) error {
	callee, err := fr.Enter(rec.address)
	if err != nil {
		return err
	}
	activated, err := instance.ActivateFeature(callee, name, config)
	if err != nil {
		return fmt.Errorf("activate %q on wallet %d: %w", name, rec.id, err)
	}
	if activated {
		f.wallets.appendFeature(fr, rec, name)
		log.Debug("Activated wallet feature", "wallet", rec.address, "feature", name)
	}
	f.wallets.setFeatureConfig(fr, rec, name, config)
	return nil
}

// UpgradeWallet re-stamps the caller's wallet record with the current
// implementation version. The deployed instance itself is unchanged.
func (f *Factory) UpgradeWallet(fr *core.Frame) error {
	if err := fr.Bind(f.address); err != nil {
		return err
	}
	rec, ok := f.wallets.lookupOwner(fr.Caller())
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoWallet, fr.Caller())
	}
	if rec.version == f.version {
		return nil
	}
	log.Info("Upgraded wallet record", "wallet", rec.address, "from", rec.version, "to", f.version)
	f.wallets.setVersion(fr, rec, f.version)
	return nil
}

// instance resolves the deployed wallet at addr through the host.
func (f *Factory) instance(addr common.Address) (WalletInstance, error) {
	obj, ok := f.host.Contract(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstanceUnavailable, addr)
	}
	instance, ok := obj.(WalletInstance)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrInstanceUnavailable, addr, obj)
	}
	return instance, nil
}

func (f *Factory) updateStats(fr *core.Frame, fn func(s *networkStats)) {
	prev := f.stats.copy()
	fr.Journal(func() { f.stats = prev })
	fn(&f.stats)
}

func (f *Factory) setPool(fr *core.Frame, next *uint256.Int, reason tracing.PoolChangeReason) {
	prev := f.pool
	f.pool = new(uint256.Int).Set(next)
	fr.Journal(func() { f.pool = prev })

	if f.pool.IsUint64() {
		poolGauge.Update(int64(f.pool.Uint64()))
	}
	if f.hooks != nil && f.hooks.OnPoolChange != nil {
		f.hooks.OnPoolChange(new(uint256.Int).Set(prev), f.RewardPool(), reason)
	}
}

func (f *Factory) setScore(fr *core.Frame, rec *walletRecord, score *uint256.Int, reason tracing.ScoreChangeReason) {
	prev := rec.score
	f.wallets.setScore(fr, rec, score)
	if f.hooks != nil && f.hooks.OnScoreChange != nil {
		f.hooks.OnScoreChange(rec.address, new(uint256.Int).Set(prev), new(uint256.Int).Set(score), reason)
	}
}

// GetWallet returns the wallet owned by owner.
func (f *Factory) GetWallet(owner common.Address) (common.Address, bool) {
	rec, ok := f.wallets.lookupOwner(owner)
	if !ok {
		return common.Address{}, false
	}
	return rec.address, true
}

// HasWallet reports whether owner already owns a wallet.
func (f *Factory) HasWallet(owner common.Address) bool {
	_, ok := f.wallets.lookupOwner(owner)
	return ok
}

// GetWalletInfo returns the ledger record of the wallet at addr.
func (f *Factory) GetWalletInfo(addr common.Address) (*types.WalletRecord, error) {
	rec, ok := f.wallets.lookupWallet(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoWallet, addr)
	}
	return rec.project(), nil
}

// WalletByID returns the ledger record with the given wallet id.
func (f *Factory) WalletByID(id uint64) (*types.WalletRecord, error) {
	rec, ok := f.wallets.byID(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNoWallet, id)
	}
	return rec.project(), nil
}

// GetNetworkStats returns the ledger-wide counters.
func (f *Factory) GetNetworkStats() types.NetworkStats {
	return types.NetworkStats{
		TotalWallets:            f.stats.totalWallets,
		ActiveWallets:           f.stats.activeWallets,
		TotalContributions:      f.stats.totalContributions,
		TotalRewardsDistributed: new(uint256.Int).Set(f.stats.totalRewards),
	}
}

// GetAvailableFeatures returns the feature catalog in registration order.
func (f *Factory) GetAvailableFeatures() []types.FeatureEntry {
	return f.catalog.entries()
}

// Snapshot returns a detached copy of the whole ledger.
func (f *Factory) Snapshot() *types.LedgerSnapshot {
	snap := &types.LedgerSnapshot{
		Factory:    f.address,
		Owner:      f.owner,
		Version:    f.version,
		RewardPool: f.RewardPool(),
		Stats:      f.GetNetworkStats(),
		Catalog:    f.catalog.entries(),
		Wallets:    make([]*types.WalletRecord, 0, f.wallets.len()),
	}
	for _, rec := range f.wallets.records {
		snap.Wallets = append(snap.Wallets, rec.project())
	}
	return snap
}
