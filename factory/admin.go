package factory

import (
	"fmt"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/tracing"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

func (f *Factory) onlyOwner(fr *core.Frame) error {
	if err := fr.Bind(f.address); err != nil {
		return err
	}
	if fr.Caller() != f.owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, fr.Caller())
	}
	return nil
}

// RegisterFeature adds a feature to the catalog. Registering a known name
// is a no-op.
func (f *Factory) RegisterFeature(fr *core.Frame, name string) error {
	if err := f.onlyOwner(fr); err != nil {
		return err
	}
	if name == "" {
		return ErrInvalidFeatureName
	}
	if f.catalog.add(fr, name) {
		log.Info("Registered feature", "name", name)
	}
	return nil
}

// SetFeatureAvailability enables or disables a registered feature for
// future activations. Already activated features are unaffected.
func (f *Factory) SetFeatureAvailability(fr *core.Frame, name string, available bool) error {
	if err := f.onlyOwner(fr); err != nil {
		return err
	}
	return f.catalog.setAvailable(fr, name, available)
}

// SetImplementation replaces the template used for future wallets and
// bumps the implementation version.
func (f *Factory) SetImplementation(fr *core.Frame, tmpl Template) error {
	if err := f.onlyOwner(fr); err != nil {
		return err
	}
	if tmpl == nil {
		return ErrNilTemplate
	}
	prevTmpl, prevVersion := f.template, f.version
	f.template = tmpl
	f.version++
	fr.Journal(func() {
		f.template = prevTmpl
		f.version = prevVersion
	})
	log.Info("Updated wallet implementation", "version", f.version)
	return nil
}

// FundRewardPool credits the call value to the reward pool.
func (f *Factory) FundRewardPool(fr *core.Frame) error {
	if err := f.onlyOwner(fr); err != nil {
		return err
	}
	value := fr.Value()
	if value.IsZero() {
		return ErrZeroAmount
	}
	f.setPool(fr, new(uint256.Int).Add(f.pool, value), tracing.PoolChangeFund)
	log.Info("Funded reward pool", "amount", value, "pool", f.pool)
	return nil
}

// WithdrawFromPool sends amount from the reward pool to the owner.
func (f *Factory) WithdrawFromPool(fr *core.Frame, amount *uint256.Int) error {
	if err := f.onlyOwner(fr); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	if f.pool.Lt(amount) {
		return fmt.Errorf("%w: have %s want %s", ErrInsufficientPool, f.pool, amount)
	}
	f.setPool(fr, new(uint256.Int).Sub(f.pool, amount), tracing.PoolChangeWithdraw)
	if err := fr.Transfer(f.owner, amount); err != nil {
		return err
	}
	log.Info("Withdrew from reward pool", "amount", amount, "pool", f.pool)
	return nil
}

// DeactivateWallet marks a wallet inactive. The record is kept.
func (f *Factory) DeactivateWallet(fr *core.Frame, wallet common.Address) error {
	if err := f.onlyOwner(fr); err != nil {
		return err
	}
	rec, ok := f.wallets.lookupWallet(wallet)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoWallet, wallet)
	}
	if !rec.active {
		return fmt.Errorf("%w: %s", ErrAlreadyInactive, wallet)
	}
	f.wallets.setActive(fr, rec, false)
	f.updateStats(fr, func(s *networkStats) { s.activeWallets-- })
	activeWalletsGauge.Update(int64(f.stats.activeWallets))

	log.Info("Deactivated wallet", "wallet", wallet, "id", rec.id)
	return nil
}

// SetContributionScore overrides a wallet's contribution score.
func (f *Factory) SetContributionScore(fr *core.Frame, wallet common.Address, score *uint256.Int) error {
	if err := f.onlyOwner(fr); err != nil {
		return err
	}
	rec, ok := f.wallets.lookupWallet(wallet)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoWallet, wallet)
	}
	if score == nil {
		score = new(uint256.Int)
	}
	f.setScore(fr, rec, score, tracing.ScoreChangeOverride)
	log.Warn("Overrode contribution score", "wallet", wallet, "score", score)
	return nil
}

// TransferOwnership hands factory administration to newOwner.
func (f *Factory) TransferOwnership(fr *core.Frame, newOwner common.Address) error {
	if err := f.onlyOwner(fr); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return fmt.Errorf("%w: new owner", ErrZeroAddress)
	}
	prev := f.owner
	f.owner = newOwner
	fr.Journal(func() { f.owner = prev })
	log.Info("Transferred factory ownership", "from", prev, "to", newOwner)
	return nil
}
