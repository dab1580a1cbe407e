package factory

import (
	"fmt"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/clydemeng/walletvm/tracing"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// DefaultReward is paid for contributions of a type missing from baseRewards.
const DefaultReward = 100

// baseRewards is the only reward table; everything that prices a
// contribution goes through RewardFor.
var baseRewards = map[types.DataType]uint64{
	types.DataTransaction: 200,
	types.DataDeFi:        300,
	types.DataCrossChain:  500,
	types.DataAIInsight:   400,
}

// RewardFor returns the reward, in base units, of a contribution type.
func RewardFor(t types.DataType) *uint256.Int {
	if r, ok := baseRewards[t]; ok {
		return uint256.NewInt(r)
	}
	return uint256.NewInt(DefaultReward)
}

// ContributeNetworkData records a contribution reported by the calling
// wallet and pays its reward from the pool when the pool can cover it. An
// underfunded pool yields a zero reward; the contribution still counts.
// The returned value is the reward actually paid.
func (f *Factory) ContributeNetworkData(fr *core.Frame, dataHash common.Hash, dataType types.DataType, metadata []byte) (*uint256.Int, error) {
	if err := fr.Bind(f.address); err != nil {
		return nil, err
	}
	if err := f.guard.Enter(); err != nil {
		return nil, err
	}
	defer f.guard.Exit()

	rec, ok := f.wallets.lookupWallet(fr.Caller())
	if !ok || !rec.active {
		return nil, fmt.Errorf("%w: %s", ErrInactiveWallet, fr.Caller())
	}
	var (
		reward = RewardFor(dataType)
		paid   = new(uint256.Int)
	)
	if !reward.IsZero() {
		if f.pool.Lt(reward) {
			rewardMissMeter.Mark(1)
			log.Debug("Reward pool insufficient", "wallet", rec.address, "reward", reward, "pool", f.pool)
		} else {
			if err := f.payReward(fr, rec, reward); err != nil {
				return nil, err
			}
			paid = reward
		}
	}
	f.updateStats(fr, func(s *networkStats) { s.totalContributions++ })
	f.wallets.setLastActivity(fr, rec, fr.Now())
	contributionMeter.Mark(1)

	if f.hooks != nil && f.hooks.OnContribution != nil {
		f.hooks.OnContribution(rec.address, dataHash, uint8(dataType), new(uint256.Int).Set(paid))
	}
	log.Debug("Accepted contribution", "wallet", rec.address, "hash", dataHash, "type", dataType, "reward", paid, "metadata", len(metadata))
	return paid, nil
}

// payReward debits the pool, credits the record and notifies the instance.
// The reward travels as the value of the notification call.
func (f *Factory) payReward(fr *core.Frame, rec *walletRecord, reward *uint256.Int) error {
	f.setPool(fr, new(uint256.Int).Sub(f.pool, reward), tracing.PoolChangeReward)
	f.setScore(fr, rec, new(uint256.Int).Add(rec.score, reward), tracing.ScoreChangeReward)
	f.updateStats(fr, func(s *networkStats) { s.totalRewards.Add(s.totalRewards, reward) })

	instance, err := f.instance(rec.address)
	if err != nil {
		return err
	}
	callee, err := fr.EnterWithValue(rec.address, reward)
	if err != nil {
		return fmt.Errorf("reward transfer to %s: %w", rec.address, err)
	}
	if err := instance.ReceiveContributionReward(callee, reward); err != nil {
		return fmt.Errorf("reward notification to %s: %w", rec.address, err)
	}
	rewardPaidMeter.Mark(int64(reward.Uint64()))
	return nil
}

// UpdateActivity refreshes the last activity time of a wallet. Only the
// wallet itself or its registered owner may call it.
func (f *Factory) UpdateActivity(fr *core.Frame, wallet common.Address) error {
	if err := fr.Bind(f.address); err != nil {
		return err
	}
	rec, ok := f.wallets.lookupWallet(wallet)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoWallet, wallet)
	}
	if caller := fr.Caller(); caller != wallet && caller != rec.owner {
		return fmt.Errorf("%w: %s may not update %s", ErrUnauthorized, caller, wallet)
	}
	f.wallets.setLastActivity(fr, rec, fr.Now())
	return nil
}
