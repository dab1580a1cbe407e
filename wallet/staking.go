package wallet

import (
	"fmt"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Token is the fungible token capability staking relies on.
type Token interface {
	TransferFrom(fr *core.Frame, from, to common.Address, amount *uint256.Int) error
	Approve(fr *core.Frame, spender common.Address, amount *uint256.Int) error
}

// Staker is a staking contract accepting token deposits from the caller.
type Staker interface {
	Stake(fr *core.Frame, token common.Address, amount *uint256.Int) error
}

// Stake pulls amount of token from the owner into the wallet, approves the
// staking contract and stakes it there.
func (w *Wallet) Stake(fr *core.Frame, token, stakingContract common.Address, amount *uint256.Int) error {
	if err := w.onlyOwner(fr); err != nil {
		return err
	}
	if _, err := w.requireFeature(types.FeatureStaking); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	if err := w.guard.Enter(); err != nil {
		return err
	}
	defer w.guard.Exit()

	tok, ok := resolve[Token](w.host, token)
	if !ok {
		return fmt.Errorf("%w: %s is not a token", ErrExternalCallFailed, token)
	}
	staker, ok := resolve[Staker](w.host, stakingContract)
	if !ok {
		return fmt.Errorf("%w: %s is not a staking contract", ErrStakingFailed, stakingContract)
	}
	tokFrame, err := fr.Enter(token)
	if err != nil {
		return err
	}
	if err := tok.TransferFrom(tokFrame, w.owner, w.address, amount); err != nil {
		return fmt.Errorf("%w: pull tokens: %v", ErrExternalCallFailed, err)
	}
	if err := tok.Approve(tokFrame, stakingContract, amount); err != nil {
		return fmt.Errorf("%w: approve: %v", ErrExternalCallFailed, err)
	}
	stakeFrame, err := fr.Enter(stakingContract)
	if err != nil {
		return err
	}
	if err := staker.Stake(stakeFrame, token, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrStakingFailed, err)
	}
	total := new(uint256.Int).Add(w.StakedBalance(token), amount)
	core.Put(fr, w.staked, token, total)
	stakeMeter.Mark(1)

	log.Info("Staked tokens", "wallet", w.address, "token", token, "staking", stakingContract, "amount", amount)
	return nil
}

// StakedBalance returns the total staked through this wallet for token.
func (w *Wallet) StakedBalance(token common.Address) *uint256.Int {
	if v, ok := w.staked[token]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}

// resolve looks up the contract at addr as a T.
func resolve[T any](host *core.Host, addr common.Address) (T, bool) {
	var zero T
	obj, ok := host.Contract(addr)
	if !ok {
		return zero, false
	}
	t, ok := obj.(T)
	return t, ok
}
