// Package staking implements a token staking vault hosted on core.Host.
package staking

import (
	"errors"
	"fmt"

	"github.com/clydemeng/walletvm/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

var (
	ErrBelowMinimum      = errors.New("staking: amount below minimum stake")
	ErrPaused            = errors.New("staking: vault paused")
	ErrNotOwner          = errors.New("staking: caller is not the owner")
	ErrUnknownToken      = errors.New("staking: token not reachable")
	ErrInsufficientStake = errors.New("staking: insufficient stake")
)

// Token is what the vault needs from a staked token.
type Token interface {
	Transfer(fr *core.Frame, to common.Address, amount *uint256.Int) error
	TransferFrom(fr *core.Frame, from, to common.Address, amount *uint256.Int) error
}

type stakeKey struct {
	staker, token common.Address
}

// Config parameterises a vault.
type Config struct {
	MinStake *uint256.Int
}

// Vault holds staked tokens per (staker, token).
type Vault struct {
	host    *core.Host
	address common.Address
	owner   common.Address

	minStake *uint256.Int
	paused   bool
	stakes   map[stakeKey]*uint256.Int
}

// Deploy installs a vault owned by owner on host.
func Deploy(host *core.Host, owner common.Address, cfg Config) (*Vault, error) {
	minStake := new(uint256.Int)
	if cfg.MinStake != nil {
		minStake.Set(cfg.MinStake)
	}
	v := &Vault{
		host:     host,
		owner:    owner,
		minStake: minStake,
		stakes:   make(map[stakeKey]*uint256.Int),
	}
	addr, err := host.Deploy(owner, v)
	if err != nil {
		return nil, err
	}
	v.address = addr
	log.Info("Deployed staking vault", "address", addr, "owner", owner, "minStake", minStake)
	return v, nil
}

func (v *Vault) Address() common.Address { return v.address }

// Stake pulls amount of token from the caller into the vault. The caller
// must have approved the vault beforehand.
func (v *Vault) Stake(fr *core.Frame, token common.Address, amount *uint256.Int) error {
	if err := fr.Bind(v.address); err != nil {
		return err
	}
	if v.paused {
		return ErrPaused
	}
	if amount.IsZero() || amount.Lt(v.minStake) {
		return fmt.Errorf("%w: %s < %s", ErrBelowMinimum, amount, v.minStake)
	}
	tok, err := v.token(token)
	if err != nil {
		return err
	}
	callee, err := fr.Enter(token)
	if err != nil {
		return err
	}
	if err := tok.TransferFrom(callee, fr.Caller(), v.address, amount); err != nil {
		return err
	}
	key := stakeKey{fr.Caller(), token}
	core.Put(fr, v.stakes, key, new(uint256.Int).Add(v.StakeOf(fr.Caller(), token), amount))
	log.Debug("Stake deposited", "staker", fr.Caller(), "token", token, "amount", amount)
	return nil
}

// Unstake returns amount of token to the caller.
func (v *Vault) Unstake(fr *core.Frame, token common.Address, amount *uint256.Int) error {
	if err := fr.Bind(v.address); err != nil {
		return err
	}
	staked := v.StakeOf(fr.Caller(), token)
	if staked.Lt(amount) {
		return fmt.Errorf("%w: have %s want %s", ErrInsufficientStake, staked, amount)
	}
	tok, err := v.token(token)
	if err != nil {
		return err
	}
	callee, err := fr.Enter(token)
	if err != nil {
		return err
	}
	core.Put(fr, v.stakes, stakeKey{fr.Caller(), token}, staked.Sub(staked, amount))
	return tok.Transfer(callee, fr.Caller(), amount)
}

// SetPaused stops or resumes deposits. Owner only.
func (v *Vault) SetPaused(fr *core.Frame, paused bool) error {
	if err := fr.Bind(v.address); err != nil {
		return err
	}
	if fr.Caller() != v.owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, fr.Caller())
	}
	core.Set(fr, &v.paused, paused)
	return nil
}

// StakeOf returns the stake of staker in token.
func (v *Vault) StakeOf(staker, token common.Address) *uint256.Int {
	if s, ok := v.stakes[stakeKey{staker, token}]; ok {
		return new(uint256.Int).Set(s)
	}
	return new(uint256.Int)
}

func (v *Vault) token(addr common.Address) (Token, error) {
	obj, ok := v.host.Contract(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, addr)
	}
	tok, ok := obj.(Token)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrUnknownToken, addr, obj)
	}
	return tok, nil
}
