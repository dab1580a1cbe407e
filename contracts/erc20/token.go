// Package erc20 implements a minimal fungible token hosted on core.Host.
package erc20

import (
	"errors"
	"fmt"

	"github.com/clydemeng/walletvm/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

var (
	ErrInsufficientBalance   = errors.New("erc20: insufficient balance")
	ErrInsufficientAllowance = errors.New("erc20: insufficient allowance")
	ErrNotOwner              = errors.New("erc20: caller is not the owner")
	ErrZeroAddress           = errors.New("erc20: zero address")
	ErrNotPayable            = errors.New("erc20: token does not accept value")
)

type allowanceKey struct {
	owner, spender common.Address
}

// Token is a fungible token. All mutations are journaled on the frame they
// run in.
type Token struct {
	address  common.Address
	owner    common.Address
	name     string
	symbol   string
	decimals uint8

	supply     *uint256.Int
	balances   map[common.Address]*uint256.Int
	allowances map[allowanceKey]*uint256.Int
}

// Deploy installs a token owned by owner on host.
func Deploy(host *core.Host, owner common.Address, name, symbol string, decimals uint8) (*Token, error) {
	t := &Token{
		owner:      owner,
		name:       name,
		symbol:     symbol,
		decimals:   decimals,
		supply:     new(uint256.Int),
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(map[allowanceKey]*uint256.Int),
	}
	addr, err := host.Deploy(owner, t)
	if err != nil {
		return nil, err
	}
	t.address = addr
	log.Info("Deployed token", "address", addr, "symbol", symbol, "owner", owner)
	return t, nil
}

func (t *Token) Address() common.Address { return t.address }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Decimals() uint8         { return t.decimals }

// TotalSupply returns the minted supply.
func (t *Token) TotalSupply() *uint256.Int { return new(uint256.Int).Set(t.supply) }

// BalanceOf returns the balance of holder.
func (t *Token) BalanceOf(holder common.Address) *uint256.Int {
	if b, ok := t.balances[holder]; ok {
		return new(uint256.Int).Set(b)
	}
	return new(uint256.Int)
}

// Allowance returns how much spender may move on behalf of owner.
func (t *Token) Allowance(owner, spender common.Address) *uint256.Int {
	if a, ok := t.allowances[allowanceKey{owner, spender}]; ok {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int)
}

// Mint creates amount tokens for to. Owner only.
func (t *Token) Mint(fr *core.Frame, to common.Address, amount *uint256.Int) error {
	if err := fr.Bind(t.address); err != nil {
		return err
	}
	if fr.Caller() != t.owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, fr.Caller())
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	core.Set(fr, &t.supply, new(uint256.Int).Add(t.supply, amount))
	core.Put(fr, t.balances, to, new(uint256.Int).Add(t.BalanceOf(to), amount))
	return nil
}

// Transfer moves amount from the caller to to.
func (t *Token) Transfer(fr *core.Frame, to common.Address, amount *uint256.Int) error {
	if err := fr.Bind(t.address); err != nil {
		return err
	}
	return t.move(fr, fr.Caller(), to, amount)
}

// Approve lets spender move up to amount of the caller's tokens.
func (t *Token) Approve(fr *core.Frame, spender common.Address, amount *uint256.Int) error {
	if err := fr.Bind(t.address); err != nil {
		return err
	}
	if spender == (common.Address{}) {
		return ErrZeroAddress
	}
	core.Put(fr, t.allowances, allowanceKey{fr.Caller(), spender}, new(uint256.Int).Set(amount))
	return nil
}

// TransferFrom moves amount from `from` to `to`, spending the caller's
// allowance.
func (t *Token) TransferFrom(fr *core.Frame, from, to common.Address, amount *uint256.Int) error {
	if err := fr.Bind(t.address); err != nil {
		return err
	}
	key := allowanceKey{from, fr.Caller()}
	allowed := t.Allowance(from, fr.Caller())
	if allowed.Lt(amount) {
		return fmt.Errorf("%w: have %s want %s", ErrInsufficientAllowance, allowed, amount)
	}
	core.Put(fr, t.allowances, key, allowed.Sub(allowed, amount))
	return t.move(fr, from, to, amount)
}

func (t *Token) move(fr *core.Frame, from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	bal := t.BalanceOf(from)
	if bal.Lt(amount) {
		return fmt.Errorf("%w: %s has %s want %s", ErrInsufficientBalance, from, bal, amount)
	}
	core.Put(fr, t.balances, from, bal.Sub(bal, amount))
	core.Put(fr, t.balances, to, new(uint256.Int).Add(t.BalanceOf(to), amount))
	return nil
}

// Run rejects native value; the token has no opaque entry points.
func (t *Token) Run(fr *core.Frame, input []byte) ([]byte, error) {
	return nil, ErrNotPayable
}
