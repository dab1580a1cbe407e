package staking

import (
	"testing"

	"github.com/clydemeng/walletvm/contracts/erc20"
	"github.com/clydemeng/walletvm/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	owner  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	staker = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

type env struct {
	host  *core.Host
	token *erc20.Token
	vault *Vault
}

func newEnv(t *testing.T, minStake uint64) *env {
	t.Helper()
	host, err := core.NewHost(&core.Config{Time: 1})
	require.NoError(t, err)
	tok, err := erc20.Deploy(host, owner, "Test", "TST", 18)
	require.NoError(t, err)
	vault, err := Deploy(host, owner, Config{MinStake: uint256.NewInt(minStake)})
	require.NoError(t, err)

	require.NoError(t, host.Transact(owner, tok.Address(), nil, func(fr *core.Frame) error {
		return tok.Mint(fr, staker, uint256.NewInt(1000))
	}))
	require.NoError(t, host.Transact(staker, tok.Address(), nil, func(fr *core.Frame) error {
		return tok.Approve(fr, vault.Address(), uint256.NewInt(1000))
	}))
	return &env{host: host, token: tok, vault: vault}
}

func (e *env) stake(amount uint64) error {
	return e.host.Transact(staker, e.vault.Address(), nil, func(fr *core.Frame) error {
		return e.vault.Stake(fr, e.token.Address(), uint256.NewInt(amount))
	})
}

func TestStakeAndUnstake(t *testing.T) {
	e := newEnv(t, 10)
	require.ErrorIs(t, e.stake(5), ErrBelowMinimum)
	require.ErrorIs(t, e.stake(0), ErrBelowMinimum)

	require.NoError(t, e.stake(400))
	require.NoError(t, e.stake(100))
	require.Equal(t, uint64(500), e.vault.StakeOf(staker, e.token.Address()).Uint64())
	require.Equal(t, uint64(500), e.token.BalanceOf(e.vault.Address()).Uint64())
	require.Equal(t, uint64(500), e.token.BalanceOf(staker).Uint64())

	unstake := func(amount uint64) error {
		return e.host.Transact(staker, e.vault.Address(), nil, func(fr *core.Frame) error {
			return e.vault.Unstake(fr, e.token.Address(), uint256.NewInt(amount))
		})
	}
	require.ErrorIs(t, unstake(501), ErrInsufficientStake)
	require.NoError(t, unstake(200))
	require.Equal(t, uint64(300), e.vault.StakeOf(staker, e.token.Address()).Uint64())
	require.Equal(t, uint64(700), e.token.BalanceOf(staker).Uint64())
}

func TestStakeWithoutAllowance(t *testing.T) {
	e := newEnv(t, 0)
	err := e.stake(1001)
	require.ErrorIs(t, err, erc20.ErrInsufficientAllowance)
	require.True(t, e.vault.StakeOf(staker, e.token.Address()).IsZero())
}

func TestPause(t *testing.T) {
	e := newEnv(t, 0)
	pause := func(from common.Address, paused bool) error {
		return e.host.Transact(from, e.vault.Address(), nil, func(fr *core.Frame) error {
			return e.vault.SetPaused(fr, paused)
		})
	}
	require.ErrorIs(t, pause(staker, true), ErrNotOwner)
	require.NoError(t, pause(owner, true))
	require.ErrorIs(t, e.stake(1), ErrPaused)
	require.NoError(t, pause(owner, false))
	require.NoError(t, e.stake(1))
}

func TestUnknownToken(t *testing.T) {
	e := newEnv(t, 0)
	err := e.host.Transact(staker, e.vault.Address(), nil, func(fr *core.Frame) error {
		return e.vault.Stake(fr, common.HexToAddress("0xdead"), uint256.NewInt(1))
	})
	require.ErrorIs(t, err, ErrUnknownToken)
}

func TestUnstakeRejectsFrameForOtherContract(t *testing.T) {
	e := newEnv(t, 10)
	require.NoError(t, e.stake(100))

	err := e.host.Transact(staker, e.token.Address(), nil, func(fr *core.Frame) error {
		return e.vault.Unstake(fr, e.token.Address(), uint256.NewInt(100))
	})
	require.ErrorIs(t, err, core.ErrFrameMismatch)
	require.Equal(t, uint64(100), e.vault.StakeOf(staker, e.token.Address()).Uint64())
	require.Equal(t, uint64(900), e.token.BalanceOf(staker).Uint64())
}
