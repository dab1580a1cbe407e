package erc20

import (
	"testing"

	"github.com/clydemeng/walletvm/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

func newToken(t *testing.T) (*core.Host, *Token) {
	t.Helper()
	host, err := core.NewHost(&core.Config{Time: 1})
	require.NoError(t, err)
	tok, err := Deploy(host, owner, "Test", "TST", 18)
	require.NoError(t, err)
	require.Equal(t, crypto.CreateAddress(owner, 0), tok.Address())
	return host, tok
}

func TestMint(t *testing.T) {
	host, tok := newToken(t)
	mint := func(from, to common.Address, amount uint64) error {
		return host.Transact(from, tok.Address(), nil, func(fr *core.Frame) error {
			return tok.Mint(fr, to, uint256.NewInt(amount))
		})
	}
	require.ErrorIs(t, mint(alice, alice, 1), ErrNotOwner)
	require.ErrorIs(t, mint(owner, common.Address{}, 1), ErrZeroAddress)
	require.NoError(t, mint(owner, alice, 100))

	require.Equal(t, uint64(100), tok.BalanceOf(alice).Uint64())
	require.Equal(t, uint64(100), tok.TotalSupply().Uint64())
	require.Equal(t, "TST", tok.Symbol())
	require.Equal(t, uint8(18), tok.Decimals())
}

func TestTransferAndAllowance(t *testing.T) {
	host, tok := newToken(t)
	require.NoError(t, host.Transact(owner, tok.Address(), nil, func(fr *core.Frame) error {
		return tok.Mint(fr, alice, uint256.NewInt(100))
	}))

	err := host.Transact(alice, tok.Address(), nil, func(fr *core.Frame) error {
		return tok.Transfer(fr, bob, uint256.NewInt(101))
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, host.Transact(alice, tok.Address(), nil, func(fr *core.Frame) error {
		if err := tok.Transfer(fr, bob, uint256.NewInt(30)); err != nil {
			return err
		}
		return tok.Approve(fr, bob, uint256.NewInt(50))
	}))
	require.Equal(t, uint64(70), tok.BalanceOf(alice).Uint64())
	require.Equal(t, uint64(30), tok.BalanceOf(bob).Uint64())
	require.Equal(t, uint64(50), tok.Allowance(alice, bob).Uint64())

	transferFrom := func(amount uint64) error {
		return host.Transact(bob, tok.Address(), nil, func(fr *core.Frame) error {
			return tok.TransferFrom(fr, alice, bob, uint256.NewInt(amount))
		})
	}
	require.ErrorIs(t, transferFrom(60), ErrInsufficientAllowance)
	require.NoError(t, transferFrom(40))
	require.Equal(t, uint64(10), tok.Allowance(alice, bob).Uint64())
	require.Equal(t, uint64(70), tok.BalanceOf(bob).Uint64())
	require.Equal(t, uint64(100), tok.TotalSupply().Uint64())
}

func TestFailedTransactionRestoresBalances(t *testing.T) {
	host, tok := newToken(t)
	require.NoError(t, host.Transact(owner, tok.Address(), nil, func(fr *core.Frame) error {
		return tok.Mint(fr, alice, uint256.NewInt(10))
	}))
	err := host.Transact(alice, tok.Address(), nil, func(fr *core.Frame) error {
		if err := tok.Transfer(fr, bob, uint256.NewInt(10)); err != nil {
			return err
		}
		return tok.Transfer(fr, bob, uint256.NewInt(1))
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.Equal(t, uint64(10), tok.BalanceOf(alice).Uint64())
	require.True(t, tok.BalanceOf(bob).IsZero())
}

func TestTokenRejectsValue(t *testing.T) {
	host, tok := newToken(t)
	receipt, err := host.ApplyMessage(&core.Message{From: alice, To: tok.Address()})
	require.NoError(t, err)
	require.False(t, receipt.Succeeded())
	require.Contains(t, receipt.Err, ErrNotPayable.Error())
}

func TestRejectsFrameForOtherContract(t *testing.T) {
	host, tok := newToken(t)
	require.NoError(t, host.Transact(owner, tok.Address(), nil, func(fr *core.Frame) error {
		return tok.Mint(fr, alice, uint256.NewInt(100))
	}))

	// alice's transaction into bob cannot spend alice's tokens.
	err := host.Transact(alice, bob, nil, func(fr *core.Frame) error {
		return tok.Transfer(fr, bob, uint256.NewInt(100))
	})
	require.ErrorIs(t, err, core.ErrFrameMismatch)
	err = host.Transact(alice, bob, nil, func(fr *core.Frame) error {
		return tok.Approve(fr, bob, uint256.NewInt(100))
	})
	require.ErrorIs(t, err, core.ErrFrameMismatch)
	require.Equal(t, uint64(100), tok.BalanceOf(alice).Uint64())
	require.True(t, tok.Allowance(alice, bob).IsZero())
}
