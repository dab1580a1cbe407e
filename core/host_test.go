package core

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob   = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	carol = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
)

var errBoom = errors.New("boom")

func newTestHost(t *testing.T) *Host {
	t.Helper()
	h, err := NewHost(&Config{
		Time:  1_700_000_000,
		Alloc: map[common.Address]*uint256.Int{alice: uint256.NewInt(1000)},
	})
	require.NoError(t, err)
	return h
}

// counter is a hosted contract whose state lives in Go and is journaled.
type counter struct {
	n    int
	fail bool
}

func (c *counter) Run(fr *Frame, input []byte) ([]byte, error) {
	Set(fr, &c.n, c.n+1)
	if c.fail {
		return []byte("nope"), errBoom
	}
	return []byte{byte(c.n)}, nil
}

func TestHostGenesis(t *testing.T) {
	h := newTestHost(t)
	require.Equal(t, uint64(1000), h.Balance(alice).Uint64())
	require.True(t, h.Balance(bob).IsZero())
	require.Equal(t, uint64(1_700_000_000), h.Time())
}

func TestTransactCommitsAndReverts(t *testing.T) {
	h := newTestHost(t)
	c := &counter{}
	require.NoError(t, h.Register(carol, c))

	// Successful transaction keeps both the transfer and the Go-side state.
	err := h.Transact(alice, bob, uint256.NewInt(100), func(fr *Frame) error {
		Set(fr, &c.n, 7)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, uint64(900), h.Balance(alice).Uint64())
	require.Equal(t, uint64(100), h.Balance(bob).Uint64())
	require.Equal(t, 7, c.n)
	require.Equal(t, uint64(1), h.Block().Number)

	// A failing transaction leaves nothing behind.
	err = h.Transact(alice, bob, uint256.NewInt(100), func(fr *Frame) error {
		Set(fr, &c.n, 42)
		require.NoError(t, fr.Transfer(carol, uint256.NewInt(50)))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, uint64(900), h.Balance(alice).Uint64())
	require.Equal(t, uint64(100), h.Balance(bob).Uint64())
	require.True(t, h.Balance(carol).IsZero())
	require.Equal(t, 7, c.n)
	require.Equal(t, uint64(1), h.Block().Number)
}

func TestTransactInsufficientBalance(t *testing.T) {
	h := newTestHost(t)
	called := false
	err := h.Transact(bob, alice, uint256.NewInt(1), func(fr *Frame) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.False(t, called)
}

func TestCallIsolatesCalleeFailure(t *testing.T) {
	h := newTestHost(t)
	ok, bad := &counter{}, &counter{fail: true}
	require.NoError(t, h.Register(bob, ok))
	require.NoError(t, h.Register(carol, bad))

	err := h.Transact(alice, alice, nil, func(fr *Frame) error {
		ret, err := fr.Call(bob, uint256.NewInt(10), nil)
		require.NoError(t, err)
		require.Equal(t, []byte{1}, ret)

		ret, err = fr.Call(carol, uint256.NewInt(20), nil)
		require.ErrorIs(t, err, errBoom)
		require.Equal(t, []byte("nope"), ret)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, ok.n)
	require.Equal(t, 0, bad.n)
	require.Equal(t, uint64(10), h.Balance(bob).Uint64())
	require.True(t, h.Balance(carol).IsZero())
	require.Equal(t, uint64(990), h.Balance(alice).Uint64())
}

func TestCallTargets(t *testing.T) {
	h := newTestHost(t)
	require.NoError(t, h.Register(carol, struct{}{}))

	err := h.Transact(alice, alice, nil, func(fr *Frame) error {
		// Unregistered addresses accept plain transfers.
		ret, err := fr.Call(bob, uint256.NewInt(5), []byte{1, 2, 3})
		require.NoError(t, err)
		require.Nil(t, ret)

		_, err = fr.Call(carol, nil, nil)
		require.ErrorIs(t, err, ErrNotCallable)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, uint64(5), h.Balance(bob).Uint64())
}

func TestTryRevertsOnlyItsOwnEffects(t *testing.T) {
	h := newTestHost(t)
	var log []string
	err := h.Transact(alice, alice, nil, func(fr *Frame) error {
		Append(fr, &log, "before")
		err := fr.Try(func() error {
			Append(fr, &log, "inside")
			require.NoError(t, fr.Transfer(bob, uint256.NewInt(1)))
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)
		Append(fr, &log, "after")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"before", "after"}, log)
	require.True(t, h.Balance(bob).IsZero())
}

func TestCreateIsJournaled(t *testing.T) {
	h := newTestHost(t)
	err := h.Transact(alice, alice, nil, func(fr *Frame) error {
		require.NoError(t, fr.Create(carol, &counter{}))
		require.ErrorIs(t, fr.Create(carol, &counter{}), ErrContractCollision)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	_, ok := h.Contract(carol)
	require.False(t, ok)
}

func TestPutRestoresMapEntries(t *testing.T) {
	h := newTestHost(t)
	m := map[string]int{"a": 1}
	err := h.Transact(alice, alice, nil, func(fr *Frame) error {
		Put(fr, m, "a", 2)
		Put(fr, m, "b", 3)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, map[string]int{"a": 1}, m)
}

func TestDeployDerivesFreshAddresses(t *testing.T) {
	h := newTestHost(t)
	a1, err := h.Deploy(alice, &counter{})
	require.NoError(t, err)
	a2, err := h.Deploy(alice, &counter{})
	require.NoError(t, err)
	require.NotEqual(t, a1, a2)

	_, ok := h.Contract(a1)
	require.True(t, ok)
}

func TestAdvanceTime(t *testing.T) {
	h := newTestHost(t)
	h.AdvanceTime(48 * time.Hour)
	require.Equal(t, uint64(1_700_000_000+172800), h.Time())

	h.SetTime(5)
	var now uint64
	require.NoError(t, h.Transact(alice, alice, nil, func(fr *Frame) error {
		now = fr.Now()
		return nil
	}))
	require.Equal(t, uint64(5), now)
}

func TestApplyMessage(t *testing.T) {
	h := newTestHost(t)
	c := &counter{fail: true}
	require.NoError(t, h.Register(carol, c))

	var exec TxExecutor = h
	receipt, err := exec.ApplyMessage(&Message{From: alice, To: bob, Value: uint256.NewInt(3)})
	require.NoError(t, err)
	require.True(t, receipt.Succeeded())
	require.Equal(t, uint64(3), h.Balance(bob).Uint64())

	receipt, err = exec.ApplyMessage(&Message{From: alice, To: carol, Value: uint256.NewInt(3)})
	require.NoError(t, err)
	require.False(t, receipt.Succeeded())
	require.Contains(t, receipt.Err, "boom")
	require.True(t, h.Balance(carol).IsZero())

	_, err = exec.ApplyMessage(nil)
	require.Error(t, err)
}

func TestGuard(t *testing.T) {
	var g Guard
	require.NoError(t, g.Enter())
	require.True(t, g.Entered())
	require.ErrorIs(t, g.Enter(), ErrReentrantCall)
	g.Exit()
	require.False(t, g.Entered())
	require.NoError(t, g.Enter())
}

func TestBind(t *testing.T) {
	h := newTestHost(t)
	err := h.Transact(alice, bob, nil, func(fr *Frame) error {
		require.NoError(t, fr.Bind(bob))
		require.ErrorIs(t, fr.Bind(carol), ErrFrameMismatch)

		// A frame entered for carol binds to carol only.
		callee, err := fr.Enter(carol)
		require.NoError(t, err)
		require.Equal(t, bob, callee.Caller())
		require.NoError(t, callee.Bind(carol))
		require.ErrorIs(t, callee.Bind(bob), ErrFrameMismatch)
		return nil
	})
	require.NoError(t, err)
}

func TestEnterDepthLimit(t *testing.T) {
	h := newTestHost(t)
	err := h.Transact(alice, alice, nil, func(fr *Frame) error {
		var err error
		for i := 0; i < MaxCallDepth; i++ {
			if fr, err = fr.Enter(alice); err != nil {
				return err
			}
		}
		require.Equal(t, MaxCallDepth, fr.Depth())

		_, err = fr.Enter(bob)
		require.ErrorIs(t, err, ErrDepth)
		_, err = fr.EnterWithValue(bob, uint256.NewInt(1))
		require.ErrorIs(t, err, ErrDepth)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1000), h.Balance(alice).Uint64())
}
