package core

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/holiman/uint256"
)

// MaxCallDepth bounds the nesting of calls between contracts.
const MaxCallDepth = 1024

// BlockContext carries the block-level values visible to hosted contracts.
type BlockContext struct {
	Number uint64 // Incremented once per committed top-level transaction
	Time   uint64 // Unix seconds
}

// Host is the call/storage substrate that contracts run on. It processes one
// top-level transaction at a time; every transaction is atomic: either all of
// its balance changes and contract-side mutations persist, or none do.
//
// Native balances live in a go-ethereum StateDB backed by an in-memory
// database. Contract state lives in Go structs and is reverted through the
// host journal alongside the StateDB snapshots.
type Host struct {
	mu sync.Mutex // serialises top-level transactions

	state     *state.StateDB
	contracts map[common.Address]any
	journal   *journal
	block     BlockContext
}

// NewHost creates a host and applies the genesis allocation.
func NewHost(cfg *Config) (*Host, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	db := rawdb.NewMemoryDatabase()
	sdb, err := state.New(types.EmptyRootHash, state.NewDatabase(triedb.NewDatabase(db, nil), nil))
	if err != nil {
		return nil, fmt.Errorf("host state: %w", err)
	}
	ts := cfg.Time
	if ts == 0 {
		ts = uint64(time.Now().Unix())
	}
	h := &Host{
		state:     sdb,
		contracts: make(map[common.Address]any),
		journal:   newJournal(),
		block:     BlockContext{Number: cfg.Number, Time: ts},
	}
	for addr, balance := range cfg.Alloc {
		if balance == nil || balance.IsZero() {
			continue
		}
		sdb.AddBalance(addr, balance, tracing.BalanceIncreaseGenesisBalance)
	}
	sdb.Finalise(false)
	log.Debug("Initialised host", "number", h.block.Number, "time", h.block.Time, "alloc", len(cfg.Alloc))
	return h, nil
}

// Transact runs fn as a single atomic top-level call from `from` to `to`,
// transferring `value` first. If fn (or the transfer) fails, every effect of
// the call is reverted and the error is returned unchanged.
func (h *Host) Transact(from, to common.Address, value *uint256.Int, fn func(fr *Frame) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := h.snapshot()
	fr := &Frame{host: h, caller: from, self: to, value: valueOrZero(value)}

	err := h.transfer(from, to, fr.value)
	if err == nil && fn != nil {
		err = fn(fr)
	}
	if err != nil {
		h.revertToSnapshot(snap)
		h.journal.reset()
		log.Debug("Transaction reverted", "from", from, "to", to, "number", h.block.Number, "err", err)
		return err
	}
	h.commit()
	return nil
}

// Register places a contract at addr outside of any transaction, the way
// genesis contracts are installed.
func (h *Host) Register(addr common.Address, contract any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.contracts[addr]; ok {
		return fmt.Errorf("%w: %s", ErrContractCollision, addr)
	}
	h.contracts[addr] = contract
	return nil
}

// Deploy registers a contract at the first free address derived from
// deployer the way a contract creation would derive it.
func (h *Host) Deploy(deployer common.Address, contract any) (common.Address, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for nonce := uint64(0); nonce < math.MaxUint64; nonce++ {
		addr := crypto.CreateAddress(deployer, nonce)
		if _, taken := h.contracts[addr]; taken {
			continue
		}
		h.contracts[addr] = contract
		return addr, nil
	}
	return common.Address{}, fmt.Errorf("%w: deployer %s exhausted", ErrContractCollision, deployer)
}

// Contract returns the object registered at addr.
func (h *Host) Contract(addr common.Address) (any, bool) {
	c, ok := h.contracts[addr]
	return c, ok
}

// Balance returns a copy of the native balance of addr.
func (h *Host) Balance(addr common.Address) *uint256.Int {
	return new(uint256.Int).Set(h.state.GetBalance(addr))
}

// Mint credits native balance outside of any transaction.
func (h *Host) Mint(addr common.Address, amount *uint256.Int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state.AddBalance(addr, amount, tracing.BalanceIncreaseGenesisBalance)
	h.state.Finalise(false)
}

// Block returns the current block context.
func (h *Host) Block() BlockContext {
	return h.block
}

// Time returns the current block timestamp.
func (h *Host) Time() uint64 {
	return h.block.Time
}

// SetTime moves the block clock to ts.
func (h *Host) SetTime(ts uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.block.Time = ts
}

// AdvanceTime moves the block clock forward by d (truncated to seconds).
func (h *Host) AdvanceTime(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.block.Time += uint64(d / time.Second)
}

func (h *Host) snapshot() snapshot {
	return snapshot{stateID: h.state.Snapshot(), journal: h.journal.length()}
}

func (h *Host) revertToSnapshot(s snapshot) {
	h.journal.revert(s.journal)
	h.state.RevertToSnapshot(s.stateID)
}

func (h *Host) commit() {
	h.state.Finalise(false)
	h.journal.reset()
	h.block.Number++
}

// transfer moves native value. A zero amount is a no-op.
func (h *Host) transfer(from, to common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	if h.state.GetBalance(from).Lt(amount) {
		return fmt.Errorf("%w: have %s want %s", ErrInsufficientBalance, h.state.GetBalance(from), amount)
	}
	h.state.SubBalance(from, amount, tracing.BalanceChangeTransfer)
	h.state.AddBalance(to, amount, tracing.BalanceChangeTransfer)
	return nil
}

func valueOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}
