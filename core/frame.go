package core

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Frame is the execution context of one contract invocation: who called,
// which contract is running, how much value came with the call and how deep
// the call stack is. Contracts receive a Frame on every entry point and use
// it to make further calls.
type Frame struct {
	host   *Host
	caller common.Address
	self   common.Address
	value  *uint256.Int
	depth  int
}

// Caller returns the immediate caller of the running contract.
func (fr *Frame) Caller() common.Address { return fr.caller }

// Address returns the address of the running contract.
func (fr *Frame) Address() common.Address { return fr.self }

// Value returns a copy of the value transferred with this call.
func (fr *Frame) Value() *uint256.Int { return new(uint256.Int).Set(fr.value) }

// Depth returns the call depth, zero for the top-level call.
func (fr *Frame) Depth() int { return fr.depth }

// Host returns the hosting substrate.
func (fr *Frame) Host() *Host { return fr.host }

// Now returns the current block timestamp.
func (fr *Frame) Now() uint64 { return fr.host.block.Time }

// Bind checks that the frame was entered for the contract at addr. Hosted
// entry points call it first so that a callee cannot hand its own frame to
// a third contract and act with its caller's identity there.
func (fr *Frame) Bind(addr common.Address) error {
	if fr.self != addr {
		return fmt.Errorf("%w: frame for %s, contract %s", ErrFrameMismatch, fr.self, addr)
	}
	return nil
}

// Enter returns the frame for a typed call from the running contract into
// `to`. Errors raised by the callee propagate to the caller unchanged.
func (fr *Frame) Enter(to common.Address) (*Frame, error) {
	if fr.depth+1 > MaxCallDepth {
		return nil, ErrDepth
	}
	return &Frame{
		host:   fr.host,
		caller: fr.self,
		self:   to,
		value:  new(uint256.Int),
		depth:  fr.depth + 1,
	}, nil
}

// EnterWithValue is Enter with a native value transfer from the running
// contract to `to`.
func (fr *Frame) EnterWithValue(to common.Address, value *uint256.Int) (*Frame, error) {
	callee, err := fr.Enter(to)
	if err != nil {
		return nil, err
	}
	value = valueOrZero(value)
	if err := fr.host.transfer(fr.self, to, value); err != nil {
		return nil, err
	}
	callee.value = value
	return callee, nil
}

// Transfer sends native value from the running contract to `to` without
// invoking any code there.
func (fr *Frame) Transfer(to common.Address, amount *uint256.Int) error {
	return fr.host.transfer(fr.self, to, amount)
}

// Call performs an opaque call into `to`. The callee runs in its own
// snapshot: if it fails, only its effects (including the value transfer) are
// reverted and the error is returned to the caller, which may continue.
// Calls to addresses without a registered contract are plain transfers.
func (fr *Frame) Call(to common.Address, value *uint256.Int, input []byte) (ret []byte, err error) {
	snap := fr.host.snapshot()
	defer func() {
		if err != nil {
			fr.host.revertToSnapshot(snap)
		}
	}()

	callee, err := fr.EnterWithValue(to, value)
	if err != nil {
		return nil, err
	}
	obj, ok := fr.host.contracts[to]
	if !ok {
		return nil, nil
	}
	c, ok := obj.(Contract)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, to)
	}
	return c.Run(callee, input)
}

// Try runs fn in its own snapshot, reverting its effects if it fails.
func (fr *Frame) Try(fn func() error) error {
	snap := fr.host.snapshot()
	if err := fn(); err != nil {
		fr.host.revertToSnapshot(snap)
		return err
	}
	return nil
}

// Create registers a new contract at addr as part of the running
// transaction. The registration is undone if the transaction reverts.
func (fr *Frame) Create(addr common.Address, contract any) error {
	if _, ok := fr.host.contracts[addr]; ok {
		return fmt.Errorf("%w: %s", ErrContractCollision, addr)
	}
	fr.host.contracts[addr] = contract
	fr.Journal(func() { delete(fr.host.contracts, addr) })
	return nil
}

// Journal records an undo action for a contract-side mutation. Contracts must
// journal before mutating so that reverts restore the previous state.
func (fr *Frame) Journal(undo func()) {
	fr.host.journal.append(undo)
}
