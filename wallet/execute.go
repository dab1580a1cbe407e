package wallet

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// txMetadata is the metadata reported with a transaction contribution.
type txMetadata struct {
	Target  common.Address
	Success bool
}

// ExecuteTransaction performs an opaque call from the wallet. A failing call
// is not an error: it is recorded with Success=false and its revert data is
// returned. Errors are reserved for failures of the wallet itself, for
// example when the factory refuses the activity report.
func (w *Wallet) ExecuteTransaction(fr *core.Frame, target common.Address, value *uint256.Int, payload []byte) (bool, []byte, error) {
	if err := w.onlyOwner(fr); err != nil {
		return false, nil, err
	}
	if err := w.guard.Enter(); err != nil {
		return false, nil, err
	}
	defer w.guard.Exit()

	return w.execute(fr, target, value, payload)
}

// BatchExecute runs several calls in order. Each item is isolated: an item
// whose execution aborts is reverted on its own, reported as failed with the
// abort reason as result, and does not stop the batch.
func (w *Wallet) BatchExecute(fr *core.Frame, targets []common.Address, values []*uint256.Int, payloads [][]byte) ([]bool, [][]byte, error) {
	if err := w.onlyOwner(fr); err != nil {
		return nil, nil, err
	}
	if len(targets) != len(values) || len(targets) != len(payloads) {
		return nil, nil, fmt.Errorf("%w: %d targets, %d values, %d payloads", ErrArityMismatch, len(targets), len(values), len(payloads))
	}
	if err := w.guard.Enter(); err != nil {
		return nil, nil, err
	}
	defer w.guard.Exit()

	var (
		successes = make([]bool, len(targets))
		results   = make([][]byte, len(targets))
	)
	for i := range targets {
		var (
			ok  bool
			ret []byte
		)
		err := fr.Try(func() (err error) {
			ok, ret, err = w.execute(fr, targets[i], values[i], payloads[i])
			return err
		})
		if err != nil {
			log.Debug("Batch item aborted", "wallet", w.address, "index", i, "err", err)
			results[i] = []byte(err.Error())
			continue
		}
		successes[i], results[i] = ok, ret
	}
	batchMeter.Mark(1)
	return successes, results, nil
}

// execute is the shared body of single and batched transactions.
func (w *Wallet) execute(fr *core.Frame, target common.Address, value *uint256.Int, payload []byte) (bool, []byte, error) {
	ledger, callee, err := w.ledger(fr)
	if err != nil {
		return false, nil, err
	}
	if err := ledger.UpdateActivity(callee, w.address); err != nil {
		return false, nil, err
	}
	if value == nil {
		value = new(uint256.Int)
	}
	ret, callErr := fr.Call(target, value, payload)
	success := callErr == nil
	if !success {
		txFailedMeter.Mark(1)
		log.Debug("Wallet call failed", "wallet", w.address, "target", target, "value", value, "err", callErr)
		if len(ret) == 0 {
			ret = []byte(callErr.Error())
		}
	} else {
		txSucceededMeter.Mark(1)
	}
	core.Append(fr, &w.history, types.TxRecord{
		Target:    target,
		Value:     new(uint256.Int).Set(value),
		Payload:   slices.Clone(payload),
		Timestamp: fr.Now(),
		Success:   success,
	})
	dataHash := txHash(w.address, w.nonce, target, value, payload)
	core.Set(fr, &w.nonce, w.nonce+1)

	meta, err := rlp.EncodeToBytes(&txMetadata{Target: target, Success: success})
	if err != nil {
		return false, nil, err
	}
	if _, err := ledger.ContributeNetworkData(callee, dataHash, types.DataTransaction, meta); err != nil {
		return false, nil, err
	}
	return success, ret, nil
}

// ContributeData reports arbitrary data to the factory and returns the
// reward paid for it.
func (w *Wallet) ContributeData(fr *core.Frame, dataHash common.Hash, dataType types.DataType, metadata []byte) (*uint256.Int, error) {
	if err := w.onlyOwner(fr); err != nil {
		return nil, err
	}
	ledger, callee, err := w.ledger(fr)
	if err != nil {
		return nil, err
	}
	return ledger.ContributeNetworkData(callee, dataHash, dataType, metadata)
}

// txHash identifies a wallet transaction for contribution reporting.
func txHash(wallet common.Address, nonce uint64, target common.Address, value *uint256.Int, payload []byte) common.Hash {
	v := value.Bytes32()
	return crypto.Keccak256Hash(wallet.Bytes(), binary.BigEndian.AppendUint64(nil, nonce), target.Bytes(), v[:], payload)
}
