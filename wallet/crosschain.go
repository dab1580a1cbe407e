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
)

// CrossChainAction is an outbound action recorded for a relayer to pick up.
type CrossChainAction struct {
	ID        common.Hash
	ChainID   uint64
	Payload   []byte
	Nonce     uint64
	CreatedAt uint64
}

// InitiateCrossChain records an action for chainID and reports it as a
// cross-chain contribution. The returned id is unique per wallet nonce.
func (w *Wallet) InitiateCrossChain(fr *core.Frame, chainID uint64, payload []byte) (common.Hash, error) {
	if err := w.onlyOwner(fr); err != nil {
		return common.Hash{}, err
	}
	feature, err := w.requireFeature(types.FeatureCrossChain)
	if err != nil {
		return common.Hash{}, err
	}
	if allowed := feature.(*CrossChain).Chains; len(allowed) > 0 && !slices.Contains(allowed, chainID) {
		return common.Hash{}, fmt.Errorf("%w: %d", ErrChainNotAllowed, chainID)
	}
	action := &CrossChainAction{
		ChainID:   chainID,
		Payload:   slices.Clone(payload),
		Nonce:     w.nonce,
		CreatedAt: fr.Now(),
	}
	action.ID = crypto.Keccak256Hash(
		w.address.Bytes(),
		binary.BigEndian.AppendUint64(nil, chainID),
		binary.BigEndian.AppendUint64(nil, action.Nonce),
		binary.BigEndian.AppendUint64(nil, action.CreatedAt),
		payload,
	)
	core.Put(fr, w.actions, action.ID, action)
	core.Set(fr, &w.nonce, w.nonce+1)

	ledger, callee, err := w.ledger(fr)
	if err != nil {
		return common.Hash{}, err
	}
	if _, err := ledger.ContributeNetworkData(callee, action.ID, types.DataCrossChain, binary.BigEndian.AppendUint64(nil, chainID)); err != nil {
		return common.Hash{}, err
	}
	crossChainMeter.Mark(1)
	log.Info("Initiated cross-chain action", "wallet", w.address, "chain", chainID, "id", action.ID)
	return action.ID, nil
}

// CrossChainAction returns a recorded action by id.
func (w *Wallet) CrossChainAction(id common.Hash) (*CrossChainAction, bool) {
	a, ok := w.actions[id]
	if !ok {
		return nil, false
	}
	cpy := *a
	cpy.Payload = slices.Clone(a.Payload)
	return &cpy, true
}
