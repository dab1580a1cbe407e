package wallet

import (
	"fmt"
	"slices"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// InteractWithDeFi forwards an opaque call to a DeFi protocol and reports
// it as a DeFi contribution. Unlike ExecuteTransaction, a failing protocol
// call fails the whole operation.
func (w *Wallet) InteractWithDeFi(fr *core.Frame, protocol common.Address, data []byte) ([]byte, error) {
	if err := w.onlyOwner(fr); err != nil {
		return nil, err
	}
	feature, err := w.requireFeature(types.FeatureDeFiIntegration)
	if err != nil {
		return nil, err
	}
	if allowed := feature.(*DeFiIntegration).Protocols; len(allowed) > 0 && !slices.Contains(allowed, protocol) {
		return nil, fmt.Errorf("%w: %s", ErrProtocolNotAllowed, protocol)
	}
	if err := w.guard.Enter(); err != nil {
		return nil, err
	}
	defer w.guard.Exit()

	ret, err := fr.Call(protocol, nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExternalCallFailed, protocol, err)
	}
	ledger, callee, err := w.ledger(fr)
	if err != nil {
		return nil, err
	}
	if _, err := ledger.ContributeNetworkData(callee, crypto.Keccak256Hash(protocol.Bytes(), data), types.DataDeFi, protocol.Bytes()); err != nil {
		return nil, err
	}
	log.Debug("DeFi interaction", "wallet", w.address, "protocol", protocol, "input", len(data), "output", len(ret))
	return ret, nil
}
