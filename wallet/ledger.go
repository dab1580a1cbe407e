package wallet

import (
	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Ledger is what a wallet needs from the factory that deployed it. Calls are
// made with a frame whose caller is the wallet.
type Ledger interface {
	UpdateActivity(fr *core.Frame, wallet common.Address) error
	ContributeNetworkData(fr *core.Frame, dataHash common.Hash, dataType types.DataType, metadata []byte) (*uint256.Int, error)
}
