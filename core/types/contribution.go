package types

import "fmt"

// DataType classifies the contribution a wallet reports to the ledger. The
// ledger derives the reward from it.
type DataType uint8

const (
	DataUnknown     DataType = iota
	DataTransaction          // executeTransaction audit report
	DataDeFi                 // DeFi protocol interaction
	DataCrossChain           // cross-chain intent
	DataAIInsight            // AI strategy output shared by the owner
)

// String implements fmt.Stringer.
func (t DataType) String() string {
	switch t {
	case DataTransaction:
		return "transaction"
	case DataDeFi:
		return "defi"
	case DataCrossChain:
		return "cross-chain"
	case DataAIInsight:
		return "ai-insight"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}
