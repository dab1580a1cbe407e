// Package ledgerdb persists factory ledger snapshots into a key-value store.
package ledgerdb

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// The fields below define the low level database schema prefixing.
var (
	// headKey tracks the ledger-wide header of the latest archived snapshot.
	headKey = []byte("LedgerHead")

	// catalogKey tracks the feature catalog of the latest archived snapshot.
	catalogKey = []byte("LedgerCatalog")

	walletPrefix  = []byte("w") // walletPrefix + id (uint64 big endian) -> wallet record
	ownerPrefix   = []byte("o") // ownerPrefix + owner address -> id
	addressPrefix = []byte("a") // addressPrefix + wallet address -> id
)

// encodeWalletID encodes a wallet id as big endian uint64.
func encodeWalletID(id uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, id)
	return enc
}

// walletKey = walletPrefix + id (uint64 big endian)
func walletKey(id uint64) []byte {
	return append(append([]byte{}, walletPrefix...), encodeWalletID(id)...)
}

// ownerKey = ownerPrefix + owner
func ownerKey(owner common.Address) []byte {
	return append(append([]byte{}, ownerPrefix...), owner.Bytes()...)
}

// addressKey = addressPrefix + wallet
func addressKey(wallet common.Address) []byte {
	return append(append([]byte{}, addressPrefix...), wallet.Bytes()...)
}
