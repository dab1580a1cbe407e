package ledgerdb

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// ErrNoLedger is returned when a database holds no archived ledger.
var ErrNoLedger = errors.New("no ledger archived")

// Head is the ledger-wide part of an archived snapshot.
type Head struct {
	Factory     common.Address
	Owner       common.Address
	Version     uint64
	RewardPool  *uint256.Int
	Stats       types.NetworkStats
	WalletCount uint64
}

// ReadHead retrieves the ledger header.
func ReadHead(db ethdb.KeyValueReader) *Head {
	data, _ := db.Get(headKey)
	if len(data) == 0 {
		return nil
	}
	head := new(Head)
	if err := rlp.DecodeBytes(data, head); err != nil {
		log.Error("Invalid ledger head RLP", "err", err)
		return nil
	}
	return head
}

// WriteHead stores the ledger header.
func WriteHead(db ethdb.KeyValueWriter, head *Head) {
	data, err := rlp.EncodeToBytes(head)
	if err != nil {
		log.Crit("Failed to RLP encode ledger head", "err", err)
	}
	if err := db.Put(headKey, data); err != nil {
		log.Crit("Failed to store ledger head", "err", err)
	}
}

// ReadCatalog retrieves the archived feature catalog.
func ReadCatalog(db ethdb.KeyValueReader) []types.FeatureEntry {
	data, _ := db.Get(catalogKey)
	if len(data) == 0 {
		return nil
	}
	var entries []types.FeatureEntry
	if err := rlp.DecodeBytes(data, &entries); err != nil {
		log.Error("Invalid feature catalog RLP", "err", err)
		return nil
	}
	return entries
}

// WriteCatalog stores the feature catalog.
func WriteCatalog(db ethdb.KeyValueWriter, entries []types.FeatureEntry) {
	data, err := rlp.EncodeToBytes(entries)
	if err != nil {
		log.Crit("Failed to RLP encode feature catalog", "err", err)
	}
	if err := db.Put(catalogKey, data); err != nil {
		log.Crit("Failed to store feature catalog", "err", err)
	}
}

// ReadWallet retrieves the wallet record with the given id.
func ReadWallet(db ethdb.KeyValueReader, id uint64) *types.WalletRecord {
	data, _ := db.Get(walletKey(id))
	if len(data) == 0 {
		return nil
	}
	rec := new(types.WalletRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		log.Error("Invalid wallet record RLP", "id", id, "err", err)
		return nil
	}
	return rec
}

// WriteWallet stores a wallet record together with its owner and address
// lookup entries.
func WriteWallet(db ethdb.KeyValueWriter, rec *types.WalletRecord) {
	data, err := rlp.EncodeToBytes(rec)
	if err != nil {
		log.Crit("Failed to RLP encode wallet record", "err", err)
	}
	if err := db.Put(walletKey(rec.WalletID), data); err != nil {
		log.Crit("Failed to store wallet record", "err", err)
	}
	id := encodeWalletID(rec.WalletID)
	if err := db.Put(ownerKey(rec.Owner), id); err != nil {
		log.Crit("Failed to store wallet owner lookup", "err", err)
	}
	if err := db.Put(addressKey(rec.Address), id); err != nil {
		log.Crit("Failed to store wallet address lookup", "err", err)
	}
}

// ReadWalletIDByOwner retrieves the id of the wallet owned by owner.
func ReadWalletIDByOwner(db ethdb.KeyValueReader, owner common.Address) *uint64 {
	return readID(db, ownerKey(owner))
}

// ReadWalletIDByAddress retrieves the id of the wallet at addr.
func ReadWalletIDByAddress(db ethdb.KeyValueReader, addr common.Address) *uint64 {
	return readID(db, addressKey(addr))
}

func readID(db ethdb.KeyValueReader, key []byte) *uint64 {
	data, _ := db.Get(key)
	if len(data) != 8 {
		return nil
	}
	id := binary.BigEndian.Uint64(data)
	return &id
}

// WriteLedger archives a complete snapshot in one batch.
func WriteLedger(db ethdb.Batcher, snap *types.LedgerSnapshot) error {
	batch := db.NewBatch()
	WriteHead(batch, &Head{
		Factory:     snap.Factory,
		Owner:       snap.Owner,
		Version:     snap.Version,
		RewardPool:  snap.RewardPool,
		Stats:       snap.Stats,
		WalletCount: uint64(len(snap.Wallets)),
	})
	WriteCatalog(batch, snap.Catalog)
	for _, rec := range snap.Wallets {
		WriteWallet(batch, rec)
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("write ledger batch: %w", err)
	}
	log.Info("Archived ledger", "factory", snap.Factory, "wallets", len(snap.Wallets), "size", batch.ValueSize())
	return nil
}

// ReadLedger reassembles the archived snapshot.
func ReadLedger(db ethdb.KeyValueReader) (*types.LedgerSnapshot, error) {
	head := ReadHead(db)
	if head == nil {
		return nil, ErrNoLedger
	}
	snap := &types.LedgerSnapshot{
		Factory:    head.Factory,
		Owner:      head.Owner,
		Version:    head.Version,
		RewardPool: head.RewardPool,
		Stats:      head.Stats,
		Catalog:    ReadCatalog(db),
		Wallets:    make([]*types.WalletRecord, 0, head.WalletCount),
	}
	for id := uint64(1); id <= head.WalletCount; id++ {
		rec := ReadWallet(db, id)
		if rec == nil {
			return nil, fmt.Errorf("missing wallet record %d of %d", id, head.WalletCount)
		}
		snap.Wallets = append(snap.Wallets, rec)
	}
	return snap, nil
}
