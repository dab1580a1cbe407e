package ledgerdb

import (
	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	lru "github.com/hashicorp/golang-lru"
)

const defaultCacheSize = 256

// Reader serves wallet records from an archive through an LRU cache.
// Returned records are shared with the cache and must not be modified.
type Reader struct {
	db      ethdb.KeyValueReader
	records *lru.Cache // id -> *types.WalletRecord
}

// NewReader returns a reader caching up to size records. A non-positive size
// selects the default.
func NewReader(db ethdb.KeyValueReader, size int) (*Reader, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Reader{db: db, records: cache}, nil
}

// Head returns the archived ledger header.
func (r *Reader) Head() (*Head, error) {
	head := ReadHead(r.db)
	if head == nil {
		return nil, ErrNoLedger
	}
	return head, nil
}

// Catalog returns the archived feature catalog.
func (r *Reader) Catalog() []types.FeatureEntry {
	return ReadCatalog(r.db)
}

// Wallet returns the record with the given id.
func (r *Reader) Wallet(id uint64) (*types.WalletRecord, bool) {
	if cached, ok := r.records.Get(id); ok {
		return cached.(*types.WalletRecord), true
	}
	rec := ReadWallet(r.db, id)
	if rec == nil {
		return nil, false
	}
	r.records.Add(id, rec)
	return rec, true
}

// WalletByOwner returns the record of the wallet owned by owner.
func (r *Reader) WalletByOwner(owner common.Address) (*types.WalletRecord, bool) {
	id := ReadWalletIDByOwner(r.db, owner)
	if id == nil {
		return nil, false
	}
	return r.Wallet(*id)
}

// WalletByAddress returns the record of the wallet at addr.
func (r *Reader) WalletByAddress(addr common.Address) (*types.WalletRecord, bool) {
	id := ReadWalletIDByAddress(r.db, addr)
	if id == nil {
		return nil, false
	}
	return r.Wallet(*id)
}

// Cached reports how many records are currently cached.
func (r *Reader) Cached() int {
	return r.records.Len()
}
