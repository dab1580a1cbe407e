package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/ledgerdb"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/pebble"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gofrs/flock"
	"github.com/tidwall/wal"
)

// Supported archive database engines.
const (
	EngineLevelDB = "leveldb"
	EnginePebble  = "pebble"
)

const (
	dbCache   = 16 // MB
	dbHandles = 16
)

// ErrDatadirUsed is returned when another process holds the archive lock.
var ErrDatadirUsed = errors.New("datadir already used by another process")

// Archive is a directory holding an archived ledger and the receipt log of
// the run that produced it.
type Archive struct {
	dir      string
	lock     *flock.Flock
	db       ethdb.KeyValueStore
	receipts *wal.Log
}

// OpenDatabase opens a key-value store of the given engine at dir.
func OpenDatabase(dir, engine string, readonly bool) (ethdb.KeyValueStore, error) {
	switch engine {
	case "", EngineLevelDB:
		return leveldb.New(dir, dbCache, dbHandles, "walletvm/ledger/", readonly)
	case EnginePebble:
		return pebble.New(dir, dbCache, dbHandles, "walletvm/ledger/", readonly)
	}
	return nil, fmt.Errorf("unknown database engine %q", engine)
}

// OpenArchive locks dir and opens the ledger database and receipt log in it.
func OpenArchive(dir, engine string, readonly bool) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	lock := flock.New(filepath.Join(dir, "LOCK"))
	var (
		locked bool
		err    error
	)
	if readonly {
		locked, err = lock.TryRLock()
	} else {
		locked, err = lock.TryLock()
	}
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrDatadirUsed
	}
	db, err := OpenDatabase(filepath.Join(dir, "ledger"), engine, readonly)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	receipts, err := wal.Open(filepath.Join(dir, "receipts"), nil)
	if err != nil {
		db.Close()
		lock.Unlock()
		return nil, err
	}
	log.Debug("Opened archive", "dir", dir, "engine", engine, "readonly", readonly)
	return &Archive{dir: dir, lock: lock, db: db, receipts: receipts}, nil
}

// Store writes the ledger snapshot of res and appends its receipts.
func (a *Archive) Store(res *Result) error {
	if err := ledgerdb.WriteLedger(a.db, res.Snapshot); err != nil {
		return err
	}
	if len(res.Steps) == 0 {
		return nil
	}
	last, err := a.receipts.LastIndex()
	if err != nil {
		return err
	}
	var batch wal.Batch
	for i, step := range res.Steps {
		enc, err := rlp.EncodeToBytes(step.Receipt)
		if err != nil {
			return fmt.Errorf("encode receipt %d: %w", i, err)
		}
		batch.Write(last+uint64(i)+1, enc)
	}
	if err := a.receipts.WriteBatch(&batch); err != nil {
		return fmt.Errorf("append receipts: %w", err)
	}
	log.Info("Stored run", "dir", a.dir, "run", res.RunID, "receipts", len(res.Steps))
	return nil
}

// Ledger returns the archived snapshot.
func (a *Archive) Ledger() (*types.LedgerSnapshot, error) {
	return ledgerdb.ReadLedger(a.db)
}

// Reader returns a cached record reader over the archive.
func (a *Archive) Reader(cache int) (*ledgerdb.Reader, error) {
	return ledgerdb.NewReader(a.db, cache)
}

// Receipts returns every receipt in the log, oldest first.
func (a *Archive) Receipts() ([]*core.Receipt, error) {
	first, err := a.receipts.FirstIndex()
	if err != nil {
		return nil, err
	}
	last, err := a.receipts.LastIndex()
	if err != nil {
		return nil, err
	}
	if last == 0 {
		return nil, nil
	}
	out := make([]*core.Receipt, 0, last-first+1)
	for i := first; i <= last; i++ {
		data, err := a.receipts.Read(i)
		if err != nil {
			return nil, fmt.Errorf("read receipt %d: %w", i, err)
		}
		r := new(core.Receipt)
		if err := rlp.DecodeBytes(data, r); err != nil {
			return nil, fmt.Errorf("decode receipt %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Close releases the database, the receipt log and the lock.
func (a *Archive) Close() error {
	errs := []error{a.receipts.Close(), a.db.Close(), a.lock.Unlock()}
	return errors.Join(errs...)
}
