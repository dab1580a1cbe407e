package factory

import (
	"maps"
	"slices"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// walletRecord is the ledger entry of one wallet.
type walletRecord struct {
	owner        common.Address
	address      common.Address
	id           uint64
	version      uint64
	createdAt    uint64
	lastActivity uint64
	score        *uint256.Int
	active       bool
	features     []string
	configs      map[string][]byte
}

// project returns a detached copy of the record.
func (r *walletRecord) project() *types.WalletRecord {
	out := &types.WalletRecord{
		Owner:             r.owner,
		Address:           r.address,
		WalletID:          r.id,
		Version:           r.version,
		CreatedAt:         r.createdAt,
		LastActivity:      r.lastActivity,
		ContributionScore: new(uint256.Int).Set(r.score),
		IsActive:          r.active,
		ActiveFeatures:    slices.Clone(r.features),
	}
	for _, name := range slices.Sorted(maps.Keys(r.configs)) {
		out.FeatureConfigs = append(out.FeatureConfigs, types.FeatureConfigEntry{
			Name:   name,
			Config: slices.Clone(r.configs[name]),
		})
	}
	return out
}

// registry is an arena of wallet records indexed by dense wallet id, with
// secondary indexes from owner and wallet address to id.
type registry struct {
	records   []*walletRecord // records[id-1]
	byOwner   map[common.Address]uint64
	byAddress map[common.Address]uint64
}

func newRegistry() *registry {
	return &registry{
		byOwner:   make(map[common.Address]uint64),
		byAddress: make(map[common.Address]uint64),
	}
}

// nextID returns the id the next inserted record will receive. Ids start at
// one and are never reused.
func (r *registry) nextID() uint64 {
	return uint64(len(r.records)) + 1
}

func (r *registry) len() int {
	return len(r.records)
}

func (r *registry) byID(id uint64) (*walletRecord, bool) {
	if id == 0 || id > uint64(len(r.records)) {
		return nil, false
	}
	return r.records[id-1], true
}

func (r *registry) lookupOwner(owner common.Address) (*walletRecord, bool) {
	id, ok := r.byOwner[owner]
	if !ok {
		return nil, false
	}
	return r.byID(id)
}

func (r *registry) lookupWallet(addr common.Address) (*walletRecord, bool) {
	id, ok := r.byAddress[addr]
	if !ok {
		return nil, false
	}
	return r.byID(id)
}

// insert appends rec, which must carry id nextID().
func (r *registry) insert(fr *core.Frame, rec *walletRecord) {
	r.records = append(r.records, rec)
	r.byOwner[rec.owner] = rec.id
	r.byAddress[rec.address] = rec.id
	fr.Journal(func() {
		r.records = r.records[:len(r.records)-1]
		delete(r.byOwner, rec.owner)
		delete(r.byAddress, rec.address)
	})
}

func (r *registry) setLastActivity(fr *core.Frame, rec *walletRecord, ts uint64) {
	prev := rec.lastActivity
	rec.lastActivity = ts
	fr.Journal(func() { rec.lastActivity = prev })
}

func (r *registry) setScore(fr *core.Frame, rec *walletRecord, score *uint256.Int) {
	prev := rec.score
	rec.score = new(uint256.Int).Set(score)
	fr.Journal(func() { rec.score = prev })
}

func (r *registry) setActive(fr *core.Frame, rec *walletRecord, active bool) {
	prev := rec.active
	rec.active = active
	fr.Journal(func() { rec.active = prev })
}

func (r *registry) setVersion(fr *core.Frame, rec *walletRecord, version uint64) {
	prev := rec.version
	rec.version = version
	fr.Journal(func() { rec.version = prev })
}

func (r *registry) appendFeature(fr *core.Frame, rec *walletRecord, name string) {
	rec.features = append(rec.features, name)
	fr.Journal(func() { rec.features = rec.features[:len(rec.features)-1] })
}

func (r *registry) setFeatureConfig(fr *core.Frame, rec *walletRecord, name string, config []byte) {
	prev, existed := rec.configs[name]
	rec.configs[name] = slices.Clone(config)
	fr.Journal(func() {
		if existed {
			rec.configs[name] = prev
		} else {
			delete(rec.configs, name)
		}
	})
}
