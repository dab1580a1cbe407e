package ledgerdb

import (
	"testing"

	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *types.LedgerSnapshot {
	wallet := func(id uint64, owner, addr string) *types.WalletRecord {
		return &types.WalletRecord{
			Owner:             common.HexToAddress(owner),
			Address:           common.HexToAddress(addr),
			WalletID:          id,
			Version:           1,
			CreatedAt:         1000 + id,
			LastActivity:      2000 + id,
			ContributionScore: uint256.NewInt(200 * id),
			IsActive:          id%2 == 1,
			ActiveFeatures:    []string{types.FeatureBasicTransactions},
			FeatureConfigs: []types.FeatureConfigEntry{
				{Name: types.FeatureBasicTransactions, Config: []byte{byte(id)}},
			},
		}
	}
	return &types.LedgerSnapshot{
		Factory:    common.HexToAddress("0xfac7"),
		Owner:      common.HexToAddress("0xad01"),
		Version:    2,
		RewardPool: uint256.NewInt(600),
		Stats: types.NetworkStats{
			TotalWallets:            2,
			ActiveWallets:           1,
			TotalContributions:      3,
			TotalRewardsDistributed: uint256.NewInt(400),
		},
		Catalog: []types.FeatureEntry{
			{Name: types.FeatureBasicTransactions, Available: true},
			{Name: types.FeatureStaking, Available: false},
		},
		Wallets: []*types.WalletRecord{
			wallet(1, "0xa1", "0xb1"),
			wallet(2, "0xa2", "0xb2"),
		},
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	_, err := ReadLedger(db)
	require.ErrorIs(t, err, ErrNoLedger)

	want := testSnapshot()
	require.NoError(t, WriteLedger(db, want))

	got, err := ReadLedger(db)
	require.NoError(t, err)
	require.Equal(t, want.Factory, got.Factory)
	require.Equal(t, want.Owner, got.Owner)
	require.Equal(t, want.Version, got.Version)
	require.Equal(t, want.RewardPool.Uint64(), got.RewardPool.Uint64())
	require.Equal(t, want.Stats.TotalContributions, got.Stats.TotalContributions)
	require.Equal(t, want.Stats.TotalRewardsDistributed.Uint64(), got.Stats.TotalRewardsDistributed.Uint64())
	require.Equal(t, want.Catalog, got.Catalog)

	require.Len(t, got.Wallets, 2)
	for i, rec := range got.Wallets {
		exp := want.Wallets[i]
		require.Equal(t, exp.WalletID, rec.WalletID)
		require.Equal(t, exp.Owner, rec.Owner)
		require.Equal(t, exp.Address, rec.Address)
		require.Equal(t, exp.LastActivity, rec.LastActivity)
		require.Equal(t, exp.ContributionScore.Uint64(), rec.ContributionScore.Uint64())
		require.Equal(t, exp.IsActive, rec.IsActive)
		require.Equal(t, exp.ActiveFeatures, rec.ActiveFeatures)
		cfg, ok := rec.Config(types.FeatureBasicTransactions)
		require.True(t, ok)
		require.Equal(t, []byte{byte(exp.WalletID)}, cfg)
	}
}

func TestWalletLookups(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	require.NoError(t, WriteLedger(db, testSnapshot()))

	id := ReadWalletIDByOwner(db, common.HexToAddress("0xa2"))
	require.NotNil(t, id)
	require.Equal(t, uint64(2), *id)

	id = ReadWalletIDByAddress(db, common.HexToAddress("0xb1"))
	require.NotNil(t, id)
	require.Equal(t, uint64(1), *id)

	require.Nil(t, ReadWalletIDByOwner(db, common.HexToAddress("0xdead")))
	require.Nil(t, ReadWallet(db, 3))
}

func TestReadLedgerMissingWallet(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	snap := testSnapshot()
	WriteHead(db, &Head{Factory: snap.Factory, RewardPool: uint256.NewInt(0), Stats: snap.Stats, WalletCount: 1})

	_, err := ReadLedger(db)
	require.ErrorContains(t, err, "missing wallet record 1")
}

func TestCorruptHead(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	require.NoError(t, db.Put(headKey, []byte{0xff}))
	require.Nil(t, ReadHead(db))

	_, err := ReadLedger(db)
	require.ErrorIs(t, err, ErrNoLedger)
}

func TestReaderCache(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	r, err := NewReader(db, 1)
	require.NoError(t, err)
	_, err = r.Head()
	require.ErrorIs(t, err, ErrNoLedger)

	require.NoError(t, WriteLedger(db, testSnapshot()))
	head, err := r.Head()
	require.NoError(t, err)
	require.Equal(t, uint64(2), head.WalletCount)
	require.Len(t, r.Catalog(), 2)

	rec, ok := r.WalletByOwner(common.HexToAddress("0xa1"))
	require.True(t, ok)
	require.Equal(t, uint64(1), rec.WalletID)
	require.Equal(t, 1, r.Cached())

	// Served from cache.
	again, ok := r.Wallet(1)
	require.True(t, ok)
	require.Same(t, rec, again)

	// Size one evicts the first record.
	rec, ok = r.WalletByAddress(common.HexToAddress("0xb2"))
	require.True(t, ok)
	require.Equal(t, uint64(2), rec.WalletID)
	require.Equal(t, 1, r.Cached())

	_, ok = r.Wallet(9)
	require.False(t, ok)
	_, ok = r.WalletByOwner(common.HexToAddress("0xdead"))
	require.False(t, ok)
}
