package scenario

import (
	"testing"

	"github.com/clydemeng/walletvm/core/types"
	"github.com/clydemeng/walletvm/factory"
	"github.com/clydemeng/walletvm/wallet"
	"github.com/stretchr/testify/require"
)

func TestRunLedgerScenario(t *testing.T) {
	s, err := Load("testdata/ledger.toml")
	require.NoError(t, err)
	res, err := Run(s)
	require.NoError(t, err)

	require.NotEmpty(t, res.RunID)
	require.Equal(t, "ledger", res.Scenario)
	require.Zero(t, res.Mismatches())
	require.Len(t, res.Steps, 9)

	require.Equal(t, "pool=1000", res.Steps[0].Output)
	require.ErrorIs(t, res.Steps[2].Err, factory.ErrDuplicateWallet)
	require.ErrorIs(t, res.Steps[3].Err, factory.ErrUnknownFeature)
	require.Equal(t, "reward=500", res.Steps[4].Output)
	require.Equal(t, "pool=100", res.Steps[5].Output)
	require.Equal(t, "reward=0", res.Steps[6].Output)
	require.Equal(t, "success=true ret=0x", res.Steps[7].Output)

	// Failed steps still produce receipts.
	require.False(t, res.Steps[2].Receipt.Succeeded())
	require.NotEmpty(t, res.Steps[2].Receipt.Err)
	require.True(t, res.Steps[4].Receipt.Succeeded())

	require.Equal(t, uint64(3), res.Contributions)
	require.Equal(t, uint64(500), res.RewardsPaid.Uint64())
	require.Equal(t, uint64(100), res.Snapshot.RewardPool.Uint64())
	require.Len(t, res.Snapshot.Wallets, 1)

	rec := res.Snapshot.Wallets[0]
	require.Equal(t, alice, rec.Owner)
	require.Equal(t, uint64(1), rec.WalletID)
	require.Equal(t, []string{types.FeatureBasicTransactions}, rec.ActiveFeatures)
	require.Equal(t, uint64(500), rec.ContributionScore.Uint64())
}

func TestRunRecoveryScenario(t *testing.T) {
	s, err := Load("testdata/recovery.yaml")
	require.NoError(t, err)
	res, err := Run(s)
	require.NoError(t, err)
	require.Zero(t, res.Mismatches())

	require.Equal(t, "readyAt=1700172800", res.Steps[2].Output)
	require.ErrorIs(t, res.Steps[3].Err, wallet.ErrTimelockNotMet)
	require.Equal(t, "time=1700172800", res.Steps[4].Output)
	require.Equal(t, "owner="+dave.Hex(), res.Steps[5].Output)
	require.ErrorIs(t, res.Steps[8].Err, wallet.ErrStakingFailed)
	require.Equal(t, "staked=500", res.Steps[9].Output)
}

func TestMismatchesCounted(t *testing.T) {
	s := &Scenario{
		Name:    "mismatch",
		Genesis: GenesisConfig{Time: 1},
		Factory: FactoryConfig{Owner: admin.Hex()},
		Steps: []Step{
			// Succeeds although a revert is expected.
			{Op: "createWallet", From: alice.Hex(), Expect: ExpectRevert},
			// Reverts although success is expected.
			{Op: "createWallet", From: alice.Hex()},
			{Op: "advanceTime", Duration: "1s"},
		},
	}
	require.NoError(t, s.Validate())
	res, err := Run(s)
	require.NoError(t, err)
	require.Equal(t, 2, res.Mismatches())
	require.False(t, res.Steps[0].Expected)
	require.False(t, res.Steps[1].Expected)
	require.True(t, res.Steps[2].Expected)
}

func TestStepsWithoutToken(t *testing.T) {
	env, err := Setup(&Scenario{Genesis: GenesisConfig{Time: 1}, Factory: FactoryConfig{Owner: admin.Hex()}}, nil)
	require.NoError(t, err)

	res := env.Apply(0, &Step{Op: "mintToken", From: admin.Hex(), To: alice.Hex(), Amount: "1"})
	require.ErrorIs(t, res.Err, errNoToken)

	res = env.Apply(1, &Step{Op: "createWallet", From: alice.Hex(), Features: []string{types.FeatureStaking}})
	require.NoError(t, res.Err)
	addr, ok := env.Factory.GetWallet(alice)
	require.True(t, ok)
	require.Equal(t, addr.Hex(), res.Output)

	res = env.Apply(2, &Step{Op: "stake", From: alice.Hex(), Amount: "1"})
	require.ErrorIs(t, res.Err, errNoToken)
	require.False(t, res.Receipt.Succeeded())
}
