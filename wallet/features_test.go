package wallet

import (
	"testing"

	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestParseFeatureDefaults(t *testing.T) {
	tests := []struct {
		name string
		kind FeatureKind
	}{
		{types.FeatureBasicTransactions, KindBasicTransactions},
		{types.FeatureDeFiIntegration, KindDeFiIntegration},
		{types.FeatureCrossChain, KindCrossChain},
		{types.FeatureAIStrategies, KindAIStrategies},
		{types.FeatureSocialRecovery, KindSocialRecovery},
		{types.FeatureStaking, KindStaking},
		{"nft_gallery", KindOpaque},
	}
	for _, tt := range tests {
		f, err := ParseFeature(tt.name, nil)
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.kind, f.Kind(), tt.name)
		require.Equal(t, tt.name, f.Name())
	}
}

func TestParseFeatureConfigs(t *testing.T) {
	strategies := []Strategy{{Name: "momentum", Params: []byte{1, 2}}, {Name: "hedge"}}
	enc, err := EncodeStrategies(strategies)
	require.NoError(t, err)
	f, err := ParseFeature(types.FeatureAIStrategies, enc)
	require.NoError(t, err)
	ai := f.(*AIStrategies)
	require.Len(t, ai.Strategies, 2)
	require.Equal(t, "momentum", ai.Strategies[0].Name)
	require.Equal(t, []byte{1, 2}, ai.Strategies[0].Params)

	guardian := common.HexToAddress("0x1111111111111111111111111111111111111111")
	enc, err = EncodeRecoveryConfig(RecoveryConfig{Guardians: []common.Address{guardian}, Threshold: 1})
	require.NoError(t, err)
	f, err = ParseFeature(types.FeatureSocialRecovery, enc)
	require.NoError(t, err)
	rec := f.(*SocialRecovery)
	require.Equal(t, []common.Address{guardian}, rec.Guardians)
	require.Equal(t, uint64(1), rec.Threshold)

	enc, err = EncodeChains([]uint64{1, 56})
	require.NoError(t, err)
	f, err = ParseFeature(types.FeatureCrossChain, enc)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 56}, f.(*CrossChain).Chains)

	f, err = ParseFeature("nft_gallery", []byte{0xde, 0xad})
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad}, f.(*Opaque).Raw)
}

func TestParseFeatureInvalidConfig(t *testing.T) {
	for _, name := range []string{types.FeatureDeFiIntegration, types.FeatureAIStrategies, types.FeatureSocialRecovery} {
		_, err := ParseFeature(name, []byte{0xff, 0x00})
		require.ErrorIs(t, err, ErrInvalidFeatureConfig, name)
	}
	// Features without configuration ignore whatever they are given.
	_, err := ParseFeature(types.FeatureStaking, []byte{0xff})
	require.NoError(t, err)
}
