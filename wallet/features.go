package wallet

import (
	"fmt"

	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// FeatureKind tags the variants of Feature.
type FeatureKind uint8

const (
	KindOpaque FeatureKind = iota // catalogued but not interpreted by the wallet
	KindBasicTransactions
	KindDeFiIntegration
	KindCrossChain
	KindAIStrategies
	KindSocialRecovery
	KindStaking
)

// String implements fmt.Stringer.
func (k FeatureKind) String() string {
	switch k {
	case KindOpaque:
		return "opaque"
	case KindBasicTransactions:
		return types.FeatureBasicTransactions
	case KindDeFiIntegration:
		return types.FeatureDeFiIntegration
	case KindCrossChain:
		return types.FeatureCrossChain
	case KindAIStrategies:
		return types.FeatureAIStrategies
	case KindSocialRecovery:
		return types.FeatureSocialRecovery
	case KindStaking:
		return types.FeatureStaking
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Feature is a decoded feature activation. Each variant carries its own
// typed configuration; names the wallet does not know become *Opaque.
type Feature interface {
	Kind() FeatureKind
	Name() string
}

type (
	// BasicTransactions has no configuration.
	BasicTransactions struct{}

	// DeFiIntegration optionally restricts the protocols the wallet may
	// call. An empty list allows any protocol.
	DeFiIntegration struct {
		Protocols []common.Address
	}

	// CrossChain optionally restricts the destination chains. An empty list
	// allows any chain.
	CrossChain struct {
		Chains []uint64
	}

	// AIStrategies carries the initial strategy table.
	AIStrategies struct {
		Strategies []Strategy
	}

	// SocialRecovery carries an optional initial guardian set.
	SocialRecovery struct {
		RecoveryConfig
	}

	// Staking has no configuration.
	Staking struct{}

	// Opaque is any other catalogued feature; its config is kept verbatim.
	Opaque struct {
		FeatureName string
		Raw         []byte
	}
)

// Strategy is a named, opaque AI strategy configuration.
type Strategy struct {
	Name   string
	Params []byte
}

// RecoveryConfig is a guardian set with the number of guardians it requires.
type RecoveryConfig struct {
	Guardians []common.Address
	Threshold uint64
}

func (BasicTransactions) Kind() FeatureKind { return KindBasicTransactions }
func (*DeFiIntegration) Kind() FeatureKind  { return KindDeFiIntegration }
func (*CrossChain) Kind() FeatureKind       { return KindCrossChain }
func (*AIStrategies) Kind() FeatureKind     { return KindAIStrategies }
func (*SocialRecovery) Kind() FeatureKind   { return KindSocialRecovery }
func (Staking) Kind() FeatureKind           { return KindStaking }
func (*Opaque) Kind() FeatureKind           { return KindOpaque }

func (BasicTransactions) Name() string { return types.FeatureBasicTransactions }
func (*DeFiIntegration) Name() string  { return types.FeatureDeFiIntegration }
func (*CrossChain) Name() string       { return types.FeatureCrossChain }
func (*AIStrategies) Name() string     { return types.FeatureAIStrategies }
func (*SocialRecovery) Name() string   { return types.FeatureSocialRecovery }
func (Staking) Name() string           { return types.FeatureStaking }
func (o *Opaque) Name() string         { return o.FeatureName }

// ParseFeature decodes an activation request into its variant. Configs of
// known features are RLP encoded; an empty config selects the defaults.
func ParseFeature(name string, config []byte) (Feature, error) {
	var (
		feature Feature
		target  any
	)
	switch name {
	case types.FeatureBasicTransactions:
		return BasicTransactions{}, nil
	case types.FeatureStaking:
		return Staking{}, nil
	case types.FeatureDeFiIntegration:
		f := new(DeFiIntegration)
		feature, target = f, &f.Protocols
	case types.FeatureCrossChain:
		f := new(CrossChain)
		feature, target = f, &f.Chains
	case types.FeatureAIStrategies:
		f := new(AIStrategies)
		feature, target = f, &f.Strategies
	case types.FeatureSocialRecovery:
		f := new(SocialRecovery)
		feature, target = f, &f.RecoveryConfig
	default:
		return &Opaque{FeatureName: name, Raw: append([]byte(nil), config...)}, nil
	}
	if len(config) == 0 {
		return feature, nil
	}
	if err := rlp.DecodeBytes(config, target); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFeatureConfig, name, err)
	}
	return feature, nil
}

// EncodeStrategies encodes an ai_strategies activation config.
func EncodeStrategies(strategies []Strategy) ([]byte, error) {
	return rlp.EncodeToBytes(strategies)
}

// EncodeRecoveryConfig encodes a social_recovery activation config.
func EncodeRecoveryConfig(cfg RecoveryConfig) ([]byte, error) {
	return rlp.EncodeToBytes(&cfg)
}

// EncodeProtocols encodes a defi_integration activation config.
func EncodeProtocols(protocols []common.Address) ([]byte, error) {
	return rlp.EncodeToBytes(protocols)
}

// EncodeChains encodes a cross_chain activation config.
func EncodeChains(chains []uint64) ([]byte, error) {
	return rlp.EncodeToBytes(chains)
}
