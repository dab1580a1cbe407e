package types

// Names of the features known to a freshly deployed factory. The catalog is
// admin-extensible; names outside this list are carried as opaque features.
const (
	FeatureBasicTransactions = "basic_transactions"
	FeatureDeFiIntegration   = "defi_integration"
	FeatureCrossChain        = "cross_chain"
	FeatureAIStrategies      = "ai_strategies"
	FeatureSocialRecovery    = "social_recovery"
	FeatureStaking           = "staking"
)

// DefaultFeatures is the catalog a factory starts with, in enumeration order.
var DefaultFeatures = []string{
	FeatureBasicTransactions,
	FeatureDeFiIntegration,
	FeatureCrossChain,
	FeatureAIStrategies,
	FeatureSocialRecovery,
	FeatureStaking,
}

// FeatureEntry is one catalog slot.
type FeatureEntry struct {
	Name      string
	Available bool
}

// FeatureConfigEntry is a feature name with its last written configuration.
type FeatureConfigEntry struct {
	Name   string
	Config []byte
}
