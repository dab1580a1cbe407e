package wallet

import "github.com/ethereum/go-ethereum/metrics"

var (
	txSucceededMeter = metrics.NewRegisteredMeter("wallet/tx/succeeded", nil)
	txFailedMeter    = metrics.NewRegisteredMeter("wallet/tx/failed", nil)
	batchMeter       = metrics.NewRegisteredMeter("wallet/tx/batches", nil)

	featureActivationMeter = metrics.NewRegisteredMeter("wallet/features/activated", nil)
	rewardReceivedMeter    = metrics.NewRegisteredMeter("wallet/rewards/received", nil)

	crossChainMeter = metrics.NewRegisteredMeter("wallet/crosschain/initiated", nil)
	recoveryMeter   = metrics.NewRegisteredMeter("wallet/recovery/finalized", nil)
	stakeMeter      = metrics.NewRegisteredMeter("wallet/staking/stakes", nil)
)
