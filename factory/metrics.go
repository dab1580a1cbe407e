package factory

import "github.com/ethereum/go-ethereum/metrics"

var (
	walletCreatedMeter = metrics.NewRegisteredMeter("factory/wallets/created", nil)
	activeWalletsGauge = metrics.NewRegisteredGauge("factory/wallets/active", nil)

	contributionMeter = metrics.NewRegisteredMeter("factory/contributions", nil)
	rewardPaidMeter   = metrics.NewRegisteredMeter("factory/rewards/paid", nil)
	rewardMissMeter   = metrics.NewRegisteredMeter("factory/rewards/missed", nil)

	poolGauge = metrics.NewRegisteredGauge("factory/pool", nil)
)
