package tracing

// PoolChangeReason is a description of the reason why the reward pool changed.
type PoolChangeReason int

const (
	PoolChangeUnspecified PoolChangeReason = iota
	PoolChangeFund                         // admin funded the pool
	PoolChangeReward                       // contribution reward paid out
	PoolChangeWithdraw                     // admin withdrew from the pool
)

// ScoreChangeReason is a description of the reason why a wallet's
// contribution score changed.
type ScoreChangeReason int

const (
	ScoreChangeUnspecified ScoreChangeReason = iota
	ScoreChangeReward                        // credited by a paid contribution
	ScoreChangeOverride                      // administrative override
)

// String returns a human-readable string for the reason.
func (r PoolChangeReason) String() string {
	switch r {
	case PoolChangeUnspecified:
		return "unspecified"
	case PoolChangeFund:
		return "fund"
	case PoolChangeReward:
		return "reward"
	case PoolChangeWithdraw:
		return "withdraw"
	}
	return "unknown"
}

// String returns a human-readable string for the reason.
func (r ScoreChangeReason) String() string {
	switch r {
	case ScoreChangeUnspecified:
		return "unspecified"
	case ScoreChangeReward:
		return "reward"
	case ScoreChangeOverride:
		return "override"
	}
	return "unknown"
}
