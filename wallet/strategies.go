package wallet

import (
	"fmt"
	"maps"
	"slices"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// ConfigureStrategy adds or replaces an AI strategy.
func (w *Wallet) ConfigureStrategy(fr *core.Frame, name string, params []byte) error {
	if err := w.onlyOwner(fr); err != nil {
		return err
	}
	if _, err := w.requireFeature(types.FeatureAIStrategies); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: unnamed strategy", ErrInvalidFeatureConfig)
	}
	core.Put(fr, w.strategies, name, Strategy{Name: name, Params: slices.Clone(params)})
	return nil
}

// ExecuteAIStrategy evaluates a configured strategy against input. The
// result is the keccak256 digest of the strategy name, its parameters and
// the input; it is deterministic for a given strategy table.
func (w *Wallet) ExecuteAIStrategy(fr *core.Frame, name string, input []byte) ([]byte, error) {
	if err := w.onlyOwner(fr); err != nil {
		return nil, err
	}
	if _, err := w.requireFeature(types.FeatureAIStrategies); err != nil {
		return nil, err
	}
	s, ok := w.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStrategyNotFound, name)
	}
	ledger, callee, err := w.ledger(fr)
	if err != nil {
		return nil, err
	}
	if err := ledger.UpdateActivity(callee, w.address); err != nil {
		return nil, err
	}
	log.Debug("Executed AI strategy", "wallet", w.address, "strategy", name, "input", len(input))
	return crypto.Keccak256([]byte(s.Name), s.Params, input), nil
}

// Strategies returns the configured strategy names, sorted.
func (w *Wallet) Strategies() []string {
	return slices.Sorted(maps.Keys(w.strategies))
}
